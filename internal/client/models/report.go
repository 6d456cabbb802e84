package models

import (
	"encoding/json"
	"time"
)

// Report is one server-side record of an accepted upload.
type Report struct {
	ID            int64           `json:"id"`
	Filename      string          `json:"filename"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	ModelResponse json.RawMessage `json:"model_response,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ClassName pulls class_name out of the stored model response, if any.
func (r Report) ClassName() string {
	if len(r.ModelResponse) == 0 {
		return ""
	}
	var v struct {
		ClassName string `json:"class_name"`
	}
	if err := json.Unmarshal(r.ModelResponse, &v); err != nil {
		return ""
	}
	return v.ClassName
}
