package models

import (
	"encoding/json"
	"time"
)

// ReportStatus tracks the forwarding state of an upload.
type ReportStatus string

const (
	ReportPending ReportStatus = "pending"
	ReportDone    ReportStatus = "done"
	ReportFailed  ReportStatus = "failed"
)

// Report records one accepted upload and, once analysed, the model output.
type Report struct {
	ID            int64           `json:"id"`
	Filename      string          `json:"filename"`
	ContentType   string          `json:"-"`
	Location      string          `json:"location"`
	Status        ReportStatus    `json:"status"`
	ModelResponse json.RawMessage `json:"model_response,omitempty"`
	SubmitterID   int64           `json:"-"`
	ShiftID       *int64          `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"-"`
}
