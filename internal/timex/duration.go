// Package timex provides a time.Duration wrapper for JSON configuration
// files.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration unmarshals from either a Go duration string ("15s", "1m30s") or
// an integer number of nanoseconds.
type Duration struct {
	time.Duration
	present bool
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		d.present = true
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		d.present = true
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// Set reports whether the value was present in the source document or is
// non-zero. An explicit "0s" counts as present.
func (d Duration) Set() bool {
	return d.present || d.Duration != 0
}
