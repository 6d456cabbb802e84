package models

import "time"

// Image is an upload kept in the database storage backend.
// Data holds a data URL: "data:<content type>;base64,<payload>".
type Image struct {
	ID        int64
	Data      string
	Filename  string
	AuthorID  int64
	CreatedAt time.Time
}
