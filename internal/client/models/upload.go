// Package models defines client-side data models used by the seed classifier CLI.
package models

import (
	"path"
	"strings"
	"time"
)

// Kind classifies how a pending upload was picked.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

var imageExts = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {},
	"webp": {}, "heic": {}, "heif": {}, "tif": {}, "tiff": {},
}

// KindFromPath returns KindImage for well-known image extensions and KindFile otherwise.
func KindFromPath(p string) Kind {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	if _, ok := imageExts[ext]; ok {
		return KindImage
	}
	return KindFile
}

// PendingUpload is one user-selected asset awaiting submission.
type PendingUpload struct {
	// ID is the local key; it is never sent to the server.
	ID string

	// SourceURI points at the raw bytes on this device (path or file:// URI).
	SourceURI string

	// DisplayName is user-editable and sanitized before it hits the wire.
	DisplayName string

	Kind Kind

	// Position orders the list; lower goes first.
	Position int64

	CreatedAt time.Time
}
