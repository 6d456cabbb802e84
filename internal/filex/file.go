// Package filex resolves local paths for the client store and for pending uploads.
package filex

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// LocalPath turns a source URI into a filesystem path.
// Accepts plain paths and file:// URIs; any other scheme is an error.
func LocalPath(sourceURI string) (string, error) {
	if sourceURI == "" {
		return "", fmt.Errorf("empty source uri")
	}
	if !strings.Contains(sourceURI, "://") {
		return sourceURI, nil
	}

	u, err := url.Parse(sourceURI)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", sourceURI, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" {
		return "", fmt.Errorf("empty path in %q", sourceURI)
	}
	return filepath.FromSlash(u.Path), nil
}

// Open resolves sourceURI and opens the file for reading.
// Directories are rejected.
func Open(sourceURI string) (*os.File, error) {
	p, err := LocalPath(sourceURI)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", p)
	}
	return f, nil
}
