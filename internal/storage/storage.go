// Package storage holds uploaded pattern images and PDFs.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned when a named blob does not exist.
var ErrFileNotFound = errors.New("stored file not found")

// FileStore accepts named blobs and later serves or deletes them by name.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces an uploaded filename to a safe base name made of
// letters, digits, dot, dash and underscore.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// StoredName builds a collision resistant name for an upload.
func StoredName(original string) string {
	return uuid.New().String() + "_" + SanitizeFilename(original)
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := path.Ext(strings.ReplaceAll(name, `\`, "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// HasAllowedExtension reports whether name ends in one of allowed.
func HasAllowedExtension(name string, allowed []string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(a), "."), ext) {
			return true
		}
	}
	return false
}

// ContentType guesses a response content type from the stored name.
func ContentType(name string) string {
	switch Extension(name) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
