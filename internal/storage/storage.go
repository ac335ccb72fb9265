// Package storage persists attachment files and hands back the URL they
// can be fetched from.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrForeignURL = errors.New("url does not belong to this storage")

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,15}$`)

type Storage interface {
	// Put stores the content under a fresh object name derived from
	// filename and returns its URL.
	Put(ctx context.Context, filename, contentType string, content io.Reader) (string, error)

	// Delete removes the object behind url.
	Delete(ctx context.Context, url string) error
}

// objectName keeps only the extension of the client-supplied name.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}
