// Package filex has small filesystem helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
)

// MaxPhotoSize is the largest photo the story API accepts.
const MaxPhotoSize = 1 << 20 // 1 MiB

var photoMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Photo is an image read from disk, ready to attach to a story submission.
type Photo struct {
	Name string
	Mime string
	Data []byte
}

// LoadPhoto reads an image file and resolves its MIME type from the
// extension. Files over MaxPhotoSize or with an unrecognized extension are
// rejected with common.ErrValidation.
func LoadPhoto(path string) (*Photo, error) {
	mime, ok := photoMimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported photo type %q: %w", filepath.Ext(path), common.ErrValidation)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() > MaxPhotoSize {
		return nil, fmt.Errorf("photo %s is %d bytes, limit is %d: %w", path, fi.Size(), MaxPhotoSize, common.ErrValidation)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &Photo{Name: filepath.Base(path), Mime: mime, Data: data}, nil
}
