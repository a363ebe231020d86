// Package blob stores uploaded document files on the local filesystem.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
)

type filesystemStore struct {
	dir string
}

var _ core.BlobStore = (*filesystemStore)(nil) // interface compliance check

// NewFilesystemStore creates the upload directory if needed and returns a
// store writing into it.
func NewFilesystemStore(dir string) (*filesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload directory")
	}
	return &filesystemStore{dir: dir}, nil
}

// Store writes content under a collision-free name derived from the
// document's coordinates and returns the handle to persist. The original
// filename only contributes its extension.
func (s *filesystemStore) Store(content []byte, origFilename string, groupID int, docType string, version int) (string, error) {
	ext := strings.ToLower(filepath.Ext(origFilename))
	name := fmt.Sprintf("group_%d_%s_v%d_%s%s", groupID, strings.ToLower(docType), version, uuid.New().String(), ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return path, nil
}
