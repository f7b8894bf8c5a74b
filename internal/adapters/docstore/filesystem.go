package docstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"devwise/pkg/errors"
)

// Compile-time check
var _ Store = (*FilesystemStore)(nil)

// FilesystemStore keeps documents under a local root directory,
// partitioned per user. File names are replaced with generated IDs so
// user input never reaches the filesystem.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a store rooted at the given directory
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create storage root")
	}
	return &FilesystemStore{root: root}, nil
}

// Save writes the document and returns its storage path
func (s *FilesystemStore) Save(_ context.Context, userID, fileName string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create user directory")
	}

	name := uuid.New().String() + filepath.Ext(fileName)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create document file")
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "failed to write document")
	}

	return path, nil
}

// Open returns a reader over a stored document
func (s *FilesystemStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrNotFound, "document not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open document")
	}
	return f, nil
}

// Delete removes a stored document
func (s *FilesystemStore) Delete(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete document")
	}
	return nil
}
