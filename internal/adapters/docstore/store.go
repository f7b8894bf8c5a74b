package docstore

import (
	"context"
	"io"
)

// Store persists uploaded proposal documents
type Store interface {
	// Save writes the document and returns its storage path
	Save(ctx context.Context, userID, fileName string, r io.Reader) (string, error)

	// Open returns a reader over a stored document
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored document
	Delete(ctx context.Context, path string) error
}
