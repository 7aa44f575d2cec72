package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects:
// resume originals and their derived extracted-text files. Save sniffs the
// content type and returns the generated storage key.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
