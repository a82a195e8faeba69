package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to persist an artifact.
type UploadInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
}

// ObjectStorage abstracts artifact storage. Implementations write to the
// local filesystem or to cloud object storage.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, key string) error
}
