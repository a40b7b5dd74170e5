package policies

import (
	"context"
	"io"
)

// PhotoStorage stores uploaded images and returns their public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
