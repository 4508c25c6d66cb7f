package infra

import (
	"context"
	"io"
)

type BlobClientInterface interface {
	Put(ctx context.Context, pathname, contentType string, body io.Reader) (*BlobInfo, error)
}

var _ BlobClientInterface = (*BlobClient)(nil)
