package storage

import (
	"context"
	"errors"
)

var (
	// ErrObjectExists indicates an upload without upsert hit an existing object.
	ErrObjectExists = errors.New("storage: object already exists")
	// ErrInvalidPath indicates an object path escaping the bucket root.
	ErrInvalidPath = errors.New("storage: invalid object path")
)

// UploadOptions mirror the gateway's upload contract.
type UploadOptions struct {
	ContentType string
	Upsert      bool
}

// ObjectStore uploads binary objects and resolves their public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error
	PublicURL(bucket, path string) string
}
