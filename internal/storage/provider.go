package storage

import (
	"errors"
	"io"
	"time"
)

var ErrInvalidRange = errors.New("storage: requested range not satisfiable")

// StorageProvider defines the behavior for any storage backend.
type StorageProvider interface {
	List(bucket, prefix string) ([]ObjectInfo, error)
	Get(bucket, key string) (*FileObject, error)
	Put(bucket, key string, body io.ReadSeeker, contentType string) error
	Delete(bucket, key string) error
}

// RangeReader is implemented by backends that can serve part of an object
// themselves (S3). byteRange is an HTTP Range header value.
type RangeReader interface {
	GetRange(bucket, key, byteRange string) (*FileObject, error)
}

// ObjectInfo is one entry of a listing.
type ObjectInfo struct {
	Key  string
	Size int64
}

// FileObject is the provider-agnostic representation of an opened file.
// Body is an io.ReadSeeker as well when the backend supports it (local files).
// ContentRange is only set for partial reads.
type FileObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	ContentRange  string
	LastModified  time.Time
}
