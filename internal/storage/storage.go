package storage

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"xr-archive/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

const spoolBucket = "spool"

// Client gives the archive two places to read audio from: the configured
// library (local folder or S3 bucket) and a local spool for browser uploads.
type Client struct {
	library       StorageProvider
	libraryBucket string
	spool         *LocalProvider
}

func New(cfg *config.Config) *Client {
	var backend StorageProvider

	// 1. Internal Selection Logic
	if cfg.Storage.Provider == "s3" {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		if cfg.Storage.Endpoint != "" {
			s3Config.Endpoint = aws.String(cfg.Storage.Endpoint)
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = NewS3Provider(sess)
	} else {
		backend = NewLocalProvider(cfg.Storage.LocalRoot)
	}

	spoolRoot := filepath.Join(cfg.Server.TempDir, "xr-archive-uploads")
	return NewClient(backend, cfg.Storage.Bucket, NewLocalProvider(spoolRoot))
}

func NewClient(library StorageProvider, libraryBucket string, spool *LocalProvider) *Client {
	return &Client{library: library, libraryBucket: libraryBucket, spool: spool}
}

// --- Library Methods ---

func (c *Client) ListLibrary(prefix string) ([]ObjectInfo, error) {
	return c.library.List(c.libraryBucket, prefix)
}

// LibraryObject returns a lazy handle; nothing is read until Open.
func (c *Client) LibraryObject(info ObjectInfo) *Object {
	return &Object{provider: c.library, bucket: c.libraryBucket, key: info.Key, size: info.Size}
}

// --- Spool Methods (browser uploads) ---

// Spool copies an uploaded file to local disk. The returned object deletes
// its copy when released.
func (c *Client) Spool(key string, body io.ReadSeeker, size int64) (*Object, error) {
	if err := c.spool.Put(spoolBucket, key, body, "application/octet-stream"); err != nil {
		return nil, err
	}
	return &Object{provider: c.spool, bucket: spoolBucket, key: key, size: size, ephemeral: true}, nil
}

// Close removes whatever is left in the spool.
func (c *Client) Close() error {
	return c.spool.RemoveBucket(spoolBucket)
}

// Object is a handle to one stored file, usable as an archive payload.
type Object struct {
	provider  StorageProvider
	bucket    string
	key       string
	size      int64
	ephemeral bool
}

func (o *Object) Key() string { return o.key }

func (o *Object) Size() int64 { return o.size }

func (o *Object) Open() (io.ReadCloser, error) {
	obj, err := o.OpenObject()
	if err != nil {
		return nil, err
	}
	return obj.Body, nil
}

// OpenObject exposes length, type and modification time for streaming.
func (o *Object) OpenObject() (*FileObject, error) {
	return o.provider.Get(o.bucket, o.key)
}

// SupportsRange reports whether the backend can serve partial reads itself.
func (o *Object) SupportsRange() bool {
	_, ok := o.provider.(RangeReader)
	return ok
}

// OpenRange reads byteRange (an HTTP Range value) from a backend that
// supports it. Check ContentRange: an empty one means the whole object came back.
func (o *Object) OpenRange(byteRange string) (*FileObject, error) {
	rr, ok := o.provider.(RangeReader)
	if !ok {
		return nil, errors.New("storage: backend cannot serve ranges")
	}
	return rr.GetRange(o.bucket, o.key, byteRange)
}

// Release deletes spooled copies. Library objects are never touched.
func (o *Object) Release() error {
	if !o.ephemeral {
		return nil
	}
	err := o.provider.Delete(o.bucket, o.key)
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to drop spooled upload", "key", o.key, "error", err)
		return err
	}
	return nil
}
