package storage

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

type LocalProvider struct {
	// RootPath is the directory where buckets are simulated (e.g., "./archive").
	// An empty bucket name means RootPath itself.
	RootPath string
}

func NewLocalProvider(root string) *LocalProvider {
	// Ensure the root directory exists
	_ = os.MkdirAll(root, 0755)
	return &LocalProvider{RootPath: root}
}

// path joins bucket and key under the root and refuses keys that climb out of it.
func (l *LocalProvider) path(bucket, key string) (string, error) {
	base := filepath.Join(l.RootPath, bucket)
	full := filepath.Join(base, filepath.FromSlash(key))
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: key %q escapes bucket", key)
	}
	return full, nil
}

func (l *LocalProvider) List(bucket, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	bucketPath := filepath.Join(l.RootPath, bucket)

	// We walk the bucket directory to find files
	err := filepath.Walk(bucketPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		// Convert OS path back to S3-style key (forward slashes)
		rel, _ := filepath.Rel(bucketPath, path)
		key := filepath.ToSlash(rel)

		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{Key: key, Size: info.Size()})
		}
		return nil
	})

	return objects, err
}

func (l *LocalProvider) Get(bucket, key string) (*FileObject, error) {
	path, err := l.path(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &FileObject{
		Body:          f,
		ContentLength: stat.Size(),
		ContentType:   contentType,
		LastModified:  stat.ModTime(),
	}, nil
}

func (l *LocalProvider) Put(bucket, key string, body io.ReadSeeker, contentType string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}

	// Ensure sub-directories exist (e.g. bucket/folder/file.wav)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, body)
	return err
}

func (l *LocalProvider) Delete(bucket, key string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	// Drop the parent folder once it is empty; a non-empty folder just stays.
	if dir := filepath.Dir(path); dir != filepath.Join(l.RootPath, bucket) {
		_ = os.Remove(dir)
	}
	return nil
}

// RemoveBucket deletes a whole bucket directory, used for upload spools.
func (l *LocalProvider) RemoveBucket(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("storage: refusing to remove the root")
	}
	return os.RemoveAll(filepath.Join(l.RootPath, bucket))
}
