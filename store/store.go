// Package store writes porkchop plot artifacts to a blob bucket.
package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // Local directories
	_ "gocloud.dev/blob/gcsblob"  // GCS driver
	_ "gocloud.dev/blob/s3blob"   // S3 driver
)

// Bucket stores artifacts under a key prefix of a gocloud bucket.
type Bucket struct {
	bucket *blob.Bucket
	url    string
	prefix string
}

// Open opens the bucket at the provided URL (file:///dir, s3://bucket, gs://bucket).
func Open(ctx context.Context, bucketURL, prefix string) (*Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket URL %s: %w", bucketURL, err)
	}
	if u.Scheme == "file" {
		// Create the directory if needed.
		q := u.Query()
		q.Set("create_dir", "true")
		u.RawQuery = q.Encode()
	}
	bucket, err := blob.OpenBucket(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	base := bucketURL
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	return &Bucket{bucket: bucket, url: strings.TrimSuffix(base, "/"), prefix: strings.Trim(prefix, "/")}, nil
}

// Key returns the full key of a name under the prefix of this bucket.
func (b *Bucket) Key(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// Write writes data to the name. The data is written to a temporary key first, then copied, so readers
// never see a partial artifact.
func (b *Bucket) Write(ctx context.Context, name string, data []byte) error {
	key := b.Key(name)
	tempKey := key + ".tmp." + uuid.New().String()

	w, err := b.bucket.NewWriter(ctx, tempKey, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", tempKey, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write data to %s: %w", tempKey, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", tempKey, err)
	}
	if err := b.bucket.Copy(ctx, key, tempKey, nil); err != nil {
		return fmt.Errorf("copy %s to %s: %w", tempKey, key, err)
	}
	if err := b.bucket.Delete(ctx, tempKey); err != nil {
		return fmt.Errorf("delete %s: %w", tempKey, err)
	}
	return nil
}

// WriteFrom writes the content produced by fn to the name.
func (b *Bucket) WriteFrom(ctx context.Context, name string, fn func(io.Writer) error) error {
	key := b.Key(name)
	w, err := b.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}
	if err := fn(w); err != nil {
		w.Close()
		b.bucket.Delete(ctx, key)
		return fmt.Errorf("write data to %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", key, err)
	}
	return nil
}

// Read returns the content of the name.
func (b *Bucket) Read(ctx context.Context, name string) ([]byte, error) {
	key := b.Key(name)
	data, err := b.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Exists checks if the name was written.
func (b *Bucket) Exists(ctx context.Context, name string) (bool, error) {
	return b.bucket.Exists(ctx, b.Key(name))
}

// URI returns the canonical URI for the given name.
func (b *Bucket) URI(name string) string {
	return b.url + "/" + b.Key(name)
}

// Close releases the bucket connection.
func (b *Bucket) Close() error {
	if b.bucket != nil {
		return b.bucket.Close()
	}
	return nil
}
