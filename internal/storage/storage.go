// Package storage defines the interface for object storage operations and
// its two backends. The concrete implementation (MinIO or AWS S3) is chosen
// once at startup from configuration; both speak the S3 wire protocol, they
// differ only in SDK call shape and in how "not found" surfaces.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an object does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// PhotoMetadata is the normalized shape of an object's metadata, produced
// fresh on every Stat call. It is never cached.
type PhotoMetadata struct {
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
}

// Object describes a downloaded object stream.
type Object struct {
	ContentType string
	Size        int64
}

// Storage is the backend-agnostic interface for photo storage.
//
// Upload is a blind overwrite: no versioning, locking, or optimistic
// concurrency. None of the methods retry; a failed call surfaces immediately
// and the caller owns retry policy.
type Storage interface {
	// Upload streams data to the store under the given key with contentType
	// as stored metadata, overwriting silently if the key exists. On success
	// it echoes the key back (caller-supplied keys are authoritative).
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)

	// Download opens a readable stream for key. The caller must close the
	// stream on every exit path. Content type comes from stored metadata when
	// present, otherwise from the key's file extension. Returns ErrNotFound
	// when the key is absent.
	Download(ctx context.Context, key string) (io.ReadCloser, Object, error)

	// PresignedDownloadURL produces a time-limited signed URL granting read
	// access to key without further authentication. It does not verify that
	// the key exists; a URL for a missing key fails only when fetched.
	PresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// List returns all keys under prefix that carry an image extension, in
	// backend enumeration order. Non-image keys are silently excluded.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether a metadata probe for key succeeds. Any probe
	// failure, including transport errors, folds to false; this mirrors the
	// behavior callers depend on for avatar probing.
	Exists(ctx context.Context, key string) bool

	// Stat returns normalized metadata for key. Unlike Exists it surfaces
	// every probe failure, wrapping absence as ErrNotFound.
	Stat(ctx context.Context, key string) (PhotoMetadata, error)

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}
