// Package storage provides access to the objects that hold sequencing data,
// either in Google Cloud Storage or in a local directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const gcsScheme = "gs://"

var (
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("object does not exist")

	// ErrMissingOrInvalidToken is returned when a request does not carry a
	// usable bearer token.
	ErrMissingOrInvalidToken = errors.New("missing or invalid token")

	errInvalidURI = errors.New("invalid gs:// URI")
)

// Client is an interface to the storage engine.
type Client interface {
	// NewObjectHandle returns a handle to a specified object in the storage
	// engine.
	NewObjectHandle(bucket, object string) ObjectHandle
}

// ObjectHandle is an interface to a single object.
type ObjectHandle interface {
	// NewRangeReader returns a reader that reads from a specified range.  A
	// length of -1 reads until the end of the object.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

// NewClientFunc constructs the client that serves an incoming request.  Any
// headers that caused this particular client to be created are returned as
// well.
type NewClientFunc func(*http.Request) (Client, http.Header, error)

// ParseURI splits a "gs://bucket/object" URI.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("parsing %q: %v", uri, errInvalidURI)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("parsing %q: %v", uri, errInvalidURI)
	}
	return parts[0], parts[1], nil
}

// Open opens path for reading.  Paths starting with "gs://" are read through
// client; any other path is a local file.
func Open(ctx context.Context, client Client, path string) (io.ReadCloser, error) {
	if !strings.HasPrefix(path, gcsScheme) {
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("opening %s: %w", path, ErrNotFound)
		}
		return f, err
	}

	bucket, object, err := ParseURI(path)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("opening %s: no storage client", path)
	}
	r, err := client.NewObjectHandle(bucket, object).NewRangeReader(ctx, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return r, nil
}
