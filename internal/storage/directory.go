package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for objects whose path leaves the root of a
// DirectoryClient.
var ErrOutsideRoot = errors.New("path escapes the storage root")

// DirectoryClient is a Client that serves objects from a local directory.
// Buckets are subdirectories of Root.
type DirectoryClient struct {
	Root string
}

// NewObjectHandle returns a handle to Root/bucket/object.
func (c DirectoryClient) NewObjectHandle(bucket, object string) ObjectHandle {
	root := filepath.Clean(c.Root)
	path := filepath.Join(root, bucket, filepath.FromSlash(object))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fileHandle{err: fmt.Errorf("opening %s/%s: %w", bucket, object, ErrOutsideRoot)}
	}
	return fileHandle{path: path}
}

type fileHandle struct {
	path string
	err  error
}

type limitedFile struct {
	io.Reader
	io.Closer
}

func (h fileHandle) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	if h.err != nil {
		return nil, h.err
	}
	f, err := os.Open(h.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h.path)
	} else if err != nil {
		return nil, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seeking to %d: %v", offset, err)
	}
	if length < 0 {
		return f, nil
	}
	return limitedFile{io.LimitReader(f, length), f}, nil
}
