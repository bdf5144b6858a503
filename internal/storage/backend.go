package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Backend is the interface that wraps the basic file operations.
type Backend interface {
	// Name returns the name of the backend implementation.
	Name() string

	// Reader returns a ReadCloser of the file.
	Reader(ctx context.Context, container, object string) (io.ReadCloser, error)
	// Writer returns a WriteCloser of the file.
	Writer(ctx context.Context, container, object string) (io.WriteCloser, error)

	// FilenamesFrom lists all the object names of the given container.
	FilenamesFrom(ctx context.Context, container string) ([]string, error)
}

// Copy copies an object from a backend to another one.
func Copy(ctx context.Context, dst Backend, dc, do string, src Backend, sc, so string) error {
	r, err := src.Reader(ctx, sc, so)
	if err != nil {
		return errors.Wrap(err, "copy: source")
	}
	defer r.Close()

	//

	w, err := dst.Writer(ctx, dc, do)
	if err != nil {
		return errors.Wrap(err, "copy: destination")
	}

	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return errors.Wrap(err, "copy")
	}

	return errors.Wrap(w.Close(), "copy: destination")
}
