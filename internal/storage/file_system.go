package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

type fs struct {
	workspace string
}

// NewFileSystem returns a new File System backend.
func NewFileSystem(workspace string) Backend {
	return &fs{
		workspace: workspace,
	}
}

func (b *fs) Name() string {
	return "file_system"
}

func (b *fs) Reader(_ context.Context, container, object string) (io.ReadCloser, error) {
	rc, err := os.Open(filepath.Join(b.workspace, container, object))
	if err != nil {
		return nil, errors.Wrap(err, "could not open file")
	}
	return rc, nil
}

func (b *fs) Writer(_ context.Context, container, object string) (io.WriteCloser, error) {
	if err := b.mkdirAllWithFilename(container, object); err != nil {
		return nil, errors.Wrap(err, "could not create directory")
	}

	wc, err := os.Create(filepath.Join(b.workspace, container, object))
	if err != nil {
		return nil, errors.Wrap(err, "could not create file")
	}
	return wc, nil
}

func (b *fs) FilenamesFrom(_ context.Context, container string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(b.workspace, container))
	if err != nil {
		return nil, errors.Wrap(err, "could not list files")
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	return filenames, nil
}

func (b *fs) mkdirAllWithFilename(container, object string) error {
	return os.MkdirAll(filepath.Join(b.workspace, container, filepath.Dir(object)), 0755)
}
