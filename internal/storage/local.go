package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Local keeps blobs on a filesystem, normally a directory on the host
type Local struct {
	fs afero.Fs
}

// NewLocal stores blobs below root, creating it if needed
func NewLocal(root string) (*Local, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return NewLocalFs(afero.NewBasePathFs(osFs, root)), nil
}

func NewLocalFs(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	if err := l.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create blob directory, %w", err)
	}

	f, err := l.fs.Create(key)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob, %w", err)
	}

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		l.fs.Remove(key)
		return 0, fmt.Errorf("failed to write blob, %w", err)
	}

	return n, nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	f, err := l.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}

		return nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return f, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if err := l.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	return nil
}

// ctxReader stops a copy once the request that started it is gone
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
