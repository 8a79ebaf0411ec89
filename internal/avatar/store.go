package avatar

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store persists processed avatar images by filename. Old filenames are
// abandoned when a profile changes; no orphan cleanup is performed.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Disk stores avatars as plain files under one directory.
type Disk struct {
	dir string
}

// NewDisk creates the backing directory and the default placeholder image
// if either is missing.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	d := &Disk{dir: dir}
	if err := d.ensureDefault(); err != nil {
		return nil, err
	}
	return d, nil
}

// ensureDefault writes the generated placeholder sentinel so fresh installs
// can serve an avatar for every account.
func (d *Disk) ensureDefault() error {
	path := filepath.Join(d.dir, DefaultName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := placeholderPNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default avatar: %w", err)
	}
	return nil
}

// Save writes the image under the given name.
func (d *Disk) Save(_ context.Context, name string, data []byte) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write avatar: %w", err)
	}
	return nil
}

// Open returns the stored image for streaming. Names that would escape the
// directory read as missing.
func (d *Disk) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path, err := d.path(name)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open avatar: %w", err)
	}
	return f, nil
}

// path rejects names that would escape the avatar directory.
func (d *Disk) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid avatar name %q", name)
	}
	return filepath.Join(d.dir, name), nil
}
