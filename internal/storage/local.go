// Package storage writes merged outputs to a local directory and builds the
// public URLs they are served from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Ext is the file extension of stored outputs.
const Ext = ".pdf"

// ErrInvalidName rejects names that would escape the storage directory.
var ErrInvalidName = errors.New("invalid file name")

// Local stores one file per output in a directory.
type Local struct {
	dir    string
	scheme string
	host   string
	prefix string
}

// NewLocal creates dir if needed. Public URLs take the form
// scheme://host/prefix/<id>.pdf.
func NewLocal(dir, scheme, host, prefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if scheme == "" {
		scheme = "https"
	}
	return &Local{
		dir:    dir,
		scheme: scheme,
		host:   host,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Dir returns the storage directory.
func (l *Local) Dir() string {
	return l.dir
}

// Prefix returns the URL path prefix outputs are served under.
func (l *Local) Prefix() string {
	return l.prefix
}

// Store writes data as <id>.pdf and returns its public URL. An existing
// file is never overwritten, and readers never observe a partial file.
func (l *Local) Store(ctx context.Context, id string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := id + Ext
	dest, err := l.Path(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.dir, ".store-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		return "", fmt.Errorf("write output: %w", writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod output: %w", err)
	}

	// Link fails if dest exists, unlike Rename.
	if err := os.Link(tmpPath, dest); err != nil {
		return "", fmt.Errorf("publish output: %w", err)
	}
	return l.URL(name), nil
}

// Path resolves a stored file name to its location on disk.
func (l *Local) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Ext) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.dir, name), nil
}

// URL returns the public URL of a stored file name.
func (l *Local) URL(name string) string {
	u := url.URL{
		Scheme: l.scheme,
		Host:   l.host,
		Path:   path.Join("/", l.prefix, name),
	}
	return u.String()
}
