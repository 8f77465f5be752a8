package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Store(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	l, err := NewLocal(dir, "https", "binder.example.com", "/static/")
	require.NoError(t, err)

	url, err := l.Store(context.Background(), "abc-123", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "https://binder.example.com/static/abc-123.pdf", url)

	got, err := os.ReadFile(filepath.Join(dir, "abc-123.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestLocal_StoreNeverOverwrites(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "https", "h", "static")
	require.NoError(t, err)

	_, err = l.Store(context.Background(), "same", []byte("first"))
	require.NoError(t, err)
	_, err = l.Store(context.Background(), "same", []byte("second"))
	require.Error(t, err)

	got, err := os.ReadFile(filepath.Join(l.Dir(), "same.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestLocal_StoreRejectsBadID(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "https", "h", "static")
	require.NoError(t, err)

	for _, id := range []string{"../escape", "a/b", ""} {
		_, err := l.Store(context.Background(), id, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "id %q", id)
	}
}

func TestLocal_StoreCanceled(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "https", "h", "static")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Store(ctx, "x", []byte("x"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLocal_Path(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "", "h", "")
	require.NoError(t, err)

	p, err := l.Path("out.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(l.Dir(), "out.pdf"), p)

	for _, name := range []string{"../out.pdf", "out.txt", ".hidden.pdf", "sub/out.pdf"} {
		_, err := l.Path(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestLocal_URL(t *testing.T) {
	tests := []struct {
		scheme, host, prefix string
		want                 string
	}{
		{"https", "binder.example.com", "static", "https://binder.example.com/static/x.pdf"},
		{"http", "localhost:8080", "", "http://localhost:8080/x.pdf"},
		{"", "h", "/a/b/", "https://h/a/b/x.pdf"},
	}
	for _, tt := range tests {
		l, err := NewLocal(t.TempDir(), tt.scheme, tt.host, tt.prefix)
		require.NoError(t, err)
		assert.Equal(t, tt.want, l.URL("x.pdf"))
	}
}
