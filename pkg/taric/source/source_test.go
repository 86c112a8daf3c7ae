package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/core/config"
)

func TestLocalOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "seed"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed", "a.xml"), []byte("<env:envelope/>"), 0o644))

	o, err := New(context.Background(), config.SourceConfig{Type: "local", BaseDir: dir})
	require.NoError(t, err)
	defer o.Close()

	r, err := o.Open(context.Background(), "seed/a.xml")
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<env:envelope/>", string(body))

	_, err = o.Open(context.Background(), "seed/missing.xml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	_, err := NewLocal(t.TempDir()).Open(context.Background(), "../etc/passwd")
	assert.ErrorContains(t, err, "escapes")
}

func TestUnknownSource(t *testing.T) {
	_, err := New(context.Background(), config.SourceConfig{Type: "ftp"})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "a.xml", objectKey("", "a.xml"))
	assert.Equal(t, "drops/2026/a.xml", objectKey("drops/2026/", "a.xml"))
}
