package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local reads envelopes below a base directory.
type Local struct {
	baseDir string
}

// NewLocal returns an opener rooted at baseDir.
func NewLocal(baseDir string) *Local {
	if baseDir == "" {
		baseDir = "."
	}
	return &Local{baseDir: baseDir}
}

// Open implements Opener. Keys may not leave the base directory.
func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	full := filepath.Join(l.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("open %s: key escapes %s", key, l.baseDir)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// Close implements Opener.
func (l *Local) Close() error { return nil }
