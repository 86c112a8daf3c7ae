// Package source opens envelopes by key from a local directory or an
// object store bucket.
package source

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/tigerroll/tamato/pkg/taric/core/config"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

var log = logger.For("source")

// Opener opens the envelope stored under key. The caller closes it.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Close() error
}

// New returns the opener configured by cfg.
func New(ctx context.Context, cfg config.SourceConfig) (Opener, error) {
	switch cfg.Type {
	case "", "local":
		log.Infof("reading envelopes from %s", cfg.BaseDir)
		return NewLocal(cfg.BaseDir), nil
	case "s3":
		log.Infof("reading envelopes from s3://%s/%s", cfg.Bucket, cfg.Prefix)
		return NewS3(ctx, cfg)
	case "gcs":
		log.Infof("reading envelopes from gs://%s/%s", cfg.Bucket, cfg.Prefix)
		return NewGCS(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported source type %q", cfg.Type)
	}
}

func objectKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
