package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/tigerroll/tamato/pkg/taric/core/config"
)

// GCS reads envelopes from a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS returns an opener for cfg.Bucket using application default
// credentials. A configured endpoint is treated as an unauthenticated
// emulator.
func NewGCS(ctx context.Context, cfg config.SourceConfig) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCS{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Open implements Opener.
func (g *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	name := objectKey(g.prefix, key)
	r, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", g.bucket, name, err)
	}
	return r, nil
}

// Close implements Opener.
func (g *GCS) Close() error { return g.client.Close() }
