// Command tamato-importer chunks and imports TARIC3 envelopes. Each
// argument is an envelope key in the configured source; envelopes are
// imported in argument order, each batch depending on the one before.
package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/fx"

	_ "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm/sqlite"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

// embeddedConfig is the default application.yaml compiled into the binary.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("received signal %v, stopping after running chunks finish", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	keys := os.Args[1:]
	if len(keys) == 0 {
		logger.Fatalf("usage: tamato-importer ENVELOPE_KEY...")
	}

	app := fx.New(GetApplicationOptions(ctx, envFilePath, embeddedConfig, keys)...)
	app.Run()
	if app.Err() != nil {
		logger.Fatalf("application run failed: %v", app.Err())
	}
}
