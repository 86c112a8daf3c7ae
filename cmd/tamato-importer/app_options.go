package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/tamato/pkg/taric/adapter/database/config"
	gormadapter "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm"
	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/chunker"
	"github.com/tigerroll/tamato/pkg/taric/component/migration"
	"github.com/tigerroll/tamato/pkg/taric/core/config"
	"github.com/tigerroll/tamato/pkg/taric/core/metrics"
	"github.com/tigerroll/tamato/pkg/taric/core/tx"
	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/importer"
	inframetrics "github.com/tigerroll/tamato/pkg/taric/infrastructure/metrics"
	"github.com/tigerroll/tamato/pkg/taric/orchestration"
	"github.com/tigerroll/tamato/pkg/taric/source"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

// GetApplicationOptions assembles the fx options of the importer.
func GetApplicationOptions(appCtx context.Context, envFilePath string, embedded []byte, keys []string) []fx.Option {
	return []fx.Option{
		fx.Supply(
			config.EmbeddedConfig(embedded),
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
			fx.Annotate(keys, fx.ResultTags(`name:"envelopeKeys"`)),
		),
		logger.Module,
		config.Module,
		fx.Provide(
			newDatabase,
			newPrometheusRecorder,
			func(r *inframetrics.PrometheusRecorder) metrics.Recorder { return r },
			newTracer,
			fx.Annotate(newSource, fx.ParamTags(``, `name:"appCtx"`, ``)),
			storage.NewStore,
			batch.NewRepository,
			func(db *gorm.DB) tx.TransactionManager { return gormadapter.NewTransactionManager(db) },
			newChunker,
			newLifecycle,
			fx.Annotate(newPool, fx.ParamTags(`name:"appCtx"`, ``)),
			newScheduler,
		),
		fx.Invoke(registerImport),
	}
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	dbCfg, err := dbconfig.Lookup(cfg.Tamato.Databases, cfg.Tamato.DatabaseRef)
	if err != nil {
		return nil, err
	}
	db, err := gormadapter.Open(dbCfg, cfg.Tamato.System.Logging.GormLevel)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := migration.NewMigrator(sqlDB, dbCfg.Type).Up(context.Background()); err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return gormadapter.Close(db) },
	})
	return db, nil
}

// newPrometheusRecorder serves the recorder's registry on /metrics when a
// listen address is configured.
func newPrometheusRecorder(lc fx.Lifecycle, cfg *config.Config) *inframetrics.PrometheusRecorder {
	rec := inframetrics.NewPrometheusRecorder()
	addr := cfg.Tamato.Metrics.ListenAddress
	if addr == "" {
		return rec
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("metrics server: %v", err)
				}
			}()
			logger.Infof("serving metrics on %s/metrics", addr)
			return nil
		},
		OnStop: srv.Shutdown,
	})
	return rec
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (metrics.Tracer, error) {
	tc := cfg.Tamato.Tracing
	if tc.OTLPEndpoint == "" {
		return metrics.NoopTracer{}, nil
	}
	tp, shutdown, err := inframetrics.NewTracerProvider(context.Background(), tc.Protocol, tc.OTLPEndpoint, tc.ServiceName, tc.Insecure)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return inframetrics.NewOpenTelemetryTracer(tp), nil
}

func newSource(lc fx.Lifecycle, ctx context.Context, cfg *config.SourceConfig) (source.Opener, error) {
	o, err := source.New(ctx, *cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return o.Close() }})
	return o, nil
}

func newChunker(repo *batch.Repository, cfg *config.ImporterConfig, rec metrics.Recorder) *chunker.Chunker {
	return chunker.New(repo, cfg.MaxChunkSize, rec)
}

func newLifecycle(repo *batch.Repository, store *storage.Store, tm tx.TransactionManager, rec metrics.Recorder) *orchestration.Lifecycle {
	return orchestration.NewLifecycle(repo, store, tm, rec)
}

func newPool(ctx context.Context, cfg *config.ImporterConfig) *orchestration.Pool {
	return orchestration.NewPool(ctx, cfg.Workers)
}

type schedulerParams struct {
	fx.In
	Repo      *batch.Repository
	Store     *storage.Store
	TxManager tx.TransactionManager
	Lifecycle *orchestration.Lifecycle
	Pool      *orchestration.Pool
	Recorder  metrics.Recorder
	Tracer    metrics.Tracer
}

func newScheduler(p schedulerParams) *orchestration.Scheduler {
	runner := orchestration.NewImportRunner(importer.Deps{
		Records:     p.Store,
		Workbaskets: p.Store,
		TxManager:   p.TxManager,
		Issues:      p.Repo,
		Recorder:    p.Recorder,
		Tracer:      p.Tracer,
	})
	return orchestration.NewScheduler(p.Repo, p.Store, p.Lifecycle, runner, p.Pool)
}

type importParams struct {
	fx.In
	AppCtx     context.Context `name:"appCtx"`
	Keys       []string        `name:"envelopeKeys"`
	Config     *config.ImporterConfig
	Source     source.Opener
	Repo       *batch.Repository
	Chunker    *chunker.Chunker
	Scheduler  *orchestration.Scheduler
	Pool       *orchestration.Pool
	Shutdowner fx.Shutdowner
}

// registerImport runs the import once the application has started and
// shuts the application down when it is over.
func registerImport(lc fx.Lifecycle, p importParams) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				code := 0
				if err := runImport(p); err != nil {
					logger.Errorf("import failed: %v", err)
					code = 1
				}
				if err := p.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Errorf("shutdown: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Infof("importer is shutting down")
			return nil
		},
	})
}

func runImport(p importParams) error {
	ctx := p.AppCtx
	var batches []*batch.ImportBatch
	var previous []string
	for _, key := range p.Keys {
		b, err := p.Repo.CreateBatch(ctx, key, p.Config.Author, p.Config.SplitJob, previous...)
		if err != nil {
			return err
		}
		n, err := chunkEnvelope(ctx, p, b, key)
		if err != nil {
			return err
		}
		logger.Infof("envelope %s: %d chunks", key, n)
		batches = append(batches, b)
		previous = []string{b.ID}
	}

	if err := p.Scheduler.ScheduleAll(ctx); err != nil {
		return err
	}
	if err := p.Pool.Drain(); err != nil {
		logger.Errorf("chunk runs: %v", err)
	}

	failed := 0
	for _, b := range batches {
		current, err := p.Repo.GetBatch(context.WithoutCancel(ctx), b.ID)
		if err != nil {
			return err
		}
		errs, err := p.Repo.Issues(context.WithoutCancel(ctx), b.ID, domain.SeverityError)
		if err != nil {
			return err
		}
		logger.Infof("batch %s: %s, %d errors", current.Name, current.Status, len(errs))
		for _, i := range errs {
			logger.Warnf("batch %s: %s", current.Name, i.String())
		}
		if current.Status != batch.StatusSucceeded {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d batches did not succeed", failed, len(batches))
	}
	return nil
}

func chunkEnvelope(ctx context.Context, p importParams, b *batch.ImportBatch, key string) (int, error) {
	r, err := p.Source.Open(ctx, key)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	if b.SplitJob {
		return p.Chunker.SplitTaric(ctx, r, b, p.Config.RecordGroup)
	}
	return p.Chunker.ChunkTaric(ctx, r, b, p.Config.RecordGroup)
}
