package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dotrep-network/dotrep/internal/api"
	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/content"
	"github.com/dotrep-network/dotrep/internal/infra/engine"
	"github.com/dotrep-network/dotrep/internal/infra/flagging"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
	"github.com/dotrep-network/dotrep/internal/infra/observability"
	"github.com/dotrep-network/dotrep/internal/infra/sqlite"
)

// Daemon owns the long-lived service state: graph, engine, flag store,
// and the HTTP server.
type Daemon struct {
	cfg     Config
	graph   *graph.Graph
	engine  *engine.Engine
	flags   api.FlagStore
	db      *sqlite.DB // nil when storage is disabled
	metrics *observability.Metrics
	server  *api.Server
}

// New assembles a daemon from config.
func New(cfg Config) (*Daemon, error) {
	d := &Daemon{cfg: cfg, graph: graph.New()}

	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, fmt.Errorf("storage dir: %w", err)
		}
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		d.db = db
	}

	d.metrics = observability.New()

	engCfg := engine.DefaultConfig()
	engCfg.PageRank.Damping = cfg.Engine.Damping
	engCfg.PageRank.DecayBase = cfg.Engine.DecayBase
	engCfg.CacheTTL = ParseDuration(cfg.Engine.CacheTTL, time.Hour)
	engCfg.BatchChunk = cfg.Engine.BatchChunk
	engCfg.BatchWorkers = cfg.Engine.BatchWorkers
	engCfg.CommunitySeed = cfg.Engine.CommunitySeed

	opts := []engine.Option{engine.WithMetrics(d.metrics)}
	if v := buildVerifier(cfg.Guardian); v != nil {
		opts = append(opts, engine.WithVerifier(v))
	}
	if d.db != nil {
		opts = append(opts, engine.WithConsumer(d.db), engine.WithFlagSource(d.db))
		d.flags = dbFlagStore{d.db}
	} else {
		memLog := flagging.NewLog()
		opts = append(opts, engine.WithFlagSource(memLog))
		d.flags = memFlagStore{memLog}
	}
	d.engine = engine.New(engCfg, d.graph, opts...)

	d.server = api.NewServer(d.engine, d.flags)
	if cfg.API.Metrics {
		d.server.EnableMetrics(d.metrics)
	}
	return d, nil
}

// buildVerifier maps guardian config onto a Verifier. "mock" is for local
// development and tests of the full pipeline.
func buildVerifier(cfg GuardianConfig) content.Verifier {
	switch cfg.URL {
	case "":
		return nil
	case "mock":
		return content.NewMockVerifier()
	default:
		return content.NewHTTPVerifier(cfg.URL, cfg.Token, ParseDuration(cfg.Timeout, 30*time.Second))
	}
}

// Engine exposes the engine (CLI offline compute reuses daemon wiring).
func (d *Daemon) Engine() *engine.Engine { return d.engine }

// Graph exposes the trust graph.
func (d *Daemon) Graph() *graph.Graph { return d.graph }

// Run serves the API until the context is cancelled or a termination
// signal arrives, then shuts down gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              d.cfg.API.Addr(),
		Handler:           d.server.Handler(ParseDuration(d.cfg.API.Timeout, time.Minute)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("dotrepd listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// ─── Flag store adapters ────────────────────────────────────────────────────

type dbFlagStore struct{ db *sqlite.DB }

func (s dbFlagStore) Append(ctx context.Context, rec domain.FlagRecord) (domain.FlagRecord, error) {
	return s.db.AppendFlag(ctx, rec)
}

func (s dbFlagStore) FlagsFor(ctx context.Context, target string) ([]domain.FlagRecord, error) {
	return s.db.FlagsFor(ctx, target)
}

func (s dbFlagStore) Since(ctx context.Context, cutoff time.Time) ([]domain.FlagRecord, error) {
	return s.db.FlagsSince(ctx, cutoff)
}

type memFlagStore struct{ log *flagging.Log }

func (s memFlagStore) Append(ctx context.Context, rec domain.FlagRecord) (domain.FlagRecord, error) {
	return s.log.Append(ctx, rec)
}

func (s memFlagStore) FlagsFor(ctx context.Context, target string) ([]domain.FlagRecord, error) {
	return s.log.FlagsFor(ctx, target)
}

func (s memFlagStore) Since(_ context.Context, cutoff time.Time) ([]domain.FlagRecord, error) {
	return s.log.Recent(time.Since(cutoff)), nil
}
