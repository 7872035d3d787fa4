// Package app wires configuration, storage and the HTTP server into a
// runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"relaylog/internal/compaction"
	"relaylog/pkg/api/handlers"
	"relaylog/pkg/coalesce"
	"relaylog/pkg/config"
	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/logger"
	"relaylog/pkg/store"
	"relaylog/pkg/timestamp"
	"relaylog/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	docs      docstore.Client
	deps      handlers.Deps
	scheduler *compaction.Scheduler

	srv *http.Server
}

// New initializes resources that do not require a running context: config
// validation, the document store and the service components. Call Run to
// start the scheduler and HTTP server and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	config.SetRuntime(eff.Runtime)
	initValidation(eff)

	docs, err := docstore.Open(eff.DBPath, docstore.Options{
		CacheBytes: eff.Config.Storage.CacheBytes.Int64(),
	})
	if err != nil {
		return nil, errs.Unavailable(fmt.Sprintf("opening docstore at %s", eff.DBPath), err)
	}

	ext := timestamp.Extractor{}
	window := eff.Config.Log.MergeWindow.Duration()
	live := store.NewLive(docs, ext, window)
	compactor := store.NewCompactor(docs, ext,
		eff.Config.Compaction.KeepLive, eff.Config.Compaction.MaxPerRun)

	a := &App{
		eff: eff, version: version, commit: commit, buildDate: buildDate,
		docs: docs,
		deps: handlers.Deps{
			Live:      live,
			Archive:   store.NewArchive(docs, ext),
			Admin:     store.NewAdmin(docs),
			Compactor: compactor,
		},
	}

	if eff.Config.Compaction.Enabled {
		sched, err := compaction.New(compactor, eff.Config.Compaction.Cron)
		if err != nil {
			_ = docs.Close()
			return nil, errs.Wrap(errs.KindConfig, "compaction schedule", err)
		}
		a.scheduler = sched
	}
	return a, nil
}

// Run starts the compaction scheduler and the HTTP server, and blocks until
// ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		stop := a.scheduler.Start(ctx)
		defer stop()
	}

	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close shuts the HTTP server down gracefully and closes storage.
func (a *App) Close() error {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(ctx)
	}
	if a.docs != nil {
		if err := a.docs.Close(); err != nil {
			logger.Error("docstore_close_failed", "error", err)
			return err
		}
	}
	return nil
}

func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.DBPath == "" {
		return errs.Config("storage db_path is required")
	}
	if w := eff.Config.Log.MergeWindow.Duration(); w < 0 {
		return errs.Config("log merge_window must not be negative")
	}
	if eff.Config.Compaction.KeepLive < 0 || eff.Config.Compaction.MaxPerRun < 0 {
		return errs.Config("compaction bounds must not be negative")
	}
	if w := eff.Config.Log.MergeWindow.Duration(); w == 0 {
		logger.Debug("merge_window_defaulted", "window", coalesce.DefaultWindow.String())
	}
	return nil
}

// initValidation installs the message validation rules from config.
func initValidation(eff config.EffectiveConfigResult) {
	validation.SetRules(validation.Rules{
		DefaultSender: eff.Config.Log.DefaultSender,
		MaxTextLen:    eff.Config.Log.MaxTextLen,
	})
}
