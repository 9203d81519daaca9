package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qms/qms/internal/app"
	"github.com/qms/qms/internal/config"
	"github.com/qms/qms/internal/database"
	"github.com/qms/qms/internal/instance"
	"github.com/qms/qms/internal/logging"
	"github.com/qms/qms/internal/reporter"
	"github.com/qms/qms/internal/settings"
	"github.com/qms/qms/internal/startup"
	"github.com/qms/qms/internal/toggle"
	"github.com/qms/qms/internal/ui"
	"github.com/qms/qms/internal/watcher"
)

const appID = "io.github.qms"

// runTrayApp starts the tray application and blocks until the user exits
func runTrayApp(cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logging")
	}
	defer logger.Sync()

	guard := instance.New(cfg.PIDFile)
	if err := guard.Acquire(); err != nil {
		return err
	}
	defer guard.Release()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to open history database")
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return err
	}

	repo := database.NewRepository(db)
	if cfg.Database.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.Database.RetentionDays)
		if n, err := repo.DeleteOldEvents(cutoff); err != nil {
			logger.Warn("Failed to purge old toggle events", zap.Error(err))
		} else if n > 0 {
			logger.Info("Purged old toggle events", zap.Int64("count", n))
		}
	}

	backend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	logger.Info("Starting QMS",
		zap.String("version", version),
		zap.String("backend", backend.Name()),
		zap.Bool("no_ddcci", cfg.Toggle.NoDDCCI))
	logger.Debug(cfg.String())

	ctrl := toggle.NewController(backend, toggle.Options{
		NoDDCCI:        cfg.Toggle.NoDDCCI,
		CommandTimeout: cfg.Toggle.CommandTimeout,
		Cooldown:       cfg.Toggle.Cooldown,
	}, logger)

	autostart, err := startup.New()
	if err != nil {
		logger.Warn("Startup registration unavailable", zap.Error(err))
		autostart = nil
	}

	model := app.New(app.Deps{
		Registry:   backend,
		Controller: ctrl,
		Store:      settings.NewStore(cfg.Settings.Path),
		Recorder:   reporter.NewRecorder(repo, logger),
		Startup:    autostart,
		Logger:     logger,
	}, app.Options{NoDDCCI: cfg.Toggle.NoDDCCI})

	if err := ui.LoadTranslations(); err != nil {
		logger.Warn("Failed to load translations", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fa := fyneapp.NewWithID(appID)
	shell := ui.New(ctx, fa, model, ui.NewThemeProvider(fa), logger)
	model.Attach(shell, shell)

	// A failed first scan is already shown to the user; the watcher retries
	if err := model.Init(ctx); err != nil {
		logger.Warn("Initial monitor scan failed", zap.Error(err))
	}

	// Scans run on the UI thread and compare against the model, so a scan can never
	// land after a toggle and undo its state.
	if cfg.Watcher.RefreshInterval > 0 {
		w := watcher.NewService(backend, cfg.Watcher.RefreshInterval,
			model.ApplyScan,
			func(err error) {
				model.ReportError(app.KindScan, "Monitor scan failed", err)
			},
			logger)
		w.RunOn(shell.Post)
		w.CompareWith(model.Monitors)

		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Watcher stopped", zap.Error(err))
			}
		}()
		defer w.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Info("Received shutdown signal")
			shell.Post(shell.Quit)
		case <-ctx.Done():
		}
	}()

	shell.Run()
	logger.Info("QMS stopped")
	return nil
}
