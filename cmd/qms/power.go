package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qms/qms/internal/config"
	"github.com/qms/qms/internal/database"
	"github.com/qms/qms/internal/models"
	"github.com/qms/qms/internal/reporter"
	"github.com/qms/qms/internal/toggle"
)

func runPower(cmd *cobra.Command, cfg *config.Config, names []string, on bool) error {
	if len(names) == 0 {
		return errors.New("no monitor names given")
	}

	logger := cliLogger(cfg)
	defer logger.Sync()

	backend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	recorder, closeHistory := openRecorder(cfg, logger)
	defer closeHistory()

	ctrl := toggle.NewController(backend, toggle.Options{
		CommandTimeout: cfg.Toggle.CommandTimeout,
	}, logger)

	action, done := models.ActionDisable, "disabled"
	if on {
		action, done = models.ActionEnable, "enabled"
	}

	res, err := ctrl.SetPower(context.Background(), names, on)
	recorder.RecordResult(action, "cli", res, err)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(res.Addressed) > 0 {
		fmt.Fprintf(out, "Monitors %s: %s\n", done, strings.Join(res.Addressed, ", "))
	}
	if len(res.Failures) > 0 {
		errOut := cmd.ErrOrStderr()
		for _, f := range res.Failures {
			fmt.Fprintln(errOut, "  -", f)
		}
		return errors.Errorf("%d of %d monitors could not be %s", len(res.Failures), len(names), done)
	}
	return nil
}

// openRecorder opens the history database; the CLI keeps working without it
func openRecorder(cfg *config.Config, logger *zap.Logger) (*reporter.Recorder, func()) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		logger.Warn("History database unavailable", zap.Error(err))
		return nil, func() {}
	}
	if err := db.Initialize(); err != nil {
		logger.Warn("History database unavailable", zap.Error(err))
		db.Close()
		return nil, func() {}
	}
	return reporter.NewRecorder(database.NewRepository(db), logger), func() { db.Close() }
}
