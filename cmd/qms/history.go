package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qms/qms/internal/config"
	"github.com/qms/qms/internal/database"
	"github.com/qms/qms/internal/reporter"
)

func runHistory(cmd *cobra.Command, cfg *config.Config, limit int, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to open history")
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return err
	}

	rep := reporter.New(database.NewRepository(db))
	report, err := rep.GenerateReport(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch output {
	case "json":
		text, err := rep.FormatReportJSON(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return errors.Wrap(err, "failed to encode history")
		}
		fmt.Fprint(out, string(data))
	default:
		fmt.Fprint(out, rep.FormatReportText(report))
	}
	return nil
}

func runClearHistory(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, "This will delete all recorded toggles and errors. Are you sure? (yes/no): ")

	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "yes" && response != "y" {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to open history")
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return err
	}
	if err := database.NewRepository(db).Clear(); err != nil {
		return err
	}

	fmt.Fprintln(out, "History cleared")
	return nil
}
