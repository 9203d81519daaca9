package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qms/qms/internal/config"
	"github.com/qms/qms/pkg/monitor"
)

func runList(cmd *cobra.Command, cfg *config.Config, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}

	logger := cliLogger(cfg)
	defer logger.Sync()

	backend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	monitors, err := backend.Scan(context.Background())
	if err != nil {
		return errors.Wrap(err, "failed to list monitors")
	}
	return printMonitors(cmd.OutOrStdout(), monitors, output)
}

func checkOutput(output string) error {
	switch output {
	case "text", "json", "yaml":
		return nil
	}
	return errors.Errorf("unknown output format %q, want text, json or yaml", output)
}

func printMonitors(w io.Writer, monitors []monitor.Monitor, output string) error {
	if monitors == nil {
		monitors = []monitor.Monitor{}
	}

	switch output {
	case "json":
		data, err := json.MarshalIndent(monitors, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode monitors")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(monitors); err != nil {
			return errors.Wrap(err, "failed to encode monitors")
		}
		return enc.Close()
	}

	if len(monitors) == 0 {
		_, err := fmt.Fprintln(w, "No monitors found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tACTIVE\tPRIMARY\tCONNECTION")
	for _, m := range monitors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.Index, m.Name, yesNo(m.Active), yesNo(m.Primary), m.Connection)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
