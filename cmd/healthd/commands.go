package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthkit/health"
	"github.com/jonwraymond/healthkit/internal/app"
	"github.com/jonwraymond/healthkit/internal/config"
)

// unhealthyError signals exit status 1 after the report was already printed.
type unhealthyError struct {
	status health.Status
}

func (e *unhealthyError) Error() string {
	return fmt.Sprintf("unhealthy: %s", e.status)
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "healthd",
		Short:         "Serve and probe health checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newCheckCmd(&configPath))
	root.AddCommand(newProbeCmd())
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured checks over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}

			serveErr := a.ListenAndServe(ctx)
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := a.Close(closeCtx); err != nil && serveErr == nil {
				serveErr = err
			}
			return serveErr
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the configured checks once and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			cfg.Observe.Logging.Enabled = false

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

			runCtx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
			defer cancel()
			return printReport(cmd.OutOrStdout(), a.Registry().Report(runCtx))
		},
	}
}

func newProbeCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Query a running daemon; exit 1 unless it answers 200",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			report, err := app.Probe(ctx, &http.Client{Timeout: timeout}, url)
			if report.Status == "" {
				return err
			}
			if !quiet {
				if perr := printReport(cmd.OutOrStdout(), report); perr != nil && err == nil {
					return perr
				}
			}
			if err != nil {
				return &unhealthyError{status: report.Status}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:8080/health", "health endpoint to query")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing, only set the exit status")
	return cmd
}

// printReport writes report as indented JSON and returns an unhealthyError
// when its status is error.
func printReport(w io.Writer, report health.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if report.HTTPStatus() != http.StatusOK {
		return &unhealthyError{status: report.Status}
	}
	return nil
}
