package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"GrantReport/internal/app"
	"GrantReport/internal/config"
	"GrantReport/internal/domain"
	"GrantReport/internal/logging"
	"GrantReport/internal/report"
)

var rootCmd = &cobra.Command{
	Use:           "grantreport",
	Long:          "Load grant applications from the upstream API and serve aggregated reports",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and the refresh scheduler when configured)",
	RunE:  runServe,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the stored applications with the upstream set and exit",
	RunE:  runLoad,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the report once and print it as JSON",
	RunE:  runReport,
}

var args struct {
	asOf string
}

func main() {
	reportCmd.Flags().StringVar(&args.asOf, "as-of", "", "pin the report day (YYYY-MM-DD)")
	rootCmd.AddCommand(serveCmd, loadCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(clock report.Clock) (context.Context, context.CancelFunc, *app.Application, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger, clock)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, application, nil
}

func runServe(cmd *cobra.Command, argv []string) error {
	ctx, cancel, application, err := setup(nil)
	if err != nil {
		return err
	}
	defer cancel()
	defer application.Close()

	return application.Serve(ctx)
}

func runLoad(cmd *cobra.Command, argv []string) error {
	ctx, cancel, application, err := setup(nil)
	if err != nil {
		return err
	}
	defer cancel()
	defer application.Close()

	count, err := application.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d applications successfully loaded into database.\n", count)
	return nil
}

func runReport(cmd *cobra.Command, argv []string) error {
	clock, err := clockFor(args.asOf)
	if err != nil {
		return err
	}

	ctx, cancel, application, err := setup(clock)
	if err != nil {
		return err
	}
	defer cancel()
	defer application.Close()

	payload, err := application.Report(ctx)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return fmt.Errorf("format report: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(cmd.OutOrStdout())
	return err
}

// clockFor pins the clock to noon UTC of asOf, so any report timezone sees the same day.
func clockFor(asOf string) (report.Clock, error) {
	if asOf == "" {
		return nil, nil
	}
	day, err := time.Parse(domain.DateLayout, asOf)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q: %w", asOf, err)
	}
	return report.FixedClock(day.Add(12 * time.Hour)), nil
}
