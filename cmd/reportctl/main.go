package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"example.com/talentcrm/internal/api"
	"example.com/talentcrm/internal/auth"
	"example.com/talentcrm/internal/backend"
	"example.com/talentcrm/internal/config"
	"example.com/talentcrm/internal/events"
	"example.com/talentcrm/internal/observability"
	"example.com/talentcrm/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	start   string
	end     string
	token   string
	backend string
	publish bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "reportctl",
		Short:        "Compute a CRM activity report for the owner of a session token",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.start, "start", "", "first day of the window (YYYY-MM-DD)")
	flags.StringVar(&opts.end, "end", "", "last day of the window (YYYY-MM-DD)")
	flags.StringVar(&opts.token, "token", os.Getenv("CRM_SESSION_TOKEN"), "session token (defaults to $CRM_SESSION_TOKEN)")
	flags.StringVar(&opts.backend, "backend", "", "override BACKEND_API_URL")
	flags.BoolVar(&opts.publish, "publish", false, "emit a report-generated event to KAFKA_BROKERS")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log category progress to stderr")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.backend != "" {
		cfg.BackendURL = opts.backend
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = observability.NewLogger("debug"); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	claims, err := auth.NewJWTAuthenticator(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}).Verify(opts.token)
	if err != nil {
		return fmt.Errorf("session token rejected: %w", err)
	}

	window, err := report.ParseRange(opts.start, opts.end, cfg.Location)
	if err != nil {
		return err
	}

	aggregator := report.NewAggregator(backend.NewClient(cfg.BackendURL, cfg.UpstreamTimeout), cfg.ReportSettings(), report.WithLogger(logger))
	rep, err := aggregator.Generate(ctx, report.Request{UserID: claims.Subject, Token: claims.Token, Range: window})
	if err != nil {
		return err
	}

	if opts.publish {
		if len(cfg.KafkaBrokers) == 0 {
			return errors.New("--publish requires KAFKA_BROKERS")
		}
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ReportEventsTopic)
		defer publisher.Close()
		if err := publisher.PublishReportGenerated(ctx, events.NewReportGenerated(rep, "", time.Now())); err != nil {
			return fmt.Errorf("publish report event: %w", err)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(api.NewReportResponse(rep))
}
