package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/talentcrm/internal/api"
	"example.com/talentcrm/internal/auth"
	"example.com/talentcrm/internal/backend"
	"example.com/talentcrm/internal/config"
	"example.com/talentcrm/internal/events"
	"example.com/talentcrm/internal/observability"
	"example.com/talentcrm/internal/report"
	httptransport "example.com/talentcrm/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ReportEventsTopic)
	}
	defer publisher.Close()

	client := backend.NewClient(cfg.BackendURL, cfg.UpstreamTimeout)
	aggregator := report.NewAggregator(client, cfg.ReportSettings(), report.WithLogger(logger.Named("report")))

	handler := api.NewHandler(aggregator, api.WithLogger(logger.Named("api")), api.WithPublisher(publisher))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	skipper := func(r *http.Request) bool {
		return r.URL.Path == "/healthz" || r.URL.Path == "/metrics" || r.Method == http.MethodOptions
	}
	authMiddleware := auth.NewMiddleware(
		auth.NewJWTAuthenticator(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}),
		cfg.SessionCookieName,
		skipper,
		api.Unauthorized,
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}, httptransport.Chain(mux,
		httptransport.RequestID,
		httptransport.AccessLog(logger.Named("http")),
		httptransport.CORS(cfg.CORSAllowedOrigin),
		authMiddleware.Wrap,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("activity-report service listening",
		zap.String("address", cfg.HTTPAddress),
		zap.String("backend", cfg.BackendURL),
		zap.Int("categories", len(cfg.Categories)))
	if err := httptransport.Serve(ctx, server, 15*time.Second); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
