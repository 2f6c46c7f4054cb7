// Package config centralises configuration parsing for the activity-report service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"example.com/talentcrm/internal/report"
)

// Config captures runtime configuration values for the activity-report service.
type Config struct {
	HTTPAddress         string            `yaml:"http_address"`
	BackendURL          string            `yaml:"backend_url"`
	JWTSecret           string            `yaml:"jwt_secret"`
	JWTIssuer           string            `yaml:"jwt_issuer"`
	SessionCookieName   string            `yaml:"session_cookie_name"`
	UpstreamTimeout     time.Duration     `yaml:"upstream_timeout"`
	NotesConcurrency    int               `yaml:"notes_concurrency"`
	CategoryConcurrency int               `yaml:"category_concurrency"`
	Timezone            string            `yaml:"timezone"`
	KafkaBrokers        []string          `yaml:"kafka_brokers"`
	ReportEventsTopic   string            `yaml:"report_events_topic"`
	LogLevel            string            `yaml:"log_level"`
	CORSAllowedOrigin   string            `yaml:"cors_allowed_origin"`
	Categories          []report.Category `yaml:"categories"`

	// Location is resolved from Timezone by Load.
	Location *time.Location `yaml:"-"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CRM_CONFIG_PATH, and environment variables, in increasing precedence.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddress:         ":8080",
		BackendURL:          "http://localhost:8000",
		JWTSecret:           "dev-secret-change-me",
		SessionCookieName:   "token",
		UpstreamTimeout:     10 * time.Second,
		NotesConcurrency:    report.DefaultNotesConcurrency,
		CategoryConcurrency: 1,
		Timezone:            "Local",
		ReportEventsTopic:   "activity_report_events",
		LogLevel:            "info",
		CORSAllowedOrigin:   "http://localhost:3000",
	}

	if path := os.Getenv("CRM_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.HTTPAddress = getEnv("HTTP_ADDRESS", cfg.HTTPAddress)
	cfg.BackendURL = getEnv("BACKEND_API_URL", cfg.BackendURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.SessionCookieName = getEnv("SESSION_COOKIE_NAME", cfg.SessionCookieName)
	cfg.UpstreamTimeout = getDurationEnv("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.NotesConcurrency = getIntEnv("NOTES_CONCURRENCY", cfg.NotesConcurrency)
	cfg.CategoryConcurrency = getIntEnv("CATEGORY_CONCURRENCY", cfg.CategoryConcurrency)
	cfg.Timezone = getEnv("REPORT_TIMEZONE", cfg.Timezone)
	cfg.ReportEventsTopic = getEnv("REPORT_EVENTS_TOPIC", cfg.ReportEventsTopic)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	if len(cfg.Categories) == 0 {
		cfg.Categories = report.DefaultCategories()
	}
	if err := validateCategories(cfg.Categories); err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

// ReportSettings returns the aggregator tunables.
func (c Config) ReportSettings() report.Settings {
	return report.Settings{
		Categories:          c.Categories,
		NotesConcurrency:    c.NotesConcurrency,
		CategoryConcurrency: c.CategoryConcurrency,
		Location:            c.Location,
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func validateCategories(categories []report.Category) error {
	seen := make(map[string]struct{}, len(categories))
	for i, c := range categories {
		if strings.TrimSpace(c.Key) == "" || strings.TrimSpace(c.Endpoint) == "" {
			return fmt.Errorf("category %d: key and endpoint are required", i)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("category %q defined twice", c.Key)
		}
		seen[c.Key] = struct{}{}
		if c.ResponseKey == "" {
			categories[i].ResponseKey = c.Key
		}
		if c.Label == "" {
			categories[i].Label = c.Key
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
