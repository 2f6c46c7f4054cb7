package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRM_CONFIG_PATH", "")
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("NOTES_CONCURRENCY", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 6, cfg.NotesConcurrency)
	require.Len(t, cfg.Categories, 6)
	require.Equal(t, time.UTC, cfg.Location)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend_url: http://backend.internal:9000
upstream_timeout: 3s
notes_concurrency: 4
timezone: America/New_York
categories:
  - key: tasks
    endpoint: tasks
  - key: leads
    label: Leads
    endpoint: leads
    response_key: leads
`), 0o600))

	t.Setenv("CRM_CONFIG_PATH", path)
	t.Setenv("NOTES_CONCURRENCY", "8")
	t.Setenv("REPORT_TIMEZONE", "")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend.internal:9000", cfg.BackendURL)
	require.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 8, cfg.NotesConcurrency)
	require.Equal(t, "America/New_York", cfg.Location.String())
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)

	require.Len(t, cfg.Categories, 2)
	require.Equal(t, "tasks", cfg.Categories[0].ResponseKey)
	require.Equal(t, "tasks", cfg.Categories[0].Label)

	settings := cfg.ReportSettings()
	require.Equal(t, 8, settings.NotesConcurrency)
	require.Equal(t, cfg.Location, settings.Location)
}

func TestLoadRejectsDuplicateCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - {key: jobs, endpoint: jobs}
  - {key: jobs, endpoint: jobs}
`), 0o600))
	t.Setenv("CRM_CONFIG_PATH", path)

	_, err := Load()
	require.ErrorContains(t, err, "defined twice")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("CRM_CONFIG_PATH", "")
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}
