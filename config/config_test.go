package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
api:
  address: "127.0.0.1"
  port: 8080
database:
  path: "stromtarif.db"
  data_retention_days: 14
dynatarif:
  email: "someone@example.com"
  password_file: "password"
analysis:
  window_hours: 2
mqtt:
  host: ""
logging:
  console_level: "DEBUG"
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	t.Run("Api", func(t *testing.T) {
		if config.Api.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Api.Port)
		}
	})

	t.Run("Database", func(t *testing.T) {
		if config.Database.Path != "stromtarif.db" {
			t.Errorf("expected path stromtarif.db, got %s", config.Database.Path)
		}
		if config.Database.GetDataRetentionDays() != 14 {
			t.Errorf("expected data retention 14, got %d", config.Database.GetDataRetentionDays())
		}
		if config.Database.GetBackupRetentionDays() != 90 {
			t.Errorf("expected default backup retention 90, got %d", config.Database.GetBackupRetentionDays())
		}
	})

	t.Run("Dynatarif", func(t *testing.T) {
		if config.Dynatarif.Email != "someone@example.com" {
			t.Errorf("expected email someone@example.com, got %s", config.Dynatarif.Email)
		}
		if config.Dynatarif.GetBaseUrl() != "https://api.dynatarif.de" {
			t.Errorf("expected default base url, got %s", config.Dynatarif.GetBaseUrl())
		}
	})

	t.Run("Analysis", func(t *testing.T) {
		if config.Analysis.GetWindowHours() != 2 {
			t.Errorf("expected window hours 2, got %d", config.Analysis.GetWindowHours())
		}
		if config.Analysis.GetTopWindows() != 5 {
			t.Errorf("expected default top windows 5, got %d", config.Analysis.GetTopWindows())
		}
	})

	t.Run("Mqtt", func(t *testing.T) {
		if config.Mqtt.Enabled() {
			t.Error("expected mqtt to be disabled without a host")
		}
	})
}
