package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.SnapperBin != "snapper" {
		t.Errorf("SnapperBin = %s, want snapper", cfg.SnapperBin)
	}
	if cfg.BtrfsBin != "btrfs" {
		t.Errorf("BtrfsBin = %s, want btrfs", cfg.BtrfsBin)
	}
	if cfg.DatabasePath == "" {
		t.Error("DatabasePath not set by default")
	}
	if cfg.Pushgateway.Job != "snapsweep" {
		t.Errorf("Pushgateway.Job = %s, want snapsweep", cfg.Pushgateway.Job)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
snapper_bin: /usr/local/bin/snapper
database_path: /srv/snapsweep/history.db
pushgateway:
  url: http://pushgateway:9091
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SnapperBin != "/usr/local/bin/snapper" {
		t.Errorf("SnapperBin = %s", cfg.SnapperBin)
	}
	if cfg.BtrfsBin != "btrfs" {
		t.Errorf("BtrfsBin = %s, want default btrfs", cfg.BtrfsBin)
	}
	if cfg.DatabasePath != "/srv/snapsweep/history.db" {
		t.Errorf("DatabasePath = %s", cfg.DatabasePath)
	}
	if cfg.Pushgateway.URL != "http://pushgateway:9091" {
		t.Errorf("Pushgateway.URL = %s", cfg.Pushgateway.URL)
	}
	if cfg.Pushgateway.Job != "snapsweep" {
		t.Errorf("Pushgateway.Job = %s, want default snapsweep", cfg.Pushgateway.Job)
	}
}

func TestLoadEmptyDatabaseDisablesHistory(t *testing.T) {
	path := writeConfig(t, `database_path: ""`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabasePath != "" {
		t.Errorf("DatabasePath = %s, want empty", cfg.DatabasePath)
	}
}

func TestLoadRejectsRelativeDatabasePath(t *testing.T) {
	path := writeConfig(t, `database_path: relative/history.db`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted a relative database_path")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() on a missing file did not fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "snapper_bin: [unterminated")

	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted invalid yaml")
	}
}
