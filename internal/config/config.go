package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is consulted when no config file flag is given. A missing
// file there is not an error, the built-in defaults apply instead.
const DefaultPath = "/etc/snapsweep/config.yaml"

type PushgatewayCfg struct {
	URL string `yaml:"url" json:"url"`
	Job string `yaml:"job" json:"job"`
}

type Config struct {
	SnapperBin   string         `yaml:"snapper_bin" json:"snapper_bin"`     // snapper executable (default "snapper")
	BtrfsBin     string         `yaml:"btrfs_bin" json:"btrfs_bin"`         // btrfs executable (default "btrfs")
	DatabasePath string         `yaml:"database_path" json:"database_path"` // history database, empty disables recording
	Pushgateway  PushgatewayCfg `yaml:"pushgateway" json:"pushgateway"`     // metrics push target, empty URL disables
}

var errRelativeDatabase = errors.New("database_path must be absolute")

// Default returns the configuration used when no config file is present
func Default() *Config {
	return &Config{
		SnapperBin:   "snapper",
		BtrfsBin:     "btrfs",
		DatabasePath: "/var/lib/snapsweep/history.db",
		Pushgateway:  PushgatewayCfg{Job: "snapsweep"},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.SnapperBin == "" {
		c.SnapperBin = "snapper"
	}
	if c.BtrfsBin == "" {
		c.BtrfsBin = "btrfs"
	}
	if c.Pushgateway.Job == "" {
		c.Pushgateway.Job = "snapsweep"
	}

	// DatabasePath left empty means history recording is disabled.
	if c.DatabasePath != "" && !filepath.IsAbs(c.DatabasePath) {
		return fmt.Errorf("%w: %s", errRelativeDatabase, c.DatabasePath)
	}

	return nil
}
