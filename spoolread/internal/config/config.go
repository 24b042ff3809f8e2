package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/spooltools/pkg/bambu"
	"github.com/barnettlynn/spooltools/pkg/rfid"
)

type ValidationMode int

const (
	// ValidationReader requires everything needed to talk to a PC/SC reader.
	ValidationReader ValidationMode = iota
	// ValidationImage skips reader settings for offline image reads.
	ValidationImage
)

// Only the uniform 1K geometry (4 blocks per sector) is supported.
const maxSectorCount = rfid.Classic1KSectors

type Config struct {
	Keys    KeysConfig    `yaml:"keys"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Decode  DecodeConfig  `yaml:"decode"`
}

type KeysConfig struct {
	MasterSecretFile string `yaml:"master_secret_file"`
}

type RuntimeConfig struct {
	ReaderIndex *int `yaml:"reader_index"`
	SectorCount int  `yaml:"sector_count,omitempty"`
}

type DecodeConfig struct {
	DatePolicy string `yaml:"date_policy,omitempty"`
}

func Load(path string) (*Config, error) {
	return LoadWithMode(path, ValidationReader)
}

func LoadWithMode(path string, mode ValidationMode) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	cfg.applyDefaults()
	if err := cfg.ValidateWithMode(mode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	return c.ValidateWithMode(ValidationReader)
}

func (c *Config) ValidateWithMode(mode ValidationMode) error {
	if strings.TrimSpace(c.Keys.MasterSecretFile) == "" {
		return fmt.Errorf("config.keys.master_secret_file is required")
	}
	if err := validateReadableFile(c.Keys.MasterSecretFile, "config.keys.master_secret_file"); err != nil {
		return err
	}

	if c.Runtime.SectorCount < 1 || c.Runtime.SectorCount > maxSectorCount {
		return fmt.Errorf("config.runtime.sector_count must be 1..%d", maxSectorCount)
	}
	if _, err := bambu.ParseDatePolicy(c.Decode.DatePolicy); err != nil {
		return fmt.Errorf("config.decode.date_policy: %w", err)
	}

	if mode == ValidationImage {
		return nil
	}
	if c.Runtime.ReaderIndex == nil {
		return fmt.Errorf("config.runtime.reader_index is required")
	}
	if *c.Runtime.ReaderIndex < 0 {
		return fmt.Errorf("config.runtime.reader_index must be >= 0")
	}
	return nil
}

// DatePolicy returns the parsed decode.date_policy. The config must have
// been validated.
func (c *Config) DatePolicy() bambu.DatePolicy {
	p, _ := bambu.ParseDatePolicy(c.Decode.DatePolicy)
	return p
}

func (c *Config) applyDefaults() {
	if c.Runtime.SectorCount == 0 {
		c.Runtime.SectorCount = rfid.Classic1KSectors
	}
}

func (c *Config) resolvePaths(configPath string) {
	configDir := filepath.Dir(configPath)
	c.Keys.MasterSecretFile = resolvePath(configDir, c.Keys.MasterSecretFile)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}

func validateReadableFile(path string, field string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s must point to a file, got directory", field)
	}
	return nil
}
