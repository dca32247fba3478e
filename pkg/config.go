// Package pkg provides the disc scanning pipeline for PlayStation CD images.
// This file contains the optional YAML configuration.
package pkg

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hansbonini/psxstr/pkg/common"
	"gopkg.in/yaml.v3"
)

// Default values applied by LoadConfig.
const (
	DefaultLanguage      = "en"
	DefaultLogMaxSizeMB  = 25
	DefaultLogMaxAgeDays = 7
	DefaultLogMaxBackups = 5
)

// LogConfig configures the rotating log file.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// ScanConfig configures the Indexer.
type ScanConfig struct {
	Workers          int  `yaml:"workers"`          // Goroutines used for per-stream summaries
	LittleEndianBits bool `yaml:"littleEndianBits"` // Word order for the bits command
}

// Config is the psxstr configuration file.
type Config struct {
	Language string     `yaml:"language"`
	Logs     LogConfig  `yaml:"logs"`
	Scan     ScanConfig `yaml:"scan"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults("")
	return cfg
}

// LoadConfig reads a YAML configuration file and fills in defaults. An
// empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", common.ErrFailedToLoadConfig, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %s: %w", common.ErrFailedToLoadConfig, path, err)
	}
	cfg.applyDefaults(filepath.Dir(path))

	common.LogDebug(common.InfoConfigLoaded, path)
	return cfg, nil
}

func (c *Config) applyDefaults(baseDir string) {
	if strings.TrimSpace(c.Language) == "" {
		c.Language = DefaultLanguage
	}
	if c.Logs.File != "" && baseDir != "" && !filepath.IsAbs(c.Logs.File) {
		c.Logs.File = filepath.Join(baseDir, c.Logs.File)
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logs.MaxAgeDays <= 0 {
		c.Logs.MaxAgeDays = DefaultLogMaxAgeDays
	}
	if c.Logs.MaxBackups <= 0 {
		c.Logs.MaxBackups = DefaultLogMaxBackups
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = runtime.NumCPU()
	}
}

// LogFileOptions converts the log section for common.SetupLogFile.
func (c Config) LogFileOptions() common.LogFileOptions {
	return common.LogFileOptions{
		Filename:   c.Logs.File,
		MaxSizeMB:  c.Logs.MaxSizeMB,
		MaxAgeDays: c.Logs.MaxAgeDays,
		MaxBackups: c.Logs.MaxBackups,
		Compress:   c.Logs.Compress,
	}
}
