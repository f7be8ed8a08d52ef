// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/xmltv2db/internal/log"
)

// Defaults applied before the file and the environment are read.
const (
	DefaultDatabase    = "epg.db"
	DefaultEpisodesDir = "~/.eplists/lists"
	DefaultTimezone    = "Local"
	DefaultGrace       = 2 * time.Hour
	DefaultMappings    = "mappings.yaml"
	DefaultLogLevel    = "info"
)

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version string

	Source        SourceConfig
	Database      string
	EpisodesDir   string
	Lang          string
	Timezone      string
	Grace         time.Duration
	Mappings      string
	MetricsListen string
	Log           LogConfig
}

// SourceConfig identifies the EPG source written into every row.
type SourceConfig struct {
	Name  string
	Index int
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FileConfig mirrors the YAML layout. Pointer fields distinguish "absent" from zero.
type FileConfig struct {
	Source        FileSource `yaml:"source"`
	Database      string     `yaml:"database,omitempty"`
	EpisodesDir   string     `yaml:"episodes_dir,omitempty"`
	Lang          string     `yaml:"lang,omitempty"`
	Timezone      string     `yaml:"timezone,omitempty"`
	Grace         string     `yaml:"grace,omitempty"`
	Mappings      string     `yaml:"mappings,omitempty"`
	MetricsListen string     `yaml:"metrics_listen,omitempty"`
	Log           FileLog    `yaml:"log"`
}

// FileSource is the `source` block of the YAML file.
type FileSource struct {
	Name  string `yaml:"name,omitempty"`
	Index *int   `yaml:"index,omitempty"`
}

// FileLog is the `log` block of the YAML file.
type FileLog struct {
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  *int   `yaml:"max_size_mb,omitempty"`
	MaxBackups *int   `yaml:"max_backups,omitempty"`
	MaxAgeDays *int   `yaml:"max_age_days,omitempty"`
	Compress   *bool  `yaml:"compress,omitempty"`
}

// Location resolves Timezone. "Local" and the empty string map to time.Local.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoggerConfig converts the log settings for log.Configure.
func (c AppConfig) LoggerConfig() log.Config {
	return log.Config{
		Level:   c.Log.Level,
		Version: c.Version,
		File: log.FileConfig{
			Path:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
			Compress:   c.Log.Compress,
		},
	}
}
