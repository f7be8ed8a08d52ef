// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys.
const (
	EnvSource        = "XMLTV2DB_SOURCE"
	EnvSourceIndex   = "XMLTV2DB_SOURCE_INDEX"
	EnvDatabase      = "XMLTV2DB_DATABASE"
	EnvEpisodesDir   = "XMLTV2DB_EPISODES_DIR"
	EnvLang          = "XMLTV2DB_LANG"
	EnvTimezone      = "XMLTV2DB_TIMEZONE"
	EnvGrace         = "XMLTV2DB_GRACE"
	EnvMappings      = "XMLTV2DB_MAPPINGS"
	EnvMetricsListen = "XMLTV2DB_METRICS_LISTEN"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFile       = "XMLTV2DB_LOG_FILE"
	EnvLogCompress   = "XMLTV2DB_LOG_COMPRESS"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults,
// then validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	dir, err := expandHome(cfg.EpisodesDir)
	if err != nil {
		return cfg, fmt.Errorf("episodes dir: %w", err)
	}
	cfg.EpisodesDir = dir
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() AppConfig {
	return AppConfig{
		Database:    DefaultDatabase,
		EpisodesDir: DefaultEpisodesDir,
		Timezone:    DefaultTimezone,
		Grace:       DefaultGrace,
		Mappings:    DefaultMappings,
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, src *FileConfig) error {
	if src.Source.Name != "" {
		cfg.Source.Name = src.Source.Name
	}
	if src.Source.Index != nil {
		cfg.Source.Index = *src.Source.Index
	}
	if src.Database != "" {
		cfg.Database = src.Database
	}
	if src.EpisodesDir != "" {
		cfg.EpisodesDir = src.EpisodesDir
	}
	if src.Lang != "" {
		cfg.Lang = src.Lang
	}
	if src.Timezone != "" {
		cfg.Timezone = src.Timezone
	}
	if src.Grace != "" {
		d, err := time.ParseDuration(src.Grace)
		if err != nil {
			return fmt.Errorf("grace: %w", err)
		}
		cfg.Grace = d
	}
	if src.Mappings != "" {
		cfg.Mappings = src.Mappings
	}
	if src.MetricsListen != "" {
		cfg.MetricsListen = src.MetricsListen
	}

	if src.Log.Level != "" {
		cfg.Log.Level = src.Log.Level
	}
	if src.Log.File != "" {
		cfg.Log.File = src.Log.File
	}
	if src.Log.MaxSizeMB != nil {
		cfg.Log.MaxSizeMB = *src.Log.MaxSizeMB
	}
	if src.Log.MaxBackups != nil {
		cfg.Log.MaxBackups = *src.Log.MaxBackups
	}
	if src.Log.MaxAgeDays != nil {
		cfg.Log.MaxAgeDays = *src.Log.MaxAgeDays
	}
	if src.Log.Compress != nil {
		cfg.Log.Compress = *src.Log.Compress
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Source.Name = l.envString(EnvSource, cfg.Source.Name)
	cfg.Source.Index = l.envInt(EnvSourceIndex, cfg.Source.Index)
	cfg.Database = l.envString(EnvDatabase, cfg.Database)
	cfg.EpisodesDir = l.envString(EnvEpisodesDir, cfg.EpisodesDir)
	// The plain locale variable only fills in when nothing else named a language.
	cfg.Lang = l.envString(EnvLang, cfg.Lang)
	if cfg.Lang == "" {
		cfg.Lang = l.envString("LANG", "")
	}
	cfg.Timezone = l.envString(EnvTimezone, cfg.Timezone)
	cfg.Grace = l.envDuration(EnvGrace, cfg.Grace)
	cfg.Mappings = l.envString(EnvMappings, cfg.Mappings)
	cfg.MetricsListen = l.envString(EnvMetricsListen, cfg.MetricsListen)
	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.File = l.envString(EnvLogFile, cfg.Log.File)
	cfg.Log.Compress = l.envBool(EnvLogCompress, cfg.Log.Compress)
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
