// Package config loads workgrid settings from workgrid.yaml, WORKGRID_*
// environment variables and built-in defaults, in increasing precedence
// order file < env.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/workgrid/internal/columns"
	"github.com/alexanderramin/workgrid/internal/gantt"
	"github.com/alexanderramin/workgrid/internal/hierarchy"
	"github.com/spf13/viper"
)

const (
	fileName  = "workgrid"
	fileType  = "yaml"
	envPrefix = "WORKGRID"

	// EnvConfigDir overrides the directory searched for workgrid.yaml.
	EnvConfigDir = "WORKGRID_CONFIG_DIR"
)

type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
}

// SlogLevel parses Level; unknown names fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

type HierarchyConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

type ColumnsConfig struct {
	StatusKeywords columns.StatusKeywords `mapstructure:"status_keywords"`
}

// Config holds all runtime configuration.
type Config struct {
	DBPath    string          `mapstructure:"db_path"`
	Log       LogConfig       `mapstructure:"log"`
	Gantt     gantt.Config    `mapstructure:"gantt"`
	Hierarchy HierarchyConfig `mapstructure:"hierarchy"`
	Columns   ColumnsConfig   `mapstructure:"columns"`

	// ConfigFile is the file the values were read from, empty when none was
	// found.
	ConfigFile string `mapstructure:"-"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config path (the --config flag). It must exist.
	File string
}

func setDefaults(v *viper.Viper, home string) {
	g := gantt.DefaultConfig()
	kw := columns.DefaultStatusKeywords()

	v.SetDefault("db_path", filepath.Join(home, ".workgrid", "workgrid.db"))
	v.SetDefault("log.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("gantt.padding_days", g.PaddingDays)
	v.SetDefault("gantt.lookahead_days", g.LookaheadDays)
	v.SetDefault("gantt.zoom", g.Zoom)
	v.SetDefault("gantt.row_height", g.RowHeight)
	v.SetDefault("hierarchy.max_depth", hierarchy.DefaultMaxDepth)
	v.SetDefault("columns.status_keywords.todo", kw.Todo)
	v.SetDefault("columns.status_keywords.in_progress", kw.InProgress)
	v.SetDefault("columns.status_keywords.complete", kw.Complete)
}

// Load resolves the configuration. A missing workgrid.yaml in the search
// directories is not an error; a missing explicit file is.
func Load(opts Options) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, home)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		if dir := os.Getenv(EnvConfigDir); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "workgrid"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engines cannot run with.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path must not be empty")
	}
	if _, err := gantt.ParseZoom(c.Gantt.Zoom); err != nil {
		return fmt.Errorf("config: gantt.zoom: %w", err)
	}
	if c.Gantt.PaddingDays < 0 || c.Gantt.LookaheadDays < 0 {
		return errors.New("config: gantt padding and lookahead must not be negative")
	}
	if c.Hierarchy.MaxDepth < 1 {
		return fmt.Errorf("config: hierarchy.max_depth must be positive, got %d", c.Hierarchy.MaxDepth)
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
