// Package config loads lineage.toml.
//
// A config file is optional. Keys present in the file replace the defaults
// returned by [Default]; absent keys keep them. Command-line flags are
// applied on top by the caller.
//
//	output_dir = "out"
//	formats = ["json", "svg", "timeline"]
//	workers = 4
//
//	[columns]
//	source = "source_district"
//	dest = "dest_district"
//	year = "dest_year"
//	region = "filter_state"
//
//	[server]
//	addr = ":8080"
//
//	[timeline]
//	width = 1200
//	height = 700
//	margin = 80
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/ingest"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/render/timeline"
)

// FileName is the config file looked up under the user config directory.
const FileName = "lineage.toml"

// DefaultAddr is the listen address of the serve command.
const DefaultAddr = ":8080"

// Config holds the settings shared by all commands.
type Config struct {
	OutputDir string           `toml:"output_dir"`
	Formats   []string         `toml:"formats"`
	Workers   int              `toml:"workers"`
	Columns   ingest.Columns   `toml:"columns"`
	Server    Server           `toml:"server"`
	Timeline  timeline.Options `toml:"timeline"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir: ".",
		Formats:   slices.Clone(pipeline.DefaultFormats),
		Columns:   ingest.DefaultColumns(),
		Server:    Server{Addr: DefaultAddr},
		Timeline:  timeline.DefaultOptions(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lineage/lineage.toml, falling back to
// the platform user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "lineage", FileName)
}

// Load reads the config at path. An empty path loads DefaultPath if that
// file exists and returns the defaults otherwise. An explicit path that does
// not exist is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
		if _, err := os.Stat(path); err != nil {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var file Config
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key(s): %s", strings.Join(keys, ", "))
	}

	cfg := Default()
	if meta.IsDefined("output_dir") {
		cfg.OutputDir = file.OutputDir
	}
	if meta.IsDefined("formats") {
		cfg.Formats = file.Formats
	}
	if meta.IsDefined("workers") {
		cfg.Workers = file.Workers
	}
	if meta.IsDefined("columns", "source") {
		cfg.Columns.Source = file.Columns.Source
	}
	if meta.IsDefined("columns", "dest") {
		cfg.Columns.Dest = file.Columns.Dest
	}
	if meta.IsDefined("columns", "year") {
		cfg.Columns.Year = file.Columns.Year
	}
	if meta.IsDefined("columns", "region") {
		cfg.Columns.Region = file.Columns.Region
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = file.Server.Addr
	}
	if meta.IsDefined("timeline", "width") {
		cfg.Timeline.Width = file.Timeline.Width
	}
	if meta.IsDefined("timeline", "height") {
		cfg.Timeline.Height = file.Timeline.Height
	}
	if meta.IsDefined("timeline", "margin") {
		cfg.Timeline.Margin = file.Timeline.Margin
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config. All failures carry ErrCodeInvalidConfig.
func (c Config) Validate() error {
	if err := errors.ValidateOutputDir(c.OutputDir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output_dir")
	}
	if err := errors.ValidateFormats(c.Formats, pipeline.ValidFormats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "formats")
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}
	for key, col := range map[string]string{
		"columns.source": c.Columns.Source,
		"columns.dest":   c.Columns.Dest,
		"columns.region": c.Columns.Region,
	} {
		if strings.TrimSpace(col) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be empty", key)
		}
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Timeline.Width < 0 || c.Timeline.Height < 0 || c.Timeline.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeline dimensions must be >= 0")
	}
	return nil
}
