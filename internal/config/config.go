// internal/config/config.go - Configuration management
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/tile_render/internal"
)

// Config represents the complete application configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Render  RenderConfig  `mapstructure:"render"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SourceConfig describes where vector tiles are read from
type SourceConfig struct {
	Type       string   `mapstructure:"type"`
	Name       string   `mapstructure:"name"`
	BasePath   string   `mapstructure:"base_path"`
	Extension  string   `mapstructure:"extension"`
	Compressed bool     `mapstructure:"compressed"`
	Scheme     string   `mapstructure:"scheme"`
	BoltPath   string   `mapstructure:"bolt_path"`
	Layers     []string `mapstructure:"layers"`
}

// RenderConfig contains render engine settings
type RenderConfig struct {
	Threads          int           `mapstructure:"threads"`
	TerminateTimeout time.Duration `mapstructure:"terminate_timeout"`
	NotifySteps      int           `mapstructure:"notify_steps"`
	StyleFile        string        `mapstructure:"style_file"`
}

// OutputConfig contains output configuration
type OutputConfig struct {
	Format      string  `mapstructure:"format"`
	File        string  `mapstructure:"file"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	Background  string  `mapstructure:"background"`
	FontFile    string  `mapstructure:"font_file"`
	FontSize    float64 `mapstructure:"font_size"`
	Compression bool    `mapstructure:"compression"`
	Pretty      bool    `mapstructure:"pretty"`
	Stdout      bool    `mapstructure:"stdout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	File     string `mapstructure:"file"`
	Verbose  bool   `mapstructure:"verbose"`
	Progress bool   `mapstructure:"progress"`
}

// MetricsConfig controls the Prometheus metrics of render sessions
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Set default values
	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults configures default values for all configuration options
func setDefaults() {
	// Source defaults
	viper.SetDefault("source.type", "auto")
	viper.SetDefault("source.extension", ".mvt")
	viper.SetDefault("source.compressed", false)
	viper.SetDefault("source.scheme", "xyz")

	// Render defaults
	viper.SetDefault("render.threads", runtime.NumCPU())
	viper.SetDefault("render.terminate_timeout", 650*time.Millisecond)
	viper.SetDefault("render.notify_steps", 10)

	// Output defaults
	viper.SetDefault("output.format", "png")
	viper.SetDefault("output.width", 1024)
	viper.SetDefault("output.height", 1024)
	viper.SetDefault("output.background", "#ffffffff")
	viper.SetDefault("output.font_size", 12.0)
	viper.SetDefault("output.pretty", true)
	viper.SetDefault("output.compression", false)
	viper.SetDefault("output.stdout", false)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stderr")
	viper.SetDefault("logging.verbose", false)
	viper.SetDefault("logging.progress", true)

	viper.SetDefault("metrics.enabled", false)
}

// DetermineSourceType resolves "auto" from the configured paths. A bolt file
// wins over a tile directory.
func (c *Config) DetermineSourceType() internal.SourceType {
	switch c.Source.Type {
	case string(internal.SourceTypeLocal):
		return internal.SourceTypeLocal
	case string(internal.SourceTypeBolt):
		return internal.SourceTypeBolt
	}

	if c.Source.BoltPath != "" {
		return internal.SourceTypeBolt
	}
	return internal.SourceTypeLocal
}

// GetTilePath builds a local file path, y counted in the source scheme
func (c *Config) GetTilePath(z, x, y int) string {
	if c.Source.BasePath == "" {
		return ""
	}
	extension := c.Source.Extension
	if c.Source.Compressed {
		extension += ".gz"
	}
	return filepath.Join(c.Source.BasePath, fmt.Sprint(z), fmt.Sprint(x), fmt.Sprintf("%d%s", y, extension))
}
