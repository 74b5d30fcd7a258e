// internal/config/validation.go - Configuration validation
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/valpere/tile_render/internal"
	"github.com/valpere/tile_render/internal/tile"
)

// Validate validates the configuration structure and values
func Validate(config *Config) error {
	if err := validateSource(&config.Source); err != nil {
		return fmt.Errorf("source configuration invalid: %w", err)
	}

	if err := validateRender(&config.Render); err != nil {
		return fmt.Errorf("render configuration invalid: %w", err)
	}

	if err := validateOutput(&config.Output); err != nil {
		return fmt.Errorf("output configuration invalid: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging configuration invalid: %w", err)
	}

	return nil
}

// validateSource validates tile source parameters
func validateSource(config *SourceConfig) error {
	validTypes := []string{"auto", string(internal.SourceTypeLocal), string(internal.SourceTypeBolt)}
	if !contains(validTypes, config.Type) {
		return fmt.Errorf("invalid type: %s, must be one of %v", config.Type, validTypes)
	}

	if _, err := tile.ParseScheme(config.Scheme); err != nil {
		return err
	}

	if config.Extension != "" && !strings.HasPrefix(config.Extension, ".") {
		return fmt.Errorf("extension must start with a dot: %s", config.Extension)
	}

	return nil
}

// validateRender validates render engine parameters
func validateRender(config *RenderConfig) error {
	if config.Threads <= 0 {
		return fmt.Errorf("threads must be positive")
	}

	if config.Threads > 1000 {
		return fmt.Errorf("threads must not exceed 1000")
	}

	if config.TerminateTimeout <= 0 {
		return fmt.Errorf("terminate_timeout must be positive")
	}

	if config.NotifySteps <= 0 {
		return fmt.Errorf("notify_steps must be positive")
	}

	return nil
}

// validateOutput validates output configuration parameters
func validateOutput(config *OutputConfig) error {
	validFormats := []string{"png", "json", "wkt"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid format: %s, must be one of %v", config.Format, validFormats)
	}

	if config.Width <= 0 || config.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}

	if config.FontSize < 0 {
		return fmt.Errorf("font_size must be non-negative")
	}

	return nil
}

// validateLogging validates logging configuration parameters
func validateLogging(config *LoggingConfig) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of %v", config.Level, validLevels)
	}

	validFormats := []string{"text", "json"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of %v", config.Format, validFormats)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validOutputs, config.Output) {
		return fmt.Errorf("invalid log output: %s, must be one of %v", config.Output, validOutputs)
	}

	if strings.EqualFold(config.Output, "file") && config.File == "" {
		return fmt.Errorf("file is required when logging to a file")
	}

	return nil
}

// ValidateLocalTileDirectory checks that the local tile directory exists
func ValidateLocalTileDirectory(config *Config) error {
	if config.Source.BasePath == "" {
		return fmt.Errorf("base_path is required for local source")
	}

	info, err := os.Stat(config.Source.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return internal.NewError(internal.ErrorCodeNotFound, "tile directory does not exist: "+config.Source.BasePath, err)
		}
		return internal.NewError(internal.ErrorCodeFileSystem, "cannot access tile directory: "+config.Source.BasePath, err)
	}

	if !info.IsDir() {
		return internal.NewError(internal.ErrorCodeValidation, "base_path is not a directory: "+config.Source.BasePath, nil)
	}

	return nil
}

// contains checks if a string slice contains a specific string (case-insensitive)
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
