// cmd/log.go - Logger setup
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/shiena/ansicolor"
	"github.com/sirupsen/logrus"

	"github.com/valpere/tile_render/internal/config"
)

// newLogger builds the application logger from the logging section. The
// returned func closes the log file, if any.
func newLogger(cfg *config.LoggingConfig) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	closer := func() error { return nil }

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		log.SetFormatter(&nested.Formatter{
			HideKeys:        false,
			ShowFullLevel:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var out io.Writer
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
		closer = file.Close
	default:
		out = os.Stderr
	}
	log.SetOutput(ansicolor.NewAnsiColorWriter(out))

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	return log, closer, nil
}
