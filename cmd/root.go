// cmd/root.go - Root command implementation
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/tile_render/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tile-render",
	Short: "Render vector tile layers into images",
	Long: `TileRender draws vector tile layers onto raster images. The tiles covering the
requested area are loaded and drawn concurrently, one render session per layer.

Data Sources:
- Local tile directories laid out as z/x/y.mvt (optionally gzipped)
- bbolt tile stores created with the import command

Features:
- Concurrent tiled rendering with progress reporting and cancellation
- Styles for markers, lines and polygons persisted as JSON
- Feature dumps of single tiles as JSON or WKT
- Geometry conversion between the JSON and WKT codecs

Examples:
  # Render a local tile directory at zoom 12
  tile-render render --base-path ./tiles --bbox "-74.05,40.68,-73.90,40.82" --wgs84 --zoom 12 -o nyc.png

  # Import a directory into a bbolt store, then render from it
  tile-render import --base-path ./tiles --bolt-path tiles.db
  tile-render render --bolt-path tiles.db --style style.json -o world.png

  # Dump the features of one tile as WKT
  tile-render convert --base-path ./tiles --z 14 --x 8362 --y 5956 --format wkt

  # Convert a geometry between JSON and WKT
  tile-render convert --geometry "POINT (1 2)" --to json`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tile-render.yaml)")

	// Source configuration flags
	rootCmd.PersistentFlags().String("source-type", "auto", "data source type (auto, local, bolt)")
	rootCmd.PersistentFlags().String("base-path", "", "base path for local tiles (local source)")
	rootCmd.PersistentFlags().String("bolt-path", "", "bbolt tile store (bolt source)")
	rootCmd.PersistentFlags().String("scheme", "xyz", "row numbering of stored tiles (xyz, tms)")
	rootCmd.PersistentFlags().StringSlice("layers", nil, "vector tile layers to decode (default: all)")

	// Processing flags
	rootCmd.PersistentFlags().Int("threads", 0, "render threads per layer (default: number of CPUs)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Bind flags to viper
	viper.BindPFlag("source.type", rootCmd.PersistentFlags().Lookup("source-type"))
	viper.BindPFlag("source.base_path", rootCmd.PersistentFlags().Lookup("base-path"))
	viper.BindPFlag("source.bolt_path", rootCmd.PersistentFlags().Lookup("bolt-path"))
	viper.BindPFlag("source.scheme", rootCmd.PersistentFlags().Lookup("scheme"))
	viper.BindPFlag("source.layers", rootCmd.PersistentFlags().Lookup("layers"))
	viper.BindPFlag("logging.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tile-render" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tile-render")
	}

	// Environment variables, e.g. TILE_RENDER_SOURCE_BASE_PATH
	viper.SetEnvPrefix("TILE_RENDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("logging.verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// setup loads the configuration and builds the logger. The returned func
// releases the logger output.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, func() error, error) {
	// --threads 0 keeps the configured default
	if cmd.Flags().Changed("threads") {
		threads, _ := cmd.Flags().GetInt("threads")
		viper.Set("render.threads", threads)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closer, err := newLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithField("command", cmd.Name()).Debug("Configuration loaded")
	return cfg, log, closer, nil
}
