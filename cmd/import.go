// cmd/import.go - Tile directory import command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/valpere/tile_render/internal/layer/bolt"
	"github.com/valpere/tile_render/internal/layer/local"
	"github.com/valpere/tile_render/internal/source"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a tile directory into a bbolt store",
	Long: `Copy every tile of a local z/x/y directory into a bbolt store and record the
layer name, scheme and extents next to them. The store can then be rendered
with --bolt-path.

Examples:
  # Import a directory of gzipped tiles counted in TMS rows
  tile-render import --base-path ./tiles --scheme tms --bolt-path tiles.db

  # Import with a custom layer name and more readers
  tile-render import --base-path ./tiles --bolt-path tiles.db --name roads --readers 8`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("name", "", "layer name stored with the tiles (default: directory name)")
	importCmd.Flags().Int("readers", 4, "number of concurrent file readers")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Source.BasePath == "" || cfg.Source.BoltPath == "" {
		return fmt.Errorf("both --base-path and --bolt-path are required")
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		cfg.Source.Name = name
	}
	readers, _ := cmd.Flags().GetInt("readers")

	processor, err := source.NewLayerFactory(cfg, log).Processor()
	if err != nil {
		return err
	}
	src, err := local.New(0, cfg, processor)
	if err != nil {
		return fmt.Errorf("failed to open tile directory: %w", err)
	}

	storage, closeStorage, err := bolt.NewStorage(cfg.Source.BoltPath, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *pb.ProgressBar
	opts := bolt.ImportOptions{Readers: readers}
	if cfg.Logging.Progress {
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = pb.New(total).Prefix(fmt.Sprintf("%s : ", src.Name()))
				bar.Output = os.Stderr
				bar.SetRefreshRate(time.Second)
				bar.Start()
			}
			bar.Set(done)
		}
	}

	start := time.Now()
	infos, err := storage.Import(ctx, src, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"name":     infos.Name,
		"tiles":    infos.TileCount,
		"extents":  infos.Extents.String(),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Tiles imported")
	return nil
}
