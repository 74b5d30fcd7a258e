// cmd/render.go - Map rendering command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/valpere/tile_render/internal/config"
	"github.com/valpere/tile_render/internal/display"
	"github.com/valpere/tile_render/internal/mapview"
	"github.com/valpere/tile_render/internal/output"
	"github.com/valpere/tile_render/internal/render"
	"github.com/valpere/tile_render/internal/source"
	"github.com/valpere/tile_render/internal/style"
	"github.com/valpere/tile_render/pkg/geometry"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a tile layer into a PNG image",
	Long: `Render the configured tile layer into a PNG image.

The tiles covering the bounding box are drawn concurrently. Without --bbox the
extents of the layer are used. Without --zoom the tile zoom follows the image
resolution. Interrupting the command cancels the running draw and writes what
was drawn so far.

Examples:
  # Render a directory with the default style
  tile-render render --base-path ./tiles -o map.png

  # Render a WGS84 bounding box at zoom 12 with a renderer document
  tile-render render --bolt-path tiles.db --bbox "2.25,48.81,2.42,48.90" --wgs84 --zoom 12 --style style.json -o paris.png

  # Export render metrics for the node exporter textfile collector
  tile-render render --base-path ./tiles --metrics --metrics-textfile /var/lib/node_exporter/tile_render.prom -o map.png`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("bbox", "", "bounding box minx,miny,maxx,maxy (default: layer extents)")
	renderCmd.Flags().Bool("wgs84", false, "bounding box is given in longitude/latitude")
	renderCmd.Flags().Float64("zoom", -1, "tile zoom level (default: from image resolution)")
	renderCmd.Flags().Int("width", 1024, "image width in pixels")
	renderCmd.Flags().Int("height", 1024, "image height in pixels")
	renderCmd.Flags().String("style", "", "renderer document with the layer style")
	renderCmd.Flags().String("background", "#ffffffff", "background colour")
	renderCmd.Flags().String("font", "", "TrueType font for labels")
	renderCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
	renderCmd.Flags().Bool("compression", false, "gzip the output file")
	renderCmd.Flags().Bool("progress", true, "show a progress bar")
	renderCmd.Flags().Bool("metrics", false, "collect render metrics")
	renderCmd.Flags().String("metrics-textfile", "", "write collected metrics to this file")

	viper.BindPFlag("render.style_file", renderCmd.Flags().Lookup("style"))
	viper.BindPFlag("output.width", renderCmd.Flags().Lookup("width"))
	viper.BindPFlag("output.height", renderCmd.Flags().Lookup("height"))
	viper.BindPFlag("output.background", renderCmd.Flags().Lookup("background"))
	viper.BindPFlag("output.font_file", renderCmd.Flags().Lookup("font"))
	viper.BindPFlag("output.file", renderCmd.Flags().Lookup("output"))
	viper.BindPFlag("output.compression", renderCmd.Flags().Lookup("compression"))
	viper.BindPFlag("logging.progress", renderCmd.Flags().Lookup("progress"))
	viper.BindPFlag("metrics.enabled", renderCmd.Flags().Lookup("metrics"))
	viper.BindPFlag("metrics.textfile", renderCmd.Flags().Lookup("metrics-textfile"))
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	start := time.Now()

	// Create the layer
	factory := source.NewLayerFactory(cfg, log)
	layer, closeLayer, err := factory.CreateLayer(1)
	if err != nil {
		return fmt.Errorf("failed to create layer: %w", err)
	}
	defer closeLayer()

	bounds, err := renderBounds(cmd, layer)
	if err != nil {
		return err
	}

	// Create the display
	background, err := style.ParseColor(cfg.Output.Background)
	if err != nil {
		return fmt.Errorf("invalid background: %w", err)
	}
	rasterOpts := []display.RasterOption{display.WithBackground(background)}
	if cfg.Output.FontFile != "" {
		rasterOpts = append(rasterOpts, display.WithFontFace(cfg.Output.FontFile, cfg.Output.FontSize))
	}
	if zoom, _ := cmd.Flags().GetFloat64("zoom"); zoom >= 0 {
		rasterOpts = append(rasterOpts, display.WithZoom(zoom))
	}
	raster, err := display.NewRaster(cfg.Output.Width, cfg.Output.Height, bounds, rasterOpts...)
	if err != nil {
		return fmt.Errorf("failed to create display: %w", err)
	}
	defer raster.Close()

	// Engine options
	engineOpts := []render.Option{
		render.WithThreads(cfg.Render.Threads),
		render.WithTerminateTimeout(cfg.Render.TerminateTimeout),
		render.WithNotifySteps(cfg.Render.NotifySteps),
		render.WithScheme(layer.Scheme()),
	}
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		engineOpts = append(engineOpts, render.WithMetrics(render.NewMetrics(registry)))
	}

	var reporter mapview.ProgressReporter
	if cfg.Logging.Progress {
		reporter = newBarReporter(layer.Name())
	}

	m := mapview.NewMap(reporter, log, engineOpts...)
	engine, err := m.AddLayer(layer, defaultStyle())
	if err != nil {
		return err
	}
	if err := loadRenderer(engine, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"layer":  layer.Name(),
		"bounds": bounds.String(),
		"zoom":   raster.ZoomLevel(),
	}).Info("Rendering")

	result := m.Draw(ctx, raster)

	// Write the image even when some tiles failed
	name, size, err := output.WritePNG(raster, outputPath(cfg), cfg.Output.Compression)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if registry != nil && cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); err != nil {
			log.WithError(err).Warn("Failed to write metrics")
		}
	}

	log.WithFields(logrus.Fields{
		"output":   name,
		"bytes":    size,
		"drawn":    result.Drawn(),
		"failed":   result.Failed(),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Render finished")

	if result.Err != nil {
		return fmt.Errorf("%d tiles failed: %w", result.Failed(), result.Err)
	}
	return nil
}

// renderBounds resolves the area to draw in Web Mercator metres
func renderBounds(cmd *cobra.Command, layer source.Source) (geometry.Envelope, error) {
	bbox, _ := cmd.Flags().GetString("bbox")
	if bbox == "" {
		extents, ok := layer.Extents()
		if !ok {
			return geometry.EmptyEnvelope(), fmt.Errorf("layer %s has no extents, use --bbox", layer.Name())
		}
		return extents, nil
	}

	env, err := geometry.ParseEnvelope(bbox)
	if err != nil {
		return env, fmt.Errorf("invalid bbox: %w", err)
	}
	if wgs84, _ := cmd.Flags().GetBool("wgs84"); wgs84 {
		lo := project.WGS84.ToMercator(orb.Point{env.MinX, env.MinY})
		hi := project.WGS84.ToMercator(orb.Point{env.MaxX, env.MaxY})
		env = geometry.NewEnvelope(lo.X(), lo.Y(), hi.X(), hi.Y())
	}
	return env, nil
}

func defaultStyle() style.Style {
	return style.NewSimpleLineStyle(style.MustColor("#333333ff"), 1)
}

// loadRenderer applies the renderer document named in the configuration
func loadRenderer(engine *render.Engine, cfg *config.Config) error {
	if cfg.Render.StyleFile == "" {
		return nil
	}
	data, err := os.ReadFile(cfg.Render.StyleFile)
	if err != nil {
		return fmt.Errorf("failed to read style: %w", err)
	}
	if err := engine.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid style %s: %w", cfg.Render.StyleFile, err)
	}
	return nil
}

func outputPath(cfg *config.Config) string {
	if cfg.Output.Stdout {
		return "-"
	}
	return cfg.Output.File
}

// barReporter shows map progress as a terminal progress bar
type barReporter struct {
	bar *pb.ProgressBar
}

func newBarReporter(name string) *barReporter {
	bar := pb.New(100).Prefix(fmt.Sprintf("%s : ", name))
	bar.Output = os.Stderr
	bar.ShowCounters = false
	bar.SetRefreshRate(200 * time.Millisecond)
	bar.Start()
	return &barReporter{bar: bar}
}

func (r *barReporter) ReportProgress(fraction float32) {
	r.bar.Set(int(fraction * 100))
}

func (r *barReporter) ReportDrawComplete(result *mapview.DrawResult) {
	r.bar.FinishPrint(fmt.Sprintf("Drawn %d tiles in %s", result.Drawn(), result.Duration.Round(time.Millisecond)))
}
