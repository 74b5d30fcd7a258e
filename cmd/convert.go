// cmd/convert.go - Tile dump and geometry conversion command
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/valpere/tile_render/internal/layer/local"
	"github.com/valpere/tile_render/internal/output"
	"github.com/valpere/tile_render/internal/source"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Dump the features of a tile or convert a geometry",
	Long: `Dump the decoded features of a single tile as JSON or WKT, or convert a single
geometry between its JSON and WKT forms.

With --z/--x/--y the tile is read from the configured source, y counted in the
source scheme. With --geometry the argument (or stdin for "-") is decoded as
JSON when it starts with "{" and as WKT otherwise.

Examples:
  # Dump a local tile as JSON
  tile-render convert --base-path ./tiles --z 14 --x 8362 --y 5956 --output tile.json

  # Dump a tile from a bbolt store as WKT lines
  tile-render convert --bolt-path tiles.db --z 14 --x 8362 --y 5956 --format wkt

  # Convert WKT to JSON
  tile-render convert --geometry "LINESTRING (0 0, 1 1)" --to json

  # Convert JSON from stdin to WKT, rejecting unbalanced input
  echo '{"type":"Point","coordinates":[1,2]}' | tile-render convert --geometry - --to wkt --strict`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Tile flags
	convertCmd.Flags().Int("z", 0, "tile zoom level")
	convertCmd.Flags().Int("x", 0, "tile x coordinate")
	convertCmd.Flags().Int("y", 0, "tile y coordinate")

	// Geometry flags
	convertCmd.Flags().String("geometry", "", `geometry as JSON or WKT ("-" reads stdin)`)
	convertCmd.Flags().String("to", "wkt", "target geometry encoding (json, wkt)")
	convertCmd.Flags().Bool("strict", false, "parse WKT with the balanced parser")

	// Output flags
	convertCmd.Flags().StringP("format", "f", "json", "tile dump format (json, wkt)")
	convertCmd.Flags().Bool("pretty", true, "pretty print JSON output")
	convertCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
	convertCmd.Flags().Bool("compression", false, "compress output file")
	convertCmd.Flags().Bool("metadata", false, "include tile metadata in output")

	convertCmd.MarkFlagsRequiredTogether("z", "x", "y")
	convertCmd.MarkFlagsMutuallyExclusive("geometry", "z")
	convertCmd.MarkFlagsOneRequired("geometry", "z")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("geometry") {
		return runConvertGeometry(cmd)
	}

	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	z, _ := cmd.Flags().GetInt("z")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	outputPath, _ := cmd.Flags().GetString("output")
	compression, _ := cmd.Flags().GetBool("compression")
	metadata, _ := cmd.Flags().GetBool("metadata")
	pretty, _ := cmd.Flags().GetBool("pretty")
	formatName, _ := cmd.Flags().GetString("format")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if !format.IsFeatureDump() {
		return fmt.Errorf("format %s cannot dump features", format)
	}

	// Validate coordinates
	if err := tile.ValidateCoordinates(z, x, y); err != nil {
		return fmt.Errorf("invalid tile coordinates: %w", err)
	}

	factory := source.NewLayerFactory(cfg, log)
	layer, closeLayer, err := factory.CreateLayer(1)
	if err != nil {
		return fmt.Errorf("failed to create layer: %w", err)
	}
	defer closeLayer()

	item := tile.NewItem(x, y, z, layer.Scheme())
	if l, ok := layer.(*local.Layer); ok {
		if info, err := l.GetTileInfo(item); err == nil {
			log.WithFields(logrus.Fields{
				"path":       info.Path,
				"size":       info.Size,
				"compressed": info.IsCompressed,
			}).Debug("Reading tile file")
		}
	}

	vt, err := layer.Tile(context.Background(), item)
	if err != nil {
		return fmt.Errorf("failed to read tile: %w", err)
	}
	if vt == nil {
		return fmt.Errorf("tile %s not found in %s", item, layer.Name())
	}

	writer, err := output.NewWriter(&output.WriterConfig{
		Format:      format,
		Pretty:      pretty,
		Compression: compression,
		Metadata:    metadata,
	}, outputPath)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer writer.Close()

	if err := writer.Write(vt); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.WithFields(logrus.Fields{
		"tile":     item.String(),
		"features": vt.Size(),
		"format":   format.String(),
	}).Info("Tile converted")
	return nil
}

func runConvertGeometry(cmd *cobra.Command) error {
	text, _ := cmd.Flags().GetString("geometry")
	to, _ := cmd.Flags().GetString("to")
	strict, _ := cmd.Flags().GetBool("strict")

	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	var decoder geometry.WKTDecoder = geometry.CompatWKT{}
	if strict {
		decoder = geometry.BalancedWKT{}
	}

	out, err := convertGeometry(text, to, decoder)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// convertGeometry decodes text as JSON or WKT and encodes it as to
func convertGeometry(text, to string, decoder geometry.WKTDecoder) (string, error) {
	text = strings.TrimSpace(text)

	var (
		g   geometry.Geometry
		err error
	)
	if strings.HasPrefix(text, "{") {
		g, err = geometry.Unmarshal([]byte(text))
	} else {
		g, err = decoder.DecodeWKT(text)
	}
	if err != nil {
		return "", fmt.Errorf("failed to decode geometry: %w", err)
	}

	switch to {
	case "wkt":
		return geometry.WKT(g, true), nil
	case "json":
		data, err := geometry.Marshal(g)
		if err != nil {
			return "", err
		}
		return string(bytes.TrimSpace(data)), nil
	default:
		return "", fmt.Errorf("unsupported geometry encoding: %s", to)
	}
}
