// cmd/convert_test.go - Tests for geometry conversion
package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/pkg/geometry"
)

func TestConvertGeometry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		to      string
		decoder geometry.WKTDecoder
		want    string
		wantErr bool
	}{
		{"wkt to json", "POINT (1 2)", "json", geometry.CompatWKT{}, `{"type":"Point","coordinates":[1,2]}`, false},
		{"json to wkt", ` {"type":"LineString","coordinates":[[0,0],[1,1]]}`, "wkt", geometry.CompatWKT{}, "LINESTRING (0 0, 1 1)", false},
		{"wkt round trip", "POLYGON ((0 0, 1 0, 1 1, 0 0))", "wkt", geometry.BalancedWKT{}, "POLYGON ((0 0, 1 0, 1 1, 0 0))", false},
		{"unbalanced strict", "LINESTRING ((0 0, 1 1)", "wkt", geometry.BalancedWKT{}, "", true},
		{"bad json", `{"type":"Circle"}`, "wkt", geometry.CompatWKT{}, "", true},
		{"bad target", "POINT (1 2)", "wkb", geometry.CompatWKT{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertGeometry(tt.input, tt.to, tt.decoder)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
