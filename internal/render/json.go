// internal/render/json.go - Renderer persistence
package render

import (
	"encoding/json"
	"fmt"

	"github.com/valpere/tile_render/internal/style"
)

// RendererName identifies the feature renderer in persisted documents
const RendererName = "SimpleFeatureRenderer"

type rendererDoc struct {
	Name  string          `json:"name"`
	Style json.RawMessage `json:"style"`
}

// MarshalJSON writes the renderer name and its base style
func (e *Engine) MarshalJSON() ([]byte, error) {
	s := e.Style()
	if s == nil {
		return nil, fmt.Errorf("%w: renderer without style", style.ErrFormat)
	}
	raw, err := style.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rendererDoc{Name: RendererName, Style: raw})
}

// UnmarshalJSON restores the base style. A document without a style is
// rejected and leaves the current style in place.
func (e *Engine) UnmarshalJSON(data []byte) error {
	var doc rendererDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", style.ErrFormat, err)
	}
	if doc.Name != RendererName {
		return fmt.Errorf("%w: unknown renderer %q", style.ErrFormat, doc.Name)
	}

	if len(doc.Style) == 0 || string(doc.Style) == "null" {
		return fmt.Errorf("%w: renderer %q has no style", style.ErrFormat, doc.Name)
	}
	s, err := style.Unmarshal(doc.Style)
	if err != nil {
		return err
	}
	e.SetStyle(s)
	return nil
}
