// internal/style/json.go - Style persistence
package style

import (
	"encoding/json"
	"fmt"
)

// NameKey is the JSON field carrying the style kind
const NameKey = "name"

var decoders = map[string]func([]byte) (Style, error){
	NameSimpleMarker:       decodeAs[SimpleMarkerStyle],
	NameSimpleTextMarker:   decodeAs[SimpleTextMarkerStyle],
	NameSimpleLine:         decodeAs[SimpleLineStyle],
	NameSimpleTextLine:     decodeAs[SimpleTextLineStyle],
	NameSimplePolygon:      decodeAs[SimplePolygonStyle],
	NameSimpleTiledPolygon: decodeAs[SimpleTiledPolygonStyle],
}

func decodeAs[T Style](data []byte) (Style, error) {
	var s T
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return s, nil
}

// Marshal encodes s with its kind under "name"
func Marshal(s Style) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil style", ErrFormat)
	}
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	name, err := json.Marshal(s.Name())
	if err != nil {
		return nil, err
	}
	fields[NameKey] = name
	return json.Marshal(fields)
}

// Unmarshal decodes a style written by Marshal. Unknown kinds are ErrFormat.
func Unmarshal(data []byte) (Style, error) {
	var head struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	decode, ok := decoders[head.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown style %q", ErrFormat, head.Name)
	}
	return decode(data)
}
