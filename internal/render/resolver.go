// internal/render/resolver.go - Per-feature style resolution
package render

import "github.com/valpere/tile_render/internal/style"

// StyleResolver picks the style for one feature. It is called from several
// workers at once. Implementations deriving a variant of base must return a
// new value (the With* modifiers of the style kinds do so) and never mutate
// shared state. Returning nil skips the feature.
type StyleResolver interface {
	Resolve(featureID int64, base style.Style) style.Style
}

// StyleResolverFunc adapts a function to StyleResolver
type StyleResolverFunc func(featureID int64, base style.Style) style.Style

func (f StyleResolverFunc) Resolve(featureID int64, base style.Style) style.Style {
	return f(featureID, base)
}

// BaseStyle resolves every feature to the configured style
var BaseStyle StyleResolver = StyleResolverFunc(func(_ int64, base style.Style) style.Style {
	return base
})
