package loader

import "github.com/Carmen-Shannon/oxy-xmas/engine/geometry"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithParts is an option builder that pre-populates the cache with already built parts, for
// procedural models that should be looked up by name like loaded ones.
//
// Parameters:
//   - key: the cache key for the model
//   - parts: the parts to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the parts option to a loader
func WithParts(key string, parts []geometry.Part) LoaderBuilderOption {
	return func(l *loader) {
		l.partCache[key] = parts
	}
}
