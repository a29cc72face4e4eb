package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ/MTL loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	partCache map[string][]geometry.Part

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching model files.
// It abstracts the file format behind a backend and keeps the parsed parts of every model it
// has loaded, so scenes sharing a model parse it once.
type Loader interface {
	// Load imports a model file and caches the result under its path.
	// If the model is already cached, the cached parts are returned.
	// The backend is selected from the file extension (.obj → OBJ backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - materialPath: the material library path, or "" to use the file next to path with
	//     the .mtl extension when it exists
	//
	// Returns:
	//   - []geometry.Part: one part per object and material
	//   - error: error if loading fails
	Load(path, materialPath string) ([]geometry.Part, error)

	// LoadReader imports a model from reader streams and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - materials: the reader providing the material library, or nil
	//
	// Returns:
	//   - []geometry.Part: the loaded parts
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, materials io.Reader) ([]geometry.Part, error)

	// Get retrieves cached parts by name. Returns nil if not found.
	Get(name string) []geometry.Part

	// Models returns a copy of the cache keyed by name.
	Models() map[string][]geometry.Part
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeOBJ)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        sync.RWMutex{},
		partCache: make(map[string][]geometry.Part),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path, materialPath string) ([]geometry.Part, error) {
	l.mu.RLock()
	if cached, ok := l.partCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	parts, err := backend.Load(path, materialPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	common.ComponentLogger("loader").Info("model loaded", "path", path, "parts", len(parts))

	l.mu.Lock()
	l.partCache[path] = parts
	l.mu.Unlock()

	return parts, nil
}

func (l *loader) LoadReader(name string, r io.Reader, materials io.Reader) ([]geometry.Part, error) {
	l.mu.RLock()
	if cached, ok := l.partCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	parts, err := l.backend.LoadReader(r, materials)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.partCache[name] = parts
	l.mu.Unlock()

	return parts, nil
}

func (l *loader) Get(name string) []geometry.Part {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.partCache[name]
}

func (l *loader) Models() map[string][]geometry.Part {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string][]geometry.Part, len(l.partCache))
	for k, v := range l.partCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		if l.backend == nil {
			return nil, fmt.Errorf("no backend configured for %s", ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %q", ext)
	}
}
