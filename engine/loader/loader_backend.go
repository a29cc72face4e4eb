package loader

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports a model from the given file paths.
	//
	// Parameters:
	//   - path: the model file path
	//   - materialPath: the material library path, "" to look for one beside the model
	//
	// Returns:
	//   - []geometry.Part: the imported parts
	//   - error: error if loading fails
	Load(path, materialPath string) ([]geometry.Part, error)

	// LoadReader imports a model from reader streams.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - materials: the reader providing material data, or nil
	//
	// Returns:
	//   - []geometry.Part: the imported parts
	//   - error: error if loading fails
	LoadReader(r io.Reader, materials io.Reader) ([]geometry.Part, error)
}

// objLoaderBackend reads Wavefront OBJ files with their MTL libraries.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() *objLoaderBackend {
	return &objLoaderBackend{}
}

func (b *objLoaderBackend) Load(path, materialPath string) ([]geometry.Part, error) {
	obj, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	if materialPath == "" {
		materialPath = strings.TrimSuffix(path, ".obj") + ".mtl"
		if _, err := os.Stat(materialPath); errors.Is(err, fs.ErrNotExist) {
			return b.LoadReader(obj, nil)
		}
	}

	mtl, err := os.Open(materialPath)
	if err != nil {
		return nil, err
	}
	defer mtl.Close()

	return b.LoadReader(obj, mtl)
}

func (b *objLoaderBackend) LoadReader(r io.Reader, materials io.Reader) ([]geometry.Part, error) {
	return LoadOBJ(r, materials)
}
