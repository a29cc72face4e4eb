package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/geometry"
	"github.com/Carmen-Shannon/oxy-xmas/engine/mesh"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/material"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformedModel is returned for OBJ or MTL input that cannot be decoded.
var ErrMalformedModel = errors.New("malformed model file")

// defaultObjectName names faces that appear before any object statement.
const defaultObjectName = "default"

// objCorner is one face corner: 0-based position and normal indices into the decoded arrays.
// normal is -1 when the corner has no usable normal.
type objCorner struct {
	position int
	normal   int
}

// objGroup accumulates the geometry of one (object, material) pair.
type objGroup struct {
	name     string
	material string
	vertices []mesh.Vertex
	indices  []uint32
	lookup   map[objCorner]uint32
}

// LoadOBJ decodes a Wavefront OBJ stream and its material library into one Part per object and
// material pair, in order of first appearance.
//
// Decoding is done by the g3n OBJ decoder; this function turns its face lists into indexed
// meshes. Polygons are fanned into triangles. Corners without a valid normal get the flat face
// normal. Corners sharing a position and normal share one vertex.
//
// Parameters:
//   - objReader: the OBJ stream
//   - mtlReader: the MTL stream, or nil to use default materials
//
// Returns:
//   - []geometry.Part: the parts with materials resolved
//   - error: ErrMalformedModel describing the first problem found
func LoadOBJ(objReader io.Reader, mtlReader io.Reader) ([]geometry.Part, error) {
	log := common.ComponentLogger("loader")

	library := map[string]*obj.Material{}
	if mtlReader != nil {
		// The library is decoded on its own so materials named by usemtl but never defined
		// can be told apart from real entries.
		lib, err := obj.DecodeReader(strings.NewReader(""), mtlReader)
		if err != nil {
			return nil, fmt.Errorf("%w: mtl: %v", ErrMalformedModel, err)
		}
		library = lib.Materials
	}

	dec, err := obj.DecodeReader(objReader, strings.NewReader(""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}
	for _, w := range dec.Warnings {
		log.Debug("obj decoder warning", "warning", w)
	}

	groups, err := groupFaces(dec)
	if err != nil {
		return nil, err
	}

	parts := make([]geometry.Part, 0, len(groups))
	for _, g := range groups {
		if len(g.indices) == 0 {
			continue
		}
		opts := []material.MaterialBuilderOption{material.WithName(g.material)}
		if rec, ok := library[g.material]; ok && rec != nil {
			opts = append(opts,
				material.WithAmbient(mgl32.Vec3{rec.Ambient.R, rec.Ambient.G, rec.Ambient.B}),
				material.WithDiffuse(mgl32.Vec3{rec.Diffuse.R, rec.Diffuse.G, rec.Diffuse.B}),
				material.WithSpecular(mgl32.Vec3{rec.Specular.R, rec.Specular.G, rec.Specular.B}),
				material.WithShininess(rec.Shininess),
			)
		} else if mtlReader != nil {
			log.Warn("material not found in library, using defaults", "material", g.material)
		}
		parts = append(parts, geometry.Part{
			Name:     g.name,
			Material: material.NewMaterial(opts...),
			Vertices: g.vertices,
			Indices:  g.indices,
		})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrMalformedModel)
	}
	log.Debug("obj decoded", "parts", len(parts), "objects", len(dec.Objects))
	return parts, nil
}

// groupFaces walks the decoded objects and buckets their faces by object name and material.
func groupFaces(dec *obj.Decoder) ([]*objGroup, error) {
	positions := vec3s(dec.Vertices)
	normals := vec3s(dec.Normals)

	var groups []*objGroup
	byKey := map[[2]string]*objGroup{}

	for _, o := range dec.Objects {
		name := common.Coalesce(o.Name, defaultObjectName)
		for fi, f := range o.Faces {
			if len(f.Vertices) < 3 {
				return nil, fmt.Errorf("%w: object %q face %d: needs at least 3 corners", ErrMalformedModel, name, fi)
			}
			corners := make([]objCorner, len(f.Vertices))
			for i, p := range f.Vertices {
				if p < 0 || p >= len(positions) {
					return nil, fmt.Errorf("%w: object %q face %d: position index %d out of range 0..%d",
						ErrMalformedModel, name, fi, p, len(positions)-1)
				}
				corners[i] = objCorner{position: p, normal: -1}
				if i < len(f.Normals) && f.Normals[i] >= 0 && f.Normals[i] < len(normals) {
					corners[i].normal = f.Normals[i]
				}
			}

			key := [2]string{name, f.Material}
			g, ok := byKey[key]
			if !ok {
				g = &objGroup{name: name, material: f.Material, lookup: map[objCorner]uint32{}}
				byKey[key] = g
				groups = append(groups, g)
			}
			g.addFace(corners, positions, normals)
		}
	}
	return groups, nil
}

// addFace fans the polygon into triangles (0, i, i+1).
func (g *objGroup) addFace(corners []objCorner, positions, normals []mgl32.Vec3) {
	var flat mgl32.Vec3
	if corners[0].normal < 0 || corners[1].normal < 0 || corners[2].normal < 0 {
		a, b, c := positions[corners[0].position], positions[corners[1].position], positions[corners[2].position]
		if n := b.Sub(a).Cross(c.Sub(a)); n.Len() > 0 {
			flat = n.Normalize()
		}
	}

	index := func(c objCorner) uint32 {
		if c.normal < 0 {
			// Flat-shaded corners are never shared across faces.
			g.vertices = append(g.vertices, mesh.Vertex{Position: positions[c.position], Normal: flat})
			return uint32(len(g.vertices) - 1)
		}
		if idx, ok := g.lookup[c]; ok {
			return idx
		}
		g.vertices = append(g.vertices, mesh.Vertex{Position: positions[c.position], Normal: normals[c.normal]})
		idx := uint32(len(g.vertices) - 1)
		g.lookup[c] = idx
		return idx
	}

	first := index(corners[0])
	prev := index(corners[1])
	for _, c := range corners[2:] {
		next := index(c)
		g.indices = append(g.indices, first, prev, next)
		prev = next
	}
}

// vec3s regroups a flat x,y,z array into vectors, dropping a trailing partial triple.
func vec3s(flat []float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(flat)/3)
	for i := range out {
		out[i] = mgl32.Vec3{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out
}
