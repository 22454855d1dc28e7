// Package scene imports glTF scenes into a flat list of drawable entries
// with world transforms baked in.
package scene

import (
	"github.com/Faultbox/scenekit/internal/engine/material"
	"github.com/Faultbox/scenekit/internal/engine/mesh"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Entry pairs one geometry buffer and material with the world transform of
// the node that referenced it. Entries are immutable.
type Entry struct {
	name      string
	geometry  *mesh.Buffer
	material  *material.Material
	transform math.Mat4

	world  []math.Vec3 // vertex positions in world space
	bounds mesh.Bounds
}

// NewEntry creates an entry and precomputes its world-space vertices.
func NewEntry(name string, geometry *mesh.Buffer, mat *material.Material, transform math.Mat4) *Entry {
	e := &Entry{
		name:      name,
		geometry:  geometry,
		material:  mat,
		transform: transform,
		world:     geometry.TransformedPositions(transform),
		bounds:    mesh.EmptyBounds(),
	}
	for _, p := range e.world {
		e.bounds = e.bounds.Extend(p)
	}
	return e
}

// Name returns the node/mesh name of the entry.
func (e *Entry) Name() string { return e.name }

// Geometry returns the local-space geometry.
func (e *Entry) Geometry() *mesh.Buffer { return e.geometry }

// Material returns the shared material.
func (e *Entry) Material() *material.Material { return e.material }

// Transform returns the world transform.
func (e *Entry) Transform() math.Mat4 { return e.transform }

// Bounds returns the world-space bounding box.
func (e *Entry) Bounds() mesh.Bounds { return e.bounds }

// WorldTriangle returns the world-space corners of triangle i.
func (e *Entry) WorldTriangle(i int) (v0, v1, v2 math.Vec3) {
	idx := e.geometry.TriangleIndices(i)
	return e.world[idx[0]], e.world[idx[1]], e.world[idx[2]]
}

// Model is a flattened scene. Entry order is the depth-first order of the
// source hierarchy. A Model is read-only once returned by an import.
type Model struct {
	source      string
	entries     []*Entry
	materials   []*material.Material
	textures    []*material.Texture
	diagnostics []error
	bounds      mesh.Bounds
}

// NewModel assembles a model from prebuilt entries.
func NewModel(source string, entries ...*Entry) *Model {
	m := &Model{source: source, bounds: mesh.EmptyBounds()}
	for _, e := range entries {
		m.addEntry(e)
	}
	return m
}

func (m *Model) addEntry(e *Entry) {
	m.entries = append(m.entries, e)
	m.bounds = m.bounds.Union(e.bounds)
}

// Source returns the path or name the model was imported from.
func (m *Model) Source() string { return m.source }

// Len returns the number of entries.
func (m *Model) Len() int { return len(m.entries) }

// Entry returns entry i.
func (m *Model) Entry(i int) *Entry { return m.entries[i] }

// Entries returns the entries in traversal order.
func (m *Model) Entries() []*Entry {
	return append([]*Entry(nil), m.entries...)
}

// Materials returns the distinct materials used by the entries.
func (m *Model) Materials() []*material.Material {
	return append([]*material.Material(nil), m.materials...)
}

// Textures returns the distinct textures referenced by the materials.
func (m *Model) Textures() []*material.Texture {
	return append([]*material.Texture(nil), m.textures...)
}

// Diagnostics returns the non-fatal problems met during import, such as
// skipped meshes and unresolved textures.
func (m *Model) Diagnostics() []error {
	return append([]error(nil), m.diagnostics...)
}

// Bounds returns the world-space bounding box of all entries. It is empty
// when the model has no entries.
func (m *Model) Bounds() mesh.Bounds { return m.bounds }

// TriangleCount returns the total triangle count.
func (m *Model) TriangleCount() int {
	n := 0
	for _, e := range m.entries {
		n += e.geometry.TriangleCount()
	}
	return n
}
