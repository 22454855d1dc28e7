package mesh

import (
	"fmt"

	"github.com/Faultbox/scenekit/pkg/math"
)

// Buffer holds the vertices and triangle indices of one submesh.
// It is immutable after NewBuffer returns.
type Buffer struct {
	name     string
	vertices []Vertex
	indices  []uint32
	bounds   Bounds
}

// Validate checks that indices describe whole triangles over vertexCount
// vertices.
func Validate(name string, vertexCount int, indices []uint32) error {
	if vertexCount == 0 {
		return &InvalidGeometryError{Mesh: name, Err: ErrEmptyVertices}
	}
	if len(indices)%3 != 0 {
		return &InvalidGeometryError{
			Mesh:   name,
			Err:    ErrNotTriangulated,
			Detail: fmt.Sprintf("%d indices", len(indices)),
		}
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return &InvalidGeometryError{
				Mesh:   name,
				Err:    ErrIndexOutOfRange,
				Detail: fmt.Sprintf("index[%d]=%d, %d vertices", i, idx, vertexCount),
			}
		}
	}
	return nil
}

// NewBuffer validates and copies the given data into a new Buffer.
// The index count must be a multiple of 3 and every index must reference
// an existing vertex.
func NewBuffer(name string, vertices []Vertex, indices []uint32) (*Buffer, error) {
	if err := Validate(name, len(vertices), indices); err != nil {
		return nil, err
	}

	b := &Buffer{
		name:     name,
		vertices: append([]Vertex(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
		bounds:   EmptyBounds(),
	}
	for i := range b.vertices {
		b.bounds = b.bounds.Extend(math.Vec3FromArray(b.vertices[i].Position))
	}
	return b, nil
}

// Name returns the mesh name.
func (b *Buffer) Name() string { return b.name }

// VertexCount returns the number of vertices.
func (b *Buffer) VertexCount() int { return len(b.vertices) }

// IndexCount returns the number of indices.
func (b *Buffer) IndexCount() int { return len(b.indices) }

// TriangleCount returns the number of triangles.
func (b *Buffer) TriangleCount() int { return len(b.indices) / 3 }

// Vertex returns the i-th vertex.
func (b *Buffer) Vertex(i int) Vertex { return b.vertices[i] }

// Vertices returns a copy of the vertex data.
func (b *Buffer) Vertices() []Vertex {
	return append([]Vertex(nil), b.vertices...)
}

// Indices returns a copy of the index data.
func (b *Buffer) Indices() []uint32 {
	return append([]uint32(nil), b.indices...)
}

// TriangleIndices returns the vertex indices of triangle i.
func (b *Buffer) TriangleIndices(i int) [3]uint32 {
	return [3]uint32{b.indices[i*3], b.indices[i*3+1], b.indices[i*3+2]}
}

// Triangle returns the local-space corner positions of triangle i.
func (b *Buffer) Triangle(i int) (v0, v1, v2 math.Vec3) {
	idx := b.TriangleIndices(i)
	return math.Vec3FromArray(b.vertices[idx[0]].Position),
		math.Vec3FromArray(b.vertices[idx[1]].Position),
		math.Vec3FromArray(b.vertices[idx[2]].Position)
}

// Bounds returns the local-space bounding box.
func (b *Buffer) Bounds() Bounds { return b.bounds }

// TransformedPositions returns every vertex position multiplied by m.
func (b *Buffer) TransformedPositions(m math.Mat4) []math.Vec3 {
	out := make([]math.Vec3, len(b.vertices))
	for i := range b.vertices {
		out[i] = m.TransformPoint(math.Vec3FromArray(b.vertices[i].Position))
	}
	return out
}
