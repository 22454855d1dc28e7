package mesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenekit/pkg/math"
)

func quad() ([]Vertex, []uint32) {
	vertices := []Vertex{
		{Position: [3]float32{-1, -1, 0}},
		{Position: [3]float32{1, -1, 0}},
		{Position: [3]float32{1, 1, 0}},
		{Position: [3]float32{-1, 1, 0}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

func TestNewBuffer(t *testing.T) {
	vertices, indices := quad()
	b, err := NewBuffer("quad", vertices, indices)
	require.NoError(t, err)

	assert.Equal(t, "quad", b.Name())
	assert.Equal(t, 4, b.VertexCount())
	assert.Equal(t, 6, b.IndexCount())
	assert.Equal(t, 2, b.TriangleCount())
	assert.Equal(t, [3]uint32{0, 2, 3}, b.TriangleIndices(1))

	v0, v1, v2 := b.Triangle(0)
	assert.Equal(t, math.Vec3{X: -1, Y: -1}, v0)
	assert.Equal(t, math.Vec3{X: 1, Y: -1}, v1)
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, v2)

	assert.Equal(t, math.Vec3{X: -1, Y: -1}, b.Bounds().Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, b.Bounds().Max)
}

func TestNewBufferCopiesInput(t *testing.T) {
	vertices, indices := quad()
	b, err := NewBuffer("quad", vertices, indices)
	require.NoError(t, err)

	vertices[0].Position = [3]float32{99, 99, 99}
	indices[0] = 3
	assert.Equal(t, [3]float32{-1, -1, 0}, b.Vertex(0).Position)
	assert.Equal(t, uint32(0), b.Indices()[0])

	out := b.Vertices()
	out[1].Position = [3]float32{42, 42, 42}
	assert.Equal(t, [3]float32{1, -1, 0}, b.Vertex(1).Position)
}

func TestNewBufferRejectsInvalid(t *testing.T) {
	vertices, _ := quad()
	tests := []struct {
		name     string
		vertices []Vertex
		indices  []uint32
		want     error
	}{
		{"empty vertices", nil, nil, ErrEmptyVertices},
		{"quad face", vertices, []uint32{0, 1, 2, 3}, ErrNotTriangulated},
		{"out of range", vertices, []uint32{0, 1, 4}, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuffer("bad", tt.vertices, tt.indices)
			assert.Nil(t, b)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var geomErr *InvalidGeometryError
			require.True(t, errors.As(err, &geomErr))
			assert.Equal(t, "bad", geomErr.Mesh)
		})
	}
}

func TestNewBufferAllowsNoIndices(t *testing.T) {
	vertices, _ := quad()
	b, err := NewBuffer("points", vertices, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, b.TriangleCount())
}

func TestTransformedPositions(t *testing.T) {
	vertices, indices := quad()
	b, err := NewBuffer("quad", vertices, indices)
	require.NoError(t, err)

	world := b.TransformedPositions(math.Translate(0, 0, 5))
	require.Len(t, world, 4)
	assert.Equal(t, math.Vec3{X: -1, Y: -1, Z: 5}, world[0])
	assert.Equal(t, math.Vec3{X: -1, Y: 1, Z: 5}, world[3])
}

func TestBoundsUnion(t *testing.T) {
	a := EmptyBounds().Extend(math.Vec3{X: 1, Y: 1, Z: 1})
	assert.False(t, a.IsEmpty())
	assert.True(t, EmptyBounds().IsEmpty())

	u := a.Union(EmptyBounds())
	assert.Equal(t, a, u)

	u = a.Union(Bounds{Min: math.Vec3{X: -1}, Max: math.Vec3{X: 0}})
	assert.Equal(t, math.Vec3{X: -1}, u.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, u.Max)
	assert.Equal(t, math.Vec3{X: 0, Y: 0.5, Z: 0.5}, u.Center())
}

func TestGenerateSmoothNormals(t *testing.T) {
	vertices, indices := quad()
	GenerateSmoothNormals(vertices, indices)

	for i, v := range vertices {
		assert.InDelta(t, 0, v.Normal[0], 1e-6, "vertex %d", i)
		assert.InDelta(t, 0, v.Normal[1], 1e-6, "vertex %d", i)
		assert.InDelta(t, 1, v.Normal[2], 1e-6, "vertex %d", i)
	}
}

func TestGenerateSmoothNormalsMergesSeams(t *testing.T) {
	// Two triangles meeting at a right angle along the X axis; the shared
	// edge is duplicated, as exporters do at UV seams.
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{0, 0, 1}},
		{Position: [3]float32{1, 0, 0}},
	}
	indices := []uint32{0, 1, 2, 3, 4, 5}
	GenerateSmoothNormals(vertices, indices)

	assert.Equal(t, vertices[0].Normal, vertices[3].Normal)
	assert.Equal(t, vertices[1].Normal, vertices[5].Normal)
	n := math.Vec3FromArray(vertices[0].Normal)
	assert.InDelta(t, 1, n.Length(), 1e-5)
}

func TestGenerateSmoothNormalsFarFromOrigin(t *testing.T) {
	// A +Z facing triangle and a +X facing one, far apart and far from the
	// origin; they share no positions and must keep their own normals.
	vertices := []Vertex{
		{Position: [3]float32{3e5, 0, 0}},
		{Position: [3]float32{3e5 + 1, 0, 0}},
		{Position: [3]float32{3e5, 1, 0}},
		{Position: [3]float32{4e5, 0, 0}},
		{Position: [3]float32{4e5, 1, 0}},
		{Position: [3]float32{4e5, 0, 1}},
	}
	indices := []uint32{0, 1, 2, 3, 4, 5}
	GenerateSmoothNormals(vertices, indices)

	for i := 0; i < 3; i++ {
		assert.Equal(t, [3]float32{0, 0, 1}, vertices[i].Normal, "vertex %d", i)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, [3]float32{1, 0, 0}, vertices[i].Normal, "vertex %d", i)
	}
}

func TestWeldKeyDistinguishesLargeCoordinates(t *testing.T) {
	a := weldKey([3]float32{3e5, 0, 0})
	b := weldKey([3]float32{4e5, 0, 0})
	assert.NotEqual(t, a, b)
	assert.Equal(t, weldKey([3]float32{1, 2, 3}), weldKey([3]float32{1.00001, 2, 3}))
}
