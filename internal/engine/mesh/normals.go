package mesh

import (
	gomath "math"

	"github.com/Faultbox/scenekit/pkg/math"
)

// weldEpsilon is the grid size used to merge coincident positions.
const weldEpsilon = 0.0001

// weldKey quantizes a position onto the weld grid. The division runs in
// float64 so coordinates far from the origin do not overflow the key.
func weldKey(p [3]float32) [3]int64 {
	var key [3]int64
	for i, v := range p {
		key[i] = int64(gomath.Round(float64(v) / weldEpsilon))
	}
	return key
}

// GenerateSmoothNormals fills Normal with area-weighted vertex normals.
// Vertices sharing a position (within a small tolerance) get the same
// averaged normal, so split UV seams still shade smoothly.
// Indices must already be validated.
func GenerateSmoothNormals(vertices []Vertex, indices []uint32) {
	acc := make([]math.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		p0 := math.Vec3FromArray(vertices[a].Position)
		p1 := math.Vec3FromArray(vertices[b].Position)
		p2 := math.Vec3FromArray(vertices[c].Position)
		// Unnormalized cross product weights by triangle area.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int64][]int)
	for i := range vertices {
		key := weldKey(vertices[i].Position)
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(acc[idx])
		}
		n := sum.Normalize().Array()
		for _, idx := range idxs {
			vertices[idx].Normal = n
		}
	}
}
