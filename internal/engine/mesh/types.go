// Package mesh provides immutable per-submesh vertex and index storage.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/scenekit/pkg/math"
)

// Geometry validation errors.
var (
	ErrEmptyVertices   = errors.New("mesh has no vertices")
	ErrNotTriangulated = errors.New("mesh is not triangulated")
	ErrIndexOutOfRange = errors.New("mesh index out of range")
)

// InvalidGeometryError reports a mesh that was rejected during import.
type InvalidGeometryError struct {
	Mesh   string // Mesh name (may be synthesized)
	Detail string // Extra context, e.g. the offending index
	Err    error  // One of the Err* sentinels
}

func (e *InvalidGeometryError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid geometry %q: %v", e.Mesh, e.Err)
	}
	return fmt.Sprintf("invalid geometry %q: %v (%s)", e.Mesh, e.Err, e.Detail)
}

func (e *InvalidGeometryError) Unwrap() error {
	return e.Err
}

// Vertex is a single mesh vertex with tangent space and texture coordinates.
// Missing source attributes are zero.
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	Tangent   [3]float32
	Bitangent [3]float32
	UV        [2]float32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// EmptyBounds returns an inverted box that any point will expand.
func EmptyBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}
}

// Extend grows the box to contain p.
func (b Bounds) Extend(p math.Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns a box containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	if other.IsEmpty() {
		return b
	}
	return Bounds{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// IsEmpty reports whether the box contains no points.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}
