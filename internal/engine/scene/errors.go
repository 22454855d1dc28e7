package scene

import (
	"errors"
	"fmt"
)

// Import errors. They are wrapped in *AssetLoadError.
var (
	ErrUnsupportedFormat = errors.New("unsupported scene format")
	ErrMissingRoot       = errors.New("scene has no root node")
	ErrNodeCycle         = errors.New("node reached twice in hierarchy")
	ErrBadIndex          = errors.New("index out of range")
)

// ErrAttributeCount marks a primitive whose vertex attributes disagree in
// length. It is reported through mesh.InvalidGeometryError.
var ErrAttributeCount = errors.New("vertex attribute count mismatch")

// AssetLoadError is returned when a scene file cannot be imported at all.
// No partial model accompanies it.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("loading scene %s: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}
