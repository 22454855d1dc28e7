// Package material provides shared materials and a path-keyed texture cache.
package material

import (
	"fmt"
	"image"
	"sync"

	"github.com/Faultbox/scenekit/internal/engine/texture"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Role tags how a material samples a texture.
type Role int

const (
	RoleDiffuse  Role = iota // Base color map
	RoleSpecular             // Specular / metal-roughness map
	RoleNormal               // Tangent-space normal map
)

// String returns the shader-facing role name.
func (r Role) String() string {
	switch r {
	case RoleDiffuse:
		return "texture_diffuse"
	case RoleSpecular:
		return "texture_specular"
	case RoleNormal:
		return "normal_map"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Texture is a texture image shared by every material that references
// the same normalized path.
type Texture struct {
	Path   string // Normalized cache key
	Role   Role   // Role of the first request that loaded it
	Format string
	Width  int
	Height int

	read    func() ([]byte, error)
	imgOnce sync.Once
	img     image.Image
	imgErr  error
}

// Image decodes the texture pixels on first use and returns the cached
// result afterwards.
func (t *Texture) Image() (image.Image, error) {
	t.imgOnce.Do(func() {
		data, err := t.read()
		if err != nil {
			t.imgErr = err
			return
		}
		t.img, t.imgErr = texture.Decode(t.Path, data)
	})
	return t.img, t.imgErr
}

// TextureRef attaches a texture to a material under a specific role.
// The same Texture may appear under different roles in different materials.
type TextureRef struct {
	Role    Role
	Texture *Texture
}

// Material holds Phong-style surface parameters. Materials are shared by
// pointer between all geometry that uses them.
type Material struct {
	Name      string
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
	Emissive  math.Vec3
	Shininess float32
	Textures  []TextureRef
}

// AddTexture appends a texture reference.
func (m *Material) AddTexture(role Role, tex *Texture) {
	m.Textures = append(m.Textures, TextureRef{Role: role, Texture: tex})
}

// TexturesByRole returns the textures attached under role, in order.
func (m *Material) TexturesByRole(role Role) []*Texture {
	var out []*Texture
	for _, ref := range m.Textures {
		if ref.Role == role {
			out = append(out, ref.Texture)
		}
	}
	return out
}
