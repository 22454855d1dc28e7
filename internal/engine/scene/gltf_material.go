package scene

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/engine/material"
	"github.com/Faultbox/scenekit/pkg/math"
)

const extSpecular = "KHR_materials_specular"

// phongExtras are optional Phong overrides stored in a material's extras.
type phongExtras struct {
	Ambient   *[3]float32 `json:"ambient"`
	Diffuse   *[3]float32 `json:"diffuse"`
	Specular  *[3]float32 `json:"specular"`
	Emissive  *[3]float32 `json:"emissive"`
	Shininess *float32    `json:"shininess"`
}

type specularExtension struct {
	SpecularColorFactor *[3]float32 `json:"specularColorFactor"`
}

// material returns the shared material for a primitive's material index.
// Primitives without one get the default material.
func (s *importState) material(idx *int) *material.Material {
	if idx == nil {
		return s.fallbackMaterial()
	}
	if m, ok := s.materials[*idx]; ok {
		return m
	}
	if *idx < 0 || *idx >= len(s.doc.Materials) {
		s.diagnose("unknown material", fmt.Errorf("%w: material %d", ErrBadIndex, *idx))
		m := s.fallbackMaterial()
		s.materials[*idx] = m
		return m
	}

	m := s.convertMaterial(*idx, s.doc.Materials[*idx])
	s.materials[*idx] = m
	s.model.materials = append(s.model.materials, m)
	return m
}

func (s *importState) fallbackMaterial() *material.Material {
	if s.defaultMaterial == nil {
		s.defaultMaterial = &material.Material{Name: "default"}
		s.model.materials = append(s.model.materials, s.defaultMaterial)
	}
	return s.defaultMaterial
}

func vec3From64(v []float64) math.Vec3 {
	return math.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}

func (s *importState) convertMaterial(idx int, gm *gltf.Material) *material.Material {
	m := &material.Material{Name: gm.Name}
	if m.Name == "" {
		m.Name = fmt.Sprintf("material%d", idx)
	}
	m.Emissive = vec3From64(gm.EmissiveFactor[:])

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.Diffuse = vec3From64(pbr.BaseColorFactor[:3])
		}
		if pbr.BaseColorTexture != nil {
			s.attachTexture(m, material.RoleDiffuse, pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			s.attachTexture(m, material.RoleSpecular, pbr.MetallicRoughnessTexture.Index)
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		s.attachTexture(m, material.RoleNormal, *gm.NormalTexture.Index)
	}

	if raw, ok := gm.Extensions[extSpecular]; ok {
		var ext specularExtension
		if err := decodeJSON(raw, &ext); err != nil {
			s.log.Warn("ignoring malformed extension",
				zap.String("material", m.Name), zap.String("extension", extSpecular), zap.Error(err))
		} else if ext.SpecularColorFactor != nil {
			m.Specular = math.Vec3FromArray(*ext.SpecularColorFactor)
		}
	}

	if gm.Extras != nil {
		var extras phongExtras
		if err := decodeJSON(gm.Extras, &extras); err != nil {
			s.log.Debug("material extras are not Phong overrides",
				zap.String("material", m.Name), zap.Error(err))
		} else {
			extras.apply(m)
		}
	}
	return m
}

func (e phongExtras) apply(m *material.Material) {
	if e.Ambient != nil {
		m.Ambient = math.Vec3FromArray(*e.Ambient)
	}
	if e.Diffuse != nil {
		m.Diffuse = math.Vec3FromArray(*e.Diffuse)
	}
	if e.Specular != nil {
		m.Specular = math.Vec3FromArray(*e.Specular)
	}
	if e.Emissive != nil {
		m.Emissive = math.Vec3FromArray(*e.Emissive)
	}
	if e.Shininess != nil {
		m.Shininess = *e.Shininess
	}
}

// decodeJSON converts a loosely typed extension or extras value into dst.
// Values read from a file arrive as raw JSON; values set in code are
// usually maps.
func decodeJSON(v any, dst any) error {
	var data []byte
	switch raw := v.(type) {
	case json.RawMessage:
		data = raw
	case []byte:
		data = raw
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, dst)
}

// attachTexture resolves a glTF texture through the cache and adds it to m.
// Failures are recorded and leave the slot empty.
func (s *importState) attachTexture(m *material.Material, role material.Role, texIdx int) {
	tex, err := s.resolveTexture(role, texIdx)
	if err != nil {
		s.diagnose("texture unavailable",
			fmt.Errorf("material %q %s: %w", m.Name, role, err))
		return
	}
	m.AddTexture(role, tex)
	if !s.textures[tex] {
		s.textures[tex] = true
		s.model.textures = append(s.model.textures, tex)
	}
}

func (s *importState) resolveTexture(role material.Role, texIdx int) (*material.Texture, error) {
	doc := s.doc
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, fmt.Errorf("%w: texture %d", ErrBadIndex, texIdx)
	}
	src := doc.Textures[texIdx].Source
	if src == nil {
		return nil, fmt.Errorf("texture %d has no image source", texIdx)
	}
	if *src < 0 || *src >= len(doc.Images) {
		return nil, fmt.Errorf("%w: image %d", ErrBadIndex, *src)
	}
	img := doc.Images[*src]
	key := fmt.Sprintf("%s#image%d", s.name, *src)

	switch {
	case img.BufferView != nil:
		bv := *img.BufferView
		return s.imp.cache.ResolveData(key, role, func() ([]byte, error) {
			if bv < 0 || bv >= len(doc.BufferViews) {
				return nil, fmt.Errorf("%w: buffer view %d", ErrBadIndex, bv)
			}
			return modeler.ReadBufferView(doc, doc.BufferViews[bv])
		})
	case img.IsEmbeddedResource():
		return s.imp.cache.ResolveData(key, role, img.MarshalData)
	default:
		return s.imp.cache.Resolve(s.imagePath(img.URI), role)
	}
}

// imagePath maps an image URI to a file path under baseDir.
func (s *importState) imagePath(uri string) string {
	if p, err := url.PathUnescape(uri); err == nil {
		uri = p
	}
	uri = material.NormalizePath(uri)
	if s.baseDir == "" || filepath.IsAbs(uri) {
		return uri
	}
	return material.NormalizePath(s.baseDir) + "/" + uri
}
