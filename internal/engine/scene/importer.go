package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/engine/material"
	"github.com/Faultbox/scenekit/internal/engine/mesh"
	"github.com/Faultbox/scenekit/internal/logger"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Importer converts glTF documents into flattened models.
type Importer struct {
	cache           *material.Cache
	log             *zap.Logger
	flipUVs         bool
	generateNormals bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithCache shares a texture cache between imports. By default every
// Importer owns its own cache.
func WithCache(c *material.Cache) Option {
	return func(imp *Importer) { imp.cache = c }
}

// WithLogger sets the logger used for import warnings.
func WithLogger(l *zap.Logger) Option {
	return func(imp *Importer) { imp.log = l }
}

// WithFlipUVs flips the V texture coordinate (v = 1 - v).
func WithFlipUVs(flip bool) Option {
	return func(imp *Importer) { imp.flipUVs = flip }
}

// WithGenerateNormals controls whether smooth normals are generated for
// primitives that have none. Enabled by default.
func WithGenerateNormals(generate bool) Option {
	return func(imp *Importer) { imp.generateNormals = generate }
}

// NewImporter creates an importer.
func NewImporter(opts ...Option) *Importer {
	imp := &Importer{generateNormals: true}
	for _, opt := range opts {
		opt(imp)
	}
	if imp.cache == nil {
		imp.cache = material.NewCache()
	}
	return imp
}

// Cache returns the texture cache used by the importer.
func (imp *Importer) Cache() *material.Cache { return imp.cache }

func (imp *Importer) logger() *zap.Logger {
	if imp.log != nil {
		return imp.log
	}
	return logger.Named("scene")
}

// Import reads a .gltf or .glb file. Texture URIs are resolved relative to
// the file's directory.
func (imp *Importer) Import(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
	default:
		return nil, &AssetLoadError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))}
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	return imp.ImportDocument(path, filepath.Dir(path), doc)
}

// ImportDocument flattens an already decoded document. name identifies the
// source in errors and embedded texture keys; baseDir is prepended to
// relative image URIs.
func (imp *Importer) ImportDocument(name, baseDir string, doc *gltf.Document) (*Model, error) {
	s := &importState{
		imp:       imp,
		log:       imp.logger().With(zap.String("source", name)),
		doc:       doc,
		name:      name,
		baseDir:   baseDir,
		model:     &Model{source: name, bounds: mesh.EmptyBounds()},
		materials: make(map[int]*material.Material),
		textures:  make(map[*material.Texture]bool),
		buffers:   make(map[primitiveKey]*mesh.Buffer),
		failed:    make(map[primitiveKey]bool),
		visited:   make([]bool, len(doc.Nodes)),
	}

	roots, err := s.roots()
	if err != nil {
		return nil, &AssetLoadError{Path: name, Err: err}
	}
	for _, root := range roots {
		if err := s.visit(root, math.Identity()); err != nil {
			return nil, &AssetLoadError{Path: name, Err: err}
		}
	}

	s.log.Debug("scene imported",
		zap.Int("entries", s.model.Len()),
		zap.Int("materials", len(s.model.materials)),
		zap.Int("textures", len(s.model.textures)),
		zap.Int("diagnostics", len(s.model.diagnostics)))
	return s.model, nil
}

type primitiveKey struct {
	mesh, primitive int
}

// importState carries the per-import bookkeeping.
type importState struct {
	imp     *Importer
	log     *zap.Logger
	doc     *gltf.Document
	name    string
	baseDir string
	model   *Model

	materials       map[int]*material.Material
	defaultMaterial *material.Material
	textures        map[*material.Texture]bool
	buffers         map[primitiveKey]*mesh.Buffer
	failed          map[primitiveKey]bool
	visited         []bool
}

// roots returns the top-level nodes of the default scene. Documents
// without scenes fall back to every node that has no parent.
func (s *importState) roots() ([]int, error) {
	doc := s.doc
	var roots []int
	switch {
	case doc.Scene != nil:
		if *doc.Scene < 0 || *doc.Scene >= len(doc.Scenes) {
			return nil, fmt.Errorf("%w: scene %d", ErrBadIndex, *doc.Scene)
		}
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		hasParent := make([]bool, len(doc.Nodes))
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				if c >= 0 && c < len(hasParent) {
					hasParent[c] = true
				}
			}
		}
		for i := range doc.Nodes {
			if !hasParent[i] {
				roots = append(roots, i)
			}
		}
	}
	if len(roots) == 0 {
		return nil, ErrMissingRoot
	}
	return roots, nil
}

func localTransform(n *gltf.Node) math.Mat4 {
	t := n.Translation
	r := n.RotationOrDefault()
	sc := n.ScaleOrDefault()
	trs := math.TRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])},
	)
	return math.Mat4FromFloat64(n.MatrixOrDefault()).Mul(trs)
}

// visit walks the hierarchy depth first, emitting the node's own
// primitives before those of its children.
func (s *importState) visit(idx int, parentWorld math.Mat4) error {
	if idx < 0 || idx >= len(s.doc.Nodes) {
		return fmt.Errorf("%w: node %d", ErrBadIndex, idx)
	}
	if s.visited[idx] {
		return fmt.Errorf("%w: node %d", ErrNodeCycle, idx)
	}
	s.visited[idx] = true

	node := s.doc.Nodes[idx]
	world := parentWorld.Mul(localTransform(node))

	if node.Mesh != nil {
		if err := s.emitMesh(idx, *node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := s.visit(child, world); err != nil {
			return err
		}
	}
	return nil
}

func (s *importState) emitMesh(nodeIdx, meshIdx int, world math.Mat4) error {
	if meshIdx < 0 || meshIdx >= len(s.doc.Meshes) {
		return fmt.Errorf("%w: mesh %d on node %d", ErrBadIndex, meshIdx, nodeIdx)
	}
	gm := s.doc.Meshes[meshIdx]
	name := entryName(s.doc.Nodes[nodeIdx].Name, gm.Name, nodeIdx)

	for p, prim := range gm.Primitives {
		primName := name
		if len(gm.Primitives) > 1 {
			primName = fmt.Sprintf("%s#%d", name, p)
		}
		geom := s.geometry(primitiveKey{meshIdx, p}, primName, prim)
		if geom == nil {
			continue
		}
		s.model.addEntry(NewEntry(primName, geom, s.material(prim.Material), world))
	}
	return nil
}

func entryName(nodeName, meshName string, nodeIdx int) string {
	switch {
	case nodeName != "":
		return nodeName
	case meshName != "":
		return meshName
	default:
		return fmt.Sprintf("node%d", nodeIdx)
	}
}

// geometry returns the buffer for a primitive, building it on first use so
// that instanced meshes share storage. Invalid primitives are reported once
// and yield nil.
func (s *importState) geometry(key primitiveKey, name string, prim *gltf.Primitive) *mesh.Buffer {
	if buf, ok := s.buffers[key]; ok {
		return buf
	}
	if s.failed[key] {
		return nil
	}
	buf, err := s.buildPrimitive(name, prim)
	if err != nil {
		s.failed[key] = true
		s.diagnose("skipping primitive", err)
		return nil
	}
	s.buffers[key] = buf
	return buf
}

func (s *importState) accessor(name, attr string, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(s.doc.Accessors) {
		return nil, &mesh.InvalidGeometryError{
			Mesh:   name,
			Detail: fmt.Sprintf("%s accessor %d", attr, idx),
			Err:    ErrBadIndex,
		}
	}
	return s.doc.Accessors[idx], nil
}

func (s *importState) buildPrimitive(name string, prim *gltf.Primitive) (*mesh.Buffer, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, &mesh.InvalidGeometryError{
			Mesh:   name,
			Detail: fmt.Sprintf("primitive mode %d", prim.Mode),
			Err:    mesh.ErrNotTriangulated,
		}
	}
	readErr := func(attr string, err error) error {
		return &mesh.InvalidGeometryError{Mesh: name, Detail: "reading " + attr, Err: err}
	}
	countErr := func(attr string, got, want int) error {
		return &mesh.InvalidGeometryError{
			Mesh:   name,
			Detail: fmt.Sprintf("%s has %d values, want %d", attr, got, want),
			Err:    ErrAttributeCount,
		}
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, &mesh.InvalidGeometryError{Mesh: name, Detail: "no POSITION attribute", Err: mesh.ErrEmptyVertices}
	}
	acr, err := s.accessor(name, gltf.POSITION, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(s.doc, acr, nil)
	if err != nil {
		return nil, readErr(gltf.POSITION, err)
	}
	vertices := make([]mesh.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
	}

	hasNormals := false
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := s.accessor(name, gltf.NORMAL, idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(s.doc, acr, nil)
		if err != nil {
			return nil, readErr(gltf.NORMAL, err)
		}
		if len(normals) != len(vertices) {
			return nil, countErr(gltf.NORMAL, len(normals), len(vertices))
		}
		for i, n := range normals {
			vertices[i].Normal = n
		}
		hasNormals = true
	}

	var tangents [][4]float32
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		acr, err := s.accessor(name, gltf.TANGENT, idx)
		if err != nil {
			return nil, err
		}
		tangents, err = modeler.ReadTangent(s.doc, acr, nil)
		if err != nil {
			return nil, readErr(gltf.TANGENT, err)
		}
		if len(tangents) != len(vertices) {
			return nil, countErr(gltf.TANGENT, len(tangents), len(vertices))
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := s.accessor(name, gltf.TEXCOORD_0, idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(s.doc, acr, nil)
		if err != nil {
			return nil, readErr(gltf.TEXCOORD_0, err)
		}
		if len(uvs) != len(vertices) {
			return nil, countErr(gltf.TEXCOORD_0, len(uvs), len(vertices))
		}
		for i, uv := range uvs {
			if s.imp.flipUVs {
				uv[1] = 1 - uv[1]
			}
			vertices[i].UV = uv
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := s.accessor(name, "indices", *prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(s.doc, acr, nil)
		if err != nil {
			return nil, readErr("indices", err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if err := mesh.Validate(name, len(vertices), indices); err != nil {
		return nil, err
	}
	if !hasNormals && s.imp.generateNormals {
		mesh.GenerateSmoothNormals(vertices, indices)
	}
	// Bitangents need the final normals.
	for i, t := range tangents {
		tan := math.Vec3{X: t[0], Y: t[1], Z: t[2]}
		bitan := math.Vec3FromArray(vertices[i].Normal).Cross(tan).Scale(t[3])
		vertices[i].Tangent = tan.Array()
		vertices[i].Bitangent = bitan.Array()
	}

	return mesh.NewBuffer(name, vertices, indices)
}

// diagnose records a non-fatal import problem.
func (s *importState) diagnose(msg string, err error) {
	s.log.Warn(msg, zap.Error(err))
	s.model.diagnostics = append(s.model.diagnostics, err)
}
