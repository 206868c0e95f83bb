package model

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/vvardenfell/pkg/math"
	"github.com/Faultbox/vvardenfell/pkg/nif"
)

// ErrEmptyScene is returned when a file has no placeable root.
var ErrEmptyScene = errors.New("model has no scene root")

// DefaultMaterial is the material key of shapes without properties.
const DefaultMaterial = "default"

// BuildScene converts a parsed file into a scene graph. Shapes whose
// geometry cannot be built are logged and kept without a mesh.
func BuildScene(f *nif.File, opts BuildOptions) (*Scene, error) {
	opts = opts.withDefaults()
	b := &sceneBuilder{
		file:      f,
		opts:      opts,
		log:       opts.Log.With(zap.String("file", f.Name)),
		visiting:  make(map[nif.Ref]bool),
		textures:  make(map[string]bool),
		materials: make(map[string]MaterialInfo),
		bounds:    emptyBounds(),
	}

	var roots []*SceneNode
	for _, ref := range f.Roots {
		if n := b.build(ref, math.Identity(), nil, false); n != nil {
			roots = append(roots, n)
		}
	}

	scene := &Scene{Materials: b.materials, Bounds: b.bounds}
	if !b.bounds.Empty() {
		lo, hi := math.V3(b.bounds.Min), math.V3(b.bounds.Max)
		scene.Center = lo.Add(hi).Scale(0.5).Array()
		scene.Radius = hi.Sub(lo).Length() / 2
	}
	switch len(roots) {
	case 0:
		return nil, ErrEmptyScene
	case 1:
		scene.Root = roots[0]
	default:
		scene.Root = &SceneNode{
			Ref:         nif.NoRef,
			Local:       Transform{Rotation: math.Identity3(), Scale: 1},
			World:       math.Identity(),
			ActiveChild: -1,
			Children:    roots,
		}
	}

	scene.Textures = slices.Sorted(maps.Keys(b.textures))
	return scene, nil
}

type sceneBuilder struct {
	file      *nif.File
	opts      BuildOptions
	log       *zap.Logger
	visiting  map[nif.Ref]bool
	textures  map[string]bool
	materials map[string]MaterialInfo
	bounds    Bounds
}

// propertySet maps a property type name to the record in effect.
type propertySet map[string]nif.Ref

func (b *sceneBuilder) build(ref nif.Ref, parent math.Mat4, inherited propertySet, collision bool) *SceneNode {
	rec, ok := nif.Resolve[nif.Placeable](b.file, ref)
	if !ok {
		return nil
	}
	if b.visiting[ref] {
		b.log.Warn("scene graph cycle, skipping subtree", zap.Int32("ref", int32(ref)))
		return nil
	}
	b.visiting[ref] = true
	defer delete(b.visiting, ref)

	av := rec.AV()
	node := &SceneNode{
		Name:        av.Name,
		Type:        rec.TypeName(),
		Ref:         ref,
		Local:       ConvertTransform(av.Transform, b.opts.UnitScale),
		Hidden:      av.Hidden(),
		Collision:   collision,
		ActiveChild: -1,
	}
	node.World = parent.Mul(node.Local.Matrix())
	props := b.inherit(inherited, av.Properties)

	switch r := rec.(type) {
	case *nif.Geometry:
		b.buildShape(node, r, props)
	case *nif.LODNode:
		node.LODRanges = r.Levels
	case *nif.SwitchNode:
		node.ActiveChild = int(r.InitialIndex)
	}

	if g, ok := rec.(nif.Grouping); ok {
		group := g.Group()
		node.Collision = node.Collision || group.Collision()
		for _, child := range group.Children {
			if c := b.build(child, node.World, props, node.Collision); c != nil {
				node.Children = append(node.Children, c)
			}
		}
	}
	return node
}

func (b *sceneBuilder) inherit(parent propertySet, refs []nif.Ref) propertySet {
	if len(refs) == 0 {
		return parent
	}
	props := maps.Clone(parent)
	if props == nil {
		props = make(propertySet, len(refs))
	}
	for _, ref := range refs {
		if rec, ok := b.file.Get(ref); ok {
			props[rec.TypeName()] = ref
		}
	}
	return props
}

func (b *sceneBuilder) buildShape(node *SceneNode, g *nif.Geometry, props propertySet) {
	mesh, err := BuildMesh(b.file, g.Data, b.opts)
	if err != nil {
		b.log.Warn("skipping shape geometry", zap.String("shape", node.Name), zap.Error(err))
		return
	}
	if g.Skin.Valid() {
		skin, err := BuildSkin(b.file, g.Skin, len(mesh.Positions), b.opts)
		if err != nil {
			b.log.Warn("skipping shape skin", zap.String("shape", node.Name), zap.Error(err))
		} else {
			mesh.Skin = skin
		}
	}
	if b.opts.Weld {
		if n := WeldVertices(mesh); n > 0 {
			b.log.Debug("welded vertices", zap.String("shape", node.Name), zap.Int("removed", n))
		}
	}
	if b.opts.OptimizeCache {
		OptimizeVertexCache(mesh)
	}
	node.Mesh = mesh
	node.Material = b.material(props)

	if !node.Collision {
		for _, p := range mesh.Positions {
			updateBounds(&b.bounds, node.World.TransformPoint(p))
		}
	}
}

// material resolves the effective properties of a shape. Shapes with the
// same property records share one key.
func (b *sceneBuilder) material(props propertySet) string {
	if len(props) == 0 {
		if _, ok := b.materials[DefaultMaterial]; !ok {
			b.materials[DefaultMaterial] = defaultMaterial()
		}
		return DefaultMaterial
	}

	names := slices.Sorted(maps.Keys(props))
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = strconv.Itoa(int(props[name]))
	}
	key := strings.Join(parts, ",")
	if _, ok := b.materials[key]; ok {
		return key
	}

	m := defaultMaterial()
	for _, name := range names {
		rec, _ := b.file.Get(props[name])
		switch p := rec.(type) {
		case *nif.TexturingProperty:
			if slot, ok := p.Slot(nif.SlotBase); ok {
				if src, ok := nif.Resolve[*nif.SourceTexture](b.file, slot.Source); ok && src.External {
					m.Texture = NormalizeTexturePath(src.FileName)
					b.textures[m.Texture] = true
				}
			}
		case *nif.MaterialProperty:
			m.Ambient, m.Diffuse = p.Ambient, p.Diffuse
			m.Specular, m.Emissive = p.Specular, p.Emissive
			m.Glossiness = p.Glossiness
			m.Alpha = p.Alpha
		case *nif.AlphaProperty:
			m.AlphaBlend = p.Blend()
			m.AlphaTest = p.Test()
			m.AlphaThreshold = p.Threshold
			m.SourceBlend = p.SourceBlend()
			m.DestBlend = p.DestBlend()
		case *nif.VertexColorProperty:
			m.VertexColors = p.VertexMode == 2 // ambient and diffuse
		case *nif.ZBufferProperty:
			m.DepthTest = p.Flags&0x1 != 0
			m.DepthWrite = p.Flags&0x2 != 0
		case *nif.Property:
			switch p.Type {
			case "NiWireframeProperty":
				m.Wireframe = p.Enabled()
			case "NiSpecularProperty":
				m.SpecularLit = p.Enabled()
			}
		}
	}
	b.materials[key] = m
	return key
}

func defaultMaterial() MaterialInfo {
	return MaterialInfo{
		Ambient:    [3]float32{1, 1, 1},
		Diffuse:    [3]float32{1, 1, 1},
		Alpha:      1,
		DepthTest:  true,
		DepthWrite: true,
	}
}

// NormalizeTexturePath returns the archive path of a texture file name:
// lowercase, backslash separated and rooted under textures\.
func NormalizeTexturePath(name string) string {
	p := strings.ToLower(strings.ReplaceAll(name, "/", `\`))
	p = strings.TrimLeft(p, `\`)
	if !strings.HasPrefix(p, `textures\`) {
		p = `textures\` + p
	}
	return p
}
