// Package model turns parsed model files into renderable buffers.
//
// Source geometry is right-handed Z-up in game units. Every position,
// normal, bounding sphere and node transform leaving this package is
// converted to Y-up and scaled by BuildOptions.UnitScale.
package model

import (
	"go.uber.org/zap"

	"github.com/Faultbox/vvardenfell/pkg/math"
	"github.com/Faultbox/vvardenfell/pkg/nif"
)

// DefaultUnitScale converts game units to meters.
const DefaultUnitScale = float32(1.0 / 70)

// DefaultBonesPerVertex is used when a skin declares no partition.
const DefaultBonesPerVertex = 4

// Mesh holds one shape's vertex and index buffers.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32   // nil when the shape has none
	Colors    [][4]float32   // nil when the shape has none
	UVSets    [][][2]float32 // one slice per texture coordinate set
	Indices   []uint32       // triangle list; nil for particle shapes
	Center    [3]float32     // bounding sphere
	Radius    float32
	Bounds    Bounds
	Skin      *Skin
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool { return b.Min[0] > b.Max[0] }

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	b.Min = math.V3(b.Min).Min(math.V3(p)).Array()
	b.Max = math.V3(b.Max).Max(math.V3(p)).Array()
}

// Transform is a converted node transform.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Mat3
	Scale       float32
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Translation, t.Rotation, t.Scale)
}

// Quat returns the rotation as a quaternion.
func (t Transform) Quat() math.Quat {
	return math.QuatFromMat3(t.Rotation)
}

// BuildOptions contains options for mesh and scene building.
type BuildOptions struct {
	// UnitScale multiplies positions and translations. Zero means
	// DefaultUnitScale.
	UnitScale float32
	// BonesPerVertex is the influence count used when a skin has no
	// partition. Zero means DefaultBonesPerVertex.
	BonesPerVertex int
	// GenerateNormals gives shapes without normals smooth ones.
	GenerateNormals bool
	// Weld runs WeldVertices on every shape.
	Weld bool
	// OptimizeCache runs OptimizeVertexCache on every shape.
	OptimizeCache bool
	// Log receives warnings about shapes that could not be built.
	Log *zap.Logger
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.UnitScale == 0 {
		o.UnitScale = DefaultUnitScale
	}
	if o.BonesPerVertex <= 0 {
		o.BonesPerVertex = DefaultBonesPerVertex
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// SceneNode is one object of a converted scene graph.
type SceneNode struct {
	Name      string
	Type      string  // record type name
	Ref       nif.Ref // record index in the source file
	Local     Transform
	World     math.Mat4
	Hidden    bool
	Collision bool // part of a RootCollisionNode subtree
	Mesh      *Mesh
	Material  string // key into Scene.Materials, empty for non-shapes
	Children  []*SceneNode

	// switch and LOD nodes
	ActiveChild int // -1 when every child is shown
	LODRanges   []nif.LODRange
}

// MaterialInfo is the render state of one shape after property
// inheritance.
type MaterialInfo struct {
	Texture        string // normalized base texture path, empty if untextured
	Ambient        [3]float32
	Diffuse        [3]float32
	Specular       [3]float32
	Emissive       [3]float32
	Glossiness     float32
	Alpha          float32
	AlphaBlend     bool
	AlphaTest      bool
	AlphaThreshold uint8
	SourceBlend    int
	DestBlend      int
	VertexColors   bool // vertex colors replace the material colors
	Wireframe      bool
	SpecularLit    bool
	DepthTest      bool
	DepthWrite     bool
}

// Scene is a converted model: the node tree, every external texture it
// uses and the material of every shape.
type Scene struct {
	Root      *SceneNode
	Textures  []string
	Materials map[string]MaterialInfo
	Bounds    Bounds     // world space, collision shapes excluded
	Center    [3]float32 // sphere around Bounds
	Radius    float32
}
