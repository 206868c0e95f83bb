package nif

type builder func(*stream) Record

func nodeBuilder(s *stream) Record {
	n := &Node{}
	readNode(s, n)
	return n
}

func geometryBuilder(s *stream) Record {
	g := &Geometry{}
	readGeometry(s, g)
	return g
}

// builders maps every supported type name to its reader. Names missing
// here are fatal unless they end in "ExtraData".
var builders = map[string]builder{
	// nodes
	"NiNode":            nodeBuilder,
	"RootCollisionNode": nodeBuilder,
	"NiBSAnimationNode": nodeBuilder,
	"NiBSParticleNode":  nodeBuilder,
	"NiBillboardNode":   nodeBuilder,
	"AvoidNode":         nodeBuilder,
	"NiSwitchNode": func(s *stream) Record {
		n := &SwitchNode{}
		readSwitchNode(s, n)
		return n
	},
	"NiLODNode": func(s *stream) Record {
		n := &LODNode{}
		readLODNode(s, n)
		return n
	},

	// geometry
	"NiTriShape":                geometryBuilder,
	"NiTriStrips":               geometryBuilder,
	"NiAutoNormalParticles":     geometryBuilder,
	"NiRotatingParticles":       geometryBuilder,
	"NiTriShapeData":            readTriShapeData,
	"NiTriStripsData":           readTriStripsData,
	"NiAutoNormalParticlesData": readAutoNormalParticlesData,
	"NiRotatingParticlesData":   readRotatingParticlesData,

	// properties
	"NiTexturingProperty":   readTexturingProperty,
	"NiMaterialProperty":    readMaterialProperty,
	"NiAlphaProperty":       readAlphaProperty,
	"NiVertexColorProperty": readVertexColorProperty,
	"NiZBufferProperty":     readZBufferProperty,
	"NiSpecularProperty":    readPlainProperty,
	"NiWireframeProperty":   readPlainProperty,
	"NiDitherProperty":      readPlainProperty,
	"NiShadeProperty":       readPlainProperty,
	"NiStencilProperty":     readStencilProperty,

	// textures
	"NiSourceTexture": readSourceTexture,
	"NiPixelData":     readPixelData,
	"NiPalette":       readPalette,

	// skinning
	"NiSkinInstance":  readSkinInstance,
	"NiSkinData":      readSkinData,
	"NiSkinPartition": readSkinPartition,

	// effects
	"NiAmbientLight":     readBasicLight,
	"NiDirectionalLight": readBasicLight,
	"NiPointLight":       readPointLight,
	"NiSpotLight":        readSpotLight,
	"NiTextureEffect":    readTextureEffect,
	"NiCamera":           readCamera,

	// particles
	"NiParticleSystemController": readParticleSystemController,
	"NiBSPArrayController":       readParticleSystemController,
	"NiGravity":                  readGravity,
	"NiParticleBomb":             readParticleBomb,
	"NiParticleGrowFade":         readGrowFade,
	"NiParticleColorModifier":    readColorModifier,
	"NiParticleRotation":         readParticleRotation,
	"NiPlanarCollider":           readPlanarCollider,
	"NiSphericalCollider":        readSphericalCollider,

	// controllers
	"NiKeyframeController":      readDataController,
	"NiVisController":           readDataController,
	"NiAlphaController":         readDataController,
	"NiMaterialColorController": readDataController,
	"NiUVController":            readUVController,
	"NiFlipController":          readFlipController,
	"NiLookAtController":        readLookAtController,
	"NiPathController":          readPathController,
	"NiGeomMorpherController":   readGeomMorpherController,
	"NiKeyframeData":            readKeyframeData,
	"NiFloatData":               readFloatData,
	"NiPosData":                 readPosData,
	"NiColorData":               readColorData,
	"NiVisData":                 readVisData,
	"NiUVData":                  readUVData,
	"NiMorphData":               readMorphData,

	// extra data
	"NiStringExtraData":      readStringExtraData,
	"NiTextKeyExtraData":     readTextKeyExtraData,
	"NiSequenceStreamHelper": readSequenceStreamHelper,
}

// Supported reports whether a type name has a dedicated reader.
func Supported(typeName string) bool {
	_, ok := builders[typeName]
	return ok
}
