package nif

// Property is the base of render state records. Plain properties
// (NiSpecularProperty, NiWireframeProperty, NiDitherProperty,
// NiShadeProperty) carry only their flags.
type Property struct {
	ObjectNET
	Flags uint16
}

func readProperty(s *stream, p *Property) {
	readObjectNET(s, &p.ObjectNET)
	p.Flags = s.U16()
}

// Enabled reports whether bit 0 of the flags is set. For specular,
// wireframe, dither and shade properties that is the whole state.
func (p *Property) Enabled() bool { return p.Flags&1 != 0 }

// Texture slots of NiTexturingProperty.
const (
	SlotBase = iota
	SlotDark
	SlotDetail
	SlotGloss
	SlotGlow
	SlotBump
	SlotDecal
)

// TextureSlot is one texture unit of a texturing property.
type TextureSlot struct {
	InUse  bool
	Source Ref
	Clamp  uint32
	Filter uint32
	UVSet  uint32
}

// TexturingProperty binds source textures to texture units.
type TexturingProperty struct {
	Property
	Apply    uint32
	Textures []TextureSlot

	// bump map parameters, set when the bump slot is in use
	LumaScale, LumaOffset float32
	BumpMatrix            [4]float32
}

// Slot returns the texture in slot i, if it is in use.
func (p *TexturingProperty) Slot(i int) (TextureSlot, bool) {
	if i < 0 || i >= len(p.Textures) || !p.Textures[i].InUse {
		return TextureSlot{}, false
	}
	return p.Textures[i], true
}

func readTexturingProperty(s *stream) Record {
	p := &TexturingProperty{}
	readProperty(s, &p.Property)
	p.Apply = s.U32()
	n := s.count(s.U32(), 4)
	if n > 0 {
		p.Textures = make([]TextureSlot, n)
	}
	for i := 0; i < n && s.Err() == nil; i++ {
		t := &p.Textures[i]
		t.InUse = s.Bool()
		if !t.InUse {
			continue
		}
		t.Source = s.Ref()
		t.Clamp = s.U32()
		t.Filter = s.U32()
		t.UVSet = s.U32()
		s.Skip(6) // PS2 L/K and an unused short

		if i == SlotBump {
			p.LumaScale = s.F32()
			p.LumaOffset = s.F32()
			p.BumpMatrix = s.Vec4()
		}
	}
	return p
}

// MaterialProperty holds lighting colors.
type MaterialProperty struct {
	Property
	Ambient, Diffuse, Specular, Emissive [3]float32
	Glossiness                           float32
	Alpha                                float32
}

func readMaterialProperty(s *stream) Record {
	p := &MaterialProperty{}
	readProperty(s, &p.Property)
	p.Ambient = s.Vec3()
	p.Diffuse = s.Vec3()
	p.Specular = s.Vec3()
	p.Emissive = s.Vec3()
	p.Glossiness = s.F32()
	p.Alpha = s.F32()
	return p
}

// AlphaProperty configures blending and alpha testing. The blend and
// test modes are packed into the flags.
type AlphaProperty struct {
	Property
	Threshold uint8
}

// Blend reports whether alpha blending is enabled.
func (p *AlphaProperty) Blend() bool { return p.Flags&0x1 != 0 }

// Test reports whether alpha testing is enabled.
func (p *AlphaProperty) Test() bool { return p.Flags&0x200 != 0 }

// SourceBlend and DestBlend return the blend factor codes.
func (p *AlphaProperty) SourceBlend() int { return int(p.Flags>>1) & 0xf }
func (p *AlphaProperty) DestBlend() int { return int(p.Flags>>5) & 0xf }

// TestFunc returns the alpha test comparison code.
func (p *AlphaProperty) TestFunc() int { return int(p.Flags>>10) & 0x7 }

func readAlphaProperty(s *stream) Record {
	p := &AlphaProperty{}
	readProperty(s, &p.Property)
	p.Threshold = s.U8()
	return p
}

// VertexColorProperty selects how vertex colors feed lighting.
type VertexColorProperty struct {
	Property
	VertexMode   uint32
	LightingMode uint32
}

func readVertexColorProperty(s *stream) Record {
	p := &VertexColorProperty{}
	readProperty(s, &p.Property)
	p.VertexMode = s.U32()
	p.LightingMode = s.U32()
	return p
}

// ZBufferProperty configures depth test and write.
type ZBufferProperty struct {
	Property
	TestFunc uint32
}

func readZBufferProperty(s *stream) Record {
	p := &ZBufferProperty{TestFunc: 3} // less-or-equal
	readProperty(s, &p.Property)
	if s.version >= 0x0401000C {
		p.TestFunc = s.U32()
	}
	return p
}

func readPlainProperty(s *stream) Record {
	p := &Property{}
	readProperty(s, p)
	return p
}

// StencilProperty configures the stencil buffer.
type StencilProperty struct {
	Property
	Stencil     bool
	Func        uint32
	Reference   uint32
	Mask        uint32
	FailAction  uint32
	ZFailAction uint32
	PassAction  uint32
	DrawMode    uint32
}

func readStencilProperty(s *stream) Record {
	p := &StencilProperty{}
	readProperty(s, &p.Property)
	p.Stencil = s.U8() != 0
	p.Func = s.U32()
	p.Reference = s.U32()
	p.Mask = s.U32()
	p.FailAction = s.U32()
	p.ZFailAction = s.U32()
	p.PassAction = s.U32()
	p.DrawMode = s.U32()
	return p
}
