package nif

// DynamicEffect is the base of lights and texture effects.
type DynamicEffect struct {
	AVObject
	Affected []Ref
}

func readDynamicEffect(s *stream, e *DynamicEffect) {
	readAVObject(s, &e.AVObject)
	e.Affected = s.Refs()
}

// Light is NiAmbientLight and NiDirectionalLight; point and spot lights
// extend it.
type Light struct {
	DynamicEffect
	Dimmer                     float32
	Ambient, Diffuse, Specular [3]float32
}

func readLight(s *stream, l *Light) {
	readDynamicEffect(s, &l.DynamicEffect)
	l.Dimmer = s.F32()
	l.Ambient = s.Vec3()
	l.Diffuse = s.Vec3()
	l.Specular = s.Vec3()
}

func readBasicLight(s *stream) Record {
	l := &Light{}
	readLight(s, l)
	return l
}

// PointLight adds distance attenuation.
type PointLight struct {
	Light
	Constant, Linear, Quadratic float32
}

func readPointLightFields(s *stream, l *PointLight) {
	readLight(s, &l.Light)
	l.Constant = s.F32()
	l.Linear = s.F32()
	l.Quadratic = s.F32()
}

func readPointLight(s *stream) Record {
	l := &PointLight{}
	readPointLightFields(s, l)
	return l
}

// SpotLight adds a cone.
type SpotLight struct {
	PointLight
	Cutoff   float32
	Exponent float32
}

func readSpotLight(s *stream) Record {
	l := &SpotLight{}
	readPointLightFields(s, &l.PointLight)
	l.Cutoff = s.F32()
	l.Exponent = s.F32()
	return l
}

// TextureEffect projects a texture (environment maps, projected lights).
type TextureEffect struct {
	DynamicEffect
	ProjectionMatrix    [9]float32
	ProjectionTranslate [3]float32
	Filter              uint32
	Clamp               uint32
	TextureType         uint32
	CoordGen            uint32
	Source              Ref
	Clipping            bool
	ClipPlane           [4]float32
}

func readTextureEffect(s *stream) Record {
	e := &TextureEffect{}
	readDynamicEffect(s, &e.DynamicEffect)
	e.ProjectionMatrix = s.Mat3()
	e.ProjectionTranslate = s.Vec3()
	e.Filter = s.U32()
	e.Clamp = s.U32()
	e.TextureType = s.U32()
	e.CoordGen = s.U32()
	e.Source = s.Ref()
	e.Clipping = s.U8() != 0
	e.ClipPlane = s.Vec4()
	if s.version <= 0x0A020000 {
		s.Skip(4) // PS2 L/K
	}
	if s.version <= 0x0401000C {
		s.Skip(2)
	}
	return e
}

// Camera is a viewpoint. Frustum is left, right, top, bottom, near, far;
// Viewport is left, right, top, bottom.
type Camera struct {
	AVObject
	Frustum   [6]float32
	Viewport  [4]float32
	LODAdjust float32
	Scene     Ref
}

func readCamera(s *stream) Record {
	c := &Camera{}
	readAVObject(s, &c.AVObject)
	for i := range c.Frustum {
		c.Frustum[i] = s.F32()
	}
	for i := range c.Viewport {
		c.Viewport[i] = s.F32()
	}
	c.LODAdjust = s.F32()
	c.Scene = s.Ref()
	s.U32() // screen polygons
	if s.version >= 0x04020100 {
		s.U32() // screen textures
	}
	return c
}
