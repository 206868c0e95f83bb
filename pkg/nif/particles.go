package nif

// Particle is the saved state of one particle.
type Particle struct {
	Velocity   [3]float32
	Age        float32
	Lifespan   float32
	LastUpdate float32
	Vertex     uint16
}

// ParticleSystemController emits and updates particles. It is used for
// both NiParticleSystemController and NiBSPArrayController.
type ParticleSystemController struct {
	Controller
	Speed, SpeedRandom          float32
	Declination, DeclinationVar float32
	PlanarAngle, PlanarAngleVar float32
	InitialNormal               [3]float32
	InitialColor                [4]float32
	InitialSize                 float32
	EmitStart, EmitStop         float32
	EmitRate                    float32
	Lifetime, LifetimeRandom    float32
	EmitFlags                   uint16
	StartRandom                 [3]float32
	Emitter                     Ref
	NumActive                   uint16
	Particles                   []Particle
	Modifier                    Ref
	Collider                    Ref
}

// EmitsAtRate reports whether particles are emitted at EmitRate rather than
// all at once.
func (c *ParticleSystemController) EmitsAtRate() bool { return c.EmitFlags&1 == 0 }

func readParticleSystemController(s *stream) Record {
	c := &ParticleSystemController{}
	readController(s, &c.Controller)
	c.Speed = s.F32()
	c.SpeedRandom = s.F32()
	c.Declination = s.F32()
	c.DeclinationVar = s.F32()
	c.PlanarAngle = s.F32()
	c.PlanarAngleVar = s.F32()
	c.InitialNormal = s.Vec3()
	c.InitialColor = s.Vec4()
	c.InitialSize = s.F32()
	c.EmitStart = s.F32()
	c.EmitStop = s.F32()
	s.U8()
	c.EmitRate = s.F32()
	c.Lifetime = s.F32()
	c.LifetimeRandom = s.F32()
	c.EmitFlags = s.U16()
	c.StartRandom = s.Vec3()
	c.Emitter = s.Ref()
	s.Skip(16) // spawn settings, unused by the 4.0 runtime

	total := s.count(uint32(s.U16()), 40)
	c.NumActive = s.U16()
	if total > 0 {
		c.Particles = make([]Particle, total)
	}
	for i := 0; i < total && s.Err() == nil; i++ {
		p := &c.Particles[i]
		p.Velocity = s.Vec3()
		s.Vec3() // rotation axis
		p.Age = s.F32()
		p.Lifespan = s.F32()
		p.LastUpdate = s.F32()
		s.U16() // spawn generation
		p.Vertex = s.U16()
	}
	s.I32()
	c.Modifier = s.Ref()
	c.Collider = s.Ref()
	s.U8() // static target bound
	return c
}

// ParticleModifier is the base of the modifier chain.
type ParticleModifier struct {
	Object
	Next       Ref
	Controller Ref
}

func readParticleModifier(s *stream, m *ParticleModifier) {
	m.Next = s.Ref()
	m.Controller = s.Ref()
}

// Gravity pulls particles along a direction or toward a point.
type Gravity struct {
	ParticleModifier
	Decay     float32
	Force     float32
	Kind      uint32 // 0 planar, 1 spherical
	Position  [3]float32
	Direction [3]float32
}

func readGravity(s *stream) Record {
	g := &Gravity{}
	readParticleModifier(s, &g.ParticleModifier)
	g.Decay = s.F32()
	g.Force = s.F32()
	g.Kind = s.U32()
	g.Position = s.Vec3()
	g.Direction = s.Vec3()
	return g
}

// ParticleBomb pushes particles away from a point.
type ParticleBomb struct {
	ParticleModifier
	Decay     float32
	Duration  float32
	DeltaV    float32
	Start     float32
	DecayType uint32
	Position  [3]float32
	Direction [3]float32
}

func readParticleBomb(s *stream) Record {
	b := &ParticleBomb{}
	readParticleModifier(s, &b.ParticleModifier)
	b.Decay = s.F32()
	b.Duration = s.F32()
	b.DeltaV = s.F32()
	b.Start = s.F32()
	b.DecayType = s.U32()
	if s.version >= 0x0401000C {
		s.U32() // symmetry type
	}
	b.Position = s.Vec3()
	b.Direction = s.Vec3()
	return b
}

// GrowFade scales particles in at birth and out before death.
type GrowFade struct {
	ParticleModifier
	Grow, Fade float32
}

func readGrowFade(s *stream) Record {
	g := &GrowFade{}
	readParticleModifier(s, &g.ParticleModifier)
	g.Grow = s.F32()
	g.Fade = s.F32()
	return g
}

// ColorModifier colors particles over their life from a NiColorData.
type ColorModifier struct {
	ParticleModifier
	Data Ref
}

func readColorModifier(s *stream) Record {
	m := &ColorModifier{}
	readParticleModifier(s, &m.ParticleModifier)
	m.Data = s.Ref()
	return m
}

// ParticleRotation spins particles.
type ParticleRotation struct {
	ParticleModifier
	RandomAxis bool
	Axis       [3]float32
	Speed      float32
}

func readParticleRotation(s *stream) Record {
	r := &ParticleRotation{}
	readParticleModifier(s, &r.ParticleModifier)
	r.RandomAxis = s.U8() != 0
	r.Axis = s.Vec3()
	r.Speed = s.F32()
	return r
}

// PlanarCollider bounces particles off a rectangle.
type PlanarCollider struct {
	ParticleModifier
	Bounce   float32
	Extents  [2]float32
	Position [3]float32
	XAxis    [3]float32
	YAxis    [3]float32
	Normal   [3]float32
	Distance float32
}

func readPlanarCollider(s *stream) Record {
	c := &PlanarCollider{}
	readParticleModifier(s, &c.ParticleModifier)
	c.Bounce = s.F32()
	c.Extents = s.Vec2()
	c.Position = s.Vec3()
	c.XAxis = s.Vec3()
	c.YAxis = s.Vec3()
	c.Normal = s.Vec3()
	c.Distance = s.F32()
	return c
}

// SphericalCollider bounces particles off a sphere.
type SphericalCollider struct {
	ParticleModifier
	Bounce float32
	Radius float32
	Center [3]float32
}

func readSphericalCollider(s *stream) Record {
	c := &SphericalCollider{}
	readParticleModifier(s, &c.ParticleModifier)
	c.Bounce = s.F32()
	c.Radius = s.F32()
	c.Center = s.Vec3()
	return c
}
