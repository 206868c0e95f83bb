package nif

// Geometry is a shape object: NiTriShape, NiTriStrips and the particle
// shapes. Data points at the matching data record.
type Geometry struct {
	AVObject
	Data Ref
	Skin Ref
}

func readGeometry(s *stream, g *Geometry) {
	readAVObject(s, &g.AVObject)
	g.Data = s.Ref()
	g.Skin = s.Ref()
}

// GeometryData holds the per-vertex arrays shared by every shape data
// record. Arrays that are absent in the file are nil.
type GeometryData struct {
	Object
	NumVertices uint16
	Vertices    [][3]float32
	Normals     [][3]float32
	Center      [3]float32
	Radius      float32
	Colors      [][4]float32
	UVSets      [][][2]float32
}

// Shape returns the common geometry arrays.
func (d *GeometryData) Shape() *GeometryData { return d }

// ShapeData is implemented by every geometry data record.
type ShapeData interface {
	Record
	Shape() *GeometryData
}

func readGeometryData(s *stream, d *GeometryData) {
	d.NumVertices = s.U16()
	n := int(d.NumVertices)
	if s.Bool() {
		d.Vertices = s.Vec3s(n)
	}
	if s.Bool() {
		d.Normals = s.Vec3s(n)
	}
	d.Center = s.Vec3()
	d.Radius = s.F32()
	if s.Bool() {
		d.Colors = s.Vec4s(n)
	}
	// the upper bits of the set count are flags
	sets := int(s.U16() & 0x3f)
	if s.Bool() {
		d.UVSets = make([][][2]float32, 0, sets)
		for i := 0; i < sets && s.Err() == nil; i++ {
			d.UVSets = append(d.UVSets, s.Vec2s(n))
		}
	}
}

// TriShapeData is an indexed triangle list.
type TriShapeData struct {
	GeometryData
	NumTriangles uint16
	Triangles    []uint16 // three indices per triangle
	MatchGroups  [][]uint16
}

func readTriShapeData(s *stream) Record {
	d := &TriShapeData{}
	readGeometryData(s, &d.GeometryData)
	d.NumTriangles = s.U16()
	d.Triangles = s.U16s(s.count(s.U32(), 2))
	groups := s.count(uint32(s.U16()), 2)
	for i := 0; i < groups && s.Err() == nil; i++ {
		d.MatchGroups = append(d.MatchGroups, s.U16s(int(s.U16())))
	}
	return d
}

// TriStripsData is a set of triangle strips.
type TriStripsData struct {
	GeometryData
	NumTriangles uint16
	Strips       [][]uint16
}

func readTriStripsData(s *stream) Record {
	d := &TriStripsData{}
	readGeometryData(s, &d.GeometryData)
	d.NumTriangles = s.U16()
	lengths := s.U16s(int(s.U16()))
	if len(lengths) > 0 {
		d.Strips = make([][]uint16, 0, len(lengths))
		for _, l := range lengths {
			d.Strips = append(d.Strips, s.U16s(int(l)))
		}
	}
	return d
}

// ParticlesData is the vertex data of a particle shape; vertices are the
// particle positions.
type ParticlesData struct {
	GeometryData
	NumParticles   uint16
	ParticleRadius float32
	NumActive      uint16
	Sizes          []float32
	Rotations      [][4]float32 // NiRotatingParticlesData only
}

func readParticlesData(s *stream, d *ParticlesData) {
	readGeometryData(s, &d.GeometryData)
	d.NumParticles = s.U16()
	d.ParticleRadius = s.F32()
	d.NumActive = s.U16()
	if s.Bool() {
		d.Sizes = s.F32s(int(d.NumVertices))
	}
}

func readAutoNormalParticlesData(s *stream) Record {
	d := &ParticlesData{}
	readParticlesData(s, d)
	return d
}

func readRotatingParticlesData(s *stream) Record {
	d := &ParticlesData{}
	readParticlesData(s, d)
	if s.Bool() {
		d.Rotations = s.Vec4s(int(d.NumVertices))
	}
	return d
}
