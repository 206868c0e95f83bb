package nif

// SkinInstance binds a shape to its bones.
type SkinInstance struct {
	Object
	Data  Ref
	Root  Ref
	Bones []Ref
}

func readSkinInstance(s *stream) Record {
	k := &SkinInstance{}
	k.Data = s.Ref()
	k.Root = s.Ref()
	k.Bones = s.Refs()
	return k
}

// VertexWeight is one bone influence.
type VertexWeight struct {
	Vertex uint16
	Weight float32
}

// BoneData is the bind pose of one bone and the vertices it moves.
type BoneData struct {
	Transform
	Center  [3]float32
	Radius  float32
	Weights []VertexWeight
}

// SkinData holds the bind pose and per-bone vertex weights.
type SkinData struct {
	Object
	Transform
	Partition Ref
	Bones     []BoneData
}

func readSkinData(s *stream) Record {
	d := &SkinData{Partition: NoRef}
	d.Transform = s.Transform()
	// bone transform, sphere and weight count
	bones := s.count(s.U32(), 68)
	if s.version >= 0x04000002 && s.version <= 0x0A010000 {
		d.Partition = s.Ref()
	}
	if bones > 0 {
		d.Bones = make([]BoneData, bones)
	}
	for i := 0; i < bones && s.Err() == nil; i++ {
		b := &d.Bones[i]
		b.Transform = s.Transform()
		b.Center = s.Vec3()
		b.Radius = s.F32()
		n := s.count(uint32(s.U16()), 6)
		if n > 0 {
			b.Weights = make([]VertexWeight, n)
			for j := range b.Weights {
				b.Weights[j] = VertexWeight{Vertex: s.U16(), Weight: s.F32()}
			}
		}
	}
	return d
}

// SkinPartitionBlock is one hardware-skinning batch.
type SkinPartitionBlock struct {
	NumVertices    uint16
	NumTriangles   uint16
	BonesPerVertex uint16
	Bones          []uint16
	VertexMap      []uint16 // partition vertex to shape vertex
	Weights        []float32
	Strips         [][]uint16
	Triangles      []uint16
	BoneIndices    []uint8
}

// SkinPartition splits a skinned shape into batches with a fixed number
// of bones per vertex.
type SkinPartition struct {
	Object
	Partitions []SkinPartitionBlock
}

// BonesPerVertex returns the largest influence count over all blocks.
func (p *SkinPartition) BonesPerVertex() int {
	n := 0
	for i := range p.Partitions {
		n = max(n, int(p.Partitions[i].BonesPerVertex))
	}
	return n
}

func readSkinPartition(s *stream) Record {
	p := &SkinPartition{}
	n := s.count(s.U32(), 10)
	for i := 0; i < n && s.Err() == nil; i++ {
		var b SkinPartitionBlock
		b.NumVertices = s.U16()
		b.NumTriangles = s.U16()
		numBones := int(s.U16())
		numStrips := int(s.U16())
		b.BonesPerVertex = s.U16()
		nv, bpv := int(b.NumVertices), int(b.BonesPerVertex)

		b.Bones = s.U16s(numBones)
		b.VertexMap = s.U16s(nv)
		b.Weights = s.F32s(nv * bpv)
		lengths := s.U16s(numStrips)
		if numStrips > 0 {
			for _, l := range lengths {
				b.Strips = append(b.Strips, s.U16s(int(l)))
			}
		} else {
			b.Triangles = s.U16s(int(b.NumTriangles) * 3)
		}
		if s.U8() != 0 {
			if c := s.count(uint32(nv*bpv), 1); c > 0 {
				b.BoneIndices = append([]byte(nil), s.Bytes(c)...)
			}
		}
		p.Partitions = append(p.Partitions, b)
	}
	return p
}
