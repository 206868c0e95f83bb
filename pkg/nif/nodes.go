package nif

// Node groups child objects under one transform. NiNode and its plain
// subclasses (RootCollisionNode, NiBSAnimationNode, NiBSParticleNode,
// NiBillboardNode, AvoidNode) share this layout.
type Node struct {
	AVObject
	Children []Ref
	Effects  []Ref
}

// Group returns the node part of a record.
func (n *Node) Group() *Node { return n }

// Grouping is implemented by every node type.
type Grouping interface {
	Placeable
	Group() *Node
}

func readNode(s *stream, n *Node) {
	readAVObject(s, &n.AVObject)
	n.Children = s.Refs()
	n.Effects = s.Refs()
}

// SwitchNode shows one child at a time.
type SwitchNode struct {
	Node
	InitialIndex uint32
}

func readSwitchNode(s *stream, n *SwitchNode) {
	readNode(s, &n.Node)
	n.InitialIndex = s.U32()
}

// LODRange is the distance band in which one LOD child is shown.
type LODRange struct {
	Near, Far float32
}

// LODNode switches children by distance from Center.
type LODNode struct {
	SwitchNode
	Center [3]float32
	Levels []LODRange
}

func readLODNode(s *stream, n *LODNode) {
	readSwitchNode(s, &n.SwitchNode)
	n.Center = s.Vec3()
	count := s.count(s.U32(), 8)
	if count > 0 {
		n.Levels = make([]LODRange, count)
		for i := range n.Levels {
			n.Levels[i] = LODRange{Near: s.F32(), Far: s.F32()}
		}
	}
}

// Collision reports whether the node only carries collision geometry.
func (n *Node) Collision() bool { return n.Type == "RootCollisionNode" }
