package esm

import (
	"fmt"

	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// Terrain dimensions.
const (
	LandSize        = 65 // vertices per side of a land record
	LandTextureSize = 16 // texture cells per side
	HeightScale     = 8  // world units per decoded height step
)

// Cell flags (DATA subrecord).
const (
	CellInterior      = 0x01
	CellHasWater      = 0x02
	CellNoSleep       = 0x04
	CellQuasiExterior = 0x80
)

// Land data flags.
const (
	LandHasNormals  = 0x01 // VNML/VHGT present
	LandHasColors   = 0x02
	LandHasTextures = 0x04
)

// Base carries what every table entry has: the original-case identifier
// and the tombstone flag.
type Base struct {
	ID      string
	Deleted bool
}

func (b *Base) base() *Base { return b }

// Master is a file the content file depends on.
type Master struct {
	Name string
	Size uint64
}

// Header is the TES3 record at the start of every content file.
type Header struct {
	Version     float32
	Flags       uint32
	Author      string
	Description string
	NumRecords  uint32
	Masters     []Master
}

// InventoryItem is an NPCO entry.
type InventoryItem struct {
	Count int32
	ID    string
}

// PartReference maps a body slot to male and female body parts.
type PartReference struct {
	Part   uint8
	Male   string
	Female string
}

// Static is a non-interactive placed object.
type Static struct {
	Base
	Model string
}

// Door is a placed door, possibly a teleport.
type Door struct {
	Base
	Model      string
	Name       string
	Script     string
	OpenSound  string
	CloseSound string
}

// Activator is a scriptable placed object.
type Activator struct {
	Base
	Model  string
	Name   string
	Script string
}

// Container holds items.
type Container struct {
	Base
	Model  string
	Name   string
	Script string
	Weight float32
	Flags  uint32
	Items  []InventoryItem
}

// Light is a light-emitting object, possibly carryable.
type Light struct {
	Base
	Model  string
	Name   string
	Icon   string
	Script string
	Sound  string
	Weight float32
	Value  int32
	Time   int32
	Radius uint32
	Color  [4]uint8
	Flags  uint32
}

// NPC is a non-player character definition.
type NPC struct {
	Base
	Model   string
	Name    string
	Race    string
	Class   string
	Faction string
	Head    string
	Hair    string
	Script  string
	Level   int16
	Flags   uint32
	Items   []InventoryItem
	Spells  []string
}

// Creature is a creature definition.
type Creature struct {
	Base
	Model    string
	Name     string
	SoundGen string
	Script   string
	Type     uint32
	Level    uint32
	Flags    uint32
	Scale    float32
	Items    []InventoryItem
	Spells   []string
}

// Race is a playable or NPC race.
type Race struct {
	Base
	Name        string
	Description string
	Height      [2]float32 // male, female
	Weight      [2]float32 // male, female
	Flags       uint32
	Spells      []string
}

// BodyPart is a mesh piece used to assemble actors.
type BodyPart struct {
	Base
	Model   string
	Race    string
	Part    uint8
	Vampire uint8
	Flags   uint8
	Type    uint8
}

// Weapon is a weapon definition.
type Weapon struct {
	Base
	Model      string
	Name       string
	Icon       string
	Enchant    string
	Script     string
	Weight     float32
	Value      int32
	Type       int16
	Health     uint16
	Speed      float32
	Reach      float32
	EnchantPts uint16
	Chop       [2]uint8
	Slash      [2]uint8
	Thrust     [2]uint8
	Flags      uint32
}

// Armor is an armor definition.
type Armor struct {
	Base
	Model      string
	Name       string
	Icon       string
	Enchant    string
	Script     string
	Type       int32
	Weight     float32
	Value      int32
	Health     int32
	EnchantPts int32
	Rating     int32
	Parts      []PartReference
}

// Clothing is a clothing definition.
type Clothing struct {
	Base
	Model      string
	Name       string
	Icon       string
	Enchant    string
	Script     string
	Type       int32
	Weight     float32
	Value      uint16
	EnchantPts uint16
	Parts      []PartReference
}

// LandTexture maps a terrain texture index to a texture file.
type LandTexture struct {
	Base
	Index   uint32
	Texture string
}

// Ambient is a cell's AMBI block.
type Ambient struct {
	Ambient    [4]uint8
	Sunlight   [4]uint8
	Fog        [4]uint8
	FogDensity float32
}

// Teleport is a door destination.
type Teleport struct {
	Position [3]float32
	Rotation [3]float32
	Cell     string
}

// CellReference is one placed object inside a cell.
type CellReference struct {
	RefNum    uint32
	BaseID    string
	Deleted   bool
	Position  [3]float32
	Rotation  [3]float32
	Scale     float32
	Owner     string
	Global    string
	Faction   string
	Rank      int32
	Soul      string
	Charge    float32
	Health    int32
	Count     int32
	Blocked   bool
	LockLevel int32
	Key       string
	Trap      string
	Teleport  *Teleport
}

// MovedReference records an MVRF marker: RefNum has moved to another cell.
// Reference is the placement that followed the marker, if any.
type MovedReference struct {
	RefNum    uint32
	DestCell  string
	DestGrid  *[2]int32
	Reference *CellReference
}

// Cell is an interior or exterior cell with its placed references.
type Cell struct {
	Base
	Key         string
	Name        string
	Flags       uint32
	GridX       int32
	GridY       int32
	Region      string
	MapColor    uint32
	WaterHeight *float32
	Ambient     *Ambient
	References  []CellReference
	DeletedRefs []uint32
	MovedRefs   []MovedReference
}

// Interior reports whether the cell is an interior.
func (c *Cell) Interior() bool { return c.Flags&CellInterior != 0 }

// Land is one exterior cell's terrain.
type Land struct {
	Base
	X        int32
	Y        int32
	Flags    uint32
	Heights  []float32 // LandSize*LandSize, row-major, nil when absent
	Normals  []int8    // LandSize*LandSize*3
	Colors   []uint8   // LandSize*LandSize*3
	Textures []uint16  // LandTextureSize*LandTextureSize
}

// HeightAt returns the height at grid vertex (x, y).
func (l *Land) HeightAt(x, y int) (float32, bool) {
	if l.Heights == nil || x < 0 || y < 0 || x >= LandSize || y >= LandSize {
		return 0, false
	}
	return l.Heights[y*LandSize+x], true
}

// ExteriorKey returns the table key of an exterior cell or land.
func ExteriorKey(x, y int32) string {
	return fmt.Sprintf("%d,%d", x, y)
}

// CellKey returns the table key of a cell: its folded name for interiors,
// its grid coordinates for exteriors.
func CellKey(name string, flags uint32, x, y int32) string {
	if flags&CellInterior != 0 {
		return encoding.FoldKey(name)
	}
	return ExteriorKey(x, y)
}

// Tables holds everything decoded from one content file.
type Tables struct {
	Source string
	Header Header

	Statics      map[string]*Static
	Doors        map[string]*Door
	Activators   map[string]*Activator
	Containers   map[string]*Container
	Lights       map[string]*Light
	NPCs         map[string]*NPC
	Creatures    map[string]*Creature
	Races        map[string]*Race
	BodyParts    map[string]*BodyPart
	Weapons      map[string]*Weapon
	Armors       map[string]*Armor
	Clothing     map[string]*Clothing
	LandTextures map[string]*LandTexture
	Cells        map[string]*Cell
	Lands        map[string]*Land

	// Skipped counts records with no builder; Recovered counts records
	// abandoned after a subrecord error.
	Skipped   int
	Recovered int
}

// NewTables returns empty tables.
func NewTables(source string) *Tables {
	return &Tables{
		Source:       source,
		Statics:      make(map[string]*Static),
		Doors:        make(map[string]*Door),
		Activators:   make(map[string]*Activator),
		Containers:   make(map[string]*Container),
		Lights:       make(map[string]*Light),
		NPCs:         make(map[string]*NPC),
		Creatures:    make(map[string]*Creature),
		Races:        make(map[string]*Race),
		BodyParts:    make(map[string]*BodyPart),
		Weapons:      make(map[string]*Weapon),
		Armors:       make(map[string]*Armor),
		Clothing:     make(map[string]*Clothing),
		LandTextures: make(map[string]*LandTexture),
		Cells:        make(map[string]*Cell),
		Lands:        make(map[string]*Land),
	}
}

// Count returns the total number of entries across all tables.
func (t *Tables) Count() int {
	return len(t.Statics) + len(t.Doors) + len(t.Activators) + len(t.Containers) +
		len(t.Lights) + len(t.NPCs) + len(t.Creatures) + len(t.Races) +
		len(t.BodyParts) + len(t.Weapons) + len(t.Armors) + len(t.Clothing) +
		len(t.LandTextures) + len(t.Cells) + len(t.Lands)
}
