package esm

import (
	"maps"
	"slices"

	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// Database is the merged view of content files applied in load order.
// Later files override same-key entries; tombstones remove them.
type Database struct {
	Tables
	Files []string

	// LTEX indices are local to the file that defines them.
	landTexIndex []map[uint32]landTexRef
}

type landTexRef struct {
	key string
	lt  *LandTexture
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{Tables: *NewTables("")}
}

// Merge applies one file's tables on top of the database.
func (db *Database) Merge(t *Tables) {
	db.Files = append(db.Files, t.Source)

	// within one file the lowest id wins a shared index
	byIndex := make(map[uint32]landTexRef, len(t.LandTextures))
	for _, key := range slices.Sorted(maps.Keys(t.LandTextures)) {
		lt := t.LandTextures[key]
		if _, dup := byIndex[lt.Index]; !lt.Deleted && !dup {
			byIndex[lt.Index] = landTexRef{key, lt}
		}
	}
	db.landTexIndex = append(db.landTexIndex, byIndex)

	mergeTable(db.Statics, t.Statics)
	mergeTable(db.Doors, t.Doors)
	mergeTable(db.Activators, t.Activators)
	mergeTable(db.Containers, t.Containers)
	mergeTable(db.Lights, t.Lights)
	mergeTable(db.NPCs, t.NPCs)
	mergeTable(db.Creatures, t.Creatures)
	mergeTable(db.Races, t.Races)
	mergeTable(db.BodyParts, t.BodyParts)
	mergeTable(db.Weapons, t.Weapons)
	mergeTable(db.Armors, t.Armors)
	mergeTable(db.Clothing, t.Clothing)
	mergeTable(db.LandTextures, t.LandTextures)
	mergeTable(db.Lands, t.Lands)

	for key, c := range t.Cells {
		if c.Deleted {
			delete(db.Cells, key)
			continue
		}
		db.Cells[key] = mergeCell(db.Cells[key], c)
	}
}

func mergeTable[T interface{ base() *Base }](dst, src map[string]T) {
	for key, v := range src {
		if v.base().Deleted {
			delete(dst, key)
			continue
		}
		dst[key] = v
	}
}

// mergeCell overlays next on prev: cell attributes come from next, references
// are merged by RefNum with next winning and its deleted refs removing prev's.
func mergeCell(prev, next *Cell) *Cell {
	if prev == nil {
		return next
	}
	merged := *next
	removed := make(map[uint32]bool, len(next.DeletedRefs))
	for _, n := range next.DeletedRefs {
		removed[n] = true
	}
	overridden := make(map[uint32]bool, len(next.References))
	for _, ref := range next.References {
		overridden[ref.RefNum] = true
	}

	refs := make([]CellReference, 0, len(prev.References)+len(next.References))
	for _, ref := range prev.References {
		if removed[ref.RefNum] || overridden[ref.RefNum] {
			continue
		}
		refs = append(refs, ref)
	}
	merged.References = append(refs, next.References...)
	merged.DeletedRefs = nil
	merged.MovedRefs = append(append([]MovedReference(nil), prev.MovedRefs...), next.MovedRefs...)
	if merged.WaterHeight == nil {
		merged.WaterHeight = prev.WaterHeight
	}
	if merged.Ambient == nil {
		merged.Ambient = prev.Ambient
	}
	if merged.Region == "" {
		merged.Region = prev.Region
	}
	return &merged
}

// GetModelPath returns the model of any object kind with the given id.
func (db *Database) GetModelPath(id string) (string, bool) {
	key := encoding.FoldKey(id)
	if v, ok := db.Statics[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Doors[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Activators[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Containers[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Lights[key]; ok {
		return v.Model, true
	}
	if v, ok := db.NPCs[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Creatures[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Weapons[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Armors[key]; ok {
		return v.Model, true
	}
	if v, ok := db.Clothing[key]; ok {
		return v.Model, true
	}
	if v, ok := db.BodyParts[key]; ok {
		return v.Model, true
	}
	return "", false
}

// GetCell returns a cell by key: an interior name or "x,y".
func (db *Database) GetCell(key string) (*Cell, bool) {
	c, ok := db.Cells[encoding.FoldKey(key)]
	return c, ok
}

// GetExteriorCell returns the exterior cell at grid (x, y).
func (db *Database) GetExteriorCell(x, y int32) (*Cell, bool) {
	c, ok := db.Cells[ExteriorKey(x, y)]
	return c, ok
}

// GetLand returns the terrain of exterior cell (x, y).
func (db *Database) GetLand(x, y int32) (*Land, bool) {
	l, ok := db.Lands[ExteriorKey(x, y)]
	return l, ok
}

// GetLandTexture returns the land texture with the given terrain index,
// taken from the last loaded file that defines that index.
func (db *Database) GetLandTexture(index uint32) (*LandTexture, bool) {
	for i := len(db.landTexIndex) - 1; i >= 0; i-- {
		if lt, ok := db.landTexture(i, index); ok {
			return lt, true
		}
	}
	return nil, false
}

// GetLandTextureIn returns the land texture that index refers to inside
// file, the load-order name recorded in Files. Terrain texture indices are
// only meaningful in the file whose LAND record uses them.
func (db *Database) GetLandTextureIn(file string, index uint32) (*LandTexture, bool) {
	for i := len(db.Files) - 1; i >= 0; i-- {
		if db.Files[i] == file {
			return db.landTexture(i, index)
		}
	}
	return nil, false
}

// landTexture resolves index in the i-th merged file. An entry that a
// later file deleted or replaced under the same id no longer resolves.
func (db *Database) landTexture(i int, index uint32) (*LandTexture, bool) {
	ref, ok := db.landTexIndex[i][index]
	if !ok || db.LandTextures[ref.key] != ref.lt {
		return nil, false
	}
	return ref.lt, true
}

// GetNPC returns an NPC by id.
func (db *Database) GetNPC(id string) (*NPC, bool) {
	n, ok := db.NPCs[encoding.FoldKey(id)]
	return n, ok
}

// GetCreature returns a creature by id.
func (db *Database) GetCreature(id string) (*Creature, bool) {
	c, ok := db.Creatures[encoding.FoldKey(id)]
	return c, ok
}

// GetRace returns a race by id.
func (db *Database) GetRace(id string) (*Race, bool) {
	r, ok := db.Races[encoding.FoldKey(id)]
	return r, ok
}

// GetBodyPart returns a body part by id.
func (db *Database) GetBodyPart(id string) (*BodyPart, bool) {
	b, ok := db.BodyParts[encoding.FoldKey(id)]
	return b, ok
}
