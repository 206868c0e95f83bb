package snapshot

import (
	"maps"
	"slices"

	"github.com/Faultbox/vvardenfell/pkg/esm"
)

// tableCount is the number of entry tables in a snapshot. Their order on
// disk is fixed; see counts.
const tableCount = 15

// counts returns per-table entry counts in on-disk order.
func counts(t *esm.Tables) [tableCount]uint32 {
	return [tableCount]uint32{
		uint32(len(t.Statics)),
		uint32(len(t.Doors)),
		uint32(len(t.Activators)),
		uint32(len(t.Containers)),
		uint32(len(t.Lights)),
		uint32(len(t.NPCs)),
		uint32(len(t.Creatures)),
		uint32(len(t.Races)),
		uint32(len(t.BodyParts)),
		uint32(len(t.Weapons)),
		uint32(len(t.Armors)),
		uint32(len(t.Clothing)),
		uint32(len(t.Cells)),
		uint32(len(t.Lands)),
		uint32(len(t.LandTextures)),
	}
}

func encodeTables(e *encoder, t *esm.Tables) {
	e.str(t.Source)
	e.u32(uint32(t.Skipped))
	e.u32(uint32(t.Recovered))
	encodeHeader(e, &t.Header)

	writeTable(e, t.Statics, encodeStatic)
	writeTable(e, t.Doors, encodeDoor)
	writeTable(e, t.Activators, encodeActivator)
	writeTable(e, t.Containers, encodeContainer)
	writeTable(e, t.Lights, encodeLight)
	writeTable(e, t.NPCs, encodeNPC)
	writeTable(e, t.Creatures, encodeCreature)
	writeTable(e, t.Races, encodeRace)
	writeTable(e, t.BodyParts, encodeBodyPart)
	writeTable(e, t.Weapons, encodeWeapon)
	writeTable(e, t.Armors, encodeArmor)
	writeTable(e, t.Clothing, encodeClothing)
	writeTable(e, t.Cells, encodeCell)
	writeTable(e, t.Lands, encodeLand)
	writeTable(e, t.LandTextures, encodeLandTexture)
}

func decodeTables(d *decoder, n [tableCount]uint32) *esm.Tables {
	t := esm.NewTables(d.str())
	t.Skipped = int(d.u32())
	t.Recovered = int(d.u32())
	decodeHeader(d, &t.Header)

	readTable(d, n[0], t.Statics, decodeStatic)
	readTable(d, n[1], t.Doors, decodeDoor)
	readTable(d, n[2], t.Activators, decodeActivator)
	readTable(d, n[3], t.Containers, decodeContainer)
	readTable(d, n[4], t.Lights, decodeLight)
	readTable(d, n[5], t.NPCs, decodeNPC)
	readTable(d, n[6], t.Creatures, decodeCreature)
	readTable(d, n[7], t.Races, decodeRace)
	readTable(d, n[8], t.BodyParts, decodeBodyPart)
	readTable(d, n[9], t.Weapons, decodeWeapon)
	readTable(d, n[10], t.Armors, decodeArmor)
	readTable(d, n[11], t.Clothing, decodeClothing)
	readTable(d, n[12], t.Cells, decodeCell)
	readTable(d, n[13], t.Lands, decodeLand)
	readTable(d, n[14], t.LandTextures, decodeLandTexture)
	return t
}

// writeTable writes entries in sorted key order so output is deterministic.
func writeTable[T any](e *encoder, m map[string]*T, fn func(*encoder, *T)) {
	for _, key := range slices.Sorted(maps.Keys(m)) {
		e.str(key)
		fn(e, m[key])
	}
}

func readTable[T any](d *decoder, n uint32, m map[string]*T, fn func(*decoder) *T) {
	for i := uint32(0); i < n && d.err == nil; i++ {
		key := d.str()
		m[key] = fn(d)
	}
}

func encodeBase(e *encoder, b *esm.Base) {
	e.str(b.ID)
	e.bool(b.Deleted)
}

func decodeBase(d *decoder) esm.Base {
	return esm.Base{ID: d.str(), Deleted: d.bool()}
}

func encodeHeader(e *encoder, h *esm.Header) {
	e.f32(h.Version)
	e.u32(h.Flags)
	e.str(h.Author)
	e.str(h.Description)
	e.u32(h.NumRecords)
	e.u32(uint32(len(h.Masters)))
	for _, m := range h.Masters {
		e.str(m.Name)
		e.u64(m.Size)
	}
}

func decodeHeader(d *decoder, h *esm.Header) {
	h.Version = d.f32()
	h.Flags = d.u32()
	h.Author = d.str()
	h.Description = d.str()
	h.NumRecords = d.u32()
	if n := d.length(); n > 0 {
		h.Masters = make([]esm.Master, n)
		for i := range h.Masters {
			h.Masters[i] = esm.Master{Name: d.str(), Size: d.u64()}
		}
	}
}

func encodeItems(e *encoder, items []esm.InventoryItem) {
	e.u32(uint32(len(items)))
	for _, it := range items {
		e.i32(it.Count)
		e.str(it.ID)
	}
}

func decodeItems(d *decoder) []esm.InventoryItem {
	n := d.length()
	if n == 0 {
		return nil
	}
	items := make([]esm.InventoryItem, n)
	for i := range items {
		items[i] = esm.InventoryItem{Count: d.i32(), ID: d.str()}
	}
	return items
}

func encodeParts(e *encoder, parts []esm.PartReference) {
	e.u32(uint32(len(parts)))
	for _, p := range parts {
		e.u8(p.Part)
		e.str(p.Male)
		e.str(p.Female)
	}
}

func decodeParts(d *decoder) []esm.PartReference {
	n := d.length()
	if n == 0 {
		return nil
	}
	parts := make([]esm.PartReference, n)
	for i := range parts {
		parts[i] = esm.PartReference{Part: d.u8(), Male: d.str(), Female: d.str()}
	}
	return parts
}

func encodeStatic(e *encoder, s *esm.Static) {
	encodeBase(e, &s.Base)
	e.str(s.Model)
}

func decodeStatic(d *decoder) *esm.Static {
	return &esm.Static{Base: decodeBase(d), Model: d.str()}
}

func encodeDoor(e *encoder, v *esm.Door) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Script)
	e.str(v.OpenSound)
	e.str(v.CloseSound)
}

func decodeDoor(d *decoder) *esm.Door {
	return &esm.Door{
		Base:       decodeBase(d),
		Model:      d.str(),
		Name:       d.str(),
		Script:     d.str(),
		OpenSound:  d.str(),
		CloseSound: d.str(),
	}
}

func encodeActivator(e *encoder, v *esm.Activator) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Script)
}

func decodeActivator(d *decoder) *esm.Activator {
	return &esm.Activator{Base: decodeBase(d), Model: d.str(), Name: d.str(), Script: d.str()}
}

func encodeContainer(e *encoder, v *esm.Container) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Script)
	e.f32(v.Weight)
	e.u32(v.Flags)
	encodeItems(e, v.Items)
}

func decodeContainer(d *decoder) *esm.Container {
	return &esm.Container{
		Base:   decodeBase(d),
		Model:  d.str(),
		Name:   d.str(),
		Script: d.str(),
		Weight: d.f32(),
		Flags:  d.u32(),
		Items:  decodeItems(d),
	}
}

func encodeLight(e *encoder, v *esm.Light) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Icon)
	e.str(v.Script)
	e.str(v.Sound)
	e.f32(v.Weight)
	e.i32(v.Value)
	e.i32(v.Time)
	e.u32(v.Radius)
	e.write(v.Color[:])
	e.u32(v.Flags)
}

func decodeLight(d *decoder) *esm.Light {
	v := &esm.Light{
		Base:   decodeBase(d),
		Model:  d.str(),
		Name:   d.str(),
		Icon:   d.str(),
		Script: d.str(),
		Sound:  d.str(),
		Weight: d.f32(),
		Value:  d.i32(),
		Time:   d.i32(),
		Radius: d.u32(),
	}
	copy(v.Color[:], d.raw(4))
	v.Flags = d.u32()
	return v
}

func encodeNPC(e *encoder, v *esm.NPC) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Race)
	e.str(v.Class)
	e.str(v.Faction)
	e.str(v.Head)
	e.str(v.Hair)
	e.str(v.Script)
	e.u16(uint16(v.Level))
	e.u32(v.Flags)
	encodeItems(e, v.Items)
	e.strs(v.Spells)
}

func decodeNPC(d *decoder) *esm.NPC {
	return &esm.NPC{
		Base:    decodeBase(d),
		Model:   d.str(),
		Name:    d.str(),
		Race:    d.str(),
		Class:   d.str(),
		Faction: d.str(),
		Head:    d.str(),
		Hair:    d.str(),
		Script:  d.str(),
		Level:   int16(d.u16()),
		Flags:   d.u32(),
		Items:   decodeItems(d),
		Spells:  d.strs(),
	}
}

func encodeCreature(e *encoder, v *esm.Creature) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.SoundGen)
	e.str(v.Script)
	e.u32(v.Type)
	e.u32(v.Level)
	e.u32(v.Flags)
	e.f32(v.Scale)
	encodeItems(e, v.Items)
	e.strs(v.Spells)
}

func decodeCreature(d *decoder) *esm.Creature {
	return &esm.Creature{
		Base:     decodeBase(d),
		Model:    d.str(),
		Name:     d.str(),
		SoundGen: d.str(),
		Script:   d.str(),
		Type:     d.u32(),
		Level:    d.u32(),
		Flags:    d.u32(),
		Scale:    d.f32(),
		Items:    decodeItems(d),
		Spells:   d.strs(),
	}
}

func encodeRace(e *encoder, v *esm.Race) {
	encodeBase(e, &v.Base)
	e.str(v.Name)
	e.str(v.Description)
	e.f32(v.Height[0])
	e.f32(v.Height[1])
	e.f32(v.Weight[0])
	e.f32(v.Weight[1])
	e.u32(v.Flags)
	e.strs(v.Spells)
}

func decodeRace(d *decoder) *esm.Race {
	return &esm.Race{
		Base:        decodeBase(d),
		Name:        d.str(),
		Description: d.str(),
		Height:      [2]float32{d.f32(), d.f32()},
		Weight:      [2]float32{d.f32(), d.f32()},
		Flags:       d.u32(),
		Spells:      d.strs(),
	}
}

func encodeBodyPart(e *encoder, v *esm.BodyPart) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Race)
	e.write([]byte{v.Part, v.Vampire, v.Flags, v.Type})
}

func decodeBodyPart(d *decoder) *esm.BodyPart {
	return &esm.BodyPart{
		Base:    decodeBase(d),
		Model:   d.str(),
		Race:    d.str(),
		Part:    d.u8(),
		Vampire: d.u8(),
		Flags:   d.u8(),
		Type:    d.u8(),
	}
}

func encodeWeapon(e *encoder, v *esm.Weapon) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Icon)
	e.str(v.Enchant)
	e.str(v.Script)
	e.f32(v.Weight)
	e.i32(v.Value)
	e.u16(uint16(v.Type))
	e.u16(v.Health)
	e.f32(v.Speed)
	e.f32(v.Reach)
	e.u16(v.EnchantPts)
	e.write([]byte{v.Chop[0], v.Chop[1], v.Slash[0], v.Slash[1], v.Thrust[0], v.Thrust[1]})
	e.u32(v.Flags)
}

func decodeWeapon(d *decoder) *esm.Weapon {
	return &esm.Weapon{
		Base:       decodeBase(d),
		Model:      d.str(),
		Name:       d.str(),
		Icon:       d.str(),
		Enchant:    d.str(),
		Script:     d.str(),
		Weight:     d.f32(),
		Value:      d.i32(),
		Type:       int16(d.u16()),
		Health:     d.u16(),
		Speed:      d.f32(),
		Reach:      d.f32(),
		EnchantPts: d.u16(),
		Chop:       [2]uint8{d.u8(), d.u8()},
		Slash:      [2]uint8{d.u8(), d.u8()},
		Thrust:     [2]uint8{d.u8(), d.u8()},
		Flags:      d.u32(),
	}
}

func encodeArmor(e *encoder, v *esm.Armor) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Icon)
	e.str(v.Enchant)
	e.str(v.Script)
	e.i32(v.Type)
	e.f32(v.Weight)
	e.i32(v.Value)
	e.i32(v.Health)
	e.i32(v.EnchantPts)
	e.i32(v.Rating)
	encodeParts(e, v.Parts)
}

func decodeArmor(d *decoder) *esm.Armor {
	return &esm.Armor{
		Base:       decodeBase(d),
		Model:      d.str(),
		Name:       d.str(),
		Icon:       d.str(),
		Enchant:    d.str(),
		Script:     d.str(),
		Type:       d.i32(),
		Weight:     d.f32(),
		Value:      d.i32(),
		Health:     d.i32(),
		EnchantPts: d.i32(),
		Rating:     d.i32(),
		Parts:      decodeParts(d),
	}
}

func encodeClothing(e *encoder, v *esm.Clothing) {
	encodeBase(e, &v.Base)
	e.str(v.Model)
	e.str(v.Name)
	e.str(v.Icon)
	e.str(v.Enchant)
	e.str(v.Script)
	e.i32(v.Type)
	e.f32(v.Weight)
	e.u16(v.Value)
	e.u16(v.EnchantPts)
	encodeParts(e, v.Parts)
}

func decodeClothing(d *decoder) *esm.Clothing {
	return &esm.Clothing{
		Base:       decodeBase(d),
		Model:      d.str(),
		Name:       d.str(),
		Icon:       d.str(),
		Enchant:    d.str(),
		Script:     d.str(),
		Type:       d.i32(),
		Weight:     d.f32(),
		Value:      d.u16(),
		EnchantPts: d.u16(),
		Parts:      decodeParts(d),
	}
}

func encodeLandTexture(e *encoder, v *esm.LandTexture) {
	encodeBase(e, &v.Base)
	e.u32(v.Index)
	e.str(v.Texture)
}

func decodeLandTexture(d *decoder) *esm.LandTexture {
	return &esm.LandTexture{Base: decodeBase(d), Index: d.u32(), Texture: d.str()}
}

func encodeReference(e *encoder, r *esm.CellReference) {
	e.u32(r.RefNum)
	e.str(r.BaseID)
	e.bool(r.Deleted)
	e.vec3(r.Position)
	e.vec3(r.Rotation)
	e.f32(r.Scale)
	e.str(r.Owner)
	e.str(r.Global)
	e.str(r.Faction)
	e.i32(r.Rank)
	e.str(r.Soul)
	e.f32(r.Charge)
	e.i32(r.Health)
	e.i32(r.Count)
	e.bool(r.Blocked)
	e.i32(r.LockLevel)
	e.str(r.Key)
	e.str(r.Trap)
	e.bool(r.Teleport != nil)
	if r.Teleport != nil {
		e.vec3(r.Teleport.Position)
		e.vec3(r.Teleport.Rotation)
		e.str(r.Teleport.Cell)
	}
}

func decodeReference(d *decoder) esm.CellReference {
	r := esm.CellReference{
		RefNum:    d.u32(),
		BaseID:    d.str(),
		Deleted:   d.bool(),
		Position:  d.vec3(),
		Rotation:  d.vec3(),
		Scale:     d.f32(),
		Owner:     d.str(),
		Global:    d.str(),
		Faction:   d.str(),
		Rank:      d.i32(),
		Soul:      d.str(),
		Charge:    d.f32(),
		Health:    d.i32(),
		Count:     d.i32(),
		Blocked:   d.bool(),
		LockLevel: d.i32(),
		Key:       d.str(),
		Trap:      d.str(),
	}
	if d.bool() {
		r.Teleport = &esm.Teleport{Position: d.vec3(), Rotation: d.vec3(), Cell: d.str()}
	}
	return r
}

func encodeCell(e *encoder, c *esm.Cell) {
	encodeBase(e, &c.Base)
	e.str(c.Key)
	e.str(c.Name)
	e.u32(c.Flags)
	e.i32(c.GridX)
	e.i32(c.GridY)
	e.str(c.Region)
	e.u32(c.MapColor)

	e.bool(c.WaterHeight != nil)
	if c.WaterHeight != nil {
		e.f32(*c.WaterHeight)
	}
	e.bool(c.Ambient != nil)
	if a := c.Ambient; a != nil {
		e.write(a.Ambient[:])
		e.write(a.Sunlight[:])
		e.write(a.Fog[:])
		e.f32(a.FogDensity)
	}

	e.u32(uint32(len(c.References)))
	for i := range c.References {
		encodeReference(e, &c.References[i])
	}
	e.u32(uint32(len(c.DeletedRefs)))
	for _, n := range c.DeletedRefs {
		e.u32(n)
	}
	e.u32(uint32(len(c.MovedRefs)))
	for _, m := range c.MovedRefs {
		e.u32(m.RefNum)
		e.str(m.DestCell)
		e.bool(m.DestGrid != nil)
		if m.DestGrid != nil {
			e.i32(m.DestGrid[0])
			e.i32(m.DestGrid[1])
		}
		e.bool(m.Reference != nil)
		if m.Reference != nil {
			encodeReference(e, m.Reference)
		}
	}
}

func decodeCell(d *decoder) *esm.Cell {
	c := &esm.Cell{
		Base:     decodeBase(d),
		Key:      d.str(),
		Name:     d.str(),
		Flags:    d.u32(),
		GridX:    d.i32(),
		GridY:    d.i32(),
		Region:   d.str(),
		MapColor: d.u32(),
	}
	if d.bool() {
		wh := d.f32()
		c.WaterHeight = &wh
	}
	if d.bool() {
		a := &esm.Ambient{}
		copy(a.Ambient[:], d.raw(4))
		copy(a.Sunlight[:], d.raw(4))
		copy(a.Fog[:], d.raw(4))
		a.FogDensity = d.f32()
		c.Ambient = a
	}

	if n := d.length(); n > 0 {
		c.References = make([]esm.CellReference, n)
		for i := range c.References {
			c.References[i] = decodeReference(d)
		}
	}
	if n := d.length(); n > 0 {
		c.DeletedRefs = make([]uint32, n)
		for i := range c.DeletedRefs {
			c.DeletedRefs[i] = d.u32()
		}
	}
	if n := d.length(); n > 0 {
		c.MovedRefs = make([]esm.MovedReference, n)
		for i := range c.MovedRefs {
			m := esm.MovedReference{RefNum: d.u32(), DestCell: d.str()}
			if d.bool() {
				m.DestGrid = &[2]int32{d.i32(), d.i32()}
			}
			if d.bool() {
				ref := decodeReference(d)
				m.Reference = &ref
			}
			c.MovedRefs[i] = m
		}
	}
	return c
}

func encodeLand(e *encoder, l *esm.Land) {
	encodeBase(e, &l.Base)
	e.i32(l.X)
	e.i32(l.Y)
	e.u32(l.Flags)
	e.f32s(l.Heights)
	e.i8s(l.Normals)
	e.bytes(l.Colors)
	e.u16s(l.Textures)
}

func decodeLand(d *decoder) *esm.Land {
	return &esm.Land{
		Base:     decodeBase(d),
		X:        d.i32(),
		Y:        d.i32(),
		Flags:    d.u32(),
		Heights:  d.f32s(),
		Normals:  d.i8s(),
		Colors:   d.bytes(),
		Textures: d.u16s(),
	}
}
