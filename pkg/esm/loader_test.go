package esm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/esm/esmtest"
)

func mustLoad(t *testing.T, data []byte) *Tables {
	t.Helper()
	tables, err := Load(data, "test.esp", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return tables
}

func TestLoad_Header(t *testing.T) {
	data := esmtest.NewFile("Bethesda", "Morrowind.esm", "Tribunal.esm").Bytes()
	tables := mustLoad(t, data)

	if tables.Header.Author != "Bethesda" {
		t.Errorf("expected author Bethesda, got %q", tables.Header.Author)
	}
	if tables.Header.Version < 1.29 || tables.Header.Version > 1.31 {
		t.Errorf("expected version 1.3, got %f", tables.Header.Version)
	}
	if len(tables.Header.Masters) != 2 || tables.Header.Masters[1].Name != "Tribunal.esm" {
		t.Errorf("unexpected masters: %+v", tables.Header.Masters)
	}
	if tables.Count() != 0 {
		t.Errorf("header-only file should have no entries, got %d", tables.Count())
	}
}

func TestLoad_ObjectKinds(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("Ex_Rock_01", "x\\rock.nif")...).
		Record("DOOR", 0,
			esmtest.Str("NAME", "door_a"),
			esmtest.Str("MODL", "d\\door.nif"),
			esmtest.Str("FNAM", "Door"),
			esmtest.Str("SNAM", "Door Open"),
			esmtest.Str("ANAM", "Door Close")).
		Record("LIGH", 0,
			esmtest.Str("NAME", "torch"),
			esmtest.Str("MODL", "l\\torch.nif"),
			esmtest.Raw("LHDT", float32(2), int32(5), int32(600), uint32(256), [4]uint8{255, 200, 100, 0}, uint32(0x2))).
		Record("CONT", 0,
			esmtest.Str("NAME", "chest"),
			esmtest.Str("MODL", "c\\chest.nif"),
			esmtest.Raw("CNDT", float32(50)),
			esmtest.Raw("NPCO", int32(3), esmtest.Fixed("gold_001", 32))).
		Record("NPC_", 0,
			esmtest.Str("NAME", "fargoth"),
			esmtest.Str("RNAM", "Wood Elf"),
			esmtest.Str("BNAM", "b_n_wood elf_m_head_01"),
			esmtest.Raw("NPDT", int16(12), make([]byte, 10))).
		Record("CREA", 0,
			esmtest.Str("NAME", "mudcrab"),
			esmtest.Str("MODL", "r\\mudcrab.nif"),
			esmtest.Raw("NPDT", uint32(0), uint32(3)),
			esmtest.Raw("XSCL", float32(1.5))).
		Record("ARMO", 0,
			esmtest.Str("NAME", "iron_cuirass"),
			esmtest.Raw("INDX", uint8(1)),
			esmtest.Str("BNAM", "a_iron_chest"),
			esmtest.Raw("INDX", uint8(2)),
			esmtest.Str("CNAM", "a_iron_arm_f")).
		Record("LTEX", 0,
			esmtest.Str("NAME", "grass"),
			esmtest.Raw("INTV", uint32(4)),
			esmtest.Str("DATA", "tx_grass.tga")).
		Bytes()

	tables := mustLoad(t, data)
	if tables.Recovered != 0 {
		t.Fatalf("expected no recovered records, got %d", tables.Recovered)
	}

	st, ok := tables.Statics["ex_rock_01"]
	if !ok {
		t.Fatal("static should be keyed by folded id")
	}
	if st.ID != "Ex_Rock_01" || st.Model != "x\\rock.nif" {
		t.Errorf("unexpected static: %+v", st)
	}

	door := tables.Doors["door_a"]
	if door == nil || door.OpenSound != "Door Open" || door.CloseSound != "Door Close" {
		t.Errorf("unexpected door: %+v", door)
	}

	light := tables.Lights["torch"]
	if light == nil {
		t.Fatal("light missing")
	}
	if light.Radius != 256 || light.Time != 600 || light.Color != [4]uint8{255, 200, 100, 0} || light.Flags != 0x2 {
		t.Errorf("unexpected light: %+v", light)
	}

	chest := tables.Containers["chest"]
	if chest == nil || len(chest.Items) != 1 || chest.Items[0].ID != "gold_001" || chest.Items[0].Count != 3 {
		t.Errorf("unexpected container: %+v", chest)
	}

	npc := tables.NPCs["fargoth"]
	if npc == nil || npc.Level != 12 || npc.Race != "Wood Elf" {
		t.Errorf("unexpected npc: %+v", npc)
	}

	crab := tables.Creatures["mudcrab"]
	if crab == nil || crab.Level != 3 || crab.Scale != 1.5 {
		t.Errorf("unexpected creature: %+v", crab)
	}

	armor := tables.Armors["iron_cuirass"]
	if armor == nil || len(armor.Parts) != 2 {
		t.Fatalf("unexpected armor: %+v", armor)
	}
	if armor.Parts[0].Male != "a_iron_chest" || armor.Parts[0].Female != "" {
		t.Errorf("unexpected first part: %+v", armor.Parts[0])
	}
	if armor.Parts[1].Part != 2 || armor.Parts[1].Female != "a_iron_arm_f" {
		t.Errorf("unexpected second part: %+v", armor.Parts[1])
	}

	lt := tables.LandTextures["grass"]
	if lt == nil || lt.Index != 4 || lt.Texture != "tx_grass.tga" {
		t.Errorf("unexpected land texture: %+v", lt)
	}
}

func TestLoad_UnknownRecordsAreSkipped(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("GMST", 0, esmtest.Str("NAME", "sWerewolfPopup")).
		Record("STAT", 0, esmtest.Static("a", "a.nif")...).
		Record("DIAL", 0, esmtest.Str("NAME", "greeting")).
		Bytes()

	tables := mustLoad(t, data)
	if tables.Skipped != 2 {
		t.Errorf("expected 2 skipped records, got %d", tables.Skipped)
	}
	if len(tables.Statics) != 1 {
		t.Errorf("expected 1 static, got %d", len(tables.Statics))
	}
}

func TestLoad_MalformedRecordRecovers(t *testing.T) {
	// A NAME subrecord whose declared size runs past its record.
	var body bytes.Buffer
	body.WriteString("NAME")
	binary.Write(&body, binary.LittleEndian, uint32(100))
	body.WriteString("a\x00")

	tests := []struct {
		name string
		file *esmtest.File
	}{
		{
			name: "subrecord overruns record",
			file: esmtest.NewFile("tester").
				RawRecord("STAT", uint32(body.Len()), 0, body.Bytes()),
		},
		{
			name: "short fixed payload",
			file: esmtest.NewFile("tester").
				Record("LIGH", 0, esmtest.Str("NAME", "bad"), esmtest.Raw("LHDT", float32(1))),
		},
		{
			name: "missing identifier",
			file: esmtest.NewFile("tester").
				Record("STAT", 0, esmtest.Str("MODL", "orphan.nif")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.file.
				Record("STAT", 0, esmtest.Static("good", "good.nif")...).
				Bytes()
			tables := mustLoad(t, data)
			if tables.Recovered != 1 {
				t.Errorf("expected 1 recovered record, got %d", tables.Recovered)
			}
			if _, ok := tables.Statics["good"]; !ok {
				t.Error("record after the malformed one should load")
			}
		})
	}
}

func TestLoad_CorruptHeaderIsFatal(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("a", "a.nif")...).
		RawRecord("STAT", 1<<20, 0, []byte("NAME")).
		Bytes()

	tables, err := Load(data, "broken.esp", nil)
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if tables != nil {
		t.Error("no tables should be returned on fatal error")
	}
	if !errors.Is(err, dataerr.ErrFormat) || !errors.Is(err, ErrRecordTooLarge) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_TruncatedTrailingHeader(t *testing.T) {
	data := esmtest.NewFile("tester").Bytes()
	data = append(data, 'S', 'T', 'A', 'T', 0)

	_, err := Load(data, "short.esp", nil)
	if !errors.Is(err, ErrTruncatedRecord) {
		t.Fatalf("expected ErrTruncatedRecord, got %v", err)
	}
}

func TestLoad_DeletedFlag(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", FlagDeleted, esmtest.Str("NAME", "gone")).
		Record("DOOR", 0, esmtest.Str("NAME", "also_gone"), esmtest.Raw("DELE", uint32(0))).
		Bytes()

	tables := mustLoad(t, data)
	if st := tables.Statics["gone"]; st == nil || !st.Deleted {
		t.Errorf("header flag should mark tombstone, got %+v", st)
	}
	if d := tables.Doors["also_gone"]; d == nil || !d.Deleted {
		t.Errorf("DELE should mark tombstone, got %+v", d)
	}
}

func TestLoad_Cell(t *testing.T) {
	var subs []esmtest.Sub
	subs = append(subs, esmtest.InteriorCell("Seyda Neen, Census Office")...)
	subs = append(subs,
		esmtest.Raw("WHGT", float32(-12.5)),
		esmtest.Raw("AMBI", [4]uint8{1, 2, 3, 0}, [4]uint8{4, 5, 6, 0}, [4]uint8{7, 8, 9, 0}, float32(0.75)))
	subs = append(subs, esmtest.Ref(1, "chest", [3]float32{1, 2, 3}, esmtest.Raw("XSCL", float32(2)))...)
	subs = append(subs, esmtest.Ref(2, "barrel", [3]float32{}, esmtest.Raw("DELE", uint32(0)))...)
	subs = append(subs, esmtest.Ref(3, "door_a", [3]float32{},
		esmtest.Raw("DODT", [3]float32{10, 20, 30}, [3]float32{0, 0, 1.5}),
		esmtest.Str("DNAM", "Seyda Neen"),
		esmtest.Raw("FLTV", int32(50)))...)
	subs = append(subs, esmtest.Raw("MVRF", uint32(4)), esmtest.Raw("CNDT", int32(-2), int32(-9)))
	subs = append(subs, esmtest.Ref(4, "fargoth", [3]float32{5, 5, 5})...)

	data := esmtest.NewFile("tester").Record("CELL", 0, subs...).Bytes()
	tables := mustLoad(t, data)

	c, ok := tables.Cells["seyda neen, census office"]
	if !ok {
		t.Fatalf("interior cell should be keyed by folded name, have %v", tables.Cells)
	}
	if !c.Interior() || c.Name != "Seyda Neen, Census Office" || c.ID != c.Name {
		t.Errorf("unexpected cell identity: %+v", c)
	}
	if c.WaterHeight == nil || *c.WaterHeight != -12.5 {
		t.Errorf("unexpected water height: %v", c.WaterHeight)
	}
	if c.Ambient == nil || c.Ambient.Fog != [4]uint8{7, 8, 9, 0} || c.Ambient.FogDensity != 0.75 {
		t.Errorf("unexpected ambient: %+v", c.Ambient)
	}

	if len(c.References) != 2 {
		t.Fatalf("expected 2 live references, got %d", len(c.References))
	}
	chest := c.References[0]
	if chest.RefNum != 1 || chest.BaseID != "chest" || chest.Scale != 2 || chest.Position != [3]float32{1, 2, 3} {
		t.Errorf("unexpected chest ref: %+v", chest)
	}
	door := c.References[1]
	if door.Scale != 1 {
		t.Errorf("scale should default to 1, got %f", door.Scale)
	}
	if door.Teleport == nil || door.Teleport.Cell != "Seyda Neen" || door.Teleport.Position != [3]float32{10, 20, 30} {
		t.Errorf("unexpected teleport: %+v", door.Teleport)
	}
	if door.LockLevel != 50 {
		t.Errorf("expected lock level 50, got %d", door.LockLevel)
	}

	if len(c.DeletedRefs) != 1 || c.DeletedRefs[0] != 2 {
		t.Errorf("expected deleted ref 2, got %v", c.DeletedRefs)
	}

	if len(c.MovedRefs) != 1 {
		t.Fatalf("expected 1 moved ref, got %d", len(c.MovedRefs))
	}
	mv := c.MovedRefs[0]
	if mv.RefNum != 4 || mv.DestGrid == nil || *mv.DestGrid != [2]int32{-2, -9} {
		t.Errorf("unexpected moved ref: %+v", mv)
	}
	if mv.Reference == nil || mv.Reference.BaseID != "fargoth" {
		t.Errorf("placement after MVRF should attach to it: %+v", mv.Reference)
	}
}

func TestLoad_ExteriorCellWithoutReferences(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("CELL", 0, append(esmtest.ExteriorCell("", -3, 7), esmtest.Str("RGNN", "Bitter Coast Region"))...).
		Bytes()
	tables := mustLoad(t, data)

	c, ok := tables.Cells["-3,7"]
	if !ok {
		t.Fatal("exterior cell should be keyed by grid")
	}
	if c.Interior() || c.GridX != -3 || c.GridY != 7 || c.ID != "-3,7" {
		t.Errorf("unexpected cell: %+v", c)
	}
	if c.Region != "Bitter Coast Region" {
		t.Errorf("unexpected region %q", c.Region)
	}
	if len(c.References) != 0 || len(c.MovedRefs) != 0 {
		t.Error("cell should have no references")
	}
}

func TestLoad_Land(t *testing.T) {
	tex := make([]uint16, LandTextureSize*LandTextureSize)
	tex[17] = 5
	data := esmtest.NewFile("tester").
		Record("LAND", 0,
			esmtest.Raw("INTV", int32(2), int32(-1)),
			esmtest.Raw("DATA", uint32(LandHasNormals|LandHasTextures)),
			esmtest.Heights(3, make([]int8, LandSize*LandSize)),
			esmtest.Raw("VTEX", tex)).
		Bytes()
	tables := mustLoad(t, data)

	l, ok := tables.Lands["2,-1"]
	if !ok {
		t.Fatal("land should be keyed by grid")
	}
	if len(l.Heights) != LandSize*LandSize {
		t.Fatalf("expected %d heights, got %d", LandSize*LandSize, len(l.Heights))
	}
	for i, h := range l.Heights {
		if h != 24 {
			t.Fatalf("zero deltas should give a flat plane at offset*8, height[%d] = %f", i, h)
		}
	}
	if l.Textures[17] != 5 {
		t.Errorf("unexpected texture index %d", l.Textures[17])
	}
	if hgt, ok := l.HeightAt(64, 64); !ok || hgt != 24 {
		t.Errorf("HeightAt corner: %f %v", hgt, ok)
	}
	if _, ok := l.HeightAt(65, 0); ok {
		t.Error("HeightAt out of range should fail")
	}
}

func TestLoad_LandWithoutCoordinates(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("LAND", 0, esmtest.Raw("DATA", uint32(0))).
		Bytes()
	tables := mustLoad(t, data)
	if tables.Recovered != 1 || len(tables.Lands) != 0 {
		t.Errorf("land without INTV should be abandoned, recovered=%d", tables.Recovered)
	}
}

func TestDecodeHeights(t *testing.T) {
	deltas := make([]int8, LandSize*LandSize)
	for x := 0; x < LandSize; x++ {
		deltas[x] = 1
	}
	deltas[0] = 2
	deltas[LandSize] = -1 // second row starts one below the first row start

	h := DecodeHeights(1, deltas)
	if h == nil {
		t.Fatal("expected heights")
	}

	tests := []struct {
		x, y int
		want float32
	}{
		{0, 0, 24},   // (1+2)*8
		{1, 0, 32},   // (3+1)*8
		{64, 0, 536}, // (3+64)*8
		{0, 1, 16},   // (3-1)*8
		{5, 1, 16},   // flat rest of row
		{0, 64, 16},  // later rows keep the base
	}
	for _, tt := range tests {
		if got := h[tt.y*LandSize+tt.x]; got != tt.want {
			t.Errorf("height(%d,%d) = %f, want %f", tt.x, tt.y, got, tt.want)
		}
	}

	if DecodeHeights(0, deltas[:100]) != nil {
		t.Error("short deltas should give nil")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.esp")
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("a", "a.nif")...).
		Bytes()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tables.Source != path || len(tables.Statics) != 1 {
		t.Errorf("unexpected tables: source=%q statics=%d", tables.Source, len(tables.Statics))
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.esp"), nil)
	var ioErr *dataerr.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("expected IOError, got %v", err)
	}
}
