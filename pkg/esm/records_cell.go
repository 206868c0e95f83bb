package esm

// buildCell reads the cell identity block, then the run of references.
// Each reference starts at FRMR; the next FRMR or MVRF ends it and is held
// back for the outer loop.
func buildCell(r *Reader, t *Tables, h RecordHeader) error {
	c := &Cell{Base: Base{Deleted: h.Deleted()}}

identity:
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			c.Name = r.SubString()
		case subDATA:
			if !r.RequireSize(12) {
				return r.Err()
			}
			c.Flags = r.SubU32()
			c.GridX = r.SubI32()
			c.GridY = r.SubI32()
		case subRGNN:
			c.Region = r.SubString()
		case subNAM5:
			c.MapColor = r.SubU32()
		case subWHGT:
			wh := r.SubF32()
			c.WaterHeight = &wh
		case subINTV:
			// Older files store the water height as an integer.
			wh := float32(r.SubI32())
			c.WaterHeight = &wh
		case subAMBI:
			if !r.RequireSize(16) {
				return r.Err()
			}
			a := &Ambient{}
			copy(a.Ambient[:], r.SubBytes(4))
			copy(a.Sunlight[:], r.SubBytes(4))
			copy(a.Fog[:], r.SubBytes(4))
			a.FogDensity = r.SubF32()
			c.Ambient = a
		case subDELE:
			c.Deleted = true
			r.SkipSub()
		case subFRMR, subMVRF:
			r.PutBack()
			break identity
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	var moved *MovedReference
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subFRMR:
			ref := readReference(r)
			if r.Err() != nil {
				return r.Err()
			}
			switch {
			case moved != nil && moved.RefNum == ref.RefNum:
				moved.Reference = &ref
			case ref.Deleted:
				c.DeletedRefs = append(c.DeletedRefs, ref.RefNum)
			default:
				c.References = append(c.References, ref)
			}
			moved = nil
		case subMVRF:
			m := MovedReference{RefNum: r.SubU32()}
			if r.IsNextSub(subCNAM) {
				m.DestCell = r.SubString()
			}
			if r.IsNextSub(subCNDT) {
				m.DestGrid = &[2]int32{r.SubI32(), r.SubI32()}
			}
			c.MovedRefs = append(c.MovedRefs, m)
			moved = &c.MovedRefs[len(c.MovedRefs)-1]
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	c.Key = CellKey(c.Name, c.Flags, c.GridX, c.GridY)
	c.ID = c.Name
	if c.ID == "" {
		c.ID = c.Key
	}
	t.Cells[c.Key] = c
	return nil
}

// readReference reads one placed reference after its FRMR tag.
func readReference(r *Reader) CellReference {
	ref := CellReference{RefNum: r.SubU32(), Scale: 1}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return ref
		}
		switch tag {
		case subFRMR, subMVRF:
			r.PutBack()
			return ref
		case subNAME:
			ref.BaseID = r.SubString()
		case subUNAM:
			ref.Blocked = r.SubU8() != 0
		case subXSCL:
			ref.Scale = r.SubF32()
		case subANAM:
			ref.Owner = r.SubString()
		case subBNAM:
			ref.Global = r.SubString()
		case subCNAM:
			ref.Faction = r.SubString()
		case subINDX:
			ref.Rank = r.SubI32()
		case subXSOL:
			ref.Soul = r.SubString()
		case subXCHG:
			ref.Charge = r.SubF32()
		case subINTV:
			ref.Health = r.SubI32()
		case subNAM9:
			ref.Count = r.SubI32()
		case subDODT:
			if ref.Teleport == nil {
				ref.Teleport = &Teleport{}
			}
			ref.Teleport.Position = r.SubVec3()
			ref.Teleport.Rotation = r.SubVec3()
		case subDNAM:
			if ref.Teleport == nil {
				ref.Teleport = &Teleport{}
			}
			ref.Teleport.Cell = r.SubString()
		case subFLTV:
			ref.LockLevel = r.SubI32()
		case subKNAM:
			ref.Key = r.SubString()
		case subTNAM:
			ref.Trap = r.SubString()
		case subDELE:
			ref.Deleted = true
			r.SkipSub()
		case subDATA:
			ref.Position = r.SubVec3()
			ref.Rotation = r.SubVec3()
		default:
			r.SkipSub()
		}
	}
	return ref
}
