package esm

func buildWeapon(r *Reader, t *Tables, h RecordHeader) error {
	w := &Weapon{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			w.ID = r.SubString()
		case subMODL:
			w.Model = r.SubString()
		case subFNAM:
			w.Name = r.SubString()
		case subITEX:
			w.Icon = r.SubString()
		case subENAM:
			w.Enchant = r.SubString()
		case subSCRI:
			w.Script = r.SubString()
		case subWPDT:
			if !r.RequireSize(32) {
				return r.Err()
			}
			w.Weight = r.SubF32()
			w.Value = r.SubI32()
			w.Type = r.SubI16()
			w.Health = r.SubU16()
			w.Speed = r.SubF32()
			w.Reach = r.SubF32()
			w.EnchantPts = r.SubU16()
			w.Chop = [2]uint8{r.SubU8(), r.SubU8()}
			w.Slash = [2]uint8{r.SubU8(), r.SubU8()}
			w.Thrust = [2]uint8{r.SubU8(), r.SubU8()}
			w.Flags = r.SubU32()
		case subDELE:
			w.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Weapons, w)
}

func buildArmor(r *Reader, t *Tables, h RecordHeader) error {
	a := &Armor{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			a.ID = r.SubString()
		case subMODL:
			a.Model = r.SubString()
		case subFNAM:
			a.Name = r.SubString()
		case subITEX:
			a.Icon = r.SubString()
		case subENAM:
			a.Enchant = r.SubString()
		case subSCRI:
			a.Script = r.SubString()
		case subAODT:
			if !r.RequireSize(24) {
				return r.Err()
			}
			a.Type = r.SubI32()
			a.Weight = r.SubF32()
			a.Value = r.SubI32()
			a.Health = r.SubI32()
			a.EnchantPts = r.SubI32()
			a.Rating = r.SubI32()
		case subINDX:
			a.Parts = append(a.Parts, readPart(r))
		case subDELE:
			a.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Armors, a)
}

func buildClothing(r *Reader, t *Tables, h RecordHeader) error {
	c := &Clothing{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			c.ID = r.SubString()
		case subMODL:
			c.Model = r.SubString()
		case subFNAM:
			c.Name = r.SubString()
		case subITEX:
			c.Icon = r.SubString()
		case subENAM:
			c.Enchant = r.SubString()
		case subSCRI:
			c.Script = r.SubString()
		case subCTDT:
			if !r.RequireSize(12) {
				return r.Err()
			}
			c.Type = r.SubI32()
			c.Weight = r.SubF32()
			c.Value = r.SubU16()
			c.EnchantPts = r.SubU16()
		case subINDX:
			c.Parts = append(c.Parts, readPart(r))
		case subDELE:
			c.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Clothing, c)
}

func buildLandTexture(r *Reader, t *Tables, h RecordHeader) error {
	lt := &LandTexture{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			lt.ID = r.SubString()
		case subINTV:
			lt.Index = r.SubU32()
		case subDATA:
			lt.Texture = r.SubString()
		case subDELE:
			lt.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.LandTextures, lt)
}
