package esm

func buildNPC(r *Reader, t *Tables, h RecordHeader) error {
	n := &NPC{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			n.ID = r.SubString()
		case subMODL:
			n.Model = r.SubString()
		case subFNAM:
			n.Name = r.SubString()
		case subRNAM:
			n.Race = r.SubString()
		case subCNAM:
			n.Class = r.SubString()
		case subANAM:
			n.Faction = r.SubString()
		case subBNAM:
			n.Head = r.SubString()
		case subKNAM:
			n.Hair = r.SubString()
		case subSCRI:
			n.Script = r.SubString()
		case subNPDT:
			// 52 bytes in full form, 12 when stats are auto-calculated;
			// both start with the level.
			n.Level = r.SubI16()
		case subFLAG:
			n.Flags = r.SubU32()
		case subNPCO:
			n.Items = append(n.Items, readItem(r))
		case subNPCS:
			n.Spells = append(n.Spells, r.SubFixedString(32))
		case subDELE:
			n.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.NPCs, n)
}

func buildCreature(r *Reader, t *Tables, h RecordHeader) error {
	c := &Creature{Base: Base{Deleted: h.Deleted()}, Scale: 1}
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
		case subCNAM:
			c.SoundGen = r.SubString()
		case subSCRI:
			c.Script = r.SubString()
		case subNPDT:
			c.Type = r.SubU32()
			c.Level = r.SubU32()
		case subFLAG:
			c.Flags = r.SubU32()
		case subXSCL:
			c.Scale = r.SubF32()
		case subNPCO:
			c.Items = append(c.Items, readItem(r))
		case subNPCS:
			c.Spells = append(c.Spells, r.SubFixedString(32))
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
	return put(t.Creatures, c)
}

func buildRace(r *Reader, t *Tables, h RecordHeader) error {
	rc := &Race{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			rc.ID = r.SubString()
		case subFNAM:
			rc.Name = r.SubString()
		case subRADT:
			if !r.RequireSize(140) {
				return r.Err()
			}
			// 7 skill bonuses and 8 male/female attribute pairs precede the body data.
			r.SubBytes(7*8 + 8*8)
			rc.Height = [2]float32{r.SubF32(), r.SubF32()}
			rc.Weight = [2]float32{r.SubF32(), r.SubF32()}
			rc.Flags = r.SubU32()
		case subNPCS:
			rc.Spells = append(rc.Spells, r.SubFixedString(32))
		case subDESC:
			rc.Description = r.SubString()
		case subDELE:
			rc.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Races, rc)
}

func buildBodyPart(r *Reader, t *Tables, h RecordHeader) error {
	b := &BodyPart{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			b.ID = r.SubString()
		case subMODL:
			b.Model = r.SubString()
		case subFNAM:
			b.Race = r.SubString()
		case subBYDT:
			if !r.RequireSize(4) {
				return r.Err()
			}
			b.Part = r.SubU8()
			b.Vampire = r.SubU8()
			b.Flags = r.SubU8()
			b.Type = r.SubU8()
		case subDELE:
			b.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.BodyParts, b)
}
