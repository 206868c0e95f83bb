package esm

func buildStatic(r *Reader, t *Tables, h RecordHeader) error {
	s := &Static{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			s.ID = r.SubString()
		case subMODL:
			s.Model = r.SubString()
		case subDELE:
			s.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Statics, s)
}

func buildDoor(r *Reader, t *Tables, h RecordHeader) error {
	d := &Door{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			d.ID = r.SubString()
		case subMODL:
			d.Model = r.SubString()
		case subFNAM:
			d.Name = r.SubString()
		case subSCRI:
			d.Script = r.SubString()
		case subSNAM:
			d.OpenSound = r.SubString()
		case subANAM:
			d.CloseSound = r.SubString()
		case subDELE:
			d.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Doors, d)
}

func buildActivator(r *Reader, t *Tables, h RecordHeader) error {
	a := &Activator{Base: Base{Deleted: h.Deleted()}}
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
		case subSCRI:
			a.Script = r.SubString()
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
	return put(t.Activators, a)
}

func buildContainer(r *Reader, t *Tables, h RecordHeader) error {
	c := &Container{Base: Base{Deleted: h.Deleted()}}
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
		case subSCRI:
			c.Script = r.SubString()
		case subCNDT:
			c.Weight = r.SubF32()
		case subFLAG:
			c.Flags = r.SubU32()
		case subNPCO:
			c.Items = append(c.Items, readItem(r))
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
	return put(t.Containers, c)
}

func buildLight(r *Reader, t *Tables, h RecordHeader) error {
	l := &Light{Base: Base{Deleted: h.Deleted()}}
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subNAME:
			l.ID = r.SubString()
		case subMODL:
			l.Model = r.SubString()
		case subFNAM:
			l.Name = r.SubString()
		case subITEX:
			l.Icon = r.SubString()
		case subSCRI, subSCPT:
			l.Script = r.SubString()
		case subSNAM:
			l.Sound = r.SubString()
		case subLHDT:
			if !r.RequireSize(24) {
				return r.Err()
			}
			l.Weight = r.SubF32()
			l.Value = r.SubI32()
			l.Time = r.SubI32()
			l.Radius = r.SubU32()
			copy(l.Color[:], r.SubBytes(4))
			l.Flags = r.SubU32()
		case subDELE:
			l.Deleted = true
			r.SkipSub()
		default:
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return put(t.Lights, l)
}
