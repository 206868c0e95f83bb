package nif

// SourceTexture names an external image file or links embedded pixel data.
type SourceTexture struct {
	ObjectNET
	External    bool
	FileName    string // external textures
	PixelData   Ref    // embedded textures
	PixelLayout uint32
	MipMaps     uint32
	AlphaFormat uint32
}

func readSourceTexture(s *stream) Record {
	t := &SourceTexture{PixelData: NoRef}
	readObjectNET(s, &t.ObjectNET)
	t.External = s.U8() != 0
	if t.External {
		t.FileName = s.Str()
	} else {
		s.U8() // always 1
		t.PixelData = s.Ref()
	}
	t.PixelLayout = s.U32()
	t.MipMaps = s.U32()
	t.AlphaFormat = s.U32()
	s.U8() // static flag
	return t
}

// MipMap locates one level inside PixelData.Pixels.
type MipMap struct {
	Width, Height, Offset uint32
}

// PixelData is an embedded image.
type PixelData struct {
	Object
	Format        uint32
	Masks         [4]uint32 // red, green, blue, alpha
	BitsPerPixel  uint32
	Palette       Ref
	BytesPerPixel uint32
	MipMaps       []MipMap
	Pixels        []byte
}

func readPixelData(s *stream) Record {
	p := &PixelData{}
	p.Format = s.U32()
	for i := range p.Masks {
		p.Masks[i] = s.U32()
	}
	p.BitsPerPixel = s.U32()
	s.Skip(8) // fast compare
	p.Palette = s.Ref()
	levels := s.count(s.U32(), 12)
	p.BytesPerPixel = s.U32()
	if levels > 0 {
		p.MipMaps = make([]MipMap, levels)
		for i := range p.MipMaps {
			p.MipMaps[i] = MipMap{Width: s.U32(), Height: s.U32(), Offset: s.U32()}
		}
	}
	if n := s.count(s.U32(), 1); n > 0 {
		p.Pixels = append([]byte(nil), s.Bytes(n)...)
	}
	return p
}

// Palette holds RGBA colors for palettized pixel data.
type Palette struct {
	Object
	Colors []uint32
}

func readPalette(s *stream) Record {
	p := &Palette{}
	var alpha uint32
	if s.U8() == 0 {
		alpha = 0xFF000000 // opaque when the palette carries no alpha
	}
	n := s.count(s.U32(), 4)
	if n > 0 {
		p.Colors = make([]uint32, n)
		for i := range p.Colors {
			p.Colors[i] = s.U32() | alpha
		}
	}
	return p
}
