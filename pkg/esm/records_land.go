package esm

const (
	landVertexCount = LandSize * LandSize
	landNormalBytes = landVertexCount * 3
	// VHGT: float offset, one signed delta per vertex, 3 bytes of padding.
	landHeightBytes = 4 + landVertexCount + 3
)

func buildLand(r *Reader, t *Tables, h RecordHeader) error {
	l := &Land{Base: Base{Deleted: h.Deleted()}}
	hasCoords := false
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subINTV:
			if !r.RequireSize(8) {
				return r.Err()
			}
			l.X = r.SubI32()
			l.Y = r.SubI32()
			hasCoords = true
		case subDATA:
			l.Flags = r.SubU32()
		case subVNML:
			raw := r.SubBytes(landNormalBytes)
			if raw != nil {
				l.Normals = make([]int8, landNormalBytes)
				for i, b := range raw {
					l.Normals[i] = int8(b)
				}
			}
		case subVHGT:
			if r.SubSize() < landHeightBytes-3 {
				r.RequireSize(landHeightBytes)
				return r.Err()
			}
			offset := r.SubF32()
			raw := r.SubBytes(landVertexCount)
			if raw != nil {
				deltas := make([]int8, landVertexCount)
				for i, b := range raw {
					deltas[i] = int8(b)
				}
				l.Heights = DecodeHeights(offset, deltas)
			}
			// the trailing padding is skipped by the next NextSub
		case subVCLR:
			raw := r.SubBytes(landNormalBytes)
			if raw != nil {
				l.Colors = append([]uint8(nil), raw...)
			}
		case subVTEX:
			tex := make([]uint16, LandTextureSize*LandTextureSize)
			for i := range tex {
				tex[i] = r.SubU16()
			}
			l.Textures = tex
		case subDELE:
			l.Deleted = true
			r.SkipSub()
		default:
			// WNAM (world map preview) and anything newer.
			r.SkipSub()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if !hasCoords {
		return ErrMissingID
	}
	l.ID = ExteriorKey(l.X, l.Y)
	t.Lands[l.ID] = l
	return nil
}

// DecodeHeights expands a delta-encoded height block into absolute heights.
// Each row starts from the running row base plus the row's first delta; the
// remaining deltas of the row accumulate from that value. Every running
// value is multiplied by HeightScale. It returns nil when deltas does not
// cover the full grid.
func DecodeHeights(offset float32, deltas []int8) []float32 {
	if len(deltas) < landVertexCount {
		return nil
	}
	heights := make([]float32, landVertexCount)
	rowBase := offset
	for y := 0; y < LandSize; y++ {
		rowBase += float32(deltas[y*LandSize])
		heights[y*LandSize] = rowBase * HeightScale
		col := rowBase
		for x := 1; x < LandSize; x++ {
			col += float32(deltas[y*LandSize+x])
			heights[y*LandSize+x] = col * HeightScale
		}
	}
	return heights
}
