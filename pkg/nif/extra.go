package nif

// Extra is the base of extra data records, which form a linked list
// hanging off an object's Extra reference.
type Extra struct {
	Object
	Next Ref
	Size uint32
}

func readExtra(s *stream, e *Extra) {
	e.Next = s.Ref()
	e.Size = s.U32()
}

// StringExtraData carries a string. Morrowind uses it for markers such as
// "NCO" (no collision) and "MRK" (editor marker).
type StringExtraData struct {
	Extra
	Value string
}

func readStringExtraData(s *stream) Record {
	e := &StringExtraData{}
	readExtra(s, &e.Extra)
	e.Value = s.Str()
	return e
}

// TextKey labels a point in an animation.
type TextKey struct {
	Time float32
	Text string
}

// TextKeyExtraData lists animation labels.
type TextKeyExtraData struct {
	Extra
	Keys []TextKey
}

func readTextKeyExtraData(s *stream) Record {
	e := &TextKeyExtraData{}
	readExtra(s, &e.Extra)
	n := s.count(s.U32(), 8)
	for i := 0; i < n && s.Err() == nil; i++ {
		e.Keys = append(e.Keys, TextKey{Time: s.F32(), Text: s.Str()})
	}
	return e
}

// RawExtraData is any other *ExtraData record; its payload is kept
// unparsed.
type RawExtraData struct {
	Extra
	Data []byte
}

func readRawExtraData(s *stream) Record {
	e := &RawExtraData{}
	readExtra(s, &e.Extra)
	if n := s.count(e.Size, 1); n > 0 {
		e.Data = append([]byte(nil), s.Bytes(n)...)
	}
	return e
}

// SequenceStreamHelper is the root of a keyframe (.kf) file.
type SequenceStreamHelper struct {
	ObjectNET
}

func readSequenceStreamHelper(s *stream) Record {
	h := &SequenceStreamHelper{}
	readObjectNET(s, &h.ObjectNET)
	return h
}
