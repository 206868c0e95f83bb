package nif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/vvardenfell/pkg/cursor"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
)

func newStream(version uint32, fields ...any) *stream {
	var buf bytes.Buffer
	for _, f := range fields {
		binary.Write(&buf, binary.LittleEndian, f)
	}
	return &stream{Cursor: cursor.New(buf.Bytes()), version: version}
}

func TestStream_BoolWidth(t *testing.T) {
	s := newStream(VersionMorrowind, uint32(1), uint32(0))
	if !s.Bool() || s.Bool() || s.Pos() != 8 {
		t.Errorf("4-byte bools misread, pos %d", s.Pos())
	}

	s = newStream(MakeVersion(4, 1, 0, 12), uint8(1), uint8(0))
	if !s.Bool() || s.Bool() || s.Pos() != 2 {
		t.Errorf("1-byte bools misread, pos %d", s.Pos())
	}
}

func TestStream_CountGuardsAllocation(t *testing.T) {
	s := newStream(VersionMorrowind, uint32(1000), int32(1))
	if refs := s.Refs(); refs != nil {
		t.Errorf("expected no refs, got %d", len(refs))
	}
	if !errors.Is(s.Err(), dataerr.ErrBounds) {
		t.Errorf("expected bounds error, got %v", s.Err())
	}
}

func TestParseSignatureVersion(t *testing.T) {
	tests := []struct {
		sig  string
		want uint32
		ok   bool
	}{
		{"NetImmerse File Format, Version 4.0.0.2", 0x04000002, true},
		{"Gamebryo File Format, Version 4.1.0.12", 0x0401000C, true},
		{"NetImmerse File Format, Version 4.0", 0, false},
		{"NetImmerse File Format, Version 4.0.0.300", 0, false},
		{"NetImmerse File Format", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSignatureVersion(tt.sig)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseSignatureVersion(%q) = %#x, %v; want %#x, %v", tt.sig, got, ok, tt.want, tt.ok)
		}
	}
	if VersionString(0x04000002) != "4.0.0.2" {
		t.Errorf("VersionString = %q", VersionString(0x04000002))
	}
}

func TestReadBoundingVolume(t *testing.T) {
	s := newStream(VersionMorrowind,
		BoundUnion, uint32(2),
		BoundSphere, [3]float32{1, 2, 3}, float32(4),
		BoundHalfSpace, [4]float32{0, 0, 1, 5},
	)
	bv := readBoundingVolume(s, 0)
	if s.Err() != nil {
		t.Fatal(s.Err())
	}
	if bv.Kind != BoundUnion || len(bv.Children) != 2 {
		t.Fatalf("unexpected union: %+v", bv)
	}
	if c := bv.Children[0]; c.Center != [3]float32{1, 2, 3} || c.Radius != 4 {
		t.Errorf("unexpected sphere: %+v", c)
	}
	if c := bv.Children[1]; c.Plane != [4]float32{0, 0, 1, 5} {
		t.Errorf("unexpected half-space: %+v", c)
	}
	if s.Remaining() != 0 {
		t.Errorf("%d bytes left unread", s.Remaining())
	}

	s = newStream(VersionMorrowind, uint32(3))
	readBoundingVolume(s, 0)
	if !errors.Is(s.Err(), ErrInvalidBoundingVolume) {
		t.Errorf("expected ErrInvalidBoundingVolume, got %v", s.Err())
	}
}

func TestReadKeyGroup(t *testing.T) {
	tests := []struct {
		name   string
		fields []any
		morph  bool
		want   KeyGroup[float32]
		err    error
		unread int
	}{
		{
			name:   "empty group has no type",
			fields: []any{uint32(0), uint32(0xdead)},
			want:   KeyGroup[float32]{},
			unread: 4,
		},
		{
			name:   "empty morph group has a type",
			fields: []any{uint32(0), InterpLinear},
			morph:  true,
			want:   KeyGroup[float32]{Interpolation: InterpLinear},
		},
		{
			name:   "linear",
			fields: []any{uint32(2), InterpLinear, float32(0), float32(1), float32(1), float32(2)},
			want: KeyGroup[float32]{Interpolation: InterpLinear, Keys: []Key[float32]{
				{Time: 0, Value: 1}, {Time: 1, Value: 2},
			}},
		},
		{
			name:   "quadratic",
			fields: []any{uint32(1), InterpQuadratic, float32(0.5), float32(1), float32(2), float32(3)},
			want: KeyGroup[float32]{Interpolation: InterpQuadratic, Keys: []Key[float32]{
				{Time: 0.5, Value: 1, Forward: 2, Backward: 3},
			}},
		},
		{
			name:   "tbc",
			fields: []any{uint32(1), InterpTBC, float32(0), float32(7), float32(1), float32(2), float32(3)},
			want: KeyGroup[float32]{Interpolation: InterpTBC, Keys: []Key[float32]{
				{Time: 0, Value: 7, TBC: [3]float32{1, 2, 3}},
			}},
		},
		{
			name:   "unknown interpolation",
			fields: []any{uint32(1), uint32(9), float32(0), float32(0)},
			want:   KeyGroup[float32]{Interpolation: 9},
			err:    ErrInterpolation,
			unread: 8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStream(VersionMorrowind, tt.fields...)
			got := readKeyGroup(s, s.F32, true, tt.morph)
			if !errors.Is(s.Err(), tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, s.Err())
			}
			if got.Interpolation != tt.want.Interpolation || len(got.Keys) != len(tt.want.Keys) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got.Keys {
				if got.Keys[i] != tt.want.Keys[i] {
					t.Errorf("key %d: got %+v, want %+v", i, got.Keys[i], tt.want.Keys[i])
				}
			}
			if s.Remaining() != tt.unread {
				t.Errorf("%d bytes unread, want %d", s.Remaining(), tt.unread)
			}
		})
	}
}

func TestReadKeyframeData_XYZRotation(t *testing.T) {
	s := newStream(VersionMorrowind,
		uint32(1), InterpXYZ,                            // rotations
		float32(0),                                      // unused
		uint32(1), InterpLinear, float32(0), float32(1), // x
		uint32(0),                                       // y
		uint32(0),                                       // z
		uint32(0),                                       // translations
		uint32(1), InterpLinear, float32(0), float32(2), // scales
	)
	d := readKeyframeData(s).(*KeyframeData)
	if s.Err() != nil {
		t.Fatal(s.Err())
	}
	if d.Rotations.Interpolation != InterpXYZ || d.Rotations.Keys != nil {
		t.Errorf("unexpected rotation group: %+v", d.Rotations)
	}
	if len(d.XRotations.Keys) != 1 || d.XRotations.Keys[0].Value != 1 {
		t.Errorf("unexpected x rotations: %+v", d.XRotations)
	}
	if len(d.Scales.Keys) != 1 || d.Scales.Keys[0].Value != 2 {
		t.Errorf("unexpected scales: %+v", d.Scales)
	}
	if s.Remaining() != 0 {
		t.Errorf("%d bytes left unread", s.Remaining())
	}
}
