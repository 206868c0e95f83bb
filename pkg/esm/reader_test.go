package esm

import (
	"errors"
	"testing"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/esm/esmtest"
)

func openTest(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := Open(data, "test.esp")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return r
}

func TestTag_RoundTrip(t *testing.T) {
	if s := MakeTag("NPC_").String(); s != "NPC_" {
		t.Errorf("expected NPC_, got %q", s)
	}
	if TagCELL == TagLAND {
		t.Error("distinct codes must give distinct tags")
	}
}

func TestOpen_InvalidMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("TES")},
		{"wrong tag", []byte("TES4\x00\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.data, "bad.esm")
			if !errors.Is(err, ErrInvalidMagic) {
				t.Errorf("expected ErrInvalidMagic, got %v", err)
			}
			if !errors.Is(err, dataerr.ErrFormat) {
				t.Errorf("expected a FormatError, got %T", err)
			}
		})
	}
}

func TestReader_WalksRecordsAndSubrecords(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("rock_01", "r\\rock.nif")...).
		Bytes()
	r := openTest(t, data)

	h, err := r.NextRecord()
	if err != nil {
		t.Fatalf("NextRecord: %v", err)
	}
	if h.Tag != TagTES3 {
		t.Fatalf("expected TES3, got %s", h.Tag)
	}
	if err := r.SkipRecord(); err != nil {
		t.Fatalf("SkipRecord: %v", err)
	}

	h, err = r.NextRecord()
	if err != nil {
		t.Fatalf("NextRecord: %v", err)
	}
	if h.Tag != TagSTAT {
		t.Fatalf("expected STAT, got %s", h.Tag)
	}
	if h.End != int64(len(data)) {
		t.Errorf("expected record end %d, got %d", len(data), h.End)
	}

	if tag, err := r.NextSub(subNAME); err != nil || tag != subNAME {
		t.Fatalf("expected NAME, got %s (%v)", tag, err)
	}
	if id := r.SubString(); id != "rock_01" {
		t.Errorf("expected rock_01, got %q", id)
	}
	if tag, err := r.NextSub(); err != nil || tag != subMODL {
		t.Fatalf("expected MODL, got %s (%v)", tag, err)
	}
	if m := r.SubString(); m != "r\\rock.nif" {
		t.Errorf("unexpected model %q", m)
	}
	if !r.Consumed() {
		t.Error("record should be fully consumed")
	}
	if r.HasMoreRecords() {
		t.Error("no records should remain")
	}
}

func TestReader_UnexpectedTagIsHeldBack(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("a", "a.nif")...).
		Bytes()
	r := openTest(t, data)
	r.NextRecord()
	r.SkipRecord()
	r.NextRecord()

	if _, err := r.NextSub(subMODL); !errors.Is(err, ErrUnexpectedSub) {
		t.Fatalf("expected ErrUnexpectedSub, got %v", err)
	}
	if r.IsNextSub(subMODL) {
		t.Fatal("IsNextSub(MODL) must be false while NAME is pending")
	}
	tag, err := r.NextSub()
	if err != nil || tag != subNAME {
		t.Fatalf("held back NAME should be re-offered, got %s (%v)", tag, err)
	}
	if r.SubString() != "a" {
		t.Error("payload of held back subrecord must be intact")
	}
	if !r.IsNextSub(subMODL) {
		t.Fatal("IsNextSub(MODL) should consume MODL")
	}
	r.SkipSub()
	if !r.Consumed() {
		t.Error("record should be consumed")
	}
}

func TestReader_NextRecordRequiresConsumption(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("a", "a.nif")...).
		Bytes()
	r := openTest(t, data)
	r.NextRecord()

	if _, err := r.NextRecord(); !errors.Is(err, ErrUnconsumed) {
		t.Fatalf("expected ErrUnconsumed, got %v", err)
	}
}

func TestReader_SkipRecordLandsOnNextRecord(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Static("a", "a.nif")...).
		Record("STAT", 0, esmtest.Static("b", "b.nif")...).
		Bytes()
	r := openTest(t, data)
	r.NextRecord()
	r.SkipRecord()

	first, _ := r.NextRecord()
	r.NextSub()
	r.SubBytes(1) // partial read
	if err := r.SkipRecord(); err != nil {
		t.Fatalf("SkipRecord: %v", err)
	}
	if r.Offset() != first.End {
		t.Fatalf("expected offset %d after skip, got %d", first.End, r.Offset())
	}

	second, err := r.NextRecord()
	if err != nil {
		t.Fatalf("NextRecord after skip: %v", err)
	}
	if second.Offset != first.End {
		t.Errorf("second record should start at %d, got %d", first.End, second.Offset)
	}
	r.NextSub()
	if id := r.SubString(); id != "b" {
		t.Errorf("expected b, got %q", id)
	}
}

func TestReader_RecordTooLargeIsFatal(t *testing.T) {
	data := esmtest.NewFile("tester").
		RawRecord("STAT", 1000, 0, []byte("NAME")).
		Bytes()
	r := openTest(t, data)
	r.NextRecord()
	r.SkipRecord()

	_, err := r.NextRecord()
	if !errors.Is(err, ErrRecordTooLarge) {
		t.Fatalf("expected ErrRecordTooLarge, got %v", err)
	}
	var fe *dataerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %T", err)
	}
	if fe.Tag != "STAT" || fe.Path != "test.esp" {
		t.Errorf("error context missing: %+v", fe)
	}
}

func TestReader_PayloadBounds(t *testing.T) {
	data := esmtest.NewFile("tester").
		Record("STAT", 0, esmtest.Raw("DATA", uint16(7))).
		Bytes()
	r := openTest(t, data)
	r.NextRecord()
	r.SkipRecord()
	r.NextRecord()
	r.NextSub()

	if v := r.SubU32(); v != 0 {
		t.Errorf("expected zero value, got %d", v)
	}
	if !errors.Is(r.Err(), dataerr.ErrBounds) {
		t.Fatalf("expected bounds error, got %v", r.Err())
	}
	if _, err := r.NextSub(); err == nil {
		t.Error("NextSub must report the sticky error")
	}
}
