package encoding

import (
	"bytes"
	"testing"
)

func TestWindows1252ToUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("Seyda Neen"), "Seyda Neen"},
		{"e acute", []byte{'C', 'a', 'f', 0xE9}, "Café"},
		{"euro sign", []byte{0x80}, "€"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Windows1252ToUTF8(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUTF8ToWindows1252_RoundTrip(t *testing.T) {
	for _, s := range []string{"plain", "Café", "€100"} {
		enc := UTF8ToWindows1252(s)
		if got := Windows1252ToUTF8(enc); got != s {
			t.Errorf("round trip of %q gave %q", s, got)
		}
	}
}

func TestFixedStringToUTF8(t *testing.T) {
	field := make([]byte, 32)
	copy(field, []byte{'f', 'o', 'r', 0xEA, 't'})
	if got := FixedStringToUTF8(field); got != "forêt" {
		t.Errorf("expected %q, got %q", "forêt", got)
	}
	if got := TrimNullString([]byte("abc\x00\x00")); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
}

func TestNormalizeArchivePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Meshes/X/Foo.NIF", `meshes\x\foo.nif`},
		{`meshes\x\foo.nif`, `meshes\x\foo.nif`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeArchivePath(tt.in); got != tt.want {
			t.Errorf("NormalizeArchivePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !bytes.Equal([]byte(FoldKey("ImperialGuard")), []byte("imperialguard")) {
		t.Error("FoldKey should lowercase")
	}
}
