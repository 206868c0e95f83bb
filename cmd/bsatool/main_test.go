package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/vvardenfell/pkg/bsa"
	"github.com/Faultbox/vvardenfell/pkg/bsa/bsatest"
)

func TestExtractPattern_StaysInOutputDir(t *testing.T) {
	path := bsatest.WriteFile(t, "evil.bsa",
		bsatest.File{Name: `..\..\escaped.nif`, Data: []byte("bad")},
		bsatest.File{Name: `meshes\ok.nif`, Data: []byte("good")},
	)
	archive, err := bsa.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	root := t.TempDir()
	outputDir := filepath.Join(root, "out", "x")
	if err := extractPattern(archive, "*.nif", outputDir); err == nil {
		t.Error("expected an error for the skipped entry")
	}

	if _, err := os.Stat(filepath.Join(root, "escaped.nif")); !os.IsNotExist(err) {
		t.Errorf("entry escaped the output directory: stat err = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outputDir, "meshes", "ok.nif"))
	if err != nil {
		t.Fatalf("safe entry not extracted: %v", err)
	}
	if string(data) != "good" {
		t.Errorf("ok.nif = %q, want %q", data, "good")
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		name  string
		local bool
	}{
		{`meshes\f\chair.nif`, true},
		{`textures/tx_sand.dds`, true},
		{`..\escaped.nif`, false},
		{`meshes\..\..\escaped.nif`, false},
		{`\abs.nif`, false},
	}
	for _, tt := range tests {
		if got := filepath.IsLocal(localPath(tt.name)); got != tt.local {
			t.Errorf("IsLocal(localPath(%q)) = %v, want %v", tt.name, got, tt.local)
		}
	}
}
