package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestRun_WritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wheel.png")
	err := run([]string{"-options", "A,B,C", "-seed", "1", "-out", out, "-size", "96"}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 96 {
		t.Errorf("width %d, want 96", img.Bounds().Dx())
	}
}

func TestRun_TooFewOptions(t *testing.T) {
	if err := run([]string{"-options", "solo"}, zap.NewNop().Sugar()); err == nil {
		t.Error("run with one option should fail")
	}
}
