package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load on a missing file should not error, got: %v", err)
	}
	if cfg.Page.Size != "LETTER" {
		t.Errorf("default page size = %q, want LETTER", cfg.Page.Size)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpdf.toml")
	contents := `
[page]
size = "A4"
margin_top = 36

[compiler]
arlington_compatible = true
watermark_opacity = 0.4
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Page.Size != "A4" {
		t.Errorf("Page.Size = %q, want A4", cfg.Page.Size)
	}
	if cfg.Page.MarginT != 36 {
		t.Errorf("Page.MarginT = %v, want 36", cfg.Page.MarginT)
	}
	if !cfg.Compiler.ArlingtonCompatible {
		t.Error("Compiler.ArlingtonCompatible = false, want true")
	}
	if cfg.Compiler.WatermarkOpacity != 0.4 {
		t.Errorf("Compiler.WatermarkOpacity = %v, want 0.4", cfg.Compiler.WatermarkOpacity)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("this is not [ valid toml"), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestPageSizeAndMarginsResolve(t *testing.T) {
	cfg := Default()
	size := cfg.PageSize()
	if size.Width <= 0 || size.Height <= 0 {
		t.Fatalf("resolved page size is degenerate: %+v", size)
	}
	margins := cfg.Margins()
	if margins.Top != 72 {
		t.Errorf("Margins().Top = %v, want 72", margins.Top)
	}
}
