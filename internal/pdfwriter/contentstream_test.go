package pdfwriter

import (
	"bytes"
	"compress/zlib"
	"io"
	"strings"
	"testing"
)

func TestCompressStreamRoundTrips(t *testing.T) {
	content := []byte(strings.Repeat("BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello, world) Tj ET\n", 50))
	compressed, used := compressStream(content)
	if !used {
		t.Fatal("expected a repetitive stream to compress smaller than its source")
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer r.Close()
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(decoded, content) {
		t.Fatal("decompressed content does not match original")
	}
}

func TestCompressStreamEmptyContentIsUntouched(t *testing.T) {
	compressed, used := compressStream(nil)
	if used {
		t.Fatal("empty content should never report as compressed")
	}
	if len(compressed) != 0 {
		t.Fatalf("expected empty output for empty input, got %d bytes", len(compressed))
	}
}

func TestBuildResourceDictIncludesFontsAndImages(t *testing.T) {
	c := NewCompiler()
	fonts := FontAssignments{Fonts: []AssignedFont{{Alias: "F1", ObjectID: 10}}}
	images := ImageAssignments{Images: []AssignedImage{{Alias: "Im1", ObjectID: 20}}}
	dict := c.buildResourceDict(fonts, images, Options{})
	if !strings.Contains(dict, "/F1 10 0 R") {
		t.Errorf("resource dict missing font reference: %s", dict)
	}
	if !strings.Contains(dict, "/Im1 20 0 R") {
		t.Errorf("resource dict missing image reference: %s", dict)
	}
	if !strings.Contains(dict, "/ExtGState") {
		t.Errorf("resource dict missing watermark ExtGState entries: %s", dict)
	}
}

func TestBuildResourceDictOmitsEmptySections(t *testing.T) {
	c := NewCompiler()
	dict := c.buildResourceDict(FontAssignments{}, ImageAssignments{}, Options{})
	if strings.Contains(dict, "/Font") || strings.Contains(dict, "/XObject") {
		t.Errorf("resource dict should omit /Font and /XObject when nothing is registered: %s", dict)
	}
}

func TestBuildResourceDictAppliesWatermarkOpacityOverride(t *testing.T) {
	c := NewCompiler()
	dict := c.buildResourceDict(FontAssignments{}, ImageAssignments{}, Options{WatermarkOpacity: 0.2})
	if !strings.Contains(dict, "/ca 0.2") {
		t.Errorf("expected overridden opacity 0.2 in ExtGState dict: %s", dict)
	}
}
