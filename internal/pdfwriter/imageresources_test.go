package pdfwriter

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode sample PNG: %v", err)
	}
	return buf.Bytes()
}

func TestRegisterDeduplicatesIdenticalBytes(t *testing.T) {
	r := NewImageRegistry()
	data := samplePNG(t)
	a1, err := r.Register(data)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	a2, err := r.Register(data)
	if err != nil {
		t.Fatalf("Register (second call): %v", err)
	}
	if a1 != a2 {
		t.Fatalf("identical image bytes produced different aliases: %q vs %q", a1, a2)
	}
	if len(r.order) != 1 {
		t.Fatalf("expected one distinct registered image, got %d", len(r.order))
	}
}

func TestRegisterRejectsUndecodableBytes(t *testing.T) {
	r := NewImageRegistry()
	if _, err := r.Register([]byte("not an image")); err == nil {
		t.Fatal("expected an error for undecodable image bytes")
	}
}

func TestAssignObjectIDsProducesCompleteObjects(t *testing.T) {
	r := NewImageRegistry()
	data := samplePNG(t)
	alias, err := r.Register(data)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	assignments := r.AssignObjectIDs(50)
	if len(assignments.Images) != 1 {
		t.Fatalf("expected 1 assigned image, got %d", len(assignments.Images))
	}
	img := assignments.Images[0]
	if img.Alias != alias {
		t.Errorf("assigned alias %q does not match registered alias %q", img.Alias, alias)
	}
	if img.ObjectID != 50 {
		t.Errorf("ObjectID = %d, want 50", img.ObjectID)
	}
	if !bytes.Contains(img.Data, []byte("/Subtype /Image")) {
		t.Error("rendered image object missing /Subtype /Image")
	}
	if !bytes.Contains(img.Data, []byte("endobj")) {
		t.Error("rendered image object missing endobj terminator")
	}
}

func TestFNV1AHashIsDeterministic(t *testing.T) {
	data := []byte("some image bytes")
	if fnv1aHash(data) != fnv1aHash(append([]byte(nil), data...)) {
		t.Fatal("fnv1aHash is not deterministic over equal byte slices")
	}
	if fnv1aHash(data) == fnv1aHash([]byte("different bytes")) {
		t.Fatal("fnv1aHash produced the same hash for different inputs (unlikely collision in this test)")
	}
}
