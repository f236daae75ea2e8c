package geometry

import "testing"

func TestTwipsToPoints(t *testing.T) {
	cases := []struct {
		twips float64
		want  float64
	}{
		{20, 1},
		{720, 36},
		{0, 0},
	}
	for _, c := range cases {
		if got := TwipsToPoints(c.twips); got != c.want {
			t.Errorf("TwipsToPoints(%v) = %v, want %v", c.twips, got, c.want)
		}
	}
}

func TestEMUToPoints(t *testing.T) {
	got := EMUToPoints(914400)
	if got != 72 {
		t.Errorf("EMUToPoints(914400) = %v, want 72", got)
	}
}

func TestMMToPoints(t *testing.T) {
	got := MMToPoints(25.4)
	if got != 72 {
		t.Errorf("MMToPoints(25.4) = %v, want 72", got)
	}
}

func TestPageDimensionsUnknownFallsBackToA4(t *testing.T) {
	got := PageDimensions("BANANA", false)
	want := Size{Width: 595, Height: 842}
	if got != want {
		t.Errorf("PageDimensions(unknown) = %v, want %v", got, want)
	}
}

func TestPageDimensionsLandscapeSwapsAxes(t *testing.T) {
	portrait := PageDimensions("LETTER", false)
	landscape := PageDimensions("LETTER", true)
	if landscape.Width != portrait.Height || landscape.Height != portrait.Width {
		t.Errorf("landscape %v is not a swap of portrait %v", landscape, portrait)
	}
}

func TestRectInsetAndOverlaps(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	inset := r.Inset(10, 10, 10, 10)
	want := Rect{X: 10, Y: 10, Width: 80, Height: 80}
	if inset != want {
		t.Errorf("Inset = %v, want %v", inset, want)
	}

	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
	c := Rect{X: 20, Y: 20, Width: 10, Height: 10}
	if !a.Overlaps(b) {
		t.Errorf("expected %v to overlap %v", a, b)
	}
	if a.Overlaps(c) {
		t.Errorf("expected %v not to overlap %v", a, c)
	}
}
