package fontdata

import "testing"

func sampleFont() *Font {
	return &Font{
		UnitsPerEm:  1000,
		GlyphWidths: []uint16{0, 500, 600, 700},
		CharToGlyph: map[rune]uint16{'A': 1, 'B': 2, 'C': 3},
		IsBold:      true,
	}
}

func TestCharWidthScaledUsesUnitsPerEm(t *testing.T) {
	f := &Font{UnitsPerEm: 2000, GlyphWidths: []uint16{0, 1000}, CharToGlyph: map[rune]uint16{'A': 1}}
	if got := f.CharWidthScaled('A'); got != 500 {
		t.Errorf("CharWidthScaled = %d, want 500", got)
	}
}

func TestUsedGlyphsAlwaysIncludesNotdef(t *testing.T) {
	f := sampleFont()
	glyphs := f.UsedGlyphs("A")
	if len(glyphs) != 2 || glyphs[0] != 0 || glyphs[1] != 1 {
		t.Errorf("UsedGlyphs(%q) = %v, want [0 1]", "A", glyphs)
	}
}

func TestUsedGlyphsIgnoresUnmappedRunes(t *testing.T) {
	f := sampleFont()
	glyphs := f.UsedGlyphs("AZ")
	if len(glyphs) != 2 {
		t.Errorf("UsedGlyphs(%q) = %v, want len 2 (A maps, Z doesn't)", "AZ", glyphs)
	}
}

func TestPDFFlagsSetsForceBoldForBoldFonts(t *testing.T) {
	f := sampleFont()
	if f.PDFFlags()&262144 == 0 {
		t.Error("PDFFlags should set ForceBold for a bold font")
	}
}
