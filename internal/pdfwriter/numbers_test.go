package pdfwriter

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{72, "72"},
		{1.5, "1.5"},
		{1.23456, "1.2346"},
		{1.10000, "1.1"},
		{-3.0, "-3"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEncodeTextStringASCII(t *testing.T) {
	got := EncodeTextString("Hello (world)")
	want := `(Hello \(world\))`
	if got != want {
		t.Errorf("EncodeTextString = %q, want %q", got, want)
	}
}

func TestEncodeTextStringNonASCIIUsesUTF16Hex(t *testing.T) {
	got := EncodeTextString("é")
	if got[:5] != "<FEFF" {
		t.Errorf("expected hex string with BOM prefix, got %q", got)
	}
}
