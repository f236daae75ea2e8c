package pdfwriter

import "testing"

func TestResolveStandardFontFallsBackThroughFamilies(t *testing.T) {
	cases := []struct {
		family       string
		bold, italic bool
		want         string
	}{
		{"Arial", false, false, "Helvetica"},
		{"Arial", true, false, "Helvetica-Bold"},
		{"Arial", false, true, "Helvetica-Oblique"},
		{"Arial", true, true, "Helvetica-BoldOblique"},
		{"Times New Roman", false, false, "Times-Roman"},
		{"Times New Roman", true, false, "Times-Bold"},
		{"Consolas", false, false, "Courier"},
		{"", false, false, "Helvetica"},
	}
	for _, c := range cases {
		if got := resolveStandardFont(c.family, c.bold, c.italic); got != c.want {
			t.Errorf("resolveStandardFont(%q, %v, %v) = %q, want %q", c.family, c.bold, c.italic, got, c.want)
		}
	}
}

func TestStandardMetricsCoverEveryResolvedName(t *testing.T) {
	names := []string{"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique", "Times-Roman", "Times-Bold", "Courier"}
	for _, n := range names {
		m, ok := standardMetrics[n]
		if !ok {
			t.Fatalf("standardMetrics missing entry for %q", n)
		}
		if m.BaseFont != n {
			t.Errorf("standardMetrics[%q].BaseFont = %q, want %q", n, m.BaseFont, n)
		}
	}
}

func TestCourierWidthsAreMonospace(t *testing.T) {
	for i, w := range courierWidths {
		if w != 600 {
			t.Fatalf("courierWidths[%d] = %d, want 600 (Courier is monospace)", i, w)
		}
	}
}
