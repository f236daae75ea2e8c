package layout

import (
	"testing"

	"github.com/quillforge/docpdf/internal/docmodel"
)

type fixedHeightMeasurer struct{ height float64 }

func (m fixedHeightMeasurer) MeasureBlockHeight(el docmodel.Element) (float64, error) {
	return m.height, nil
}

func TestSelectVariantKeyFallbackChain(t *testing.T) {
	cases := []struct {
		name      string
		available []string
		page      int
		want      string
	}{
		{"first page with first variant", []string{"first", "default"}, 1, "first"},
		{"even page with even variant", []string{"even", "default"}, 2, "even"},
		{"odd page (not first) with odd variant", []string{"odd", "default"}, 3, "odd"},
		{"first page without first falls to default", []string{"even", "odd", "default"}, 1, "default"},
		{"no default, no match, falls to any available", []string{"odd"}, 2, "odd"},
		{"nothing available falls to literal default", []string{}, 5, "default"},
		{"page one never reuses first for later odd pages", []string{"first", "default"}, 3, "default"},
		{"only variant is first, page two gets nothing", []string{"first"}, 2, "default"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := selectVariantKey(c.available, c.page)
			if got != c.want {
				t.Errorf("selectVariantKey(%v, %d) = %q, want %q", c.available, c.page, got, c.want)
			}
		})
	}
}

func TestPageVariatorBodyOffsetsUseVariantUsedOffset(t *testing.T) {
	headers := map[string][]docmodel.Element{
		"default": {{Kind: docmodel.ElementParagraph}},
	}
	footers := map[string][]docmodel.Element{
		"default": {{Kind: docmodel.ElementParagraph}},
	}
	v := NewPageVariator(headers, footers, fixedHeightMeasurer{height: 30}, 842, 72, 72, 0, 0)

	variant := v.GetVariant(1)
	if variant.BodyTopOffset <= 72 {
		t.Errorf("BodyTopOffset = %v, want > base margin 72 (header pushed it down)", variant.BodyTopOffset)
	}
	if variant.BodyBottomOffset <= 72 {
		t.Errorf("BodyBottomOffset = %v, want > base margin 72 (footer pushed it up)", variant.BodyBottomOffset)
	}
	if len(variant.HeaderPlacements) != 1 || len(variant.FooterPlacements) != 1 {
		t.Errorf("expected one header and one footer placement, got %d/%d", len(variant.HeaderPlacements), len(variant.FooterPlacements))
	}
}

func TestPageVariatorEmptyFallsBackToBaseMargins(t *testing.T) {
	v := NewPageVariator(nil, nil, nil, 842, 72, 72, 0, 0)
	variant := v.GetVariant(1)
	if variant.BodyTopOffset != 72 || variant.BodyBottomOffset != 72 {
		t.Errorf("expected base margins with no chrome, got top=%v bottom=%v", variant.BodyTopOffset, variant.BodyBottomOffset)
	}
}
