package layout

import (
	"sort"

	"github.com/quillforge/docpdf/internal/docmodel"
)

// Placement is one header/footer element positioned within the chrome band.
type Placement struct {
	Element docmodel.Element
	Height  float64
	Y       float64
}

type headerVariantData struct {
	placements []Placement
	usedOffset float64
}

type footerVariantData struct {
	placements []Placement
	usedOffset float64
}

// PageVariant is the resolved header/footer placement set plus body-area
// offsets for a given page.
type PageVariant struct {
	HeaderPlacements []Placement
	FooterPlacements []Placement
	BodyTopOffset    float64
	BodyBottomOffset float64
	HeaderDistance   float64
	FooterDistance   float64
}

// BlockHeightMeasurer estimates the rendered height of a header/footer
// element; the Assembler implements it for its own block types so the
// variator and the assembler agree on chrome sizing without duplicating the
// line-breaking logic.
type BlockHeightMeasurer interface {
	MeasureBlockHeight(el docmodel.Element) (float64, error)
}

// PageVariator precomputes header/footer placement variants once per
// section and reuses them for every page, instead of recomputing the
// cursor walk per page.
type PageVariator struct {
	pageHeight     float64
	baseMarginTop  float64
	baseMarginBot  float64
	headerDistance float64
	footerDistance float64

	headerVariants map[string]headerVariantData
	footerVariants map[string]footerVariantData
}

// NewPageVariator builds header/footer variants from the given named
// header/footer element lists. headerDistance/footerDistance default to the
// base top/bottom margins when zero.
func NewPageVariator(
	headers, footers map[string][]docmodel.Element,
	measurer BlockHeightMeasurer,
	pageHeight, baseMarginTop, baseMarginBottom, headerDistance, footerDistance float64,
) *PageVariator {
	if headerDistance == 0 {
		headerDistance = baseMarginTop
	}
	if footerDistance == 0 {
		footerDistance = baseMarginBottom
	}
	v := &PageVariator{
		pageHeight:     pageHeight,
		baseMarginTop:  baseMarginTop,
		baseMarginBot:  baseMarginBottom,
		headerDistance: headerDistance,
		footerDistance: footerDistance,
		headerVariants: map[string]headerVariantData{},
		footerVariants: map[string]footerVariantData{},
	}
	if len(headers) == 0 {
		headers = map[string][]docmodel.Element{"default": nil}
	}
	if len(footers) == 0 {
		footers = map[string][]docmodel.Element{"default": nil}
	}
	for key, items := range headers {
		v.headerVariants[key] = v.buildHeaderVariant(items, measurer)
	}
	for key, items := range footers {
		v.footerVariants[key] = v.buildFooterVariant(items, measurer)
	}
	return v
}

// GetVariant resolves the header/footer placement set for the given
// 1-based page number.
func (v *PageVariator) GetVariant(pageNumber int) PageVariant {
	header := v.selectHeaderVariant(pageNumber)
	footer := v.selectFooterVariant(pageNumber)

	bodyTop := v.baseMarginTop
	if header.usedOffset > bodyTop {
		bodyTop = header.usedOffset
	}
	bodyBottom := v.baseMarginBot
	if footer.usedOffset > bodyBottom {
		bodyBottom = footer.usedOffset
	}

	return PageVariant{
		HeaderPlacements: header.placements,
		FooterPlacements: footer.placements,
		BodyTopOffset:    bodyTop,
		BodyBottomOffset: bodyBottom,
		HeaderDistance:   v.headerDistance,
		FooterDistance:   v.footerDistance,
	}
}

func elementSpacing(el docmodel.Element) (before, after float64) {
	style, _ := el.Attrs["style"].(map[string]any)
	before = toFloat(style["spacing_before"])
	after = toFloat(style["spacing_after"])
	return
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (v *PageVariator) measureHeight(measurer BlockHeightMeasurer, el docmodel.Element) float64 {
	height := 20.0
	if measurer != nil {
		if h, err := measurer.MeasureBlockHeight(el); err == nil && h > 0 {
			height = h
		}
	}
	return height
}

func (v *PageVariator) buildHeaderVariant(items []docmodel.Element, measurer BlockHeightMeasurer) headerVariantData {
	placements := make([]Placement, 0, len(items))
	cursor := v.pageHeight - v.headerDistance

	for _, el := range items {
		before, after := elementSpacing(el)
		height := v.measureHeight(measurer, el)

		cursor -= before
		y := cursor - height
		placements = append(placements, Placement{Element: el, Height: height, Y: y})
		cursor = y - after
	}

	return headerVariantData{placements: placements, usedOffset: v.pageHeight - cursor}
}

func (v *PageVariator) buildFooterVariant(items []docmodel.Element, measurer BlockHeightMeasurer) footerVariantData {
	placementsReversed := make([]Placement, 0, len(items))
	cursor := v.footerDistance

	for i := len(items) - 1; i >= 0; i-- {
		el := items[i]
		before, after := elementSpacing(el)
		height := v.measureHeight(measurer, el)

		cursor += after
		y := cursor
		placementsReversed = append(placementsReversed, Placement{Element: el, Height: height, Y: y})
		cursor += height + before
	}

	placements := make([]Placement, len(placementsReversed))
	for i, p := range placementsReversed {
		placements[len(placementsReversed)-1-i] = p
	}

	return footerVariantData{placements: placements, usedOffset: cursor}
}

func (v *PageVariator) selectHeaderVariant(pageNumber int) headerVariantData {
	key := selectVariantKey(headerKeys(v.headerVariants), pageNumber)
	if data, ok := v.headerVariants[key]; ok {
		return data
	}
	return headerVariantData{usedOffset: v.headerDistance}
}

func (v *PageVariator) selectFooterVariant(pageNumber int) footerVariantData {
	key := selectVariantKey(footerKeys(v.footerVariants), pageNumber)
	if data, ok := v.footerVariants[key]; ok {
		return data
	}
	return footerVariantData{usedOffset: v.footerDistance}
}

func headerKeys(m map[string]headerVariantData) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func footerKeys(m map[string]footerVariantData) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// selectVariantKey implements the first/even/odd/default fallback chain,
// then falls back to any available key, then to the literal "default".
// A page's variant never falls back to "first" past page one, even if
// "first" is the only variant defined.
func selectVariantKey(available []string, pageNumber int) string {
	has := func(key string) bool {
		for _, k := range available {
			if k == key {
				return true
			}
		}
		return false
	}
	switch {
	case pageNumber == 1 && has("first"):
		return "first"
	case pageNumber%2 == 0 && has("even"):
		return "even"
	case pageNumber%2 == 1 && pageNumber != 1 && has("odd"):
		return "odd"
	case has("default"):
		return "default"
	}
	// No named match. Fall back to any remaining variant, but "first" is
	// never reused past page one: a document with only a "first" header
	// must render none of it on later pages, not page one's chrome again.
	for _, k := range available {
		if k != "first" {
			return k
		}
	}
	return "default"
}
