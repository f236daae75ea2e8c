package layout

import (
	"fmt"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

// HeaderFooterResolver resolves the header/footer element list for a given
// page when no PageVariator is available (e.g. a DOCX-export target that
// never built one). It applies the first/even/odd/default part of
// PageVariator's selection rule, independently, because it works off raw
// element lists rather than precomputed placements. Unlike PageVariator it
// does not fall back to any other defined variant when none of those match.
type HeaderFooterResolver struct {
	Headers map[string][]docmodel.Element
	Footers map[string][]docmodel.Element
}

// NewHeaderFooterResolver builds a resolver from the Layout Structure
// Builder's named header/footer lists.
func NewHeaderFooterResolver(headers, footers map[string][]docmodel.Element) *HeaderFooterResolver {
	return &HeaderFooterResolver{Headers: headers, Footers: footers}
}

func firstNonEmpty(m map[string][]docmodel.Element, keys ...string) []docmodel.Element {
	for _, k := range keys {
		if v, ok := m[k]; ok && len(v) > 0 {
			return v
		}
	}
	return nil
}

// GetHeaderForPage returns the single header element to render for a page,
// or nil if none applies. Only the first element of the matched variant is
// used, matching the header side of the fallback chain.
func (r *HeaderFooterResolver) GetHeaderForPage(pageNumber int) *docmodel.Element {
	var list []docmodel.Element
	switch {
	case pageNumber == 1:
		list = firstNonEmpty(r.Headers, "first", "default")
	case pageNumber%2 == 0:
		list = firstNonEmpty(r.Headers, "even", "default")
	default:
		list = firstNonEmpty(r.Headers, "odd", "default")
	}
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

// GetFooterForPage returns the full footer element list to render for a
// page (unlike the header side, footers keep every element in the
// matched variant).
func (r *HeaderFooterResolver) GetFooterForPage(pageNumber int) []docmodel.Element {
	switch {
	case pageNumber == 1:
		return firstNonEmpty(r.Footers, "first", "default")
	case pageNumber%2 == 0:
		return firstNonEmpty(r.Footers, "even", "default")
	default:
		return firstNonEmpty(r.Footers, "odd", "default")
	}
}

// PaginationManager inserts header and footer LayoutBlocks into each page
// of a UnifiedLayout, using a PageVariator's precomputed placements when
// available and falling back to a standalone cursor walk (mirroring the
// variator's own algorithm) otherwise.
type PaginationManager struct {
	Layout       *UnifiedLayout
	Resolver     *HeaderFooterResolver
	Variator     *PageVariator
	Measurer     BlockHeightMeasurer
	PrepareBlock func(el docmodel.Element, frame geometry.Rect, pageNumber, totalPages int) (BlockContent, error)
}

// NewPaginationManager constructs a manager for the given layout. prepare
// is called to turn a chrome element plus its resolved frame into full
// BlockContent (paragraph/table/image materialization, with PAGE/NUMPAGES
// field codes re-resolved against the actual page number and final page
// count); it may be nil, in which case a GenericLayout wrapping the raw
// element is used.
func NewPaginationManager(u *UnifiedLayout, resolver *HeaderFooterResolver, variator *PageVariator, measurer BlockHeightMeasurer, prepare func(docmodel.Element, geometry.Rect, int, int) (BlockContent, error)) *PaginationManager {
	return &PaginationManager{Layout: u, Resolver: resolver, Variator: variator, Measurer: measurer, PrepareBlock: prepare}
}

// ApplyHeadersFooters inserts header blocks at the front and footer blocks
// at the back of every page that does not have SkipHeadersFooters set.
// A zero-content marker block accompanies each chrome block so the Layout
// Validator can see a chrome slot was considered even on pages where
// nothing was rendered into it.
func (m *PaginationManager) ApplyHeadersFooters() {
	if m.Resolver == nil {
		return
	}
	for i := range m.Layout.Pages {
		page := &m.Layout.Pages[i]
		if page.SkipHeadersFooters {
			continue
		}

		var headerPlacements, footerPlacements []Placement
		if m.Variator != nil {
			variant := m.Variator.GetVariant(page.Number)
			headerPlacements = variant.HeaderPlacements
			footerPlacements = variant.FooterPlacements
		}
		if len(headerPlacements) == 0 {
			if el := m.Resolver.GetHeaderForPage(page.Number); el != nil {
				headerPlacements = m.fallbackHeaderPlacements([]docmodel.Element{*el}, *page)
			}
		}
		if len(footerPlacements) == 0 {
			if els := m.Resolver.GetFooterForPage(page.Number); len(els) > 0 {
				footerPlacements = m.fallbackFooterPlacements(els, *page)
			}
		}

		insertIndex := 0
		for _, placement := range headerPlacements {
			blocks := m.createChromeBlocks(placement, *page, BlockHeader, BlockHeaderMarker)
			for _, b := range blocks {
				page.Blocks = append(page.Blocks[:insertIndex], append([]LayoutBlock{b}, page.Blocks[insertIndex:]...)...)
				insertIndex++
			}
		}
		for _, placement := range footerPlacements {
			blocks := m.createChromeBlocks(placement, *page, BlockFooter, BlockFooterMarker)
			page.Blocks = append(page.Blocks, blocks...)
		}
	}
}

func (m *PaginationManager) createChromeBlocks(p Placement, page LayoutPage, primaryKind, markerKind BlockKind) []LayoutBlock {
	height := p.Height
	if height <= 0 {
		height = 20.0
	}
	frame := rectFromMargins(page, p.Y, height)

	var content BlockContent
	if m.PrepareBlock != nil {
		if c, err := m.PrepareBlock(p.Element, frame, page.Number, len(m.Layout.Pages)); err == nil {
			content = c
		}
	}
	if content.Payload.Kind() == "" {
		content = BlockContent{
			Payload: BlockPayload{Generic: &GenericLayout{Frame: frame, Data: p.Element.Attrs}},
			Raw:     p.Element.Attrs,
		}
	}

	primary := LayoutBlock{Frame: frame, Kind: primaryKind, Content: content, PageNumber: page.Number}
	marker := LayoutBlock{
		Frame:      frame,
		Kind:       markerKind,
		Content:    BlockContent{Payload: BlockPayload{Generic: &GenericLayout{Frame: frame}}},
		PageNumber: page.Number,
	}
	return []LayoutBlock{primary, marker}
}

func rectFromMargins(page LayoutPage, y, height float64) geometry.Rect {
	return geometry.Rect{
		X:      page.Margins.Left,
		Y:      y,
		Width:  page.Size.Width - page.Margins.Left - page.Margins.Right,
		Height: height,
	}
}

func (m *PaginationManager) fallbackHeaderPlacements(items []docmodel.Element, page LayoutPage) []Placement {
	placements := make([]Placement, 0, len(items))
	cursor := page.Size.Height - page.Margins.Top

	for _, el := range items {
		before, after := elementSpacing(el)
		height := m.measure(el)

		cursor -= before
		y := cursor - height
		placements = append(placements, Placement{Element: el, Height: height, Y: y})
		cursor = y - after
	}
	return placements
}

func (m *PaginationManager) fallbackFooterPlacements(items []docmodel.Element, page LayoutPage) []Placement {
	reversed := make([]Placement, 0, len(items))
	cursor := page.Margins.Bottom

	for i := len(items) - 1; i >= 0; i-- {
		el := items[i]
		before, after := elementSpacing(el)
		height := m.measure(el)

		cursor += after
		y := cursor
		reversed = append(reversed, Placement{Element: el, Height: height, Y: y})
		cursor += height + before
	}
	placements := make([]Placement, len(reversed))
	for i, p := range reversed {
		placements[len(reversed)-1-i] = p
	}
	return placements
}

func (m *PaginationManager) measure(el docmodel.Element) float64 {
	if m.Measurer != nil {
		if h, err := m.Measurer.MeasureBlockHeight(el); err == nil && h > 0 {
			return h
		}
	}
	return 20.0
}

// ValidatePagination checks that every block's frame fits within its
// page's bounds, returning one message per violation.
func (m *PaginationManager) ValidatePagination() []string {
	var errs []string
	for _, page := range m.Layout.Pages {
		for _, block := range page.Blocks {
			if block.Frame.X+block.Frame.Width > page.Size.Width {
				errs = append(errs, fmt.Sprintf("block %s on page %d exceeds page width", block.Kind, page.Number))
			}
			if block.Frame.Y < 0 {
				errs = append(errs, fmt.Sprintf("block %s on page %d is below the page's bottom edge", block.Kind, page.Number))
			}
			if block.Frame.Y+block.Frame.Height > page.Size.Height {
				errs = append(errs, fmt.Sprintf("block %s on page %d exceeds the page's top edge", block.Kind, page.Number))
			}
		}
	}
	return errs
}
