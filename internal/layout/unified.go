package layout

import (
	"fmt"

	"github.com/quillforge/docpdf/internal/geometry"
)

// BlockKind names what a LayoutBlock renders as; the PDF Compiler's
// dispatcher (internal/pdfwriter) is keyed by this string.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
	BlockImage     BlockKind = "image"
	BlockHeader    BlockKind = "header"
	BlockFooter    BlockKind = "footer"
	BlockFootnotes BlockKind = "footnotes"
	BlockEndnotes  BlockKind = "endnotes"
	BlockTextbox   BlockKind = "textbox"
	BlockDecorator BlockKind = "decorator"
	BlockRectangle BlockKind = "rectangle"
	BlockVMLShape  BlockKind = "vml_shape"
	// BlockHeaderMarker/BlockFooterMarker are zero-content markers the
	// Pagination Manager inserts so the Layout Validator can tell a
	// chrome slot was considered even when it produced no visible block.
	BlockHeaderMarker BlockKind = "header_marker"
	BlockFooterMarker BlockKind = "footer_marker"
)

// LayoutBlock is one positioned, renderable unit on a page.
type LayoutBlock struct {
	Frame       geometry.Rect
	Kind        BlockKind
	Content     BlockContent
	Style       BoxStyle
	PageNumber  int
	SourceUID   string
	Sequence    int
	Warnings    []string
}

// LayoutPage is one page of positioned blocks.
type LayoutPage struct {
	Number             int
	Size               geometry.Size
	Margins            geometry.Margins
	Blocks             []LayoutBlock
	SkipHeadersFooters bool
	// Overlays holds page-anchored floating content (anchored images,
	// textboxes, shapes) that does not occupy flow-cursor space. Unlike
	// Blocks, these are positioned in absolute page coordinates set at
	// materialization time rather than by the body cursor.
	Overlays []OverlayBox
}

// AddBlock appends a block to the page.
func (p *LayoutPage) AddBlock(b LayoutBlock) {
	p.Blocks = append(p.Blocks, b)
}

// AddOverlay appends a floating, non-flow element to the page.
func (p *LayoutPage) AddOverlay(o OverlayBox) {
	p.Overlays = append(p.Overlays, o)
}

// UnifiedLayout is the final positioned-page-list artifact the Layout
// Assembler produces and the PDF Compiler consumes.
type UnifiedLayout struct {
	Pages       []LayoutPage
	CurrentPage int
}

// NewUnifiedLayout returns an empty layout with no pages.
func NewUnifiedLayout() *UnifiedLayout {
	return &UnifiedLayout{CurrentPage: 0}
}

// AddBlock appends a block to the current page. It panics-free errors if
// there is no current page, matching the fail-fast contract of the
// Layout Assembler's internal bookkeeping.
func (u *UnifiedLayout) AddBlock(b LayoutBlock) error {
	if len(u.Pages) == 0 {
		return fmt.Errorf("layout: AddBlock called with no pages")
	}
	idx := u.CurrentPage - 1
	if idx < 0 || idx >= len(u.Pages) {
		return fmt.Errorf("layout: current page %d out of range (%d pages)", u.CurrentPage, len(u.Pages))
	}
	u.Pages[idx].AddBlock(b)
	return nil
}

// NewPage appends a fresh page and makes it current, returning a pointer to it.
func (u *UnifiedLayout) NewPage(size geometry.Size, margins geometry.Margins) *LayoutPage {
	u.Pages = append(u.Pages, LayoutPage{
		Number:  len(u.Pages) + 1,
		Size:    size,
		Margins: margins,
	})
	u.CurrentPage = len(u.Pages)
	return &u.Pages[len(u.Pages)-1]
}

// CurrentPagePtr returns a pointer to the current page, or nil if there is
// none.
func (u *UnifiedLayout) CurrentPagePtr() *LayoutPage {
	if u.CurrentPage < 1 || u.CurrentPage > len(u.Pages) {
		return nil
	}
	return &u.Pages[u.CurrentPage-1]
}
