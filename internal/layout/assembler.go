package layout

import (
	"fmt"
	"strings"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

// MetricsProvider measures text for line breaking. The PDF Compiler's font
// registry implements this so the Assembler wraps lines against the same
// metrics the compiler will render with; a fallback average-width
// implementation is used when none is supplied (see DefaultMetrics).
type MetricsProvider interface {
	MeasureText(text, fontFamily string, fontSize float64, bold, italic bool) float64
	LineHeight(fontFamily string, fontSize float64) float64
}

// DefaultMetrics is a crude but dependency-free MetricsProvider: it assumes
// a fixed average-advance-width-per-point ratio, good enough to produce
// plausible line breaks when no real font metrics are wired in yet.
type DefaultMetrics struct{}

func (DefaultMetrics) MeasureText(text, _ string, fontSize float64, _, _ bool) float64 {
	return float64(len([]rune(text))) * fontSize * 0.5
}

func (DefaultMetrics) LineHeight(_ string, fontSize float64) float64 {
	return fontSize * 1.2
}

// Assembler turns a LayoutStructure into a UnifiedLayout: it paginates body
// content top to bottom, wraps paragraph text into lines, resolves table
// cell grids, splits oversized blocks across page boundaries, collects the
// footnotes referenced on a page into one block drawn upward from that
// page's body bottom, and gathers endnotes across the whole document into
// a trailing section. Body flow does not reserve space for the footnote
// block, so on a full page it can overlap the last body blocks.
type Assembler struct {
	Metrics  MetricsProvider
	variator *PageVariator
}

// NewAssembler returns an assembler using the given metrics provider
// (DefaultMetrics{} if nil).
func NewAssembler(metrics MetricsProvider) *Assembler {
	if metrics == nil {
		metrics = DefaultMetrics{}
	}
	return &Assembler{Metrics: metrics}
}

// SetPageVariator attaches a PageVariator so Assemble can size the body
// area against per-page header/footer offsets instead of the bare base
// margins.
func (a *Assembler) SetPageVariator(v *PageVariator) { a.variator = v }

const defaultFontSize = 11.0
const defaultFontFamily = "Helvetica"
const footnoteBandPadding = 6.0

// minKeepLines is the widow/orphan floor: a paragraph split across a page
// boundary never leaves fewer than this many lines behind on the page it
// started on, nor carries fewer than this many onto the next one.
const minKeepLines = 2

// Assemble paginates the structure's body content into a UnifiedLayout,
// honoring page_break_before/after, keep_with_next/keep_together,
// paragraph and table splitting with widow/orphan control, anchored
// overlays, and a trailing endnotes section.
func (a *Assembler) Assemble(structure *LayoutStructure) (*UnifiedLayout, error) {
	if structure == nil || len(structure.Sections) == 0 {
		return nil, fmt.Errorf("layout: assemble requires at least one section")
	}
	cfg := structure.Sections[0]
	contentWidth := cfg.PageSize.Width - cfg.BaseMargins.Left - cfg.BaseMargins.Right
	u := NewUnifiedLayout()

	page := u.NewPage(cfg.PageSize, cfg.BaseMargins)
	bodyTop, bodyBottom := a.bodyBounds(cfg, 1)
	cursor := cfg.PageSize.Height - bodyTop
	pageFootnoteIDs := map[string]bool{}
	allEndnoteIDs := map[string]bool{}

	atPageTop := func() bool { return cursor >= cfg.PageSize.Height-bodyTop }

	flushFootnotes := func() {
		if len(pageFootnoteIDs) == 0 {
			return
		}
		block, _ := a.buildFootnoteBlock(page, pageFootnoteIDs, structure.Footnotes, bodyBottom)
		_ = u.AddBlock(block)
		pageFootnoteIDs = map[string]bool{}
	}

	newPage := func() {
		flushFootnotes()
		page = u.NewPage(cfg.PageSize, cfg.BaseMargins)
		bodyTop, bodyBottom = a.bodyBounds(cfg, page.Number)
		cursor = cfg.PageSize.Height - bodyTop
	}

	queue := make([]docmodel.Element, len(structure.Body))
	copy(queue, structure.Body)

	for len(queue) > 0 {
		el := queue[0]
		queue = queue[1:]

		if isFloating(el) {
			page.AddOverlay(a.materializeOverlay(el, cfg))
			continue
		}

		if boolAttr(el.Attrs, "page_break_before") && !atPageTop() {
			newPage()
		}

		avail := cursor - bodyBottom
		keepTogether := boolAttr(el.Attrs, "keep_together")

		var block LayoutBlock
		var height float64
		var remainder *docmodel.Element

		switch el.Kind {
		case docmodel.ElementParagraph, docmodel.ElementTextbox:
			block, height, remainder = a.placeParagraph(el, cfg, contentWidth, cursor, avail, atPageTop(), keepTogether)
		case docmodel.ElementTable:
			block, height, remainder = a.placeTable(el, cfg, contentWidth, cursor, avail, atPageTop(), keepTogether)
		default:
			var err error
			block, height, err = a.materializeBlock(el, cfg, cursor, bodyBottom)
			if height > avail && !atPageTop() {
				newPage()
				avail = cursor - bodyBottom
				block, height, err = a.materializeBlock(el, cfg, cursor, bodyBottom)
			}
			if err != nil {
				block.Warnings = append(block.Warnings, err.Error())
			}
		}

		if block.Kind == "" {
			// Nothing placed: either a zero-height element, or a block
			// that can't fit (even split) on the current page and must
			// wait for a fresh one.
			if remainder != nil {
				if atPageTop() {
					// Already at the top of a fresh page and it still
					// doesn't fit (e.g. taller than the body area):
					// place it anyway via materializeBlock to avoid an
					// infinite loop, accepting overflow.
					var err error
					block, height, err = a.materializeBlock(el, cfg, cursor, bodyBottom)
					if err != nil {
						block.Warnings = append(block.Warnings, err.Error())
					}
				} else {
					newPage()
					queue = append([]docmodel.Element{*remainder}, queue...)
					continue
				}
			} else {
				continue
			}
		}

		block.PageNumber = page.Number
		if err := u.AddBlock(block); err != nil {
			return nil, err
		}
		cursor -= height

		for _, id := range footnoteRefIDs(el) {
			pageFootnoteIDs[id] = true
		}
		for _, id := range endnoteRefIDs(el) {
			allEndnoteIDs[id] = true
		}

		if remainder != nil {
			newPage()
			queue = append([]docmodel.Element{*remainder}, queue...)
			continue // the split continues on a fresh page; defer keep_with_next/after until it's done
		}

		if boolAttr(el.Attrs, "page_break_after") {
			newPage()
		} else if boolAttr(el.Attrs, "keep_with_next") && len(queue) > 0 {
			nextHeight, _ := a.measureElementHeight(queue[0], contentWidth)
			if nextHeight > cursor-bodyBottom {
				newPage()
			}
		}
	}
	flushFootnotes()

	a.appendEndnoteSection(u, cfg, allEndnoteIDs, structure.Endnotes)

	return u, nil
}

// placeParagraph lays out a paragraph/textbox block, splitting it across a
// page boundary when it doesn't fit whole, provided at least minKeepLines
// lines can stay on the current page and at least minKeepLines continue
// onto the next (the widow/orphan rule); keep_together or a too-small
// remainder instead defers the whole block to a fresh page.
func (a *Assembler) placeParagraph(el docmodel.Element, cfg PageConfig, contentWidth, cursorTop, avail float64, onFreshPage, keepTogether bool) (LayoutBlock, float64, *docmodel.Element) {
	width := contentWidth
	if el.Kind == docmodel.ElementTextbox {
		width = contentWidth - 2*4
	}
	full := a.layoutParagraph(el, width, cursorTop)
	fullHeight := paragraphHeight(full)

	fits := fullHeight <= avail

	if !fits && !onFreshPage {
		if !keepTogether {
			if head, tail, ok := splitParagraphLines(full, avail); ok {
				headBlock := a.blockFromParagraph(el, head, width, cfg)
				return headBlock, paragraphHeight(head), continuationParagraph(el, tail)
			}
		}
		// Can't split acceptably (or keep_together forbids it): defer
		// the whole thing to a fresh page by returning no placement and
		// letting the caller push page_break semantics... handled below
		// by re-requesting via remainder of the *original* element.
		return LayoutBlock{}, 0, &el
	}

	return a.blockFromParagraph(el, full, width, cfg), fullHeight, nil
}

func (a *Assembler) blockFromParagraph(el docmodel.Element, p ParagraphLayout, width float64, cfg PageConfig) LayoutBlock {
	kind := BlockParagraph
	frame := geometry.Rect{X: cfg.BaseMargins.Left, Width: width}
	if len(p.Lines) > 0 {
		top := p.Lines[0].BaselineY + p.Lines[0].Height
		bottom := p.Lines[len(p.Lines)-1].BaselineY
		frame.Y = bottom
		frame.Height = top - bottom
	}
	content := BlockContent{Payload: BlockPayload{Paragraph: &p}, Raw: el.Attrs}
	if el.Kind == docmodel.ElementTextbox {
		kind = BlockTextbox
		tb := TextboxLayout{Rect: frame, Content: p, AnchorMode: AnchorInline}
		content = BlockContent{Payload: BlockPayload{Textbox: &tb}, Raw: el.Attrs}
	}
	return LayoutBlock{Frame: frame, Kind: kind, Content: content, SourceUID: sourceUID(el)}
}

// splitParagraphLines returns the lines that fit in avail and the lines
// left over, provided both halves satisfy the widow/orphan floor.
func splitParagraphLines(p ParagraphLayout, avail float64) (head, tail ParagraphLayout, ok bool) {
	fit := 0
	used := p.Style.PadTop
	for _, l := range p.Lines {
		if used+l.Height > avail {
			break
		}
		used += l.Height
		fit++
	}
	remaining := len(p.Lines) - fit
	if fit < minKeepLines || remaining < minKeepLines {
		return ParagraphLayout{}, ParagraphLayout{}, false
	}
	head = ParagraphLayout{Lines: p.Lines[:fit], Style: p.Style, Metadata: p.Metadata}
	tail = ParagraphLayout{Lines: p.Lines[fit:], Style: p.Style, Metadata: p.Metadata, Hyperlinks: p.Hyperlinks}
	return head, tail, true
}

// continuationParagraph builds a synthetic element carrying the remainder
// of a split paragraph's already-wrapped lines, so the next iteration of
// Assemble's loop places it on a fresh page without re-running the line
// breaker. layoutParagraph recognizes the internal "_continuation_lines"
// attr and rebases those lines instead of re-wrapping text.
func continuationParagraph(el docmodel.Element, tail ParagraphLayout) *docmodel.Element {
	attrs := make(map[string]any, len(el.Attrs)+2)
	for k, v := range el.Attrs {
		attrs[k] = v
	}
	delete(attrs, "page_break_before")
	delete(attrs, "footnote_refs")
	delete(attrs, "endnote_refs")
	attrs["_continuation_lines"] = tail.Lines
	attrs["_continuation_hyperlinks"] = tail.Hyperlinks
	cont := docmodel.Element{Kind: el.Kind, Attrs: attrs}
	return &cont
}

// placeTable lays out a table, splitting it row-wise across a page
// boundary when it doesn't fit whole: is_header_row rows repeat at the top
// of the continuation, and rows are never split mid-row (so cant_split is
// satisfied by construction — a cant_split row either fits whole or moves
// to the continuation entirely, it is never partially placed).
func (a *Assembler) placeTable(el docmodel.Element, cfg PageConfig, contentWidth, cursorTop, avail float64, onFreshPage, keepTogether bool) (LayoutBlock, float64, *docmodel.Element) {
	full := a.layoutTable(el, geometry.Rect{X: cfg.BaseMargins.Left, Y: 0, Width: contentWidth, Height: 1e9})

	if full.Frame.Height <= avail || onFreshPage || keepTogether {
		placed := a.layoutTable(el, geometry.Rect{X: cfg.BaseMargins.Left, Y: cursorTop - full.Frame.Height, Width: contentWidth, Height: full.Frame.Height})
		return LayoutBlock{Frame: placed.Frame, Kind: BlockTable, Content: BlockContent{Payload: BlockPayload{Table: &placed}, Raw: el.Attrs}, SourceUID: sourceUID(el)}, placed.Frame.Height, nil
	}

	headEl, tailEl, fits := splitTableRows(el, full, avail)
	if !fits {
		return LayoutBlock{}, 0, &el
	}
	headTable := a.layoutTable(headEl, geometry.Rect{X: cfg.BaseMargins.Left, Width: contentWidth})
	headTable = a.layoutTable(headEl, geometry.Rect{X: cfg.BaseMargins.Left, Y: cursorTop - headTable.Frame.Height, Width: contentWidth, Height: headTable.Frame.Height})
	block := LayoutBlock{Frame: headTable.Frame, Kind: BlockTable, Content: BlockContent{Payload: BlockPayload{Table: &headTable}, Raw: el.Attrs}, SourceUID: sourceUID(el)}
	return block, headTable.Frame.Height, &tailEl
}

// splitTableRows finds how many leading rows of el's "rows" attr fit in
// avail (using full's already-measured per-row heights), and returns a
// head element carrying just those rows and a tail element carrying the
// rest, with any is_header_row rows from the head repeated at the tail's
// front.
func splitTableRows(el docmodel.Element, full TableLayout, avail float64) (head, tail docmodel.Element, fits bool) {
	rowsAttr, _ := el.Attrs["rows"].([]docmodel.Element)
	if len(rowsAttr) == 0 || len(full.Rows) != len(rowsAttr) {
		return el, docmodel.Element{}, false
	}
	cum := 0.0
	k := 0
	for i, row := range full.Rows {
		h := 0.0
		if len(row) > 0 {
			h = row[0].Frame.Height
		}
		if cum+h > avail {
			break
		}
		cum += h
		k = i + 1
	}
	if k == 0 || k >= len(rowsAttr) {
		return el, docmodel.Element{}, false
	}

	var headerRows []docmodel.Element
	for i := 0; i < k; i++ {
		if boolAttr(rowsAttr[i].Attrs, "is_header_row") {
			headerRows = append(headerRows, rowsAttr[i])
		}
	}
	tailRows := append(append([]docmodel.Element{}, headerRows...), rowsAttr[k:]...)

	head = cloneElementWithRows(el, rowsAttr[:k])
	tail = cloneElementWithRows(el, tailRows)
	return head, tail, true
}

func cloneElementWithRows(el docmodel.Element, rows []docmodel.Element) docmodel.Element {
	attrs := make(map[string]any, len(el.Attrs))
	for k, v := range el.Attrs {
		attrs[k] = v
	}
	attrs["rows"] = rows
	return docmodel.Element{Kind: el.Kind, Attrs: attrs}
}

func (a *Assembler) bodyBounds(cfg PageConfig, pageNumber int) (top, bottom float64) {
	if a.variator != nil {
		v := a.variator.GetVariant(pageNumber)
		return v.BodyTopOffset, v.BodyBottomOffset
	}
	return cfg.BaseMargins.Top, cfg.BaseMargins.Bottom
}

// MeasureBlockHeight implements BlockHeightMeasurer so this Assembler can
// back a PageVariator's chrome-height measurement.
func (a *Assembler) MeasureBlockHeight(el docmodel.Element) (float64, error) {
	height, err := a.measureElementHeight(el, 468) // letter-ish content width fallback
	return height, err
}

// PrepareBlockContent materializes a chrome element (header/footer) into
// BlockContent for the given frame, re-resolving any PAGE/NUMPAGES field
// codes against the actual page number and final page count; used by the
// Pagination Manager once per page.
func (a *Assembler) PrepareBlockContent(el docmodel.Element, frame geometry.Rect, pageNumber, totalPages int) (BlockContent, error) {
	el = resolveLiveFields(el, pageNumber, totalPages)
	switch el.Kind {
	case docmodel.ElementParagraph:
		p := a.layoutParagraph(el, frame.Width, frame.Y+frame.Height)
		return BlockContent{Payload: BlockPayload{Paragraph: &p}, Raw: el.Attrs}, nil
	case docmodel.ElementImage:
		img := a.layoutImage(el, frame)
		return BlockContent{Payload: BlockPayload{Image: &img}, Raw: el.Attrs}, nil
	default:
		return BlockContent{Payload: BlockPayload{Generic: &GenericLayout{Frame: frame, Data: el.Attrs}}, Raw: el.Attrs}, nil
	}
}

func (a *Assembler) materializeBlock(el docmodel.Element, cfg PageConfig, cursorTop, bodyBottom float64) (LayoutBlock, float64, error) {
	contentWidth := cfg.PageSize.Width - cfg.BaseMargins.Left - cfg.BaseMargins.Right
	height, err := a.measureElementHeight(el, contentWidth)
	frame := geometry.Rect{
		X:      cfg.BaseMargins.Left,
		Y:      cursorTop - height,
		Width:  contentWidth,
		Height: height,
	}

	var kind BlockKind
	var content BlockContent
	switch el.Kind {
	case docmodel.ElementParagraph:
		kind = BlockParagraph
		p := a.layoutParagraph(el, contentWidth, frame.Y+frame.Height)
		content = BlockContent{Payload: BlockPayload{Paragraph: &p}, Raw: el.Attrs}
	case docmodel.ElementTable:
		kind = BlockTable
		tbl := a.layoutTable(el, frame)
		content = BlockContent{Payload: BlockPayload{Table: &tbl}, Raw: el.Attrs}
	case docmodel.ElementImage:
		kind = BlockImage
		img := a.layoutImage(el, frame)
		content = BlockContent{Payload: BlockPayload{Image: &img}, Raw: el.Attrs}
	case docmodel.ElementTextbox:
		kind = BlockTextbox
		p := a.layoutParagraph(el, frame.Width-2*4, frame.Y+frame.Height-4)
		tb := TextboxLayout{Rect: frame, Content: p, AnchorMode: AnchorInline}
		content = BlockContent{Payload: BlockPayload{Textbox: &tb}, Raw: el.Attrs}
	default:
		kind = BlockRectangle
		content = BlockContent{Payload: BlockPayload{Generic: &GenericLayout{Frame: frame, Data: el.Attrs}}, Raw: el.Attrs}
	}

	return LayoutBlock{Frame: frame, Kind: kind, Content: content, SourceUID: sourceUID(el)}, height, err
}

// isFloating reports whether an element is anchored to the page, a
// margin, or a column rather than flowing with the body cursor.
func isFloating(el docmodel.Element) bool {
	anchor, _ := el.Attrs["anchor"].(string)
	return anchor == "page" || anchor == "margin" || anchor == "column"
}

// materializeOverlay resolves a floating element's absolute frame and
// wraps it as an OverlayBox; unlike materializeBlock it never touches the
// flow cursor.
func (a *Assembler) materializeOverlay(el docmodel.Element, cfg PageConfig) OverlayBox {
	x := floatAttr(el.Attrs, "anchor_x", cfg.BaseMargins.Left)
	y := floatAttr(el.Attrs, "anchor_y", cfg.PageSize.Height-cfg.BaseMargins.Top)
	width := floatAttr(el.Attrs, "width_pt", 72)
	height := floatAttr(el.Attrs, "height_pt", 72)
	frame := geometry.Rect{X: x, Y: y - height, Width: width, Height: height}

	kind := OverlayShape
	switch el.Kind {
	case docmodel.ElementImage:
		kind = OverlayImage
	case docmodel.ElementTextbox:
		kind = OverlayTextbox
	}
	return OverlayBox{Kind: kind, Frame: frame, Payload: el.Attrs}
}

func sourceUID(el docmodel.Element) string {
	if id, ok := el.Attrs["id"].(string); ok {
		return id
	}
	return ""
}

func footnoteRefIDs(el docmodel.Element) []string {
	ids, _ := el.Attrs["footnote_refs"].([]string)
	return ids
}

func endnoteRefIDs(el docmodel.Element) []string {
	ids, _ := el.Attrs["endnote_refs"].([]string)
	return ids
}

func (a *Assembler) measureElementHeight(el docmodel.Element, width float64) (float64, error) {
	switch el.Kind {
	case docmodel.ElementParagraph, docmodel.ElementTextbox:
		p := a.layoutParagraph(el, width, 0)
		return paragraphHeight(p), nil
	case docmodel.ElementTable:
		tbl := a.layoutTable(el, geometry.Rect{Width: width})
		return tbl.Frame.Height, nil
	case docmodel.ElementImage:
		img := a.layoutImage(el, geometry.Rect{Width: width})
		return img.Frame.Height, nil
	default:
		return 20.0, nil
	}
}

func paragraphHeight(p ParagraphLayout) float64 {
	if len(p.Lines) == 0 {
		return p.Style.PadTop + p.Style.PadBottom
	}
	total := 0.0
	for _, l := range p.Lines {
		total += l.Height
	}
	return total + p.Style.PadTop + p.Style.PadBottom
}

func collectText(el docmodel.Element) string {
	if text, ok := el.Attrs["resolved_text"].(string); ok && text != "" {
		return text
	}
	if text, ok := el.Attrs["text"].(string); ok {
		return text
	}
	var b strings.Builder
	for _, c := range el.Children {
		if t, ok := c.Attrs["resolved_text"].(string); ok && t != "" {
			b.WriteString(t)
		} else if t, ok := c.Attrs["text"].(string); ok {
			b.WriteString(t)
		}
	}
	return b.String()
}

func (a *Assembler) layoutImage(el docmodel.Element, frame geometry.Rect) ImageLayout {
	width := floatAttr(el.Attrs, "width_pt", frame.Width)
	height := floatAttr(el.Attrs, "height_pt", width*0.75)
	frame.Width = width
	frame.Height = height
	path, _ := el.Attrs["path"].(string)
	return ImageLayout{Frame: frame, Path: path, PreserveAspect: true, Metadata: el.Attrs}
}

func (a *Assembler) buildFootnoteBlock(page *LayoutPage, ids map[string]bool, footnotes map[string][]docmodel.Element, bodyBottom float64) (LayoutBlock, float64) {
	var lines []ParagraphLine
	cursorY := bodyBottom + footnoteBandPadding
	lineHeight := a.Metrics.LineHeight(defaultFontFamily, defaultFontSize*0.9)
	height := footnoteBandPadding
	for id := range ids {
		for _, el := range footnotes[id] {
			text := collectText(el)
			cursorY += lineHeight
			height += lineHeight
			lines = append(lines, ParagraphLine{BaselineY: cursorY, Height: lineHeight, Items: []InlineBox{{
				Kind: InlineTextRun, Data: map[string]any{"text": text},
			}}})
		}
	}
	frame := geometry.Rect{X: page.Margins.Left, Y: bodyBottom, Width: page.Size.Width - page.Margins.Left - page.Margins.Right, Height: height}
	payload := ParagraphLayout{Lines: lines}
	return LayoutBlock{Frame: frame, Kind: BlockFootnotes, Content: BlockContent{Payload: BlockPayload{Paragraph: &payload}}}, height
}

// appendEndnoteSection appends one trailing page carrying every endnote
// referenced anywhere in the body, rendered as a single BlockEndnotes
// block, mirroring buildFootnoteBlock's layout but collected across the
// whole document instead of reset per page (spec: endnotes "accumulate and
// are rendered as a final section after all body pages").
func (a *Assembler) appendEndnoteSection(u *UnifiedLayout, cfg PageConfig, ids map[string]bool, endnotes map[string][]docmodel.Element) {
	if len(ids) == 0 {
		return
	}
	page := u.NewPage(cfg.PageSize, cfg.BaseMargins)
	_, bodyBottom := a.bodyBounds(cfg, page.Number)
	block, _ := a.buildEndnoteBlock(page, ids, endnotes, bodyBottom)
	_ = u.AddBlock(block)
}

func (a *Assembler) buildEndnoteBlock(page *LayoutPage, ids map[string]bool, endnotes map[string][]docmodel.Element, bodyBottom float64) (LayoutBlock, float64) {
	bodyTop, _ := a.bodyBounds(PageConfig{PageSize: page.Size, BaseMargins: page.Margins}, page.Number)
	var lines []ParagraphLine
	cursorY := page.Size.Height - bodyTop
	lineHeight := a.Metrics.LineHeight(defaultFontFamily, defaultFontSize*0.9)
	height := 0.0
	for id := range ids {
		for _, el := range endnotes[id] {
			text := collectText(el)
			cursorY -= lineHeight
			height += lineHeight
			lines = append(lines, ParagraphLine{BaselineY: cursorY, Height: lineHeight, Items: []InlineBox{{
				Kind: InlineTextRun, Data: map[string]any{"text": text},
			}}})
		}
	}
	frame := geometry.Rect{X: page.Margins.Left, Y: bodyBottom, Width: page.Size.Width - page.Margins.Left - page.Margins.Right, Height: height}
	payload := ParagraphLayout{Lines: lines}
	return LayoutBlock{Frame: frame, Kind: BlockEndnotes, Content: BlockContent{Payload: BlockPayload{Paragraph: &payload}}, PageNumber: page.Number}, height
}

func floatAttr(attrs map[string]any, key string, fallback float64) float64 {
	if v, ok := attrs[key]; ok {
		return toFloat(v)
	}
	return fallback
}

func stringAttr(attrs map[string]any, key, fallback string) string {
	if v, ok := attrs[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolAttr(attrs map[string]any, key string) bool {
	v, _ := attrs[key].(bool)
	return v
}
