package pdfwriter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/quillforge/docpdf/internal/geometry"
	"github.com/quillforge/docpdf/internal/layout"
)

// blockHandler renders one positioned block into a page's content stream.
type blockHandler func(buf *bytes.Buffer, block layout.LayoutBlock, fonts *FontRegistry, images *ImageRegistry, opts Options) error

var dispatchTable = map[layout.BlockKind]blockHandler{
	layout.BlockParagraph:    renderParagraphBlock,
	layout.BlockHeader:       renderParagraphBlock,
	layout.BlockFooter:       renderParagraphBlock,
	layout.BlockFootnotes:    renderParagraphBlock,
	layout.BlockEndnotes:     renderParagraphBlock,
	layout.BlockTextbox:      renderTextboxBlock,
	layout.BlockTable:        renderTableBlock,
	layout.BlockImage:        renderImageBlock,
	layout.BlockDecorator:    renderBoxBlock,
	layout.BlockRectangle:    renderBoxBlock,
	layout.BlockVMLShape:     renderBoxBlock,
	layout.BlockHeaderMarker: renderNothing,
	layout.BlockFooterMarker: renderNothing,
}

// RenderPageContent walks a page's positioned blocks in order and renders
// each one through the dispatcher keyed by its BlockKind, producing the
// page's (uncompressed) content stream. A block whose kind has no
// registered renderer is skipped. Compression happens later, when the
// stream is written as a PDF object.
func RenderPageContent(page layout.LayoutPage, fonts *FontRegistry, images *ImageRegistry, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("q\n")

	ordered := orderByBand(page.Blocks)
	for _, block := range ordered {
		handler, ok := dispatchTable[block.Kind]
		if !ok {
			continue
		}
		if isWatermark(block) {
			fmt.Fprintf(&buf, "q\n/%s gs\n", watermarkGState(block, opts))
		}
		if err := handler(&buf, block, fonts, images, opts); err != nil {
			return nil, fmt.Errorf("pdfwriter: render block %q: %w", block.Kind, err)
		}
		if isWatermark(block) {
			buf.WriteString("Q\n")
		}
	}

	for _, overlay := range page.Overlays {
		renderOverlay(&buf, overlay, images, opts)
	}

	buf.WriteString("Q\n")
	return buf.Bytes(), nil
}

// renderOverlay draws a page-anchored floating element (image, textbox, or
// shape) directly at its already-resolved absolute frame; overlays never
// pass through the band ordering above since they sit outside the flow
// cursor entirely and always draw last, on top of body content.
func renderOverlay(buf *bytes.Buffer, overlay layout.OverlayBox, images *ImageRegistry, opts Options) {
	switch overlay.Kind {
	case layout.OverlayImage:
		path, _ := overlay.Payload["path"].(string)
		data := opts.ImageData[path]
		if len(data) == 0 {
			drawRectStroke(buf, overlay.Frame, 1)
			return
		}
		alias, err := images.Register(data)
		if err != nil {
			drawRectStroke(buf, overlay.Frame, 1)
			return
		}
		fmt.Fprintf(buf, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
			FormatNumber(overlay.Frame.Width), FormatNumber(overlay.Frame.Height),
			FormatNumber(overlay.Frame.X), FormatNumber(overlay.Frame.Y), alias)
	default:
		drawRectStroke(buf, overlay.Frame, 0.75)
	}
}

// band classifies a block for per-page draw ordering: watermarks first
// (so later content draws on top of them), then headers, then body
// content, then footnotes/endnotes, then footers.
func band(b layout.LayoutBlock) int {
	switch {
	case isWatermark(b):
		return 0
	case b.Kind == layout.BlockHeader || b.Kind == layout.BlockHeaderMarker:
		return 1
	case b.Kind == layout.BlockFootnotes || b.Kind == layout.BlockEndnotes:
		return 3
	case b.Kind == layout.BlockFooter || b.Kind == layout.BlockFooterMarker:
		return 4
	default:
		return 2
	}
}

// orderByBand returns a stably-sorted copy of blocks grouped into the
// watermark/header/body/footnotes/footer band order; blocks within the
// same band keep their original relative order.
func orderByBand(blocks []layout.LayoutBlock) []layout.LayoutBlock {
	ordered := make([]layout.LayoutBlock, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool { return band(ordered[i]) < band(ordered[j]) })
	return ordered
}

func isWatermark(b layout.LayoutBlock) bool {
	v, _ := b.Content.Raw["is_watermark"].(bool)
	return v
}

// watermarkGState picks which fixed ExtGState name a watermark block draws
// under: images and VML shapes get their own default opacity, everything
// else falls back to the generic default. The dict itself already folds
// in any Options.WatermarkOpacity override (see watermarkExtGStateDict),
// so the name choice stays the same either way.
func watermarkGState(b layout.LayoutBlock, opts Options) string {
	switch b.Kind {
	case layout.BlockImage:
		return "GSImg"
	case layout.BlockVMLShape:
		return "GSVml"
	default:
		return "GSOther"
	}
}

func renderNothing(*bytes.Buffer, layout.LayoutBlock, *FontRegistry, *ImageRegistry, Options) error {
	return nil
}

func renderParagraphBlock(buf *bytes.Buffer, block layout.LayoutBlock, fonts *FontRegistry, images *ImageRegistry, opts Options) error {
	p := block.Content.Payload.Paragraph
	if p == nil {
		return nil
	}
	renderBoxStyle(buf, block.Frame, p.Style)
	renderParagraph(buf, *p, block.Frame.X, 0, fonts)
	return nil
}

func renderTextboxBlock(buf *bytes.Buffer, block layout.LayoutBlock, fonts *FontRegistry, images *ImageRegistry, opts Options) error {
	tb := block.Content.Payload.Textbox
	if tb == nil {
		return nil
	}
	renderBoxStyle(buf, tb.Rect, tb.Style)
	renderParagraph(buf, tb.Content, tb.Rect.X+4, 0, fonts)
	return nil
}

func renderBoxBlock(buf *bytes.Buffer, block layout.LayoutBlock, fonts *FontRegistry, images *ImageRegistry, opts Options) error {
	renderBoxStyle(buf, block.Frame, block.Style)
	return nil
}

func renderTableBlock(buf *bytes.Buffer, block layout.LayoutBlock, fonts *FontRegistry, images *ImageRegistry, opts Options) error {
	t := block.Content.Payload.Table
	if t == nil {
		return nil
	}
	for _, row := range t.Rows {
		for _, cell := range row {
			renderBoxStyle(buf, cell.Frame, cell.Style)
			drawRectStroke(buf, cell.Frame, 0.5)
			for _, payload := range cell.Blocks {
				if payload.Paragraph == nil {
					continue
				}
				yOffset := cell.Frame.Y + cell.Frame.Height
				renderParagraph(buf, *payload.Paragraph, cell.Frame.X+4, yOffset, fonts)
			}
		}
	}
	for _, gridLine := range t.GridLines {
		_ = gridLine // grid lines beyond per-cell borders are not yet produced by the assembler
	}
	return nil
}

func renderImageBlock(buf *bytes.Buffer, block layout.LayoutBlock, fonts *FontRegistry, images *ImageRegistry, opts Options) error {
	img := block.Content.Payload.Image
	if img == nil {
		return nil
	}
	data := opts.ImageData[img.Path]
	if len(data) == 0 {
		drawRectStroke(buf, img.Frame, 1)
		return nil
	}
	alias, err := images.Register(data)
	if err != nil {
		drawRectStroke(buf, img.Frame, 1)
		return nil //nolint:nilerr // an undecodable image degrades to a placeholder box, it does not fail the page
	}
	fmt.Fprintf(buf, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
		FormatNumber(img.Frame.Width), FormatNumber(img.Frame.Height),
		FormatNumber(img.Frame.X), FormatNumber(img.Frame.Y), alias)
	return nil
}

// renderParagraph draws every line of a paragraph. yOffset shifts
// already-resolved BaselineY values for content (table cells) whose
// lines were measured relative to a local zero instead of the page's
// absolute coordinate space.
func renderParagraph(buf *bytes.Buffer, p layout.ParagraphLayout, originX, yOffset float64, fonts *FontRegistry) {
	for _, line := range p.Lines {
		for _, item := range line.Items {
			text, _ := item.Data["text"].(string)
			if text == "" {
				continue
			}
			family, _ := item.Data["font_family"].(string)
			size, _ := item.Data["font_size"].(float64)
			bold, _ := item.Data["bold"].(bool)
			italic, _ := item.Data["italic"].(bool)
			if size == 0 {
				size = 11
			}

			alias := fonts.ResolveStandard(family, bold, italic)
			fonts.MarkUsed(alias, text)

			x := originX + line.OffsetX + item.X
			y := line.BaselineY + yOffset

			buf.WriteString("BT\n")
			fmt.Fprintf(buf, "/%s %s Tf\n", alias, FormatNumber(size))
			fmt.Fprintf(buf, "1 0 0 1 %s %s Tm\n", FormatNumber(x), FormatNumber(y))
			fmt.Fprintf(buf, "%s Tj\n", EncodeTextString(text))
			buf.WriteString("ET\n")
		}
	}
}

// renderBoxStyle fills a background and strokes requested border edges
// for a frame, if the style asks for either.
func renderBoxStyle(buf *bytes.Buffer, frame geometry.Rect, style layout.BoxStyle) {
	if style.Background != nil {
		fmt.Fprintf(buf, "q\n%s %s %s rg\n%s %s %s %s re\nf\nQ\n",
			FormatNumber(style.Background.R), FormatNumber(style.Background.G), FormatNumber(style.Background.B),
			FormatNumber(frame.X), FormatNumber(frame.Y), FormatNumber(frame.Width), FormatNumber(frame.Height))
	}
	for _, b := range style.Borders {
		drawBorderEdge(buf, frame, b)
	}
}

func drawBorderEdge(buf *bytes.Buffer, frame geometry.Rect, b layout.BorderSpec) {
	if b.Width <= 0 {
		return
	}
	var x1, y1, x2, y2 float64
	switch b.Side {
	case layout.SideTop:
		x1, y1, x2, y2 = frame.X, frame.Y+frame.Height, frame.X+frame.Width, frame.Y+frame.Height
	case layout.SideBottom:
		x1, y1, x2, y2 = frame.X, frame.Y, frame.X+frame.Width, frame.Y
	case layout.SideLeft:
		x1, y1, x2, y2 = frame.X, frame.Y, frame.X, frame.Y+frame.Height
	case layout.SideRight:
		x1, y1, x2, y2 = frame.X+frame.Width, frame.Y, frame.X+frame.Width, frame.Y+frame.Height
	}
	fmt.Fprintf(buf, "q\n%s %s %s RG\n%s w\n%s %s m\n%s %s l\nS\nQ\n",
		FormatNumber(b.Color.R), FormatNumber(b.Color.G), FormatNumber(b.Color.B),
		FormatNumber(b.Width), FormatNumber(x1), FormatNumber(y1), FormatNumber(x2), FormatNumber(y2))
}

func drawRectStroke(buf *bytes.Buffer, frame geometry.Rect, width float64) {
	fmt.Fprintf(buf, "q\n%s w\n0 0 0 RG\n%s %s %s %s re\nS\nQ\n",
		FormatNumber(width), FormatNumber(frame.X), FormatNumber(frame.Y), FormatNumber(frame.Width), FormatNumber(frame.Height))
}
