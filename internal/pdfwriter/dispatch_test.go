package pdfwriter

import (
	"strings"
	"testing"

	"github.com/quillforge/docpdf/internal/geometry"
	"github.com/quillforge/docpdf/internal/layout"
)

func paragraphBlock(text string) layout.LayoutBlock {
	p := layout.ParagraphLayout{
		Lines: []layout.ParagraphLine{
			{
				BaselineY: 700,
				Height:    14,
				Items: []layout.InlineBox{
					{Kind: layout.InlineTextRun, X: 0, Data: map[string]any{
						"text": text, "font_family": "Arial", "font_size": 12.0,
					}},
				},
			},
		},
	}
	return layout.LayoutBlock{
		Kind:  layout.BlockParagraph,
		Frame: geometry.Rect{X: 72, Y: 700, Width: 400, Height: 14},
		Content: layout.BlockContent{
			Payload: layout.BlockPayload{Paragraph: &p},
		},
	}
}

func TestRenderPageContentDrawsParagraphText(t *testing.T) {
	page := layout.LayoutPage{
		Number: 1,
		Size:   geometry.Size{Width: 612, Height: 792},
		Blocks: []layout.LayoutBlock{paragraphBlock("Hello, world")},
	}
	stream, err := RenderPageContent(page, NewFontRegistry(), NewImageRegistry(), Options{})
	if err != nil {
		t.Fatalf("RenderPageContent: %v", err)
	}
	out := string(stream)
	if !strings.Contains(out, "BT") || !strings.Contains(out, "ET") {
		t.Errorf("content stream missing text object delimiters: %s", out)
	}
	if !strings.Contains(out, "(Hello, world) Tj") {
		t.Errorf("content stream missing expected text-show operator: %s", out)
	}
}

func TestRenderPageContentSkipsUnknownBlockErrors(t *testing.T) {
	page := layout.LayoutPage{
		Blocks: []layout.LayoutBlock{{Kind: layout.BlockKind("made_up_kind")}},
	}
	stream, err := RenderPageContent(page, NewFontRegistry(), NewImageRegistry(), Options{})
	if err != nil {
		t.Fatalf("expected an unregistered block kind to be skipped, got error: %v", err)
	}
	if string(stream) != "q\nQ\n" {
		t.Errorf("expected nothing drawn for an unregistered block kind, got: %s", stream)
	}
}

func TestRenderPageContentHeaderMarkerIsNoOp(t *testing.T) {
	page := layout.LayoutPage{
		Blocks: []layout.LayoutBlock{{Kind: layout.BlockHeaderMarker}},
	}
	stream, err := RenderPageContent(page, NewFontRegistry(), NewImageRegistry(), Options{})
	if err != nil {
		t.Fatalf("RenderPageContent: %v", err)
	}
	if strings.Contains(string(stream), "BT") {
		t.Error("header marker block should not draw anything")
	}
}

func TestOrderByBandPutsWatermarksFirstAndFootersLast(t *testing.T) {
	footer := layout.LayoutBlock{Kind: layout.BlockFooter}
	body := layout.LayoutBlock{Kind: layout.BlockParagraph}
	watermark := layout.LayoutBlock{
		Kind:    layout.BlockImage,
		Content: layout.BlockContent{Raw: map[string]any{"is_watermark": true}},
	}
	header := layout.LayoutBlock{Kind: layout.BlockHeader}

	ordered := orderByBand([]layout.LayoutBlock{footer, body, watermark, header})
	if ordered[0].Kind != layout.BlockImage || !isWatermark(ordered[0]) {
		t.Fatalf("expected the watermark first, got band order starting with %q", ordered[0].Kind)
	}
	if ordered[len(ordered)-1].Kind != layout.BlockFooter {
		t.Fatalf("expected the footer last, got %q", ordered[len(ordered)-1].Kind)
	}
}

func TestRenderPageContentWrapsWatermarkInOpacityGState(t *testing.T) {
	img := layout.ImageLayout{Frame: geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}, Path: "media/wm.png"}
	watermark := layout.LayoutBlock{
		Kind:    layout.BlockImage,
		Frame:   img.Frame,
		Content: layout.BlockContent{Payload: layout.BlockPayload{Image: &img}, Raw: map[string]any{"is_watermark": true}},
	}
	page := layout.LayoutPage{Blocks: []layout.LayoutBlock{watermark}}
	stream, err := RenderPageContent(page, NewFontRegistry(), NewImageRegistry(), Options{})
	if err != nil {
		t.Fatalf("RenderPageContent: %v", err)
	}
	if !strings.Contains(string(stream), "/GSImg gs") {
		t.Errorf("expected the watermark image to be wrapped with the GSImg ExtGState, got: %s", stream)
	}
}

func TestRenderImageBlockFallsBackToPlaceholderWithoutBytes(t *testing.T) {
	img := layout.ImageLayout{Frame: geometry.Rect{X: 10, Y: 10, Width: 100, Height: 50}, Path: "media/missing.png"}
	block := layout.LayoutBlock{
		Kind:    layout.BlockImage,
		Frame:   img.Frame,
		Content: layout.BlockContent{Payload: layout.BlockPayload{Image: &img}},
	}
	page := layout.LayoutPage{Blocks: []layout.LayoutBlock{block}}
	stream, err := RenderPageContent(page, NewFontRegistry(), NewImageRegistry(), Options{})
	if err != nil {
		t.Fatalf("RenderPageContent: %v", err)
	}
	out := string(stream)
	if !strings.Contains(out, "re") || !strings.Contains(out, "S") {
		t.Errorf("expected a stroked placeholder rectangle, got: %s", out)
	}
	if strings.Contains(out, "Do") {
		t.Error("should not emit a Do operator when no image bytes were resolved")
	}
}
