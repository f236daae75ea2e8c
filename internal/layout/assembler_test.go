package layout

import (
	"strings"
	"testing"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

// cellEl and rowEl build table grid elements the way structure.go's body
// parser would hand them to layoutTable: the cell/row Kind itself is never
// read by layoutTable, only the "cells"/"rows" attrs and the row's
// grid_span/vertical_merge/cant_split/is_header_row attrs.
func cellEl(text string, attrs map[string]any) docmodel.Element {
	merged := map[string]any{}
	for k, v := range attrs {
		merged[k] = v
	}
	return docmodel.Element{Attrs: merged, Children: []docmodel.Element{paragraphEl(text)}}
}

func rowEl(cells []docmodel.Element, attrs map[string]any) docmodel.Element {
	merged := map[string]any{"cells": cells}
	for k, v := range attrs {
		merged[k] = v
	}
	return docmodel.Element{Attrs: merged}
}

func tableEl(rows []docmodel.Element) docmodel.Element {
	return docmodel.Element{Kind: docmodel.ElementTable, Attrs: map[string]any{"rows": rows}}
}

func TestLayoutParagraphAlignment(t *testing.T) {
	a := NewAssembler(nil)
	width := 200.0

	cases := []struct {
		name  string
		align string
	}{
		{"left", "left"},
		{"right", "right"},
		{"center", "center"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": "hi", "alignment": c.align}}
			p := a.layoutParagraph(el, width, 700)
			if len(p.Lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(p.Lines))
			}
			switch c.align {
			case "left":
				if p.Lines[0].OffsetX != 0 {
					t.Errorf("left align OffsetX = %v, want 0", p.Lines[0].OffsetX)
				}
			case "right", "center":
				if p.Lines[0].OffsetX <= 0 {
					t.Errorf("%s align OffsetX = %v, want > 0", c.align, p.Lines[0].OffsetX)
				}
			}
		})
	}
}

func TestLayoutParagraphJustifyNeverStretchesLastLine(t *testing.T) {
	a := NewAssembler(nil)
	text := strings.Repeat("word ", 40)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": text, "alignment": "justify"}}
	p := a.layoutParagraph(el, 150, 700)
	if len(p.Lines) < 2 {
		t.Fatalf("expected the text to wrap across multiple lines, got %d", len(p.Lines))
	}
	last := p.Lines[len(p.Lines)-1]
	if len(last.Items) >= 2 {
		gap := last.Items[1].X - (last.Items[0].X + last.Items[0].Width)
		first := p.Lines[0]
		var firstGap float64
		if len(first.Items) >= 2 {
			firstGap = first.Items[1].X - (first.Items[0].X + first.Items[0].Width)
		}
		if gap > firstGap+0.01 {
			t.Errorf("last line appears stretched: gap=%v firstLineGap=%v", gap, firstGap)
		}
	}
}

func TestLayoutParagraphIndentationAndMarker(t *testing.T) {
	a := NewAssembler(nil)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{
		"text":             "item text",
		"indent_left":      20.0,
		"indent_hanging":   15.0,
		"numbering_marker": "1.",
	}}
	p := a.layoutParagraph(el, 200, 700)
	if len(p.Lines) == 0 {
		t.Fatal("expected at least one line")
	}
	first := p.Lines[0]
	if first.OffsetX != 20.0 {
		t.Errorf("first line OffsetX = %v, want indent_left 20", first.OffsetX)
	}
	if len(first.Items) < 2 {
		t.Fatalf("expected marker + text items, got %d", len(first.Items))
	}
	markerText, _ := first.Items[0].Data["text"].(string)
	if markerText != "1." {
		t.Errorf("first item text = %q, want marker %q", markerText, "1.")
	}
	if first.Items[1].X <= first.Items[0].Width {
		t.Errorf("text item X = %v, want > marker width %v", first.Items[1].X, first.Items[0].Width)
	}
}

func TestLayoutParagraphTabStops(t *testing.T) {
	a := NewAssembler(nil)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": "a\tb"}}
	p := a.layoutParagraph(el, 400, 700)
	if len(p.Lines) != 1 || len(p.Lines[0].Items) != 2 {
		t.Fatalf("expected one line with two items, got %+v", p.Lines)
	}
	if p.Lines[0].Items[1].X < defaultTabStop {
		t.Errorf("second item X = %v, want >= default tab stop %v", p.Lines[0].Items[1].X, defaultTabStop)
	}
}

func TestLayoutParagraphHardBreak(t *testing.T) {
	a := NewAssembler(nil)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": "line one\nline two"}}
	p := a.layoutParagraph(el, 400, 700)
	if len(p.Lines) != 2 {
		t.Fatalf("expected a hard break to force two lines, got %d", len(p.Lines))
	}
}

func TestLayoutParagraphHyperlinkGrouping(t *testing.T) {
	a := NewAssembler(nil)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Children: []docmodel.Element{
		{Kind: docmodel.ElementHyperlink, Attrs: map[string]any{"url": "https://example.com"}, Children: []docmodel.Element{
			{Attrs: map[string]any{"text": "click here"}},
		}},
	}}
	p := a.layoutParagraph(el, 400, 700)
	if len(p.Hyperlinks) != 1 {
		t.Fatalf("expected 1 grouped hyperlink, got %d", len(p.Hyperlinks))
	}
	if p.Hyperlinks[0].URL != "https://example.com" {
		t.Errorf("hyperlink URL = %q", p.Hyperlinks[0].URL)
	}
}

func TestLayoutTableGridSpanAndHeaderRepeat(t *testing.T) {
	a := NewAssembler(nil)
	rows := []docmodel.Element{
		rowEl([]docmodel.Element{cellEl("Name", nil), cellEl("Value", nil)}, map[string]any{"is_header_row": true}),
		rowEl([]docmodel.Element{cellEl("spanning", map[string]any{"grid_span": 2.0})}, nil),
	}
	tbl := a.layoutTable(tableEl(rows), geometry.Rect{Width: 200})
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if len(tbl.Rows[1]) != 1 {
		t.Fatalf("expected spanning row to collapse to 1 cell, got %d", len(tbl.Rows[1]))
	}
	if tbl.Rows[1][0].Frame.Width <= tbl.Rows[0][0].Frame.Width {
		t.Errorf("spanning cell width %v should exceed a single column's width %v", tbl.Rows[1][0].Frame.Width, tbl.Rows[0][0].Frame.Width)
	}
	if !tbl.RowMeta[0].IsHeaderRow {
		t.Error("expected first row's RowMeta to carry IsHeaderRow")
	}
}

func TestLayoutTableVerticalMerge(t *testing.T) {
	a := NewAssembler(nil)
	rows := []docmodel.Element{
		rowEl([]docmodel.Element{cellEl("merged", map[string]any{"vertical_merge": "restart"}), cellEl("r1c2", nil)}, nil),
		rowEl([]docmodel.Element{cellEl("", map[string]any{"vertical_merge": "continue"}), cellEl("r2c2", nil)}, nil),
	}
	tbl := a.layoutTable(tableEl(rows), geometry.Rect{Width: 200})
	if len(tbl.Rows[1]) != 1 {
		t.Fatalf("expected the continuation row to carry only its own cell, got %d", len(tbl.Rows[1]))
	}
	mergedCell := tbl.Rows[0][0]
	singleRowHeight := tbl.Rows[1][0].Frame.Height
	if mergedCell.Frame.Height <= singleRowHeight {
		t.Errorf("merged cell height %v should exceed a single row's height %v", mergedCell.Frame.Height, singleRowHeight)
	}
}

func TestAssemblePageBreakBefore(t *testing.T) {
	a := NewAssembler(nil)
	structure := &LayoutStructure{
		Body: []docmodel.Element{
			paragraphEl("first"),
			{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": "second", "page_break_before": true}},
		},
		Sections: []PageConfig{{
			PageSize:    geometry.Size{Width: 612, Height: 792},
			BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
		}},
	}
	unified, err := a.Assemble(structure)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(unified.Pages) != 2 {
		t.Fatalf("expected page_break_before to force a second page, got %d pages", len(unified.Pages))
	}
	if len(unified.Pages[0].Blocks) != 1 || len(unified.Pages[1].Blocks) != 1 {
		t.Errorf("expected one block per page, got %d and %d", len(unified.Pages[0].Blocks), len(unified.Pages[1].Blocks))
	}
}

func TestPlaceParagraphKeepTogetherDefersWholeBlock(t *testing.T) {
	a := NewAssembler(nil)
	cfg := PageConfig{
		PageSize:    geometry.Size{Width: 612, Height: 792},
		BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
	}
	text := strings.Repeat("kept together paragraph content that must not split. ", 10)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": text, "keep_together": true}}

	full := a.layoutParagraph(el, 468, 720)
	fullHeight := paragraphHeight(full)
	avail := fullHeight / 2 // too little room for the whole paragraph

	block, height, remainder := a.placeParagraph(el, cfg, 468, 720, avail, false, true)
	if block.Kind != "" || height != 0 || remainder == nil {
		t.Fatalf("expected keep_together to defer the whole block, got block.Kind=%q height=%v remainder=%v", block.Kind, height, remainder)
	}
}

func TestPlaceParagraphSplitsRespectingWidowOrphanFloor(t *testing.T) {
	a := NewAssembler(nil)
	cfg := PageConfig{
		PageSize:    geometry.Size{Width: 612, Height: 792},
		BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
	}
	text := strings.Repeat("this paragraph has many short lines of wrapped text content. ", 20)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": text}}

	full := a.layoutParagraph(el, 468, 720)
	if len(full.Lines) < 2*minKeepLines {
		t.Fatalf("test text too short to exercise a mid-paragraph split, got %d lines", len(full.Lines))
	}
	lineHeight := full.Lines[0].Height
	avail := lineHeight * float64(minKeepLines+1) // room for a few lines, not all

	block, height, remainder := a.placeParagraph(el, cfg, 468, 720, avail, false, false)
	if block.Kind == "" {
		t.Fatal("expected a partial placement, got none")
	}
	if remainder == nil {
		t.Fatal("expected a remainder paragraph continuing onto the next page")
	}
	if height <= 0 || height > avail+0.01 {
		t.Errorf("placed height %v should fit within avail %v", height, avail)
	}
	cont := a.layoutParagraph(*remainder, 468, 720)
	if len(cont.Lines) < minKeepLines {
		t.Errorf("continuation has %d lines, want at least the widow/orphan floor of %d", len(cont.Lines), minKeepLines)
	}
}

func TestPlaceParagraphTooTallForFreshPageDoesNotSplit(t *testing.T) {
	a := NewAssembler(nil)
	cfg := PageConfig{
		PageSize:    geometry.Size{Width: 612, Height: 792},
		BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
	}
	text := strings.Repeat("overflow content that is taller than the whole page body area. ", 40)
	el := docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": text}}

	block, height, remainder := a.placeParagraph(el, cfg, 468, 720, 10, true, false)
	if block.Kind == "" || remainder != nil {
		t.Fatalf("expected the whole (unsplit) paragraph placed when already at page top, got block.Kind=%q remainder=%v", block.Kind, remainder)
	}
	if height <= 10 {
		t.Errorf("expected the full overflowing height %v to exceed avail 10 when forced onto a fresh page", height)
	}
}

func TestAssembleFloatingElementBecomesOverlay(t *testing.T) {
	a := NewAssembler(nil)
	structure := &LayoutStructure{
		Body: []docmodel.Element{
			{Kind: docmodel.ElementImage, Attrs: map[string]any{
				"anchor": "page", "anchor_x": 100.0, "anchor_y": 700.0, "width_pt": 50.0, "height_pt": 50.0, "path": "media/image1.png",
			}},
			paragraphEl("body text"),
		},
		Sections: []PageConfig{{
			PageSize:    geometry.Size{Width: 612, Height: 792},
			BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
		}},
	}
	unified, err := a.Assemble(structure)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(unified.Pages[0].Overlays) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(unified.Pages[0].Overlays))
	}
	if len(unified.Pages[0].Blocks) != 1 {
		t.Errorf("expected the floating image to not consume a flow block, got %d blocks", len(unified.Pages[0].Blocks))
	}
}

func TestAssembleAccumulatesEndnotesIntoTrailingSection(t *testing.T) {
	a := NewAssembler(nil)
	structure := &LayoutStructure{
		Body: []docmodel.Element{
			{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": "body", "endnote_refs": []string{"e1"}}},
		},
		Endnotes: map[string][]docmodel.Element{
			"e1": {{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": "first endnote"}}},
		},
		Sections: []PageConfig{{
			PageSize:    geometry.Size{Width: 612, Height: 792},
			BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
		}},
	}
	unified, err := a.Assemble(structure)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	last := unified.Pages[len(unified.Pages)-1]
	foundEndnotes := false
	for _, b := range last.Blocks {
		if b.Kind == BlockEndnotes {
			foundEndnotes = true
		}
	}
	if !foundEndnotes {
		t.Error("expected a trailing BlockEndnotes block once endnotes were referenced")
	}
}

func TestSelectVariantKeyNeverReusesFirstPastPageOne(t *testing.T) {
	got := selectVariantKey([]string{"first"}, 2)
	if got != "default" {
		t.Errorf("selectVariantKey([\"first\"], 2) = %q, want default (no reuse past page one)", got)
	}
}

func TestResolvePlaceholdersUsesCallerMapping(t *testing.T) {
	elements := []docmodel.Element{
		{Kind: docmodel.ElementFieldSimple, Attrs: map[string]any{"field_code": "CLIENT_NAME"}},
	}
	resolvePlaceholders(elements, 1, map[string]string{"CLIENT_NAME": "Acme Corp"})
	if got, _ := elements[0].Attrs["resolved_text"].(string); got != "Acme Corp" {
		t.Errorf("resolved_text = %q, want %q", got, "Acme Corp")
	}
}

func TestResolveLiveFieldsDoesNotMutateSharedSource(t *testing.T) {
	shared := docmodel.Element{Kind: docmodel.ElementFieldSimple, Attrs: map[string]any{"field_code": "PAGE"}}
	_ = resolveLiveFields(shared, 3, 10)
	if _, ok := shared.Attrs["resolved_text"]; ok {
		t.Error("resolveLiveFields must not mutate the shared source element's Attrs")
	}
	clone := resolveLiveFields(shared, 3, 10)
	if got, _ := clone.Attrs["resolved_text"].(string); got != "3" {
		t.Errorf("resolved_text = %q, want page number 3", got)
	}
}
