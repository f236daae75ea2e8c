package layout

import (
	"strings"

	"github.com/quillforge/docpdf/internal/docmodel"
)

// defaultTabStop is the fallback tab grid (0.5in) used when a paragraph
// carries no explicit tab_stops attr.
const defaultTabStop = 36.0
const markerGap = 4.0

// paragraphRun is one styled, unbreakable span of text produced by
// flattening a paragraph's children (runs, hyperlinks, breaks).
type paragraphRun struct {
	text       string
	fontFamily string
	fontSize   float64
	bold       bool
	italic     bool
	hyperlink  string
}

// paragraphToken is one unit the line-wrapper consumes: a word-run, a tab
// (advances to the next tab stop), or a hard break (forces a new line).
type paragraphToken struct {
	run     paragraphRun
	isTab   bool
	isBreak bool
}

// layoutParagraph resolves a paragraph element into a ParagraphLayout:
// alignment, indentation (including a hanging/first-line split and list
// marker width subtraction), hyperlink run grouping, tab stops, and hard
// breaks are all realized as concrete line geometry here, per the Layout
// Assembler's paragraph algorithm; the PDF Compiler only ever reads back
// the resulting ParagraphLine.OffsetX/InlineBox.X values.
func (a *Assembler) layoutParagraph(el docmodel.Element, width, topY float64) ParagraphLayout {
	if lines, ok := el.Attrs["_continuation_lines"].([]ParagraphLine); ok {
		hyperlinks, _ := el.Attrs["_continuation_hyperlinks"].([]HyperlinkRef)
		return ParagraphLayout{Lines: rebaseLines(lines, topY), Hyperlinks: hyperlinks, Metadata: el.Attrs}
	}

	fontSize := floatAttr(el.Attrs, "font_size", defaultFontSize)
	fontFamily := stringAttr(el.Attrs, "font_family", defaultFontFamily)
	bold := boolAttr(el.Attrs, "bold")
	italic := boolAttr(el.Attrs, "italic")
	align := stringAttr(el.Attrs, "alignment", "left")

	indentLeft := floatAttr(el.Attrs, "indent_left", 0)
	indentRight := floatAttr(el.Attrs, "indent_right", 0)
	indentFirstLine := floatAttr(el.Attrs, "indent_first_line", 0)
	indentHanging := floatAttr(el.Attrs, "indent_hanging", 0)
	tabStops, _ := el.Attrs["tab_stops"].([]float64)

	marker, _ := el.Attrs["numbering_marker"].(string)
	markerTextWidth := 0.0
	if marker != "" {
		markerTextWidth = a.Metrics.MeasureText(marker, fontFamily, fontSize, bold, italic)
	}
	markerWidth := 0.0
	if markerTextWidth > 0 {
		markerWidth = markerTextWidth + markerGap
	}

	contWidth := nonNegative(width - indentLeft - indentHanging - indentRight)
	firstWidth := nonNegative(width - indentLeft - indentFirstLine - indentRight - markerWidth)

	tokens := flattenRuns(el, fontFamily, fontSize, bold, italic)
	rawLines := wrapParagraphTokens(tokens, firstWidth, contWidth, tabStops, a.Metrics)

	lineHeight := a.Metrics.LineHeight(fontFamily, fontSize)
	var lines []ParagraphLine
	var hyperlinks []HyperlinkRef
	cursorY := topY
	for idx, items := range rawLines {
		cursorY -= lineHeight
		isFirst := idx == 0
		lineWidth := contWidth
		baseIndent := indentLeft + indentHanging
		if isFirst {
			lineWidth = firstWidth
			baseIndent = indentLeft + indentFirstLine
		}
		offsetX, resolved := applyAlignment(items, lineWidth, align, idx == len(rawLines)-1)

		if isFirst && markerWidth > 0 {
			resolved = prependMarker(resolved, marker, markerTextWidth, markerWidth, fontFamily, fontSize, bold, italic)
		}

		hyperlinks = append(hyperlinks, groupHyperlinkRuns(resolved)...)

		lines = append(lines, ParagraphLine{
			BaselineY:      cursorY,
			Height:         lineHeight,
			Items:          resolved,
			OffsetX:        baseIndent + offsetX,
			AvailableWidth: lineWidth,
		})
	}
	if len(lines) == 0 {
		cursorY -= lineHeight
		lines = append(lines, ParagraphLine{BaselineY: cursorY, Height: lineHeight, AvailableWidth: contWidth, OffsetX: indentLeft})
	}

	return ParagraphLayout{Lines: lines, Hyperlinks: mergeAdjacentHyperlinks(hyperlinks), Metadata: el.Attrs}
}

// groupHyperlinkRuns collapses consecutive inline items sharing the same
// hyperlink URL (as produced by wrapParagraphTokens, one InlineBox per word)
// into a single HyperlinkRef per run of same-URL items within one line, so a
// multi-word link surfaces as one reference instead of one per word.
func groupHyperlinkRuns(items []InlineBox) []HyperlinkRef {
	var refs []HyperlinkRef
	var cur *HyperlinkRef
	for _, it := range items {
		url, _ := it.Data["hyperlink"].(string)
		if url == "" {
			cur = nil
			continue
		}
		text, _ := it.Data["text"].(string)
		if cur != nil && cur.URL == url {
			cur.Text += " " + text
			continue
		}
		refs = append(refs, HyperlinkRef{URL: url, Text: text})
		cur = &refs[len(refs)-1]
	}
	return refs
}

// mergeAdjacentHyperlinks joins a link's per-line groups back together when
// wrapParagraphTokens happened to break the line in the middle of it, so a
// hyperlink that spans a line wrap still surfaces as one HyperlinkRef.
func mergeAdjacentHyperlinks(refs []HyperlinkRef) []HyperlinkRef {
	if len(refs) < 2 {
		return refs
	}
	out := refs[:1]
	for _, r := range refs[1:] {
		last := &out[len(out)-1]
		if last.URL == r.URL {
			last.Text += " " + r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

func prependMarker(items []InlineBox, marker string, textWidth, fullWidth float64, fontFamily string, fontSize float64, bold, italic bool) []InlineBox {
	markerBox := InlineBox{
		Kind:    InlineTextRun,
		Width:   textWidth,
		Ascent:  fontSize * 0.8,
		Descent: fontSize * 0.2,
		Data: map[string]any{
			"text": marker, "font_family": fontFamily, "font_size": fontSize,
			"bold": bold, "italic": italic,
		},
	}
	shifted := make([]InlineBox, 0, len(items)+1)
	shifted = append(shifted, markerBox)
	for _, it := range items {
		it.X += fullWidth
		shifted = append(shifted, it)
	}
	return shifted
}

// rebaseLines repositions a split paragraph's already-wrapped continuation
// lines so the first of them sits just below topY, preserving their
// relative spacing (BaselineY deltas) rather than re-running line
// breaking.
func rebaseLines(lines []ParagraphLine, topY float64) []ParagraphLine {
	if len(lines) == 0 {
		return lines
	}
	shift := (topY - lines[0].Height) - lines[0].BaselineY
	out := make([]ParagraphLine, len(lines))
	for i, l := range lines {
		l.BaselineY += shift
		out[i] = l
	}
	return out
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// flattenRuns walks a paragraph's children into a flat token stream,
// resolving ElementHyperlink grouping and ElementBreak hard breaks. A
// paragraph with no children falls back to a single run built from its own
// text attrs (the shape simple callers that only ever set Attrs["text"]
// use); an embedded "\n" in that text is read back as a hard break since
// the duck-typed model has no dedicated node for it in that case.
func flattenRuns(el docmodel.Element, fontFamily string, fontSize float64, bold, italic bool) []paragraphToken {
	if len(el.Children) == 0 {
		text := collectText(el)
		return splitHardBreaks(text, fontFamily, fontSize, bold, italic, "")
	}
	var tokens []paragraphToken
	for _, child := range el.Children {
		tokens = append(tokens, flattenChild(child, fontFamily, fontSize, bold, italic, "")...)
	}
	return tokens
}

func flattenChild(el docmodel.Element, fontFamily string, fontSize float64, bold, italic bool, hyperlink string) []paragraphToken {
	ff := stringAttr(el.Attrs, "font_family", fontFamily)
	fs := floatAttr(el.Attrs, "font_size", fontSize)
	b := bold || boolAttr(el.Attrs, "bold")
	i := italic || boolAttr(el.Attrs, "italic")

	switch el.Kind {
	case docmodel.ElementBreak:
		return []paragraphToken{{isBreak: true}}
	case docmodel.ElementHyperlink:
		link := hyperlink
		if url := stringAttr(el.Attrs, "url", ""); url != "" {
			link = url
		} else if url := stringAttr(el.Attrs, "target", ""); url != "" {
			link = url
		}
		if len(el.Children) == 0 {
			return splitHardBreaks(collectText(el), ff, fs, b, i, link)
		}
		var tokens []paragraphToken
		for _, c := range el.Children {
			tokens = append(tokens, flattenChild(c, ff, fs, b, i, link)...)
		}
		return tokens
	default:
		if len(el.Children) > 0 {
			var tokens []paragraphToken
			for _, c := range el.Children {
				tokens = append(tokens, flattenChild(c, ff, fs, b, i, hyperlink)...)
			}
			return tokens
		}
		text, _ := el.Attrs["text"].(string)
		if resolved, ok := el.Attrs["resolved_text"].(string); ok && resolved != "" {
			text = resolved
		}
		return splitHardBreaks(text, ff, fs, b, i, hyperlink)
	}
}

func splitHardBreaks(text, fontFamily string, fontSize float64, bold, italic bool, hyperlink string) []paragraphToken {
	if text == "" {
		return nil
	}
	segments := strings.Split(text, "\n")
	var tokens []paragraphToken
	for li, segment := range segments {
		if li > 0 {
			tokens = append(tokens, paragraphToken{isBreak: true})
		}
		tokens = append(tokens, tokenizeWords(segment, fontFamily, fontSize, bold, italic, hyperlink)...)
	}
	return tokens
}

func tokenizeWords(text, fontFamily string, fontSize float64, bold, italic bool, hyperlink string) []paragraphToken {
	var tokens []paragraphToken
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tokens = append(tokens, paragraphToken{run: paragraphRun{
			text: word.String(), fontFamily: fontFamily, fontSize: fontSize,
			bold: bold, italic: italic, hyperlink: hyperlink,
		}})
		word.Reset()
	}
	for _, r := range text {
		switch r {
		case '\t':
			flush()
			tokens = append(tokens, paragraphToken{isTab: true})
		case ' ':
			flush()
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// wrapParagraphTokens lays a token stream into lines that fit within
// firstLineWidth (line 0) or contWidth (every other line), resolving tab
// stops and inserting inter-word spacing as it goes. Each returned line is
// a slice of InlineBox already positioned relative to its own line's left
// edge (X = 0); alignment is applied afterward by applyAlignment.
func wrapParagraphTokens(tokens []paragraphToken, firstLineWidth, contWidth float64, tabStops []float64, metrics MetricsProvider) [][]InlineBox {
	if len(tokens) == 0 {
		return nil
	}
	var lines [][]InlineBox
	var current []InlineBox
	x := 0.0
	lineWidth := firstLineWidth

	newLine := func() {
		lines = append(lines, current)
		current = nil
		x = 0
		lineWidth = contWidth
	}

	for _, tok := range tokens {
		switch {
		case tok.isBreak:
			newLine()
		case tok.isTab:
			next := nextTabStop(x, tabStops)
			if next > lineWidth && len(current) > 0 {
				newLine()
				next = nextTabStop(0, tabStops)
			}
			x = next
		default:
			w := metrics.MeasureText(tok.run.text, tok.run.fontFamily, tok.run.fontSize, tok.run.bold, tok.run.italic)
			gap := 0.0
			if len(current) > 0 {
				gap = metrics.MeasureText(" ", tok.run.fontFamily, tok.run.fontSize, tok.run.bold, tok.run.italic)
			}
			if x+gap+w > lineWidth && len(current) > 0 {
				newLine()
				gap = 0
			}
			placeX := x + gap
			current = append(current, InlineBox{
				Kind:    InlineTextRun,
				X:       placeX,
				Width:   w,
				Ascent:  tok.run.fontSize * 0.8,
				Descent: tok.run.fontSize * 0.2,
				Data: map[string]any{
					"text": tok.run.text, "font_family": tok.run.fontFamily,
					"font_size": tok.run.fontSize, "bold": tok.run.bold, "italic": tok.run.italic,
					"hyperlink": tok.run.hyperlink,
				},
			})
			x = placeX + w
		}
	}
	lines = append(lines, current)
	return lines
}

func nextTabStop(x float64, tabStops []float64) float64 {
	for _, s := range tabStops {
		if s > x {
			return s
		}
	}
	n := float64(int(x/defaultTabStop) + 1)
	return n * defaultTabStop
}

// applyAlignment returns the line's OffsetX for left/right/center/justify
// and, for justify, a copy of items with the extra width distributed
// across inter-word gaps (the last line of a paragraph is never
// justified, matching WordprocessingML's own rule).
func applyAlignment(items []InlineBox, availableWidth float64, align string, isLastLine bool) (float64, []InlineBox) {
	if len(items) == 0 {
		return 0, items
	}
	used := items[len(items)-1].X + items[len(items)-1].Width
	extra := nonNegative(availableWidth - used)

	switch align {
	case "right":
		return extra, items
	case "center":
		return extra / 2, items
	case "justify":
		if isLastLine || len(items) < 2 || extra == 0 {
			return 0, items
		}
		perGap := extra / float64(len(items)-1)
		out := make([]InlineBox, len(items))
		shift := 0.0
		for i, it := range items {
			it.X += shift
			out[i] = it
			shift += perGap
		}
		return 0, out
	default:
		return 0, items
	}
}
