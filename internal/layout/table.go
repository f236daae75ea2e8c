package layout

import (
	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

// pendingMerge tracks a vertically-merged cell's accumulated height while
// later rows' "continue" cells are folded into it, by position in the
// already-built Rows slice.
type pendingMerge struct {
	rowIdx, cellIdx int
	height          float64
}

// layoutTable resolves a table's grid into a TableLayout: explicit column
// widths (falling back to an even split weighted by grid_span), horizontal
// spans, vertical merges (a "continue" cell contributes its row's height to
// the "restart" cell above it rather than drawing its own box), and
// per-cell margins/borders/shading. Row-level cant_split/is_header_row
// hints are carried through as RowMeta for the Layout Assembler's page
// packing to consult when a table must split across a page boundary.
func (a *Assembler) layoutTable(el docmodel.Element, frame geometry.Rect) TableLayout {
	rowsAttr, _ := el.Attrs["rows"].([]docmodel.Element)
	colWidths := resolveColumnWidths(el, rowsAttr)
	colCount := len(colWidths)
	scaled := scaleColumnWidths(colWidths, frame.Width)
	colOffsets := make([]float64, colCount+1)
	for i, w := range scaled {
		colOffsets[i+1] = colOffsets[i] + w
	}

	openMerges := map[int]*pendingMerge{}
	var rows [][]TableCellLayout
	var rowMeta []TableRowMeta
	cursorY := frame.Y + frame.Height

	for rowIdx, rowEl := range rowsAttr {
		cells, _ := rowEl.Attrs["cells"].([]docmodel.Element)
		cantSplit := boolAttr(rowEl.Attrs, "cant_split")
		isHeader := boolAttr(rowEl.Attrs, "is_header_row")

		col := 0
		rowHeight := 0.0
		var cellLayouts []TableCellLayout
		type continuation struct {
			col int
		}
		var continues []continuation

		for _, cellEl := range cells {
			span := spanOf(cellEl)
			merge := stringAttr(cellEl.Attrs, "vertical_merge", "")
			startCol := col
			endCol := startCol + span
			if endCol > colCount {
				endCol = colCount
			}
			col = endCol
			if startCol >= endCol {
				continue
			}

			if merge == "continue" {
				continues = append(continues, continuation{col: startCol})
				continue
			}

			width := colOffsets[endCol] - colOffsets[startCol]
			style := boxStyleFromAttrs(cellEl.Attrs)
			innerWidth := width - style.PadLeft - style.PadRight

			var blocks []BlockPayload
			innerHeight := style.PadTop + style.PadBottom
			for _, child := range cellEl.Children {
				p := a.layoutParagraph(child, innerWidth, 0)
				blocks = append(blocks, BlockPayload{Paragraph: &p})
				innerHeight += paragraphHeight(p)
			}
			if innerHeight <= style.PadTop+style.PadBottom {
				innerHeight += a.Metrics.LineHeight(defaultFontFamily, defaultFontSize)
			}
			if innerHeight > rowHeight {
				rowHeight = innerHeight
			}

			cellFrame := geometry.Rect{X: frame.X + colOffsets[startCol], Width: width}
			cellLayouts = append(cellLayouts, TableCellLayout{Frame: cellFrame, Blocks: blocks, Style: style})

			if merge == "restart" {
				openMerges[startCol] = &pendingMerge{rowIdx: rowIdx, cellIdx: len(cellLayouts) - 1}
			} else {
				delete(openMerges, startCol)
			}
		}

		if rowHeight == 0 {
			rowHeight = a.Metrics.LineHeight(defaultFontFamily, defaultFontSize)
		}
		cursorY -= rowHeight
		for i := range cellLayouts {
			cellLayouts[i].Frame.Y = cursorY
			cellLayouts[i].Frame.Height = rowHeight
		}
		for _, c := range continues {
			if pm, ok := openMerges[c.col]; ok {
				pm.height += rowHeight
			}
		}

		rows = append(rows, cellLayouts)
		rowMeta = append(rowMeta, TableRowMeta{CantSplit: cantSplit, IsHeaderRow: isHeader})
	}

	for _, pm := range openMerges {
		if pm.height <= 0 {
			continue
		}
		rows[pm.rowIdx][pm.cellIdx].Frame.Height += pm.height
		rows[pm.rowIdx][pm.cellIdx].Frame.Y -= pm.height
	}

	totalHeight := (frame.Y + frame.Height) - cursorY
	frame.Height = totalHeight
	frame.Y = cursorY

	return TableLayout{Frame: frame, Rows: rows, RowMeta: rowMeta, Style: boxStyleFromAttrs(el.Attrs), Metadata: el.Attrs}
}

func spanOf(cellEl docmodel.Element) int {
	span := int(floatAttr(cellEl.Attrs, "grid_span", 1))
	if span < 1 {
		span = 1
	}
	return span
}

// resolveColumnWidths returns the table's column widths in its own units:
// an explicit "grid" attr on the table element if present, otherwise one
// equal-weight column per grid_span unit seen across all rows.
func resolveColumnWidths(el docmodel.Element, rows []docmodel.Element) []float64 {
	if grid, ok := el.Attrs["grid"].([]float64); ok && len(grid) > 0 {
		return grid
	}
	colCount := 1
	for _, rowEl := range rows {
		cells, _ := rowEl.Attrs["cells"].([]docmodel.Element)
		sum := 0
		for _, c := range cells {
			sum += spanOf(c)
		}
		if sum > colCount {
			colCount = sum
		}
	}
	widths := make([]float64, colCount)
	for i := range widths {
		widths[i] = 1
	}
	return widths
}

// scaleColumnWidths rescales resolveColumnWidths' result so it sums exactly
// to the frame's available width, preserving the relative weights of
// explicit grid hints or the even split.
func scaleColumnWidths(widths []float64, totalWidth float64) []float64 {
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	if sum <= 0 {
		sum = float64(len(widths))
		for i := range widths {
			widths[i] = 1
		}
	}
	scale := totalWidth / sum
	scaled := make([]float64, len(widths))
	for i, w := range widths {
		scaled[i] = w * scale
	}
	return scaled
}

// boxStyleFromAttrs reads cell/table margins, shading, and border specs out
// of a duck-typed attrs map, matching the same attribute-reading style the
// rest of the Layout Assembler uses (floatAttr/stringAttr/boolAttr).
func boxStyleFromAttrs(attrs map[string]any) BoxStyle {
	style := BoxStyle{
		PadTop:    floatAttr(attrs, "margin_top", 2),
		PadRight:  floatAttr(attrs, "margin_right", 2),
		PadBottom: floatAttr(attrs, "margin_bottom", 2),
		PadLeft:   floatAttr(attrs, "margin_left", 2),
	}
	if rgb, ok := attrs["shading"].([]float64); ok && len(rgb) == 3 {
		c := OpaqueColor(rgb[0], rgb[1], rgb[2])
		style.Background = &c
	}
	if borders, ok := attrs["borders"].([]map[string]any); ok {
		for _, b := range borders {
			side, _ := b["side"].(string)
			width := floatAttr(b, "width", 0.5)
			var color Color
			if rgb, ok := b["color"].([]float64); ok && len(rgb) == 3 {
				color = OpaqueColor(rgb[0], rgb[1], rgb[2])
			}
			borderStyle := BorderSolid
			if s, ok := b["style"].(string); ok && s != "" {
				borderStyle = BorderStyle(s)
			}
			style.Borders = append(style.Borders, BorderSpec{Side: Side(side), Width: width, Color: color, Style: borderStyle})
		}
	}
	return style
}
