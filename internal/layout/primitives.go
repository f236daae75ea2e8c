package layout

import "github.com/quillforge/docpdf/internal/geometry"

// Color is an RGB(A) color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// OpaqueColor builds a fully opaque Color.
func OpaqueColor(r, g, b float64) Color { return Color{R: r, G: g, B: b, A: 1} }

// BorderStyle is the line style of a BorderSpec.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// Side names one edge of a box.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// BorderSpec describes a single edge's border.
type BorderSpec struct {
	Side  Side
	Width float64
	Color Color
	Style BorderStyle
}

// BoxStyle carries the background, borders and padding common to blocks.
type BoxStyle struct {
	Background *Color
	Borders    []BorderSpec
	PadTop     float64
	PadRight   float64
	PadBottom  float64
	PadLeft    float64
}

// InlineKind is the closed set of inline item kinds that can appear inside
// a ParagraphLine.
type InlineKind string

const (
	InlineTextRun      InlineKind = "text_run"
	InlineField        InlineKind = "field"
	InlineImage        InlineKind = "inline_image"
	InlineTextbox      InlineKind = "inline_textbox"
)

// InlineBox is one inline element positioned within a paragraph line.
// Positions are relative to the line's left edge; Y = 0 is the baseline.
type InlineBox struct {
	Kind    InlineKind
	X       float64
	Width   float64
	Ascent  float64
	Descent float64
	Data    map[string]any
}

// OverlayKind is the closed set of kinds an OverlayBox can carry.
type OverlayKind string

const (
	OverlayImage   OverlayKind = "image"
	OverlayTextbox OverlayKind = "textbox"
	OverlayShape   OverlayKind = "shape"
)

// OverlayBox is an element positioned absolutely relative to the page,
// margin, or column, with its frame already resolved by the assembler.
type OverlayBox struct {
	Kind    OverlayKind
	Frame   geometry.Rect
	Payload map[string]any
}

// ParagraphLine is a single materialized text line.
type ParagraphLine struct {
	BaselineY      float64
	Height         float64
	Items          []InlineBox
	OffsetX        float64
	AvailableWidth float64
	BlockHeight    float64
}

// ParagraphLayout is the materialized result of line breaking plus
// decorations. Its height is the sum of its lines' heights plus top and
// bottom padding (see paragraphHeight).
type ParagraphLayout struct {
	Lines      []ParagraphLine
	Overlays   []OverlayBox
	Hyperlinks []HyperlinkRef
	Style      BoxStyle
	Metadata   map[string]any
}

// HyperlinkRef groups the runs belonging to one hyperlink, so a renderer can
// apply link-specific decoration (underline, color, an annotation rect)
// without re-walking every inline run.
type HyperlinkRef struct {
	URL  string
	Text string
}

// AnchorMode distinguishes an inline textbox (flattened into a paragraph)
// from an anchored one (placed as an OverlayBox).
type AnchorMode string

const (
	AnchorInline AnchorMode = "inline"
	AnchorFixed  AnchorMode = "anchor"
)

// TextboxLayout is a block of paragraph content inside its own frame.
type TextboxLayout struct {
	Rect       geometry.Rect
	Content    ParagraphLayout
	Style      BoxStyle
	AnchorMode AnchorMode
	Metadata   map[string]any
}

// TableCellLayout is one cell of a TableLayout: its own frame and a list of
// nested block payloads (almost always ParagraphLayout, occasionally a
// nested TableLayout).
type TableCellLayout struct {
	Frame  geometry.Rect
	Blocks []BlockPayload
	Style  BoxStyle
}

// TableRowMeta carries the per-row pagination hints a table's rows were
// parsed with, parallel to TableLayout.Rows.
type TableRowMeta struct {
	CantSplit   bool
	IsHeaderRow bool
}

// TableLayout is a table with fully resolved cell geometry.
type TableLayout struct {
	Frame     geometry.Rect
	Rows      [][]TableCellLayout
	RowMeta   []TableRowMeta
	GridLines []BorderSpec
	Style     BoxStyle
	Metadata  map[string]any
}

// ImageLayout is a block-level image (as opposed to an inline or anchored
// one, which show up as InlineBox/OverlayBox instead).
type ImageLayout struct {
	Frame          geometry.Rect
	Path           string
	PreserveAspect bool
	Metadata       map[string]any
}

// GenericLayout is the fallback payload for element kinds the assembler
// does not yet have a dedicated model for.
type GenericLayout struct {
	Frame    geometry.Rect
	Data     map[string]any
	Overlays []OverlayBox
}

// BlockPayload is the closed union of materialized block content types.
// Exactly one of the fields is non-nil.
type BlockPayload struct {
	Paragraph *ParagraphLayout
	Table     *TableLayout
	Image     *ImageLayout
	Textbox   *TextboxLayout
	Generic   *GenericLayout
}

// Kind reports which variant of the union is populated, or "" if none is.
func (p BlockPayload) Kind() string {
	switch {
	case p.Paragraph != nil:
		return "paragraph"
	case p.Table != nil:
		return "table"
	case p.Image != nil:
		return "image"
	case p.Textbox != nil:
		return "textbox"
	case p.Generic != nil:
		return "generic"
	default:
		return ""
	}
}

// BlockContent wraps a materialized payload together with the raw
// source-derived data (warnings, source element attrs) the renderer or a
// debugging tool may still want.
type BlockContent struct {
	Payload BlockPayload
	Raw     map[string]any
}
