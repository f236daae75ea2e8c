package layout

import (
	"strconv"
	"time"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

// PageConfig is the resolved, points-based page configuration a single
// section lays out against.
type PageConfig struct {
	PageSize    geometry.Size
	BaseMargins geometry.Margins
	Landscape   bool
}

// LayoutStructure is the Layout Structure Builder's output: the semantic
// tree flattened into the shapes the Assembler, Page Variator, and
// Pagination Manager all need, with placeholders resolved (or not) as
// requested.
type LayoutStructure struct {
	Body    []docmodel.Element
	Headers map[string][]docmodel.Element
	Footers map[string][]docmodel.Element
	// Footnotes/Endnotes are keyed by their reference id, as emitted by
	// the semantic parser.
	Footnotes map[string][]docmodel.Element
	Endnotes  map[string][]docmodel.Element
	Sections  []PageConfig
	Numbering docmodel.NumberingDefinitions
}

// BuildOptions configures the Layout Structure Builder.
type BuildOptions struct {
	// ResolvePlaceholders controls whether field codes (PAGE, NUMPAGES,
	// DATE, and similar simple fields) are resolved to literal text at
	// build time. Defaults to true for a "pdf" target and false for a
	// "docx" round-trip target, matching the pipeline orchestrator's
	// target-based default (see Pipeline.Process).
	ResolvePlaceholders bool
	// PageNumberHint seeds the PAGE field when ResolvePlaceholders is
	// true and the structure is being built for a single known page. It
	// is a best-effort value for body content only: headers/footers get
	// PAGE (and NUMPAGES, which needs a final page count this hint can't
	// provide) re-resolved correctly once per page later, when chrome is
	// materialized (see Assembler.PrepareBlockContent / resolveLiveFields).
	PageNumberHint int
	// PlaceholderMapping resolves any named placeholder token that isn't
	// one of the built-in field codes (PAGE, NUMPAGES, DATE) — e.g. a
	// caller substituting "CLIENT_NAME" or "CONTRACT_ID" tokens emitted
	// by the semantic parser as field_simple elements.
	PlaceholderMapping map[string]string
}

// Build walks the semantic document tree into a LayoutStructure. It never
// positions anything — that is the Assembler's job — it only organizes the
// tree into body/headers/footers/footnotes/endnotes/sections and resolves
// numbering markers onto list paragraphs.
func Build(doc docmodel.Document, sections []docmodel.SectionMargins, headers, footers map[string][]docmodel.Element, footnotes, endnotes map[string][]docmodel.Element, numbering docmodel.NumberingDefinitions, opts BuildOptions) (*LayoutStructure, error) {
	pageConfigs := make([]PageConfig, 0, len(sections))
	for _, s := range sections {
		pageConfigs = append(pageConfigs, PageConfig{PageSize: s.Page, BaseMargins: s.Margin})
	}
	if len(pageConfigs) == 0 {
		pageConfigs = append(pageConfigs, PageConfig{
			PageSize:    geometry.PageDimensions("A4", false),
			BaseMargins: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72, Header: 36, Footer: 36},
		})
	}

	structure := &LayoutStructure{
		Body:      doc.Elements,
		Headers:   headers,
		Footers:   footers,
		Footnotes: footnotes,
		Endnotes:  endnotes,
		Sections:  pageConfigs,
		Numbering: numbering,
	}

	if opts.ResolvePlaceholders {
		resolvePlaceholders(structure.Body, opts.PageNumberHint, opts.PlaceholderMapping)
		for _, list := range structure.Headers {
			resolvePlaceholders(list, opts.PageNumberHint, opts.PlaceholderMapping)
		}
		for _, list := range structure.Footers {
			resolvePlaceholders(list, opts.PageNumberHint, opts.PlaceholderMapping)
		}
	}

	numberingState := NewNumberingState(numbering)
	applyNumbering(structure.Body, numberingState)

	return structure, nil
}

// applyNumbering walks paragraphs in document order and stamps a resolved
// "numbering_marker" attribute onto any paragraph carrying numbering data
// (abstract_num_id/level in its Attrs).
func applyNumbering(elements []docmodel.Element, state *NumberingState) {
	for i := range elements {
		el := &elements[i]
		if el.Kind == docmodel.ElementParagraph {
			abstractID, hasID := el.Attrs["abstract_num_id"].(string)
			level, hasLevel := el.Attrs["numbering_level"].(int)
			if hasID && hasLevel {
				el.Attrs["numbering_marker"] = state.Next(abstractID, level)
			}
		}
		applyNumbering(el.Children, state)
	}
}

// resolvePlaceholders substitutes simple field codes (PAGE, DATE, and any
// caller-supplied named token) with literal text in every field_simple
// element it finds. NUMPAGES is deliberately left alone here: the total
// page count isn't known until the body has been paginated, so it is
// re-resolved later, fresh per page, alongside a corrected PAGE value (see
// resolveLiveFields, used by Assembler.PrepareBlockContent).
func resolvePlaceholders(elements []docmodel.Element, pageHint int, mapping map[string]string) {
	for i := range elements {
		el := &elements[i]
		if el.Kind == docmodel.ElementFieldSimple {
			if code, ok := el.Attrs["field_code"].(string); ok {
				if text, ok := resolveFieldText(code, pageHint, mapping); ok {
					el.Attrs["resolved_text"] = text
				}
			}
		}
		resolvePlaceholders(el.Children, pageHint, mapping)
	}
}

// resolveFieldText resolves one field code to its literal replacement:
// PAGE from the build-time hint, DATE from the current date, and anything
// else from the caller-supplied mapping.
func resolveFieldText(code string, pageHint int, mapping map[string]string) (string, bool) {
	switch code {
	case "PAGE":
		return strconv.Itoa(pageHint), true
	case "DATE":
		return time.Now().Format("2006-01-02"), true
	default:
		v, ok := mapping[code]
		return v, ok
	}
}

// cloneElementTree deep-copies an element's Attrs map and its children so a
// caller can safely rewrite field text without mutating the shared
// header/footer element the Layout Structure Builder handed out once per
// variant (PrepareBlockContent is called once per page, and every page
// shares the same source element).
func cloneElementTree(el docmodel.Element) docmodel.Element {
	attrs := make(map[string]any, len(el.Attrs))
	for k, v := range el.Attrs {
		attrs[k] = v
	}
	var children []docmodel.Element
	if len(el.Children) > 0 {
		children = make([]docmodel.Element, len(el.Children))
		for i, c := range el.Children {
			children[i] = cloneElementTree(c)
		}
	}
	return docmodel.Element{Kind: el.Kind, Attrs: attrs, Children: children}
}

// resolveLiveFields returns a clone of el with every PAGE/NUMPAGES
// field_simple element's resolved_text set from the actual page number and
// final page count — only knowable once Assemble has finished paginating
// the whole document, unlike the build-time pass above.
func resolveLiveFields(el docmodel.Element, pageNumber, totalPages int) docmodel.Element {
	clone := cloneElementTree(el)
	var walk func(e *docmodel.Element)
	walk = func(e *docmodel.Element) {
		if e.Kind == docmodel.ElementFieldSimple {
			if code, ok := e.Attrs["field_code"].(string); ok {
				switch code {
				case "PAGE":
					e.Attrs["resolved_text"] = strconv.Itoa(pageNumber)
				case "NUMPAGES":
					e.Attrs["resolved_text"] = strconv.Itoa(totalPages)
				}
			}
		}
		for i := range e.Children {
			walk(&e.Children[i])
		}
	}
	walk(&clone)
	return clone
}
