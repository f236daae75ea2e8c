// Package docmodel declares the collaborator interfaces the layout pipeline
// depends on but does not implement: the WordprocessingML package reader,
// the semantic parser, and the document/element tree they hand back. Callers
// supply concrete implementations; this package only fixes the contract so
// that internal/layout can be built and tested against fakes.
package docmodel

import "github.com/quillforge/docpdf/internal/geometry"

// PackageReader reads the raw parts of a WordprocessingML package (a zipped
// OPC container). This repository has no zip-backed implementation (only
// internal/httpapi's in-memory replay): a caller supplies one backed by
// archive/zip or an equivalent OPC reader.
type PackageReader interface {
	GetXMLContent(partName string) ([]byte, error)
	GetBinaryContent(partName string) ([]byte, error)
	GetRelationships(partName string) (map[string]string, error)
	GetMediaFiles() ([]string, error)
	ExtractTo(dir string) error
}

// SectionMargins mirrors the subset of WordprocessingML section properties
// the layout pipeline needs: page size, margins, and header/footer distance,
// already resolved to points by the parser.
type SectionMargins struct {
	Page   geometry.Size
	Margin geometry.Margins
}

// SemanticParser turns package parts into the semantic tree consumed by the
// Layout Structure Builder. It is an external collaborator: this repository
// only depends on its interface.
type SemanticParser interface {
	ParseSections() ([]SectionMargins, error)
	ParseBody() ([]Element, error)
	ParseHeader(variant string, sectionIndex int) ([]Element, error)
	ParseFooter(variant string, sectionIndex int) ([]Element, error)
	ParseFootnotes() (map[string][]Element, error)
	ParseEndnotes() (map[string][]Element, error)
	NumberingData() (NumberingDefinitions, error)
}

// NumberingDefinitions maps an abstract numbering id to its per-level
// formatting rules, as resolved from numbering.xml by the external parser.
type NumberingDefinitions map[string][]NumberingLevel

// NumberingLevel describes one level of a numbering definition.
type NumberingLevel struct {
	Format    string // "decimal", "lowerRoman", "upperRoman", "lowerLetter", "upperLetter", "bullet"
	Text      string // e.g. "%1."
	StartAt   int
	RestartOn int // level index that resets this counter, -1 if none
}

// ElementKind is a closed sum type over the semantic tree node kinds the
// Layout Structure Builder knows how to interpret.
type ElementKind string

const (
	ElementParagraph     ElementKind = "paragraph"
	ElementTable         ElementKind = "table"
	ElementImage         ElementKind = "image"
	ElementTextbox       ElementKind = "textbox"
	ElementSectionBreak  ElementKind = "section_break"
	ElementFootnoteRef   ElementKind = "footnote_ref"
	ElementEndnoteRef    ElementKind = "endnote_ref"
	ElementFieldSimple   ElementKind = "field_simple"
	ElementHyperlink     ElementKind = "hyperlink"
	ElementBreak         ElementKind = "break"
)

// Element is one node of the semantic document tree handed to the Layout
// Structure Builder. Attrs carries node-kind-specific data (run text and
// formatting, table grid/cell spans, image relationship ids, and so on) as a
// loosely typed map, matching the duck-typed document model described in the
// design notes: the builder reads the keys it understands and ignores
// the rest rather than requiring a closed schema.
type Element struct {
	Kind     ElementKind
	Attrs    map[string]any
	Children []Element
}

// Document is the root of a parsed WordprocessingML body, header, or
// footer, as produced by a SemanticParser.
type Document struct {
	Elements []Element
}

// DocumentInfo carries a subset of core/app properties. Supplied by the
// external metadata collaborator. The PDF Compiler writes Title, Author and
// Subject into the Info dictionary, omitting empty ones; Creator and
// Revision are not written.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Revision string
}

// ImageConverter renders a WMF/EMF vector image to PNG bytes. Full vector
// decoding is out of this repository's core scope (spec §1); a default,
// non-decoding implementation lives in internal/media.
type ImageConverter interface {
	ConvertEMFToPNG(data []byte, width, height *int) ([]byte, error)
}
