package httpapi

import (
	"fmt"

	"github.com/quillforge/docpdf/internal/docmodel"
)

// memoryReader implements docmodel.PackageReader over a decoded media map,
// standing in for a real archive/zip-backed OPC reader for requests that
// arrive pre-parsed.
type memoryReader struct {
	media map[string][]byte
}

func (r *memoryReader) GetXMLContent(partName string) ([]byte, error) {
	return nil, fmt.Errorf("httpapi: GetXMLContent not available for a pre-parsed request")
}

func (r *memoryReader) GetBinaryContent(partName string) ([]byte, error) {
	data, ok := r.media[partName]
	if !ok {
		return nil, fmt.Errorf("httpapi: no media part %q in request", partName)
	}
	return data, nil
}

func (r *memoryReader) GetRelationships(partName string) (map[string]string, error) {
	return nil, nil
}

func (r *memoryReader) GetMediaFiles() ([]string, error) {
	names := make([]string, 0, len(r.media))
	for name := range r.media {
		names = append(names, name)
	}
	return names, nil
}

func (r *memoryReader) ExtractTo(dir string) error {
	return fmt.Errorf("httpapi: ExtractTo not supported for a pre-parsed request")
}

// memoryParser implements docmodel.SemanticParser by replaying the element
// trees already decoded from a CompileRequest.
type memoryParser struct {
	sections  []docmodel.SectionMargins
	body      []docmodel.Element
	headers   map[string][]docmodel.Element
	footers   map[string][]docmodel.Element
	footnotes map[string][]docmodel.Element
	endnotes  map[string][]docmodel.Element
	numbering docmodel.NumberingDefinitions
}

func (p *memoryParser) ParseSections() ([]docmodel.SectionMargins, error) { return p.sections, nil }
func (p *memoryParser) ParseBody() ([]docmodel.Element, error)           { return p.body, nil }

func (p *memoryParser) ParseHeader(variant string, sectionIndex int) ([]docmodel.Element, error) {
	return p.headers[variant], nil
}

func (p *memoryParser) ParseFooter(variant string, sectionIndex int) ([]docmodel.Element, error) {
	return p.footers[variant], nil
}

func (p *memoryParser) ParseFootnotes() (map[string][]docmodel.Element, error) { return p.footnotes, nil }
func (p *memoryParser) ParseEndnotes() (map[string][]docmodel.Element, error)  { return p.endnotes, nil }
func (p *memoryParser) NumberingData() (docmodel.NumberingDefinitions, error)  { return p.numbering, nil }

// Collaborators builds a docmodel.PackageReader/SemanticParser pair that
// replays a pre-parsed CompileRequest, for callers (the CLI, in particular)
// that want to drive pkg/docpdf.Compile from the same JSON document shape
// the HTTP endpoint accepts without going through a gin request.
func Collaborators(req CompileRequest) (docmodel.PackageReader, docmodel.SemanticParser, error) {
	return newMemoryCollaborators(req)
}

func newMemoryCollaborators(req CompileRequest) (*memoryReader, *memoryParser, error) {
	media, err := req.decodeMedia()
	if err != nil {
		return nil, nil, err
	}
	sections := make([]docmodel.SectionMargins, len(req.Sections))
	for i, s := range req.Sections {
		sections[i] = s.toSectionMargins()
	}
	parser := &memoryParser{
		sections:  sections,
		body:      toElements(req.Body),
		headers:   toElementMap(req.Headers),
		footers:   toElementMap(req.Footers),
		footnotes: toElementMap(req.Footnotes),
		endnotes:  toElementMap(req.Endnotes),
		numbering: req.toNumberingDefinitions(),
	}
	return &memoryReader{media: media}, parser, nil
}
