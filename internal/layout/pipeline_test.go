package layout

import (
	"testing"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

func paragraphEl(text string) docmodel.Element {
	return docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": text}}
}

func TestPipelineProcessPaginatesAndAppliesChrome(t *testing.T) {
	doc := docmodel.Document{Elements: []docmodel.Element{
		paragraphEl("Hello world, this is a short paragraph."),
		paragraphEl("Another paragraph with more content to lay out."),
	}}
	sections := []docmodel.SectionMargins{{
		Page:   geometry.Size{Width: 612, Height: 792},
		Margin: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72, Header: 36, Footer: 36},
	}}
	headers := map[string][]docmodel.Element{"default": {paragraphEl("My Document")}}
	footers := map[string][]docmodel.Element{"default": {paragraphEl("Page footer")}}

	p := NewPipeline(TargetPDF)
	unified, err := p.Process(doc, sections, headers, footers, nil, nil, nil, ProcessOptions{Validate: true})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(unified.Pages) == 0 {
		t.Fatalf("expected at least one page")
	}
	foundHeader := false
	for _, b := range unified.Pages[0].Blocks {
		if b.Kind == BlockHeader {
			foundHeader = true
		}
	}
	if !foundHeader {
		t.Errorf("expected page 1 to carry a header block")
	}
}

func TestPipelineDocxTargetSkipsChrome(t *testing.T) {
	doc := docmodel.Document{Elements: []docmodel.Element{paragraphEl("Body text.")}}
	sections := []docmodel.SectionMargins{{
		Page:   geometry.Size{Width: 612, Height: 792},
		Margin: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
	}}
	headers := map[string][]docmodel.Element{"default": {paragraphEl("Header")}}

	p := NewPipeline(TargetDOCX)
	unified, err := p.Process(doc, sections, headers, nil, nil, nil, nil, ProcessOptions{})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	for _, b := range unified.Pages[0].Blocks {
		if b.Kind == BlockHeader {
			t.Errorf("expected no header block for a docx target by default")
		}
	}
}
