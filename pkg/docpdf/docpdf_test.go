package docpdf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

func paragraphEl(text string) docmodel.Element {
	return docmodel.Element{Kind: docmodel.ElementParagraph, Attrs: map[string]any{"text": text}}
}

// fakeParser is a minimal docmodel.SemanticParser backed by fixed in-memory
// values, standing in for a caller's real OOXML parser.
type fakeParser struct {
	sections    []docmodel.SectionMargins
	body        []docmodel.Element
	headers     map[string][]docmodel.Element
	footers     map[string][]docmodel.Element
	sectionsErr error
}

func (f *fakeParser) ParseSections() ([]docmodel.SectionMargins, error) {
	if f.sectionsErr != nil {
		return nil, f.sectionsErr
	}
	return f.sections, nil
}

func (f *fakeParser) ParseBody() ([]docmodel.Element, error) { return f.body, nil }

func (f *fakeParser) ParseHeader(variant string, sectionIndex int) ([]docmodel.Element, error) {
	return f.headers[variant], nil
}

func (f *fakeParser) ParseFooter(variant string, sectionIndex int) ([]docmodel.Element, error) {
	return f.footers[variant], nil
}

func (f *fakeParser) ParseFootnotes() (map[string][]docmodel.Element, error) { return nil, nil }
func (f *fakeParser) ParseEndnotes() (map[string][]docmodel.Element, error)  { return nil, nil }
func (f *fakeParser) NumberingData() (docmodel.NumberingDefinitions, error)  { return nil, nil }

// fakeReader is a minimal docmodel.PackageReader; GetBinaryContent serves
// media bytes from an in-memory map, everything else is unused by Compile.
type fakeReader struct {
	media map[string][]byte
}

func (r *fakeReader) GetXMLContent(partName string) ([]byte, error) { return nil, nil }
func (r *fakeReader) GetBinaryContent(partName string) ([]byte, error) {
	if data, ok := r.media[partName]; ok {
		return data, nil
	}
	return nil, errors.New("fakeReader: no such part: " + partName)
}
func (r *fakeReader) GetRelationships(partName string) (map[string]string, error) { return nil, nil }
func (r *fakeReader) GetMediaFiles() ([]string, error)                            { return nil, nil }
func (r *fakeReader) ExtractTo(dir string) error                                  { return nil }

func basicSections() []docmodel.SectionMargins {
	return []docmodel.SectionMargins{{
		Page:   geometry.Size{Width: 612, Height: 792},
		Margin: geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72, Header: 36, Footer: 36},
	}}
}

func TestCompileProducesNonEmptyPDF(t *testing.T) {
	parser := &fakeParser{
		sections: basicSections(),
		body: []docmodel.Element{
			paragraphEl("Hello world, this is a short paragraph."),
			paragraphEl("Another paragraph with more content to lay out."),
		},
		headers: map[string][]docmodel.Element{"default": {paragraphEl("My Document")}},
		footers: map[string][]docmodel.Element{"default": {paragraphEl("Page footer")}},
	}
	reader := &fakeReader{media: map[string][]byte{}}

	result, err := Compile(reader, parser, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, result.PDF)
	require.Truef(t, len(result.PDF) >= 5 && string(result.PDF[:5]) == "%PDF-",
		"expected the output to start with a PDF header, got %q", string(result.PDF[:8]))
}

func TestCompilePropagatesSectionParsingError(t *testing.T) {
	parser := &fakeParser{sectionsErr: errors.New("boom")}
	reader := &fakeReader{}

	_, err := Compile(reader, parser, Options{})
	require.Error(t, err)
}

func TestCompileWarnsButSucceedsOnMissingMedia(t *testing.T) {
	parser := &fakeParser{
		sections: basicSections(),
		body: []docmodel.Element{
			{Kind: docmodel.ElementImage, Attrs: map[string]any{"path": "media/missing.png", "width_pt": 100.0, "height_pt": 50.0}},
		},
	}
	reader := &fakeReader{media: map[string][]byte{}}

	result, err := Compile(reader, parser, Options{})
	require.NoError(t, err, "Compile should tolerate an unresolved image")
	require.NotEmpty(t, result.PDF)
}

func TestCompileConvertsVectorMediaThroughTheWorkerPool(t *testing.T) {
	parser := &fakeParser{
		sections: basicSections(),
		body: []docmodel.Element{
			{Kind: docmodel.ElementImage, Attrs: map[string]any{"path": "media/drawing.emf", "width_pt": 80.0, "height_pt": 60.0}},
		},
	}
	emfMagic := []byte{0x01, 0x00, 0x00, 0x00, 0, 0, 0, 0}
	reader := &fakeReader{media: map[string][]byte{"media/drawing.emf": emfMagic}}

	result, err := Compile(reader, parser, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, result.PDF)
}

func TestLooksLikeVectorImage(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0, 0, 0, 0}, false},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, false},
		{"emf", []byte{0x01, 0x00, 0x00, 0x00, 0, 0, 0, 0}, true},
		{"wmf placeable", []byte{0xD7, 0xCD, 0xC6, 0x9A, 0, 0, 0, 0}, true},
		{"too short", []byte{0x01, 0x00}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, looksLikeVectorImage(tc.data))
		})
	}
}
