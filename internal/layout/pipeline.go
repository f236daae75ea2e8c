package layout

import (
	"fmt"
	"strings"

	"github.com/quillforge/docpdf/internal/docmodel"
)

// Target names the rendering target the pipeline is assembling for. A
// "docx" target (round-tripping back to WordprocessingML) does not resolve
// placeholders or apply header/footer variants by default, since the
// consumer is expected to keep field codes and per-section chrome intact;
// a "pdf" target resolves both, since the output is a flattened, final
// rendering.
type Target string

const (
	TargetPDF  Target = "pdf"
	TargetDOCX Target = "docx"
)

// Pipeline orchestrates the Layout Structure Builder, Page Variator,
// Assembler, Pagination Manager and Validator end to end, mirroring the
// fixed five-step order: build, (maybe) variate, assemble, (maybe)
// paginate, (maybe) validate.
type Pipeline struct {
	Target    Target
	Assembler *Assembler
}

// NewPipeline returns a pipeline for the given target with a default
// Assembler (DefaultMetrics). Callers wanting real font metrics should
// build their own Assembler and assign it after construction.
func NewPipeline(target Target) *Pipeline {
	if target == "" {
		target = TargetPDF
	}
	return &Pipeline{Target: target, Assembler: NewAssembler(nil)}
}

// ProcessOptions configures a single Process call.
type ProcessOptions struct {
	// ApplyHeadersFooters defaults to true for a PDF target and false for
	// a DOCX target, matching the target's default above; pass a non-nil
	// value to override.
	ApplyHeadersFooters *bool
	Validate            bool
	// PlaceholderMapping resolves named placeholder tokens (e.g.
	// "CLIENT_NAME") that aren't one of the built-in field codes; forwarded
	// unchanged to BuildOptions.PlaceholderMapping.
	PlaceholderMapping map[string]string
}

// Process runs the full pipeline: Build -> (variate) -> Assemble ->
// (paginate) -> (validate).
func (p *Pipeline) Process(
	doc docmodel.Document,
	sections []docmodel.SectionMargins,
	headers, footers, footnotes, endnotes map[string][]docmodel.Element,
	numbering docmodel.NumberingDefinitions,
	opts ProcessOptions,
) (*UnifiedLayout, error) {
	buildOpts := BuildOptions{ResolvePlaceholders: p.Target == TargetPDF, PlaceholderMapping: opts.PlaceholderMapping}

	structure, err := Build(doc, sections, headers, footers, footnotes, endnotes, numbering, buildOpts)
	if err != nil {
		return nil, fmt.Errorf("layout structure build: %w", err)
	}

	if p.Target == TargetPDF && len(structure.Sections) > 0 {
		cfg := structure.Sections[0]
		headerDistance := cfg.BaseMargins.Header
		footerDistance := cfg.BaseMargins.Footer
		variator := NewPageVariator(structure.Headers, structure.Footers, p.Assembler, cfg.PageSize.Height, cfg.BaseMargins.Top, cfg.BaseMargins.Bottom, headerDistance, footerDistance)
		p.Assembler.SetPageVariator(variator)
	}

	unified, err := p.Assembler.Assemble(structure)
	if err != nil {
		return nil, fmt.Errorf("layout assembly: %w", err)
	}

	applyChrome := p.Target == TargetPDF
	if opts.ApplyHeadersFooters != nil {
		applyChrome = *opts.ApplyHeadersFooters
	}
	if applyChrome {
		resolver := NewHeaderFooterResolver(structure.Headers, structure.Footers)
		manager := NewPaginationManager(unified, resolver, p.Assembler.variator, p.Assembler, p.Assembler.PrepareBlockContent)
		manager.ApplyHeadersFooters()
	}

	if opts.Validate {
		isValid, errs, _ := NewValidator(unified).Validate()
		if !isValid {
			return nil, fmt.Errorf("layout validation failed: %s", strings.Join(errs, "; "))
		}
	}

	return unified, nil
}

// ProcessWithSummary runs Process with validation always on and returns the
// validator's summary alongside the layout instead of treating validation
// failure as fatal — useful for callers that want to inspect warnings
// without aborting.
func (p *Pipeline) ProcessWithSummary(
	doc docmodel.Document,
	sections []docmodel.SectionMargins,
	headers, footers, footnotes, endnotes map[string][]docmodel.Element,
	numbering docmodel.NumberingDefinitions,
) (*UnifiedLayout, ValidationSummary, error) {
	opts := ProcessOptions{Validate: false}
	unified, err := p.Process(doc, sections, headers, footers, footnotes, endnotes, numbering, opts)
	if err != nil {
		return nil, ValidationSummary{}, err
	}
	summary := NewValidator(unified).Summary()
	return unified, summary, nil
}
