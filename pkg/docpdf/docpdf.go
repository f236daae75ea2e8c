// Package docpdf is the public facade: it wires a caller-supplied
// WordprocessingML package reader and semantic parser through the Layout
// Pipeline and the PDF Compiler, producing a finished PDF byte stream.
// Callers bring their own docmodel.PackageReader/SemanticParser (this
// repository deliberately does not parse OOXML itself, per spec §1/§6);
// everything from "semantic element tree" onward is this module's job.
package docpdf

import (
	"bytes"
	"fmt"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/imagecache"
	"github.com/quillforge/docpdf/internal/layout"
	"github.com/quillforge/docpdf/internal/logging"
	"github.com/quillforge/docpdf/internal/media"
	"github.com/quillforge/docpdf/internal/pdfwriter"
)

// Options configures a Compile call end to end: layout-pipeline behavior,
// PDF Compiler conformance knobs, and the collaborators a caller can
// override (image conversion, logging).
type Options struct {
	// Target selects the pipeline's output contract; defaults to PDF.
	Target layout.Target

	// ArlingtonCompatible, WatermarkOpacity and Info are forwarded to the
	// PDF Compiler unchanged; see pdfwriter.Options.
	ArlingtonCompatible bool
	WatermarkOpacity    float64
	Info                docmodel.DocumentInfo

	// ImageConverter handles WMF/EMF media; defaults to
	// media.PlaceholderConverter when nil.
	ImageConverter docmodel.ImageConverter

	// Logger receives structured progress/warning lines; defaults to a
	// quiet logger (info level, discarding below that) when nil.
	Logger *logging.Logger

	// Validate runs the Layout Validator and fails the compile on any
	// structural violation instead of only warning about it.
	Validate bool

	// Placeholders resolves named field tokens (anything other than the
	// built-in PAGE/NUMPAGES/DATE codes) to literal text, e.g. a caller
	// substituting a "CLIENT_NAME" or "CONTRACT_ID" token emitted by the
	// semantic parser as a field_simple element.
	Placeholders map[string]string
}

// Result is what Compile hands back: the finished PDF plus whatever the
// Layout Validator observed, even when Validate was left off.
type Result struct {
	PDF     []byte
	Summary layout.ValidationSummary
}

// Compile reads a WordprocessingML package through reader and parser,
// assembles it into a paginated layout, and compiles that layout to a
// PDF document.
func Compile(reader docmodel.PackageReader, parser docmodel.SemanticParser, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.New(logging.LevelInfo)
	}
	converter := opts.ImageConverter
	if converter == nil {
		converter = media.PlaceholderConverter{}
	}
	target := opts.Target
	if target == "" {
		target = layout.TargetPDF
	}

	log.Info("parsing document sections")
	sections, err := parser.ParseSections()
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: parse sections: %w", err)
	}

	body, err := parser.ParseBody()
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: parse body: %w", err)
	}

	footnotes, err := parser.ParseFootnotes()
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: parse footnotes: %w", err)
	}
	endnotes, err := parser.ParseEndnotes()
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: parse endnotes: %w", err)
	}
	numbering, err := parser.NumberingData()
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: parse numbering: %w", err)
	}

	headers, footers, err := parseHeadersFooters(parser, len(sections))
	if err != nil {
		return Result{}, err
	}

	log.Info("assembling layout", "sections", len(sections), "blocks", len(body))
	pipeline := layout.NewPipeline(target)
	unified, err := pipeline.Process(
		docmodel.Document{Elements: body}, sections, headers, footers, footnotes, endnotes, numbering,
		layout.ProcessOptions{Validate: opts.Validate, PlaceholderMapping: opts.Placeholders},
	)
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: layout pipeline: %w", err)
	}

	summary := layout.NewValidator(unified).Summary()

	imageData, warnings := resolveImages(reader, converter, unified, log)
	for _, w := range warnings {
		log.Warn(w)
	}

	log.Info("compiling pdf", "pages", len(unified.Pages))
	compiler := pdfwriter.NewCompiler()
	pdf, err := compiler.Compile(unified, pdfwriter.Options{
		ArlingtonCompatible: opts.ArlingtonCompatible,
		WatermarkOpacity:    opts.WatermarkOpacity,
		Info:                opts.Info,
		ImageData:           imageData,
	})
	if err != nil {
		return Result{}, fmt.Errorf("docpdf: compile pdf: %w", err)
	}

	return Result{PDF: pdf, Summary: summary}, nil
}

// parseHeadersFooters resolves the default/first/even/odd header and
// footer variants off the document's first section. WordprocessingML
// lets later sections define their own header/footer set, but the
// layout pipeline's HeaderFooterResolver/PageVariator only carry one
// flat variant map for the whole document (see pagination.go), so a
// multi-section document's later sections fall back to the first
// section's chrome — a known limitation, not a parsing bug.
func parseHeadersFooters(parser docmodel.SemanticParser, sectionCount int) (headers, footers map[string][]docmodel.Element, err error) {
	headers = make(map[string][]docmodel.Element)
	footers = make(map[string][]docmodel.Element)
	if sectionCount == 0 {
		return headers, footers, nil
	}
	for _, variant := range []string{"default", "first", "even", "odd"} {
		h, herr := parser.ParseHeader(variant, 0)
		if herr != nil {
			return nil, nil, fmt.Errorf("docpdf: parse header (variant %s): %w", variant, herr)
		}
		if len(h) > 0 {
			headers[variant] = h
		}
		f, ferr := parser.ParseFooter(variant, 0)
		if ferr != nil {
			return nil, nil, fmt.Errorf("docpdf: parse footer (variant %s): %w", variant, ferr)
		}
		if len(f) > 0 {
			footers[variant] = f
		}
	}
	return headers, footers, nil
}

// resolveImages walks every page's image blocks, fetches the referenced
// media part, and converts vector (WMF/EMF) parts to PNG on a bounded
// worker pool so a page with many embedded drawings doesn't convert them
// one at a time. Resolution failures degrade to a warning, never a fatal
// error: a missing or undecodable image renders as a placeholder box
// downstream.
func resolveImages(reader docmodel.PackageReader, converter docmodel.ImageConverter, unified *layout.UnifiedLayout, log *logging.Logger) (map[string][]byte, []string) {
	out := make(map[string][]byte)
	var warnings []string

	type pending struct {
		path string
		img  *layout.ImageLayout
	}
	seen := map[string]bool{}
	var toConvert []pending
	cache := imagecache.New(0)

	for _, page := range unified.Pages {
		for _, block := range page.Blocks {
			img := block.Content.Payload.Image
			if img == nil || img.Path == "" || seen[img.Path] {
				continue
			}
			seen[img.Path] = true

			data, err := reader.GetBinaryContent(img.Path)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("docpdf: read media %q: %v", img.Path, err))
				continue
			}

			if !looksLikeVectorImage(data) {
				out[img.Path] = data
				continue
			}
			width, height := int(img.Frame.Width), int(img.Frame.Height)
			cache.ConvertAsync(img.Path, data, &width, &height, converter.ConvertEMFToPNG)
			toConvert = append(toConvert, pending{path: img.Path, img: img})
		}
	}

	for _, p := range toConvert {
		png, _ := cache.Get(p.path, true)
		if png == nil {
			warnings = append(warnings, fmt.Sprintf("docpdf: convert vector media %q: conversion failed or timed out", p.path))
			continue
		}
		out[p.path] = png
	}
	cache.Shutdown()

	return out, warnings
}

// looksLikeVectorImage reports whether data is a WMF/EMF record stream by
// its leading magic bytes, rather than a directly embeddable PNG/JPEG.
func looksLikeVectorImage(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	if bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		return false
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return false
	}
	// EMF: header starts with record type 1 (0x00000001); WMF (placeable)
	// starts with the 0x9AC6CDD7 magic. Anything else unrecognized is
	// treated as already-raster and handed to the compiler as-is.
	if bytes.Equal(data[:4], []byte{0x01, 0x00, 0x00, 0x00}) {
		return true
	}
	if bytes.Equal(data[:4], []byte{0xD7, 0xCD, 0xC6, 0x9A}) {
		return true
	}
	return false
}
