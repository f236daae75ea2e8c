package layout

import "fmt"

// ValidationSummary is the result of a full layout validation pass.
type ValidationSummary struct {
	IsValid       bool
	TotalErrors   int
	TotalWarnings int
	TotalPages    int
	TotalBlocks   int
	Errors        []string
	Warnings      []string
}

// Validator checks a UnifiedLayout's internal consistency: block bounds,
// style presence, spacing sanity, page numbering, overflow of non-chrome
// blocks past the bottom margin, inter-block spacing conflicts, and empty
// pages.
type Validator struct {
	layout   *UnifiedLayout
	errors   []string
	warnings []string
}

// NewValidator returns a validator for the given layout.
func NewValidator(u *UnifiedLayout) *Validator {
	return &Validator{layout: u}
}

// Validate runs every check and returns whether the layout is valid along
// with the accumulated errors and warnings. A layout is valid iff it
// produced zero errors; warnings never affect validity.
func (v *Validator) Validate() (bool, []string, []string) {
	v.errors = nil
	v.warnings = nil

	v.validatePagesExist()
	v.validateBlocksInBounds()
	v.validateBlockStyles()
	v.validateSpacing()
	v.validatePageConsistency()
	v.validateBlockOverflow()
	v.validateSpacingConflicts()
	v.validateEmptyPages()

	return len(v.errors) == 0, v.errors, v.warnings
}

// Summary runs Validate and packages the result as a ValidationSummary,
// matching the convenience summary dict of the ported validator.
func (v *Validator) Summary() ValidationSummary {
	isValid, errs, warns := v.Validate()
	total := 0
	for _, p := range v.layout.Pages {
		total += len(p.Blocks)
	}
	return ValidationSummary{
		IsValid:       isValid,
		TotalErrors:   len(errs),
		TotalWarnings: len(warns),
		TotalPages:    len(v.layout.Pages),
		TotalBlocks:   total,
		Errors:        errs,
		Warnings:      warns,
	}
}

func (v *Validator) validatePagesExist() {
	if len(v.layout.Pages) == 0 {
		v.errors = append(v.errors, "unified layout contains no pages")
	}
}

func (v *Validator) validateBlocksInBounds() {
	for _, page := range v.layout.Pages {
		for _, block := range page.Blocks {
			f := block.Frame
			if f.X < 0 {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d is left of the page's left edge (x=%v)", block.Kind, page.Number, f.X))
			}
			if f.X+f.Width > page.Size.Width {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d exceeds the page's right edge (x=%v, width=%v, page_width=%v)", block.Kind, page.Number, f.X, f.Width, page.Size.Width))
			}
			if f.Y < 0 {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d is below the page's bottom edge (y=%v)", block.Kind, page.Number, f.Y))
			}
			if f.Y+f.Height > page.Size.Height {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d exceeds the page's top edge (y=%v, height=%v, page_height=%v)", block.Kind, page.Number, f.Y, f.Height, page.Size.Height))
			}
			if f.Width <= 0 {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d has an invalid width: %v", block.Kind, page.Number, f.Width))
			}
			if f.Height <= 0 {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d has an invalid height: %v", block.Kind, page.Number, f.Height))
			}
		}
	}
}

func (v *Validator) validateBlockStyles() {
	for _, page := range v.layout.Pages {
		for _, block := range page.Blocks {
			if len(block.Style.Borders) == 0 && block.Style.Background == nil &&
				block.Style.PadTop == 0 && block.Style.PadRight == 0 && block.Style.PadBottom == 0 && block.Style.PadLeft == 0 {
				v.warnings = append(v.warnings, fmt.Sprintf("block %s on page %d has no style assigned", block.Kind, page.Number))
			}
		}
	}
}

func (v *Validator) validateSpacing() {
	for _, page := range v.layout.Pages {
		for _, block := range page.Blocks {
			before, after := blockSpacing(block)
			if before < 0 {
				v.warnings = append(v.warnings, fmt.Sprintf("block %s on page %d has a negative spacing_before: %v", block.Kind, page.Number, before))
			}
			if after < 0 {
				v.warnings = append(v.warnings, fmt.Sprintf("block %s on page %d has a negative spacing_after: %v", block.Kind, page.Number, after))
			}
		}
	}
}

func (v *Validator) validatePageConsistency() {
	expected := 1
	for _, page := range v.layout.Pages {
		if page.Number != expected {
			v.warnings = append(v.warnings, fmt.Sprintf("inconsistent page numbering: expected %d, got %d", expected, page.Number))
		}
		expected++
	}
}

func (v *Validator) validateBlockOverflow() {
	for _, page := range v.layout.Pages {
		bottomMargin := page.Margins.Bottom
		for _, block := range page.Blocks {
			if isChromeKind(block.Kind) {
				// Headers and footers sit in the margin bands by design.
				continue
			}
			if block.Frame.Y < bottomMargin {
				v.errors = append(v.errors, fmt.Sprintf("block %s on page %d exceeds the bottom margin (y=%v, bottom_margin=%v)", block.Kind, page.Number, block.Frame.Y, bottomMargin))
			}
		}
	}
}

func (v *Validator) validateSpacingConflicts() {
	for _, page := range v.layout.Pages {
		for i, block := range page.Blocks {
			if i == 0 {
				continue
			}
			if block.Kind == BlockHeaderMarker || block.Kind == BlockFooterMarker {
				// A marker shares its chrome block's frame.
				continue
			}
			prev := page.Blocks[i-1]
			_, spacingAfter := blockSpacing(prev)
			spacingBefore, _ := blockSpacing(block)

			// Blocks flow top-down and y grows upward, so the previous
			// block's bottom edge sits above the current block's top edge.
			prevBottom := prev.Frame.Y
			currentTop := block.Frame.Y + block.Frame.Height
			gap := prevBottom - currentTop
			expectedGap := spacingAfter + spacingBefore

			switch {
			case gap < 0:
				v.errors = append(v.errors, fmt.Sprintf("blocks on page %d overlap: %s and %s", page.Number, prev.Kind, block.Kind))
			case gap < expectedGap*0.5:
				v.warnings = append(v.warnings, fmt.Sprintf("blocks on page %d have too small a gap: expected %v, got %v", page.Number, expectedGap, gap))
			}
		}
	}
}

func (v *Validator) validateEmptyPages() {
	for _, page := range v.layout.Pages {
		hasContent := false
		for _, b := range page.Blocks {
			if b.Kind != BlockHeader && b.Kind != BlockFooter && b.Kind != BlockHeaderMarker && b.Kind != BlockFooterMarker {
				hasContent = true
				break
			}
		}
		if !hasContent && page.Number > 1 {
			v.warnings = append(v.warnings, fmt.Sprintf("page %d is empty (no content blocks)", page.Number))
		}
	}
}

func isChromeKind(k BlockKind) bool {
	return k == BlockHeader || k == BlockFooter || k == BlockHeaderMarker || k == BlockFooterMarker
}

// blockSpacing reads spacing_before/spacing_after out of a block's
// metadata, if its payload carries a paragraph with them; chrome and
// generic blocks that never set them are treated as zero.
func blockSpacing(b LayoutBlock) (before, after float64) {
	if b.Content.Payload.Paragraph != nil {
		before = toFloat(b.Content.Payload.Paragraph.Metadata["spacing_before"])
		after = toFloat(b.Content.Payload.Paragraph.Metadata["spacing_after"])
	}
	return
}
