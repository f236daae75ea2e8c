package layout

import (
	"testing"

	"github.com/quillforge/docpdf/internal/geometry"
)

func TestValidatorFlagsOutOfBoundsBlock(t *testing.T) {
	u := NewUnifiedLayout()
	u.NewPage(geometry.Size{Width: 612, Height: 792}, geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72})
	_ = u.AddBlock(LayoutBlock{
		Frame: geometry.Rect{X: 500, Y: 700, Width: 200, Height: 20},
		Kind:  BlockParagraph,
		Content: BlockContent{Payload: BlockPayload{Paragraph: &ParagraphLayout{}}},
	})

	isValid, errs, _ := NewValidator(u).Validate()
	if isValid {
		t.Fatalf("expected invalid layout, got valid")
	}
	if len(errs) == 0 {
		t.Fatalf("expected at least one error for an out-of-bounds block")
	}
}

func TestValidatorAcceptsCleanSinglePageLayout(t *testing.T) {
	u := NewUnifiedLayout()
	u.NewPage(geometry.Size{Width: 612, Height: 792}, geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72})
	_ = u.AddBlock(LayoutBlock{
		Frame:   geometry.Rect{X: 72, Y: 700, Width: 468, Height: 20},
		Kind:    BlockParagraph,
		Content: BlockContent{Payload: BlockPayload{Paragraph: &ParagraphLayout{}}},
	})

	isValid, errs, _ := NewValidator(u).Validate()
	if !isValid {
		t.Fatalf("expected valid layout, got errors: %v", errs)
	}
}

func TestValidatorWarnsOnEmptyNonFirstPage(t *testing.T) {
	u := NewUnifiedLayout()
	u.NewPage(geometry.Size{Width: 612, Height: 792}, geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72})
	u.NewPage(geometry.Size{Width: 612, Height: 792}, geometry.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72})

	_, _, warnings := NewValidator(u).Validate()
	found := false
	for _, w := range warnings {
		if w == "page 2 is empty (no content blocks)" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about page 2 being empty, got: %v", warnings)
	}
}
