package pdfwriter

import "testing"

func TestResolveStandardIsIdempotent(t *testing.T) {
	r := NewFontRegistry()
	a1 := r.ResolveStandard("Arial", false, false)
	a2 := r.ResolveStandard("Arial", false, false)
	if a1 != a2 {
		t.Fatalf("ResolveStandard returned different aliases for the same style: %q vs %q", a1, a2)
	}
	if len(r.order) != 1 {
		t.Fatalf("expected exactly one registered font, got %d", len(r.order))
	}
}

func TestResolveStandardDistinguishesStyles(t *testing.T) {
	r := NewFontRegistry()
	regular := r.ResolveStandard("Arial", false, false)
	bold := r.ResolveStandard("Arial", true, false)
	if regular == bold {
		t.Fatalf("regular and bold resolved to the same alias %q", regular)
	}
}

func TestAssignObjectIDsNonStrictStandardFontUsesOneObject(t *testing.T) {
	r := NewFontRegistry()
	r.ResolveStandard("Arial", false, false)
	assignments := r.AssignObjectIDs(10)
	if len(assignments.Fonts) != 1 {
		t.Fatalf("expected 1 assigned font, got %d", len(assignments.Fonts))
	}
	f := assignments.Fonts[0]
	if f.DescriptorObjectID != 0 {
		t.Errorf("non-strict standard font should not get a FontDescriptor, got id %d", f.DescriptorObjectID)
	}
	if assignments.NextFree != 1 {
		t.Errorf("NextFree = %d, want 1", assignments.NextFree)
	}
}

func TestAssignObjectIDsStrictStandardFontUsesTwoObjects(t *testing.T) {
	r := NewFontRegistry()
	r.Strict = true
	r.ResolveStandard("Arial", false, false)
	assignments := r.AssignObjectIDs(10)
	f := assignments.Fonts[0]
	if f.DescriptorObjectID == 0 {
		t.Fatal("strict mode should assign a FontDescriptor object")
	}
	if assignments.NextFree != 2 {
		t.Errorf("NextFree = %d, want 2", assignments.NextFree)
	}
}

func TestTextWidthUsesStandardMetrics(t *testing.T) {
	r := NewFontRegistry()
	alias := r.ResolveStandard("Arial", false, false)
	width := r.TextWidth(alias, "A", 12)
	if width <= 0 {
		t.Fatalf("TextWidth for 'A' at size 12 = %v, want > 0", width)
	}
}

func TestTextWidthUnknownAliasReturnsZero(t *testing.T) {
	r := NewFontRegistry()
	if w := r.TextWidth("F99", "hello", 12); w != 0 {
		t.Errorf("TextWidth for unregistered alias = %v, want 0", w)
	}
}
