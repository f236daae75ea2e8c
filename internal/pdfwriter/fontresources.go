package pdfwriter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/quillforge/docpdf/internal/fontdata"
)

// AssignedFont is a font that has been given PDF object IDs and rendered
// to dictionary text, ready to be written into the body of the document.
type AssignedFont struct {
	Alias                string
	ObjectID             int
	Dictionary           string
	DescriptorObjectID   int
	DescriptorDictionary string
	Extra                []extraObject
}

type extraObject struct {
	ObjectID int
	Data     []byte
}

// FontAssignments is the result of walking a FontRegistry's registered
// fonts and giving each one a contiguous block of object IDs.
type FontAssignments struct {
	NextFree int
	Fonts    []AssignedFont
}

type registeredFont struct {
	alias        string
	standardName string // non-empty for a standard-14 font
	custom       *fontdata.Font
	rawData      []byte
	usedChars    map[rune]bool
}

// FontRegistry tracks every font a compile run touches: the fixed set of
// standard-14 fonts resolved from paragraph run properties, and any
// custom TrueType/OpenType fonts registered for embedding. Registration
// is idempotent per (family, bold, italic) or per custom font name, so a
// document that repeats the same font hundreds of times still emits one
// PDF font object.
type FontRegistry struct {
	fonts map[string]*registeredFont
	order []string

	// Strict mirrors Options.ArlingtonCompatible: when true, standard-14
	// fonts also get a full FontDescriptor object instead of relying on
	// viewers to supply built-in metrics for the base 14 names.
	Strict bool

	aliasSeq int
}

// NewFontRegistry returns an empty registry.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{fonts: make(map[string]*registeredFont)}
}

// ResolveStandard maps a (family, bold, italic) run style onto one of the
// 14 standard PDF fonts and returns its resource alias, registering it on
// first use.
func (r *FontRegistry) ResolveStandard(family string, bold, italic bool) string {
	name := resolveStandardFont(family, bold, italic)
	key := "std:" + name
	if f, ok := r.fonts[key]; ok {
		return f.alias
	}
	alias := r.nextAlias()
	r.fonts[key] = &registeredFont{alias: alias, standardName: name, usedChars: map[rune]bool{}}
	r.order = append(r.order, key)
	return alias
}

// RegisterCustomFont parses TTF/OTF data and registers it for CID-keyed
// embedding under the given logical name, idempotently.
func (r *FontRegistry) RegisterCustomFont(name string, data []byte) (string, error) {
	key := "custom:" + name
	if f, ok := r.fonts[key]; ok {
		return f.alias, nil
	}
	parsed, err := fontdata.Parse(data)
	if err != nil {
		return "", fmt.Errorf("pdfwriter: register custom font %q: %w", name, err)
	}
	alias := r.nextAlias()
	r.fonts[key] = &registeredFont{alias: alias, custom: parsed, rawData: data, usedChars: map[rune]bool{}}
	r.order = append(r.order, key)
	return alias, nil
}

func (r *FontRegistry) nextAlias() string {
	r.aliasSeq++
	return fmt.Sprintf("F%d", r.aliasSeq)
}

// MarkUsed records that text was rendered in the given font, so a custom
// font's embedded subset includes the glyphs it needs.
func (r *FontRegistry) MarkUsed(alias, text string) {
	f := r.byAlias(alias)
	if f == nil {
		return
	}
	for _, c := range text {
		f.usedChars[c] = true
	}
}

// TextWidth measures a run of text at the given point size using this
// font's advance widths.
func (r *FontRegistry) TextWidth(alias, text string, size float64) float64 {
	f := r.byAlias(alias)
	if f == nil {
		return 0
	}
	total := 0
	if f.custom != nil {
		for _, c := range text {
			total += f.custom.CharWidthScaled(c)
		}
	} else {
		metrics := standardMetrics[f.standardName]
		for _, c := range text {
			total += widthForCode(metrics, c)
		}
	}
	return float64(total) / 1000.0 * size
}

func widthForCode(m standardFontMetrics, c rune) int {
	idx := int(c) - 32
	if idx < 0 || idx >= len(m.Widths) {
		return 500
	}
	return m.Widths[idx]
}

func (r *FontRegistry) byAlias(alias string) *registeredFont {
	for _, key := range r.order {
		if f := r.fonts[key]; f.alias == alias {
			return f
		}
	}
	return nil
}

// AssignObjectIDs allocates a contiguous object ID range to every
// registered font, starting at start, and renders each font's dictionary
// (and, for custom fonts, its descendant CIDFont/descriptor/stream
// objects) to bytes ready for the body of the document.
func (r *FontRegistry) AssignObjectIDs(start int) FontAssignments {
	next := start
	var assigned []AssignedFont

	for _, key := range r.order {
		f := r.fonts[key]
		if f.custom != nil {
			af, consumed := assignCustomFont(f, next)
			assigned = append(assigned, af)
			next += consumed
		} else {
			af, consumed := assignStandardFont(f, next, r.Strict)
			assigned = append(assigned, af)
			next += consumed
		}
	}

	return FontAssignments{NextFree: next - start, Fonts: assigned}
}

func assignStandardFont(f *registeredFont, start int, strict bool) (AssignedFont, int) {
	metrics := standardMetrics[f.standardName]
	objID := start
	consumed := 1

	descriptorID := 0
	var descriptorDict string
	if strict {
		descriptorID = start + 1
		consumed = 2
		descriptorDict = fmt.Sprintf(
			"%d 0 obj\n<< /Type /FontDescriptor /FontName /%s /Flags %d /FontBBox [%d %d %d %d] "+
				"/ItalicAngle %d /Ascent %d /Descent %d /CapHeight %d /StemV %d >>\nendobj\n",
			descriptorID, metrics.BaseFont, metrics.Flags,
			metrics.BBox[0], metrics.BBox[1], metrics.BBox[2], metrics.BBox[3],
			metrics.ItalicAngle, metrics.Ascent, metrics.Descent, metrics.CapHeight, metrics.StemV,
		)
	}

	var widths bytes.Buffer
	for i, w := range metrics.Widths {
		if i > 0 {
			widths.WriteByte(' ')
		}
		fmt.Fprintf(&widths, "%d", w)
	}

	var dict strings.Builder
	fmt.Fprintf(&dict, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding "+
		"/FirstChar 32 /LastChar 255 /Widths [%s]", objID, metrics.BaseFont, widths.String())
	if descriptorID > 0 {
		fmt.Fprintf(&dict, " /FontDescriptor %d 0 R", descriptorID)
	}
	dict.WriteString(" >>\nendobj\n")

	return AssignedFont{
		Alias:                f.alias,
		ObjectID:             objID,
		Dictionary:           dict.String(),
		DescriptorObjectID:   descriptorID,
		DescriptorDictionary: descriptorDict,
	}, consumed
}

// assignCustomFont lays out a Type0 composite font: the Type0 wrapper,
// its CIDFontType2 descendant, a FontDescriptor, a CIDToGIDMap stream, a
// ToUnicode CMap stream, and the embedded (subset) font program.
func assignCustomFont(f *registeredFont, start int) (AssignedFont, int) {
	type6 := [6]int{start, start + 1, start + 2, start + 3, start + 4, start + 5}
	type0ID, cidFontID, descriptorID, cidToGIDID, toUnicodeID, fontFileID := type6[0], type6[1], type6[2], type6[3], type6[4], type6[5]

	usedText := make([]rune, 0, len(f.usedChars))
	for c := range f.usedChars {
		usedText = append(usedText, c)
	}
	sort.Slice(usedText, func(i, j int) bool { return usedText[i] < usedText[j] })

	glyphs := f.custom.UsedGlyphs(string(usedText))
	subsetData, oldToNew, err := fontdata.Subset(f.custom, glyphs)
	if err != nil {
		subsetData, oldToNew = f.rawData, identityMap(f.custom.NumGlyphs)
	}

	fontName := sanitizeFontName(f.custom.PostScriptName)

	widths := buildCIDWidths(f.custom, oldToNew)
	cidFontDict := fmt.Sprintf(
		"%d 0 obj\n<< /Type /Font /Subtype /CIDFontType2 /BaseFont /%s "+
			"/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> "+
			"/FontDescriptor %d 0 R /CIDToGIDMap %d 0 R /DW 1000 /W %s >>\nendobj\n",
		cidFontID, fontName, descriptorID, cidToGIDID, widths,
	)

	flags := f.custom.PDFFlags()
	descriptorDict := fmt.Sprintf(
		"%d 0 obj\n<< /Type /FontDescriptor /FontName /%s /Flags %d "+
			"/FontBBox [%d %d %d %d] /ItalicAngle %d /Ascent %d /Descent %d "+
			"/CapHeight %d /StemV %d /FontFile2 %d 0 R >>\nendobj\n",
		descriptorID, fontName, flags,
		f.custom.BBox[0], f.custom.BBox[1], f.custom.BBox[2], f.custom.BBox[3],
		int(f.custom.ItalicAngle), f.custom.Ascender, f.custom.Descender,
		f.custom.CapHeight, f.custom.StemV, fontFileID,
	)

	type0Dict := fmt.Sprintf(
		"%d 0 obj\n<< /Type /Font /Subtype /Type0 /BaseFont /%s /Encoding /Identity-H "+
			"/DescendantFonts [%d 0 R] /ToUnicode %d 0 R >>\nendobj\n",
		type0ID, fontName, cidFontID, toUnicodeID,
	)

	cidToGIDStream := buildCIDToGIDMapStream(oldToNew, f.custom.NumGlyphs)
	toUnicodeStream := buildToUnicodeStream(f.custom, oldToNew)

	extra := []extraObject{
		{ObjectID: cidFontID, Data: []byte(cidFontDict)},
		{ObjectID: cidToGIDID, Data: wrapStreamObject(cidToGIDID, cidToGIDStream)},
		{ObjectID: toUnicodeID, Data: wrapStreamObject(toUnicodeID, toUnicodeStream)},
		{ObjectID: fontFileID, Data: wrapFontFileObject(fontFileID, subsetData)},
	}

	return AssignedFont{
		Alias:                f.alias,
		ObjectID:             type0ID,
		Dictionary:           type0Dict,
		DescriptorObjectID:   descriptorID,
		DescriptorDictionary: descriptorDict,
		Extra:                extra,
	}, 6
}

func identityMap(numGlyphs uint16) map[uint16]uint16 {
	m := make(map[uint16]uint16, numGlyphs)
	for i := uint16(0); i < numGlyphs; i++ {
		m[i] = i
	}
	return m
}

func sanitizeFontName(name string) string {
	if name == "" {
		return "EmbeddedFont"
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' {
			return -1
		}
		return r
	}, name)
}

func buildCIDWidths(f *fontdata.Font, oldToNew map[uint16]uint16) string {
	type pair struct{ newID, width uint16 }
	pairs := make([]pair, 0, len(oldToNew))
	for oldID, newID := range oldToNew {
		pairs = append(pairs, pair{newID, f.GlyphWidth(oldID)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].newID < pairs[j].newID })

	var b strings.Builder
	b.WriteString("[")
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		scaled := int(float64(p.width) * 1000.0 / float64(f.UnitsPerEm))
		fmt.Fprintf(&b, "%d [%d]", p.newID, scaled)
	}
	b.WriteString("]")
	return b.String()
}

func buildCIDToGIDMapStream(oldToNew map[uint16]uint16, numGlyphs uint16) []byte {
	buf := make([]byte, int(numGlyphs)*2)
	for oldID, newID := range oldToNew {
		if int(oldID)*2+1 < len(buf) {
			buf[oldID*2] = byte(newID >> 8)
			buf[oldID*2+1] = byte(newID)
		}
	}
	return buf
}

func buildToUnicodeStream(f *fontdata.Font, oldToNew map[uint16]uint16) []byte {
	type entry struct {
		newID uint16
		char  rune
	}
	var entries []entry
	for oldID, newID := range oldToNew {
		if c, ok := f.GlyphToChar[oldID]; ok {
			entries = append(entries, entry{newID, c})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].newID < entries[j].newID })

	var b strings.Builder
	b.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	fmt.Fprintf(&b, "%d beginbfchar\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "<%04X> <%04X>\n", e.newID, e.char)
	}
	b.WriteString("endbfchar\nendcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return []byte(b.String())
}

func wrapStreamObject(objID int, content []byte) []byte {
	compressed, usedFlate := compressStream(content)
	filter := ""
	if usedFlate {
		filter = " /Filter /FlateDecode"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d%s >>\nstream\n", objID, len(compressed), filter)
	buf.Write(compressed)
	buf.WriteString("\nendstream\nendobj\n")
	return buf.Bytes()
}

func wrapFontFileObject(objID int, data []byte) []byte {
	compressed, usedFlate := compressStream(data)
	filter := ""
	if usedFlate {
		filter = " /Filter /FlateDecode"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d /Length1 %d%s >>\nstream\n", objID, len(compressed), len(data), filter)
	buf.Write(compressed)
	buf.WriteString("\nendstream\nendobj\n")
	return buf.Bytes()
}
