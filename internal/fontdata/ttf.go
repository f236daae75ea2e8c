// Package fontdata parses and subsets TrueType/OpenType font programs so
// the PDF compiler can embed custom fonts as CID-keyed Type0 fonts. The
// binary table layouts below follow the OpenType specification, which
// leaves little room for stylistic variation; what changed from the
// ancestor this was adapted from is the package boundary (it now stands on
// its own instead of living inside the generator package) and its removal
// of encryption-related plumbing that belonged to a different concern.
package fontdata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// Font is a parsed TrueType/OpenType font with everything needed to embed
// a (possibly subset) copy of it in a PDF.
type Font struct {
	PostScriptName string
	FamilyName     string
	FullName       string
	Version        string

	UnitsPerEm   uint16
	Ascender     int16
	Descender    int16
	LineGap      int16
	CapHeight    int16
	XHeight      int16
	StemV        int16
	ItalicAngle  float64
	IsFixedPitch bool
	IsBold       bool
	IsItalic     bool

	BBox [4]int16

	NumGlyphs   uint16
	GlyphWidths []uint16
	CharToGlyph map[rune]uint16
	GlyphToChar map[uint16]rune

	RawData []byte
	Tables  map[string]tableEntry
}

type tableEntry struct {
	Tag      string
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// LoadFromFile reads and parses a TTF/OTF font from disk.
func LoadFromFile(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fontdata: read font file: %w", err)
	}
	return Parse(data)
}

// Parse parses TrueType/OpenType font data held entirely in memory.
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, errors.New("fontdata: font data too short")
	}

	f := &Font{
		RawData:     data,
		Tables:      make(map[string]tableEntry),
		CharToGlyph: make(map[rune]uint16),
		GlyphToChar: make(map[uint16]rune),
	}

	r := bytes.NewReader(data)

	var sfntVersion uint32
	if err := binary.Read(r, binary.BigEndian, &sfntVersion); err != nil {
		return nil, fmt.Errorf("fontdata: read sfnt version: %w", err)
	}
	if sfntVersion != 0x00010000 && sfntVersion != 0x4F54544F {
		return nil, fmt.Errorf("fontdata: unsupported font format: 0x%08X", sfntVersion)
	}

	var numTables uint16
	if err := binary.Read(r, binary.BigEndian, &numTables); err != nil {
		return nil, fmt.Errorf("fontdata: read table count: %w", err)
	}
	if _, err := r.Seek(6, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("fontdata: seek past directory header: %w", err)
	}

	for i := uint16(0); i < numTables; i++ {
		var tag [4]byte
		var entry tableEntry
		if _, err := r.Read(tag[:]); err != nil {
			return nil, fmt.Errorf("fontdata: read table tag: %w", err)
		}
		if err := binary.Read(r, binary.BigEndian, &entry.Checksum); err != nil {
			return nil, fmt.Errorf("fontdata: read table checksum: %w", err)
		}
		if err := binary.Read(r, binary.BigEndian, &entry.Offset); err != nil {
			return nil, fmt.Errorf("fontdata: read table offset: %w", err)
		}
		if err := binary.Read(r, binary.BigEndian, &entry.Length); err != nil {
			return nil, fmt.Errorf("fontdata: read table length: %w", err)
		}
		entry.Tag = string(tag[:])
		f.Tables[entry.Tag] = entry
	}

	if err := f.parseHead(data); err != nil {
		return nil, fmt.Errorf("fontdata: parse head table: %w", err)
	}
	if err := f.parseHhea(data); err != nil {
		return nil, fmt.Errorf("fontdata: parse hhea table: %w", err)
	}
	if err := f.parseMaxp(data); err != nil {
		return nil, fmt.Errorf("fontdata: parse maxp table: %w", err)
	}
	if err := f.parseHmtx(data); err != nil {
		return nil, fmt.Errorf("fontdata: parse hmtx table: %w", err)
	}
	if err := f.parseCmap(data); err != nil {
		return nil, fmt.Errorf("fontdata: parse cmap table: %w", err)
	}

	if err := f.parseName(data); err != nil {
		f.PostScriptName = "UnknownFont"
		f.FamilyName = "Unknown"
		f.FullName = "Unknown Font"
	}
	if err := f.parseOS2(data); err != nil {
		f.CapHeight = int16(float64(f.UnitsPerEm) * 0.7)
		f.XHeight = int16(float64(f.UnitsPerEm) * 0.5)
		f.StemV = 80
	}
	if err := f.parsePost(data); err != nil {
		f.ItalicAngle = 0
		f.IsFixedPitch = false
	}

	return f, nil
}

func (f *Font) parseHead(data []byte) error {
	table, ok := f.Tables["head"]
	if !ok {
		return errors.New("missing head table")
	}
	if table.Offset+54 > uint32(len(data)) {
		return errors.New("head table truncated")
	}
	r := bytes.NewReader(data[table.Offset:])
	if _, err := r.Seek(18, io.SeekCurrent); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &f.UnitsPerEm); err != nil {
		return err
	}
	if _, err := r.Seek(16, io.SeekCurrent); err != nil {
		return err
	}
	for _, dst := range []*int16{&f.BBox[0], &f.BBox[1], &f.BBox[2], &f.BBox[3]} {
		if err := binary.Read(r, binary.BigEndian, dst); err != nil {
			return err
		}
	}
	return nil
}

func (f *Font) parseHhea(data []byte) error {
	table, ok := f.Tables["hhea"]
	if !ok {
		return errors.New("missing hhea table")
	}
	if table.Offset+36 > uint32(len(data)) {
		return errors.New("hhea table truncated")
	}
	r := bytes.NewReader(data[table.Offset:])
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &f.Ascender); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &f.Descender); err != nil {
		return err
	}
	return binary.Read(r, binary.BigEndian, &f.LineGap)
}

func (f *Font) parseMaxp(data []byte) error {
	table, ok := f.Tables["maxp"]
	if !ok {
		return errors.New("missing maxp table")
	}
	if table.Offset+6 > uint32(len(data)) {
		return errors.New("maxp table truncated")
	}
	r := bytes.NewReader(data[table.Offset:])
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return err
	}
	return binary.Read(r, binary.BigEndian, &f.NumGlyphs)
}

func (f *Font) parseHmtx(data []byte) error {
	table, ok := f.Tables["hmtx"]
	if !ok {
		return errors.New("missing hmtx table")
	}
	hhea := f.Tables["hhea"]
	if hhea.Offset+36 > uint32(len(data)) {
		return errors.New("hhea table truncated")
	}
	var numberOfHMetrics uint16
	r := bytes.NewReader(data[hhea.Offset+34:])
	if err := binary.Read(r, binary.BigEndian, &numberOfHMetrics); err != nil {
		return err
	}

	f.GlyphWidths = make([]uint16, f.NumGlyphs)
	r = bytes.NewReader(data[table.Offset:])
	var lastWidth uint16
	for i := uint16(0); i < numberOfHMetrics; i++ {
		if err := binary.Read(r, binary.BigEndian, &f.GlyphWidths[i]); err != nil {
			return err
		}
		if _, err := r.Seek(2, io.SeekCurrent); err != nil {
			return err
		}
		lastWidth = f.GlyphWidths[i]
	}
	for i := numberOfHMetrics; i < f.NumGlyphs; i++ {
		f.GlyphWidths[i] = lastWidth
	}
	return nil
}

func (f *Font) parseCmap(data []byte) error {
	table, ok := f.Tables["cmap"]
	if !ok {
		return errors.New("missing cmap table")
	}
	r := bytes.NewReader(data[table.Offset:])
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return err
	}
	var numTables uint16
	if err := binary.Read(r, binary.BigEndian, &numTables); err != nil {
		return err
	}

	var bestOffset uint32
	var bestFormat uint16
	for i := uint16(0); i < numTables; i++ {
		var platformID, encodingID uint16
		var offset uint32
		if err := binary.Read(r, binary.BigEndian, &platformID); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &encodingID); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &offset); err != nil {
			return err
		}
		if (platformID == 3 && (encodingID == 1 || encodingID == 10)) || platformID == 0 {
			fr := bytes.NewReader(data[table.Offset+offset:])
			var format uint16
			if err := binary.Read(fr, binary.BigEndian, &format); err != nil {
				return err
			}
			if format == 12 || (format == 4 && bestFormat != 12) {
				bestOffset, bestFormat = offset, format
			}
		}
	}
	if bestOffset == 0 {
		return errors.New("no suitable cmap subtable found")
	}
	switch bestFormat {
	case 4:
		return f.parseCmapFormat4(data, table.Offset+bestOffset)
	case 12:
		return f.parseCmapFormat12(data, table.Offset+bestOffset)
	default:
		return fmt.Errorf("unsupported cmap format: %d", bestFormat)
	}
}

func (f *Font) parseCmapFormat4(data []byte, offset uint32) error {
	r := bytes.NewReader(data[offset:])
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return err
	}
	var length uint16
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return err
	}
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return err
	}
	var segCountX2 uint16
	if err := binary.Read(r, binary.BigEndian, &segCountX2); err != nil {
		return err
	}
	segCount := segCountX2 / 2
	if _, err := r.Seek(6, io.SeekCurrent); err != nil {
		return err
	}

	endCodes := make([]uint16, segCount)
	for i := range endCodes {
		if err := binary.Read(r, binary.BigEndian, &endCodes[i]); err != nil {
			return err
		}
	}
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return err
	}
	startCodes := make([]uint16, segCount)
	for i := range startCodes {
		if err := binary.Read(r, binary.BigEndian, &startCodes[i]); err != nil {
			return err
		}
	}
	idDeltas := make([]int16, segCount)
	for i := range idDeltas {
		if err := binary.Read(r, binary.BigEndian, &idDeltas[i]); err != nil {
			return err
		}
	}
	idRangeOffsetPos, _ := r.Seek(0, io.SeekCurrent)
	idRangeOffsets := make([]uint16, segCount)
	for i := range idRangeOffsets {
		if err := binary.Read(r, binary.BigEndian, &idRangeOffsets[i]); err != nil {
			return err
		}
	}

	for i := uint16(0); i < segCount; i++ {
		if startCodes[i] == 0xFFFF {
			break
		}
		for c := startCodes[i]; c <= endCodes[i]; c++ {
			var glyphID uint16
			if idRangeOffsets[i] == 0 {
				glyphID = uint16(int32(c) + int32(idDeltas[i]))
			} else {
				glyphIndexOffset := idRangeOffsetPos + int64(i)*2 + int64(idRangeOffsets[i]) + int64(c-startCodes[i])*2
				if glyphIndexOffset+2 <= int64(len(data[offset:])) {
					gr := bytes.NewReader(data[offset+uint32(glyphIndexOffset):])
					if err := binary.Read(gr, binary.BigEndian, &glyphID); err != nil {
						break
					}
					if glyphID != 0 {
						glyphID = uint16(int32(glyphID) + int32(idDeltas[i]))
					}
				}
			}
			if glyphID != 0 && glyphID < f.NumGlyphs {
				f.CharToGlyph[rune(c)] = glyphID
				f.GlyphToChar[glyphID] = rune(c)
			}
		}
	}
	return nil
}

func (f *Font) parseCmapFormat12(data []byte, offset uint32) error {
	r := bytes.NewReader(data[offset:])
	if _, err := r.Seek(12, io.SeekCurrent); err != nil {
		return err
	}
	var numGroups uint32
	if err := binary.Read(r, binary.BigEndian, &numGroups); err != nil {
		return err
	}
	for i := uint32(0); i < numGroups; i++ {
		var startCharCode, endCharCode, startGlyphID uint32
		if err := binary.Read(r, binary.BigEndian, &startCharCode); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &endCharCode); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &startGlyphID); err != nil {
			return err
		}
		for c := startCharCode; c <= endCharCode; c++ {
			glyphID := uint16(startGlyphID + (c - startCharCode))
			if glyphID < f.NumGlyphs {
				f.CharToGlyph[rune(c)] = glyphID
				f.GlyphToChar[glyphID] = rune(c)
			}
		}
	}
	return nil
}

func (f *Font) parseName(data []byte) error {
	table, ok := f.Tables["name"]
	if !ok {
		return errors.New("missing name table")
	}
	r := bytes.NewReader(data[table.Offset:])
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return err
	}
	var count, stringOffset uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &stringOffset); err != nil {
		return err
	}
	storageOffset := table.Offset + uint32(stringOffset)

	for i := uint16(0); i < count; i++ {
		var platformID, encodingID, languageID, nameID, length, offset uint16
		for _, dst := range []*uint16{&platformID, &encodingID, &languageID, &nameID, &length, &offset} {
			if err := binary.Read(r, binary.BigEndian, dst); err != nil {
				return err
			}
		}

		if platformID == 3 && encodingID == 1 {
			strStart, strEnd := storageOffset+uint32(offset), storageOffset+uint32(offset)+uint32(length)
			if strEnd <= uint32(len(data)) {
				str := decodeUTF16BE(data[strStart:strEnd])
				switch nameID {
				case 1:
					f.FamilyName = str
				case 4:
					f.FullName = str
				case 6:
					f.PostScriptName = str
				case 5:
					f.Version = str
				}
			}
		}
		if platformID == 1 && encodingID == 0 && f.PostScriptName == "" {
			strStart, strEnd := storageOffset+uint32(offset), storageOffset+uint32(offset)+uint32(length)
			if strEnd <= uint32(len(data)) {
				str := string(data[strStart:strEnd])
				switch nameID {
				case 1:
					if f.FamilyName == "" {
						f.FamilyName = str
					}
				case 4:
					if f.FullName == "" {
						f.FullName = str
					}
				case 6:
					if f.PostScriptName == "" {
						f.PostScriptName = str
					}
				}
			}
		}
	}

	if f.PostScriptName == "" {
		if f.FamilyName != "" {
			f.PostScriptName = sanitizePostScriptName(f.FamilyName)
		} else {
			f.PostScriptName = "UnknownFont"
		}
	}
	return nil
}

func (f *Font) parseOS2(data []byte) error {
	table, ok := f.Tables["OS/2"]
	if !ok {
		return errors.New("missing OS/2 table")
	}
	if table.Length < 78 {
		return errors.New("OS/2 table too short")
	}
	r := bytes.NewReader(data[table.Offset:])
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return err
	}
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return err
	}
	var usWeightClass uint16
	if err := binary.Read(r, binary.BigEndian, &usWeightClass); err != nil {
		return err
	}
	f.IsBold = usWeightClass >= 700
	if _, err := r.Seek(60, io.SeekCurrent); err != nil {
		return err
	}
	var fsSelection uint16
	if err := binary.Read(r, binary.BigEndian, &fsSelection); err != nil {
		return err
	}
	f.IsItalic = fsSelection&0x0001 != 0
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return err
	}

	if version >= 2 && table.Length >= 96 {
		if _, err := r.Seek(14, io.SeekCurrent); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &f.XHeight); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &f.CapHeight); err != nil {
			return err
		}
	} else {
		f.CapHeight = int16(float64(f.Ascender) * 0.7)
		f.XHeight = int16(float64(f.Ascender) * 0.5)
	}

	f.StemV = int16(50 + (usWeightClass-400)/10)
	if f.StemV < 50 {
		f.StemV = 50
	}
	if f.StemV > 200 {
		f.StemV = 200
	}
	return nil
}

func (f *Font) parsePost(data []byte) error {
	table, ok := f.Tables["post"]
	if !ok {
		return errors.New("missing post table")
	}
	if table.Length < 32 {
		return errors.New("post table too short")
	}
	r := bytes.NewReader(data[table.Offset:])
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return err
	}
	var italicAngleFixed int32
	if err := binary.Read(r, binary.BigEndian, &italicAngleFixed); err != nil {
		return err
	}
	f.ItalicAngle = float64(italicAngleFixed) / 65536.0
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return err
	}
	var isFixedPitch uint32
	if err := binary.Read(r, binary.BigEndian, &isFixedPitch); err != nil {
		return err
	}
	f.IsFixedPitch = isFixedPitch != 0
	return nil
}

// GlyphWidth returns a glyph's advance width in font design units.
func (f *Font) GlyphWidth(glyphID uint16) uint16 {
	if int(glyphID) < len(f.GlyphWidths) {
		return f.GlyphWidths[glyphID]
	}
	return 0
}

// CharWidthScaled returns a character's advance width scaled to PDF glyph
// space (1000 units per em).
func (f *Font) CharWidthScaled(char rune) int {
	glyphID, ok := f.CharToGlyph[char]
	if !ok {
		glyphID = 0
	}
	width := f.GlyphWidth(glyphID)
	return int(math.Round(float64(width) * 1000.0 / float64(f.UnitsPerEm)))
}

// UsedGlyphs returns the sorted set of glyph IDs needed to render text,
// always including glyph 0 (.notdef).
func (f *Font) UsedGlyphs(text string) []uint16 {
	set := map[uint16]bool{0: true}
	for _, r := range text {
		if glyphID, ok := f.CharToGlyph[r]; ok {
			set[glyphID] = true
		}
	}
	glyphs := make([]uint16, 0, len(set))
	for g := range set {
		glyphs = append(glyphs, g)
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	return glyphs
}

// PDFFlags returns the FontDescriptor /Flags value implied by this font's
// metrics.
func (f *Font) PDFFlags() int {
	flags := 0
	if f.IsFixedPitch {
		flags |= 1
	}
	flags |= 32 // nonsymbolic: Latin text fonts only
	if f.IsItalic {
		flags |= 64
	}
	if f.IsBold {
		flags |= 262144
	}
	return flags
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		return ""
	}
	runes := make([]rune, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		r := rune(data[i])<<8 | rune(data[i+1])
		if r >= 0xD800 && r <= 0xDBFF && i+2 < len(data) {
			low := rune(data[i+2])<<8 | rune(data[i+3])
			if low >= 0xDC00 && low <= 0xDFFF {
				r = 0x10000 + (r-0xD800)<<10 + (low - 0xDC00)
				i += 2
			}
		}
		runes = append(runes, r)
	}
	return string(runes)
}

func sanitizePostScriptName(name string) string {
	result := make([]byte, 0, len(name))
	for _, c := range name {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			result = append(result, byte(c))
		}
	}
	if len(result) == 0 {
		return "UnknownFont"
	}
	return string(result)
}
