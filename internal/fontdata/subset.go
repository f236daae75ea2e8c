package fontdata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"
)

// Subset builds a standalone TTF font program containing only the
// requested glyphs (plus .notdef), returning the new font bytes and the
// old-glyph-ID to new-glyph-ID remapping so a CIDToGIDMap can be built.
func Subset(f *Font, usedGlyphs []uint16) ([]byte, map[uint16]uint16, error) {
	if len(usedGlyphs) == 0 {
		return nil, nil, errors.New("fontdata: no glyphs to subset")
	}

	set := map[uint16]bool{0: true}
	for _, g := range usedGlyphs {
		if g < f.NumGlyphs {
			set[g] = true
		}
	}
	sorted := make([]uint16, 0, len(set))
	for g := range set {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	oldToNew := make(map[uint16]uint16, len(sorted))
	for newID, oldID := range sorted {
		oldToNew[oldID] = uint16(newID)
	}
	return buildSubsetFont(f, sorted, oldToNew)
}

// SubsetForText is a convenience wrapper that resolves the glyph set a
// string requires before subsetting.
func SubsetForText(f *Font, text string) ([]byte, map[uint16]uint16, error) {
	return Subset(f, f.UsedGlyphs(text))
}

func buildSubsetFont(f *Font, glyphs []uint16, oldToNew map[uint16]uint16) ([]byte, map[uint16]uint16, error) {
	var buf bytes.Buffer
	tables := make(map[string][]byte)

	tables["head"] = subsetHead(f)
	tables["hhea"] = subsetHhea(f, uint16(len(glyphs)))
	tables["maxp"] = subsetMaxp(f, uint16(len(glyphs)))

	glyfData, locaData, isShortLoca := subsetGlyfAndLoca(f, glyphs)
	tables["glyf"] = glyfData
	tables["loca"] = locaData
	if isShortLoca {
		tables["head"][50], tables["head"][51] = 0, 0
	} else {
		tables["head"][50], tables["head"][51] = 0, 1
	}

	tables["hmtx"] = subsetHmtx(f, glyphs)
	tables["cmap"] = subsetCmap(f, oldToNew)
	tables["post"] = subsetPost(f)
	tables["name"] = subsetName(f)

	if os2, ok := f.Tables["OS/2"]; ok && os2.Offset+os2.Length <= uint32(len(f.RawData)) {
		tables["OS/2"] = append([]byte(nil), f.RawData[os2.Offset:os2.Offset+os2.Length]...)
	}
	for _, name := range []string{"cvt ", "fpgm", "prep"} {
		if entry, ok := f.Tables[name]; ok && entry.Offset+entry.Length <= uint32(len(f.RawData)) {
			tables[name] = append([]byte(nil), f.RawData[entry.Offset:entry.Offset+entry.Length]...)
		}
	}

	numTables := uint16(len(tables))
	searchRange := uint16(1)
	entrySelector := uint16(0)
	for searchRange*2 <= numTables {
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 16
	rangeShift := numTables*16 - searchRange

	if err := binary.Write(&buf, binary.BigEndian, uint32(0x00010000)); err != nil {
		return nil, nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, numTables); err != nil {
		return nil, nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, searchRange); err != nil {
		return nil, nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, entrySelector); err != nil {
		return nil, nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rangeShift); err != nil {
		return nil, nil, err
	}

	tableOffset := uint32(12 + numTables*16)
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	offsets := make(map[string]uint32, len(names))
	for _, name := range names {
		data := tables[name]
		tag := []byte(name)
		for len(tag) < 4 {
			tag = append(tag, ' ')
		}
		checksum := tableChecksum(data)
		length := uint32(len(data))

		buf.Write(tag[:4])
		if err := binary.Write(&buf, binary.BigEndian, checksum); err != nil {
			return nil, nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, tableOffset); err != nil {
			return nil, nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, length); err != nil {
			return nil, nil, err
		}
		offsets[name] = tableOffset
		tableOffset += (length + 3) &^ 3
	}

	for _, name := range names {
		data := tables[name]
		buf.Write(data)
		if pad := (4 - len(data)%4) % 4; pad > 0 {
			buf.Write(make([]byte, pad))
		}
	}

	result := buf.Bytes()
	updateHeadChecksum(result, offsets["head"])
	return result, oldToNew, nil
}

func subsetHead(f *Font) []byte {
	t := f.Tables["head"]
	result := append([]byte(nil), f.RawData[t.Offset:t.Offset+t.Length]...)
	result[8], result[9], result[10], result[11] = 0, 0, 0, 0
	return result
}

func subsetHhea(f *Font, numGlyphs uint16) []byte {
	t := f.Tables["hhea"]
	result := append([]byte(nil), f.RawData[t.Offset:t.Offset+t.Length]...)
	binary.BigEndian.PutUint16(result[len(result)-2:], numGlyphs)
	return result
}

func subsetMaxp(f *Font, numGlyphs uint16) []byte {
	t := f.Tables["maxp"]
	result := append([]byte(nil), f.RawData[t.Offset:t.Offset+t.Length]...)
	binary.BigEndian.PutUint16(result[4:], numGlyphs)
	return result
}

func subsetGlyfAndLoca(f *Font, glyphs []uint16) ([]byte, []byte, bool) {
	glyfTable, hasGlyf := f.Tables["glyf"]
	locaTable, hasLoca := f.Tables["loca"]
	if !hasGlyf || !hasLoca {
		return []byte{}, []byte{0, 0}, true
	}

	head := f.Tables["head"]
	isShortLoca := f.RawData[head.Offset+50] == 0 && f.RawData[head.Offset+51] == 0
	locaData := f.RawData[locaTable.Offset : locaTable.Offset+locaTable.Length]
	glyfData := f.RawData[glyfTable.Offset : glyfTable.Offset+glyfTable.Length]

	var newGlyf bytes.Buffer
	newOffsets := make([]uint32, len(glyphs)+1)
	for i, glyphID := range glyphs {
		newOffsets[i] = uint32(newGlyf.Len())

		var offset, nextOffset uint32
		if isShortLoca {
			offset = uint32(binary.BigEndian.Uint16(locaData[int(glyphID)*2:])) * 2
			nextOffset = uint32(binary.BigEndian.Uint16(locaData[int(glyphID)*2+2:])) * 2
		} else {
			offset = binary.BigEndian.Uint32(locaData[int(glyphID)*4:])
			nextOffset = binary.BigEndian.Uint32(locaData[int(glyphID)*4+4:])
		}
		if nextOffset > offset && offset < uint32(len(glyfData)) {
			length := nextOffset - offset
			if offset+length > uint32(len(glyfData)) {
				length = uint32(len(glyfData)) - offset
			}
			newGlyf.Write(glyfData[offset : offset+length])
			if newGlyf.Len()%2 != 0 {
				newGlyf.WriteByte(0)
			}
		}
	}
	newOffsets[len(glyphs)] = uint32(newGlyf.Len())

	useShortLoca := newOffsets[len(glyphs)] <= 0xFFFF*2
	var newLoca bytes.Buffer
	for _, offset := range newOffsets {
		if useShortLoca {
			if err := binary.Write(&newLoca, binary.BigEndian, uint16(offset/2)); err != nil {
				return nil, nil, false
			}
		} else if err := binary.Write(&newLoca, binary.BigEndian, offset); err != nil {
			return nil, nil, false
		}
	}
	return newGlyf.Bytes(), newLoca.Bytes(), useShortLoca
}

func subsetHmtx(f *Font, glyphs []uint16) []byte {
	var buf bytes.Buffer
	for _, glyphID := range glyphs {
		_ = binary.Write(&buf, binary.BigEndian, f.GlyphWidth(glyphID))
		_ = binary.Write(&buf, binary.BigEndian, int16(0))
	}
	return buf.Bytes()
}

type cmapSegment struct {
	startCode, endCode uint16
	idDelta            int16
}

func subsetCmap(f *Font, oldToNew map[uint16]uint16) []byte {
	var buf bytes.Buffer

	charToNew := make(map[uint16]uint16)
	for char, oldGlyph := range f.CharToGlyph {
		if char > 0xFFFF {
			continue
		}
		if newGlyph, ok := oldToNew[oldGlyph]; ok {
			charToNew[uint16(char)] = newGlyph
		}
	}
	chars := make([]uint16, 0, len(charToNew))
	for c := range charToNew {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })

	var segments []cmapSegment
	if len(chars) > 0 {
		segStart, prevChar, prevGlyph := chars[0], chars[0], charToNew[chars[0]]
		for i := 1; i < len(chars); i++ {
			char, glyph := chars[i], charToNew[chars[i]]
			if char == prevChar+1 && glyph == prevGlyph+1 {
				prevChar, prevGlyph = char, glyph
				continue
			}
			segments = append(segments, cmapSegment{segStart, prevChar, int16(charToNew[segStart]) - int16(segStart)})
			segStart, prevChar, prevGlyph = char, char, glyph
		}
		segments = append(segments, cmapSegment{segStart, prevChar, int16(charToNew[segStart]) - int16(segStart)})
	}
	segments = append(segments, cmapSegment{0xFFFF, 0xFFFF, 1})

	segCount := uint16(len(segments))
	searchRange := uint16(1)
	entrySelector := uint16(0)
	for searchRange*2 <= segCount {
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 2
	rangeShift := segCount*2 - searchRange

	var f4 bytes.Buffer
	_ = binary.Write(&f4, binary.BigEndian, uint16(4))
	_ = binary.Write(&f4, binary.BigEndian, uint16(0))
	_ = binary.Write(&f4, binary.BigEndian, uint16(0))
	_ = binary.Write(&f4, binary.BigEndian, segCount*2)
	_ = binary.Write(&f4, binary.BigEndian, searchRange)
	_ = binary.Write(&f4, binary.BigEndian, entrySelector)
	_ = binary.Write(&f4, binary.BigEndian, rangeShift)
	for _, s := range segments {
		_ = binary.Write(&f4, binary.BigEndian, s.endCode)
	}
	_ = binary.Write(&f4, binary.BigEndian, uint16(0))
	for _, s := range segments {
		_ = binary.Write(&f4, binary.BigEndian, s.startCode)
	}
	for _, s := range segments {
		_ = binary.Write(&f4, binary.BigEndian, s.idDelta)
	}
	for range segments {
		_ = binary.Write(&f4, binary.BigEndian, uint16(0))
	}
	data := f4.Bytes()
	binary.BigEndian.PutUint16(data[2:], uint16(len(data)))

	_ = binary.Write(&buf, binary.BigEndian, uint16(0))
	_ = binary.Write(&buf, binary.BigEndian, uint16(1))
	_ = binary.Write(&buf, binary.BigEndian, uint16(3))
	_ = binary.Write(&buf, binary.BigEndian, uint16(1))
	_ = binary.Write(&buf, binary.BigEndian, uint32(12))
	buf.Write(data)
	return buf.Bytes()
}

func subsetPost(f *Font) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(0x00030000))
	_ = binary.Write(&buf, binary.BigEndian, int32(f.ItalicAngle*65536))
	_ = binary.Write(&buf, binary.BigEndian, int16(-100))
	_ = binary.Write(&buf, binary.BigEndian, int16(50))
	if f.IsFixedPitch {
		_ = binary.Write(&buf, binary.BigEndian, uint32(1))
	} else {
		_ = binary.Write(&buf, binary.BigEndian, uint32(0))
	}
	for i := 0; i < 4; i++ {
		_ = binary.Write(&buf, binary.BigEndian, uint32(0))
	}
	return buf.Bytes()
}

func subsetName(f *Font) []byte {
	var buf bytes.Buffer
	names := []struct {
		id    uint16
		value string
	}{
		{0, "Subset font"},
		{1, f.FamilyName},
		{2, "Regular"},
		{4, f.FullName},
		{5, f.Version},
		{6, f.PostScriptName},
	}

	var stringData bytes.Buffer
	type record struct{ platformID, encodingID, languageID, nameID, length, offset uint16 }
	var records []record
	for _, n := range names {
		offset := uint16(stringData.Len())
		encoded := encodeUTF16BE(n.value)
		stringData.Write(encoded)
		records = append(records, record{3, 1, 0x0409, n.id, uint16(len(encoded)), offset})
	}

	_ = binary.Write(&buf, binary.BigEndian, uint16(0))
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(records)))
	_ = binary.Write(&buf, binary.BigEndian, uint16(6+len(records)*12))
	for _, rec := range records {
		_ = binary.Write(&buf, binary.BigEndian, rec.platformID)
		_ = binary.Write(&buf, binary.BigEndian, rec.encodingID)
		_ = binary.Write(&buf, binary.BigEndian, rec.languageID)
		_ = binary.Write(&buf, binary.BigEndian, rec.nameID)
		_ = binary.Write(&buf, binary.BigEndian, rec.length)
		_ = binary.Write(&buf, binary.BigEndian, rec.offset)
	}
	buf.Write(stringData.Bytes())
	return buf.Bytes()
}

func tableChecksum(data []byte) uint32 {
	padded := data
	if len(data)%4 != 0 {
		padded = make([]byte, len(data)+(4-len(data)%4))
		copy(padded, data)
	}
	var sum uint32
	for i := 0; i < len(padded); i += 4 {
		sum += binary.BigEndian.Uint32(padded[i:])
	}
	return sum
}

func updateHeadChecksum(fontData []byte, headOffset uint32) {
	adjustment := uint32(0xB1B0AFBA) - tableChecksum(fontData)
	binary.BigEndian.PutUint32(fontData[headOffset+8:], adjustment)
}

func encodeUTF16BE(s string) []byte {
	var buf bytes.Buffer
	for _, r := range s {
		if r <= 0xFFFF {
			buf.WriteByte(byte(r >> 8))
			buf.WriteByte(byte(r))
			continue
		}
		r -= 0x10000
		high := uint16(0xD800 + (r >> 10))
		low := uint16(0xDC00 + (r & 0x3FF))
		buf.WriteByte(byte(high >> 8))
		buf.WriteByte(byte(high))
		buf.WriteByte(byte(low >> 8))
		buf.WriteByte(byte(low))
	}
	return buf.Bytes()
}
