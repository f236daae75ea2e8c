package layout

import (
	"fmt"
	"strings"

	"github.com/quillforge/docpdf/internal/docmodel"
)

// numberingCounter tracks the running value for one (abstractNumID, level)
// pair.
type numberingCounter struct {
	value int
}

// NumberingState resolves list markers ("1.", "ii.", "a)", bullets) for
// numbered/bulleted paragraphs, following WordprocessingML's restart rule:
// starting a paragraph at a shallower level resets every deeper level's
// counter back to its StartAt value.
type NumberingState struct {
	defs     docmodel.NumberingDefinitions
	counters map[string]map[int]*numberingCounter
}

// NewNumberingState builds an empty counter state for the given numbering
// definitions.
func NewNumberingState(defs docmodel.NumberingDefinitions) *NumberingState {
	return &NumberingState{defs: defs, counters: map[string]map[int]*numberingCounter{}}
}

// Next advances and formats the marker for one list item at (abstractNumID,
// level).
func (s *NumberingState) Next(abstractNumID string, level int) string {
	levels, ok := s.defs[abstractNumID]
	if !ok || level < 0 || level >= len(levels) {
		return ""
	}
	def := levels[level]

	byLevel, ok := s.counters[abstractNumID]
	if !ok {
		byLevel = map[int]*numberingCounter{}
		s.counters[abstractNumID] = byLevel
	}

	// Restart any deeper level whose restart point is this level or
	// shallower, then this level itself if it hasn't been seen yet.
	for lvl, c := range byLevel {
		if lvl > level {
			if levels[lvl].RestartOn < 0 || levels[lvl].RestartOn <= level {
				c.value = levels[lvl].StartAt - 1
			}
		}
	}

	counter, ok := byLevel[level]
	if !ok {
		counter = &numberingCounter{value: def.StartAt - 1}
		byLevel[level] = counter
	}
	counter.value++

	return formatNumbering(def.Format, def.Text, counter.value)
}

func formatNumbering(format, text string, n int) string {
	var rendered string
	switch format {
	case "decimal":
		rendered = fmt.Sprintf("%d", n)
	case "lowerRoman":
		rendered = toRoman(n, false)
	case "upperRoman":
		rendered = toRoman(n, true)
	case "lowerLetter":
		rendered = toAlpha(n, false)
	case "upperLetter":
		rendered = toAlpha(n, true)
	case "bullet":
		if text != "" {
			return text
		}
		return "•"
	default:
		rendered = fmt.Sprintf("%d", n)
	}
	if text == "" {
		return rendered
	}
	return strings.ReplaceAll(text, "%1", rendered)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int, upper bool) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for _, entry := range romanTable {
		for n >= entry.value {
			b.WriteString(entry.symbol)
			n -= entry.value
		}
	}
	s := b.String()
	if !upper {
		return strings.ToLower(s)
	}
	return s
}

func toAlpha(n int, upper bool) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for n > 0 {
		n--
		letter := byte('a' + n%26)
		b.WriteByte(letter)
		n /= 26
	}
	runes := []byte(b.String())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	s := string(runes)
	if upper {
		return strings.ToUpper(s)
	}
	return s
}
