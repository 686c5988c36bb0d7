package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const markOpen = `<mark class="search-highlight">`
const markClose = `</mark>`

func escapeHTML(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// highlightLabel wraps every non-overlapping case-insensitive occurrence of
// query in a highlight mark, scanning left to right. The query is a literal
// substring; it carries no pattern metacharacters. Both the matched and
// unmatched label segments are HTML-escaped.
//
// Matching runs over a rune-by-rune lowered copy of the label while marks
// are placed in the original text, so case mapping that changes byte
// length never splits a rune or indexes past the label.
func highlightLabel(text, query string) string {
	lowered, bounds := foldLabel(text)
	var b strings.Builder
	pos := 0  // offset in lowered
	last := 0 // offset in text written so far
	for {
		idx := strings.Index(lowered[pos:], query)
		if idx < 0 {
			b.WriteString(escapeHTML(text[last:]))
			return b.String()
		}
		start := pos + idx
		end := start + len(query)
		origStart, startOK := bounds[start]
		origEnd, endOK := bounds[end]
		if !startOK || !endOK {
			// Match begins or ends inside a lowered rune; no rune-aligned
			// span of the original corresponds to it.
			pos = start + 1
			continue
		}
		b.WriteString(escapeHTML(text[last:origStart]))
		b.WriteString(markOpen)
		b.WriteString(escapeHTML(text[origStart:origEnd]))
		b.WriteString(markClose)
		pos = end
		last = origEnd
	}
}

// foldLabel lowercases text one rune at a time and records, for every rune
// boundary of the lowered form, the matching byte offset in the original.
func foldLabel(text string) (string, map[int]int) {
	var b strings.Builder
	bounds := map[int]int{0: 0}
	for i, r := range text {
		b.WriteRune(unicode.ToLower(r))
		bounds[b.Len()] = i + utf8.RuneLen(r)
	}
	return b.String(), bounds
}
