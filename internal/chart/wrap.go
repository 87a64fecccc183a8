package chart

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// LabelWidth is the display width at which row labels are wrapped.
const LabelWidth = 40

// Wrap breaks text into lines no wider than width display columns. Words
// wider than a line are split across lines, starting in the space left on
// the current one.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	width = max(width, 1)

	var (
		lines   []string
		current strings.Builder
		used    int
	)
	flush := func() {
		lines = append(lines, current.String())
		current.Reset()
		used = 0
	}
	for _, word := range words {
		w := runewidth.StringWidth(word)
		switch {
		case used > 0 && used+1+w <= width:
			current.WriteByte(' ')
			current.WriteString(word)
			used += 1 + w
			continue
		case w <= width:
			if used > 0 {
				flush()
			}
			current.WriteString(word)
			used = w
			continue
		}

		if used > 0 {
			if room := width - used - 1; room > 0 {
				head, rest := cutWidth(word, room)
				if head != "" {
					current.WriteByte(' ')
					current.WriteString(head)
					word = rest
				}
			}
			flush()
		}
		for runewidth.StringWidth(word) > width {
			head, rest := cutWidth(word, width)
			if head == "" {
				// A single rune wider than the line still gets a line of its own.
				r := []rune(word)
				head, rest = string(r[0]), string(r[1:])
			}
			lines = append(lines, head)
			word = rest
		}
		current.WriteString(word)
		used = runewidth.StringWidth(word)
	}
	if used > 0 {
		flush()
	}
	return lines
}

// cutWidth splits s after the longest prefix that fits in n display columns.
func cutWidth(s string, n int) (string, string) {
	used := 0
	for i, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > n {
			return s[:i], s[i:]
		}
		used += w
	}
	return s, ""
}
