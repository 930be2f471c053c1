package wheel

import "strings"

// MaxLabelRunes is the longest label drawn without truncation.
const MaxLabelRunes = 8

// Ellipsis replaces the tail of truncated labels.
const Ellipsis = ".."

// Options is the ordered list of slice labels. Order decides slice placement
// and therefore which label a rotation lands on. Labels may repeat.
type Options []string

// Parse splits raw text into options: one per line, trimmed, blank lines
// dropped. Empty input yields the placeholder pair so the wheel always has
// something to draw.
func Parse(raw string, placeholder [2]string) Options {
	lines := strings.Split(raw, "\n")
	out := make(Options, 0, len(lines))
	for _, line := range lines {
		label := strings.TrimSpace(line)
		if label == "" {
			continue
		}
		out = append(out, label)
	}
	if len(out) == 0 {
		return Options{placeholder[0], placeholder[1]}
	}
	return out
}

// Text joins the options back into the newline-separated form Parse accepts.
func (o Options) Text() string {
	return strings.Join(o, "\n")
}

// Equal reports whether both lists hold the same labels in the same order.
func (o Options) Equal(other Options) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// Truncate shortens labels longer than MaxLabelRunes to MaxLabelRunes-1 runes
// followed by Ellipsis.
func Truncate(label string) string {
	runes := []rune(label)
	if len(runes) <= MaxLabelRunes {
		return label
	}
	return string(runes[:MaxLabelRunes-1]) + Ellipsis
}
