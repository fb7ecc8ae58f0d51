package display

import (
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth. Words longer than a line are split.
func Wrap(text string) string {
	return WrapWidth(text, DefaultWidth)
}

func WrapWidth(text string, width int) string {
	return wrap.String(wordwrap.String(text, width), width)
}

// Truncate shortens s to width cells, ending it with an ellipsis when cut.
func Truncate(s string, width int) string {
	return truncate.StringWithTail(s, uint(width), "…")
}

// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	return indent.String(s, uint(n))
}
