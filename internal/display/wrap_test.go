package display

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWrapWidth(t *testing.T) {
	tests := map[string]struct {
		in    string
		width int
		exp   string
	}{
		"short":        {in: "hello there", width: 20, exp: "hello there"},
		"word break":   {in: "hello there friend", width: 11, exp: "hello there\nfriend"},
		"long word":    {in: "abcdefghij", width: 4, exp: "abcd\nefgh\nij"},
		"keeps breaks": {in: "one\ntwo", width: 20, exp: "one\ntwo"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "wrapped", WrapWidth(tt.in, tt.width), tt.exp)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := map[string]struct {
		in    string
		width int
		exp   string
	}{
		"fits": {in: "rowan", width: 8, exp: "rowan"},
		"cut":  {in: "0f4c2a9e-77aa", width: 6, exp: "0f4c2…"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "truncated", Truncate(tt.in, tt.width), tt.exp)
		})
	}
}

func TestIndent(t *testing.T) {
	testutil.AssertEqual(t, "indented", Indent("a\nb", 2), "  a\n  b")
}
