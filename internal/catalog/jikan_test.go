package catalog

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_ASCII(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "abcdefg...", truncate("abcdefghij", 10))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	// 3-byte runes; a naive byte cut at n-3 would land mid-rune
	s := strings.Repeat("進", 10)

	for n := 4; n < len(s); n++ {
		out := truncate(s, n)
		assert.True(t, utf8.ValidString(out), "n=%d: %q", n, out)
		assert.LessOrEqual(t, len(out), n)
		assert.True(t, strings.HasSuffix(out, "..."), "n=%d: %q", n, out)
	}
}
