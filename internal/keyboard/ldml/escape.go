package ldml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Escape normalises s to NFC and replaces control, format, whitespace
// (other than U+0020) and combining characters with \u{XXXX} escapes. A
// backslash is escaped only where it would start an escape, so Unescape
// always gives back the normalised text.
func Escape(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	for i, r := range s {
		if needsEscape(r) || (r == '\\' && strings.HasPrefix(s[i+1:], "u{")) {
			fmt.Fprintf(&b, `\u{%04X}`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func needsEscape(r rune) bool {
	if r == ' ' {
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf, unicode.Z, unicode.Mn, unicode.Me) ||
		unicode.IsSpace(r)
}

// Unescape reverses Escape. Malformed escapes are left as they are.
func Unescape(s string) string {
	if !strings.Contains(s, `\u{`) {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, `\u{`)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i:]
		end := strings.IndexByte(s, '}')
		var r rune
		if end < 0 || !parseHexRune(s[3:end], &r) {
			b.WriteString(`\u{`)
			s = s[3:]
			continue
		}
		b.WriteRune(r)
		s = s[end+1:]
	}
}

func parseHexRune(hex string, r *rune) bool {
	if hex == "" || len(hex) > 6 {
		return false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || v > unicode.MaxRune {
		return false
	}
	*r = rune(v)
	return true
}
