package normalize

import (
	"strings"
	"unicode"
)

// Phone canonicalizes a raw telephone value to "(AAA) BBB-CCCC".
// Ten digits, or eleven digits with a leading 1, are formatted; anything else
// falls back to the bare digit string, or nil when no digits remain.
func Phone(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	digits := []rune(Digits(*raw))
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return nil
	}
	s := string(digits)
	if len(digits) == 10 {
		s = "(" + string(digits[0:3]) + ") " + string(digits[3:6]) + "-" + string(digits[6:10])
	}
	return &s
}

// Digits keeps the decimal digits of s, in any script.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
