package events

import (
	"fmt"
	"strconv"
	"strings"
)

var unescapeTable = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// Unescape resolves the predefined XML entity references and numeric
// character references in s.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '&') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		amp := strings.IndexByte(s, '&')
		if amp < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		b.WriteString(s[:amp])
		s = s[amp+1:]
		semi := strings.IndexByte(s, ';')
		if semi < 0 {
			return "", fmt.Errorf("unterminated entity reference %q", "&"+s)
		}
		ref := s[:semi]
		s = s[semi+1:]
		if resolved, ok := unescapeTable[ref]; ok {
			b.WriteString(resolved)
			continue
		}
		r, err := unescapeCharRef(ref)
		if err != nil {
			return "", err
		}
		b.WriteRune(r)
	}
}

func unescapeCharRef(ref string) (rune, error) {
	if len(ref) < 2 || ref[0] != '#' {
		return 0, fmt.Errorf("unknown entity reference %q", "&"+ref+";")
	}
	digits, base := ref[1:], 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits, base = digits[1:], 16
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid character reference %q", "&"+ref+";")
	}
	return rune(n), nil
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

// EscapeText renders s as XML character data.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr renders s as a double-quoted attribute value body.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
