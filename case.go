package xmlserde

import "github.com/iancoleman/strcase"

// Case is a field-name casing policy, set per container with the
// rename_all option. It transforms Go field names into serialized
// tag and attribute names; it never affects matching on input, which
// is case-insensitive regardless.
type Case int

const (
	CaseNone Case = iota
	CaseLower
	CaseUpper
	CaseCamel
	CasePascal
	CaseSnake
	CaseKebab
	CaseScreamingSnake
	CaseScreamingKebab
)

func parseCase(s string) (Case, bool) {
	switch s {
	case "lowercase":
		return CaseLower, true
	case "UPPERCASE":
		return CaseUpper, true
	case "camelCase":
		return CaseCamel, true
	case "PascalCase":
		return CasePascal, true
	case "snake_case":
		return CaseSnake, true
	case "kebab-case":
		return CaseKebab, true
	case "SCREAMING_SNAKE_CASE":
		return CaseScreamingSnake, true
	case "SCREAMING-KEBAB-CASE":
		return CaseScreamingKebab, true
	}
	return CaseNone, false
}

// Convert applies the policy to a Go identifier.
func (c Case) Convert(name string) string {
	switch c {
	case CaseLower:
		return asciiLower(name)
	case CaseUpper:
		return asciiUpper(name)
	case CaseCamel:
		return strcase.ToLowerCamel(name)
	case CasePascal:
		return strcase.ToCamel(name)
	case CaseSnake:
		return strcase.ToSnake(name)
	case CaseKebab:
		return strcase.ToKebab(name)
	case CaseScreamingSnake:
		return strcase.ToScreamingSnake(name)
	case CaseScreamingKebab:
		return strcase.ToScreamingKebab(name)
	}
	return name
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// equalsCI reports whether two names are equal under ASCII case
// folding. Tag and attribute matching uses it everywhere on input.
func equalsCI(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
