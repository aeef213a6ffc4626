package model

import (
	"strings"
	"unicode"
)

// Camelize converts a snake_case key to camelCase.
func Camelize(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// Decamelize converts a camelCase (or PascalCase) key to snake_case.
// Acronym runs stay together: "HTTPStatus" becomes "http_status".
func Decamelize(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Kebabize converts a snake_case or camelCase key to kebab-case.
func Kebabize(s string) string {
	return strings.ReplaceAll(Decamelize(s), "_", "-")
}

// Dekebabize converts a kebab-case key to snake_case.
func Dekebabize(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// CamelizeKeys rewrites every mapping key in v to camelCase, recursing
// through nested mappings and lists. Non-container values pass through.
func CamelizeKeys(v any) any {
	return transformKeys(v, Camelize)
}

// DecamelizeKeys rewrites every mapping key in v to snake_case.
func DecamelizeKeys(v any) any {
	return transformKeys(v, Decamelize)
}

// KebabizeKeys rewrites every mapping key in v to kebab-case.
func KebabizeKeys(v any) any {
	return transformKeys(v, Kebabize)
}

func transformKeys(v any, rewrite func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, child := range val {
			out[rewrite(key)] = transformKeys(child, rewrite)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = transformKeys(child, rewrite)
		}
		return out
	default:
		return v
	}
}

// toSnake derives the wire name for an untagged struct field.
func toSnake(goName string) string {
	return Decamelize(goName)
}
