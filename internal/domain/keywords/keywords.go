package keywords

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer descompone, elimina marcas diacríticas y recompone.
// "Jardinería" -> "Jardineria".
var normalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize pasa a minúsculas y elimina tildes/diacríticos. Es la forma
// canónica tanto de los tokens indexados como del término buscado.
func Normalize(s string) string {
	out, _, err := transform.String(normalizer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// FromName deriva los tokens de búsqueda de un nombre de producto:
// minúsculas, sin tildes, sin signos, sin duplicados, en orden de aparición.
func FromName(name string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, Normalize(name))

	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Slug deriva el slug de una categoría: minúsculas sin tildes, sin signos,
// espacios reemplazados por guiones. No se garantiza unicidad.
func Slug(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, Normalize(strings.TrimSpace(name)))
	return strings.Join(strings.Fields(cleaned), "-")
}
