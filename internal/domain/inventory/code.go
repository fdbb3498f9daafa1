package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode deja el código del producto en mayúsculas, sin acentos y sin espacios sobrantes.
// Ej: " parafuso-açõ 10 " → "PARAFUSO-ACO 10"
func NormalizeCode(code string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, code)
	if err != nil {
		clean = code
	}
	return strings.ToUpper(strings.Join(strings.Fields(clean), " "))
}
