package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that have no decomposition into a base letter plus accents
var ligatures = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ł", "l",
	"þ", "th",
	"ı", "i",
)

// GenerateSlug derives the URL identifier of an article from its title.
// Accents are folded ("é" becomes "e", "ß" becomes "ss"), everything is lowercased and every
// run of characters outside [a-z0-9] collapses into a single hyphen, with no
// hyphen at either end. Applying it to its own output changes nothing.
//
// Example: "Café & Déjà Vu!" -> "cafe-deja-vu"
func GenerateSlug(title string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, title)
	if err != nil {
		folded = title
	}

	var sb strings.Builder
	pendingHyphen := false
	for _, r := range ligatures.Replace(strings.ToLower(folded)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return sb.String()
}
