package naming

import "strings"

// Unicode vulgar fractions show up in issue numbers ("½"). They are
// transliterated before sanitization so the identifier survives inside
// the allowed character set instead of vanishing.
var fractions = strings.NewReplacer(
	"¼", "1-4",
	"½", "1-2",
	"¾", "3-4",
	"⅓", "1-3",
	"⅔", "2-3",
	"⅕", "1-5",
	"⅙", "1-6",
	"⅛", "1-8",
)

// Sanitize filters a token value down to [0-9a-zA-Z&!-]. Hyphens and
// runs of whitespace normalize to single hyphens so word boundaries
// survive; every other character outside the set is dropped. Applying
// Sanitize to its own output is a no-op.
func Sanitize(value string) string {
	value = fractions.Replace(value)
	value = strings.ReplaceAll(value, "-", " ")

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r == '&' || r == '!':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
