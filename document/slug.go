package document

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// Slugify derives a heading slug: lowercase, punctuation stripped, runs of
// whitespace collapsed to a single hyphen.
func Slugify(title string) string {
	return SlugifyWith(DefaultSlugNormalizer(), title)
}

// SlugifyWith applies the local punctuation rule and then the normalizer.
// When the normalizer fails or returns nothing, the local form is used.
func SlugifyWith(normalizer SlugNormalizer, title string) string {
	local := stripPunctuation(title)
	if local == "" {
		return ""
	}
	if normalizer == nil {
		return local
	}
	normalized, err := normalizer.Normalize(local)
	if err != nil || normalized == "" {
		return local
	}
	return normalized
}

func stripPunctuation(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingSpace := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Trim(b.String(), "-")
}
