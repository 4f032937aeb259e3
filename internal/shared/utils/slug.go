package utils

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify builds a URL-safe slug: accent-folded, lowercase, [a-z0-9] with
// single hyphen separators and no leading/trailing hyphen.
func Slugify(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	// Decompose and strip combining marks so "Éxupéry" folds to "exupery".
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, input)
	if err != nil {
		folded = input
	}

	var b strings.Builder
	b.Grow(len(folded))
	prevHyphen := false

	for _, r := range folded {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}

		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '-' || r == '_' || unicode.IsSpace(r):
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		case r == '\'' || r == '’':
			// apostrophes vanish without a separator
		default:
			// drop remaining punctuation and symbols
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// ExistsFunc probes whether a slug is already taken. It is injected so the
// generator stays decoupled from the store.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// GenerateUniqueSlug tries base, then base-1, base-2, ... until the probe
// reports a free slug. The counter is unbounded; collisions are expected,
// not errors. Concurrent writers racing on the same base are not
// coordinated here; the store's unique constraint is the backstop.
func GenerateUniqueSlug(ctx context.Context, exists ExistsFunc, base string) (string, error) {
	slug := base

	for counter := 1; ; counter++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
