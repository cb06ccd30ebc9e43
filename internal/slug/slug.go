// Package slug turns free-form titles into URL-safe identifiers.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds the base slug; numeric suffixes may extend it.
const MaxLength = 50

// Fallback is used when a title has no ASCII letters or digits left after folding.
const Fallback = "post"

// Make derives a slug: accents are folded away, everything is lowercased,
// characters other than ASCII letters, digits, underscores, hyphens and
// whitespace are dropped, and runs of hyphens or whitespace collapse to a
// single hyphen. The result never starts or ends with '-' or '_'.
func Make(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case isWord(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			dash = true
		}
	}

	s := strings.Trim(b.String(), "-_")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-_")
	}
	return s
}

// Candidate returns the n-th slug to try for base, starting at n = 1.
// Candidate(base, 1) is base itself, later ones are base-2, base-3 and so on.
func Candidate(base string, n int) string {
	if base == "" {
		base = Fallback
	}
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Random appends a short random token to base, for when the numbered
// candidates are used up.
func Random(base string) string {
	if base == "" {
		base = Fallback
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return base + "-" + token[:12]
}

// Valid reports whether s could have been produced by Make or Candidate.
func Valid(s string) bool {
	if s == "" || strings.Trim(s, "-_") != s {
		return false
	}
	prev := rune(0)
	for _, r := range s {
		if r == '-' && prev == '-' {
			return false
		}
		if r != '-' && !isWord(r) {
			return false
		}
		prev = r
	}
	return true
}

func isWord(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}
