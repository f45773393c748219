package normalize

import "regexp"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is deliberately loose: one @, no whitespace, a dot in the
// domain. Anything stricter rejects real addresses people type on forms.
func ValidEmail(raw string) bool {
	return emailRe.MatchString(raw)
}
