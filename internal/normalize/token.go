package normalize

import (
	"strconv"
	"strings"
)

var yesTokens = map[string]bool{
	"oui": true, "yes": true, "نعم": true,
}

var noTokens = map[string]bool{
	"non": true, "no": true, "لا": true,
}

// YesNoToken folds a loosely-typed boolean back to a bool. Native booleans
// pass through; strings are matched against localized yes/no tokens in the
// three supported languages. Anything unrecognized is false: directory
// custom fields may be written by hand, and a typo must not flip a flag on.
func YesNoToken(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		token := strings.ToLower(strings.TrimSpace(v))
		if yesTokens[token] {
			return true
		}
		if noTokens[token] {
			return false
		}
		return false
	default:
		return false
	}
}

// BoolToken renders a boolean as the localized yes/no word for a record
// language; the directory shows these to humans, not raw true/false.
func BoolToken(v bool, language string) string {
	switch language {
	case "English":
		if v {
			return "Yes"
		}
		return "No"
	case "العربية":
		if v {
			return "نعم"
		}
		return "لا"
	default:
		if v {
			return "Oui"
		}
		return "Non"
	}
}

// ParseSeverity parses a prioritization score from loose input: integers
// pass, floats truncate (3.7 -> 3), anything non-numeric or outside [0,5]
// is an error.
func ParseSeverity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0, false
		}
		n = int(f)
	}
	if n < 0 || n > 5 {
		return 0, false
	}
	return n, true
}

// ParseCount parses a non-negative household count.
func ParseCount(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
