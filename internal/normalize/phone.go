// Package normalize holds the pure normalization helpers shared by the
// ingestion engine, the duplicate detector and both sync directions:
// phone/email/address forms, localized yes-no tokens and multilingual
// form-header mapping. No I/O besides a warning log on best-effort paths.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

var nonDigitRe = regexp.MustCompile(`\D`)

// Digits strips everything but digits, the comparison form used by the
// duplicate detector and the pull-sync phone diff.
func Digits(raw string) string {
	return nonDigitRe.ReplaceAllString(raw, "")
}

// Phone renders a French phone number to the canonical display form
// "+33 D DD DD DD DD". Accepted shapes: local 10-digit with leading 0,
// international 33/0033-prefixed, or bare 9 digits. When the digit count
// doesn't resolve to exactly 9 local digits after stripping a recognized
// prefix, the last 9 digits are used as a best-effort fallback; with fewer
// than 9 digits, or a local number starting with 0, the cleaned digit
// string is returned unchanged.
func Phone(raw string) string {
	cleaned := Digits(raw)

	var local string
	switch {
	case strings.HasPrefix(cleaned, "0033") && len(cleaned) == 13:
		local = cleaned[4:]
	case strings.HasPrefix(cleaned, "33") && len(cleaned) == 11:
		local = cleaned[2:]
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		local = cleaned[1:]
	case len(cleaned) == 9:
		local = cleaned
	case len(cleaned) > 9:
		local = cleaned[len(cleaned)-9:]
		logrus.WithFields(logrus.Fields{
			"raw":    raw,
			"digits": len(cleaned),
		}).Warn("phone did not match a known shape, keeping last 9 digits")
	default:
		return cleaned
	}

	if local[0] == '0' {
		return cleaned
	}

	return fmt.Sprintf("+33 %c %s %s %s %s",
		local[0], local[1:3], local[3:5], local[5:7], local[7:9])
}

var validPhoneRe = regexp.MustCompile(`^(0|33|0033)?[1-9]\d{8}$`)

// ValidPhone accepts exactly four shapes: 0 + 9 digits, 33 + 9 digits,
// 0033 + 9 digits, or bare 9 digits, the local part starting 1-9 in all of
// them. Formatting characters are stripped first.
func ValidPhone(raw string) bool {
	return validPhoneRe.MatchString(Digits(raw))
}
