package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneCanonicalForms(t *testing.T) {
	for _, raw := range []string{
		"0612345678",
		"33612345678",
		"0033612345678",
		"612345678",
		"06 12 34 56 78",
		"+33 6 12 34 56 78",
		"06.12.34.56.78",
	} {
		assert.Equal(t, "+33 6 12 34 56 78", Phone(raw), "input %q", raw)
	}
}

func TestPhoneFallbacks(t *testing.T) {
	// too many digits with no recognized prefix: keep the last 9
	assert.Equal(t, "+33 1 23 45 67 89", Phone("99123456789"))

	// fewer than 9 digits: cleaned digits returned unchanged
	assert.Equal(t, "12345", Phone("1-2-3-4-5"))

	// local part starting with 0 abandons normalization
	assert.Equal(t, "0012345678", Phone("0012345678"))
}

func TestValidPhone(t *testing.T) {
	valid := []string{"0612345678", "33612345678", "0033612345678", "612345678", "06 12 34 56 78"}
	for _, v := range valid {
		assert.True(t, ValidPhone(v), "input %q", v)
	}

	invalid := []string{"", "061234567", "06123456789", "0012345678", "abcdefghij", "0033012345678"}
	for _, v := range invalid {
		assert.False(t, ValidPhone(v), "input %q", v)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "33612345678", Digits("+33 6 12 34 56 78"))
	assert.Equal(t, "", Digits("abc"))
}
