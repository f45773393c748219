package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYesNoToken(t *testing.T) {
	assert.True(t, YesNoToken(true))
	assert.False(t, YesNoToken(false))

	assert.True(t, YesNoToken("Oui"))
	assert.True(t, YesNoToken("  oui "))
	assert.True(t, YesNoToken("yes"))
	assert.True(t, YesNoToken("نعم"))

	assert.False(t, YesNoToken("Non"))
	assert.False(t, YesNoToken("no"))
	assert.False(t, YesNoToken("لا"))

	// unrecognized tokens default to false
	assert.False(t, YesNoToken("peut-être"))
	assert.False(t, YesNoToken(""))
	assert.False(t, YesNoToken(42))
}

func TestBoolToken(t *testing.T) {
	assert.Equal(t, "Oui", BoolToken(true, "Français"))
	assert.Equal(t, "Non", BoolToken(false, "Français"))
	assert.Equal(t, "Yes", BoolToken(true, "English"))
	assert.Equal(t, "نعم", BoolToken(true, "العربية"))

	// unknown language falls back to French
	assert.Equal(t, "Non", BoolToken(false, "Deutsch"))
}

func TestParseSeverity(t *testing.T) {
	for raw, want := range map[string]int{"0": 0, "3": 3, "5": 5, "3.7": 3} {
		got, ok := ParseSeverity(raw)
		assert.True(t, ok, "input %q", raw)
		assert.Equal(t, want, got, "input %q", raw)
	}

	for _, raw := range []string{"-1", "6", "abc", "", "5.5abc"} {
		_, ok := ParseSeverity(raw)
		assert.False(t, ok, "input %q", raw)
	}
}

func TestParseCount(t *testing.T) {
	n, ok := ParseCount(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = ParseCount("-1")
	assert.False(t, ok)
	_, ok = ParseCount("two")
	assert.False(t, ok)
}
