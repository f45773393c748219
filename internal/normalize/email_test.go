package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("test@example.com"))
	assert.True(t, ValidEmail("user+tag@example.com"))

	assert.False(t, ValidEmail("test @example.com"))
	assert.False(t, ValidEmail("test@example"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail(""))
}

func TestFieldName(t *testing.T) {
	for header, want := range map[string]string{
		"Nom":         "lastName",
		"  prénom  ":  "firstName",
		"TELEPHONE":   "phone",
		"الهاتف":      "phone",
		"Code Postal": "postalCode",
		"criticité":   "severity",
	} {
		got, ok := FieldName(header)
		assert.True(t, ok, "header %q", header)
		assert.Equal(t, want, got, "header %q", header)
	}

	_, ok := FieldName("favorite color")
	assert.False(t, ok)
}
