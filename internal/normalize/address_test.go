package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAddressCanonical(t *testing.T) {
	assert.Equal(t, "1 Rue de la Paix, 44000 Nantes",
		FormatAddressCanonical("1 Rue de la Paix", "44000", "Nantes"))

	assert.Equal(t, "1 Rue de la Paix", FormatAddressCanonical("1 Rue de la Paix", "", ""))
	assert.Equal(t, "44000 Nantes", FormatAddressCanonical("", "44000", "Nantes"))
	assert.Equal(t, "Nantes", FormatAddressCanonical("", "", "Nantes"))
	assert.Equal(t, "", FormatAddressCanonical("", "", ""))
}

func TestParseAddressComponents(t *testing.T) {
	c := ParseAddressComponents("1 Rue de la Paix, 44000 Nantes")
	assert.Equal(t, "1 Rue de la Paix", c.Street)
	assert.Equal(t, "44000", c.PostalCode)
	assert.Equal(t, "Nantes", c.City)
	assert.Equal(t, "France", c.Country)

	c = ParseAddressComponents("1 Rue de la Paix, 44000 Nantes, Belgique")
	assert.Equal(t, "Belgique", c.Country)

	c = ParseAddressComponents("1 Rue de la Paix")
	assert.Equal(t, "1 Rue de la Paix", c.Street)
	assert.Empty(t, c.PostalCode)
	assert.Empty(t, c.City)

	c = ParseAddressComponents("")
	assert.Empty(t, c.Street)
	assert.Equal(t, "France", c.Country)
}

func TestAddressRoundTrip(t *testing.T) {
	canonical := FormatAddressCanonical("1 Rue de la Paix", "44000", "Nantes")
	c := ParseAddressComponents(canonical)
	assert.Equal(t, canonical, FormatAddressCanonical(c.Street, c.PostalCode, c.City))
}
