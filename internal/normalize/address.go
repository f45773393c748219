package normalize

import (
	"regexp"
	"strings"

	"takaful/pkg/types"
)

// AddressComponents is the parsed form of a canonical comma-joined address.
type AddressComponents struct {
	Street     string
	PostalCode string
	City       string
	Country    string
}

var postalCodeRe = regexp.MustCompile(`\d{5}`)

// ParseAddressComponents splits a comma-separated address string. First
// segment is the street; the second segment's embedded 5-digit run is the
// postal code and the remainder the city; with three or more segments the
// last one is the country, otherwise the home country is assumed. Zero or
// one segments degrade to empty fields rather than failing.
func ParseAddressComponents(full string) AddressComponents {
	out := AddressComponents{Country: types.HomeCountry}

	parts := strings.Split(full, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return out
	}

	out.Street = parts[0]
	if len(parts) >= 2 {
		seg := parts[1]
		if code := postalCodeRe.FindString(seg); code != "" {
			out.PostalCode = code
			seg = strings.Replace(seg, code, "", 1)
		}
		out.City = strings.TrimSpace(seg)
	}
	if len(parts) >= 3 {
		out.Country = parts[len(parts)-1]
	}

	return out
}

// FormatAddressCanonical joins the non-empty parts as
// "{street}, {postalCode} {city}". This exact string is the comparison key
// used by change detection, so both sync directions must route through it.
func FormatAddressCanonical(street, postalCode, city string) string {
	street = strings.TrimSpace(street)
	locality := strings.TrimSpace(strings.TrimSpace(postalCode) + " " + strings.TrimSpace(city))

	switch {
	case street == "" && locality == "":
		return ""
	case street == "":
		return locality
	case locality == "":
		return street
	}
	return street + ", " + locality
}
