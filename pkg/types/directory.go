package types

import "time"

// Directory group every synced family belongs to, regardless of location.
const DirectoryGlobalGroup = "in-need"

// Custom-field keys used on directory entries. Boolean-carrying fields are
// serialized as localized yes/no tokens and must be parsed tolerantly on read.
const (
	DirFieldSeverity       = "criticite"
	DirFieldAdultCount     = "adultes"
	DirFieldChildCount     = "enfants"
	DirFieldZakatEligible  = "zakat"
	DirFieldSadaqaEligible = "sadaqa"
	DirFieldLanguage       = "langue"
	DirFieldCanTravel      = "se_deplace"
	DirFieldLastUpdate     = "derniere_maj"
)

// DirectoryEntry is the external contact-directory projection of a
// validated family record. The family id is embedded in a parseable prefix
// of the given-name field, "{id} -"; everything else is a plain mirror of
// record fields plus a custom key/value bag.
type DirectoryEntry struct {
	ResourceID string `json:"resourceId"`

	GivenName  string `json:"givenName"`  // "{id} -"
	MiddleName string `json:"middleName"` // first name
	FamilyName string `json:"familyName"` // last name

	Phone          string `json:"phone"`
	PhoneSecondary string `json:"phoneSecondary,omitempty"`
	Email          string `json:"email,omitempty"`

	Street           string `json:"street"`
	PostalCode       string `json:"postalCode"`
	City             string `json:"city"`
	FormattedAddress string `json:"formattedAddress"`

	CustomFields map[string]string `json:"customFields"`
	Groups       []string          `json:"groups"`
}

// DirectoryMeta is the typed view of a directory entry's custom fields,
// parsed back from localized string tokens on the pull path.
type DirectoryMeta struct {
	Severity       int
	AdultCount     int
	ChildCount     int
	ZakatEligible  bool
	SadaqaEligible bool
	Language       string
	CanTravel      bool
	LastUpdate     time.Time
}
