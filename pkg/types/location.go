package types

// HomeCountry is appended to every geocoding request and filled in when an
// address omits its country segment.
const HomeCountry = "France"

// GeoResolution is the outcome of resolving a postal address to the
// smallest enclosing administrative unit.
//
// IsValid reports whether the address itself geocoded; a valid address may
// still carry no unit when nothing encloses it within the search radius, in
// which case Warning is set and the submission proceeds flagged.
type GeoResolution struct {
	IsValid          bool
	LocationUnitID   *string
	LocationUnitName string
	Latitude         float64
	Longitude        float64
	Warning          string
	Error            string
}

// LocationHierarchy is the three-level administrative chain above a unit.
type LocationHierarchy struct {
	District string `json:"district"`
	Sector   string `json:"sector"`
	City     string `json:"city"`
}

// GroupName renders the directory group derived from a hierarchy,
// "{city} - {sector}".
func (h LocationHierarchy) GroupName() string {
	return h.City + " - " + h.Sector
}
