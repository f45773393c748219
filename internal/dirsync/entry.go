package dirsync

import (
	"regexp"
	"strconv"
	"time"

	"takaful/internal/diff"
	"takaful/internal/normalize"
	"takaful/pkg/types"
)

// idPrefixRe extracts the family id embedded in a directory given name.
var idPrefixRe = regexp.MustCompile(`^(\d+)\s*-`)

// EntryID parses the family id from an entry's given-name prefix; ok is
// false when the prefix is absent or malformed.
func EntryID(entry types.DirectoryEntry) (int, bool) {
	m := idPrefixRe.FindStringSubmatch(entry.GivenName)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// InGroup reports group membership; the pull direction only ever considers
// entries in the global group.
func InGroup(entry types.DirectoryEntry, group string) bool {
	for _, g := range entry.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// BuildEntry projects a family record onto a directory entry. Booleans in
// the custom-field bag are rendered as yes/no words in the record's
// language; whoever reads them back must parse tolerantly.
func BuildEntry(record *types.FamilyRecord, locationGroup string) types.DirectoryEntry {
	components := normalize.ParseAddressComponents(record.Address)

	entry := types.DirectoryEntry{
		GivenName:  strconv.Itoa(record.ID) + " -",
		MiddleName: record.FirstName,
		FamilyName: record.LastName,

		Street:     components.Street,
		PostalCode: components.PostalCode,
		City:       components.City,
		FormattedAddress: normalize.FormatAddressCanonical(
			components.Street, components.PostalCode, components.City),

		CustomFields: map[string]string{
			types.DirFieldSeverity:       strconv.Itoa(record.Severity),
			types.DirFieldAdultCount:     strconv.Itoa(record.AdultCount),
			types.DirFieldChildCount:     strconv.Itoa(record.ChildCount),
			types.DirFieldZakatEligible:  normalize.BoolToken(record.ZakatEligible, record.Language),
			types.DirFieldSadaqaEligible: normalize.BoolToken(record.SadaqaEligible, record.Language),
			types.DirFieldLanguage:       record.Language,
			types.DirFieldCanTravel:      normalize.BoolToken(record.CanTravel, record.Language),
			types.DirFieldLastUpdate:     time.Now().Format(time.RFC3339),
		},

		Groups: []string{types.DirectoryGlobalGroup},
	}

	if normalize.ValidPhone(record.Phone) {
		entry.Phone = normalize.Phone(record.Phone)
	}
	if record.PhoneSecondary != "" && normalize.ValidPhone(record.PhoneSecondary) {
		entry.PhoneSecondary = normalize.Phone(record.PhoneSecondary)
	}
	if normalize.ValidEmail(record.Email) {
		entry.Email = record.Email
	}
	if locationGroup != "" {
		entry.Groups = append(entry.Groups, locationGroup)
	}

	return entry
}

// EntryView converts a directory entry to the typed view the diff
// comparator consumes, against a given record. Custom fields may hold
// native-looking or localized tokens depending on who last wrote them, so
// every boolean goes through the tolerant parser; malformed or missing
// numbers and language fall back to the record's stored value so a typo in
// the directory never registers as a change.
func EntryView(entry types.DirectoryEntry, record *types.FamilyRecord) (diff.DirectoryView, types.DirectoryMeta) {
	meta := types.DirectoryMeta{
		ZakatEligible:  normalize.YesNoToken(entry.CustomFields[types.DirFieldZakatEligible]),
		SadaqaEligible: normalize.YesNoToken(entry.CustomFields[types.DirFieldSadaqaEligible]),
		CanTravel:      normalize.YesNoToken(entry.CustomFields[types.DirFieldCanTravel]),
		Severity:       record.Severity,
		AdultCount:     record.AdultCount,
		ChildCount:     record.ChildCount,
		Language:       record.Language,
	}

	if raw := entry.CustomFields[types.DirFieldLanguage]; raw != "" {
		meta.Language = types.NormalizeLanguage(raw)
	}
	if v, ok := normalize.ParseSeverity(entry.CustomFields[types.DirFieldSeverity]); ok {
		meta.Severity = v
	}
	if v, ok := normalize.ParseCount(entry.CustomFields[types.DirFieldAdultCount]); ok {
		meta.AdultCount = v
	}
	if v, ok := normalize.ParseCount(entry.CustomFields[types.DirFieldChildCount]); ok {
		meta.ChildCount = v
	}
	if t, err := time.Parse(time.RFC3339, entry.CustomFields[types.DirFieldLastUpdate]); err == nil {
		meta.LastUpdate = t
	}

	view := diff.DirectoryView{
		FirstName:      entry.MiddleName,
		LastName:       entry.FamilyName,
		Phone:          entry.Phone,
		PhoneSecondary: entry.PhoneSecondary,
		Email:          entry.Email,
		CanonicalAddress: normalize.FormatAddressCanonical(
			entry.Street, entry.PostalCode, entry.City),

		Severity:       meta.Severity,
		AdultCount:     meta.AdultCount,
		ChildCount:     meta.ChildCount,
		ZakatEligible:  meta.ZakatEligible,
		SadaqaEligible: meta.SadaqaEligible,
		Language:       meta.Language,
		CanTravel:      meta.CanTravel,
	}

	return view, meta
}
