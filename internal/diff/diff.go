// Package diff is the field-by-field comparator shared by both sync
// directions: it turns a directory-side view of a family into the list of
// cell-level changes the pull engine applies and the push engine logs.
package diff

import (
	"strings"

	"takaful/internal/normalize"
	"takaful/pkg/types"
)

// DirectoryView is the typed directory-side value set compared against a
// stored record. String fields left empty are treated as "unchanged", the
// same blank-means-unchanged policy the update path uses.
type DirectoryView struct {
	FirstName        string
	LastName         string
	Phone            string
	PhoneSecondary   string
	Email            string
	CanonicalAddress string

	Severity       int
	AdultCount     int
	ChildCount     int
	ZakatEligible  bool
	SadaqaEligible bool
	Language       string
	CanTravel      bool
}

// Compare returns the changes needed to fold the directory view into the
// record. Phones are canonicalized on both sides before comparing, so a
// local form and its stored "+33" form never register as an edit; email
// compares case-insensitively, the address on the exact canonical string;
// the six typed metadata fields compare directly.
func Compare(record *types.FamilyRecord, view DirectoryView) []types.Change {
	var changes []types.Change

	add := func(field string, oldValue, newValue any) {
		changes = append(changes, types.Change{Field: field, OldValue: oldValue, NewValue: newValue})
	}

	if view.FirstName != "" && view.FirstName != record.FirstName {
		add("firstName", record.FirstName, view.FirstName)
	}
	if view.LastName != "" && view.LastName != record.LastName {
		add("lastName", record.LastName, view.LastName)
	}

	if view.Phone != "" && !samePhone(view.Phone, record.Phone) {
		add("phone", record.Phone, normalize.Phone(view.Phone))
	}
	if view.PhoneSecondary != "" && !samePhone(view.PhoneSecondary, record.PhoneSecondary) {
		add("phoneSecondary", record.PhoneSecondary, normalize.Phone(view.PhoneSecondary))
	}

	if view.Email != "" && !strings.EqualFold(view.Email, record.Email) {
		add("email", record.Email, view.Email)
	}

	if view.CanonicalAddress != "" && view.CanonicalAddress != record.Address {
		add("address", record.Address, view.CanonicalAddress)
	}

	if view.Severity != record.Severity {
		add("severity", record.Severity, view.Severity)
	}
	if view.AdultCount != record.AdultCount {
		add("adultCount", record.AdultCount, view.AdultCount)
	}
	if view.ChildCount != record.ChildCount {
		add("childCount", record.ChildCount, view.ChildCount)
	}
	if view.ZakatEligible != record.ZakatEligible {
		add("zakatEligible", record.ZakatEligible, view.ZakatEligible)
	}
	if view.SadaqaEligible != record.SadaqaEligible {
		add("sadaqaEligible", record.SadaqaEligible, view.SadaqaEligible)
	}
	if view.Language != "" && view.Language != record.Language {
		add("language", record.Language, view.Language)
	}
	if view.CanTravel != record.CanTravel {
		add("canTravel", record.CanTravel, view.CanTravel)
	}

	return changes
}

// samePhone compares the digits of the canonical form of both numbers, so
// "0612345678" and "+33 6 12 34 56 78" are the same subscriber.
func samePhone(a, b string) bool {
	return normalize.Digits(normalize.Phone(a)) == normalize.Digits(normalize.Phone(b))
}

// Summary renders a short human-readable list of changed field names for
// comment-log entries.
func Summary(changes []types.Change) string {
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		names = append(names, c.Field)
	}
	return strings.Join(names, ", ")
}
