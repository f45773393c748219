package diff

import (
	"testing"

	"takaful/pkg/types"

	"github.com/stretchr/testify/assert"
)

func baseRecord() *types.FamilyRecord {
	return &types.FamilyRecord{
		ID:         7,
		FirstName:  "Jean",
		LastName:   "Dupont",
		Phone:      "+33 6 12 34 56 78",
		Email:      "jean@example.com",
		Address:    "1 Rue de la Paix, 44000 Nantes",
		Severity:   3,
		AdultCount: 2,
		ChildCount: 1,
		Language:   types.LanguageFrench,
	}
}

func matchingView() DirectoryView {
	return DirectoryView{
		FirstName:        "Jean",
		LastName:         "Dupont",
		Phone:            "0612345678",
		Email:            "JEAN@example.com",
		CanonicalAddress: "1 Rue de la Paix, 44000 Nantes",
		Severity:         3,
		AdultCount:       2,
		ChildCount:       1,
		Language:         types.LanguageFrench,
	}
}

func TestCompareNoChanges(t *testing.T) {
	// differently formatted phone and differently cased email are not changes
	assert.Empty(t, Compare(baseRecord(), matchingView()))
}

func TestCompareDetectsChanges(t *testing.T) {
	view := matchingView()
	view.Phone = "0699887766"
	view.Severity = 5
	view.CanTravel = true

	changes := Compare(baseRecord(), view)
	assert.Len(t, changes, 3)

	byField := map[string]types.Change{}
	for _, c := range changes {
		byField[c.Field] = c
	}

	assert.Equal(t, "+33 6 99 88 77 66", byField["phone"].NewValue)
	assert.Equal(t, 5, byField["severity"].NewValue)
	assert.Equal(t, true, byField["canTravel"].NewValue)
}

func TestComparePhoneFormatsAreEquivalent(t *testing.T) {
	record := baseRecord()
	record.PhoneSecondary = "+33 7 11 22 33 44"

	for _, phone := range []string{"0612345678", "+33612345678", "0033 6 12 34 56 78", "+33 6 12 34 56 78"} {
		view := matchingView()
		view.Phone = phone
		view.PhoneSecondary = "07 11 22 33 44"

		assert.Empty(t, Compare(record, view), "phone %q", phone)
	}
}

func TestCompareBlankMeansUnchanged(t *testing.T) {
	view := matchingView()
	view.FirstName = ""
	view.Email = ""
	view.CanonicalAddress = ""

	assert.Empty(t, Compare(baseRecord(), view))
}

func TestSummary(t *testing.T) {
	changes := []types.Change{{Field: "phone"}, {Field: "severity"}}
	assert.Equal(t, "phone, severity", Summary(changes))
}
