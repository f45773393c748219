package seed

import (
	"context"
	"errors"
	"fmt"

	"takaful/internal/store"
	"takaful/internal/utils"
	"takaful/pkg/types"
)

// SeedFamilies inserts a handful of sample cases for local development.
// Existing rows with the same ids are left untouched, so reseeding is safe.
// Document refs only resolve against the dev bucket.
func SeedFamilies(ctx context.Context, families store.FamilyStore) error {
	samples := []types.FamilyRecord{
		{
			ID:              1,
			LastName:        "Dupont",
			FirstName:       "Jean",
			Phone:           "+33 6 12 34 56 78",
			Email:           "jean.dupont@example.com",
			Address:         "12 rue des Lilas, 44000 Nantes",
			LocationUnitID:  utils.StringPtr("Q-17"),
			AdultCount:      2,
			ChildCount:      3,
			ZakatEligible:   true,
			CanTravel:       true,
			Language:        types.LanguageFrench,
			Severity:        3,
			Status:          types.FamilyStatusValidated,
			IdentityDocRefs: "cases/1/id-card.pdf",
		},
		{
			ID:             2,
			LastName:       "Benali",
			FirstName:      "Samira",
			Phone:          "+33 7 11 22 33 44",
			Address:        "8 rue Haute, 44100 Nantes",
			LocationUnitID: utils.StringPtr("Q-03"),
			AdultCount:     1,
			ChildCount:     2,
			SadaqaEligible: true,
			Language:       types.LanguageArabic,
			Severity:       4,
			Status:         types.FamilyStatusInProgress,
		},
		{
			ID:         3,
			LastName:   "Martin",
			FirstName:  "Claire",
			Phone:      "+33 6 99 88 77 66",
			Address:    "3 place Royale, 44000 Nantes",
			AdultCount: 1,
			Language:   types.LanguageFrench,
			Status:     types.FamilyStatusReceived,
		},
	}

	for _, sample := range samples {
		_, err := families.Family(ctx, sample.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrFamilyNotFound) {
			return fmt.Errorf("failed to check family %d: %w", sample.ID, err)
		}

		record := sample
		if err := families.Create(ctx, &record); err != nil {
			return fmt.Errorf("failed to seed family %d: %w", sample.ID, err)
		}
	}

	return nil
}
