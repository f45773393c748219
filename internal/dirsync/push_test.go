package dirsync

import (
	"context"
	"testing"

	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type staticHierarchy struct {
	h   types.LocationHierarchy
	err error
}

func (s staticHierarchy) Hierarchy(ctx context.Context, unitID string) (types.LocationHierarchy, error) {
	return s.h, s.err
}

func validatedRecord() *types.FamilyRecord {
	unitID := "Q-17"
	return &types.FamilyRecord{
		ID:             12,
		FirstName:      "Jean",
		LastName:       "Dupont",
		Phone:          "0612345678",
		Email:          "jean@example.com",
		Address:        "1 Rue de la Paix, 44000 Nantes",
		LocationUnitID: &unitID,
		Severity:       3,
		AdultCount:     2,
		ChildCount:     1,
		ZakatEligible:  true,
		Language:       types.LanguageFrench,
		Status:         types.FamilyStatusValidated,
	}
}

func TestPushCreatesEntry(t *testing.T) {
	dir := NewMemoryDirectory()
	engine := NewPushEngine(dir, staticHierarchy{
		h: types.LocationHierarchy{District: "Bellevue", Sector: "Ouest", City: "Nantes"},
	}, testLogger())

	require.NoError(t, engine.SyncFamilyContact(context.Background(), validatedRecord()))
	require.Len(t, dir.Entries, 1)

	var entry types.DirectoryEntry
	for _, e := range dir.Entries {
		entry = e
	}

	assert.Equal(t, "12 -", entry.GivenName)
	assert.Equal(t, "Jean", entry.MiddleName)
	assert.Equal(t, "Dupont", entry.FamilyName)
	assert.Equal(t, "+33 6 12 34 56 78", entry.Phone)
	assert.Equal(t, "1 Rue de la Paix, 44000 Nantes", entry.FormattedAddress)
	assert.Equal(t, "Oui", entry.CustomFields[types.DirFieldZakatEligible])
	assert.Equal(t, "Non", entry.CustomFields[types.DirFieldSadaqaEligible])
	assert.ElementsMatch(t, []string{types.DirectoryGlobalGroup, "Nantes - Ouest"}, entry.Groups)
}

func TestPushReplacesExistingEntry(t *testing.T) {
	dir := NewMemoryDirectory()
	engine := NewPushEngine(dir, staticHierarchy{}, testLogger())

	ctx := context.Background()
	record := validatedRecord()
	record.LocationUnitID = nil

	require.NoError(t, engine.SyncFamilyContact(ctx, record))
	record.Severity = 5
	require.NoError(t, engine.SyncFamilyContact(ctx, record))

	require.Len(t, dir.Entries, 1, "replace, don't accumulate")
	for _, entry := range dir.Entries {
		assert.Equal(t, "5", entry.CustomFields[types.DirFieldSeverity])
	}
}

func TestPushRemovesEntryForNonValidated(t *testing.T) {
	dir := NewMemoryDirectory()
	engine := NewPushEngine(dir, staticHierarchy{}, testLogger())

	ctx := context.Background()
	record := validatedRecord()
	record.LocationUnitID = nil
	require.NoError(t, engine.SyncFamilyContact(ctx, record))
	require.Len(t, dir.Entries, 1)

	record.Status = types.FamilyStatusArchived
	require.NoError(t, engine.SyncFamilyContact(ctx, record))
	assert.Empty(t, dir.Entries)
}

func TestPushSurvivesUnresolvableHierarchy(t *testing.T) {
	dir := NewMemoryDirectory()
	engine := NewPushEngine(dir, staticHierarchy{err: context.DeadlineExceeded}, testLogger())

	require.NoError(t, engine.SyncFamilyContact(context.Background(), validatedRecord()))
	for _, entry := range dir.Entries {
		assert.Equal(t, []string{types.DirectoryGlobalGroup}, entry.Groups)
	}
}

func TestEntryID(t *testing.T) {
	id, ok := EntryID(types.DirectoryEntry{GivenName: "42 - "})
	assert.True(t, ok)
	assert.Equal(t, 42, id)

	id, ok = EntryID(types.DirectoryEntry{GivenName: "7-"})
	assert.True(t, ok)
	assert.Equal(t, 7, id)

	_, ok = EntryID(types.DirectoryEntry{GivenName: "Jean"})
	assert.False(t, ok)

	_, ok = EntryID(types.DirectoryEntry{GivenName: "- 12"})
	assert.False(t, ok)
}
