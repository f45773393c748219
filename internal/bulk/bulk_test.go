package bulk

import (
	"bytes"
	"context"
	"testing"

	"takaful/internal/cache"
	"takaful/internal/dedupe"
	"takaful/internal/docs"
	"takaful/internal/ingest"
	"takaful/internal/mailer"
	"takaful/internal/store"
	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type stubGeo struct{}

func (stubGeo) ResolveAddressToUnit(ctx context.Context, street, postalCode, city string) types.GeoResolution {
	unit := "Q-17"
	return types.GeoResolution{IsValid: true, LocationUnitID: &unit}
}

func (stubGeo) UnitExists(ctx context.Context, unitID string) (bool, error) { return true, nil }

type stubPusher struct{}

func (stubPusher) SyncFamilyContact(ctx context.Context, record *types.FamilyRecord) error {
	return nil
}

func newService(t *testing.T, refs ...string) (*Service, *store.MemoryStore) {
	t.Helper()
	families := store.NewMemoryStore()
	detector := dedupe.NewDetector(families, cache.NewMemoryKV(), testLogger())
	engine := ingest.NewEngine(families, detector, stubGeo{}, docs.NewMemoryDocStore(refs...),
		stubPusher{}, &mailer.Recorder{}, "", testLogger())
	return NewService(engine, families, testLogger()), families
}

func buildWorkbook(t *testing.T, headers []string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, h))
	}
	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestImportCreatesFamiliesFromFrenchHeaders(t *testing.T) {
	svc, families := newService(t, "uploads/id.pdf")

	data := buildWorkbook(t,
		[]string{"Nom", "Prénom", "Téléphone", "Adresse", "Code postal", "Ville", "Adultes", "Enfants", "Zakat", "Ressenti", "Pièce d'identité"},
		[][]any{
			{"Dupont", "Jean", "0612345678", "12 rue des Lilas", "44000", "Nantes", 2, 3, "Oui", "situation difficile", "uploads/id.pdf"},
		},
	)

	report, err := svc.Import(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Rejected)

	record, err := families.Family(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "+33 6 12 34 56 78", record.Phone)
	assert.Equal(t, "12 rue des Lilas, 44000 Nantes", record.Address)
	assert.True(t, record.ZakatEligible)
	assert.Equal(t, "situation difficile", record.Feeling)
}

func TestImportBadRowDoesNotAbortFile(t *testing.T) {
	svc, families := newService(t, "uploads/id.pdf")

	data := buildWorkbook(t,
		[]string{"Nom", "Prénom", "Téléphone", "Adresse", "Code postal", "Ville", "Adultes", "Enfants", "Pièce d'identité"},
		[][]any{
			{"", "", "12", "", "", "", "", "", ""},
			{"Martin", "Claire", "0699999999", "3 place Royale", "44000", "Nantes", 1, 0, "uploads/id.pdf"},
		},
	)

	report, err := svc.Import(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Rejected)

	all, err := families.Families(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2) // rejection keeps a row too
}

func TestImportRowWithIDUpdates(t *testing.T) {
	svc, families := newService(t, "uploads/id.pdf")
	require.NoError(t, families.Create(context.Background(), &types.FamilyRecord{
		ID:       7,
		LastName: "Dupont",
		Phone:    "+33 6 12 34 56 78",
		Address:  "12 rue des Lilas, 44000 Nantes",
		Status:   types.FamilyStatusInProgress,
	}))

	data := buildWorkbook(t,
		[]string{"ID", "Criticité"},
		[][]any{{7, 4}},
	)

	report, err := svc.Import(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Zero(t, report.Created)

	record, err := families.Family(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, record.Severity)
	assert.Equal(t, "Dupont", record.LastName)
}

func TestExportRoundTrip(t *testing.T) {
	svc, families := newService(t)
	require.NoError(t, families.Create(context.Background(), &types.FamilyRecord{
		ID:        3,
		LastName:  "Benali",
		FirstName: "Samira",
		Phone:     "+33 7 11 22 33 44",
		Address:   "8 rue Haute, 44100 Nantes",
		Severity:  2,
		Status:    types.FamilyStatusValidated,
		Feeling:   "inquiète mais confiante",
	}))

	out, err := svc.Export(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Familles")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nom", rows[0][1])
	assert.Equal(t, "Ressenti", rows[0][16])
	assert.Equal(t, "Benali", rows[1][1])
	assert.Equal(t, "+33 7 11 22 33 44", rows[1][3])
	assert.Equal(t, "VALIDATED", rows[1][14])
	assert.Equal(t, "inquiète mais confiante", rows[1][16])
}
