package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"takaful/internal/bulk"
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

func (stubGeo) Hierarchy(ctx context.Context, unitID string) (types.LocationHierarchy, error) {
	return types.LocationHierarchy{District: "Zola", Sector: "Ouest", City: "Nantes"}, nil
}

type stubPusher struct{ pushed []int }

func (p *stubPusher) SyncFamilyContact(ctx context.Context, record *types.FamilyRecord) error {
	p.pushed = append(p.pushed, record.ID)
	return nil
}

func newTestService(t *testing.T, refs ...string) (*Service, *store.MemoryStore, *mailer.Recorder) {
	t.Helper()
	config := &types.Config{
		APIKey:        "secret",
		PublicBaseURL: "http://example.org",
	}
	families := store.NewMemoryStore()
	mail := &mailer.Recorder{}
	detector := dedupe.NewDetector(families, cache.NewMemoryKV(), testLogger())
	engine := ingest.NewEngine(families, detector, stubGeo{}, docs.NewMemoryDocStore(refs...),
		&stubPusher{}, mail, "admin@example.org", testLogger())
	bulkSvc := bulk.NewService(engine, families, testLogger())

	svc, err := New(config, testLogger(), families, engine, bulkSvc, stubGeo{}, mail)
	require.NoError(t, err)
	return svc, families, mail
}

func seedFamily(t *testing.T, families *store.MemoryStore, record types.FamilyRecord) {
	t.Helper()
	require.NoError(t, families.Create(context.Background(), &record))
}

func get(t *testing.T, svc *Service, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	return rr
}

func TestAPIRequiresKey(t *testing.T) {
	svc, _, _ := newTestService(t)

	rr := get(t, svc, "/api?action=allfamilies")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = get(t, svc, "/api?action=allfamilies&apiKey=wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = get(t, svc, "/api?action=allfamilies&apiKey=secret")
	assert.Equal(t, http.StatusOK, rr.Code)

	// snake_case variant also accepted
	rr = get(t, svc, "/api?action=allfamilies&api_key=secret")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPingDoesNotRequireKey(t *testing.T) {
	svc, _, _ := newTestService(t)

	rr := get(t, svc, "/api?action=ping")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestAPIUnknownAction(t *testing.T) {
	svc, _, _ := newTestService(t)

	rr := get(t, svc, "/api?action=bogus&apiKey=secret")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown action")
}

func TestFamilyByID(t *testing.T) {
	svc, families, _ := newTestService(t)
	seedFamily(t, families, types.FamilyRecord{ID: 5, LastName: "Dupont", Phone: "+33 6 12 34 56 78"})

	rr := get(t, svc, "/api?action=familybyid&id=5&apiKey=secret")
	require.Equal(t, http.StatusOK, rr.Code)
	var record types.FamilyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &record))
	assert.Equal(t, "Dupont", record.LastName)

	rr = get(t, svc, "/api?action=familybyid&id=99&apiKey=secret")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestZakatFilterOnlyValidated(t *testing.T) {
	svc, families, _ := newTestService(t)
	seedFamily(t, families, types.FamilyRecord{ID: 1, ZakatEligible: true, Status: types.FamilyStatusValidated})
	seedFamily(t, families, types.FamilyRecord{ID: 2, ZakatEligible: true, Status: types.FamilyStatusInProgress})
	seedFamily(t, families, types.FamilyRecord{ID: 3, ZakatEligible: false, Status: types.FamilyStatusValidated})

	rr := get(t, svc, "/api?action=familieszakatfitr&apiKey=secret")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []types.FamilyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}

func TestFamiliesByVille(t *testing.T) {
	svc, families, _ := newTestService(t)
	unit := "Q-17"
	seedFamily(t, families, types.FamilyRecord{ID: 1, LocationUnitID: &unit})
	seedFamily(t, families, types.FamilyRecord{ID: 2}) // no unit, skipped

	rr := get(t, svc, "/api?action=familiesbyville&ville=nantes&apiKey=secret")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []types.FamilyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}

func TestFormSubmitCreates(t *testing.T) {
	svc, families, _ := newTestService(t, "uploads/id.pdf")

	values := url.Values{
		"last_name":     {"Dupont"},
		"first_name":    {"Jean"},
		"phone":         {"0612345678"},
		"address":       {"12 rue des Lilas"},
		"postal_code":   {"44000"},
		"city":          {"Nantes"},
		"adult_count":   {"2"},
		"child_count":   {"3"},
		"identity_docs": {"uploads/id.pdf"},
	}
	req := httptest.NewRequest(http.MethodPost, "/forms/submit?apiKey=secret",
		strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, float64(1), out["familyId"])
	assert.Equal(t, false, out["rejected"])

	record, err := families.Family(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "+33 6 12 34 56 78", record.Phone)
}

func TestStatusChangeVetoReturns422(t *testing.T) {
	svc, families, _ := newTestService(t)
	unit := "Q-17"
	seedFamily(t, families, types.FamilyRecord{
		ID: 1, Status: types.FamilyStatusInProgress, Severity: 0, LocationUnitID: &unit,
	})

	body := bytes.NewReader([]byte(`{"status":"VALIDATED"}`))
	req := httptest.NewRequest(http.MethodPost, "/families/1/status?apiKey=secret", body)
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	record, err := families.Family(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, types.FamilyStatusInProgress, record.Status)
}

func TestStatusChangeValidates(t *testing.T) {
	svc, families, _ := newTestService(t)
	unit := "Q-17"
	seedFamily(t, families, types.FamilyRecord{
		ID: 1, Status: types.FamilyStatusInProgress, Severity: 3, LocationUnitID: &unit,
	})

	body := bytes.NewReader([]byte(`{"status":"VALIDATED"}`))
	req := httptest.NewRequest(http.MethodPost, "/families/1/status?apiKey=secret", body)
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	record, err := families.Family(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, types.FamilyStatusValidated, record.Status)
}

func TestSendVerificationEmails(t *testing.T) {
	svc, families, mail := newTestService(t)
	seedFamily(t, families, types.FamilyRecord{
		ID: 1, FirstName: "Jean", Email: "jean@example.com", Status: types.FamilyStatusValidated,
	})
	seedFamily(t, families, types.FamilyRecord{ID: 2, Status: types.FamilyStatusValidated}) // no email
	seedFamily(t, families, types.FamilyRecord{ID: 3, Email: "x@example.com", Status: types.FamilyStatusInProgress})

	rr := get(t, svc, "/api?action=sendverificationemails&apiKey=secret")
	require.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, mail.Sent, 1)
	assert.Equal(t, "jean@example.com", mail.Sent[0].To)
	assert.Contains(t, mail.Sent[0].HTML, "http://example.org/confirm/1?key=secret")
}

func TestConfirmFamilyInfoAction(t *testing.T) {
	svc, families, _ := newTestService(t)
	seedFamily(t, families, types.FamilyRecord{ID: 4, LastName: "Benali", FirstName: "Samira"})

	// reached from a mail link, so no shared key on the request
	rr := get(t, svc, "/api?action=confirmfamilyinfo&id=4")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "confirmées")

	record, err := families.Family(context.Background(), 4)
	require.NoError(t, err)
	require.NotEmpty(t, record.CommentLog)
	assert.Contains(t, record.CommentLog[0].Text, "confirmed")
}

func TestConfirmPage(t *testing.T) {
	svc, families, _ := newTestService(t)
	seedFamily(t, families, types.FamilyRecord{
		ID: 1, LastName: "Dupont", FirstName: "Jean", Phone: "+33 6 12 34 56 78",
	})

	rr := get(t, svc, "/confirm/1?key=secret")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Dupont")

	rr = get(t, svc, "/confirm/1?key=secret&confirm=1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "confirmées")

	record, err := families.Family(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, record.CommentLog)
	assert.Contains(t, record.CommentLog[0].Text, "confirmed")

	rr = get(t, svc, "/confirm/1?key=wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealthzUnauthenticated(t *testing.T) {
	svc, _, _ := newTestService(t)

	rr := get(t, svc, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
