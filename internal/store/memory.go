package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"takaful/pkg/types"
)

// MemoryStore is an in-process FamilyStore used by tests and by the bulk
// import dry-run mode. Same observable contract as the Postgres repository.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int]*types.FamilyRecord

	// FailReads simulates an unreachable table; the duplicate detector
	// must fail open against it.
	FailReads bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[int]*types.FamilyRecord{}}
}

func (m *MemoryStore) Family(ctx context.Context, id int) (*types.FamilyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailReads {
		return nil, context.DeadlineExceeded
	}

	record, ok := m.records[id]
	if !ok {
		return nil, types.ErrFamilyNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *MemoryStore) Families(ctx context.Context) ([]*types.FamilyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailReads {
		return nil, context.DeadlineExceeded
	}

	out := make([]*types.FamilyRecord, 0, len(m.records))
	for _, record := range m.records {
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) MaxID(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailReads {
		return 0, context.DeadlineExceeded
	}

	max := 0
	for id := range m.records {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (m *MemoryStore) Create(ctx context.Context, record *types.FamilyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, record *types.FamilyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[record.ID]
	if !ok {
		return types.ErrFamilyNotFound
	}

	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now()
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *MemoryStore) UpdateFields(ctx context.Context, id int, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return types.ErrFamilyNotFound
	}

	for field, value := range fields {
		if err := applyField(record, field, value); err != nil {
			return err
		}
	}
	record.UpdatedAt = time.Now()
	return nil
}

func applyField(record *types.FamilyRecord, field string, value any) error {
	switch field {
	case "lastName":
		record.LastName = value.(string)
	case "firstName":
		record.FirstName = value.(string)
	case "zakatEligible":
		record.ZakatEligible = value.(bool)
	case "sadaqaEligible":
		record.SadaqaEligible = value.(bool)
	case "canTravel":
		record.CanTravel = value.(bool)
	case "adultCount":
		record.AdultCount = value.(int)
	case "childCount":
		record.ChildCount = value.(int)
	case "address":
		record.Address = value.(string)
	case "locationUnitId":
		if value == nil {
			record.LocationUnitID = nil
		} else {
			record.LocationUnitID = value.(*string)
		}
	case "email":
		record.Email = value.(string)
	case "phone":
		record.Phone = value.(string)
	case "phoneSecondary":
		record.PhoneSecondary = value.(string)
	case "identityDocRefs":
		record.IdentityDocRefs = value.(string)
	case "aidDocRefs":
		record.AidDocRefs = value.(string)
	case "circumstance":
		record.Circumstance = value.(string)
	case "feeling":
		record.Feeling = value.(string)
	case "specifics":
		record.Specifics = value.(string)
	case "severity":
		record.Severity = value.(int)
	case "language":
		record.Language = value.(string)
	case "status":
		record.Status = value.(types.FamilyStatus)
	case "commentLog":
		record.CommentLog = value.(types.CommentLog)
	default:
		return &unknownFieldError{field: field}
	}
	return nil
}

type unknownFieldError struct{ field string }

func (e *unknownFieldError) Error() string {
	return "unknown family field " + e.field
}
