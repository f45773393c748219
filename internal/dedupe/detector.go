// Package dedupe decides whether an incoming submission matches an
// existing family record. Matching is a full-table linear scan (the store
// contract offers nothing better) softened by a short-TTL cache.
package dedupe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"takaful/internal/cache"
	"takaful/internal/normalize"
	"takaful/internal/store"

	"github.com/sirupsen/logrus"
)

// Positive results are stable (a duplicate stays a duplicate) so they keep
// longer; negatives re-check sooner since the record may appear moments
// after a miss.
const (
	positiveTTL = 10 * time.Minute
	negativeTTL = 1 * time.Minute
)

// Match is the detector result. When Exists is false the submission is new.
type Match struct {
	Exists bool `json:"exists"`
	ID     int  `json:"id,omitempty"`
}

type Detector struct {
	families store.FamilyStore
	kv       cache.KV
	logger   *logrus.Logger
}

func NewDetector(families store.FamilyStore, kv cache.KV, logger *logrus.Logger) *Detector {
	return &Detector{families: families, kv: kv, logger: logger}
}

// FindDuplicate matches on normalized phone + lowercased last name, OR on
// case-insensitive email alone; an email match is sufficient even when
// phone and name differ. First match wins. If the table is unreachable the
// detector fails open and reports no duplicate: store unavailability must
// never block a submission.
func (d *Detector) FindDuplicate(ctx context.Context, phone, lastName, email string) Match {
	phoneKey := normalize.Digits(phone)
	nameKey := strings.ToLower(strings.TrimSpace(lastName))
	emailKey := strings.ToLower(strings.TrimSpace(email))

	cacheKey := fmt.Sprintf("dedupe:%s:%s", phoneKey, nameKey)
	if cached, err := d.kv.Get(ctx, cacheKey); err == nil {
		var m Match
		if err := json.Unmarshal([]byte(cached), &m); err == nil {
			return m
		}
	}

	records, err := d.families.Families(ctx)
	if err != nil {
		d.logger.WithError(err).Warn("duplicate check failed open, table unreachable")
		return Match{Exists: false}
	}

	match := Match{Exists: false}
	for _, record := range records {
		phoneAndName := phoneKey != "" && nameKey != "" &&
			normalize.Digits(record.Phone) == phoneKey &&
			strings.ToLower(strings.TrimSpace(record.LastName)) == nameKey
		emailOnly := emailKey != "" && strings.ToLower(strings.TrimSpace(record.Email)) == emailKey

		if phoneAndName || emailOnly {
			match = Match{Exists: true, ID: record.ID}
			break
		}
	}

	ttl := negativeTTL
	if match.Exists {
		ttl = positiveTTL
	}
	if encoded, err := json.Marshal(match); err == nil {
		if err := d.kv.Set(ctx, cacheKey, string(encoded), ttl); err != nil {
			d.logger.WithError(err).Debug("dedupe cache write failed")
		}
	}

	return match
}

// Invalidate drops the cached result for a phone/name pair, used after the
// engine creates or merges a record so the next submission re-scans.
func (d *Detector) Invalidate(ctx context.Context, phone, lastName string) {
	cacheKey := fmt.Sprintf("dedupe:%s:%s",
		normalize.Digits(phone), strings.ToLower(strings.TrimSpace(lastName)))
	if err := d.kv.Del(ctx, cacheKey); err != nil {
		d.logger.WithError(err).Debug("dedupe cache invalidation failed")
	}
}
