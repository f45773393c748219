package dirsync

import (
	"context"
	"errors"
	"fmt"

	"takaful/internal/diff"
	"takaful/internal/store"
	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
)

// HouseholdRule validates a resulting household composition before
// adult/child count changes are applied. The exact rule is a policy knob.
type HouseholdRule func(adultCount, childCount int) bool

// DefaultHouseholdRule: at least one adult, at most twenty people.
func DefaultHouseholdRule(adultCount, childCount int) bool {
	return adultCount >= 1 && adultCount+childCount <= 20
}

type PullEngine struct {
	directory  Directory
	families   store.FamilyStore
	households HouseholdRule
	logger     *logrus.Logger
}

func NewPullEngine(directory Directory, families store.FamilyStore, households HouseholdRule, logger *logrus.Logger) *PullEngine {
	if households == nil {
		households = DefaultHouseholdRule
	}
	return &PullEngine{directory: directory, families: families, households: households, logger: logger}
}

// ReverseSync folds hand-edits made in the directory back into the record
// table. Only entries in the global group are considered; an entry whose
// id prefix doesn't match any row is reported, never used to create one.
// Applied changes are terminal: a pull never triggers a re-push, which is
// what prevents ping-pong between the two stores.
func (e *PullEngine) ReverseSync(ctx context.Context) (*types.PullReport, error) {
	entries, err := e.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("directory scan failed: %w", err)
	}

	report := &types.PullReport{}
	for _, entry := range entries {
		if !InGroup(entry, types.DirectoryGlobalGroup) {
			continue
		}
		report.Total++

		id, ok := EntryID(entry)
		if !ok {
			report.Details = append(report.Details, types.PullDetail{
				Status:  "skipped",
				Message: fmt.Sprintf("unparseable given name %q", entry.GivenName),
			})
			continue
		}

		detail := e.syncEntry(ctx, id, entry)
		switch detail.Status {
		case "updated":
			report.Updated++
		case "unchanged":
			report.Unchanged++
		case "not_found":
			report.NotFound++
		case "error":
			report.Errors++
		}
		report.Details = append(report.Details, detail)
	}

	e.logger.WithFields(logrus.Fields{
		"total":     report.Total,
		"updated":   report.Updated,
		"unchanged": report.Unchanged,
		"not_found": report.NotFound,
		"errors":    report.Errors,
	}).Info("reverse sync complete")

	return report, nil
}

func (e *PullEngine) syncEntry(ctx context.Context, id int, entry types.DirectoryEntry) types.PullDetail {
	record, err := e.families.Family(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrFamilyNotFound) {
			return types.PullDetail{FamilyID: id, Status: "not_found"}
		}
		return types.PullDetail{FamilyID: id, Status: "error", Message: err.Error()}
	}

	view, _ := EntryView(entry, record)
	changes := diff.Compare(record, view)
	if len(changes) == 0 {
		return types.PullDetail{FamilyID: id, Status: "unchanged"}
	}

	changes, householdRejected := e.enforceHousehold(record, changes)
	if len(changes) == 0 && !householdRejected {
		return types.PullDetail{FamilyID: id, Status: "unchanged"}
	}

	fields := make(map[string]any, len(changes)+1)
	for _, c := range changes {
		fields[c.Field] = c.NewValue
	}

	if len(changes) > 0 {
		record.AppendComment("🔄", "directory sync: "+diff.Summary(changes))
	}
	fields["commentLog"] = record.CommentLog

	if err := e.families.UpdateFields(ctx, id, fields); err != nil {
		return types.PullDetail{FamilyID: id, Status: "error", Message: err.Error()}
	}

	return types.PullDetail{FamilyID: id, Status: "updated", Changes: changes}
}

// enforceHousehold drops the household-size portion of a change set when
// the resulting composition would be invalid; other changes still apply
// and the rejection leaves a comment on the record.
func (e *PullEngine) enforceHousehold(record *types.FamilyRecord, changes []types.Change) ([]types.Change, bool) {
	adults, children := record.AdultCount, record.ChildCount
	touched := false
	for _, c := range changes {
		switch c.Field {
		case "adultCount":
			adults = c.NewValue.(int)
			touched = true
		case "childCount":
			children = c.NewValue.(int)
			touched = true
		}
	}
	if !touched || e.households(adults, children) {
		return changes, false
	}

	record.AppendComment("⚠️", fmt.Sprintf(
		"rejected household change (%d adults, %d children)", adults, children))

	kept := make([]types.Change, 0, len(changes))
	for _, c := range changes {
		if c.Field == "adultCount" || c.Field == "childCount" {
			continue
		}
		kept = append(kept, c)
	}
	return kept, true
}
