package dirsync

import (
	"context"
	"fmt"

	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
)

// HierarchyResolver is the slice of the geo client the push engine needs
// to derive the "{city} - {sector}" location group.
type HierarchyResolver interface {
	Hierarchy(ctx context.Context, unitID string) (types.LocationHierarchy, error)
}

type PushEngine struct {
	directory Directory
	geo       HierarchyResolver
	logger    *logrus.Logger
}

func NewPushEngine(directory Directory, geo HierarchyResolver, logger *logrus.Logger) *PushEngine {
	return &PushEngine{directory: directory, geo: geo, logger: logger}
}

// SyncFamilyContact makes the directory agree with one record. A validated
// record gets its entry fully replaced (delete then recreate: the
// directory API offers no patch that is safe against stale writes, so a
// brief existence gap is accepted); any other status means the entry, if
// present, is removed. Lookup is a single full-list scan for the embedded
// id prefix.
func (e *PushEngine) SyncFamilyContact(ctx context.Context, record *types.FamilyRecord) error {
	entries, err := e.directory.List(ctx)
	if err != nil {
		return fmt.Errorf("directory scan failed: %w", err)
	}

	var existing *types.DirectoryEntry
	for i := range entries {
		if id, ok := EntryID(entries[i]); ok && id == record.ID {
			existing = &entries[i]
			break
		}
	}

	if record.Status != types.FamilyStatusValidated {
		if existing == nil {
			return nil
		}
		e.logger.WithFields(logrus.Fields{
			"family_id": record.ID,
			"status":    record.Status,
		}).Info("removing directory entry for non-validated family")
		return e.directory.Delete(ctx, existing.ResourceID)
	}

	if existing != nil {
		if err := e.directory.Delete(ctx, existing.ResourceID); err != nil {
			return fmt.Errorf("failed to delete stale directory entry: %w", err)
		}
	}

	entry := BuildEntry(record, e.locationGroup(ctx, record))
	if err := e.directory.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create directory entry: %w", err)
	}

	e.logger.WithField("family_id", record.ID).Info("directory entry synced")
	return nil
}

func (e *PushEngine) locationGroup(ctx context.Context, record *types.FamilyRecord) string {
	if record.LocationUnitID == nil || *record.LocationUnitID == "" {
		return ""
	}

	hierarchy, err := e.geo.Hierarchy(ctx, *record.LocationUnitID)
	if err != nil {
		e.logger.WithError(err).WithField("family_id", record.ID).
			Warn("location group unresolvable, syncing without it")
		return ""
	}
	return hierarchy.GroupName()
}
