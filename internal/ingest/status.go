package ingest

import (
	"context"
	"fmt"

	"takaful/internal/docs"
	"takaful/pkg/types"
)

// ChangeStatus applies a status transition. Moving to VALIDATED is gated:
// the case must carry a severity between 1 and 5 and a location unit that
// still exists. A failed gate reverts the status and records why, so the
// stored row never shows VALIDATED without having passed.
//
// A successful validation moves the case documents into the case folder and
// pushes the record to the directory. Any transition away from VALIDATED,
// ARCHIVED included, also pushes, which removes the directory entry.
func (e *Engine) ChangeStatus(ctx context.Context, id int, next types.FamilyStatus) error {
	if !next.Valid() {
		verr := types.NewValidationError()
		verr.Add("status", fmt.Sprintf("unknown status %q", next))
		return verr
	}

	record, err := e.families.Family(ctx, id)
	if err != nil {
		return err
	}
	previous := record.Status
	if previous == next {
		return nil
	}

	if next == types.FamilyStatusValidated {
		if reason := e.validationGate(ctx, record); reason != "" {
			record.AppendComment("🚫", "validation refused: "+reason)
			fields := map[string]any{
				"status":     previous,
				"commentLog": record.CommentLog,
			}
			if err := e.families.UpdateFields(ctx, id, fields); err != nil {
				return fmt.Errorf("failed to revert status of family %d: %w", id, err)
			}
			verr := types.NewValidationError()
			verr.Add("status", reason)
			return verr
		}
	}

	record.Status = next
	record.AppendComment("🔁", fmt.Sprintf("status %s -> %s", previous, next))
	fields := map[string]any{
		"status":     next,
		"commentLog": record.CommentLog,
	}
	if err := e.families.UpdateFields(ctx, id, fields); err != nil {
		return fmt.Errorf("failed to set status of family %d: %w", id, err)
	}

	if next == types.FamilyStatusValidated {
		if err := e.organizeDocuments(ctx, record); err != nil {
			e.logger.WithError(err).WithField("family_id", id).Warn("document organization failed")
		}
	}

	// push whenever the transition crosses the VALIDATED boundary in
	// either direction
	if next == types.FamilyStatusValidated || previous == types.FamilyStatusValidated {
		if err := e.pusher.SyncFamilyContact(ctx, record); err != nil {
			e.logger.WithError(err).WithField("family_id", id).Warn("directory push failed")
		}
	}

	e.notifyAdmin(ctx, fmt.Sprintf("Family case #%d is now %s", id, next),
		fmt.Sprintf("<p>Case <b>#%d %s %s</b> moved from %s to %s.</p>",
			id, record.FirstName, record.LastName, previous, next))
	return nil
}

// validationGate returns a human-readable refusal reason, or empty when the
// record may be validated.
func (e *Engine) validationGate(ctx context.Context, record *types.FamilyRecord) string {
	if !types.ValidateSeverity(record.Severity) || record.Severity == 0 {
		return fmt.Sprintf("severity must be between 1 and 5, got %d", record.Severity)
	}
	if record.LocationUnitID == nil || *record.LocationUnitID == "" {
		return "no location unit is attached to this case"
	}
	exists, err := e.geo.UnitExists(ctx, *record.LocationUnitID)
	if err != nil {
		return "location unit could not be checked: " + err.Error()
	}
	if !exists {
		return fmt.Sprintf("location unit %s no longer exists", *record.LocationUnitID)
	}
	return ""
}

// organizeDocuments moves every referenced document into the case folder
// and rewrites the stored refs to the new locations.
func (e *Engine) organizeDocuments(ctx context.Context, record *types.FamilyRecord) error {
	identity, err := e.documents.OrganizeForCase(ctx, record.ID, docs.SplitRefs(record.IdentityDocRefs))
	if err != nil {
		return fmt.Errorf("failed to move identity documents: %w", err)
	}
	aid, err := e.documents.OrganizeForCase(ctx, record.ID, docs.SplitRefs(record.AidDocRefs))
	if err != nil {
		return fmt.Errorf("failed to move aid documents: %w", err)
	}

	newIdentity := docs.JoinRefs(identity)
	newAid := docs.JoinRefs(aid)
	if newIdentity == record.IdentityDocRefs && newAid == record.AidDocRefs {
		return nil
	}
	record.IdentityDocRefs = newIdentity
	record.AidDocRefs = newAid

	return e.families.UpdateFields(ctx, record.ID, map[string]any{
		"identityDocRefs": newIdentity,
		"aidDocRefs":      newAid,
	})
}
