// Package ingest is the decision state machine for incoming submissions:
// classify as create or update, validate, resolve geography, write the
// record and handle every rejection path.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"takaful/internal/dedupe"
	"takaful/internal/docs"
	"takaful/internal/normalize"
	"takaful/internal/store"
	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
)

// GeoResolver is the slice of the geo client the engine needs.
type GeoResolver interface {
	ResolveAddressToUnit(ctx context.Context, street, postalCode, city string) types.GeoResolution
	UnitExists(ctx context.Context, unitID string) (bool, error)
}

// DirectoryPusher is invoked when a record reaches or leaves VALIDATED.
type DirectoryPusher interface {
	SyncFamilyContact(ctx context.Context, record *types.FamilyRecord) error
}

// Notifier sends admin notifications; delivery failures are logged only.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// updateIntentKeywords classify a submission as an update when one of them
// appears in the origin form's name, case-insensitively.
var updateIntentKeywords = []string{
	"update", "mise à jour", "maj", "modification", "تحديث", "actualisation", "modifier",
}

type Engine struct {
	families   store.FamilyStore
	detector   *dedupe.Detector
	geo        GeoResolver
	documents  docs.Store
	pusher     DirectoryPusher
	notifier   Notifier
	adminEmail string
	logger     *logrus.Logger

	// Serializes the dedupe-check / id-assignment / insert window: the
	// max-plus-one id scheme is not safe against concurrent creates
	// without it.
	createMu sync.Mutex
}

func NewEngine(
	families store.FamilyStore,
	detector *dedupe.Detector,
	geo GeoResolver,
	documents docs.Store,
	pusher DirectoryPusher,
	notifier Notifier,
	adminEmail string,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		families:   families,
		detector:   detector,
		geo:        geo,
		documents:  documents,
		pusher:     pusher,
		notifier:   notifier,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Classify decides create vs update: an explicit target id, or an
// update-intent keyword in the origin form name, means update. This is a
// heuristic; ambiguous input defaults to create.
func Classify(sub types.Submission) types.SubmissionKind {
	if strings.TrimSpace(sub.TargetID) != "" {
		return types.SubmissionUpdate
	}
	origin := strings.ToLower(sub.Origin)
	for _, keyword := range updateIntentKeywords {
		if strings.Contains(origin, keyword) {
			return types.SubmissionUpdate
		}
	}
	return types.SubmissionCreate
}

// Process routes a submission through the create or update path.
func (e *Engine) Process(ctx context.Context, sub types.Submission) (*types.IngestOutcome, error) {
	if Classify(sub) == types.SubmissionUpdate {
		return e.processUpdate(ctx, sub)
	}
	return e.processInsert(ctx, sub)
}

func (e *Engine) processInsert(ctx context.Context, sub types.Submission) (*types.IngestOutcome, error) {
	parsed, verr := validateInsert(sub)
	if verr != nil {
		return e.reject(ctx, sub, parsed, nil, verr.FailedChecks())
	}

	resolution := e.geo.ResolveAddressToUnit(ctx, parsed.street, parsed.postalCode, parsed.city)
	if !resolution.IsValid {
		return e.reject(ctx, sub, parsed, &resolution, []string{"address: " + resolution.Error})
	}

	if reasons := e.checkDocuments(ctx, parsed); len(reasons) > 0 {
		// address info still recorded for later reference
		return e.reject(ctx, sub, parsed, &resolution, reasons)
	}

	e.createMu.Lock()
	defer e.createMu.Unlock()

	match := e.detector.FindDuplicate(ctx, parsed.phone, parsed.lastName, parsed.email)
	if match.Exists {
		return e.mergeDuplicate(ctx, match.ID, sub, parsed, &resolution)
	}

	maxID, err := e.families.MaxID(ctx)
	if err != nil {
		return nil, fmt.Errorf("id assignment failed: %w", err)
	}

	record := e.newRecord(maxID+1, parsed, &resolution)
	record.Status = types.FamilyStatusInProgress
	record.AppendComment("📥", "created from submission "+sub.Origin)
	if resolution.Warning != "" {
		record.AppendComment("⚠️", resolution.Warning)
	}

	if err := e.families.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create family %d: %w", record.ID, err)
	}
	e.detector.Invalidate(ctx, parsed.phone, parsed.lastName)

	e.logger.WithFields(logrus.Fields{"family_id": record.ID}).Info("family created")
	e.notifyAdmin(ctx, fmt.Sprintf("New family case #%d", record.ID),
		fmt.Sprintf("<p>New case <b>#%d %s %s</b> is awaiting review.</p>", record.ID, record.FirstName, record.LastName))

	return &types.IngestOutcome{Kind: types.SubmissionCreate, FamilyID: record.ID}, nil
}

// mergeDuplicate treats a duplicate submission as an update in disguise:
// its non-empty fields overwrite the existing row and the case is forced
// back to IN_PROGRESS, since a resubmission means the situation changed.
func (e *Engine) mergeDuplicate(ctx context.Context, id int, sub types.Submission, parsed parsedSubmission, resolution *types.GeoResolution) (*types.IngestOutcome, error) {
	record, err := e.families.Family(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load duplicate target %d: %w", id, err)
	}

	fields, verr := buildChangeSet(sub)
	if verr != nil {
		return nil, verr
	}
	fields["address"] = normalize.FormatAddressCanonical(parsed.street, parsed.postalCode, parsed.city)
	fields["locationUnitId"] = resolution.LocationUnitID
	fields["status"] = types.FamilyStatusInProgress

	changed := changedFieldNames(record, fields)
	record.AppendComment("♻️", "duplicate submission merged: "+strings.Join(changed, ", "))
	fields["commentLog"] = record.CommentLog

	if err := e.families.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to merge duplicate into family %d: %w", id, err)
	}
	e.detector.Invalidate(ctx, parsed.phone, parsed.lastName)

	e.logger.WithFields(logrus.Fields{"family_id": id, "fields": changed}).Info("duplicate submission merged")
	e.notifyAdmin(ctx, fmt.Sprintf("Family case #%d resubmitted", id),
		fmt.Sprintf("<p>Case <b>#%d</b> was submitted again and moved back to review. Updated: %s</p>",
			id, strings.Join(changed, ", ")))

	return &types.IngestOutcome{
		Kind:     types.SubmissionCreate,
		FamilyID: id,
		Merged:   true,
	}, nil
}

func (e *Engine) processUpdate(ctx context.Context, sub types.Submission) (*types.IngestOutcome, error) {
	id, err := strconv.Atoi(strings.TrimSpace(sub.TargetID))
	if err != nil {
		verr := types.NewValidationError()
		verr.Add("id", "update submission carries no usable record id")
		return nil, verr
	}

	record, err := e.families.Family(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, verr := buildChangeSet(sub)
	if verr != nil {
		return nil, verr
	}

	// validation happens before any cell mutation; a failure here must
	// leave already-validated rows untouched
	street := strings.TrimSpace(sub.Street)
	postalCode := strings.TrimSpace(sub.PostalCode)
	city := strings.TrimSpace(sub.City)
	if street != "" || postalCode != "" || city != "" {
		components := normalize.ParseAddressComponents(record.Address)
		if street == "" {
			street = components.Street
		}
		if postalCode == "" {
			postalCode = components.PostalCode
		}
		if city == "" {
			city = components.City
		}

		resolution := e.geo.ResolveAddressToUnit(ctx, street, postalCode, city)
		if !resolution.IsValid {
			verr := types.NewValidationError()
			verr.Add("address", resolution.Error)
			return nil, verr
		}
		fields["address"] = normalize.FormatAddressCanonical(street, postalCode, city)
		fields["locationUnitId"] = resolution.LocationUnitID
	}

	changed := changedFieldNames(record, fields)
	record.AppendComment("✏️", "updated: "+strings.Join(changed, ", "))
	fields["commentLog"] = record.CommentLog

	if err := e.families.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update family %d: %w", id, err)
	}

	if record.Status == types.FamilyStatusValidated {
		refreshed, err := e.families.Family(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := e.pusher.SyncFamilyContact(ctx, refreshed); err != nil {
			e.logger.WithError(err).WithField("family_id", id).Warn("directory re-push after update failed")
		}
	}

	e.notifyAdmin(ctx, fmt.Sprintf("Family case #%d updated", id),
		fmt.Sprintf("<p>Case <b>#%d</b> updated. Fields: %s</p>", id, strings.Join(changed, ", ")))

	return &types.IngestOutcome{
		Kind:     types.SubmissionUpdate,
		FamilyID: id,
	}, nil
}

func (e *Engine) checkDocuments(ctx context.Context, parsed parsedSubmission) []string {
	var reasons []string

	if len(parsed.identityRefs) == 0 {
		reasons = append(reasons, "identity document missing")
	}
	for _, ref := range parsed.identityRefs {
		ok, err := e.documents.Exists(ctx, ref)
		if err != nil {
			e.logger.WithError(err).WithField("ref", ref).Warn("document check failed")
			reasons = append(reasons, "identity document unverifiable: "+ref)
			continue
		}
		if !ok {
			reasons = append(reasons, "identity document not found: "+ref)
		}
	}
	for _, ref := range parsed.aidRefs {
		ok, err := e.documents.Exists(ctx, ref)
		if err != nil || !ok {
			reasons = append(reasons, "aid document not found: "+ref)
		}
	}

	return reasons
}

// reject writes a REJECTED row with severity 0 so the case and its contact
// details are kept for later follow-up, then notifies.
func (e *Engine) reject(ctx context.Context, sub types.Submission, parsed parsedSubmission, resolution *types.GeoResolution, reasons []string) (*types.IngestOutcome, error) {
	e.createMu.Lock()
	defer e.createMu.Unlock()

	maxID, err := e.families.MaxID(ctx)
	if err != nil {
		return nil, fmt.Errorf("id assignment failed: %w", err)
	}

	record := e.newRecord(maxID+1, parsed, resolution)
	record.Status = types.FamilyStatusRejected
	record.Severity = 0
	record.AppendComment("🚫", "rejected: "+strings.Join(reasons, "; "))

	if err := e.families.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record rejection: %w", err)
	}

	e.logger.WithFields(logrus.Fields{"family_id": record.ID, "reasons": reasons}).Info("submission rejected")
	e.notifyAdmin(ctx, fmt.Sprintf("Submission rejected (#%d)", record.ID),
		fmt.Sprintf("<p>A submission was rejected: %s</p>", strings.Join(reasons, "; ")))

	return &types.IngestOutcome{
		Kind:             types.SubmissionCreate,
		FamilyID:         record.ID,
		Rejected:         true,
		RejectionReasons: reasons,
	}, nil
}

func (e *Engine) newRecord(id int, parsed parsedSubmission, resolution *types.GeoResolution) *types.FamilyRecord {
	record := &types.FamilyRecord{
		ID:              id,
		LastName:        parsed.lastName,
		FirstName:       parsed.firstName,
		Phone:           parsed.phone,
		PhoneSecondary:  parsed.phoneSecondary,
		Email:           parsed.email,
		Address:         normalize.FormatAddressCanonical(parsed.street, parsed.postalCode, parsed.city),
		AdultCount:      parsed.adultCount,
		ChildCount:      parsed.childCount,
		ZakatEligible:   parsed.zakatEligible,
		SadaqaEligible:  parsed.sadaqaEligible,
		CanTravel:       parsed.canTravel,
		Language:        parsed.language,
		Severity:        0,
		IdentityDocRefs: docs.JoinRefs(parsed.identityRefs),
		AidDocRefs:      docs.JoinRefs(parsed.aidRefs),
		Circumstance:    parsed.circumstance,
		Feeling:         parsed.feeling,
		Specifics:       parsed.specifics,
	}
	if resolution != nil {
		record.LocationUnitID = resolution.LocationUnitID
	}
	return record
}

func (e *Engine) notifyAdmin(ctx context.Context, subject, html string) {
	if e.adminEmail == "" {
		return
	}
	if err := e.notifier.Send(ctx, e.adminEmail, subject, html); err != nil {
		e.logger.WithError(err).Warn("admin notification failed")
	}
}

// changedFieldNames lists which of the pending cell writes actually differ
// from the stored record, for comments and notifications.
func changedFieldNames(record *types.FamilyRecord, fields map[string]any) []string {
	var names []string
	for field, value := range fields {
		if field == "commentLog" {
			continue
		}
		if !fieldEquals(record, field, value) {
			names = append(names, field)
		}
	}
	sort.Strings(names)
	return names
}

func fieldEquals(record *types.FamilyRecord, field string, value any) bool {
	switch field {
	case "lastName":
		return record.LastName == value
	case "firstName":
		return record.FirstName == value
	case "phone":
		return record.Phone == value
	case "phoneSecondary":
		return record.PhoneSecondary == value
	case "email":
		return record.Email == value
	case "address":
		return record.Address == value
	case "severity":
		return record.Severity == value
	case "language":
		return record.Language == value
	case "adultCount":
		return record.AdultCount == value
	case "childCount":
		return record.ChildCount == value
	case "zakatEligible":
		return record.ZakatEligible == value
	case "sadaqaEligible":
		return record.SadaqaEligible == value
	case "canTravel":
		return record.CanTravel == value
	case "circumstance":
		return record.Circumstance == value
	case "feeling":
		return record.Feeling == value
	case "specifics":
		return record.Specifics == value
	case "status":
		return record.Status == value
	case "locationUnitId":
		newID, ok := value.(*string)
		if !ok {
			return false
		}
		if record.LocationUnitID == nil || newID == nil {
			return record.LocationUnitID == newID
		}
		return *record.LocationUnitID == *newID
	default:
		return false
	}
}
