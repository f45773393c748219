package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"takaful/internal/normalize"
	"takaful/pkg/types"
)

// handleAPI is the query surface. The action parameter selects the
// operation, mirroring how reporting tools call a single endpoint with a
// verb instead of many routes. Two actions are reachable without the
// shared key: ping, so monitors can check liveness, and confirmfamilyinfo,
// which families open from a mail link.
func (s *Service) handleAPI(w http.ResponseWriter, r *http.Request) {
	action := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("action")))
	if action == "" {
		s.respondError(w, http.StatusBadRequest, "missing action parameter")
		return
	}

	switch action {
	case "ping":
		s.respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
		return
	case "confirmfamilyinfo":
		s.handleConfirmFamilyInfo(w, r)
		return
	}

	if !s.validAPIKey(r) {
		s.respondError(w, http.StatusUnauthorized, "invalid or missing api key")
		return
	}

	switch action {
	case "allfamilies":
		s.handleAllFamilies(w, r)
	case "familybyid":
		s.handleFamilyByID(w, r)
	case "familyaddressbyid":
		s.handleFamilyAddressByID(w, r)
	case "familieszakatfitr":
		s.handleFamiliesFiltered(w, r, func(f *types.FamilyRecord) bool {
			return f.ZakatEligible && f.Status == types.FamilyStatusValidated
		})
	case "familiessadaka":
		s.handleFamiliesFiltered(w, r, func(f *types.FamilyRecord) bool {
			return f.SadaqaEligible && f.Status == types.FamilyStatusValidated
		})
	case "familiessedeplace":
		s.handleFamiliesFiltered(w, r, func(f *types.FamilyRecord) bool {
			return f.CanTravel && f.Status == types.FamilyStatusValidated
		})
	case "familiesbycriticite":
		s.handleFamiliesBySeverity(w, r)
	case "familiesbyquartier":
		s.handleFamiliesByLocation(w, r, "quartier")
	case "familiesbysecteur":
		s.handleFamiliesByLocation(w, r, "secteur")
	case "familiesbyville":
		s.handleFamiliesByLocation(w, r, "ville")
	case "sendverificationemails":
		s.handleSendVerificationEmails(w, r)
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", action))
	}
}

func (s *Service) handleAllFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := s.families.Families(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list families")
		s.internalServerError(w)
		return
	}
	s.respondJSON(w, http.StatusOK, families)
}

func (s *Service) familyFromIDParam(w http.ResponseWriter, r *http.Request) (*types.FamilyRecord, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be a number")
		return nil, false
	}

	record, err := s.families.Family(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrFamilyNotFound) {
			s.respondError(w, http.StatusNotFound, "family not found")
		} else {
			s.logger.WithError(err).Error("failed to load family")
			s.internalServerError(w)
		}
		return nil, false
	}
	return record, true
}

func (s *Service) handleFamilyByID(w http.ResponseWriter, r *http.Request) {
	record, ok := s.familyFromIDParam(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Service) handleFamilyAddressByID(w http.ResponseWriter, r *http.Request) {
	record, ok := s.familyFromIDParam(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"id":      record.ID,
		"address": record.Address,
	})
}

func (s *Service) handleFamiliesFiltered(w http.ResponseWriter, r *http.Request, keep func(*types.FamilyRecord) bool) {
	families, err := s.families.Families(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list families")
		s.internalServerError(w)
		return
	}

	out := make([]*types.FamilyRecord, 0)
	for _, f := range families {
		if keep(f) {
			out = append(out, f)
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Service) handleFamiliesBySeverity(w http.ResponseWriter, r *http.Request) {
	severity, ok := normalize.ParseSeverity(r.URL.Query().Get("criticite"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "criticite must be between 0 and 5")
		return
	}
	s.handleFamiliesFiltered(w, r, func(f *types.FamilyRecord) bool {
		return f.Severity == severity
	})
}

// handleFamiliesByLocation filters on the administrative hierarchy above
// each record's location unit. Hierarchy lookups are cached by the geo
// client, so the per-unit fan-out stays cheap.
func (s *Service) handleFamiliesByLocation(w http.ResponseWriter, r *http.Request, level string) {
	wanted := strings.TrimSpace(r.URL.Query().Get(level))
	if wanted == "" {
		s.respondError(w, http.StatusBadRequest, level+" parameter is required")
		return
	}

	families, err := s.families.Families(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list families")
		s.internalServerError(w)
		return
	}

	hierarchies := map[string]types.LocationHierarchy{}
	out := make([]*types.FamilyRecord, 0)
	for _, f := range families {
		if f.LocationUnitID == nil || *f.LocationUnitID == "" {
			continue
		}
		h, ok := hierarchies[*f.LocationUnitID]
		if !ok {
			resolved, err := s.geo.Hierarchy(r.Context(), *f.LocationUnitID)
			if err != nil {
				s.logger.WithError(err).WithField("unit_id", *f.LocationUnitID).Warn("hierarchy lookup failed")
				continue
			}
			h = resolved
			hierarchies[*f.LocationUnitID] = h
		}

		var got string
		switch level {
		case "quartier":
			got = h.District
		case "secteur":
			got = h.Sector
		case "ville":
			got = h.City
		}
		if strings.EqualFold(got, wanted) {
			out = append(out, f)
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}

// handleConfirmFamilyInfo records that the family confirmed its contact
// details and renders the HTML acknowledgement, since the link in the
// verification mail lands here in a browser.
func (s *Service) handleConfirmFamilyInfo(w http.ResponseWriter, r *http.Request) {
	record, ok := s.familyFromIDParam(w, r)
	if !ok {
		return
	}

	record.AppendComment("✅", "contact information confirmed by the family")
	if err := s.families.UpdateFields(r.Context(), record.ID, map[string]any{
		"commentLog": record.CommentLog,
	}); err != nil {
		s.logger.WithError(err).Error("failed to record confirmation")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := confirmPageData{Record: record, Confirmed: true}
	if err := s.confirmTmpl.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("failed to render confirmation page")
	}
}

// handleSendVerificationEmails mails every reachable VALIDATED family a
// link asking it to confirm its stored contact details.
func (s *Service) handleSendVerificationEmails(w http.ResponseWriter, r *http.Request) {
	families, err := s.families.Families(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list families")
		s.internalServerError(w)
		return
	}

	sent, failed := 0, 0
	for _, f := range families {
		if f.Status != types.FamilyStatusValidated || f.Email == "" {
			continue
		}
		if err := s.sendVerificationEmail(r.Context(), f); err != nil {
			s.logger.WithError(err).WithField("family_id", f.ID).Warn("verification mail failed")
			failed++
			continue
		}
		sent++
	}

	s.respondJSON(w, http.StatusOK, map[string]int{"sent": sent, "failed": failed})
}

func (s *Service) sendVerificationEmail(ctx context.Context, f *types.FamilyRecord) error {
	link := fmt.Sprintf("%s/confirm/%d?key=%s", s.config.PublicBaseURL, f.ID, s.config.APIKey)
	body := fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Merci de confirmer vos coordonnées : <a href=%q>%s</a></p>",
		f.FirstName, link, link,
	)
	return s.mail.Send(ctx, f.Email, "Confirmation de vos coordonnées", body)
}
