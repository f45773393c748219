package server

import (
	"errors"
	"net/http"

	"takaful/pkg/types"
)

// handleFormSubmit receives one form payload and runs it through the
// ingestion engine. Rejections are a 200: the submission was handled, a
// REJECTED row exists, and the caller gets the reasons back.
func (s *Service) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	var sub types.Submission
	if err := decoder.Decode(&sub, r.PostForm); err != nil {
		s.logger.WithError(err).Warn("failed to decode submission")
		s.respondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	outcome, err := s.engine.Process(r.Context(), sub)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		if errors.Is(err, types.ErrFamilyNotFound) {
			s.respondError(w, http.StatusNotFound, "family not found")
			return
		}
		s.logger.WithError(err).Error("failed to process submission")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"kind":     outcome.Kind.String(),
		"familyId": outcome.FamilyID,
		"merged":   outcome.Merged,
		"rejected": outcome.Rejected,
		"reasons":  outcome.RejectionReasons,
	})
}
