package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"takaful/pkg/types"
)

type statusChangeRequest struct {
	Status string `json:"status"`
}

// handleStatusChange applies a reviewer's status decision. A vetoed
// validation comes back as 422 with the refusal reason; the stored row
// keeps its previous status.
func (s *Service) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be a number")
		return
	}

	var req statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	if err := s.engine.ChangeStatus(r.Context(), id, types.FamilyStatus(req.Status)); err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "status change refused",
				"fields": verr.Fields,
			})
			return
		}
		if errors.Is(err, types.ErrFamilyNotFound) {
			s.respondError(w, http.StatusNotFound, "family not found")
			return
		}
		s.logger.WithError(err).Error("failed to change status")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}
