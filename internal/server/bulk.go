package server

import (
	"net/http"
	"time"
)

const maxImportSize = 10 << 20

func (s *Service) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	report, err := s.bulk.Import(r.Context(), file)
	if err != nil {
		s.logger.WithError(err).Error("spreadsheet import failed")
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

func (s *Service) handleBulkExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.bulk.Export(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("spreadsheet export failed")
		s.internalServerError(w)
		return
	}

	filename := "familles-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
