package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"takaful/pkg/types"
)

const confirmPageHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Confirmation</title>
<style>
body { font-family: sans-serif; max-width: 36rem; margin: 4rem auto; padding: 0 1rem; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: 2rem; }
dt { font-weight: bold; margin-top: .6rem; }
form { margin-top: 1.5rem; }
button { padding: .6rem 1.4rem; font-size: 1rem; }
.ok { color: #1a7f37; }
</style>
</head>
<body>
<div class="card">
{{if .Confirmed}}
<p class="ok">Merci, vos coordonnées sont confirmées.</p>
{{else}}
<h1>Vos coordonnées</h1>
<dl>
<dt>Nom</dt><dd>{{.Record.LastName}} {{.Record.FirstName}}</dd>
<dt>Téléphone</dt><dd>{{.Record.Phone}}</dd>
<dt>Adresse</dt><dd>{{.Record.Address}}</dd>
</dl>
<form method="get">
<input type="hidden" name="key" value="{{.Key}}">
<input type="hidden" name="confirm" value="1">
<button type="submit">Je confirme</button>
</form>
{{end}}
</div>
</body>
</html>`

type confirmPageData struct {
	Record    *types.FamilyRecord
	Key       string
	Confirmed bool
}

// handleConfirmPage renders the coordinates a family has on file and, on
// confirm=1, records the confirmation. The key query parameter carries the
// shared secret because the link arrives by mail.
func (s *Service) handleConfirmPage(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if s.config.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.config.APIKey)) != 1 {
		http.Error(w, "lien invalide", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "lien invalide", http.StatusBadRequest)
		return
	}

	record, err := s.families.Family(r.Context(), id)
	if err != nil {
		http.Error(w, "dossier introuvable", http.StatusNotFound)
		return
	}

	data := confirmPageData{Record: record, Key: key}
	if r.URL.Query().Get("confirm") == "1" {
		record.AppendComment("✅", "contact information confirmed by the family")
		if err := s.families.UpdateFields(r.Context(), id, map[string]any{
			"commentLog": record.CommentLog,
		}); err != nil {
			s.logger.WithError(err).Error("failed to record confirmation")
			s.internalServerError(w)
			return
		}
		data.Confirmed = true
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.confirmTmpl.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("failed to render confirmation page")
	}
}
