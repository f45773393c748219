package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"takaful/internal/bulk"
	"takaful/internal/dirsync"
	"takaful/internal/ingest"
	"takaful/internal/mailer"
	"takaful/internal/store"
	"takaful/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

// Version is stamped at build time with -ldflags "-X ...server.Version=".
var Version = "dev"

var decoder = form.NewDecoder()

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	families store.FamilyStore
	engine   *ingest.Engine
	bulk     *bulk.Service
	geo      dirsync.HierarchyResolver
	mail     mailer.Mailer

	confirmTmpl *template.Template

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	families store.FamilyStore,
	engine *ingest.Engine,
	bulkSvc *bulk.Service,
	geo dirsync.HierarchyResolver,
	mail mailer.Mailer,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		families: families,
		engine:   engine,
		bulk:     bulkSvc,
		geo:      geo,
		mail:     mail,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	tmpl, err := template.New("confirm").Parse(confirmPageHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation template: %w", err)
	}
	s.confirmTmpl = tmpl

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.RequestIDMiddleware)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	// the confirmation page is opened from a mail link, so it carries its
	// key in the query string instead of a header
	r.HandleFunc("/confirm/:id", s.handleConfirmPage, http.MethodGet)

	// /api gates itself per action: ping and confirmfamilyinfo stay open,
	// everything else checks the shared key inside the dispatcher
	r.HandleFunc("/api", s.handleAPI, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAPIKey)

		r.HandleFunc("/forms/submit", s.handleFormSubmit, http.MethodPost)
		r.HandleFunc("/families/:id/status", s.handleStatusChange, http.MethodPost)

		r.HandleFunc("/bulk/import", s.handleBulkImport, http.MethodPost)
		r.HandleFunc("/bulk/export", s.handleBulkExport, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
