// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/githost"
	"github.com/repobrief/repobrief/internal/ingest"
	"github.com/repobrief/repobrief/internal/llm"
	"github.com/repobrief/repobrief/internal/qa"
	"github.com/repobrief/repobrief/internal/store"
	"github.com/repobrief/repobrief/internal/workflow"
)

// Deps carries the explicitly constructed collaborators the server wires
// together. Nothing here is a process-wide singleton.
type Deps struct {
	Store    *store.Store
	GitHost  *githost.Client
	Loader   *githost.Loader
	LLM      *llm.Client
	Workflow *workflow.Manager

	// Puller overrides the default commit puller, mainly for tests.
	Puller *ingest.CommitPuller
}

type Server struct {
	router   chi.Router
	store    *store.Store
	githost  *githost.Client
	loader   *githost.Loader
	llm      *llm.Client
	pipeline *ingest.Pipeline
	puller   *ingest.CommitPuller
	answerer *qa.Answerer
	workflow *workflow.Manager
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("store required")
	}
	if deps.GitHost == nil {
		return nil, errors.New("githost client required")
	}
	if deps.LLM == nil {
		return nil, errors.New("llm client required")
	}
	loader := deps.Loader
	if loader == nil {
		loader = githost.NewLoader(deps.GitHost)
	}
	manager := deps.Workflow
	if manager == nil {
		manager = workflow.NewManager(nil)
	}
	puller := deps.Puller
	if puller == nil {
		puller = ingest.NewCommitPuller(deps.GitHost, deps.LLM, deps.Store)
	}
	srv := &Server{
		router:   chi.NewRouter(),
		store:    deps.Store,
		githost:  deps.GitHost,
		loader:   loader,
		llm:      deps.LLM,
		pipeline: ingest.NewPipeline(loader, deps.LLM, deps.Store),
		puller:   puller,
		answerer: qa.New(deps.LLM),
		workflow: manager,
	}
	srv.routes()
	common.Logger().Info("api: server ready", "provider", deps.LLM.Provider().Name())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})
	s.router.Use(recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/projects", s.handleCreateProject)
	s.router.Get("/v1/projects", s.handleListProjects)
	s.router.Get("/v1/projects/{projectID}", s.handleGetProject)
	s.router.Delete("/v1/projects/{projectID}", s.handleArchiveProject)

	s.router.Post("/v1/ingest", s.handleIngest)
	s.router.Get("/v1/ingest/status", s.handleIngestStatus)

	s.router.Post("/v1/commits/pull", s.handlePullCommits)
	s.router.Get("/v1/commits", s.handleListCommits)

	s.router.Post("/v1/questions", s.handleAskQuestion)
	s.router.Get("/v1/questions", s.handleListQuestions)

	s.router.Post("/v1/credits/estimate", s.handleEstimateCredits)
	s.router.Get("/v1/credits/balance", s.handleBalance)
	s.router.Get("/v1/credits/ledger", s.handleLedger)
	s.router.Post("/v1/webhooks/checkout", s.handleCheckoutWebhook)

	s.router.Get("/v1/logs", s.handleLogs)
}

// recoverer converts an unexpected panic into the generic apology payload
// so no single request can crash the process.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				common.Logger().Error("api: panic recovered", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "Something went wrong handling this request. Please try again.",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func requireField(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
