// File path: internal/api/projects_handler.go
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/githost"
	"github.com/repobrief/repobrief/internal/store"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.RepoURL = strings.TrimSpace(req.RepoURL)
	if err := requireField(req.Name, "name"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := requireField(req.RepoURL, "repo_url"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, _, err := githost.ParseRepoURL(req.RepoURL); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	project := store.Project{
		ID:      uuid.NewString(),
		Name:    req.Name,
		RepoURL: req.RepoURL,
	}
	if token := strings.TrimSpace(req.GithubToken); token != "" {
		project.GithubToken = sql.NullString{String: token, Valid: true}
	}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: project created", "project", project.ID, "repo", project.RepoURL)
	writeJSON(w, http.StatusCreated, toProjectResponse(project, time.Now().UTC()))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p, p.CreatedAt))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": out})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(project, project.CreatedAt))
}

func (s *Server) handleArchiveProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	if err := s.store.ArchiveProject(r.Context(), id); err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	common.Logger().Info("api: project archived", "project", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func toProjectResponse(p store.Project, createdAt time.Time) projectResponse {
	return projectResponse{
		ID:        p.ID,
		Name:      p.Name,
		RepoURL:   p.RepoURL,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}
