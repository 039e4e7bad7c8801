// File path: internal/api/ingest_handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/workflow"
)

// handleIngest estimates the repository's size, charges one credit per file
// and submits the ingestion pipeline as a supervised background job.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	req.UserID = strings.TrimSpace(req.UserID)
	if err := requireField(req.ProjectID, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := requireField(req.UserID, "user_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	project, err := s.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	// Charging happens before submission, so an already-occupied job slot
	// must be rejected before any credits move.
	if job, ok := s.workflow.Status(req.ProjectID); ok &&
		(job.State == workflow.StateQueued || job.State == workflow.StateRunning) {
		writeError(w, http.StatusConflict, workflow.ErrJobActive)
		return
	}

	files, err := s.loader.CountFiles(ctx, project.RepoURL, project.Token())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	credits := files
	if req.MaxFiles > 0 && credits > req.MaxFiles {
		credits = req.MaxFiles
	}
	if credits > 0 {
		reason := fmt.Sprintf("ingest %s", project.ID)
		if err := s.store.DeductCredits(ctx, req.UserID, credits, reason); err != nil {
			writeError(w, errStatus(err), err)
			return
		}
	}

	projectID := project.ID
	repoURL := project.RepoURL
	token := project.Token()
	maxFiles := req.MaxFiles
	err = s.workflow.Submit(projectID, func(jobCtx context.Context) (int, error) {
		if maxFiles > 0 {
			return s.pipeline.IngestCapped(jobCtx, projectID, repoURL, token, maxFiles)
		}
		return s.pipeline.Ingest(jobCtx, projectID, repoURL, token)
	})
	if err != nil {
		// The job never started: give the charge back.
		if credits > 0 {
			reason := fmt.Sprintf("refund ingest %s", projectID)
			if refundErr := s.store.GrantCredits(ctx, req.UserID, credits, reason); refundErr != nil {
				logger.Error("api: ingest refund failed", "project", projectID, "user", req.UserID, "credits", credits, "error", refundErr)
			}
		}
		if errors.Is(err, workflow.ErrJobActive) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: ingestion submitted", "project", projectID, "estimated_files", files, "credits", credits)
	writeJSON(w, http.StatusAccepted, ingestResponse{
		Status:         string(workflow.StateQueued),
		EstimatedFiles: files,
		CreditsCharged: credits,
	})
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if err := requireField(projectID, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	job, ok := s.workflow.Status(projectID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no ingestion job for project %s", projectID))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleEstimateCredits(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.RepoURL = strings.TrimSpace(req.RepoURL)
	if err := requireField(req.RepoURL, "repo_url"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	files, err := s.loader.CountFiles(r.Context(), req.RepoURL, strings.TrimSpace(req.GithubToken))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{Files: files, Credits: files})
}
