// File path: internal/api/commits_handler.go
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/repobrief/repobrief/internal/common"
)

// handlePullCommits runs a synchronous pull: the response body is the stored
// commit list after the new ones have been summarized and upserted.
func (s *Server) handlePullCommits(w http.ResponseWriter, r *http.Request) {
	var req pullCommitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if err := requireField(req.ProjectID, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	commits, err := s.puller.Pull(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	common.Logger().Info("api: commits pulled", "project", req.ProjectID, "stored", len(commits))
	writeJSON(w, http.StatusOK, map[string]interface{}{"commits": commits})
}

func (s *Server) handleListCommits(w http.ResponseWriter, r *http.Request) {
	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if err := requireField(projectID, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	commits, err := s.store.CommitsForProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"commits": commits})
}
