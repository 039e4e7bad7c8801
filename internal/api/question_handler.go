// File path: internal/api/question_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/qa"
	"github.com/repobrief/repobrief/internal/retriever"
	"github.com/repobrief/repobrief/internal/store"
)

func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var req askQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	req.Question = strings.TrimSpace(req.Question)
	if err := requireField(req.ProjectID, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := requireField(req.Question, "question"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.store.GetProject(ctx, req.ProjectID); err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	records, err := s.store.FilesForProject(ctx, req.ProjectID, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	files := toRetrieverFiles(records)
	mode := qa.ParseMode(req.Mode)
	logger.Info("api: question received", "project", req.ProjectID, "mode", mode, "files", len(files), "stream", req.Stream)

	if req.Stream {
		s.streamAnswer(w, r, req, files, mode)
		return
	}

	result := s.answerer.Answer(ctx, req.Question, files, mode, nil)
	id, err := s.saveQuestion(r, req, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, askQuestionResponse{
		ID:         id,
		Answer:     result.Answer,
		Mode:       string(result.Mode),
		References: result.References,
	})
}

// streamAnswer emits tokens as server-sent events, then a final "done" event
// carrying the full response payload.
func (s *Server) streamAnswer(w http.ResponseWriter, r *http.Request, req askQuestionRequest, files []retriever.File, mode qa.Mode) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := func(token string) {
		data, err := json.Marshal(token)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	result := s.answerer.Answer(r.Context(), req.Question, files, mode, stream)

	id, err := s.saveQuestion(r, req, result)
	if err != nil {
		common.Logger().Error("api: failed to save streamed question", "project", req.ProjectID, "error", err)
	}
	payload, err := json.Marshal(askQuestionResponse{
		ID:         id,
		Answer:     result.Answer,
		Mode:       string(result.Mode),
		References: result.References,
	})
	if err == nil {
		fmt.Fprintf(w, "event: done\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}

func (s *Server) saveQuestion(r *http.Request, req askQuestionRequest, result qa.Result) (string, error) {
	refs, err := json.Marshal(result.References)
	if err != nil {
		return "", fmt.Errorf("marshal references: %w", err)
	}
	id := uuid.NewString()
	question := store.Question{
		ID:             id,
		ProjectID:      req.ProjectID,
		UserID:         strings.TrimSpace(req.UserID),
		Question:       req.Question,
		Answer:         result.Answer,
		ReferencesJSON: string(refs),
	}
	if err := s.store.InsertQuestion(r.Context(), question); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if err := requireField(projectID, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	questions, err := s.store.QuestionsForProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func toRetrieverFiles(records []store.FileRecord) []retriever.File {
	files := make([]retriever.File, 0, len(records))
	for _, rec := range records {
		files = append(files, retriever.File{
			ID:      rec.ID,
			Name:    rec.FileName,
			Summary: rec.Summary,
			Source:  rec.Source,
			Vector:  rec.Embedding,
		})
	}
	return files
}
