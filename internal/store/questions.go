// File path: internal/store/questions.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// InsertQuestion appends a saved Q&A row. Questions use raw parameterized
// SQL rather than helper builders: the free-text fields pass through
// untouched.
func (s *Store) InsertQuestion(ctx context.Context, q Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return errors.New("question id required")
	}
	if strings.TrimSpace(q.ProjectID) == "" {
		return errors.New("question project id required")
	}
	references := q.ReferencesJSON
	if strings.TrimSpace(references) == "" {
		references = "[]"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, project_id, user_id, question, answer, references_json)
                 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.ProjectID, q.UserID, q.Question, q.Answer, references,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// QuestionsForProject returns a project's saved questions, newest first.
func (s *Store) QuestionsForProject(ctx context.Context, projectID string) ([]Question, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, project_id, user_id, question, answer, references_json, created_at
                 FROM questions WHERE project_id = ? ORDER BY created_at DESC, id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()
	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.StructScan(&q); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}
