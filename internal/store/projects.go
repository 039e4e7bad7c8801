// File path: internal/store/projects.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateProject inserts a new project row.
func (s *Store) CreateProject(ctx context.Context, p Project) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("project id required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project name required")
	}
	if strings.TrimSpace(p.RepoURL) == "" {
		return errors.New("project repo url required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, repo_url, github_token) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.RepoURL, p.GithubToken,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject returns a live (non-archived) project.
func (s *Store) GetProject(ctx context.Context, id string) (Project, error) {
	var p Project
	err := s.db.GetContext(ctx, &p,
		`SELECT * FROM projects WHERE id = ? AND deleted_at IS NULL`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("select project: %w", err)
	}
	return p, nil
}

// ListProjects returns all live projects, oldest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := s.db.SelectContext(ctx, &projects,
		`SELECT * FROM projects WHERE deleted_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// ArchiveProject soft-deletes a project by stamping deleted_at.
func (s *Store) ArchiveProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
                 WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("archive project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive project rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
