// File path: internal/store/commits.go
package store

import (
	"context"
	"fmt"
)

// SeenCommitHashes returns the set of commit hashes already stored for a
// project, so the puller can skip re-processing them entirely.
func (s *Store) SeenCommitHashes(ctx context.Context, projectID string) (map[string]struct{}, error) {
	var hashes []string
	err := s.db.SelectContext(ctx, &hashes,
		`SELECT commit_hash FROM commit_records WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("select commit hashes: %w", err)
	}
	seen := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		seen[h] = struct{}{}
	}
	return seen, nil
}

// UpsertCommit inserts or updates a commit record keyed by
// (project_id, commit_hash). Last write wins per hash.
func (s *Store) UpsertCommit(ctx context.Context, rec CommitRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commit_records
                        (project_id, commit_hash, message, author_name, author_avatar, committed_at, summary)
                 VALUES (?, ?, ?, ?, ?, ?, ?)
                 ON CONFLICT(project_id, commit_hash) DO UPDATE SET
                        message = excluded.message,
                        author_name = excluded.author_name,
                        author_avatar = excluded.author_avatar,
                        committed_at = excluded.committed_at,
                        summary = excluded.summary,
                        updated_at = CURRENT_TIMESTAMP`,
		rec.ProjectID, rec.CommitHash, rec.Message, rec.AuthorName,
		rec.AuthorAvatar, rec.CommittedAt, rec.Summary,
	)
	if err != nil {
		return fmt.Errorf("upsert commit %s: %w", rec.CommitHash, err)
	}
	return nil
}

// CommitsForProject returns a project's commit records, newest first.
func (s *Store) CommitsForProject(ctx context.Context, projectID string) ([]CommitRecord, error) {
	var commits []CommitRecord
	err := s.db.SelectContext(ctx, &commits,
		`SELECT * FROM commit_records WHERE project_id = ? ORDER BY committed_at DESC, id DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("select commits: %w", err)
	}
	return commits, nil
}
