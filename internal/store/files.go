// File path: internal/store/files.go
package store

import (
	"context"
	"fmt"
)

// InsertFileRecord appends the textual fields of one ingested file and
// returns the new row id. The embedding is written separately so that a
// wrong-length vector can be skipped without losing the summary and source.
func (s *Store) InsertFileRecord(ctx context.Context, rec FileRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO file_records (project_id, file_name, summary, source) VALUES (?, ?, ?, ?)`,
		rec.ProjectID, rec.FileName, rec.Summary, rec.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("file record id: %w", err)
	}
	return id, nil
}

// UpdateFileEmbedding writes the vector column for one file record. This is
// the raw parameterized escape hatch the ingestion pipeline uses after the
// textual insert.
func (s *Store) UpdateFileEmbedding(ctx context.Context, id int64, vec Vector) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE file_records SET embedding = ? WHERE id = ?`, vec, id)
	if err != nil {
		return fmt.Errorf("update file embedding: %w", err)
	}
	return nil
}

// FilesForProject returns a project's file records in insertion order.
// A non-positive limit returns all rows.
func (s *Store) FilesForProject(ctx context.Context, projectID string, limit int) ([]FileRecord, error) {
	query := `SELECT * FROM file_records WHERE project_id = ? ORDER BY id`
	args := []interface{}{projectID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var files []FileRecord
	if err := s.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, fmt.Errorf("select file records: %w", err)
	}
	return files, nil
}

// DeleteProjectFiles removes all file records for a project; re-ingestion
// calls this first so re-runs do not duplicate rows.
func (s *Store) DeleteProjectFiles(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM file_records WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("delete file records: %w", err)
	}
	return nil
}
