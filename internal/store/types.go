// File path: internal/store/types.go
package store

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates the requested row does not exist or is archived.
	ErrNotFound = errors.New("store: not found")
	// ErrInsufficientCredits indicates a deduction would drive a balance negative.
	ErrInsufficientCredits = errors.New("store: insufficient credits")
)

// Vector is a fixed-length embedding persisted as a JSON array. A nil Vector
// maps to SQL NULL; callers treat NULL or wrong-length vectors as absent for
// similarity purposes.
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, fmt.Errorf("marshal vector: %w", err)
	}
	return string(data), nil
}

func (v *Vector) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("scan vector: unsupported type %T", src)
	}
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal vector: %w", err)
	}
	*v = out
	return nil
}

type Project struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	RepoURL     string         `db:"repo_url" json:"repo_url"`
	GithubToken sql.NullString `db:"github_token" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at" json:"-"`
}

// Token returns the project's access token, empty when none was stored.
func (p Project) Token() string {
	if p.GithubToken.Valid {
		return p.GithubToken.String
	}
	return ""
}

type FileRecord struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	Summary   string    `db:"summary" json:"summary"`
	Source    string    `db:"source" json:"source"`
	Embedding Vector    `db:"embedding" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CommitRecord struct {
	ID           int64     `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"project_id"`
	CommitHash   string    `db:"commit_hash" json:"commit_hash"`
	Message      string    `db:"message" json:"message"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	AuthorAvatar string    `db:"author_avatar" json:"author_avatar"`
	CommittedAt  time.Time `db:"committed_at" json:"committed_at"`
	Summary      string    `db:"summary" json:"summary"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Question struct {
	ID             string    `db:"id" json:"id"`
	ProjectID      string    `db:"project_id" json:"project_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Question       string    `db:"question" json:"question"`
	Answer         string    `db:"answer" json:"answer"`
	ReferencesJSON string    `db:"references_json" json:"references_json"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type LedgerEntry struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Delta     int            `db:"delta" json:"delta"`
	Reason    string         `db:"reason" json:"reason"`
	EventID   sql.NullString `db:"event_id" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
