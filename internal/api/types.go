// File path: internal/api/types.go
package api

import "github.com/repobrief/repobrief/internal/qa"

type createProjectRequest struct {
	Name        string `json:"name"`
	RepoURL     string `json:"repo_url"`
	GithubToken string `json:"github_token,omitempty"`
}

type projectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RepoURL   string `json:"repo_url"`
	CreatedAt string `json:"created_at"`
}

type ingestRequest struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	MaxFiles  int    `json:"max_files,omitempty"`
}

type ingestResponse struct {
	Status         string `json:"status"`
	EstimatedFiles int    `json:"estimated_files"`
	CreditsCharged int    `json:"credits_charged"`
}

type estimateRequest struct {
	RepoURL     string `json:"repo_url"`
	GithubToken string `json:"github_token,omitempty"`
}

type estimateResponse struct {
	Files   int `json:"files"`
	Credits int `json:"credits"`
}

type pullCommitsRequest struct {
	ProjectID string `json:"project_id"`
}

type askQuestionRequest struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Question  string `json:"question"`
	Mode      string `json:"mode,omitempty"`
	Stream    bool   `json:"stream,omitempty"`
}

type askQuestionResponse struct {
	ID         string         `json:"id"`
	Answer     string         `json:"answer"`
	Mode       string         `json:"mode"`
	References []qa.Reference `json:"references"`
}

type checkoutWebhookRequest struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Metadata struct {
		UserID  string `json:"user_id"`
		Credits int    `json:"credits"`
	} `json:"metadata"`
}

type checkoutWebhookResponse struct {
	Credited  bool `json:"credited"`
	Duplicate bool `json:"duplicate"`
}
