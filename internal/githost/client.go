// File path: internal/githost/client.go
package githost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
)

// StatusError reports a non-2xx response from the hosting API.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("githost: %s returned status %d", e.URL, e.StatusCode)
}

// IsPermanent reports whether the error is a 403/404 that no amount of
// retrying will fix.
func IsPermanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusForbidden || se.StatusCode == http.StatusNotFound
}

// Client talks to the repository hosting REST API. A default bearer token may
// be set at construction; per-project tokens override it per call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      strings.TrimSpace(token),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// TreeEntry is one node of a recursive repository tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// Commit carries the fields the puller persists.
type Commit struct {
	Hash         string
	Message      string
	AuthorName   string
	AuthorAvatar string
	CommittedAt  time.Time
}

// DirEntry is one node of a single-directory contents listing.
type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Tree lists the full recursive tree of a branch.
func (c *Client) Tree(ctx context.Context, owner, repo, branch, token string) ([]TreeEntry, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.baseURL, owner, repo, url.PathEscape(branch))
	var payload struct {
		Tree      []TreeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	if err := c.getJSON(ctx, u, token, &payload); err != nil {
		return nil, err
	}
	return payload.Tree, nil
}

// FileContent fetches and decodes one blob via the contents API.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, ref, token string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, escapePath(path))
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := c.getJSON(ctx, u, token, &payload); err != nil {
		return "", err
	}
	if payload.Encoding != "base64" {
		return payload.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode blob %s: %w", path, err)
	}
	return string(decoded), nil
}

// Contents lists one directory (non-recursive), used by the file counter.
func (c *Client) Contents(ctx context.Context, owner, repo, dir, token string) ([]DirEntry, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, escapePath(dir))
	var entries []DirEntry
	if err := c.getJSON(ctx, u, token, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Commits returns the most recent commits, newest first.
func (c *Client) Commits(ctx context.Context, owner, repo string, limit int, token string) ([]Commit, error) {
	if limit <= 0 {
		limit = 20
	}
	u := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d", c.baseURL, owner, repo, limit)
	var payload []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Author struct {
			AvatarURL string `json:"avatar_url"`
		} `json:"author"`
	}
	if err := c.getJSON(ctx, u, token, &payload); err != nil {
		return nil, err
	}
	commits := make([]Commit, 0, len(payload))
	for _, p := range payload {
		commits = append(commits, Commit{
			Hash:         p.SHA,
			Message:      p.Commit.Message,
			AuthorName:   p.Commit.Author.Name,
			AuthorAvatar: p.Author.AvatarURL,
			CommittedAt:  p.Commit.Author.Date,
		})
	}
	return commits, nil
}

// Diff fetches the unified diff for a commit via the web URL convention
// {repoURL}/commit/{hash}.diff.
func (c *Client) Diff(ctx context.Context, repoURL, hash, token string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(repoURL), "/") + "/commit/" + hash + ".diff"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build diff request: %w", err)
	}
	if tok := c.resolveToken(token); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch diff: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, URL: u}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read diff: %w", err)
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, u, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if tok := c.resolveToken(token); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) resolveToken(token string) string {
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		return trimmed
	}
	return c.token
}

// ParseRepoURL extracts owner and repository name from forms like
// https://github.com/owner/repo, github.com/owner/repo.git or owner/repo.
func ParseRepoURL(repoURL string) (string, string, error) {
	trimmed := strings.TrimSpace(repoURL)
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimPrefix(trimmed, "github.com/")
	trimmed = strings.TrimSuffix(strings.TrimRight(trimmed, "/"), ".git")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository url: %q", repoURL)
	}
	return parts[0], parts[1], nil
}

func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
