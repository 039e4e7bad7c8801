// File path: internal/githost/loader.go
package githost

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/repobrief/repobrief/internal/common"
)

// Document is one loaded repository file.
type Document struct {
	Path    string
	Content string
}

// Binary and media extensions that are never worth summarizing.
var ignoredExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".ico": {}, ".bmp": {}, ".webp": {},
	".mp3": {}, ".wav": {}, ".ogg": {}, ".flac": {},
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".bz2": {}, ".rar": {}, ".7z": {},
	".pdf": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".bin": {}, ".jar": {}, ".class": {}, ".wasm": {},
	".lock": {},
}

// Ignored reports whether a path matches the binary/media ignore-list.
func Ignored(filePath string) bool {
	ext := strings.ToLower(path.Ext(filePath))
	_, ok := ignoredExtensions[ext]
	return ok
}

// Loader lists and fetches the text content of a repository's files.
type Loader struct {
	client *Client
}

func NewLoader(client *Client) *Loader {
	return &Loader{client: client}
}

// Load returns one Document per non-ignored file in the repository tree.
// The main branch is tried first, then master. If neither listing succeeds a
// single synthesized placeholder document is returned: ingestion must never
// abort on an empty or inaccessible repository.
func (l *Loader) Load(ctx context.Context, repoURL, token string) ([]Document, error) {
	logger := common.Logger()
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, branch := range []string{"main", "master"} {
		entries, err := l.client.Tree(ctx, owner, repo, branch, token)
		if err != nil {
			logger.Warn("githost: tree listing failed", "repo", repoURL, "branch", branch, "error", err)
			lastErr = err
			continue
		}
		return l.fetchDocuments(ctx, owner, repo, branch, token, entries), nil
	}
	logger.Warn("githost: no branch loadable, synthesizing placeholder", "repo", repoURL, "error", lastErr)
	return []Document{placeholderDocument(repoURL)}, nil
}

func (l *Loader) fetchDocuments(ctx context.Context, owner, repo, branch, token string, entries []TreeEntry) []Document {
	logger := common.Logger()
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.Type != "blob" || Ignored(entry.Path) {
			continue
		}
		content, err := l.client.FileContent(ctx, owner, repo, entry.Path, branch, token)
		if err != nil {
			logger.Warn("githost: blob fetch failed, skipping file", "path", entry.Path, "error", err)
			continue
		}
		docs = append(docs, Document{Path: entry.Path, Content: content})
	}
	return docs
}

func placeholderDocument(repoURL string) Document {
	content := fmt.Sprintf(
		"# Repository\n\nThe repository at %s appears to be empty or inaccessible. "+
			"No files could be loaded from the main or master branch. "+
			"If the repository is private, provide an access token and re-run ingestion.\n",
		strings.TrimSpace(repoURL),
	)
	return Document{Path: "README.md", Content: content}
}
