// File path: internal/ingest/pipeline.go
package ingest

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/githost"
	"github.com/repobrief/repobrief/internal/llm"
	"github.com/repobrief/repobrief/internal/store"
)

// DocumentLoader lists and fetches a repository's files.
type DocumentLoader interface {
	Load(ctx context.Context, repoURL, token string) ([]githost.Document, error)
}

// Intelligence is the summarize/embed surface of the generative client.
type Intelligence interface {
	SummarizeFile(ctx context.Context, fileName, source string) string
	SummarizeDiff(ctx context.Context, diff string) string
	Embed(ctx context.Context, text string) []float32
}

// Pipeline turns a repository into stored file records: one summary and one
// embedding per file. Files are processed strictly sequentially, in priority
// order, to stay inside third-party rate limits.
type Pipeline struct {
	loader DocumentLoader
	ai     Intelligence
	store  *store.Store
}

func NewPipeline(loader DocumentLoader, ai Intelligence, st *store.Store) *Pipeline {
	return &Pipeline{loader: loader, ai: ai, store: st}
}

// Ingest processes every file of the repository and returns the number of
// rows stored. Existing rows for the project are deleted first so a re-run
// does not duplicate records.
func (p *Pipeline) Ingest(ctx context.Context, projectID, repoURL, token string) (int, error) {
	return p.ingest(ctx, projectID, repoURL, token, 0)
}

// IngestCapped behaves like Ingest but processes at most max files, chosen
// by the same priority order.
func (p *Pipeline) IngestCapped(ctx context.Context, projectID, repoURL, token string, max int) (int, error) {
	return p.ingest(ctx, projectID, repoURL, token, max)
}

func (p *Pipeline) ingest(ctx context.Context, projectID, repoURL, token string, max int) (int, error) {
	logger := common.Logger()
	docs, err := p.loader.Load(ctx, repoURL, token)
	if err != nil {
		return 0, err
	}
	sortByPriority(docs)
	if max > 0 && len(docs) > max {
		docs = docs[:max]
	}
	if err := p.store.DeleteProjectFiles(ctx, projectID); err != nil {
		return 0, err
	}
	logger.Info("ingest: pipeline started", "project", projectID, "files", len(docs))

	stored := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		summary := p.ai.SummarizeFile(ctx, doc.Path, doc.Content)
		vec := p.ai.Embed(ctx, summary)

		id, err := p.store.InsertFileRecord(ctx, store.FileRecord{
			ProjectID: projectID,
			FileName:  doc.Path,
			Summary:   summary,
			Source:    doc.Content,
		})
		if err != nil {
			logger.Error("ingest: file insert failed, continuing", "file", doc.Path, "error", err)
			continue
		}
		if len(vec) == llm.EmbeddingDimensions {
			if err := p.store.UpdateFileEmbedding(ctx, id, store.Vector(vec)); err != nil {
				logger.Error("ingest: embedding write failed, keeping textual row", "file", doc.Path, "error", err)
			}
		} else {
			logger.Warn("ingest: embedding has wrong length, storing without vector", "file", doc.Path, "length", len(vec))
		}
		stored++
	}
	logger.Info("ingest: pipeline finished", "project", projectID, "stored", stored)
	return stored, nil
}

// Priority buckets: README-like files first, then dependency manifests, then
// conventional source directories, then everything else.
func priorityRank(docPath string) int {
	base := strings.ToLower(path.Base(docPath))
	switch {
	case strings.HasPrefix(base, "readme"):
		return 0
	case base == "package.json" || base == "go.mod" || base == "cargo.toml" ||
		base == "pyproject.toml" || base == "pom.xml" || base == "gemfile":
		return 1
	}
	top := strings.ToLower(strings.SplitN(docPath, "/", 2)[0])
	switch top {
	case "src", "lib", "app", "internal", "pkg", "cmd":
		return 2
	}
	return 3
}

func sortByPriority(docs []githost.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := priorityRank(docs[i].Path), priorityRank(docs[j].Path)
		if ri != rj {
			return ri < rj
		}
		return docs[i].Path < docs[j].Path
	})
}
