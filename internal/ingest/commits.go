// File path: internal/ingest/commits.go
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/githost"
	"github.com/repobrief/repobrief/internal/llm"
	"github.com/repobrief/repobrief/internal/store"
)

// CommitSource lists recent commits and fetches unified diffs.
type CommitSource interface {
	Commits(ctx context.Context, owner, repo string, limit int, token string) ([]githost.Commit, error)
	Diff(ctx context.Context, repoURL, hash, token string) (string, error)
}

const (
	// DefaultPullLimit is how many recent commits one pull considers.
	DefaultPullLimit = 20

	// DefaultPullDelay paces consecutive commit summaries to avoid host
	// rate limits.
	DefaultPullDelay = 2 * time.Second

	// cannedDiffSummary replaces the AI summary when the diff endpoint
	// answers 403 or 404; those are not transient and are never retried.
	cannedDiffSummary = "No summary available: the diff for this commit is not accessible."
)

// CommitPuller fetches recent commits, summarizes the diffs of the ones not
// seen before and upserts them keyed by (project, hash).
type CommitPuller struct {
	source      CommitSource
	ai          Intelligence
	store       *store.Store
	limit       int
	delay       time.Duration
	maxAttempts int
	baseDelay   time.Duration
	sleep       llm.SleepFunc
}

type PullerOption func(*CommitPuller)

func WithPullLimit(n int) PullerOption {
	return func(p *CommitPuller) {
		if n > 0 {
			p.limit = n
		}
	}
}

func WithPullDelay(d time.Duration) PullerOption {
	return func(p *CommitPuller) {
		if d >= 0 {
			p.delay = d
		}
	}
}

func WithPullerSleep(fn llm.SleepFunc) PullerOption {
	return func(p *CommitPuller) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

func NewCommitPuller(source CommitSource, ai Intelligence, st *store.Store, opts ...PullerOption) *CommitPuller {
	p := &CommitPuller{
		source:      source,
		ai:          ai,
		store:       st,
		limit:       DefaultPullLimit,
		delay:       DefaultPullDelay,
		maxAttempts: llm.DefaultMaxAttempts,
		baseDelay:   llm.DefaultBaseDelay,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Pull processes the commits not yet stored for the project and returns the
// canonical stored state, re-read after the upserts. A summarization failure
// degrades to a placeholder; a persistence failure aborts the whole pull.
func (p *CommitPuller) Pull(ctx context.Context, projectID string) ([]store.CommitRecord, error) {
	logger := common.Logger()
	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	owner, repo, err := githost.ParseRepoURL(project.RepoURL)
	if err != nil {
		return nil, err
	}
	commits, err := p.source.Commits(ctx, owner, repo, p.limit, project.Token())
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	seen, err := p.store.SeenCommitHashes(ctx, projectID)
	if err != nil {
		return nil, err
	}

	processed := 0
	for _, commit := range commits {
		if _, ok := seen[commit.Hash]; ok {
			continue
		}
		if processed > 0 && p.delay > 0 {
			if err := p.sleep(ctx, p.delay); err != nil {
				return nil, err
			}
		}
		summary := p.summarizeCommit(ctx, project, commit.Hash)
		rec := store.CommitRecord{
			ProjectID:    projectID,
			CommitHash:   commit.Hash,
			Message:      commit.Message,
			AuthorName:   commit.AuthorName,
			AuthorAvatar: commit.AuthorAvatar,
			CommittedAt:  commit.CommittedAt,
			Summary:      summary,
		}
		if err := p.store.UpsertCommit(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist commit %s: %w", commit.Hash, err)
		}
		processed++
	}
	logger.Info("ingest: commit pull finished", "project", projectID, "fetched", len(commits), "new", processed)
	return p.store.CommitsForProject(ctx, projectID)
}

// summarizeCommit fetches the diff with the shared retry policy. A 403 or
// 404 short-circuits to the canned summary; retry exhaustion degrades to the
// generic diff fallback.
func (p *CommitPuller) summarizeCommit(ctx context.Context, project store.Project, hash string) string {
	logger := common.Logger()
	var diff string
	var lastErr error
	fetched := false
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := p.sleep(ctx, p.backoff(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}
		d, err := p.source.Diff(ctx, project.RepoURL, hash, project.Token())
		if err != nil {
			if githost.IsPermanent(err) {
				logger.Warn("ingest: diff permanently unavailable", "hash", hash, "error", err)
				return cannedDiffSummary
			}
			lastErr = err
			continue
		}
		diff = d
		fetched = true
		break
	}
	if !fetched {
		logger.Warn("ingest: diff fetch exhausted retries", "hash", hash, "error", lastErr)
		return llm.FallbackDiffSummary
	}
	return p.ai.SummarizeDiff(ctx, diff)
}

func (p *CommitPuller) backoff(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	if retry > 30 {
		retry = 30
	}
	return p.baseDelay << uint(retry-1)
}
