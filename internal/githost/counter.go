// File path: internal/githost/counter.go
package githost

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/repobrief/repobrief/internal/common"
)

// CountFiles walks the repository's directory tree via contents listings,
// fanning out one goroutine per subdirectory, and returns the total file
// count (one credit unit per file). Listing errors are swallowed: a failed
// branch contributes zero, so partial failure undercounts rather than fails.
func (l *Loader) CountFiles(ctx context.Context, repoURL, token string) (int, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return 0, err
	}
	logger := common.Logger()
	var total int64
	var wg sync.WaitGroup

	var walk func(dir string)
	walk = func(dir string) {
		defer wg.Done()
		entries, err := l.client.Contents(ctx, owner, repo, dir, token)
		if err != nil {
			logger.Warn("githost: directory listing failed during count", "dir", dir, "error", err)
			return
		}
		for _, entry := range entries {
			switch entry.Type {
			case "file":
				if !Ignored(entry.Path) {
					atomic.AddInt64(&total, 1)
				}
			case "dir":
				wg.Add(1)
				go walk(entry.Path)
			}
		}
	}

	wg.Add(1)
	walk("")
	wg.Wait()
	return int(atomic.LoadInt64(&total)), nil
}
