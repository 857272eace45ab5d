package usecase

import (
	"context"
	"strings"
	"sync"

	"blog-client/internal/entity"
	"blog-client/internal/repo/remote"
	"blog-client/pkg/logger"
)

// Selection is the pair of independently chosen facet values. An empty
// value means the facet is unselected.
type Selection struct {
	Category    string
	Subcategory string
}

// FilterEngine composes the visible subset of the store's snapshot from a
// submitted search query and the facet selection. Held search results take
// precedence over facet filtering until Reset.
type FilterEngine struct {
	repo remote.PostRepository
	log  *logger.Logger

	mu      sync.RWMutex
	results []entity.Post
	active  bool
}

func NewFilterEngine(repo remote.PostRepository, log *logger.Logger) *FilterEngine {
	return &FilterEngine{
		repo: repo,
		log:  log,
	}
}

// Search submits the query to the backend and holds the result set. A
// blank query is a no-op; emptying the text field never clears held
// results — only Reset does.
func (e *FilterEngine) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	posts, err := e.repo.Search(ctx, query)
	if err != nil {
		e.log.Error("search failed: %v", err)
		return err
	}

	e.mu.Lock()
	e.results = posts
	e.active = true
	e.mu.Unlock()
	return nil
}

// Reset clears the held search results and returns to the filtered view.
func (e *FilterEngine) Reset() {
	e.mu.Lock()
	e.results = nil
	e.active = false
	e.mu.Unlock()
}

func (e *FilterEngine) SearchActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Visible computes the displayed subset of the snapshot. With search
// results held they replace the view entirely, ignoring the selection.
// Otherwise a post is visible when it matches the selected category OR the
// selected subcategory; an unselected facet matches nothing, and with no
// selection at all everything is visible.
func (e *FilterEngine) Visible(snapshot []entity.Post, sel Selection) []entity.Post {
	e.mu.RLock()
	if e.active {
		out := make([]entity.Post, len(e.results))
		copy(out, e.results)
		e.mu.RUnlock()
		return out
	}
	e.mu.RUnlock()

	if sel.Category == "" && sel.Subcategory == "" {
		out := make([]entity.Post, len(snapshot))
		copy(out, snapshot)
		return out
	}

	out := []entity.Post{}
	for _, p := range snapshot {
		matchCategory := sel.Category != "" && p.Category == sel.Category
		matchSubcategory := sel.Subcategory != "" && p.Subcategory == sel.Subcategory
		if matchCategory || matchSubcategory {
			out = append(out, p)
		}
	}
	return out
}
