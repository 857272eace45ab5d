// Package usecase holds the stateful core of the client: the polling post
// store, the search/filter engine and the create/edit form session.
package usecase

import (
	"context"
	"sync"
	"time"

	"blog-client/internal/entity"
	"blog-client/internal/repo/remote"
	"blog-client/pkg/logger"

	"gopkg.in/tomb.v2"
)

const defaultPollInterval = 10 * time.Second

// PostStore is the single client-side snapshot of all posts. Every
// successful refresh replaces the whole collection; the most recent
// resolved response wins.
type PostStore struct {
	repo     remote.PostRepository
	log      *logger.Logger
	interval time.Duration

	mu      sync.RWMutex
	posts   []entity.Post
	lastErr error
	t       *tomb.Tomb
}

func NewPostStore(repo remote.PostRepository, log *logger.Logger, interval time.Duration) *PostStore {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &PostStore{
		repo:     repo,
		log:      log,
		interval: interval,
	}
}

// Refresh fetches the full collection. On success the snapshot is replaced
// wholesale; on failure the prior snapshot stays readable and the error is
// recorded for the UI.
func (s *PostStore) Refresh(ctx context.Context) error {
	posts, err := s.repo.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return err
	}
	s.posts = dedupeByID(posts)
	s.lastErr = nil
	return nil
}

// Activate starts polling: one immediate refresh, then one per interval,
// until Deactivate. Activating an already active store is a no-op.
func (s *PostStore) Activate() {
	s.mu.Lock()
	if s.t != nil && s.t.Alive() {
		s.mu.Unlock()
		return
	}
	t := &tomb.Tomb{}
	s.t = t
	s.mu.Unlock()

	t.Go(func() error {
		s.poll(t)
		return nil
	})
}

// Deactivate stops future polling ticks and waits for the loop to exit.
// A refresh already in flight is not aborted; its response still lands.
func (s *PostStore) Deactivate() {
	s.mu.Lock()
	t := s.t
	s.mu.Unlock()
	if t == nil {
		return
	}
	t.Kill(nil)
	_ = t.Wait()
}

func (s *PostStore) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t != nil && s.t.Alive()
}

// Snapshot returns a copy of the current collection.
func (s *PostStore) Snapshot() []entity.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// LastError reports the outcome of the most recent refresh; nil after a
// success.
func (s *PostStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *PostStore) poll(t *tomb.Tomb) {
	// Refreshes run on their own context so killing the loop never cancels
	// a request already in flight.
	if err := s.Refresh(context.Background()); err != nil {
		s.log.Error("post refresh failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.Dying():
			return
		case <-ticker.C:
			if err := s.Refresh(context.Background()); err != nil {
				s.log.Error("post refresh failed: %v", err)
			}
		}
	}
}

// dedupeByID keeps the first occurrence of each id so the snapshot honors
// id uniqueness even against a misbehaving backend.
func dedupeByID(posts []entity.Post) []entity.Post {
	seen := make(map[string]bool, len(posts))
	out := posts[:0:0]
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
