package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"blog-client/internal/entity"
	"blog-client/internal/imageset"
	"blog-client/internal/repo/remote"
	"blog-client/pkg/auth"
	"blog-client/pkg/logger"
)

type SessionState int

const (
	StateClosed SessionState = iota
	StateOpen
	StateSubmitting
	StateDeleting
)

var (
	ErrSessionNotOpen = errors.New("form session is not open")
	ErrNoBoundPost    = errors.New("form session has no bound post")
)

// ValidationError is a field-scoped required-field failure. It blocks the
// submit and leaves the session open, unlike transport failures.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// FormSession is one bounded create-or-edit interaction: field values, the
// image working set, and the submit/delete protocol. A session produces at
// most one successful submit or delete and then closes; it also closes on
// transport failure — there is no retry.
type FormSession struct {
	repo remote.PostRepository
	log  *logger.Logger

	// Fields is edited directly between Open and Submit. The UI drives a
	// session from a single event loop; only the state transitions are
	// guarded.
	Fields entity.FormFields

	mu     sync.Mutex
	state  SessionState
	postID string
	images *imageset.Set
}

// NewCreateSession opens a session for a new post. Author identity is
// pinned from the signed-in user the moment the session opens and is not
// user-editable, though it is still part of the submitted payload.
func NewCreateSession(repo remote.PostRepository, user auth.User, log *logger.Logger) *FormSession {
	return &FormSession{
		repo:  repo,
		log:   log,
		state: StateOpen,
		Fields: entity.FormFields{
			Author:      user.DisplayName,
			AuthorEmail: user.Email,
		},
		images: imageset.New(),
	}
}

// NewEditSession opens a session seeded from a copy of the target post.
// Concurrent edits are not reconciled; the last submit wins. Author and
// authorEmail are re-pinned to the editing user's identity rather than the
// stored author (carried-over behavior).
func NewEditSession(repo remote.PostRepository, user auth.User, post entity.Post, log *logger.Logger) *FormSession {
	return &FormSession{
		repo:   repo,
		log:    log,
		state:  StateOpen,
		postID: post.ID,
		Fields: entity.FormFields{
			Author:      user.DisplayName,
			AuthorEmail: user.Email,
			Title:       post.Title,
			Category:    post.Category,
			Subcategory: post.Subcategory,
			Summary:     post.Summary,
			Description: post.Description,
		},
		images: imageset.FromURLs(post.Images),
	}
}

func (s *FormSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Editing reports whether the session is bound to an existing post.
func (s *FormSession) Editing() bool {
	return s.postID != ""
}

// Images is the session's image working set.
func (s *FormSession) Images() *imageset.Set {
	return s.images
}

// Validate checks the required text fields. The first missing field is
// reported; there is no cross-field validation.
func (s *FormSession) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"title", s.Fields.Title},
		{"summary", s.Fields.Summary},
		{"description", s.Fields.Description},
		{"category", s.Fields.Category},
		{"subcategory", s.Fields.Subcategory},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field}
		}
	}
	return nil
}

// Submit sends the entire field set plus all pending images as one
// multipart request — a create for unbound sessions, an update addressed
// by the bound id otherwise. Validation failure keeps the session open;
// any transport outcome, success or failure, closes it. The caller is
// expected to refresh the store afterwards; until then the listing shows
// the pre-submit data.
//
// Duplicate in-flight submits are not suppressed.
func (s *FormSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateOpen && s.state != StateSubmitting {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	s.mu.Unlock()

	if err := s.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateSubmitting
	fields := s.Fields
	images := s.images.WireImages()
	s.mu.Unlock()

	var err error
	if s.postID == "" {
		err = s.repo.Create(ctx, fields, images)
	} else {
		err = s.repo.Update(ctx, s.postID, fields, images)
	}
	if err != nil {
		s.log.Error("post submit failed: %v", err)
	}

	s.Close()
	return err
}

// Delete removes the bound post. Only reachable for edit sessions; like
// Submit it closes the session whatever the outcome.
func (s *FormSession) Delete(ctx context.Context) error {
	if s.postID == "" {
		return ErrNoBoundPost
	}

	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	s.state = StateDeleting
	s.mu.Unlock()

	err := s.repo.Delete(ctx, s.postID)
	if err != nil {
		s.log.Error("post delete failed: %v", err)
	}

	s.Close()
	return err
}

// Close ends the session and releases the image set's preview handles.
// Closing twice is harmless.
func (s *FormSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.images.Close()
}
