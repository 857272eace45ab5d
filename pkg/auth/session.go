// Package auth is the client surface of the identity service: it signs the
// user in and out, keeps the current identity, and answers the ownership
// question for posts. It never verifies tokens — the backend holds the key;
// the client only reads claims for display and ownership matching.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"blog-client/internal/entity"
	"blog-client/pkg/api"
	"blog-client/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotSignedIn = errors.New("auth: not signed in")

// User is the identity snapshot read by the rest of the client.
type User struct {
	Email       string
	DisplayName string
}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Session is bound at application start and torn down at sign-out. It is
// handed to form sessions and gates explicitly, never read from globals.
type Session struct {
	client *api.Client
	log    *logger.Logger

	mu   sync.RWMutex
	user *User
}

func NewSession(client *api.Client, log *logger.Logger) *Session {
	return &Session{
		client: client,
		log:    log,
	}
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := s.client.PostJSON(ctx, "auth/login", body, &resp); err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	return s.adopt(resp.Token)
}

func (s *Session) SignUp(ctx context.Context, email, password, displayName string) error {
	body := map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}

	var resp tokenResponse
	if err := s.client.PostJSON(ctx, "auth/register", body, &resp); err != nil {
		return fmt.Errorf("sign up failed: %w", err)
	}

	return s.adopt(resp.Token)
}

// SignOut drops the identity and the bearer token. It is purely local; the
// token simply stops being sent.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.client.SetToken("")
}

// UpdateProfile changes the display name on the identity service and in the
// cached identity. The email is immutable.
func (s *Session) UpdateProfile(ctx context.Context, displayName string) error {
	s.mu.RLock()
	signedIn := s.user != nil
	s.mu.RUnlock()
	if !signedIn {
		return ErrNotSignedIn
	}

	body := map[string]string{"displayName": displayName}
	if err := s.client.PutJSON(ctx, "auth/profile", body, nil); err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	s.mu.Lock()
	if s.user != nil {
		s.user.DisplayName = displayName
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// CanEdit reports whether the signed-in user may edit or delete the post.
// This gates UI affordances only; the backend re-checks ownership on every
// mutation.
func (s *Session) CanEdit(post *entity.Post) bool {
	user, ok := s.CurrentUser()
	if !ok {
		return false
	}
	return CanEdit(post, user.Email)
}

// CanEdit is the ownership predicate: a post belongs to the identity whose
// email matches the author email recorded on it.
func CanEdit(post *entity.Post, currentUserEmail string) bool {
	if post == nil || currentUserEmail == "" {
		return false
	}
	return post.AuthorEmail == currentUserEmail
}

// adopt installs the token and reads the identity out of its claims without
// verifying the signature.
func (s *Session) adopt(token string) error {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("failed to parse identity token: %w", err)
	}

	email := claims.Email
	if email == "" {
		email = claims.Subject
	}
	if email == "" {
		return errors.New("auth: identity token has no email claim")
	}

	s.mu.Lock()
	s.user = &User{Email: email, DisplayName: claims.Name}
	s.mu.Unlock()
	s.client.SetToken(token)

	s.log.Info("signed in as %s", email)
	return nil
}
