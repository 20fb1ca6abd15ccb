// Package session holds per-browser authentication state: the EduMaster API
// token and the user it belongs to, restored and validated before any page
// handler runs. There are no ambient globals; the manager is injected at
// startup and torn down with the server.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/edumaster"
)

// defaultRefreshAfter bounds how stale a cached user may get before the
// profile is re-validated against the API.
const defaultRefreshAfter = 5 * time.Minute

// State is the resolved auth state for one request. A nil/zero state is
// anonymous.
type State struct {
	SessionID string
	Token     string
	User      *edumaster.User
}

// IsAuthenticated reports whether both a token and a user are present.
func (s *State) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// IsAdmin reports whether the current user may access admin screens.
func (s *State) IsAdmin() bool { return s != nil && s.User.Admin() }

// IsSuperAdmin reports whether the current user may manage admin accounts.
func (s *State) IsSuperAdmin() bool { return s != nil && s.User.SuperAdmin() }

// Manager restores, creates and destroys browser sessions.
type Manager struct {
	store        Store
	api          *edumaster.Client
	log          zerolog.Logger
	refreshAfter time.Duration
}

// NewManager creates a session Manager backed by the given store.
func NewManager(store Store, api *edumaster.Client, log zerolog.Logger) *Manager {
	return &Manager{
		store:        store,
		api:          api,
		log:          log.With().Str("component", "session").Logger(),
		refreshAfter: defaultRefreshAfter,
	}
}

// Restore resolves the auth state for a session ID. It never fails: any
// problem (missing record, locally expired token, rejected token) resolves
// to the anonymous state, clearing the stored record where appropriate.
// By the time Restore returns, the auth state is fully known — handlers
// never observe a "still loading" session.
func (m *Manager) Restore(ctx context.Context, sessionID string) *State {
	if sessionID == "" {
		return &State{}
	}

	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Warn().Err(err).Msg("Session store read failed")
		}
		return &State{}
	}

	// Drop tokens that are provably stale without a round trip. The server
	// still has the final word on everything this check lets through.
	if tokenExpired(rec.Token) {
		_ = m.store.Delete(ctx, sessionID)
		return &State{}
	}

	if rec.User != nil && time.Since(rec.RefreshedAt) < m.refreshAfter {
		return &State{SessionID: rec.ID, Token: rec.Token, User: rec.User}
	}

	user, err := m.api.WithToken(rec.Token).GetProfile(ctx)
	if err != nil {
		var apiErr *edumaster.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 0 && rec.User != nil {
			// Connectivity failure, not a rejection: serve the cached user
			// rather than logging everyone out during an API blip.
			m.log.Warn().Err(err).Msg("Profile refresh unreachable, serving cached user")
			return &State{SessionID: rec.ID, Token: rec.Token, User: rec.User}
		}
		_ = m.store.Delete(ctx, sessionID)
		return &State{}
	}

	rec.User = user
	rec.RefreshedAt = time.Now()
	if err := m.store.Save(ctx, rec); err != nil {
		m.log.Warn().Err(err).Msg("Session store write failed")
	}

	return &State{SessionID: rec.ID, Token: rec.Token, User: user}
}

// Login authenticates against the remote API and creates a session record.
// The returned error's user message (edumaster.UserMessage) is safe to show.
func (m *Manager) Login(ctx context.Context, email, password string) (*Record, error) {
	result, err := m.api.Login(ctx, edumaster.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:          uuid.NewString(),
		Token:       result.Token,
		User:        result.User,
		RefreshedAt: time.Now(),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	m.log.Info().Str("user_id", rec.User.ID).Msg("Session created")
	return rec, nil
}

// Refresh re-fetches the profile right away, bypassing the cache window.
// Used after a profile edit so the very next page shows the new values.
// Best effort: on any failure the cached user simply ages out as usual.
func (m *Manager) Refresh(ctx context.Context, sessionID string) {
	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return
	}
	user, err := m.api.WithToken(rec.Token).GetProfile(ctx)
	if err != nil {
		return
	}
	rec.User = user
	rec.RefreshedAt = time.Now()
	if err := m.store.Save(ctx, rec); err != nil {
		m.log.Warn().Err(err).Msg("Session store write failed")
	}
}

// Logout deletes the session record synchronously. No server call is made;
// the remote API's tokens simply age out.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.log.Warn().Err(err).Msg("Session delete failed")
	}
}

// tokenExpired peeks at a JWT's exp claim without verifying the signature.
// Non-JWT or claim-less tokens report false and are left for the server to
// judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
