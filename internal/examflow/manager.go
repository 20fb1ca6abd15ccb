package examflow

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// APIFactory builds an ExamAPI bound to one browser session's token.
type APIFactory func(token string) ExamAPI

// Manager tracks live exam attempts keyed by browser session and exam, so
// a page reload reattaches to the running countdown instead of restarting
// the attempt.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	newAPI         APIFactory
	defaultMinutes int
	log            zerolog.Logger
}

// NewManager creates an attempt Manager.
func NewManager(newAPI APIFactory, defaultMinutes int, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:       make(map[string]*Session),
		newAPI:         newAPI,
		defaultMinutes: defaultMinutes,
		log:            log,
	}
}

func attemptKey(sessionID, examID string) string {
	return sessionID + ":" + examID
}

// Start returns the live attempt for this browser session and exam,
// creating and starting one when none exists. A finished attempt is
// replaced by a fresh one.
func (m *Manager) Start(ctx context.Context, sessionID, token, examID string) (*Session, error) {
	key := attemptKey(sessionID, examID)

	m.mu.Lock()
	if existing, ok := m.sessions[key]; ok && existing.State() != StateSubmitted {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	sess := NewSession(m.newAPI(token), examID, m.defaultMinutes, m.log)
	if err := sess.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Two tabs can race to start the same attempt; keep the one that won.
	if current, ok := m.sessions[key]; ok && current.State() != StateSubmitted {
		go sess.Close()
		return current, nil
	}
	m.sessions[key] = sess
	return sess, nil
}

// Get returns the live attempt for this browser session and exam, if any.
func (m *Manager) Get(sessionID, examID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[attemptKey(sessionID, examID)]
	return sess, ok
}

// Remove closes and forgets an attempt. Called when the student leaves the
// exam page for good or their browser session ends.
func (m *Manager) Remove(sessionID, examID string) {
	key := attemptKey(sessionID, examID)

	m.mu.Lock()
	sess, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if ok {
		sess.Close()
	}
}

// CloseAll tears down every live attempt. Part of graceful shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for key, sess := range m.sessions {
		sessions = append(sessions, sess)
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
	m.log.Info().Int("count", len(sessions)).Msg("Exam attempts closed")
}
