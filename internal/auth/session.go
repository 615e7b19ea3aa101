package auth

import (
	"context"
	"time"

	"todo-api/internal/apperrors"
	"todo-api/internal/cache"
	"todo-api/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var errNoSession = apperrors.Unauthorized("authentication required")

// Session is the server-side record behind a token
type Session struct {
	ID       string
	Identity models.Identity
	Expires  time.Time
}

// SessionManager keeps live sessions in memory. A token is honoured only while
// its session is present, so logout and user deletion take effect at once.
type SessionManager struct {
	tokens   *TokenIssuer
	sessions cache.Cache[string, Session]
	log      *logrus.Logger
}

func NewSessionManager(tokens *TokenIssuer, sessions cache.Cache[string, Session], log *logrus.Logger) *SessionManager {
	return &SessionManager{tokens: tokens, sessions: sessions, log: log}
}

// Establish opens a new session for identity and returns its signed token
func (m *SessionManager) Establish(identity models.Identity) (string, *Session, error) {
	s := Session{
		ID:       uuid.NewString(),
		Identity: identity,
		Expires:  m.tokens.now().Add(m.tokens.TTL()),
	}
	token, err := m.tokens.Generate(s.ID, identity.UserID)
	if err != nil {
		return "", nil, err
	}
	m.sessions.Set(s.ID, s, m.tokens.TTL())
	return token, &s, nil
}

// Resolve maps a token to its live session
func (m *SessionManager) Resolve(token string) (*Session, error) {
	if token == "" {
		return nil, errNoSession
	}
	claims, err := m.tokens.Validate(token)
	if err != nil {
		m.log.WithError(err).Debug("rejected session token")
		return nil, apperrors.Unauthorized("invalid or expired session")
	}
	s, ok := m.sessions.Get(claims.ID)
	if !ok || s.Identity.UserID != claims.UserID {
		return nil, apperrors.Unauthorized("session has ended")
	}
	return &s, nil
}

// Revoke ends one session. Unknown ids are ignored.
func (m *SessionManager) Revoke(sessionID string) {
	m.sessions.Delete(sessionID)
}

// RevokeUser ends every session belonging to userID
func (m *SessionManager) RevokeUser(userID uint) int {
	n := m.sessions.DeleteFunc(func(_ string, s Session) bool {
		return s.Identity.UserID == userID
	})
	if n > 0 {
		m.log.WithFields(logrus.Fields{"user_id": userID, "sessions": n}).Info("revoked sessions")
	}
	return n
}

// StartJanitor purges expired sessions in the background until ctx is done
func (m *SessionManager) StartJanitor(ctx context.Context, interval time.Duration) {
	m.sessions.StartJanitor(ctx, interval)
}
