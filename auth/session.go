package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"aqua/apperror"
	"aqua/config"
)

// Session is the local projection of a signed-in identity, passed
// explicitly to every operation that needs a capability check.
type Session struct {
	TokenID   uuid.UUID
	Subject   string
	Admin     bool
	ExpiresAt time.Time
}

// Event notifies subscribers that the session state changed.
type Event struct {
	Subject  string
	SignedIn bool
}

type sessionClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Service mints and verifies admin sessions and broadcasts
// session-change events to subscribers.
type Service struct {
	verifier Verifier
	secret   []byte
	ttl      time.Duration

	mu          sync.RWMutex
	revoked     map[uuid.UUID]time.Time
	subscribers map[uuid.UUID]chan Event
}

func NewService(verifier Verifier, secret []byte, ttl time.Duration) *Service {
	return &Service{
		verifier:    verifier,
		secret:      secret,
		ttl:         ttl,
		revoked:     make(map[uuid.UUID]time.Time),
		subscribers: make(map[uuid.UUID]chan Event),
	}
}

// NewServiceFromEnv builds a service with the static admin verifier
// and SESSION_SECRET, defaulting to a 12 hour session lifetime.
func NewServiceFromEnv() *Service {
	secret := config.Env("SESSION_SECRET", "aqua-dev-session-secret")
	return NewService(NewStaticVerifierFromEnv(), []byte(secret), 12*time.Hour)
}

// SignIn checks credentials and mints a signed session token.
func (s *Service) SignIn(creds Credentials) (string, *Session, error) {
	if err := s.verifier.Verify(creds); err != nil {
		return "", nil, err
	}

	session := &Session{
		TokenID:   uuid.New(),
		Subject:   creds.Username,
		Admin:     true,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	claims := sessionClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID.String(),
			Subject:   session.Subject,
			Issuer:    config.AppName,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperror.Auth("failed to mint session: %v", err)
	}

	s.broadcast(Event{Subject: session.Subject, SignedIn: true})
	return token, session, nil
}

// VerifyToken parses a session token and returns the session it
// carries, rejecting expired and revoked tokens.
func (s *Service) VerifyToken(token string) (*Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperror.Auth("invalid session token")
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, apperror.Auth("invalid session token")
	}

	s.mu.RLock()
	_, isRevoked := s.revoked[tokenID]
	s.mu.RUnlock()
	if isRevoked {
		return nil, apperror.Auth("session has been signed out")
	}

	return &Session{
		TokenID:   tokenID,
		Subject:   claims.Subject,
		Admin:     claims.Admin,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the given token. The caller drops its local session
// before calling this; a failure here is reported but never restores
// the signed-in state.
func (s *Service) SignOut(token string) error {
	session, err := s.VerifyToken(token)
	if err != nil {
		// Already invalid upstream; the local sign-out stands.
		return err
	}

	s.mu.Lock()
	s.revoked[session.TokenID] = session.ExpiresAt
	s.pruneRevokedLocked()
	s.mu.Unlock()

	s.broadcast(Event{Subject: session.Subject, SignedIn: false})
	return nil
}

// Subscribe registers a session-change listener.
func (s *Service) Subscribe() (uuid.UUID, <-chan Event) {
	id := uuid.New()
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[id] = ch
	s.mu.Unlock()

	return id, ch
}

// DeSubscribe removes a listener by its ID.
func (s *Service) DeSubscribe(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.subscribers[id]
	if !ok {
		return fmt.Errorf("subscriber with ID %s not found", id)
	}
	delete(s.subscribers, id)
	close(ch)
	return nil
}

func (s *Service) broadcast(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscribers miss events rather than block sign-in.
		}
	}
}

// pruneRevokedLocked drops revocation entries whose tokens have
// expired anyway. Callers hold s.mu.
func (s *Service) pruneRevokedLocked() {
	now := time.Now()
	for id, expiry := range s.revoked {
		if expiry.Before(now) {
			delete(s.revoked, id)
		}
	}
}
