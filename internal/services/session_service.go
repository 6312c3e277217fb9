package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService keeps login sessions in memory: uuid tokens mapped to the
// user they belong to, swept periodically once expired.
type SessionService struct {
	sessions map[string]sessionData
	mu       sync.RWMutex
	ttl      time.Duration
	logger   *zap.Logger
	stop     chan struct{}
}

type sessionData struct {
	UserID    uint
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

func NewSessionService(ttl time.Duration, logger *zap.Logger) *SessionService {
	ss := &SessionService{
		sessions: make(map[string]sessionData),
		ttl:      ttl,
		logger:   logger.With(zap.String("service", "session_service")),
		stop:     make(chan struct{}),
	}
	go ss.sweep()
	return ss
}

func (ss *SessionService) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ss.expireSessions()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SessionService) expireSessions() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	for token, session := range ss.sessions {
		if now.After(session.ExpiresAt) {
			delete(ss.sessions, token)
		}
	}
}

func (ss *SessionService) CreateSession(userID uint, ipAddress, userAgent string) string {
	token := uuid.New().String()

	ss.mu.Lock()
	ss.sessions[token] = sessionData{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ss.ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	ss.mu.Unlock()

	ss.logger.Info("Created new session",
		zap.Uint("user_id", userID),
		zap.String("ip", ipAddress))

	return token
}

func (ss *SessionService) ValidateSession(token string) (uint, bool) {
	ss.mu.RLock()
	session, exists := ss.sessions[token]
	ss.mu.RUnlock()

	if !exists || time.Now().After(session.ExpiresAt) {
		return 0, false
	}
	return session.UserID, true
}

func (ss *SessionService) DestroySession(token string) {
	ss.mu.Lock()
	delete(ss.sessions, token)
	ss.mu.Unlock()
}

func (ss *SessionService) Close() {
	close(ss.stop)
}
