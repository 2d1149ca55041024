package services

import (
	"context"
	"sync"
	"time"

	"storefront/models"
)

// SessionProvider answers who is logged in and pushes login/logout changes
// to subscribers. A nil session means nobody is logged in.
type SessionProvider interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
	Subscribe(fn func(*models.Session)) (unsubscribe func())
}

type sessionContextKey struct{}

// WithSession attaches an authenticated session to ctx.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*models.Session)
	return session, ok && session != nil
}

// TokenSessions reads the session that the auth middleware attached to the
// request context and fans out session changes published by AuthService.
type TokenSessions struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(*models.Session)
	now         func() time.Time
}

func NewTokenSessions() *TokenSessions {
	return &TokenSessions{
		subscribers: make(map[int]func(*models.Session)),
		now:         time.Now,
	}
}

func (p *TokenSessions) CurrentSession(ctx context.Context) (*models.Session, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil, nil
	}
	if !session.ExpiresAt.IsZero() && p.now().After(session.ExpiresAt) {
		return nil, nil
	}
	return session, nil
}

func (p *TokenSessions) Subscribe(fn func(*models.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Publish notifies every subscriber. Pass nil on logout.
func (p *TokenSessions) Publish(session *models.Session) {
	p.mu.RLock()
	fns := make([]func(*models.Session), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn(session)
	}
}
