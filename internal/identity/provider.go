package identity

import (
	"context"
	"sync"

	"storyhive/internal/cache"
	"storyhive/internal/models"
)

// Provider implements Service for one logical client: it pairs the shared
// Authenticator with a persisted session slot and a subscriber list,
// mirroring how a browser client holds a single session in local storage.
type Provider struct {
	auth     *Authenticator
	store    TokenStore
	clientID string

	mu   sync.Mutex
	seq  uint64
	subs map[int]func(Event)
	next int
}

// NewProvider creates a session provider for the given client identifier.
func NewProvider(auth *Authenticator, store TokenStore, clientID string) *Provider {
	return &Provider{
		auth:     auth,
		store:    store,
		clientID: clientID,
		subs:     make(map[int]func(Event)),
	}
}

func (p *Provider) Subscribe(fn func(Event)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// emit delivers an event to all subscribers. The sequence number is
// assigned under the lock so subscribers observe a total order.
func (p *Provider) emit(eventType EventType, session *Session) {
	p.mu.Lock()
	p.seq++
	event := Event{Seq: p.seq, Type: eventType, Session: session}
	fns := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (p *Provider) GetSession(ctx context.Context) (*Session, error) {
	token, err := p.store.Load(ctx, p.clientID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if token == "" {
		return nil, nil
	}

	claims, err := p.auth.issuer.Parse(token)
	if err != nil || cache.IsTokenRevoked(ctx, claims.JTI) {
		// Stored token no longer validates; treat as signed out.
		_ = p.store.Clear(ctx, p.clientID)
		return nil, nil
	}

	account, err := p.auth.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			_ = p.store.Clear(ctx, p.clientID)
			return nil, nil
		}
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: claims.ExpiresAt, Identity: identityFor(account)}, nil
}

func (p *Provider) SignUp(ctx context.Context, params SignUpParams) (*Session, error) {
	session, err := p.auth.Register(ctx, params)
	if err != nil {
		return nil, err
	}
	return p.establish(ctx, session)
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	session, err := p.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.establish(ctx, session)
}

func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.store.Clear(ctx, p.clientID); err != nil {
		return models.NewInternalError(err)
	}
	p.emit(EventSignedOut, nil)
	return nil
}

func (p *Provider) GetCurrentUser(ctx context.Context) (*Identity, error) {
	session, err := p.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.NewAuthError("Not signed in")
	}
	return session.Identity, nil
}

// establish persists the new session and notifies subscribers.
func (p *Provider) establish(ctx context.Context, session *Session) (*Session, error) {
	if err := p.store.Save(ctx, p.clientID, session.Token, tokenTTL(session)); err != nil {
		return nil, models.NewInternalError(err)
	}
	p.emit(EventSignedIn, session)
	return session, nil
}
