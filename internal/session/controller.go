package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storyhive/internal/identity"
	"storyhive/internal/middleware"
	"storyhive/internal/models"
	"storyhive/internal/observability"
)

// State is the bootstrap lifecycle state of a session controller.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the controller at a point in time.
type Snapshot struct {
	State State
	User  *models.User
	Err   error
}

// event is one item on the controller's merged event stream. All state
// transitions flow through this stream and are applied in arrival order by
// a single goroutine, so the initial-session lookup and live session
// change notifications cannot race each other.
type event struct {
	kind    eventKind
	session *identity.Session
	err     error
}

type eventKind int

const (
	eventInitialSession eventKind = iota
	eventInitTimeout
	eventAuthChange
)

// Controller bootstraps the session for one client and tracks it across
// sign-in and sign-out. Initialize is bounded by a timeout and always
// settles in a terminal state; a timeout settles anonymous and surfaces a
// timeout error without blocking the caller forever.
type Controller struct {
	svc         identity.Service
	mapper      *Mapper
	initTimeout time.Duration

	mu        sync.RWMutex
	state     State
	user      *models.User
	lastErr   error
	listeners map[int]func(Snapshot)
	nextID    int

	events      chan event
	done        chan struct{}
	settled     chan struct{}
	settleOnce  sync.Once
	closeOnce   sync.Once
	unsubscribe func()
}

// NewController creates a session controller. Initialize must be called
// before snapshots are meaningful.
func NewController(svc identity.Service, mapper *Mapper, initTimeout time.Duration) *Controller {
	return &Controller{
		svc:         svc,
		mapper:      mapper,
		initTimeout: initTimeout,
		state:       StateUninitialized,
		listeners:   make(map[int]func(Snapshot)),
		events:      make(chan event, 16),
		done:        make(chan struct{}),
		settled:     make(chan struct{}),
	}
}

// Initialize subscribes to session changes, kicks off the persisted-session
// lookup and blocks until the controller settles. It returns the settle
// error: nil, or a timeout error when the lookup did not finish in time
// (the controller is anonymous in that case, not stuck).
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return models.NewConflictError("Session controller already initialized")
	}
	c.state = StateInitializing
	c.mu.Unlock()

	c.unsubscribe = c.svc.Subscribe(func(e identity.Event) {
		c.push(event{kind: eventAuthChange, session: e.Session})
	})

	go c.run()

	// The lookup result and the timeout are both delivered onto the merged
	// stream; whichever arrives first while still initializing wins.
	go func() {
		lookupCtx, cancel := context.WithTimeout(ctx, c.initTimeout)
		defer cancel()

		session, err := c.svc.GetSession(lookupCtx)
		if lookupCtx.Err() != nil {
			return
		}
		c.push(event{kind: eventInitialSession, session: session, err: err})
	}()

	timer := time.AfterFunc(c.initTimeout, func() {
		c.push(event{kind: eventInitTimeout})
	})

	select {
	case <-c.settled:
	case <-c.done:
	}
	timer.Stop()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// run is the single writer of controller state.
func (c *Controller) run() {
	for {
		select {
		case <-c.done:
			return
		case e := <-c.events:
			c.apply(e)
		}
	}
}

func (c *Controller) apply(e event) {
	// Mapping may hit the database, so it happens before the lock. The run
	// loop is the only writer, so reading state here is safe.
	var mapped *models.User
	if e.session != nil && e.session.Identity != nil {
		mapped = c.mapper.Map(context.Background(), e.session.Identity)
	}

	c.mu.Lock()

	switch e.kind {
	case eventInitialSession:
		// Only meaningful while still initializing. A sign-in that raced
		// ahead of the lookup already settled the controller and must not
		// be clobbered by a stale result.
		if c.state != StateInitializing {
			c.mu.Unlock()
			return
		}
		if e.err != nil {
			c.state = StateAnonymous
			c.user = nil
			c.lastErr = e.err
		} else {
			c.setUserLocked(mapped)
		}

	case eventInitTimeout:
		if c.state != StateInitializing {
			c.mu.Unlock()
			return
		}
		observability.SessionInitTimeouts.Inc()
		middleware.Logger.Warn("session bootstrap timed out, settling anonymous",
			slog.Duration("timeout", c.initTimeout))
		c.state = StateAnonymous
		c.user = nil
		c.lastErr = models.NewTimeoutError("Session initialization timed out")

	case eventAuthChange:
		c.setUserLocked(mapped)
		c.lastErr = nil
	}

	snapshot := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.settleOnce.Do(func() { close(c.settled) })
	for _, fn := range fns {
		fn(snapshot)
	}
}

// setUserLocked sets the terminal state for a mapped user. Caller holds c.mu.
func (c *Controller) setUserLocked(user *models.User) {
	if user == nil {
		c.state = StateAnonymous
		c.user = nil
		return
	}
	c.state = StateAuthenticated
	c.user = user
}

func (c *Controller) push(e event) {
	select {
	case c.events <- e:
	case <-c.done:
	}
}

// Snapshot returns the current state, user and last settle error.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, User: c.user, Err: c.lastErr}
}

// OnChange registers a listener invoked after every state transition. The
// returned function removes the listener.
func (c *Controller) OnChange(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SignIn authenticates with a password. The resulting state change arrives
// through the merged event stream; the error is for the caller alone.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	_, err := c.svc.SignInWithPassword(ctx, email, password)
	return err
}

// SignUp registers a new account and signs it in.
func (c *Controller) SignUp(ctx context.Context, params identity.SignUpParams) error {
	_, err := c.svc.SignUp(ctx, params)
	return err
}

// SignOut clears the active session.
func (c *Controller) SignOut(ctx context.Context) error {
	return c.svc.SignOut(ctx)
}

// Close stops the controller and detaches it from the identity service.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		close(c.done)
	})
}
