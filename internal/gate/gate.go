// Package gate tracks whether the current user holds a usable credential for
// the record store.
package gate

import (
	"errors"
	"fmt"
	"sync"
)

// State is the authentication state of a Gate.
type State int

const (
	// Anonymous means no credential is held.
	Anonymous State = iota
	// Authenticated means a credential is held and has not been rejected.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// ErrAnonymous is returned by Credential when no credential is held.
var ErrAnonymous = errors.New("gate: not authenticated")

// Transition describes one state change.
type Transition struct {
	From   State
	To     State
	Reason string
}

// Observer is notified after every state change.
type Observer func(Transition)

// Reasons passed to observers.
const (
	ReasonLogin  = "login"
	ReasonLogout = "logout"
)

// Gate holds the credential of one session. It is safe for concurrent use by
// the parallel reads of a single view.
type Gate struct {
	mu        sync.Mutex
	store     CredentialStore
	state     State
	token     string
	observers []Observer
}

// New restores a Gate from store. A stored credential starts Authenticated.
func New(store CredentialStore) (*Gate, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	token, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("gate: load credential: %w", err)
	}
	g := &Gate{store: store}
	if token != "" {
		g.state = Authenticated
		g.token = token
	}
	return g, nil
}

// Subscribe registers an observer.
func (g *Gate) Subscribe(o Observer) {
	if o == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, o)
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Authenticated reports whether a credential is held.
func (g *Gate) Authenticated() bool {
	return g.State() == Authenticated
}

// Credential returns the bearer token.
func (g *Gate) Credential() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Authenticated {
		return "", ErrAnonymous
	}
	return g.token, nil
}

// Login persists token and moves to Authenticated. Logging in again replaces
// the credential.
func (g *Gate) Login(token string) error {
	if token == "" {
		return errors.New("gate: empty credential")
	}
	g.mu.Lock()
	if err := g.store.Set(token); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("gate: store credential: %w", err)
	}
	from := g.state
	g.state = Authenticated
	g.token = token
	observers := g.snapshotObservers()
	g.mu.Unlock()

	notify(observers, Transition{From: from, To: Authenticated, Reason: ReasonLogin})
	return nil
}

// Logout discards the credential.
func (g *Gate) Logout() error {
	return g.clear(ReasonLogout)
}

// Revoke discards a credential the store rejected. Revoking an anonymous gate
// is a no-op.
func (g *Gate) Revoke(reason string) {
	if g.State() == Anonymous {
		return
	}
	_ = g.clear(reason)
}

func (g *Gate) clear(reason string) error {
	g.mu.Lock()
	from := g.state
	g.state = Anonymous
	g.token = ""
	err := g.store.Clear()
	observers := g.snapshotObservers()
	g.mu.Unlock()

	if from != Anonymous {
		notify(observers, Transition{From: from, To: Anonymous, Reason: reason})
	}
	if err != nil {
		return fmt.Errorf("gate: clear credential: %w", err)
	}
	return nil
}

func (g *Gate) snapshotObservers() []Observer {
	return append([]Observer(nil), g.observers...)
}

func notify(observers []Observer, t Transition) {
	for _, o := range observers {
		o(t)
	}
}
