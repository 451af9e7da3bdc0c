package connectivity

import "sync"

// ManualProvider is a Provider whose state is set explicitly.
//
// It exists for deterministic testing: tests flip SetOnline to simulate
// connectivity loss and restoration without any probing or timing.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualProvider struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

// NewManualProvider creates a provider in the given initial state.
// No notification is emitted for the initial state.
func NewManualProvider(online bool) *ManualProvider {
	return &ManualProvider{
		online: online,
		subs:   make(map[int]func(online bool)),
	}
}

// Online implements Provider.
func (p *ManualProvider) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Subscribe implements Provider.
func (p *ManualProvider) Subscribe(fn func(online bool)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// SetOnline updates the state. Subscribers are notified synchronously,
// and only on an actual transition.
func (p *ManualProvider) SetOnline(online bool) {
	p.mu.Lock()
	if p.online == online {
		p.mu.Unlock()
		return
	}
	p.online = online
	fns := make([]func(bool), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}
