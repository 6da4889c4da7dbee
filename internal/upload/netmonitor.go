package upload

import (
	"sync"
)

// NetworkMonitor is an injected online/offline signal. The queue
// subscribes to it at construction; the host environment (or a test)
// feeds state changes in through SetOnline.
//
// Subscribers are notified synchronously, only on actual transitions.
type NetworkMonitor struct {
	mu          sync.Mutex
	online      bool
	nextID      int
	subscribers map[int]func(online bool)
}

// NewNetworkMonitor creates a monitor with the given initial state.
func NewNetworkMonitor(online bool) *NetworkMonitor {
	return &NetworkMonitor{
		online:      online,
		subscribers: make(map[int]func(bool)),
	}
}

// IsOnline returns the current connectivity state.
func (m *NetworkMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline updates the connectivity state. Subscribers are invoked
// once per transition, after the state is updated.
func (m *NetworkMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	notify := make([]func(bool), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		notify = append(notify, fn)
	}
	m.mu.Unlock()

	for _, fn := range notify {
		fn(online)
	}
}

// Subscribe registers a transition callback and returns an unsubscribe
// function.
func (m *NetworkMonitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}
