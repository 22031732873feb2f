// Package notifier broadcasts "the name store changed" pings.
//
// A ping carries no payload. Listeners react by re-querying the store,
// so they only ever see committed state no older than the last ping.
package notifier

import "sync"

// Notifier fans change pings out to subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[<-chan struct{}]chan struct{}
	closed    bool
}

// New creates a Notifier with no listeners.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[<-chan struct{}]chan struct{}),
	}
}

// Subscribe returns a channel that receives a ping after each change.
// Pings coalesce: a slow listener sees at most one pending ping.
// Callers must Unsubscribe when done.
func (n *Notifier) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(ch)
		return ch
	}
	n.listeners[ch] = ch
	return ch
}

// Unsubscribe removes a listener and closes its channel.
// Unknown or already removed channels are ignored.
func (n *Notifier) Unsubscribe(ch <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if send, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(send)
	}
}

// Broadcast pings every listener without blocking.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
			// already has a pending ping
		}
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Close unsubscribes all listeners. Later subscriptions receive a closed channel.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for key, ch := range n.listeners {
		delete(n.listeners, key)
		close(ch)
	}
	n.closed = true
}
