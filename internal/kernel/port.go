package kernel

import (
	"errors"
	"sync"
)

// ErrMaxConnectionsReached is returned by Connect when every session slot
// of the port is taken. The caller may retry after a session is closed.
var ErrMaxConnectionsReached = errors.New("kernel: max connections reached on port")

// portState is the capacity bookkeeping shared by both sides of a port
// pair and by every session minted through it.
type portState struct {
	mu          sync.Mutex
	maxSessions uint32
	active      uint32
}

func (s *portState) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active >= s.maxSessions {
		return false
	}
	s.active++
	return true
}

func (s *portState) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active > 0 {
		s.active--
	}
}

func (s *portState) activeCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ServerPort is the acceptor side of a port pair. It belongs to whoever
// registered the service; the broker never sees it again after handing
// it out.
type ServerPort struct {
	Object
	state *portState
}

// ClientPort is the connector side of a port pair. The broker retains it
// in the service table and shares it with resolving clients.
type ClientPort struct {
	Object
	state *portState
}

// Session is an established channel minted through a ClientPort. It
// counts against the port's capacity until the holder closes it.
type Session struct {
	Object
	state     *portState
	closeOnce sync.Once
}

// CreatePortPair atomically creates both sides of a rendezvous port.
// The two returned objects share capacity state but have independent
// ownership from here on; there is no partial-failure state.
func CreatePortPair(maxSessions uint32, name string) (*ServerPort, *ClientPort) {
	state := &portState{maxSessions: maxSessions}
	server := &ServerPort{Object: newObject(name), state: state}
	client := &ClientPort{Object: newObject(name), state: state}
	return server, client
}

// Connect establishes a new session through the port. It never blocks:
// either a slot is free and a session is returned immediately, or
// ErrMaxConnectionsReached is returned immediately.
func (p *ClientPort) Connect() (*Session, error) {
	if !p.state.acquire() {
		return nil, ErrMaxConnectionsReached
	}
	return &Session{Object: newObject(p.Name()), state: p.state}, nil
}

// MaxSessions returns the capacity fixed at pair creation.
func (p *ClientPort) MaxSessions() uint32 { return p.state.maxSessions }

// ActiveSessions returns the number of currently open sessions.
func (p *ClientPort) ActiveSessions() uint32 { return p.state.activeCount() }

// Close releases the session's capacity slot. Closing twice is a no-op;
// the slot is returned exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(s.state.release)
}
