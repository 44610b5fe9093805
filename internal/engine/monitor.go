package engine

import (
	"sync"

	"github.com/roach88/moacafe/internal/remote"
)

// DBStatus classifies remote reachability.
type DBStatus string

const (
	// DBDisconnected is the initial status and is forced whenever the
	// platform reports offline.
	DBDisconnected DBStatus = "disconnected"

	// DBConnected follows any successful remote read.
	DBConnected DBStatus = "connected"

	// DBPermissionDenied follows a failed read while the platform reports
	// online: the network is there but the store refuses us.
	DBPermissionDenied DBStatus = "permission-denied"
)

// Connectivity is the derived, unpersisted connectivity state.
type Connectivity struct {
	Online bool     `json:"online"`
	DB     DBStatus `json:"dbStatus"`
}

// CanSync reports whether remote writes and polling are allowed. It is the
// only gate the write path and poll loop consult.
func (c Connectivity) CanSync() bool {
	return c.Online && c.DB == DBConnected
}

// Monitor tracks the platform online flag and the remote store status.
//
// Each SetOnline transition starts a new epoch. Callers capture the epoch
// before a remote read and report the outcome with it; outcomes from an
// older epoch are ignored so that a late response cannot undo an offline
// transition.
//
// Thread-safety: all methods are safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	online bool
	db     DBStatus
	epoch  uint64
	signal chan struct{} // Signals state changes (buffered, size 1)
}

// NewMonitor creates a monitor with the given platform online flag.
// The remote status starts disconnected.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online: online,
		db:     DBDisconnected,
		epoch:  1,
		signal: make(chan struct{}, 1),
	}
}

// State returns the current connectivity.
func (m *Monitor) State() Connectivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Connectivity{Online: m.online, DB: m.db}
}

// Epoch returns the current epoch.
func (m *Monitor) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// Current returns state and epoch read atomically.
func (m *Monitor) Current() (Connectivity, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Connectivity{Online: m.online, DB: m.db}, m.epoch
}

// SetOnline records a platform online/offline transition. Going offline
// forces disconnected. Returns false when the flag did not change.
func (m *Monitor) SetOnline(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return false
	}
	m.online = online
	m.epoch++
	if !online {
		m.db = DBDisconnected
	}
	m.notify()
	return true
}

// Observe classifies the outcome of a remote read started in epoch.
//
// accepted is false when the epoch is stale or the platform is offline; the
// caller must then discard the data it read. changed reports whether the
// status moved.
func (m *Monitor) Observe(epoch uint64, outcome remote.Outcome) (accepted, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch || !m.online {
		return false, false
	}

	next := DBConnected
	if !outcome.Reachable() {
		next = DBPermissionDenied
	}
	if next == m.db {
		return true, false
	}
	m.db = next
	m.notify()
	return true, true
}

// Valid reports whether epoch is still current and the platform online.
func (m *Monitor) Valid(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return epoch == m.epoch && m.online
}

// Wait returns a channel that signals when the state may have changed.
func (m *Monitor) Wait() <-chan struct{} {
	return m.signal
}

// notify must be called with mu held. The buffer of 1 coalesces signals.
func (m *Monitor) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
