// Package session tracks which users are currently indexing sticker sets and
// which set names they have sent so far.
package session

import "sync"

// State is the indexing state of a single user.
type State int

const (
	// Inactive is the default state: the user has no session.
	Inactive State = iota
	// Indexing means stickers sent by the user are being collected.
	Indexing
	// Finalizing means the user stopped indexing and the download pass is running.
	Finalizing
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Indexing:
		return "indexing"
	case Finalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// RecordResult tells the caller how a submitted sticker was treated.
type RecordResult int

const (
	// Ignored means the user is not indexing; the sticker is not session input.
	Ignored RecordResult = iota
	// Rejected means the sticker belongs to no set and should be resent.
	Rejected
	// Recorded means the set name was appended to the session.
	Recorded
)

type entry struct {
	state     State
	collected []string
}

// Manager holds the per-user indexing sessions. The lock is held only while a
// single entry is read or replaced, never across I/O.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*entry
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*entry),
	}
}

// Start puts the user into indexing mode with an empty accumulator, discarding
// anything collected by a previous Start.
func (m *Manager) Start(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = &entry{state: Indexing}
}

// Record appends setName to the user's session.
func (m *Manager) Record(userID int64, setName string) RecordResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok || e.state != Indexing {
		return Ignored
	}
	if setName == "" {
		return Rejected
	}
	e.collected = append(e.collected, setName)
	return Recorded
}

// Stop ends collection for the user and returns the distinct set names in the
// order they were first seen. active is false when the user was not indexing,
// in which case nothing changes. On success the user is left in Finalizing
// until Finish is called.
func (m *Manager) Stop(userID int64) (names []string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok || e.state != Indexing {
		return nil, false
	}

	names = Dedupe(e.collected)
	m.sessions[userID] = &entry{state: Finalizing}
	return names, true
}

// Finish drops a finalizing session. A session restarted with Start in the
// meantime is left alone.
func (m *Manager) Finish(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[userID]; ok && e.state == Finalizing {
		delete(m.sessions, userID)
	}
}

// State returns the user's current state.
func (m *Manager) State(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[userID]; ok {
		return e.state
	}
	return Inactive
}

// Dedupe returns names without duplicates, keeping first-seen order.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
