package services

import (
	"sync"
	"time"

	"github.com/champions4change/tournament-engine/models"
)

// Broadcaster is the notification sink the engine pushes events into. The
// live hub implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// NopBroadcaster discards events; useful for batch tooling and tests.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToRoom(string, interface{}) {}

// tournamentLocks serializes all writes within one tournament's match
// graph. The engine itself holds no locks; this is the per-tournament
// mutual exclusion required at the persistence boundary.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[int]*sync.Mutex)}
}

func (l *tournamentLocks) forTournament(id int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

func newEvent(eventType models.EventType, tournamentID int, payload interface{}) models.Event {
	return models.Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
		OccurredAt:   time.Now(),
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(s string) *string {
	return &s
}
