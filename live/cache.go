package live

import (
	"sync"
	"time"
)

// ScoreSnapshot is the last score seen for one match.
type ScoreSnapshot struct {
	MatchID   string    `json:"match_id"`
	Score1    int       `json:"score1"`
	Score2    int       `json:"score2"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreCache is a per-process cache of live scores keyed by tournament id.
// It replaces ambient global registries with an owned value that carries an
// explicit expiry policy: entries untouched for the configured TTL are
// evicted by a background sweep.
type ScoreCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[int]*tournamentScores
	done    chan struct{}
	once    sync.Once
}

type tournamentScores struct {
	scores  map[string]ScoreSnapshot
	touched time.Time
}

func NewScoreCache(ttl time.Duration, sweepInterval time.Duration) *ScoreCache {
	c := &ScoreCache{
		ttl:     ttl,
		entries: make(map[int]*tournamentScores),
		done:    make(chan struct{}),
	}
	go c.sweep(sweepInterval)
	return c
}

func (c *ScoreCache) Put(tournamentID int, snapshot ScoreSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[tournamentID]
	if !ok {
		entry = &tournamentScores{scores: make(map[string]ScoreSnapshot)}
		c.entries[tournamentID] = entry
	}
	entry.scores[snapshot.MatchID] = snapshot
	entry.touched = time.Now()
}

// Scores returns a copy of the cached scores for a tournament.
func (c *ScoreCache) Scores(tournamentID int) map[string]ScoreSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[tournamentID]
	if !ok {
		return nil
	}
	out := make(map[string]ScoreSnapshot, len(entry.scores))
	for k, v := range entry.scores {
		out[k] = v
	}
	return out
}

// Evict drops a tournament's entry, typically on completion.
func (c *ScoreCache) Evict(tournamentID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tournamentID)
}

func (c *ScoreCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *ScoreCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-c.ttl)
			c.mu.Lock()
			for id, entry := range c.entries {
				if entry.touched.Before(cutoff) {
					delete(c.entries, id)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
