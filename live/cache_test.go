package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCachePutAndScores(t *testing.T) {
	cache := NewScoreCache(time.Hour, time.Hour)
	defer cache.Close()

	cache.Put(1, ScoreSnapshot{MatchID: "m1", Score1: 3, Score2: 1})
	cache.Put(1, ScoreSnapshot{MatchID: "m2", Score1: 0, Score2: 0})
	cache.Put(2, ScoreSnapshot{MatchID: "m3", Score1: 7, Score2: 7})

	scores := cache.Scores(1)
	require.Len(t, scores, 2)
	assert.Equal(t, 3, scores["m1"].Score1)

	assert.Nil(t, cache.Scores(99))
}

func TestScoreCacheLatestTickWins(t *testing.T) {
	cache := NewScoreCache(time.Hour, time.Hour)
	defer cache.Close()

	cache.Put(1, ScoreSnapshot{MatchID: "m1", Score1: 1, Score2: 0})
	cache.Put(1, ScoreSnapshot{MatchID: "m1", Score1: 2, Score2: 0})

	scores := cache.Scores(1)
	assert.Equal(t, 2, scores["m1"].Score1)
}

func TestScoreCacheScoresReturnsACopy(t *testing.T) {
	cache := NewScoreCache(time.Hour, time.Hour)
	defer cache.Close()

	cache.Put(1, ScoreSnapshot{MatchID: "m1", Score1: 1})
	scores := cache.Scores(1)
	scores["m1"] = ScoreSnapshot{MatchID: "m1", Score1: 99}

	assert.Equal(t, 1, cache.Scores(1)["m1"].Score1)
}

func TestScoreCacheEvict(t *testing.T) {
	cache := NewScoreCache(time.Hour, time.Hour)
	defer cache.Close()

	cache.Put(1, ScoreSnapshot{MatchID: "m1"})
	cache.Evict(1)
	assert.Nil(t, cache.Scores(1))
}

func TestScoreCacheSweepExpiresIdleTournaments(t *testing.T) {
	cache := NewScoreCache(10*time.Millisecond, 5*time.Millisecond)
	defer cache.Close()

	cache.Put(1, ScoreSnapshot{MatchID: "m1"})

	assert.Eventually(t, func() bool {
		return cache.Scores(1) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestScoreCacheCloseIsIdempotent(t *testing.T) {
	cache := NewScoreCache(time.Hour, time.Hour)
	cache.Close()
	cache.Close()
}

func TestRoomID(t *testing.T) {
	assert.Equal(t, RoomID(7), RoomID(7))
	assert.NotEqual(t, RoomID(7), RoomID(8))
}
