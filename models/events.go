package models

import "time"

// EventType names the notifications the engine pushes to subscribers of a
// tournament room.
type EventType string

const (
	EventMatchStarted       EventType = "match_started"
	EventScoreUpdate        EventType = "score_update"
	EventMatchCompleted     EventType = "match_completed"
	EventBracketProgression EventType = "bracket_progression"
	EventConflictReported   EventType = "conflict_reported"
)

// Event is the JSON-shaped payload delivered to a tournament's subscribers.
// The engine produces events; subscription management and transport belong
// to the hub.
type Event struct {
	Type         EventType   `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// ProgressionPayload describes a single advancement step.
type ProgressionPayload struct {
	MatchID     string `json:"match_id"`
	Team        string `json:"team"`
	FromRound   int    `json:"from_round"`
	FromBracket string `json:"from_bracket"`
	ToRound     int    `json:"to_round"`
	ToPosition  int    `json:"to_position"`
	ToBracket   string `json:"to_bracket"`
	Slot        int    `json:"slot"`
	AsLoser     bool   `json:"as_loser,omitempty"`
}
