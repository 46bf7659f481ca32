package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared across services and the HTTP error mapper.
var (
	// Not-found errors: surfaced immediately, no retry.
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrSwissRoundNotFound = errors.New("swiss round not found")

	// Validation and business-rule errors.
	ErrValidationFailed      = errors.New("validation failed")
	ErrNotEnoughParticipants = errors.New("not enough participants")
	ErrStageNotComplete      = errors.New("stage still has unfinished matches")
	ErrNoNextStage           = errors.New("tournament has no further stage configured")
	ErrNotSwissStage         = errors.New("current stage is not a swiss stage")
	ErrSwissRoundIncomplete  = errors.New("current swiss round is not complete")

	// State-transition violations: the match stays unchanged.
	ErrMatchAlreadyFinal       = errors.New("match is already in a terminal state")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
	ErrTournamentNotActive     = errors.New("tournament is not active")

	// Conflicts.
	ErrSlotOccupied = errors.New("bracket slot already occupied by a different team")
)

// ValidationError carries every violation found in one pass, keyed by
// field, so the caller can act on all of them at once.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Violations[f]))
	}
	return fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func newValidationError(violations map[string]string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
