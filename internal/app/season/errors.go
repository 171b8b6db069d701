package season

import (
	"errors"

	domain "pocketpoker/internal/season"
)

var (
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrInvalidDraft    = errors.New("invalid_draft")
	ErrVersionMismatch = errors.New("version_mismatch")
	ErrLocked          = errors.New("locked")
	ErrRateLimited     = errors.New("rate_limited")
	ErrGameNotFound    = errors.New("game_not_found")
	ErrUnbalanced      = domain.ErrUnbalanced
	ErrEmptyGame       = domain.ErrEmptyGame
	ErrDuplicatePlayer = domain.ErrDuplicatePlayer
)

// LockedError carries the lock that blocked a request. It matches ErrLocked.
type LockedError struct {
	Lock domain.Lock
}

func (e *LockedError) Error() string {
	return "locked by " + e.Lock.ByName
}

func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}
