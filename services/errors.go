package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	// Generic not-found, used when no entity-specific error fits.
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed    = errors.New("validation failed")
	ErrTournamentNameEmpty = errors.New("tournament name is required")
	ErrGroupNameEmpty      = errors.New("group name is required")
	ErrTeamNameEmpty       = errors.New("team name is required")
	ErrGroupFull           = errors.New("group roster is already full")
	ErrTournamentNotOpen   = errors.New("tournament is not open for roster changes")
	ErrInvalidStatus       = errors.New("invalid tournament status provided")

	// Conflicts.
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrGroupNameConflict      = errors.New("group name already exists in this tournament")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTeamAlreadyInGroup     = errors.New("team is already in this group")

	// Entity-specific not-found variants, mapped from the repositories.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Bracket pipeline defects. Both abort loudly and never leave a
	// partially persisted bracket behind.
	ErrBracketInvariant   = errors.New("generated bracket violates the expected match count")
	ErrBracketPersistence = errors.New("persisted bracket reports an unexpected created count")
)
