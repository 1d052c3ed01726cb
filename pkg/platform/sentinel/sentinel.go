// Package sentinel defines the errors stores report as bare facts about
// stored state. Services translate them into coded domain errors; handlers
// never see them directly.
//
//   - ErrNotFound: no entity for the given id or key
//   - ErrConflict: a concurrent writer claimed the key first
//   - ErrAlreadyUsed: a one-shot slot (role, ballot, pending request) is taken
//   - ErrInvalidState: the entity exists but the transition is not legal
//   - ErrUnavailable: the backing service cannot be reached
//
// Validation failures never use these; they go straight to pkg/domain-errors.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
