package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned by every transition that needs an operator.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSaveInProgress rejects a save while the same pallet is being inserted.
	ErrSaveInProgress = errors.New("pallet save already in progress")
	// ErrExportInProgress rejects an export or delete while an export is running.
	ErrExportInProgress = errors.New("export already in progress")
	// ErrNothingToExport is returned for a trailer without pallet records.
	ErrNothingToExport = errors.New("trailer has no pallet records to export")
)

// ValidationError is a field that failed its input rule. Nothing was changed.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StoreError wraps a failed record store call. The operation can be retried;
// no state was advanced.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DuplicateProError means the PRO already has saved pallets on this trailer
// and the operator must choose to continue or restart it.
type DuplicateProError struct {
	Trailer  string `json:"trailer"`
	Pro      string `json:"pro"`
	Existing int    `json:"existing"`
	// CanContinue is false when the entered expected count is below Existing.
	CanContinue bool `json:"can_continue"`
}

func (e *DuplicateProError) Error() string {
	return fmt.Sprintf("PRO %s already has %d pallets on trailer %s", e.Pro, e.Existing, e.Trailer)
}

// ExpectedPalletsError rejects a continue whose expected count is lower than
// the pallets already saved.
type ExpectedPalletsError struct {
	Pro      string `json:"pro"`
	Existing int    `json:"existing"`
	Entered  int    `json:"entered"`
}

func (e *ExpectedPalletsError) Error() string {
	return fmt.Sprintf("PRO %s already has %d pallets saved; expected pallets must be at least %d (entered %d)",
		e.Pro, e.Existing, e.Existing, e.Entered)
}

// ConfirmationRequiredError is returned by destructive actions invoked without
// confirmation. Affected is the number of records the action would delete.
type ConfirmationRequiredError struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s deletes %d records and must be confirmed", e.Action, e.Affected)
}

// MissingContextError means the screen cannot be built from what is known;
// the UI should go to Recovery.
type MissingContextError struct {
	What     string `json:"what"`
	Recovery Screen `json:"recovery"`
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("no %s available, returning to %s", e.What, e.Recovery)
}

// StaleSequenceError rejects a save submitted for a pallet number that is no
// longer current, e.g. a repeated confirmation arriving after the first
// one completed.
type StaleSequenceError struct {
	Submitted int `json:"submitted"`
	Current   int `json:"current"`
}

func (e *StaleSequenceError) Error() string {
	return fmt.Sprintf("pallet %d was already saved; current pallet is %d", e.Submitted, e.Current)
}

// InvalidTransitionError rejects an action that is not available from the
// screen the operator is on. Nothing was changed.
type InvalidTransitionError struct {
	Op   string `json:"op"`
	From Screen `json:"from"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s is not allowed from the %s screen", e.Op, e.From)
}
