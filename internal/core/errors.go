package core

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP statuses; everything else in
// the module wraps one of them so callers can errors.Is against a kind
// without knowing the call site.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNothingToReplenish = errors.New("nothing to replenish")
	ErrConflict           = errors.New("conflict")
)

// Validation sentinels. Each wraps ErrValidation so a single errors.Is
// check covers them all.
var (
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrEmptyName         = fmt.Errorf("%w: name must be 1-120 characters", ErrValidation)
	ErrEmptyDescription  = fmt.Errorf("%w: description must be 1-200 characters", ErrValidation)
	ErrEmptyCustodian    = fmt.Errorf("%w: custodian name must be 1-120 characters", ErrValidation)
	ErrEmptyTenant       = fmt.Errorf("%w: tenant id is required", ErrValidation)
	ErrInvalidLedgerType = fmt.Errorf("%w: ledger type must be income, expense or bank", ErrValidation)
	ErrInvalidDirection  = fmt.Errorf("%w: direction must be debit or credit", ErrValidation)
	ErrInvalidSource     = fmt.Errorf("%w: unknown entry source", ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: date is required", ErrValidation)
	ErrInvalidDateRange  = fmt.Errorf("%w: start date must not be after end date", ErrValidation)
	ErrDuplicateName     = fmt.Errorf("%w: name already in use", ErrValidation)
)
