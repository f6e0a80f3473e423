// Package apperrors defines the sentinel error kinds returned by the ledger
// and analytics layers. Callers match on these with errors.Is; only
// ErrConflict is safe to retry automatically.
package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that no portfolio exists for the given owner and name.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrListNotFound indicates that no stock list exists for the given owner and name.
	ErrListNotFound = errors.New("stock list not found")

	// ErrHoldingNotFound indicates that the container holds no shares of the symbol.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrSymbolNotFound indicates that no price bar exists for the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateName indicates that the owner already has a portfolio or list with that name.
	ErrDuplicateName = errors.New("name already in use")

	// ErrInvalidQuantity indicates a non-positive share quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidAmount indicates a cash amount outside the allowed range.
	ErrInvalidAmount = errors.New("invalid cash amount")

	// ErrInsufficientFunds indicates that the portfolio cash balance cannot cover the operation.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares indicates that a sell or removal cannot be completed
	// because the container does not hold enough shares of the symbol.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrAccessDenied indicates that the acting identity may not view the requested list.
	ErrAccessDenied = errors.New("access denied")
)

// Analytics errors represent input validation failures in the statistics engine.
var (
	// ErrInsufficientData indicates a series too short for the requested computation.
	ErrInsufficientData = errors.New("insufficient data points")

	// ErrLengthMismatch indicates two series of different lengths in a pairwise computation.
	ErrLengthMismatch = errors.New("series length mismatch")

	// ErrZeroVariance indicates a division by zero caused by a constant denominator series.
	ErrZeroVariance = errors.New("series has zero variance")
)

// ErrConflict indicates lock contention on the ledger. It is the only kind a
// caller should retry automatically.
var ErrConflict = errors.New("operation conflicted, retry")
