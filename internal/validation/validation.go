// Package validation checks request-boundary values before they reach the
// service layer.
package validation

import (
	"fmt"
	"regexp"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
)

var (
	// Ticker symbols: 1-10 uppercase letters, digits, dots or dashes.
	symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)
	// Container names: printable, no leading/trailing whitespace handled by trim upstream.
	namePattern = regexp.MustCompile(`^[\w .\-]{1,100}$`)
)

// ValidateSymbol checks a ticker symbol.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol %q", symbol)
	}
	return nil
}

// ValidateName checks a portfolio or list name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

// ValidateQuantity checks a share quantity.
func ValidateQuantity(quantity int64) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	return nil
}
