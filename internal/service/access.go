package service

import (
	"context"
	"errors"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
)

// OwnerOrPublicAccess is the default AccessChecker: the owner always sees
// their own lists, everyone sees public lists. Friend-graph sharing lives in
// the external access-control service and can replace this implementation
// behind the same interface.
type OwnerOrPublicAccess struct {
	lists *repository.StockListRepository
}

// NewOwnerOrPublicAccess creates the default access checker.
func NewOwnerOrPublicAccess(lists *repository.StockListRepository) *OwnerOrPublicAccess {
	return &OwnerOrPublicAccess{lists: lists}
}

// CheckAccess reports whether identity may view the list. A missing list is
// reported as not accessible rather than an error, so callers do not leak
// existence to denied viewers.
func (a *OwnerOrPublicAccess) CheckAccess(ctx context.Context, identity model.Identity, listOwner, listName string) (bool, error) {
	if identity.UserID == listOwner {
		return true, nil
	}

	l, err := a.lists.Get(ctx, a.lists.DB(), listOwner, listName)
	if errors.Is(err, apperrors.ErrListNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !l.Private, nil
}
