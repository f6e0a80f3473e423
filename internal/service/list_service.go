package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
)

// AccessChecker decides whether an identity may view another owner's list.
// The real access-control service lives outside this system; the default
// implementation below covers the owner-or-public rule the ledger needs.
type AccessChecker interface {
	CheckAccess(ctx context.Context, identity model.Identity, listOwner, listName string) (bool, error)
}

// ListService mutates stock lists and their holdings. Holding mutations
// follow the same state machine as portfolio trades but carry no cash leg:
// quantities are declarative counts, not priced trades.
type ListService struct {
	db       *sql.DB
	lists    *repository.StockListRepository
	holdings *repository.HoldingRepository
	access   AccessChecker
	now      func() time.Time
}

// NewListService creates a ListService with the provided dependencies.
func NewListService(
	db *sql.DB,
	lists *repository.StockListRepository,
	holdings *repository.HoldingRepository,
	access AccessChecker,
) *ListService {
	return &ListService{
		db:       db,
		lists:    lists,
		holdings: holdings,
		access:   access,
		now:      time.Now,
	}
}

// CreateList creates a stock list. Returns apperrors.ErrDuplicateName when
// the owner already has a list with that name.
func (s *ListService) CreateList(ctx context.Context, owner, name string, private bool) (model.StockList, error) {
	l := model.StockList{
		ID:        repository.NewID(),
		Owner:     owner,
		Name:      name,
		Private:   private,
		CreatedAt: s.now().UTC(),
	}

	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.lists.Insert(ctx, tx, l)
	})
	if err != nil {
		return model.StockList{}, err
	}
	return l, nil
}

// DeleteList removes a list and its holdings. Idempotent.
func (s *ListService) DeleteList(ctx context.Context, owner, name string) error {
	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.lists.Delete(ctx, tx, owner, name)
	})
}

// SetVisibility flips a list between private and public.
func (s *ListService) SetVisibility(ctx context.Context, owner, name string, private bool) error {
	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.lists.SetVisibility(ctx, tx, owner, name, private)
	})
}

// AddToList credits quantity shares of symbol to the list, inserting the
// holding row on first add. Fails with ErrInvalidQuantity or
// ErrListNotFound.
func (s *ListService) AddToList(ctx context.Context, owner, listName, symbol string, quantity int64) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lists.Get(ctx, tx, owner, listName); err != nil {
			return err
		}
		return s.holdings.AddShares(ctx, tx, owner, listName, symbol, quantity)
	})
}

// RemoveSharesFromList debits quantity shares of symbol from the list,
// deleting the holding row when the count reaches exactly zero. Fails with
// ErrInvalidQuantity, ErrListNotFound or ErrInsufficientShares.
func (s *ListService) RemoveSharesFromList(ctx context.Context, owner, listName, symbol string, quantity int64) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lists.Get(ctx, tx, owner, listName); err != nil {
			return err
		}

		held, exists, err := s.holdings.GetShares(ctx, tx, owner, listName, symbol)
		if err != nil {
			return err
		}
		if !exists || held < quantity {
			return apperrors.ErrInsufficientShares
		}

		remaining := held - quantity
		if remaining == 0 {
			return s.holdings.Delete(ctx, tx, owner, listName, symbol)
		}
		return s.holdings.SetShares(ctx, tx, owner, listName, symbol, remaining)
	})
}

// DeleteFromList removes the symbol's holding row from the list entirely,
// whatever its count. Fails with ErrListNotFound when the list is missing
// and ErrHoldingNotFound when the symbol is not in the list.
func (s *ListService) DeleteFromList(ctx context.Context, owner, listName, symbol string) error {
	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lists.Get(ctx, tx, owner, listName); err != nil {
			return err
		}

		_, exists, err := s.holdings.GetShares(ctx, tx, owner, listName, symbol)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrHoldingNotFound
		}
		return s.holdings.Delete(ctx, tx, owner, listName, symbol)
	})
}

// GetList returns a list with its holdings, enforcing the access decision
// for the acting identity. A denied viewer gets ErrAccessDenied; whether the
// list exists is only revealed to viewers who pass the check.
func (s *ListService) GetList(ctx context.Context, viewer model.Identity, owner, name string) (model.StockListDetail, error) {
	allowed, err := s.access.CheckAccess(ctx, viewer, owner, name)
	if err != nil {
		return model.StockListDetail{}, err
	}
	if !allowed {
		return model.StockListDetail{}, apperrors.ErrAccessDenied
	}

	l, err := s.lists.Get(ctx, s.db, owner, name)
	if err != nil {
		return model.StockListDetail{}, err
	}

	holdings, err := s.holdings.List(ctx, s.db, owner, name)
	if err != nil {
		return model.StockListDetail{}, err
	}

	return model.StockListDetail{List: l, Holdings: holdings}, nil
}

// ListsOf returns every list belonging to an owner. Used by the owner's own
// overview; no access check applies to one's own lists.
func (s *ListService) ListsOf(ctx context.Context, owner string) ([]model.StockList, error) {
	return s.lists.ListByOwner(ctx, s.db, owner)
}

// WithClock overrides the service clock. Test hook.
func (s *ListService) WithClock(now func() time.Time) *ListService {
	s.now = now
	return s
}
