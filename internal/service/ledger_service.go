package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
	"github.com/avandermeer/stock-ledger-backend/internal/repository"
)

// PriceQuoter is the capability the ledger needs from price storage: the
// most recent close at or before a point in time. Trades are always priced
// through this, never from a caller-supplied price, so the ledger cannot be
// fed stale or arbitrary prices and a retried trade reprices
// deterministically.
type PriceQuoter interface {
	LatestClose(ctx context.Context, symbol string, asOf time.Time) (float64, error)
}

// LedgerService is the only writer of portfolio and investment state. Every
// operation runs as one immediate transaction: the read of current
// cash/holding state and the write of the new state cannot interleave with
// another writer, so two concurrent buys can never both observe funds that
// together they exceed.
type LedgerService struct {
	db          *sql.DB
	portfolios  *repository.PortfolioRepository
	investments *repository.HoldingRepository
	prices      PriceQuoter
	now         func() time.Time
}

// NewLedgerService creates a LedgerService with the provided dependencies.
func NewLedgerService(
	db *sql.DB,
	portfolios *repository.PortfolioRepository,
	investments *repository.HoldingRepository,
	prices PriceQuoter,
) *LedgerService {
	return &LedgerService{
		db:          db,
		portfolios:  portfolios,
		investments: investments,
		prices:      prices,
		now:         time.Now,
	}
}

// CreatePortfolio creates a portfolio with cash equal to the initial
// deposit. Returns apperrors.ErrDuplicateName when the owner already has a
// portfolio with that name and apperrors.ErrInvalidAmount for a negative
// deposit.
func (s *LedgerService) CreatePortfolio(ctx context.Context, owner, name string, initialDeposit decimal.Decimal) (model.Portfolio, error) {
	if initialDeposit.IsNegative() {
		return model.Portfolio{}, apperrors.ErrInvalidAmount
	}

	p := model.Portfolio{
		ID:        repository.NewID(),
		Owner:     owner,
		Name:      name,
		Cash:      initialDeposit,
		CreatedAt: s.now().UTC(),
	}

	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.portfolios.Insert(ctx, tx, p)
	})
	if err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// DeletePortfolio removes a portfolio and its holdings. Idempotent: deleting
// a missing portfolio succeeds.
func (s *LedgerService) DeletePortfolio(ctx context.Context, owner, name string) error {
	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.portfolios.Delete(ctx, tx, owner, name)
	})
}

// BuyShares buys quantity shares of symbol at the latest close price,
// debiting the portfolio's cash and crediting its holding in one
// transaction. Fails with ErrInvalidQuantity, ErrSymbolNotFound,
// ErrPortfolioNotFound or ErrInsufficientFunds; on any failure nothing is
// applied.
func (s *LedgerService) BuyShares(ctx context.Context, owner, portfolioName, symbol string, quantity int64) (model.TradeReceipt, error) {
	if quantity <= 0 {
		return model.TradeReceipt{}, apperrors.ErrInvalidQuantity
	}

	executedAt := s.now().UTC()
	price, err := s.prices.LatestClose(ctx, symbol, executedAt)
	if err != nil {
		return model.TradeReceipt{}, err
	}
	pricePerShare := decimal.NewFromFloat(price)
	cost := pricePerShare.Mul(decimal.NewFromInt(quantity))

	intent := model.TradeIntent{
		Owner:     owner,
		Container: portfolioName,
		Symbol:    symbol,
		Delta:     quantity,
	}

	var receipt model.TradeReceipt
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolios.Get(ctx, tx, owner, portfolioName)
		if err != nil {
			return err
		}
		if p.Cash.LessThan(cost) {
			return apperrors.ErrInsufficientFunds
		}

		cashAfter := p.Cash.Sub(cost)
		if err := s.portfolios.UpdateCash(ctx, tx, owner, portfolioName, cashAfter); err != nil {
			return err
		}
		if err := s.applyTrade(ctx, tx, intent); err != nil {
			return err
		}

		receipt = model.TradeReceipt{
			Symbol:        symbol,
			Shares:        quantity,
			PricePerShare: pricePerShare,
			TotalAmount:   cost,
			CashAfter:     cashAfter,
			ExecutedAt:    executedAt,
		}
		return nil
	})
	if err != nil {
		return model.TradeReceipt{}, err
	}
	return receipt, nil
}

// SellShares sells quantity shares of symbol at the latest close price,
// crediting the portfolio's cash and decrementing its holding in one
// transaction. The holding row is deleted when the count reaches exactly
// zero. Fails with ErrInvalidQuantity, ErrSymbolNotFound,
// ErrPortfolioNotFound or ErrInsufficientShares.
func (s *LedgerService) SellShares(ctx context.Context, owner, portfolioName, symbol string, quantity int64) (model.TradeReceipt, error) {
	if quantity <= 0 {
		return model.TradeReceipt{}, apperrors.ErrInvalidQuantity
	}

	executedAt := s.now().UTC()
	price, err := s.prices.LatestClose(ctx, symbol, executedAt)
	if err != nil {
		return model.TradeReceipt{}, err
	}
	pricePerShare := decimal.NewFromFloat(price)
	proceeds := pricePerShare.Mul(decimal.NewFromInt(quantity))

	intent := model.TradeIntent{
		Owner:     owner,
		Container: portfolioName,
		Symbol:    symbol,
		Delta:     -quantity,
	}

	var receipt model.TradeReceipt
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolios.Get(ctx, tx, owner, portfolioName)
		if err != nil {
			return err
		}

		if err := s.applyTrade(ctx, tx, intent); err != nil {
			return err
		}

		cashAfter := p.Cash.Add(proceeds)
		if err := s.portfolios.UpdateCash(ctx, tx, owner, portfolioName, cashAfter); err != nil {
			return err
		}

		receipt = model.TradeReceipt{
			Symbol:        symbol,
			Shares:        quantity,
			PricePerShare: pricePerShare,
			TotalAmount:   proceeds,
			CashAfter:     cashAfter,
			ExecutedAt:    executedAt,
		}
		return nil
	})
	if err != nil {
		return model.TradeReceipt{}, err
	}
	return receipt, nil
}

// DepositCash credits amount to the portfolio's cash balance. Fails with
// ErrInvalidAmount for a non-positive amount.
func (s *LedgerService) DepositCash(ctx context.Context, owner, portfolioName string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolios.Get(ctx, tx, owner, portfolioName)
		if err != nil {
			return err
		}
		return s.portfolios.UpdateCash(ctx, tx, owner, portfolioName, p.Cash.Add(amount))
	})
}

// TransferCash moves amount between two portfolios of the same owner in one
// transaction. The rows are read in lexicographic name order so two opposing
// transfers cannot deadlock on engines with row-level locks. Fails with
// ErrInvalidAmount, ErrPortfolioNotFound or ErrInsufficientFunds.
func (s *LedgerService) TransferCash(ctx context.Context, owner, fromPortfolio, toPortfolio string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if fromPortfolio == toPortfolio {
		return apperrors.ErrInvalidAmount
	}

	first, second := fromPortfolio, toPortfolio
	if second < first {
		first, second = second, first
	}

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		read := map[string]model.Portfolio{}
		for _, name := range []string{first, second} {
			p, err := s.portfolios.Get(ctx, tx, owner, name)
			if err != nil {
				return err
			}
			read[name] = p
		}

		source := read[fromPortfolio]
		if source.Cash.LessThan(amount) {
			return apperrors.ErrInsufficientFunds
		}

		if err := s.portfolios.UpdateCash(ctx, tx, owner, fromPortfolio, source.Cash.Sub(amount)); err != nil {
			return err
		}
		return s.portfolios.UpdateCash(ctx, tx, owner, toPortfolio, read[toPortfolio].Cash.Add(amount))
	})
}

// GetPortfolio returns the portfolio with its holdings priced at the latest
// close. Symbols without any bar are valued at zero rather than failing the
// read.
func (s *LedgerService) GetPortfolio(ctx context.Context, owner, name string) (model.PortfolioDetail, error) {
	p, err := s.portfolios.Get(ctx, s.db, owner, name)
	if err != nil {
		return model.PortfolioDetail{}, err
	}

	holdings, err := s.investments.List(ctx, s.db, owner, name)
	if err != nil {
		return model.PortfolioDetail{}, err
	}

	detail := model.PortfolioDetail{
		Portfolio:   p,
		Holdings:    make([]model.HoldingValue, 0, len(holdings)),
		MarketValue: decimal.Zero,
	}

	asOf := s.now().UTC()
	for _, h := range holdings {
		hv := model.HoldingValue{Symbol: h.Symbol, Shares: h.Shares, Value: decimal.Zero}
		price, err := s.prices.LatestClose(ctx, h.Symbol, asOf)
		switch {
		case err == nil:
			hv.LatestClose = price
			hv.Value = decimal.NewFromFloat(price).Mul(decimal.NewFromInt(h.Shares))
		case !errors.Is(err, apperrors.ErrSymbolNotFound):
			return model.PortfolioDetail{}, err
		}
		detail.Holdings = append(detail.Holdings, hv)
		detail.MarketValue = detail.MarketValue.Add(hv.Value)
	}

	return detail, nil
}

// ListPortfolios returns all portfolios belonging to an owner.
func (s *LedgerService) ListPortfolios(ctx context.Context, owner string) ([]model.Portfolio, error) {
	return s.portfolios.ListByOwner(ctx, s.db, owner)
}

// GetHoldings returns the holdings of one portfolio.
func (s *LedgerService) GetHoldings(ctx context.Context, owner, name string) ([]model.Holding, error) {
	if _, err := s.portfolios.Get(ctx, s.db, owner, name); err != nil {
		return nil, err
	}
	return s.investments.List(ctx, s.db, owner, name)
}

// applyTrade applies a trade intent to the holding state machine inside the
// caller's transaction: absent -> present on first credit, present ->
// present on a partial trade, present -> absent only when a decrement lands
// on exactly zero.
func (s *LedgerService) applyTrade(ctx context.Context, tx *sql.Tx, intent model.TradeIntent) error {
	if intent.Delta > 0 {
		return s.investments.AddShares(ctx, tx, intent.Owner, intent.Container, intent.Symbol, intent.Delta)
	}

	held, exists, err := s.investments.GetShares(ctx, tx, intent.Owner, intent.Container, intent.Symbol)
	if err != nil {
		return err
	}
	debit := -intent.Delta
	if !exists || held < debit {
		return apperrors.ErrInsufficientShares
	}

	remaining := held - debit
	if remaining == 0 {
		return s.investments.Delete(ctx, tx, intent.Owner, intent.Container, intent.Symbol)
	}
	return s.investments.SetShares(ctx, tx, intent.Owner, intent.Container, intent.Symbol, remaining)
}

// WithClock overrides the service clock. Test hook.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}
