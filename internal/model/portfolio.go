package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio represents a user-owned portfolio with a cash balance.
// The name is unique per owner; cash is never negative and is mutated
// only through ledger operations.
type Portfolio struct {
	ID        string
	Owner     string
	Name      string
	Cash      decimal.Decimal
	CreatedAt time.Time
}

// Holding is a (owner, container, symbol) share-count record inside a
// portfolio or stock list. A row exists only while Shares > 0.
type Holding struct {
	Owner     string
	Container string
	Symbol    string
	Shares    int64
}

// HoldingValue is a holding enriched with its latest close price for
// read-model responses. Price is zero when no bar exists for the symbol.
type HoldingValue struct {
	Symbol      string
	Shares      int64
	LatestClose float64
	Value       decimal.Decimal
}

// PortfolioDetail is the read model returned by GetPortfolio: the portfolio
// row plus its priced holdings and total market value.
type PortfolioDetail struct {
	Portfolio   Portfolio
	Holdings    []HoldingValue
	MarketValue decimal.Decimal
}

// TradeIntent is the ephemeral request value a ledger operation executes.
// It is never persisted; Delta is positive for a credit of shares and
// negative for a debit.
type TradeIntent struct {
	Owner     string
	Container string
	Symbol    string
	Delta     int64
}

// TradeReceipt describes a committed buy or sell.
type TradeReceipt struct {
	Symbol        string
	Shares        int64
	PricePerShare decimal.Decimal
	TotalAmount   decimal.Decimal
	CashAfter     decimal.Decimal
	ExecutedAt    time.Time
}

// Identity is the acting user as resolved by the out-of-scope auth service.
type Identity struct {
	UserID string
}
