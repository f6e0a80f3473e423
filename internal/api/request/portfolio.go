// Package request defines the JSON request bodies accepted by the API.
package request

// CreatePortfolioRequest creates a portfolio with an initial deposit.
// Cash amounts travel as decimal strings to avoid float drift.
type CreatePortfolioRequest struct {
	Name           string `json:"name"`
	InitialDeposit string `json:"initial_deposit"`
}

// TradeRequest buys or sells shares in a portfolio.
type TradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// DepositRequest credits cash to a portfolio.
type DepositRequest struct {
	Amount string `json:"amount"`
}

// TransferRequest moves cash between two portfolios of the same owner.
type TransferRequest struct {
	FromPortfolio string `json:"from_portfolio"`
	ToPortfolio   string `json:"to_portfolio"`
	Amount        string `json:"amount"`
}
