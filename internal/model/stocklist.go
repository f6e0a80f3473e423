package model

import "time"

// StockList is a shareable watchlist. Holdings follow the same model as
// portfolio investments but a list carries no cash balance.
type StockList struct {
	ID        string
	Owner     string
	Name      string
	Private   bool
	CreatedAt time.Time
}

// StockListDetail is the read model returned by GetList.
type StockListDetail struct {
	List     StockList
	Holdings []Holding
}
