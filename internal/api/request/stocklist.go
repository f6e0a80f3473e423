package request

// CreateListRequest creates a stock list.
type CreateListRequest struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// ListEntryRequest adds or removes shares of a symbol on a list.
type ListEntryRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// VisibilityRequest flips a list between private and public.
type VisibilityRequest struct {
	Private bool `json:"private"`
}
