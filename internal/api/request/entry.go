package request

// CreateEntryRequest is the payload for creating a wash-sale entry.
// SellDate is a "2006-01-02" date string.
type CreateEntryRequest struct {
	Account  string `json:"account"`
	Tickers  string `json:"tickers"`
	HeldIn   string `json:"heldIn"`
	Broker   string `json:"broker"`
	SellDate string `json:"sellDate"`
	Comments string `json:"comments"`
}

// UpdateEntryRequest is the payload for updating an entry. All editable
// fields are rewritten; workflow status is not editable through update.
type UpdateEntryRequest struct {
	Account  string `json:"account"`
	Tickers  string `json:"tickers"`
	HeldIn   string `json:"heldIn"`
	Broker   string `json:"broker"`
	SellDate string `json:"sellDate"`
	Comments string `json:"comments"`
}

// SetCompletedRequest is the payload for directly marking an entry
// completed or reopening it to pending.
type SetCompletedRequest struct {
	Completed bool `json:"completed"`
}
