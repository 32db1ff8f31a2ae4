package models

// CartAddRequest puts a catalog item into the cart.
type CartAddRequest struct {
	ItemID   int    `json:"item_id"`
	ItemType string `json:"item_type"` // "product" or "equipment"
	Quantity int    `json:"quantity"`
	Days     int    `json:"days,omitempty"`
}

// CartQuantityRequest changes a line's quantity; zero or below removes it.
type CartQuantityRequest struct {
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

// CartDaysRequest changes a line's rental day count; zero or below removes it.
type CartDaysRequest struct {
	LineID string `json:"line_id"`
	Days   int    `json:"days"`
}

// CartRemoveRequest removes a line outright.
type CartRemoveRequest struct {
	LineID string `json:"line_id"`
}
