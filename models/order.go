package models

import "time"

// Order lifecycle states. REJECTED and CANCELLED are terminal; the happy
// path is PENDING -> CONFIRMED -> SHIPPED -> DELIVERED.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusRejected  = "REJECTED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

// Order is a placed order with its delivery and payment bookkeeping.
type Order struct {
	ID            int         `json:"id"`
	Reference     string      `json:"reference"`
	UserID        int         `json:"user_id"`
	Username      string      `json:"username,omitempty"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	TotalAmount   float64     `json:"total_amount"`
	Delivery      Delivery    `json:"delivery"`
	Recipient     Recipient   `json:"recipient"`
	StripeSession string      `json:"stripe_session_id,omitempty"`
	StripeIntent  string      `json:"stripe_payment_intent_id,omitempty"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem freezes one cart line at order time: the unit price is the price
// that was in effect when the order was placed, not the live catalog price.
type OrderItem struct {
	ID          int     `json:"id"`
	ItemType    string  `json:"item_type"`
	ProductID   int     `json:"product_id,omitempty"`
	EquipmentID int     `json:"equipment_id,omitempty"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	RentalDays  int     `json:"rental_days,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// Delivery holds the shipping block of an order; empty when the order is
// picked up.
type Delivery struct {
	Required   bool   `json:"requires_delivery"`
	Country    string `json:"country,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Recipient identifies who receives the order when it is not the buyer.
type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateOrderRequest is the checkout submission: the cart lines as the
// client holds them, plus delivery details.
type CreateOrderRequest struct {
	Items     []OrderItemRequest `json:"items"`
	Delivery  Delivery           `json:"delivery_info"`
	Recipient Recipient          `json:"recipient_info"`
}

// OrderItemRequest references a catalog item by kind and id; prices are
// resolved server-side against the catalog, never trusted from the client.
type OrderItemRequest struct {
	ItemID   int    `json:"id"`
	ItemType string `json:"type"`
	Quantity int    `json:"quantity"`
	Days     int    `json:"days,omitempty"`
}

// CreateOrderResponse acknowledges a placed order.
type CreateOrderResponse struct {
	OrderID     int     `json:"order_id"`
	Reference   string  `json:"reference"`
	TotalAmount float64 `json:"total_amount"`
	Message     string  `json:"message"`
}

// CheckoutSessionRequest asks for a payment session for an unpaid order.
type CheckoutSessionRequest struct {
	OrderID int `json:"order_id"`
}

// CheckoutSessionResponse carries the hosted payment page handle.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
