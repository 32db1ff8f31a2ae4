package models

import "time"

// Category is shared shape for product and equipment categories; they live
// in separate tables so an id is only unique within its own kind.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is a one-time purchase catalog item.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CategoryID  int       `json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	ImageURL    string    `json:"image_url"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

// Equipment is a rentable catalog item priced per day.
type Equipment struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	RentalPricePerDay float64   `json:"rental_price_per_day"`
	CategoryID        int       `json:"category_id"`
	Category          *Category `json:"category,omitempty"`
	ImageURL          string    `json:"image_url"`
	Available         bool      `json:"available"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProductRequest is the admin payload for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int     `json:"category_id"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
}

// EquipmentRequest is the admin payload for creating or updating equipment.
type EquipmentRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	RentalPricePerDay float64 `json:"rental_price_per_day"`
	CategoryID        int     `json:"category_id"`
	ImageURL          string  `json:"image_url"`
	Available         bool    `json:"available"`
}

// CategoryRequest is the admin payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
