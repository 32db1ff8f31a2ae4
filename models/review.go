package models

import "time"

// Review is a customer testimonial. Only approved reviews are public.
type Review struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewRequest is the public payload for submitting a review.
type ReviewRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// DashboardStats are the admin back-office counters.
type DashboardStats struct {
	TotalProducts   int `json:"total_products"`
	TotalEquipment  int `json:"total_equipment"`
	TotalOrders     int `json:"total_orders"`
	PendingMessages int `json:"pending_messages"`
}
