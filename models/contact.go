package models

import "time"

// ContactMessage is a message sent through the storefront contact form.
// UserID is zero for anonymous senders.
type ContactMessage struct {
	ID            int        `json:"id"`
	UserID        int        `json:"user_id,omitempty"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Responded     bool       `json:"responded"`
	AdminResponse string     `json:"admin_response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// MessageResponseRequest is the admin reply to a contact message.
type MessageResponseRequest struct {
	Response string `json:"response"`
}
