// handlers/contact.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"flashxship-api/database"
	"flashxship-api/middleware"
	"flashxship-api/models"
	"flashxship-api/utils"
)

type ContactHandler struct {
	db *database.Connection
}

func NewContactHandler(db *database.Connection) *ContactHandler {
	return &ContactHandler{db: db}
}

// SubmitMessage files a contact form message. Works for anonymous visitors;
// signed-in senders get the message tied to their account.
func (h *ContactHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Name, email and message are required")
		return
	}

	userID := 0
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	id, err := h.db.CreateContactMessage(userID, req)
	if err != nil {
		log.Printf("Error storing contact message from %s: %v", req.Email, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, models.APIResponse{
		Status:  "success",
		Message: "Message received",
		Data:    map[string]int{"id": id},
	})
}
