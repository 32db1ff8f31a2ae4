// handlers/reviews.go
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

type ReviewHandler struct {
	db *database.Connection
}

func NewReviewHandler(db *database.Connection) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// GetReviews returns approved reviews. Staff can pass ?all=true to include
// the moderation backlog.
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	approvedOnly := true
	if r.URL.Query().Get("all") == "true" && middleware.IsStaff(r.Context()) {
		approvedOnly = false
	}

	reviews, err := h.db.GetReviews(approvedOnly)
	if err != nil {
		log.Printf("Error listing reviews: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load reviews")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, reviews)
}

// CreateReview files a review; it stays hidden until a staff member
// approves it.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Comment == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Name and comment are required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	userID := 0
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	id, err := h.db.CreateReview(userID, req)
	if err != nil {
		log.Printf("Error storing review from %s: %v", req.Name, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to submit review")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, models.APIResponse{
		Status:  "success",
		Message: "Review submitted for approval",
		Data:    map[string]int{"id": id},
	})
}

// ApproveReview publishes a pending review. Staff only.
func (h *ReviewHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.db.ApproveReview(id); err != nil {
		log.Printf("Error approving review %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to approve review")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Review approved"})
}

// DeleteReview removes a review. Staff only.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.db.DeleteReview(id); err != nil {
		log.Printf("Error deleting review %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Review deleted"})
}
