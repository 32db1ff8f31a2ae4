// handlers/admin.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"flashxship-api/config"
	"flashxship-api/database"
	"flashxship-api/models"
	"flashxship-api/queue"
	"flashxship-api/utils"
)

// orderActions maps the admin route action to the status it applies.
var orderActions = map[string]string{
	"confirm": models.OrderStatusConfirmed,
	"reject":  models.OrderStatusRejected,
	"ship":    models.OrderStatusShipped,
	"deliver": models.OrderStatusDelivered,
}

// reviewInviteDelay is how long after delivery the review invitation goes out.
const reviewInviteDelay = 3 * 24 * time.Hour

type AdminHandler struct {
	db          *database.Connection
	queue       *queue.Queue
	frontendURL string
}

func NewAdminHandler(db *database.Connection, q *queue.Queue, cfg *config.Config) *AdminHandler {
	return &AdminHandler{db: db, queue: q, frontendURL: cfg.Server.FrontendURL}
}

// UpdateOrderStatus applies a lifecycle action to an order and queues the
// customer notification email.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	action := strings.ToLower(mux.Vars(r)["action"])
	status, ok := orderActions[action]
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Unknown order action")
		return
	}

	order, err := h.db.GetOrderByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Order not found")
		return
	}

	if err := h.db.UpdateOrderStatus(id, status); err != nil {
		log.Printf("Error updating order %d to %s: %v", id, status, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	h.enqueueStatusEmail(r, order, status)
	if status == models.OrderStatusDelivered {
		h.scheduleReviewInvite(r, order)
	}

	order.Status = status
	utils.SendJSONResponse(w, http.StatusOK, order)
}

func (h *AdminHandler) enqueueStatusEmail(r *http.Request, order *models.Order, status string) {
	owner, err := h.db.GetUserByID(order.UserID)
	if err != nil {
		log.Printf("Error loading owner of order %d for notification: %v", order.ID, err)
		return
	}

	err = h.queue.Enqueue(r.Context(), queue.JobTypeOrderStatusEmail, map[string]interface{}{
		"to":       owner.Email,
		"status":   status,
		"order_id": order.ID,
	})
	if err != nil {
		log.Printf("Error enqueuing status email for order %d: %v", order.ID, err)
	}
}

// scheduleReviewInvite queues the review invitation to go out a few days
// after the order was marked delivered.
func (h *AdminHandler) scheduleReviewInvite(r *http.Request, order *models.Order) {
	owner, err := h.db.GetUserByID(order.UserID)
	if err != nil {
		log.Printf("Error loading owner of order %d for review invite: %v", order.ID, err)
		return
	}

	err = h.queue.EnqueueDelayed(r.Context(), queue.JobTypeReviewInviteEmail, map[string]interface{}{
		"to":         owner.Email,
		"order_id":   order.ID,
		"review_url": h.frontendURL + "/reviews",
	}, reviewInviteDelay)
	if err != nil {
		log.Printf("Error scheduling review invite for order %d: %v", order.ID, err)
	}
}

// GetFailedJobs lists notification jobs that exhausted their retries.
func (h *AdminHandler) GetFailedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queue.FailedJobs(r.Context())
	if err != nil {
		log.Printf("Error listing failed jobs: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load failed jobs")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, jobs)
}

// RetryFailedJob requeues a failed notification job with its retry counter
// reset.
func (h *AdminHandler) RetryFailedJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	if jobID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	if err := h.queue.RetryJob(r.Context(), jobID); err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			utils.SendErrorResponse(w, http.StatusNotFound, "Job not found in failed queue")
			return
		}
		log.Printf("Error retrying job %s: %v", jobID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to retry job")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Job requeued"})
}

// GetDashboardStats returns the back-office counters.
func (h *AdminHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetDashboardStats()
	if err != nil {
		log.Printf("Error loading dashboard stats: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, stats)
}

// GetMessages lists every contact message, newest first.
func (h *AdminHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.db.GetContactMessages()
	if err != nil {
		log.Printf("Error listing contact messages: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, messages)
}

// RespondToMessage records a staff reply and queues it for delivery to the
// sender.
func (h *AdminHandler) RespondToMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid message id")
		return
	}

	var req models.MessageResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Response) == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Response text is required")
		return
	}

	message, err := h.db.GetContactMessageByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Message not found")
		return
	}

	if err := h.db.RespondToMessage(id, req.Response); err != nil {
		log.Printf("Error storing response to message %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to store response")
		return
	}

	err = h.queue.Enqueue(r.Context(), queue.JobTypeContactResponseEmail, map[string]interface{}{
		"to":       message.Email,
		"name":     message.Name,
		"subject":  message.Subject,
		"date":     utils.FormatDate(message.CreatedAt),
		"response": req.Response,
	})
	if err != nil {
		log.Printf("Error enqueuing response email for message %d: %v", id, err)
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Response sent"})
}
