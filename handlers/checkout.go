// handlers/checkout.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"flashxship-api/config"
	"flashxship-api/database"
	"flashxship-api/middleware"
	"flashxship-api/models"
	"flashxship-api/queue"
	"flashxship-api/services/payment/stripe"
	"flashxship-api/utils"
)

const webhookMaxBody = 64 << 10

type CheckoutHandler struct {
	db            *database.Connection
	stripe        *stripe.Client
	queue         *queue.Queue
	webhookSecret string
	frontendURL   string
}

func NewCheckoutHandler(db *database.Connection, client *stripe.Client, q *queue.Queue, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		db:            db,
		stripe:        client,
		queue:         q,
		webhookSecret: cfg.Stripe.WebhookSecret,
		frontendURL:   cfg.Server.FrontendURL,
	}
}

// CreateCheckoutSession opens a hosted payment page for an unpaid order.
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.db.GetOrderByID(req.OrderID)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Order not found")
		return
	}

	if order.UserID != user.ID {
		utils.SendErrorResponse(w, http.StatusForbidden, "You do not have access to this order")
		return
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		utils.SendErrorResponse(w, http.StatusConflict, "Order is already paid")
		return
	}

	params := stripe.CheckoutSessionParams{
		SuccessURL:    h.frontendURL + "/checkout/success?order=" + order.Reference,
		CancelURL:     h.frontendURL + "/checkout/cancel?order=" + order.Reference,
		CustomerEmail: user.Email,
		Metadata:      map[string]string{"order_id": strconv.Itoa(order.ID)},
	}

	for _, item := range order.Items {
		name := item.Name
		unit := item.UnitPrice
		if item.ItemType == "equipment" {
			days := item.RentalDays
			if days < 1 {
				days = 1
			}
			name = fmt.Sprintf("%s (%d day rental)", item.Name, days)
			unit = item.UnitPrice * float64(days)
		}
		params.LineItems = append(params.LineItems, stripe.LineItem{
			Name:       name,
			UnitAmount: utils.Cents(unit),
			Quantity:   item.Quantity,
		})
	}

	session, err := h.stripe.CreateCheckoutSession(r.Context(), params)
	if err != nil {
		log.Printf("Error creating checkout session for order %d: %v", order.ID, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Failed to create payment session")
		return
	}

	if err := h.db.SetOrderStripeSession(order.ID, session.ID); err != nil {
		log.Printf("Error storing checkout session for order %d: %v", order.ID, err)
	}

	utils.SendJSONResponse(w, http.StatusOK, models.CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// StripeWebhook verifies and acknowledges gateway events, then applies them
// in the background so the gateway never waits on our database.
func (h *CheckoutHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookMaxBody))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Failed to read webhook payload")
		return
	}

	event, err := stripe.ConstructEvent(payload, r.Header.Get("Stripe-Signature"),
		h.webhookSecret, stripe.DefaultTolerance)
	if err != nil {
		log.Printf("Rejected stripe webhook from %s: %v", r.RemoteAddr, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	w.WriteHeader(http.StatusOK)

	go h.processEvent(event)
}

func (h *CheckoutHandler) processEvent(event *stripe.Event) {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSessionObject
		if err := event.UnmarshalObject(&session); err != nil {
			log.Printf("Error decoding checkout session from event %s: %v", event.ID, err)
			return
		}

		orderID, err := strconv.Atoi(session.Metadata["order_id"])
		if err != nil {
			log.Printf("Event %s has no usable order_id metadata", event.ID)
			return
		}

		if err := h.db.MarkOrderPaid(orderID, session.PaymentIntent); err != nil {
			log.Printf("Error marking order %d paid from event %s: %v", orderID, event.ID, err)
			return
		}

		log.Printf("Order %d marked paid (session %s)", orderID, session.ID)

		h.enqueueConfirmationEmail(orderID)

	default:
		log.Printf("Ignoring stripe event %s of type %s", event.ID, event.Type)
	}
}

func (h *CheckoutHandler) enqueueConfirmationEmail(orderID int) {
	order, err := h.db.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error loading order %d for confirmation email: %v", orderID, err)
		return
	}

	owner, err := h.db.GetUserByID(order.UserID)
	if err != nil {
		log.Printf("Error loading owner of order %d for confirmation email: %v", orderID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = h.queue.Enqueue(ctx, queue.JobTypeOrderStatusEmail, map[string]interface{}{
		"to":       owner.Email,
		"status":   models.OrderStatusConfirmed,
		"order_id": order.ID,
	})
	if err != nil {
		log.Printf("Error enqueuing confirmation email for order %d: %v", orderID, err)
	}
}
