// handlers/orders.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"flashxship-api/cart"
	"flashxship-api/database"
	"flashxship-api/middleware"
	"flashxship-api/models"
	"flashxship-api/utils"
)

type OrderHandler struct {
	db    *database.Connection
	carts cart.Store
}

func NewOrderHandler(db *database.Connection, carts cart.Store) *OrderHandler {
	return &OrderHandler{db: db, carts: carts}
}

// CreateOrder places an order from the submitted cart lines. Prices are
// resolved against the catalog inside the transaction; the client's numbers
// are never trusted. The user's server-side cart is emptied on success.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Items) == 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			utils.SendErrorResponse(w, http.StatusBadRequest, "Item quantities must be at least 1")
			return
		}
		if item.ItemType != "product" && item.ItemType != "equipment" {
			utils.SendErrorResponse(w, http.StatusBadRequest, "Item type must be product or equipment")
			return
		}
	}

	response, err := h.db.CreateOrder(r.Context(), *user, req)
	if err != nil {
		switch err {
		case database.ErrItemNotFound:
			utils.SendErrorResponse(w, http.StatusNotFound, "One of the ordered items no longer exists")
		case database.ErrInsufficientStock:
			utils.SendErrorResponse(w, http.StatusConflict, "Not enough stock for one of the ordered items")
		case database.ErrEquipmentUnavailable:
			utils.SendErrorResponse(w, http.StatusConflict, "One of the rental items is no longer available")
		default:
			log.Printf("Error creating order for user %d: %v", user.ID, err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create order")
		}
		return
	}

	if err := h.carts.Delete(r.Context(), cart.UserOwner(user.ID)); err != nil {
		log.Printf("Warning: failed to clear cart after order %d: %v", response.OrderID, err)
	}

	utils.SendJSONResponse(w, http.StatusCreated, response)
}

// GetOrders lists the caller's orders; staff see every order.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID := user.ID
	if user.IsStaff {
		userID = 0
	}

	orders, err := h.db.GetOrders(userID)
	if err != nil {
		log.Printf("Error listing orders for user %d: %v", user.ID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, orders)
}

// GetOrder returns one order; only its owner or staff may read it.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := h.db.GetOrderByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Order not found")
		return
	}

	if order.UserID != user.ID && !user.IsStaff {
		utils.SendErrorResponse(w, http.StatusForbidden, "You do not have access to this order")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, order)
}
