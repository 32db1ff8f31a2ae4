// handlers/cart.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"flashxship-api/cart"
	"flashxship-api/config"
	"flashxship-api/middleware"
	"flashxship-api/models"
	"flashxship-api/utils"
)

// CatalogSource is the catalog lookup the cart needs when snapshotting an
// item. Satisfied by *database.Connection.
type CatalogSource interface {
	GetProductByID(id int) (*models.Product, error)
	GetEquipmentByID(id int) (*models.Equipment, error)
}

// CartMergeRequest folds a locally held cart into the signed-in user's
// server cart, typically right after login.
type CartMergeRequest struct {
	Items []cart.Line `json:"items"`
}

// CartResponse is the full cart view returned after reads and mutations.
type CartResponse struct {
	Items     []cart.Line `json:"items"`
	Total     float64     `json:"total"`
	LineCount int         `json:"line_count"`
	ItemCount int         `json:"item_count"`
}

type CartHandler struct {
	catalog  CatalogSource
	carts    cart.Store
	sessions *sessions.CookieStore
}

func NewCartHandler(catalog CatalogSource, carts cart.Store, cfg *config.Config) *CartHandler {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Session.Domain,
		MaxAge:   cfg.Session.MaxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &CartHandler{catalog: catalog, carts: carts, sessions: store}
}

// ownerKey picks the cart owner: the user id when authenticated, otherwise
// a cookie-backed anonymous session id minted on first contact.
func (h *CartHandler) ownerKey(w http.ResponseWriter, r *http.Request) string {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		return cart.UserOwner(user.ID)
	}

	session, err := h.sessions.Get(r, "cart-session")
	if err != nil {
		log.Printf("Error getting cart session: %v", err)
		// A tampered cookie comes back as an error plus a fresh session;
		// fall through and mint a new id.
	}

	sid, ok := session.Values["sid"].(string)
	if !ok || sid == "" {
		sid = uuid.New().String()
		session.Values["sid"] = sid
		if err := session.Save(r, w); err != nil {
			log.Printf("Error saving cart session: %v", err)
		}
	}

	return cart.SessionOwner(sid)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, c *cart.Cart) {
	utils.SendJSONResponse(w, status, CartResponse{
		Items:     c.Lines(),
		Total:     c.GrandTotal(),
		LineCount: c.LineCount(),
		ItemCount: c.ItemCount(),
	})
}

// GetCart returns the caller's cart, empty if they have none.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c := cart.New(r.Context(), h.carts, h.ownerKey(w, r))
	h.respondCart(w, http.StatusOK, c)
}

// AddToCart snapshots a catalog item into the cart. Equipment rentals
// require a signed-in user.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.CartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Quantity <= 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	var item cart.ItemSnapshot
	switch req.ItemType {
	case "product":
		product, err := h.catalog.GetProductByID(req.ItemID)
		if err != nil {
			utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		item = cart.ProductItem(product.ID, product.Name, product.Price, product.ImageURL)

	case "equipment":
		if !middleware.IsAuthenticated(r.Context()) {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Sign in to rent equipment")
			return
		}
		equipment, err := h.catalog.GetEquipmentByID(req.ItemID)
		if err != nil {
			utils.SendErrorResponse(w, http.StatusNotFound, "Equipment not found")
			return
		}
		if !equipment.Available {
			utils.SendErrorResponse(w, http.StatusConflict, "Equipment is not available")
			return
		}
		item = cart.EquipmentItem(equipment.ID, equipment.Name, equipment.RentalPricePerDay, equipment.ImageURL)

	default:
		utils.SendErrorResponse(w, http.StatusBadRequest, "item_type must be product or equipment")
		return
	}

	c := cart.New(r.Context(), h.carts, h.ownerKey(w, r))
	if err := c.AddItem(r.Context(), item, req.Quantity, req.Days); err != nil {
		log.Printf("Error adding item to cart %s: %v", c.Owner(), err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	h.respondCart(w, http.StatusCreated, c)
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req models.CartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := cart.New(r.Context(), h.carts, h.ownerKey(w, r))
	if err := c.UpdateQuantity(r.Context(), req.LineID, req.Quantity); err != nil {
		log.Printf("Error updating quantity in cart %s: %v", c.Owner(), err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	h.respondCart(w, http.StatusOK, c)
}

// UpdateDays sets a rental line's day count; zero or below removes the line.
func (h *CartHandler) UpdateDays(w http.ResponseWriter, r *http.Request) {
	var req models.CartDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := cart.New(r.Context(), h.carts, h.ownerKey(w, r))
	if err := c.UpdateRentalDays(r.Context(), req.LineID, req.Days); err != nil {
		log.Printf("Error updating rental days in cart %s: %v", c.Owner(), err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	h.respondCart(w, http.StatusOK, c)
}

// RemoveFromCart deletes a line. Removing an absent line is fine.
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req models.CartRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := cart.New(r.Context(), h.carts, h.ownerKey(w, r))
	if err := c.RemoveItem(r.Context(), req.LineID); err != nil {
		log.Printf("Error removing item from cart %s: %v", c.Owner(), err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	h.respondCart(w, http.StatusOK, c)
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := cart.New(r.Context(), h.carts, h.ownerKey(w, r))
	if err := c.Clear(r.Context()); err != nil {
		log.Printf("Error clearing cart %s: %v", c.Owner(), err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	h.respondCart(w, http.StatusOK, c)
}

// MergeCart folds client-held lines into the signed-in user's cart.
// Requires authentication; routed behind AuthMiddleware.
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CartMergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := cart.New(r.Context(), h.carts, cart.UserOwner(user.ID))
	if err := c.Merge(r.Context(), req.Items); err != nil {
		log.Printf("Error merging cart for user %d: %v", user.ID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to merge cart")
		return
	}

	h.respondCart(w, http.StatusOK, c)
}
