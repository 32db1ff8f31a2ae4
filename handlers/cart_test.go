package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashxship-api/cart"
	"flashxship-api/config"
	"flashxship-api/middleware"
	"flashxship-api/models"
)

// stubCatalog serves a fixed product and equipment item.
type stubCatalog struct{}

func (stubCatalog) GetProductByID(id int) (*models.Product, error) {
	if id != 7 {
		return nil, fmt.Errorf("product %d not found", id)
	}
	return &models.Product{ID: 7, Name: "Cargo Strap Kit", Price: 19.99, Stock: 10}, nil
}

func (stubCatalog) GetEquipmentByID(id int) (*models.Equipment, error) {
	switch id {
	case 3:
		return &models.Equipment{ID: 3, Name: "Pallet Jack", RentalPricePerDay: 15.0, Available: true}, nil
	case 4:
		return &models.Equipment{ID: 4, Name: "Forklift", RentalPricePerDay: 80.0, Available: false}, nil
	}
	return nil, fmt.Errorf("equipment %d not found", id)
}

func newTestCartHandler() *CartHandler {
	cfg := &config.Config{}
	cfg.Session.Secret = "test-session-secret"
	return NewCartHandler(stubCatalog{}, cart.NewMemoryStore(), cfg)
}

func asUser(r *http.Request, id int) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, &models.AuthUser{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		Email:    fmt.Sprintf("user%d@example.com", id),
	})
	return r.WithContext(ctx)
}

func postJSON(path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestGetCartStartsEmpty(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.GetCart(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/cart", nil), 1))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Total)
}

func TestAddProductTwiceKeepsOneLine(t *testing.T) {
	h := newTestCartHandler()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
			ItemID: 7, ItemType: "product", Quantity: 1,
		}), 1))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.GetCart(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/cart", nil), 1))
	resp := decodeCart(t, rec)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "product-7", resp.Items[0].ID)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.InDelta(t, 39.98, resp.Total, 0.001)
	assert.Equal(t, 1, resp.LineCount)
	assert.Equal(t, 2, resp.ItemCount)
}

func TestAddUnknownProductIsNotFound(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 999, ItemType: "product", Quantity: 1,
	}), 1))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentRentalRequiresAuth(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, postJSON("/api/cart", models.CartAddRequest{
		ItemID: 3, ItemType: "equipment", Quantity: 1, Days: 2,
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnavailableEquipmentConflicts(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 4, ItemType: "equipment", Quantity: 1, Days: 2,
	}), 1))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEquipmentLinePricesPerDay(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 3, ItemType: "equipment", Quantity: 2, Days: 3,
	}), 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "equipment-3", resp.Items[0].ID)
	// 15/day * 3 days * 2 units
	assert.InDelta(t, 90.0, resp.Total, 0.001)
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 7, ItemType: "product", Quantity: 3,
	}), 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	payload, _ := json.Marshal(models.CartQuantityRequest{LineID: "product-7", Quantity: 0})
	req := httptest.NewRequest(http.MethodPut, "/api/cart", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	h.UpdateQuantity(rec, asUser(req, 1))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Total)
}

func TestRemoveMissingLineIsOK(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.RemoveFromCart(rec, asUser(postJSON("/api/cart/remove", models.CartRemoveRequest{
		LineID: "product-404",
	}), 1))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClearCart(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 7, ItemType: "product", Quantity: 2,
	}), 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ClearCart(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), 1))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
}

func TestMergeCartCombinesLines(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 7, ItemType: "product", Quantity: 1,
	}), 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	anonymous := cart.ProductItem(7, "Cargo Strap Kit", 19.99, "")
	rec = httptest.NewRecorder()
	h.MergeCart(rec, asUser(postJSON("/api/merge-cart", CartMergeRequest{
		Items: []cart.Line{{
			ID:       "product-7",
			Kind:     cart.KindProduct,
			Item:     anonymous,
			Quantity: 2,
		}},
	}), 1))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
}

func TestAnonymousCartMintsSessionCookie(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.GetCart(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "cart-session", cookies[0].Name)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	h := newTestCartHandler()

	rec := httptest.NewRecorder()
	h.AddToCart(rec, asUser(postJSON("/api/cart", models.CartAddRequest{
		ItemID: 7, ItemType: "product", Quantity: 5,
	}), 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.GetCart(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/cart", nil), 2))

	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
}
