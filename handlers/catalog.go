// handlers/catalog.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"flashxship-api/database"
	"flashxship-api/models"
	"flashxship-api/utils"
)

type CatalogHandler struct {
	db *database.Connection
}

func NewCatalogHandler(db *database.Connection) *CatalogHandler {
	return &CatalogHandler{db: db}
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GetProducts lists the product catalog.
func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.db.GetProducts()
	if err != nil {
		log.Printf("Error listing products: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load products")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.db.GetProductByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Price < 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Name is required and price must not be negative")
		return
	}

	id, err := h.db.CreateProduct(req)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	product, err := h.db.GetProductByID(id)
	if err != nil {
		log.Printf("Error reading back product %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.db.UpdateProduct(id, req); err != nil {
		log.Printf("Error updating product %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	product, err := h.db.GetProductByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.db.DeleteProduct(id); err != nil {
		log.Printf("Error deleting product %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Product deleted"})
}

// GetEquipment lists the rentable equipment catalog.
func (h *CatalogHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.db.GetEquipment()
	if err != nil {
		log.Printf("Error listing equipment: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load equipment")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, equipment)
}

func (h *CatalogHandler) GetEquipmentItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid equipment id")
		return
	}

	equipment, err := h.db.GetEquipmentByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Equipment not found")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, equipment)
}

func (h *CatalogHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req models.EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.RentalPricePerDay < 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Name is required and rental price must not be negative")
		return
	}

	id, err := h.db.CreateEquipment(req)
	if err != nil {
		log.Printf("Error creating equipment: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create equipment")
		return
	}

	equipment, err := h.db.GetEquipmentByID(id)
	if err != nil {
		log.Printf("Error reading back equipment %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create equipment")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, equipment)
}

func (h *CatalogHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid equipment id")
		return
	}

	var req models.EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.db.UpdateEquipment(id, req); err != nil {
		log.Printf("Error updating equipment %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update equipment")
		return
	}

	equipment, err := h.db.GetEquipmentByID(id)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Equipment not found")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, equipment)
}

func (h *CatalogHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid equipment id")
		return
	}

	if err := h.db.DeleteEquipment(id); err != nil {
		log.Printf("Error deleting equipment %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to delete equipment")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Equipment deleted"})
}

// Product and equipment categories live in separate tables; the handlers
// differ only in which table they touch.

func (h *CatalogHandler) GetProductCategories(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, database.ProductCategoriesTable)
}

func (h *CatalogHandler) GetEquipmentCategories(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, database.EquipmentCategoriesTable)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, table string) {
	categories, err := h.db.GetCategories(table)
	if err != nil {
		log.Printf("Error listing categories from %s: %v", table, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateProductCategory(w http.ResponseWriter, r *http.Request) {
	h.createCategory(w, r, database.ProductCategoriesTable)
}

func (h *CatalogHandler) CreateEquipmentCategory(w http.ResponseWriter, r *http.Request) {
	h.createCategory(w, r, database.EquipmentCategoriesTable)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request, table string) {
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	id, err := h.db.CreateCategory(table, req)
	if err != nil {
		log.Printf("Error creating category in %s: %v", table, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, models.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
}

func (h *CatalogHandler) DeleteProductCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteCategory(w, r, database.ProductCategoriesTable)
}

func (h *CatalogHandler) DeleteEquipmentCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteCategory(w, r, database.EquipmentCategoriesTable)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request, table string) {
	id, ok := pathID(r)
	if !ok {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.db.DeleteCategory(table, id); err != nil {
		log.Printf("Error deleting category %d from %s: %v", id, table, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Category deleted"})
}
