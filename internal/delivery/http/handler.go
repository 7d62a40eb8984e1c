package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/service"
)

// OrderHandler exposes the order service's REST edge.
type OrderHandler struct {
	orderSvc *service.OrderService
}

func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
	mux.HandleFunc("PUT /api/orders/{id}/shipping-address", h.handleUpdateShippingAddress)
}

func (h *OrderHandler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.orderSvc.GetProducts(r.Context())
	if err != nil {
		slog.Error("Failed to get products", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type CreateOrderRequest struct {
	Client          entity.Client              `json:"client"`
	Products        map[string]entity.Quantity `json:"products"`
	ShippingAddress entity.ShippingAddress     `json:"shipping_address"`
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	quantities := make(map[uuid.UUID]entity.Quantity, len(req.Products))
	for rawID, qty := range req.Products {
		id, err := uuid.Parse(rawID)
		if err != nil {
			http.Error(w, "invalid product id: "+rawID, http.StatusBadRequest)
			return
		}
		quantities[id] = qty
	}

	order, err := h.orderSvc.CreateOrder(r.Context(), req.Client, quantities, req.ShippingAddress)
	if err != nil {
		var publishErr *entity.PublishError
		if errors.As(err, &publishErr) {
			// The order exists; announcement will be retried separately.
			writeJSON(w, http.StatusAccepted, order)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	order, err := h.orderSvc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) handleUpdateShippingAddress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	var addr entity.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.orderSvc.UpdateShippingAddress(r.Context(), id, addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// StockHandler exposes the stock service's administrative REST edge.
type StockHandler struct {
	recipeSvc     *service.RecipeService
	ingredientSvc *service.IngredientService
}

func NewStockHandler(recipeSvc *service.RecipeService, ingredientSvc *service.IngredientService) *StockHandler {
	return &StockHandler{recipeSvc: recipeSvc, ingredientSvc: ingredientSvc}
}

func (h *StockHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/recipes", h.handleCreateRecipe)
	mux.HandleFunc("GET /api/recipes/{id}", h.handleGetRecipe)
	mux.HandleFunc("PUT /api/recipes/{id}", h.handleUpdateRecipe)
	mux.HandleFunc("DELETE /api/recipes/{id}", h.handleDeleteRecipe)
	mux.HandleFunc("GET /api/recipes/{id}/cost", h.handleRecipeCost)
	mux.HandleFunc("POST /api/ingredients", h.handleCreateIngredient)
	mux.HandleFunc("GET /api/ingredients/{id}", h.handleGetIngredient)
	mux.HandleFunc("POST /api/ingredients/{id}/restock", h.handleRestockIngredient)
}

func (h *StockHandler) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var cmd service.CreateRecipeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recipe, err := h.recipeSvc.CreateRecipe(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *StockHandler) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}
	recipe, err := h.recipeSvc.GetRecipe(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *StockHandler) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}
	var cmd service.CreateRecipeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recipe, err := h.recipeSvc.UpdateRecipe(r.Context(), id, cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *StockHandler) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}
	if err := h.recipeSvc.DeleteRecipe(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StockHandler) handleRecipeCost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}
	cost, err := h.recipeSvc.CalculateRecipeCost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

func (h *StockHandler) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var cmd service.CreateIngredientCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ingredient, err := h.ingredientSvc.CreateIngredient(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ingredient)
}

func (h *StockHandler) handleGetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid ingredient id", http.StatusBadRequest)
		return
	}
	ingredient, err := h.ingredientSvc.GetIngredient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

type RestockRequest struct {
	Quantity entity.Quantity `json:"quantity"`
}

func (h *StockHandler) handleRestockIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid ingredient id", http.StatusBadRequest)
		return
	}
	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ingredient, err := h.ingredientSvc.RestockIngredient(r.Context(), id, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. Validation and
// not-found failures are caller problems and never logged as system
// failures.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErrs entity.ValidationErrors
		notFound       *entity.NotFoundError
		insufficient   *entity.InsufficientStockError
		storage        *entity.StorageError
	)
	switch {
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": validationErrs})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]string{"error": insufficient.Error()})
	case errors.As(err, &storage):
		slog.Error("Storage failure", "err", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
	default:
		slog.Error("Unhandled error", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// EnableCORS is a middleware to allow a browser frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
