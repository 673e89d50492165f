package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/akenozll/restoransiparis2/internal/engine"
	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Engine *engine.Engine
	// AdminToken guards the admin routes when set; the scheme behind
	// it (who gets the token) is a deployment concern.
	AdminToken string
}

func (h *Handler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(apiTimeout(defaultAPITimeout))

		r.Get("/api/menu", h.listCatalog)
		r.Get("/api/tables", h.listTables)
		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Put("/api/orders/{id}/status", h.updateStatus)
		r.Get("/api/stock", h.listStock)
		r.Get("/api/stock/report", h.stockReport)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/api/tables", h.addTable)
			r.Delete("/api/tables/{id}", h.deleteTable)
			r.Post("/api/stock/update", h.adjustStock)
			r.Post("/api/stock/add-product", h.addProduct)
			r.Get("/api/admin/stats", h.adminStats)
			r.Post("/api/admin/clear", h.clearData)
		})
	})

	r.Get("/api/events", h.streamSSE)
	r.Handle("/api/ws", h.websocketHandler())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, orders.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, orders.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidTransition):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, orders.ErrConflict):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.AdminToken != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != h.AdminToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin token required"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func urlID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// ---- catalog ----

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.ListCatalog())
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": h.Engine.CatalogItems()})
}

type adjustStockReq struct {
	ProductID   int    `json:"productId"`
	StockChange int    `json:"stockChange"`
	Note        string `json:"note"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	newStock, err := h.Engine.AdjustStock(req.ProductID, req.StockChange, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "newStock": newStock})
}

type addProductReq struct {
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Price       orders.Cents `json:"price"`
	Stock       int          `json:"stock"`
	MinStock    int          `json:"minStock"`
	Description string       `json:"description"`
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	item, err := h.Engine.AddCatalogItem(engine.CatalogInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "product": item})
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.StockReport())
}

// ---- tables ----

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.ListTables())
}

type addTableReq struct {
	Name string `json:"name"`
}

func (h *Handler) addTable(w http.ResponseWriter, r *http.Request) {
	var req addTableReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	t, err := h.Engine.AddTable(strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}
	if err := h.Engine.DeleteTable(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---- orders ----

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.ListOrders())
}

type createOrderReq struct {
	TableID int               `json:"tableId"`
	Items   []orders.LineItem `json:"items"`
	Note    string            `json:"note"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	o, err := h.Engine.CreateOrder(req.TableID, req.Items, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

type updateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	o, err := h.Engine.UpdateStatus(id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ---- admin ----

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.Stats())
}

type clearReq struct {
	Orders  bool `json:"orders"`
	Stock   bool `json:"stock"`
	Catalog bool `json:"catalog"`
}

func (h *Handler) clearData(w http.ResponseWriter, r *http.Request) {
	var req clearReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	h.Engine.ClearData(engine.ClearFlags{Orders: req.Orders, Stock: req.Stock, Catalog: req.Catalog})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
