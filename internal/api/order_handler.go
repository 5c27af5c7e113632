package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagehubcc/titan-sniper/internal/core"
)

// ListOrders returns the order history.
func (a *API) ListOrders(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, a.mgr.Orders())
}

// DeleteOrder removes one history record.
func (a *API) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	if !a.mgr.DeleteOrder(orderID) {
		WriteError(w, core.NewAppError(core.ErrNotFound, "order record not found"))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": orderID, "status": "deleted"})
}

// ClearOrders drops the whole order history.
func (a *API) ClearOrders(w http.ResponseWriter, r *http.Request) {
	count := a.mgr.ClearOrders()
	WriteJSON(w, http.StatusOK, map[string]int{"cleared": count})
}
