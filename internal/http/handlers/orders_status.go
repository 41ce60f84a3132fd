package handlers

import (
	"encoding/json"
	"net/http"

	"digital-menu-service/internal/queue"
	"digital-menu-service/pkg/response"
)

// Order status is its own lifecycle, distinct from the per-table service
// stages; ready and served belong to the table, not the order.
var validOrderStatuses = map[string]bool{
	"pending":   true,
	"confirmed": true,
	"preparing": true,
	"completed": true,
	"cancelled": true,
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves a ledger entry through the kitchen lifecycle. A
// terminal status detaches the entry from the owner's current-order pointer;
// any other status keeps the denormalized snapshot in sync.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if !validOrderStatuses[req.Status] {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order status")
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update order_entries set status = $1, updated_at = now() where id = $2
	`, req.Status, orderID)
	if err != nil {
		h.Logger.Error("order status update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order status")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	entry, owner, found, err := h.fetchOrderEntry(ctx, orderID)
	if err != nil || !found {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}

	if req.Status == "completed" || req.Status == "cancelled" {
		if _, err := h.DB.Exec(ctx, `
			update customers set current_order = null, current_order_id = null, updated_at = now()
			where id = $1 and current_order_id = $2
		`, owner.CustomerID, orderID); err != nil {
			h.Logger.Warn("current order clear failed", zapError(err))
		}
	} else if err := h.syncCurrentOrder(ctx, entry, owner); err != nil {
		h.Logger.Warn("current order sync failed", zapError(err))
	}

	h.publishEvent(ctx, queue.OrderEvent{
		Type:        queue.RKOrderStatusUpdated,
		CustomerID:  owner.CustomerID,
		PhoneNumber: owner.PhoneNumber,
		OrderID:     entry.ID,
		Status:      entry.Status,
	})
	response.Success(w, entry)
}
