package handlers

import (
	"encoding/json"
	"net/http"

	"digital-menu-service/internal/queue"
	"digital-menu-service/internal/tablestatus"
	"digital-menu-service/pkg/response"
)

var validPaymentStatuses = map[string]bool{
	"pending":           true,
	"invoice_generated": true,
	"paid":              true,
	"failed":            true,
}

type paymentRequest struct {
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod"`
}

// UpdatePayment records a payment-status transition on a ledger entry. Every
// transition refreshes the owner's snapshot copy; "paid" additionally ends
// the visit by freeing the table and detaching the current-order pointer,
// guarded so a newer order's pointer is never clobbered.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if !validPaymentStatuses[req.PaymentStatus] {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment status")
		return
	}

	var cmdErr error
	if req.PaymentMethod != "" {
		_, cmdErr = h.DB.Exec(ctx, `
			update order_entries set payment_status = $1, payment_method = $2, updated_at = now() where id = $3
		`, req.PaymentStatus, req.PaymentMethod, orderID)
	} else {
		_, cmdErr = h.DB.Exec(ctx, `
			update order_entries set payment_status = $1, updated_at = now() where id = $2
		`, req.PaymentStatus, orderID)
	}
	if cmdErr != nil {
		h.Logger.Error("payment update failed", zapError(cmdErr))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment")
		return
	}

	entry, owner, found, err := h.fetchOrderEntry(ctx, orderID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	if req.PaymentStatus == "paid" {
		// The table frees only once the food has actually been served; a
		// prepaid order leaves the table in its current state.
		cmd, err := h.DB.Exec(ctx, `
			update customers
			set table_status = $1, table_number = $2, table_name = $2, floor_number = $2, updated_at = now()
			where id = $3 and current_order_id = $4 and table_status = $5
		`, string(tablestatus.StatusFree), tableSentinel, owner.CustomerID, orderID, string(tablestatus.StatusServed))
		if err != nil {
			h.Logger.Error("table release failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment")
			return
		}
		if _, err := h.DB.Exec(ctx, `
			update customers set current_order = null, current_order_id = null, updated_at = now()
			where id = $1 and current_order_id = $2
		`, owner.CustomerID, orderID); err != nil {
			h.Logger.Warn("current order clear failed", zapError(err))
		}
		if cmd.RowsAffected() > 0 {
			h.notifyTableStatus(ctx, owner.PhoneNumber)
		}
	} else if err := h.syncCurrentOrder(ctx, entry, owner); err != nil {
		h.Logger.Warn("current order sync failed", zapError(err))
	}

	h.publishEvent(ctx, queue.OrderEvent{
		Type:        queue.RKPaymentUpdated,
		CustomerID:  owner.CustomerID,
		PhoneNumber: owner.PhoneNumber,
		OrderID:     entry.ID,
		Status:      entry.PaymentStatus,
	})
	response.Success(w, entry)
}
