package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"digital-menu-service/internal/invoice"
	"digital-menu-service/internal/phone"
	"digital-menu-service/internal/queue"
	"digital-menu-service/internal/tablestatus"
	"digital-menu-service/pkg/response"
)

// GenerateInvoice renders the bill for a customer's current order and streams
// it as a PDF. Generation is refused until the table is served and a current
// order exists; on success the entry moves to invoice_generated.
func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	customer, found, err := h.fetchCustomerByPhone(ctx, normalized)
	if err != nil {
		h.Logger.Error("invoice lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate invoice")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}

	var currentOrderID *int64
	if err := h.DB.QueryRow(ctx, `select current_order_id from customers where id = $1`, customer.ID).Scan(&currentOrderID); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate invoice")
		return
	}

	if err := tablestatus.CanGenerateInvoice(tablestatus.Status(customer.TableStatus), currentOrderID != nil); err != nil {
		switch {
		case errors.Is(err, tablestatus.ErrNotServed):
			response.Error(w, http.StatusConflict, "NOT_SERVED", "Invoice is only available after the table is served")
		case errors.Is(err, tablestatus.ErrNoCurrentOrder):
			response.Error(w, http.StatusConflict, "NO_CURRENT_ORDER", "Customer has no current order to invoice")
		default:
			response.Error(w, http.StatusConflict, "INVOICE_UNAVAILABLE", "Invoice cannot be generated")
		}
		return
	}

	entry, owner, found, err := h.fetchOrderEntry(ctx, *currentOrderID)
	if err != nil || !found {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate invoice")
		return
	}

	if _, err := h.DB.Exec(ctx, `
		update order_entries set payment_status = 'invoice_generated', updated_at = now() where id = $1
	`, entry.ID); err != nil {
		h.Logger.Error("invoice status update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate invoice")
		return
	}
	entry.PaymentStatus = "invoice_generated"
	if err := h.syncCurrentOrder(ctx, entry, owner); err != nil {
		h.Logger.Warn("current order sync failed", zapError(err))
	}

	doc := invoice.Invoice{
		RestaurantName: h.Config.RestaurantName,
		OrderID:        fmt.Sprint(entry.ID),
		CustomerName:   customer.Name,
		CustomerPhone:  customer.PhoneNumber,
		TableNumber:    entry.TableNumber,
		FloorNumber:    entry.FloorNumber,
		Subtotal:       entry.Subtotal,
		Tax:            entry.Tax,
		Total:          entry.Total,
		PaymentMethod:  entry.PaymentMethod,
		GeneratedAt:    time.Now(),
	}
	for _, item := range entry.Items {
		doc.Items = append(doc.Items, invoice.LineItem{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Notes:      item.Notes,
			SpiceLevel: item.SpiceLevel,
		})
	}

	data, err := invoice.Build(doc)
	if err != nil {
		h.Logger.Error("invoice render failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate invoice")
		return
	}

	h.publishEvent(ctx, queue.OrderEvent{
		Type:        queue.RKPaymentUpdated,
		CustomerID:  customer.ID,
		PhoneNumber: customer.PhoneNumber,
		OrderID:     entry.ID,
		Status:      entry.PaymentStatus,
	})

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", doc.Filename()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
