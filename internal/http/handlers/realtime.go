package handlers

import (
	"context"

	"digital-menu-service/internal/queue"
)

// notifyTableStatus wakes the websocket listeners for one customer. The
// notification payload is the phone number; listeners refetch the snapshot.
func (h *Handler) notifyTableStatus(ctx context.Context, phoneNumber string) {
	if _, err := h.DB.Exec(ctx, `select pg_notify('table_status_updates', $1)`, phoneNumber); err != nil && h.Logger != nil {
		h.Logger.Warn("table status notify failed", zapError(err))
	}
}

// publishEvent forwards a domain event to the broker when one is configured.
// Event delivery is best effort and never fails the request.
func (h *Handler) publishEvent(ctx context.Context, evt queue.OrderEvent) {
	if h.Queue == nil {
		return
	}
	if err := h.Queue.PublishJSON(ctx, queue.EventsExchange, evt.Type, evt); err != nil && h.Logger != nil {
		h.Logger.Warn("event publish failed", zapError(err))
	}
}
