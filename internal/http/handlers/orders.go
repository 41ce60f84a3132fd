package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"digital-menu-service/internal/phone"
	"digital-menu-service/internal/queue"
	"digital-menu-service/internal/utils"
	"digital-menu-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const taxRate = 0.05

const ledgerInsertRetries = 3

func roundAmount(value float64) float64 {
	return math.Round(value*100) / 100
}

// computeTotals derives the money fields from the submitted lines. Amounts
// sent by the client are ignored; only price and quantity are trusted after
// validation.
func computeTotals(items []OrderItem) (subtotal, tax, total float64) {
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = roundAmount(subtotal)
	tax = roundAmount(subtotal * taxRate)
	total = roundAmount(subtotal + tax)
	return subtotal, tax, total
}

func validateOrderItems(items []OrderItem) string {
	if len(items) == 0 {
		return "Order must contain at least one item"
	}
	for _, item := range items {
		if item.MenuItemID == "" || item.Name == "" {
			return "Every item needs a menu item ID and name"
		}
		if item.Quantity < 1 {
			return "Item quantities must be at least 1"
		}
		if item.Price <= 0 {
			return "Item prices must be positive"
		}
	}
	return ""
}

type createOrderRequest struct {
	PhoneNumber string      `json:"phoneNumber"`
	Items       []OrderItem `json:"items"`
}

// CreateOrder appends a new entry to the customer's ledger and points the
// denormalized current-order snapshot at it. Placing an order also counts as
// a visit when the last one is old enough.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	normalized := phone.Normalize(req.PhoneNumber)
	if len(normalized) != 10 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number must contain 10 digits")
		return
	}
	if msg := validateOrderItems(req.Items); msg != "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	customer, found, err := h.fetchCustomerByPhone(ctx, normalized)
	if err != nil {
		h.Logger.Error("order create lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}

	ledgerID, err := h.ensureLedger(ctx, customer.ID)
	if err != nil {
		h.Logger.Error("ledger create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	subtotal, tax, total := computeTotals(req.Items)
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	entry := OrderEntry{
		Items:         req.Items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Status:        "pending",
		PaymentStatus: "pending",
		TableNumber:   customer.TableNumber,
		FloorNumber:   customer.FloorNumber,
	}

	insert := `
		insert into order_entries (
			ledger_id, items, subtotal, tax, total,
			status, payment_status, table_number, floor_number,
			order_date, created_at, updated_at
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now(), now())
		returning id, order_date, created_at, updated_at
	`
	err = h.DB.QueryRow(ctx, insert,
		ledgerID, itemsJSON, subtotal, tax, total,
		entry.Status, entry.PaymentStatus, entry.TableNumber, entry.FloorNumber,
	).Scan(&entry.ID, &entry.OrderDate, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		h.Logger.Error("order insert failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	snapshot, err := json.Marshal(entry)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}
	if _, err := h.DB.Exec(ctx, `
		update customers set current_order = $1, current_order_id = $2, updated_at = now() where id = $3
	`, snapshot, entry.ID, customer.ID); err != nil {
		h.Logger.Error("current order snapshot failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	if shouldCountVisit(customer.LastVisit, time.Now()) {
		if _, err := h.DB.Exec(ctx, `
			update customers set visit_count = visit_count + 1, last_visit = now(), updated_at = now() where id = $1
		`, customer.ID); err != nil {
			h.Logger.Warn("visit update failed", zapError(err))
		}
	}

	h.publishEvent(ctx, queue.OrderEvent{
		Type:        queue.RKOrderPlaced,
		CustomerID:  customer.ID,
		PhoneNumber: normalized,
		OrderID:     entry.ID,
		Status:      entry.Status,
		TableNumber: entry.TableNumber,
		FloorNumber: entry.FloorNumber,
	})
	response.Created(w, entry)
}

// ensureLedger finds or creates the one ledger row a customer ever gets.
// Concurrent first orders can race on the unique customer index, so the
// insert is retried with a short linear backoff that resolves to the row the
// winner created.
func (h *Handler) ensureLedger(ctx context.Context, customerID int64) (int64, error) {
	var ledgerID int64
	for attempt := 1; attempt <= ledgerInsertRetries; attempt++ {
		err := h.DB.QueryRow(ctx, `select id from order_ledgers where customer_id = $1`, customerID).Scan(&ledgerID)
		if err == nil {
			return ledgerID, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}

		err = h.DB.QueryRow(ctx, `
			insert into order_ledgers (customer_id, created_at, updated_at)
			values ($1, now(), now())
			returning id
		`, customerID).Scan(&ledgerID)
		if err == nil {
			return ledgerID, nil
		}

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
			return 0, err
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	// Final read after exhausting insert attempts.
	err := h.DB.QueryRow(ctx, `select id from order_ledgers where customer_id = $1`, customerID).Scan(&ledgerID)
	return ledgerID, err
}

// ListCustomerOrders returns a customer's ledger entries, newest first.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, err := readPathInt64(r, "customerId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Customer ID is required")
		return
	}

	query := `
		select e.id, e.items, e.subtotal, e.tax, e.total,
		       e.status, e.payment_status, coalesce(e.payment_method, ''),
		       e.table_number, e.floor_number, e.order_date, e.created_at, e.updated_at
		from order_entries e
		join order_ledgers l on l.id = e.ledger_id
		where l.customer_id = $1
		order by e.order_date desc
	`
	rows, err := h.DB.Query(ctx, query, customerID)
	if err != nil {
		h.Logger.Error("order list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	defer rows.Close()

	entries := make([]OrderEntry, 0)
	for rows.Next() {
		entry, err := scanOrderEntry(rows)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
			return
		}
		entries = append(entries, entry)
	}
	response.Success(w, entries)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	entry, _, found, err := h.fetchOrderEntry(ctx, orderID)
	if err != nil {
		h.Logger.Error("order lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	response.Success(w, entry)
}

// DeleteOrder removes one ledger entry. The owner's current-order pointer is
// cleared only when it still targets the removed entry.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	_, owner, found, err := h.fetchOrderEntry(ctx, orderID)
	if err != nil {
		h.Logger.Error("order delete lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete order")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	if _, err := h.DB.Exec(ctx, `delete from order_entries where id = $1`, orderID); err != nil {
		h.Logger.Error("order delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete order")
		return
	}
	if _, err := h.DB.Exec(ctx, `
		update customers set current_order = null, current_order_id = null, updated_at = now()
		where id = $1 and current_order_id = $2
	`, owner.CustomerID, orderID); err != nil {
		h.Logger.Warn("current order clear failed", zapError(err))
	}

	response.Success(w, map[string]any{"deleted": true})
}

// DeleteCustomerOrders clears a customer's whole order history and their
// current-order pointer.
func (h *Handler) DeleteCustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, err := readPathInt64(r, "customerId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Customer ID is required")
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		delete from order_entries
		where ledger_id in (select id from order_ledgers where customer_id = $1)
	`, customerID)
	if err != nil {
		h.Logger.Error("order history delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete orders")
		return
	}
	if _, err := h.DB.Exec(ctx, `
		update customers set current_order = null, current_order_id = null, updated_at = now() where id = $1
	`, customerID); err != nil {
		h.Logger.Warn("current order clear failed", zapError(err))
	}

	response.Success(w, map[string]any{"deleted": cmd.RowsAffected()})
}

type orderOwner struct {
	CustomerID  int64
	PhoneNumber string
	TableStatus string
}

func (h *Handler) fetchOrderEntry(ctx context.Context, orderID int64) (OrderEntry, orderOwner, bool, error) {
	query := `
		select e.id, e.items, e.subtotal, e.tax, e.total,
		       e.status, e.payment_status, coalesce(e.payment_method, ''),
		       e.table_number, e.floor_number, e.order_date, e.created_at, e.updated_at,
		       c.id, c.phone_number, c.table_status
		from order_entries e
		join order_ledgers l on l.id = e.ledger_id
		join customers c on c.id = l.customer_id
		where e.id = $1
	`
	var entry OrderEntry
	var owner orderOwner
	var itemsJSON []byte
	var subtotal, tax, total pgtype.Numeric
	err := h.DB.QueryRow(ctx, query, orderID).Scan(
		&entry.ID, &itemsJSON, &subtotal, &tax, &total,
		&entry.Status, &entry.PaymentStatus, &entry.PaymentMethod,
		&entry.TableNumber, &entry.FloorNumber, &entry.OrderDate, &entry.CreatedAt, &entry.UpdatedAt,
		&owner.CustomerID, &owner.PhoneNumber, &owner.TableStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderEntry{}, orderOwner{}, false, nil
		}
		return OrderEntry{}, orderOwner{}, false, err
	}
	entry.Subtotal = utils.NumericToFloat64(subtotal)
	entry.Tax = utils.NumericToFloat64(tax)
	entry.Total = utils.NumericToFloat64(total)
	if err := json.Unmarshal(itemsJSON, &entry.Items); err != nil {
		return OrderEntry{}, orderOwner{}, false, err
	}
	return entry, owner, true, nil
}

// syncCurrentOrder rewrites the owner's snapshot when it still points at the
// entry; stale pointers from a newer order are left untouched.
func (h *Handler) syncCurrentOrder(ctx context.Context, entry OrderEntry, owner orderOwner) error {
	snapshot, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = h.DB.Exec(ctx, `
		update customers set current_order = $1, updated_at = now()
		where id = $2 and current_order_id = $3
	`, snapshot, owner.CustomerID, entry.ID)
	return err
}

type entryScanner interface {
	Scan(dest ...any) error
}

func scanOrderEntry(row entryScanner) (OrderEntry, error) {
	var entry OrderEntry
	var itemsJSON []byte
	var subtotal, tax, total pgtype.Numeric
	if err := row.Scan(
		&entry.ID, &itemsJSON, &subtotal, &tax, &total,
		&entry.Status, &entry.PaymentStatus, &entry.PaymentMethod,
		&entry.TableNumber, &entry.FloorNumber, &entry.OrderDate, &entry.CreatedAt, &entry.UpdatedAt,
	); err != nil {
		return OrderEntry{}, err
	}
	entry.Subtotal = utils.NumericToFloat64(subtotal)
	entry.Tax = utils.NumericToFloat64(tax)
	entry.Total = utils.NumericToFloat64(total)
	if err := json.Unmarshal(itemsJSON, &entry.Items); err != nil {
		return OrderEntry{}, err
	}
	return entry, nil
}
