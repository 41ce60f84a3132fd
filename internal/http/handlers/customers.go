package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"digital-menu-service/internal/phone"
	"digital-menu-service/internal/queue"
	"digital-menu-service/internal/tablestatus"
	"digital-menu-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	tableSentinel = "NA"

	// A returning customer counts as a new visit only after this much time
	// has passed since their last recorded visit.
	visitGateInterval = 5 * time.Hour
)

type registerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Register signs a customer in by phone number, creating the record on first
// contact. A returning customer's name is refreshed whenever the submitted
// one differs, but the visit counter only advances when the previous visit is
// old enough, so page reloads within the same meal do not inflate it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name is required")
		return
	}
	normalized := phone.Normalize(req.Phone)
	if len(normalized) != 10 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number must contain 10 digits")
		return
	}

	customer, found, err := h.fetchCustomerByPhone(ctx, normalized)
	if err != nil {
		h.Logger.Error("register lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register customer")
		return
	}

	if found {
		if err := h.recordVisit(ctx, customer, req.Name); err != nil {
			h.Logger.Error("register visit update failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register customer")
			return
		}
		customer, _, err = h.fetchCustomerByPhone(ctx, normalized)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register customer")
			return
		}
		response.Success(w, customer)
		return
	}

	insert := `
		insert into customers (
			name, phone_number, visit_count, favorites,
			table_number, table_name, floor_number, table_status,
			login_status, first_visit, last_visit, created_at, updated_at
		)
		values ($1, $2, 1, '{}', $3, $3, $3, $4, true, now(), now(), now(), now())
	`
	_, err = h.DB.Exec(ctx, insert, req.Name, normalized, tableSentinel, string(tablestatus.StatusFree))
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
			h.Logger.Error("register insert failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register customer")
			return
		}
		// Lost the insert race: another request created the same phone.
		if _, err := h.DB.Exec(ctx, `update customers set name = $1, login_status = true, updated_at = now() where phone_number = $2`, req.Name, normalized); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register customer")
			return
		}
	}

	customer, found, err = h.fetchCustomerByPhone(ctx, normalized)
	if err != nil || !found {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register customer")
		return
	}
	response.Created(w, customer)
}

// shouldCountVisit reports whether enough time has passed since the last
// recorded visit for a new one to count.
func shouldCountVisit(lastVisit, now time.Time) bool {
	return now.Sub(lastVisit) >= visitGateInterval
}

// registrationName picks the display name to keep for a returning customer.
// A differing submitted name always wins; the name refresh is not subject to
// the visit gate.
func registrationName(current, submitted string) string {
	if submitted != "" && submitted != current {
		return submitted
	}
	return current
}

func (h *Handler) recordVisit(ctx context.Context, customer Customer, submittedName string) error {
	name := registrationName(customer.Name, submittedName)
	if shouldCountVisit(customer.LastVisit, time.Now()) {
		_, err := h.DB.Exec(ctx, `
			update customers
			set name = $1, visit_count = visit_count + 1, last_visit = now(), login_status = true, updated_at = now()
			where id = $2
		`, name, customer.ID)
		return err
	}
	_, err := h.DB.Exec(ctx, `update customers set name = $1, login_status = true, updated_at = now() where id = $2`, name, customer.ID)
	return err
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	customer, found, err := h.fetchCustomerByPhone(ctx, normalized)
	if err != nil {
		h.Logger.Error("customer lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load customer")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}
	response.Success(w, customer)
}

type seatingRequest struct {
	TableNumber string `json:"tableNumber"`
	TableName   string `json:"tableName"`
	FloorNumber string `json:"floorNumber"`
}

// Seat assigns a table to a customer whose table is currently free and moves
// them to occupied. Seating an already seated customer is a conflict.
func (h *Handler) Seat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	var req seatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.TableNumber == "" || req.FloorNumber == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Table number and floor number are required")
		return
	}
	if req.TableName == "" {
		req.TableName = req.TableNumber
	}

	cmd, err := h.DB.Exec(ctx, `
		update customers
		set table_number = $1, table_name = $2, floor_number = $3, table_status = $4, updated_at = now()
		where phone_number = $5 and table_status = $6
	`, req.TableNumber, req.TableName, req.FloorNumber, string(tablestatus.StatusOccupied), normalized, string(tablestatus.StatusFree))
	if err != nil {
		h.Logger.Error("seating update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to assign table")
		return
	}
	if cmd.RowsAffected() == 0 {
		_, found, err := h.fetchCustomerByPhone(ctx, normalized)
		if err == nil && !found {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
			return
		}
		response.Error(w, http.StatusConflict, "TABLE_NOT_FREE", "Customer is already seated")
		return
	}

	h.notifyTableStatus(ctx, normalized)
	customer, _, err := h.fetchCustomerByPhone(ctx, normalized)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load customer")
		return
	}
	h.publishEvent(ctx, queue.OrderEvent{
		Type:        queue.RKTableStatusUpdated,
		CustomerID:  customer.ID,
		PhoneNumber: normalized,
		Status:      customer.TableStatus,
		TableNumber: customer.TableNumber,
		FloorNumber: customer.FloorNumber,
	})
	response.Success(w, customer)
}

type tableStatusPayload struct {
	CustomerID  int64     `json:"customerId"`
	PhoneNumber string    `json:"phoneNumber"`
	TableStatus string    `json:"tableStatus"`
	TableNumber string    `json:"tableNumber"`
	FloorNumber string    `json:"floorNumber"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetTableStatus is the REST fallback for clients whose websocket is down.
func (h *Handler) GetTableStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	var payload tableStatusPayload
	err := h.DB.QueryRow(ctx, `
		select id, phone_number, table_status, table_number, floor_number, updated_at
		from customers
		where phone_number = $1
	`, normalized).Scan(
		&payload.CustomerID,
		&payload.PhoneNumber,
		&payload.TableStatus,
		&payload.TableNumber,
		&payload.FloorNumber,
		&payload.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
			return
		}
		h.Logger.Error("table status lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load table status")
		return
	}
	response.Success(w, payload)
}

type tableStatusRequest struct {
	TableStatus string `json:"tableStatus"`
}

// UpdateTableStatus is the staff-side transition endpoint driving the
// occupied -> preparing -> ready -> served progression.
func (h *Handler) UpdateTableStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	var req tableStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if !tablestatus.Valid(tablestatus.Status(req.TableStatus)) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid table status")
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update customers set table_status = $1, updated_at = now() where phone_number = $2
	`, req.TableStatus, normalized)
	if err != nil {
		h.Logger.Error("table status update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update table status")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}

	h.notifyTableStatus(ctx, normalized)
	customer, _, err := h.fetchCustomerByPhone(ctx, normalized)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load customer")
		return
	}
	h.publishEvent(ctx, queue.OrderEvent{
		Type:        queue.RKTableStatusUpdated,
		CustomerID:  customer.ID,
		PhoneNumber: normalized,
		Status:      customer.TableStatus,
		TableNumber: customer.TableNumber,
		FloorNumber: customer.FloorNumber,
	})
	response.Success(w, customer)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	cmd, err := h.DB.Exec(ctx, `update customers set login_status = false, updated_at = now() where phone_number = $1`, normalized)
	if err != nil {
		h.Logger.Error("logout failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log out")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}
	response.Success(w, map[string]any{"loggedOut": true})
}

func (h *Handler) fetchCustomerByPhone(ctx context.Context, phoneNumber string) (Customer, bool, error) {
	query := `
		select id, name, phone_number, visit_count, favorites,
		       table_number, table_name, floor_number, table_status,
		       login_status, current_order, first_visit, last_visit, created_at, updated_at
		from customers
		where phone_number = $1
	`
	var customer Customer
	var currentOrder []byte
	err := h.DB.QueryRow(ctx, query, phoneNumber).Scan(
		&customer.ID,
		&customer.Name,
		&customer.PhoneNumber,
		&customer.VisitCount,
		&customer.Favorites,
		&customer.TableNumber,
		&customer.TableName,
		&customer.FloorNumber,
		&customer.TableStatus,
		&customer.LoginStatus,
		&currentOrder,
		&customer.FirstVisit,
		&customer.LastVisit,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, false, nil
		}
		return Customer{}, false, err
	}
	if customer.Favorites == nil {
		customer.Favorites = []string{}
	}
	if len(currentOrder) > 0 {
		var entry OrderEntry
		if err := json.Unmarshal(currentOrder, &entry); err == nil {
			customer.CurrentOrder = &entry
		}
	}
	return customer, true, nil
}
