package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"digital-menu-service/internal/phone"
	"digital-menu-service/pkg/response"

	"github.com/jackc/pgx/v5"
)

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	var favorites []string
	err := h.DB.QueryRow(ctx, `select favorites from customers where phone_number = $1`, normalized).Scan(&favorites)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
			return
		}
		h.Logger.Error("favorites lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load favorites")
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	response.Success(w, favorites)
}

type favoriteRequest struct {
	MenuItemID string `json:"menuItemId"`
}

// AddFavorite appends a menu item id to the customer's favorites. Adding an
// id that is already present is a no-op rather than a duplicate.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))

	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MenuItemID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Menu item ID is required")
		return
	}

	cmd, err := h.DB.Exec(ctx, `
		update customers
		set favorites = array_append(favorites, $1), updated_at = now()
		where phone_number = $2 and not ($1 = any(favorites))
	`, req.MenuItemID, normalized)
	if err != nil {
		h.Logger.Error("favorite add failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add favorite")
		return
	}
	if cmd.RowsAffected() == 0 {
		// Either the customer is unknown or the item is already a favorite.
		var exists bool
		if err := h.DB.QueryRow(ctx, `select exists(select 1 from customers where phone_number = $1)`, normalized).Scan(&exists); err != nil || !exists {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
			return
		}
	}

	h.respondFavorites(w, r, normalized)
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	normalized := phone.Normalize(readPathString(r, "phoneNumber"))
	menuItemID := readPathString(r, "menuItemId")

	cmd, err := h.DB.Exec(ctx, `
		update customers
		set favorites = array_remove(favorites, $1), updated_at = now()
		where phone_number = $2
	`, menuItemID, normalized)
	if err != nil {
		h.Logger.Error("favorite remove failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove favorite")
		return
	}
	if cmd.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Customer not found")
		return
	}

	h.respondFavorites(w, r, normalized)
}

func (h *Handler) respondFavorites(w http.ResponseWriter, r *http.Request, phoneNumber string) {
	var favorites []string
	if err := h.DB.QueryRow(r.Context(), `select favorites from customers where phone_number = $1`, phoneNumber).Scan(&favorites); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load favorites")
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	response.Success(w, favorites)
}
