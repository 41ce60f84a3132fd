package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"digital-menu-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// menuNameRank groups dishes within a veg tier by name prefix so veg dishes
// lead, followed by chicken, then prawns, then everything else.
func menuNameRank(name string) int {
	switch {
	case strings.HasPrefix(name, "veg"):
		return 1
	case strings.HasPrefix(name, "chicken"):
		return 2
	case strings.HasPrefix(name, "prawn"):
		return 3
	}
	return 4
}

// sortMenuItems puts vegetarian dishes first. Within each tier items are
// ordered by name prefix rank and alphabetically after that.
func sortMenuItems(items []MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsVeg != b.IsVeg {
			return a.IsVeg
		}
		aName := strings.ToLower(a.Name)
		bName := strings.ToLower(b.Name)
		aRank := menuNameRank(aName)
		bRank := menuNameRank(bName)
		if aRank != bRank {
			return aRank < bRank
		}
		return aName < bName
	})
}

func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.fetchMenuItems(r.Context(), "")
	if err != nil {
		h.Logger.Error("menu list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}
	sortMenuItems(items)
	response.Success(w, items)
}

func (h *Handler) ListMenuByCategory(w http.ResponseWriter, r *http.Request) {
	category := readPathString(r, "category")
	items, err := h.fetchMenuItems(r.Context(), category)
	if err != nil {
		h.Logger.Error("menu category list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}
	sortMenuItems(items)
	response.Success(w, items)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `
		select distinct category from menu_items where is_available order by category
	`)
	if err != nil {
		h.Logger.Error("category list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
		return
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
			return
		}
		categories = append(categories, category)
	}
	response.Success(w, categories)
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	menuItemID := readPathString(r, "menuItemId")

	var item MenuItem
	var description, image pgtype.Text
	err := h.DB.QueryRow(r.Context(), `
		select id, name, description, price, category, is_veg, image, is_available
		from menu_items
		where id = $1
	`, menuItemID).Scan(
		&item.ID, &item.Name, &description, &item.Price,
		&item.Category, &item.IsVeg, &image, &item.IsAvailable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu item not found")
			return
		}
		h.Logger.Error("menu item lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu item")
		return
	}
	if value := textPtr(description); value != nil {
		item.Description = *value
	}
	if value := textPtr(image); value != nil {
		item.Image = *value
	}
	response.Success(w, item)
}

func (h *Handler) fetchMenuItems(ctx context.Context, category string) ([]MenuItem, error) {
	query := `
		select id, name, description, price, category, is_veg, image, is_available
		from menu_items
		where is_available
	`
	args := []any{}
	if category != "" {
		query += ` and category = $1`
		args = append(args, category)
	}
	query += ` order by name`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]MenuItem, 0)
	for rows.Next() {
		var item MenuItem
		var description, image pgtype.Text
		if err := rows.Scan(
			&item.ID, &item.Name, &description, &item.Price,
			&item.Category, &item.IsVeg, &image, &item.IsAvailable,
		); err != nil {
			return nil, err
		}
		if value := textPtr(description); value != nil {
			item.Description = *value
		}
		if value := textPtr(image); value != nil {
			item.Image = *value
		}
		items = append(items, item)
	}
	return items, nil
}
