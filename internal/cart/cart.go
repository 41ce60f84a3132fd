package cart

import (
	"fmt"
	"strconv"
	"time"
)

type SpiceLevel string

const (
	SpiceNone    SpiceLevel = "no-spicy"
	SpiceLess    SpiceLevel = "less-spicy"
	SpiceRegular SpiceLevel = "regular"
	SpiceMore    SpiceLevel = "more-spicy"
)

func ValidSpiceLevel(level SpiceLevel) bool {
	switch level {
	case SpiceNone, SpiceLess, SpiceRegular, SpiceMore:
		return true
	}
	return false
}

// Item is one cart line. Quantity may diverge from OrderedQuantity to
// represent a pending, unsaved edit; OrderedQuantity is only advanced by
// MarkOrdered after a submission succeeds. A line with Quantity 0 and a
// nonzero OrderedQuantity is a pending removal awaiting the next submission.
type Item struct {
	ID              string     `json:"id"`
	MenuItemID      string     `json:"menuItemId"`
	Name            string     `json:"name"`
	Price           string     `json:"price"`
	Quantity        int        `json:"quantity"`
	IsVeg           bool       `json:"isVeg"`
	Image           string     `json:"image,omitempty"`
	Notes           string     `json:"notes"`
	SpiceLevel      SpiceLevel `json:"spiceLevel"`
	IsOrdered       bool       `json:"isOrdered"`
	OrderedQuantity int        `json:"orderedQuantity"`
}

func (i Item) PriceValue() float64 {
	value, err := strconv.ParseFloat(i.Price, 64)
	if err != nil {
		return 0
	}
	return value
}

func (i Item) LineTotal() float64 {
	return i.PriceValue() * float64(i.Quantity)
}

type Cart struct {
	Items     []Item  `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

func Empty() Cart {
	return Cart{Items: []Item{}}
}

func recompute(items []Item) Cart {
	var total float64
	var count int
	for _, item := range items {
		total += item.LineTotal()
		count += item.Quantity
	}
	return Cart{Items: items, Total: total, ItemCount: count}
}

// Add merges the item into an existing line for the same menu item (quantity
// +1) or appends a new line with quantity 1. New line ids are derived from the
// menu item id and the timestamp, unique within a session.
func Add(c Cart, item Item, now time.Time) Cart {
	for idx, existing := range c.Items {
		if existing.MenuItemID == item.MenuItemID {
			items := cloneItems(c.Items)
			items[idx].Quantity++
			return recompute(items)
		}
	}

	item.ID = fmt.Sprintf("%s-%d", item.MenuItemID, now.UnixMilli())
	item.Quantity = 1
	if item.SpiceLevel == "" {
		item.SpiceLevel = SpiceRegular
	}
	item.IsOrdered = false
	item.OrderedQuantity = 0

	items := cloneItems(c.Items)
	items = append(items, item)
	return recompute(items)
}

// Remove drops the line outright unless it carries a previously ordered
// quantity, in which case it is kept at quantity 0 so the removal reaches the
// server on the next submission.
func Remove(c Cart, id string) Cart {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != id {
			items = append(items, item)
			continue
		}
		if item.OrderedQuantity > 0 {
			item.Quantity = 0
			items = append(items, item)
		}
	}
	return recompute(items)
}

// SetQuantity is a no-op for quantities below 1.
func SetQuantity(c Cart, id string, quantity int) Cart {
	if quantity < 1 {
		return c
	}
	items := cloneItems(c.Items)
	for idx := range items {
		if items[idx].ID == id {
			items[idx].Quantity = quantity
		}
	}
	return recompute(items)
}

func SetNotes(c Cart, id string, notes string) Cart {
	items := cloneItems(c.Items)
	for idx := range items {
		if items[idx].ID == id {
			items[idx].Notes = notes
		}
	}
	return Cart{Items: items, Total: c.Total, ItemCount: c.ItemCount}
}

func SetSpiceLevel(c Cart, id string, level SpiceLevel) Cart {
	items := cloneItems(c.Items)
	for idx := range items {
		if items[idx].ID == id {
			items[idx].SpiceLevel = level
		}
	}
	return Cart{Items: items, Total: c.Total, ItemCount: c.ItemCount}
}

func Clear(Cart) Cart {
	return Empty()
}

// MarkOrdered advances the ordered baseline after a successful submission:
// every surviving line gets OrderedQuantity = Quantity, and pending removals
// (quantity 0) are finalized by dropping them.
func MarkOrdered(c Cart) Cart {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		item.IsOrdered = true
		item.OrderedQuantity = item.Quantity
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	return recompute(items)
}

// HasUnordered reports whether any line diverges from its submitted baseline:
// new lines, quantity edits, and pending removals all count.
func HasUnordered(c Cart) bool {
	for _, item := range c.Items {
		if item.Quantity != item.OrderedQuantity {
			return true
		}
	}
	return false
}

// PendingDelta sums the per-line quantity drift against the ordered baseline,
// split into added and removed units. Used for user-facing messaging only.
func PendingDelta(c Cart) (additions int, removals int) {
	for _, item := range c.Items {
		diff := item.Quantity - item.OrderedQuantity
		if diff > 0 {
			additions += diff
		} else {
			removals -= diff
		}
	}
	return additions, removals
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
