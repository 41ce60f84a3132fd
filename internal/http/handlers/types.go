package handlers

import "time"

// Customer is the per-phone identity document. Table fields hold the "NA"
// sentinel when the customer is not seated.
type Customer struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	PhoneNumber  string      `json:"phoneNumber"`
	VisitCount   int32       `json:"visitCount"`
	Favorites    []string    `json:"favorites"`
	TableNumber  string      `json:"tableNumber"`
	TableName    string      `json:"tableName"`
	FloorNumber  string      `json:"floorNumber"`
	TableStatus  string      `json:"tableStatus"`
	LoginStatus  bool        `json:"loginStatus"`
	CurrentOrder *OrderEntry `json:"currentOrder"`
	FirstVisit   time.Time   `json:"firstVisit"`
	LastVisit    time.Time   `json:"lastVisit"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// OrderItem is one line of a placed order, denormalized from the menu at
// order time so later menu edits never rewrite history.
type OrderItem struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	IsVeg      bool    `json:"isVeg"`
	Notes      string  `json:"notes,omitempty"`
	SpiceLevel string  `json:"spiceLevel,omitempty"`
}

// OrderEntry is one appended order in a customer's ledger.
type OrderEntry struct {
	ID            int64       `json:"id"`
	Items         []OrderItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	Total         float64     `json:"total"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	TableNumber   string      `json:"tableNumber"`
	FloorNumber   string      `json:"floorNumber"`
	OrderDate     time.Time   `json:"orderDate"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// MenuItem is a read-only menu row served to browsing clients.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsVeg       bool    `json:"isVeg"`
	Image       string  `json:"image,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
}
