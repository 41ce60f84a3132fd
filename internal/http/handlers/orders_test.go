package handlers

import "testing"

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name         string
		items        []OrderItem
		wantSubtotal float64
		wantTax      float64
		wantTotal    float64
	}{
		{
			name: "single item",
			items: []OrderItem{
				{Price: 100, Quantity: 1},
			},
			wantSubtotal: 100,
			wantTax:      5,
			wantTotal:    105,
		},
		{
			name: "multiple lines with quantities",
			items: []OrderItem{
				{Price: 250, Quantity: 2},
				{Price: 100, Quantity: 1},
			},
			wantSubtotal: 600,
			wantTax:      30,
			wantTotal:    630,
		},
		{
			name: "fractional prices round to paise",
			items: []OrderItem{
				{Price: 99.99, Quantity: 3},
			},
			wantSubtotal: 299.97,
			wantTax:      15,
			wantTotal:    314.97,
		},
		{
			name:         "empty",
			items:        nil,
			wantSubtotal: 0,
			wantTax:      0,
			wantTotal:    0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subtotal, tax, total := computeTotals(tc.items)
			if subtotal != tc.wantSubtotal {
				t.Fatalf("subtotal: expected %v, got %v", tc.wantSubtotal, subtotal)
			}
			if tax != tc.wantTax {
				t.Fatalf("tax: expected %v, got %v", tc.wantTax, tax)
			}
			if total != tc.wantTotal {
				t.Fatalf("total: expected %v, got %v", tc.wantTotal, total)
			}
		})
	}
}

func TestValidateOrderItems(t *testing.T) {
	valid := []OrderItem{{MenuItemID: "m1", Name: "Momos", Price: 150, Quantity: 1}}
	if msg := validateOrderItems(valid); msg != "" {
		t.Fatalf("expected valid items, got %q", msg)
	}

	cases := []struct {
		name  string
		items []OrderItem
	}{
		{"empty order", nil},
		{"zero quantity", []OrderItem{{MenuItemID: "m1", Name: "Momos", Price: 150, Quantity: 0}}},
		{"negative quantity", []OrderItem{{MenuItemID: "m1", Name: "Momos", Price: 150, Quantity: -2}}},
		{"negative price", []OrderItem{{MenuItemID: "m1", Name: "Momos", Price: -10, Quantity: 1}}},
		{"zero price", []OrderItem{{MenuItemID: "m1", Name: "Momos", Price: 0, Quantity: 1}}},
		{"missing menu item id", []OrderItem{{Name: "Momos", Price: 150, Quantity: 1}}},
		{"missing name", []OrderItem{{MenuItemID: "m1", Price: 150, Quantity: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if msg := validateOrderItems(tc.items); msg == "" {
				t.Fatal("expected a validation message")
			}
		})
	}
}

func TestValidOrderAndPaymentStatuses(t *testing.T) {
	for _, status := range []string{"pending", "confirmed", "preparing", "completed", "cancelled"} {
		if !validOrderStatuses[status] {
			t.Fatalf("expected %q to be a valid order status", status)
		}
	}
	// ready and served are table service stages, not order statuses.
	for _, status := range []string{"ready", "served", "delivered"} {
		if validOrderStatuses[status] {
			t.Fatalf("%q accepted as an order status", status)
		}
	}

	for _, status := range []string{"pending", "invoice_generated", "paid", "failed"} {
		if !validPaymentStatuses[status] {
			t.Fatalf("expected %q to be a valid payment status", status)
		}
	}
	if validPaymentStatuses["refunded"] {
		t.Fatal("unexpected payment status accepted")
	}
}
