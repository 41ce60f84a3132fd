package invoice

import (
	"bytes"
	"testing"
	"time"
)

func sampleInvoice() Invoice {
	return Invoice{
		RestaurantName: "Spice Garden",
		OrderID:        "42",
		CustomerName:   "Asha",
		CustomerPhone:  "9876543210",
		TableNumber:    "T4",
		FloorNumber:    "1",
		Items: []LineItem{
			{Name: "Veg Momos", Quantity: 2, Price: 150, SpiceLevel: "more-spicy"},
			{Name: "Lemon Soda", Quantity: 1, Price: 100, Notes: "less ice"},
		},
		Subtotal:      400,
		Tax:           20,
		Total:         420,
		PaymentMethod: "cash",
		GeneratedAt:   time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC),
	}
}

func TestBuildProducesPDF(t *testing.T) {
	data, err := Build(sampleInvoice())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("not a PDF document, starts with %q", data[:4])
	}
}

func TestBuildHandlesMissingOptionalFields(t *testing.T) {
	inv := sampleInvoice()
	inv.RestaurantName = ""
	inv.CustomerName = ""
	inv.TableNumber = "NA"
	inv.PaymentMethod = ""
	inv.Items = nil

	data, err := Build(inv)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("not a PDF document")
	}
}

func TestFilename(t *testing.T) {
	inv := Invoice{OrderID: "ord/42 #7"}
	if got := inv.Filename(); got != "invoice_ord_42_7.pdf" {
		t.Fatalf("unexpected filename %q", got)
	}
}
