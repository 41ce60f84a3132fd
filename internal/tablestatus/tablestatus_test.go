package tablestatus

import (
	"errors"
	"testing"
)

func TestValid(t *testing.T) {
	for _, s := range []Status{StatusFree, StatusOccupied, StatusPreparing, StatusReady, StatusServed} {
		if !Valid(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []Status{"", "done", "SERVED", "paid"} {
		if Valid(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestCanGenerateInvoice(t *testing.T) {
	if err := CanGenerateInvoice(StatusServed, true); err != nil {
		t.Fatalf("served with current order should pass, got %v", err)
	}
	if err := CanGenerateInvoice(StatusReady, true); !errors.Is(err, ErrNotServed) {
		t.Fatalf("expected ErrNotServed, got %v", err)
	}
	if err := CanGenerateInvoice(StatusServed, false); !errors.Is(err, ErrNoCurrentOrder) {
		t.Fatalf("expected ErrNoCurrentOrder, got %v", err)
	}
	// Not-served wins when both preconditions fail.
	if err := CanGenerateInvoice(StatusOccupied, false); !errors.Is(err, ErrNotServed) {
		t.Fatalf("expected ErrNotServed, got %v", err)
	}
}
