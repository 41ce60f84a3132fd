package cart

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	store := NewFileStore(path)

	// Missing file loads as an empty cart.
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(loaded.Items) != 0 || loaded.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", loaded)
	}

	c := Add(Empty(), Item{MenuItemID: "m1", Name: "Momos", Price: "150", IsVeg: true}, time.Now())
	if err := store.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Name != "Momos" {
		t.Fatalf("unexpected cart after reload: %+v", loaded)
	}
	if loaded.Total != 150 || loaded.ItemCount != 1 {
		t.Fatalf("totals lost in round trip: %+v", loaded)
	}
}

func TestSessionPersistsEveryMutation(t *testing.T) {
	store := NewMemoryStore()
	session, err := NewSession(store)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if err := session.Add(Item{MenuItemID: "m1", Name: "Soup", Price: "90", IsVeg: true}); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := session.Cart().Items[0].ID
	if err := session.SetQuantity(id, 2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	persisted, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if persisted.ItemCount != 2 {
		t.Fatalf("store out of sync with session, itemCount %d", persisted.ItemCount)
	}

	if err := session.MarkOrdered(); err != nil {
		t.Fatalf("mark ordered: %v", err)
	}
	if session.HasUnordered() {
		t.Fatal("session should have no unordered items after MarkOrdered")
	}

	reopened, err := NewSession(store)
	if err != nil {
		t.Fatalf("reopen session: %v", err)
	}
	if reopened.Cart().Items[0].OrderedQuantity != 2 {
		t.Fatalf("ordered baseline not persisted: %+v", reopened.Cart().Items[0])
	}
}
