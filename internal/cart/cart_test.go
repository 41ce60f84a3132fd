package cart

import (
	"testing"
	"time"
)

var testTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newItem(menuItemID, name, price string, veg bool) Item {
	return Item{MenuItemID: menuItemID, Name: name, Price: price, IsVeg: veg}
}

func checkTotals(t *testing.T, c Cart) {
	t.Helper()
	var total float64
	var count int
	for _, item := range c.Items {
		total += item.PriceValue() * float64(item.Quantity)
		count += item.Quantity
	}
	if c.Total != total {
		t.Fatalf("total out of sync: have %v, recomputed %v", c.Total, total)
	}
	if c.ItemCount != count {
		t.Fatalf("itemCount out of sync: have %d, recomputed %d", c.ItemCount, count)
	}
}

func TestAddMergesSameMenuItem(t *testing.T) {
	c := Empty()
	c = Add(c, newItem("m1", "Veg Momos", "150", true), testTime)
	c = Add(c, newItem("m1", "Veg Momos", "150", true), testTime.Add(time.Second))

	if len(c.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", c.Items[0].Quantity)
	}
	if c.Items[0].SpiceLevel != SpiceRegular {
		t.Fatalf("expected default spice level regular, got %s", c.Items[0].SpiceLevel)
	}
	checkTotals(t, c)
}

func TestAddAssignsUniqueLineIDs(t *testing.T) {
	c := Empty()
	c = Add(c, newItem("m1", "Veg Momos", "150", true), testTime)
	c = Add(c, newItem("m2", "Chicken Soup", "180", false), testTime.Add(time.Millisecond))

	if c.Items[0].ID == c.Items[1].ID {
		t.Fatalf("line ids must be unique, both are %q", c.Items[0].ID)
	}
}

func TestTotalsInvariantAcrossMutations(t *testing.T) {
	c := Empty()
	c = Add(c, newItem("m1", "Spring Rolls", "120", true), testTime)
	checkTotals(t, c)
	c = Add(c, newItem("m2", "Thai Curry", "320.50", false), testTime.Add(time.Second))
	checkTotals(t, c)
	c = SetQuantity(c, c.Items[0].ID, 4)
	checkTotals(t, c)
	c = Remove(c, c.Items[1].ID)
	checkTotals(t, c)
}

func TestSetQuantityIgnoresBelowOne(t *testing.T) {
	c := Add(Empty(), newItem("m1", "Fried Rice", "200", true), testTime)
	id := c.Items[0].ID

	c = SetQuantity(c, id, 0)
	if c.Items[0].Quantity != 1 {
		t.Fatalf("quantity 0 should be a no-op, got %d", c.Items[0].Quantity)
	}
	c = SetQuantity(c, id, -3)
	if c.Items[0].Quantity != 1 {
		t.Fatalf("negative quantity should be a no-op, got %d", c.Items[0].Quantity)
	}
	c = SetQuantity(c, id, 3)
	if c.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", c.Items[0].Quantity)
	}
}

func TestRemoveKeepsOrderedLineAsPendingRemoval(t *testing.T) {
	c := Add(Empty(), newItem("m1", "Gravy Noodles", "220", true), testTime)
	c = MarkOrdered(c)
	id := c.Items[0].ID

	c = Remove(c, id)
	if len(c.Items) != 1 {
		t.Fatalf("ordered line must survive removal, got %d lines", len(c.Items))
	}
	if c.Items[0].Quantity != 0 {
		t.Fatalf("expected pending-removal quantity 0, got %d", c.Items[0].Quantity)
	}
	if c.Total != 0 || c.ItemCount != 0 {
		t.Fatalf("pending removal must contribute nothing, total %v count %d", c.Total, c.ItemCount)
	}
	if !HasUnordered(c) {
		t.Fatal("pending removal must register as an unordered change")
	}
}

func TestMarkOrderedFinalizesBaseline(t *testing.T) {
	c := Empty()
	c = Add(c, newItem("m1", "Momos", "150", true), testTime)
	c = Add(c, newItem("m2", "Soup", "90", true), testTime.Add(time.Second))
	c = SetQuantity(c, c.Items[0].ID, 3)
	c = MarkOrdered(c)

	for _, item := range c.Items {
		if item.OrderedQuantity != item.Quantity {
			t.Fatalf("line %s: orderedQuantity %d != quantity %d", item.ID, item.OrderedQuantity, item.Quantity)
		}
		if item.Quantity == 0 {
			t.Fatalf("line %s: quantity 0 must be dropped by MarkOrdered", item.ID)
		}
		if !item.IsOrdered {
			t.Fatalf("line %s: expected isOrdered", item.ID)
		}
	}
	if HasUnordered(c) {
		t.Fatal("no unordered changes expected right after MarkOrdered")
	}

	c = SetQuantity(c, c.Items[0].ID, 5)
	if !HasUnordered(c) {
		t.Fatal("quantity edit after MarkOrdered must register as unordered")
	}

	// Pending removal is dropped on the next MarkOrdered.
	c = Remove(c, c.Items[1].ID)
	c = MarkOrdered(c)
	if len(c.Items) != 1 {
		t.Fatalf("expected removal finalized, got %d lines", len(c.Items))
	}
}

func TestPendingDelta(t *testing.T) {
	c := Empty()
	c = Add(c, newItem("m1", "Momos", "150", true), testTime)
	c = Add(c, newItem("m2", "Soup", "90", true), testTime.Add(time.Second))
	c = SetQuantity(c, c.Items[0].ID, 2)
	c = MarkOrdered(c)

	// +2 on line one, line two removed entirely.
	c = SetQuantity(c, c.Items[0].ID, 4)
	c = Remove(c, c.Items[1].ID)

	additions, removals := PendingDelta(c)
	if additions != 2 {
		t.Fatalf("expected 2 additions, got %d", additions)
	}
	if removals != 1 {
		t.Fatalf("expected 1 removal, got %d", removals)
	}
}

func TestScenarioTwoItemCart(t *testing.T) {
	c := Empty()
	c = Add(c, newItem("m1", "Prawns Chopsuey", "250", false), testTime)
	c = SetQuantity(c, c.Items[0].ID, 2)
	c = Add(c, newItem("m2", "Lemon Soda", "100", true), testTime.Add(time.Second))

	if c.Total != 600 {
		t.Fatalf("expected total 600, got %v", c.Total)
	}
	if c.ItemCount != 3 {
		t.Fatalf("expected itemCount 3, got %d", c.ItemCount)
	}

	// Second item was never ordered: removal deletes the line outright.
	c = Remove(c, c.Items[1].ID)
	if c.ItemCount != 2 {
		t.Fatalf("expected itemCount 2, got %d", c.ItemCount)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items))
	}
}

func TestFieldEditsLeaveTotalsAlone(t *testing.T) {
	c := Add(Empty(), newItem("m1", "Momos", "150", true), testTime)
	id := c.Items[0].ID

	before := c.Total
	c = SetNotes(c, id, "no onions")
	c = SetSpiceLevel(c, id, SpiceMore)

	if c.Items[0].Notes != "no onions" {
		t.Fatalf("notes not applied: %q", c.Items[0].Notes)
	}
	if c.Items[0].SpiceLevel != SpiceMore {
		t.Fatalf("spice level not applied: %s", c.Items[0].SpiceLevel)
	}
	if c.Total != before {
		t.Fatalf("field edit changed total: %v -> %v", before, c.Total)
	}
}
