package handlers

import "testing"

func TestSortMenuItemsVegFirstThenPrefixRank(t *testing.T) {
	items := []MenuItem{
		{ID: "m1", Name: "Chicken Soup", IsVeg: false},
		{ID: "m2", Name: "Veg Momos", IsVeg: true},
		{ID: "m3", Name: "Prawns Chopsuey", IsVeg: false},
		{ID: "m4", Name: "Spring Rolls", IsVeg: true},
		{ID: "m5", Name: "Mutton Curry", IsVeg: false},
		{ID: "m6", Name: "Veg Fried Rice", IsVeg: true},
	}

	sortMenuItems(items)

	// Veg tier leads with veg-prefixed names first, then the rest
	// alphabetically; non-veg follows ranked chicken, prawns, others.
	expected := []string{"m6", "m2", "m4", "m1", "m3", "m5"}
	for i, id := range expected {
		if items[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestSortMenuItemsAlphabeticalWithinRank(t *testing.T) {
	items := []MenuItem{
		{ID: "b", Name: "Chicken Manchurian", IsVeg: false},
		{ID: "a", Name: "Chicken Chilli", IsVeg: false},
		{ID: "d", Name: "Prawn Tempura", IsVeg: false},
		{ID: "c", Name: "Prawns Fried Rice", IsVeg: false},
	}

	sortMenuItems(items)

	got := []string{items[0].ID, items[1].ID, items[2].ID, items[3].ID}
	want := []string{"a", "b", "d", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestMenuNameRank(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"veg momos", 1},
		{"chicken soup", 2},
		{"prawn tempura", 3},
		{"prawns chopsuey", 3},
		{"mutton curry", 4},
	}
	for _, tc := range cases {
		if got := menuNameRank(tc.name); got != tc.want {
			t.Fatalf("%q: expected rank %d, got %d", tc.name, tc.want, got)
		}
	}
}
