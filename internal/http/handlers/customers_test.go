package handlers

import (
	"testing"
	"time"
)

func TestShouldCountVisit(t *testing.T) {
	now := time.Date(2026, 8, 30, 19, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		lastVisit time.Time
		want      bool
	}{
		{"moments ago", now.Add(-2 * time.Minute), false},
		{"just under five hours", now.Add(-visitGateInterval + time.Minute), false},
		{"exactly five hours", now.Add(-visitGateInterval), true},
		{"well past the gate", now.Add(-26 * time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldCountVisit(tc.lastVisit, now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRegistrationName(t *testing.T) {
	cases := []struct {
		name      string
		current   string
		submitted string
		want      string
	}{
		{"differing name wins", "Asha", "Asha Kapoor", "Asha Kapoor"},
		{"matching name keeps current", "Asha", "Asha", "Asha"},
		{"empty submission keeps current", "Asha", "", "Asha"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := registrationName(tc.current, tc.submitted); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
