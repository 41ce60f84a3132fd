package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "country code with separators",
			input:    "+91 98765-43210",
			expected: "9876543210",
		},
		{
			name:     "plain ten digits",
			input:    "9876543210",
			expected: "9876543210",
		},
		{
			name:     "leading zero trunk prefix",
			input:    "09876543210",
			expected: "9876543210",
		},
		{
			name:     "short input passes through",
			input:    "98765",
			expected: "98765",
		},
		{
			name:     "no digits",
			input:    "call me",
			expected: "",
		},
		{
			name:     "parentheses and spaces",
			input:    "(987) 654 3210",
			expected: "9876543210",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"+91 98765-43210", "001-987-654-3210", "98765", ""}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: %q != %q", input, once, twice)
		}
		if len(twice) > 10 {
			t.Fatalf("normalized value %q longer than 10 digits", twice)
		}
	}
}
