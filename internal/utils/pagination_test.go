package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		name string
		s    string
		def  int
		want int
	}{
		{"empty falls back", "", 20, 20},
		{"positive", "7", 0, 7},
		{"negative", "-3", 1, -3},
		{"leading zeros", "0042", 9, 42},
		{"garbage falls back", "seven", 5, 5},
		{"whitespace is not trimmed", " 7", 2, 2},
		{"overflow falls back", "92233720368547758089", -1, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AtoiDefault(tc.s, tc.def); got != tc.want {
				t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
			}
		})
	}
}
