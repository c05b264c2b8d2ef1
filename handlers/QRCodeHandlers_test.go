package handlers

import "testing"

func TestTruncateLabel(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"RESURF-30", 35, "RESURF-30"},
		{"", 10, ""},
		{"Acrylic resurfacer drum 30 gal heavy duty", 20, "Acrylic resurface..."},
	}
	for _, tc := range cases {
		if got := truncateLabel(tc.in, tc.max); got != tc.want {
			t.Errorf("truncateLabel(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
