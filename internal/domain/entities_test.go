package domain

import "testing"

func TestFacetValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"Action", true},
		{"2021", true},
		{"USA", true},
		{"", false},
		{"   ", false},
		{"0", false},
		{" 0 ", false},
		{"null", false},
		{"NULL", false},
		{"Null", false},
		{"nullable", true},
	}

	for _, tt := range tests {
		if got := FacetValid(tt.in); got != tt.want {
			t.Errorf("FacetValid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
