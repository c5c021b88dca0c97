package calendar

import "testing"

func TestContrastColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ffffff", "#000000"},
		{"#000000", "#ffffff"},
		{"ffff00", "#000000"},
		{"#00f", "#ffffff"},
		{"#808080", "#ffffff"}, // yiq exactly 128 is not "bright"
		{"#818181", "#000000"},
		{"", "#000000"},
		{"#12345", "#000000"},
		{"#gggggg", "#000000"},
	}
	for _, tt := range tests {
		if got := ContrastColor(tt.in); got != tt.want {
			t.Errorf("ContrastColor(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
