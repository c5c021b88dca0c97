package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain", "Unit base at car park", "Unit base at car park"},
		{"script stripped", `Call 7am<script>alert(1)</script>`, "Call 7am"},
		{"tags stripped", `<b>Night</b> shoot`, "Night shoot"},
		{"ampersand kept", "R&D stage", "R&D stage"},
		{"trimmed", "  rain cover  ", "rain cover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	if got := Line("Scene 12\n\n  Scene 14"); got != "Scene 12 Scene 14" {
		t.Errorf("unexpected line: %q", got)
	}
}
