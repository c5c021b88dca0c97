package calendar

import (
	"strconv"
	"strings"
)

// ContrastColor picks black or white text for a background colour using
// YIQ brightness. Accepts "#rrggbb", "rrggbb" or "#rgb". Unparseable input
// gets black text, which suits the light default swatch.
func ContrastColor(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "#000000"
	}
	yiq := (r*299 + g*587 + b*114) / 1000
	if yiq > 128 {
		return "#000000"
	}
	return "#ffffff"
}

func parseHex(hex string) (r, g, b int, ok bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
