package osufile

import (
	"fmt"
	"strconv"
	"strings"
)

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as six lowercase hex digits, e.g. "ff8000".
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// parseColor reads "r,g,b". A fourth alpha component is accepted and dropped.
func parseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("expected r,g,b, got %q", s)
	}
	var rgb [3]uint8
	for i := range rgb {
		n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("component %q is not in 0-255", parts[i])
		}
		rgb[i] = uint8(n)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
