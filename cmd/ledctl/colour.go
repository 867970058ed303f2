package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColours = map[string]color.RGBA{
	"off":   {},
	"red":   {R: 255},
	"green": {G: 255},
	"blue":  {B: 255},
	"white": {R: 255, G: 255, B: 255},
	"amber": {R: 255, G: 128},
}

// parseColour accepts a name, "#rrggbb", "rrggbb" or "r,g,b" (decimal).
func parseColour(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColours[s]; ok {
		return c, nil
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("colour %q: want r,g,b", s)
		}
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
			}
			v[i] = uint8(n)
		}
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q: want #rrggbb", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

func parseColours(args []string) ([]color.RGBA, error) {
	out := make([]color.RGBA, 0, len(args))
	for _, a := range args {
		c, err := parseColour(a)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
