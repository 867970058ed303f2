//go:build !linux && !(rp2040 || rp2350)

package platform

import "rgbled-go/config"

// Only the sim board is available off Linux.
func open(b Board, _ config.Config) (*Resources, error) {
	return nil, unsupported(b)
}
