package toshibaled

// I2C address. The chip has no address straps.
const Address = 0x55

// Register map. The three PWM registers are contiguous so a colour update is
// a single 3-byte burst starting at regPWM0.
const (
	regPWM0   = 0x01 // blue
	regPWM1   = 0x02 // green
	regPWM2   = 0x03 // red
	regEnable = 0x04
)

// ENABLE value that powers the LED outputs on.
const enableOn = 0x03

// Scale converts 8-bit RGB to the chip's 4-bit channels in burst order
// (PWM0, PWM1, PWM2) = (blue, green, red).
func Scale(r, g, b uint8) [3]byte {
	return [3]byte{b >> 4, g >> 4, r >> 4}
}

func pack(v [3]byte) uint32 { return uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 }

func unpack(u uint32) [3]byte { return [3]byte{byte(u), byte(u >> 8), byte(u >> 16)} }
