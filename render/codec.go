package render

import "math"

// Signed field values ride in RGBA8 texture channels. A value v in
// [-valueRange, valueRange] maps to byte round(v/valueRange*127) + 128, so
// byte 128 is an exact zero and every byte survives a decode/encode round
// trip unchanged (no drift across repeated GPU passes). The fragment
// shaders bake in the same mapping; their ranges must match the constants
// passed here.

// EncodeSigned maps v in [-valueRange, valueRange] to a byte, saturating
// outside the range.
func EncodeSigned(v, valueRange float32) uint8 {
	n := float64(v/valueRange)*127.0 + 128.0
	b := int(math.Round(n))
	if b < 0 {
		b = 0
	}
	if b > 255 {
		b = 255
	}
	return uint8(b)
}

// DecodeSigned inverts EncodeSigned.
func DecodeSigned(b uint8, valueRange float32) float32 {
	return (float32(b) - 128.0) / 127.0 * valueRange
}
