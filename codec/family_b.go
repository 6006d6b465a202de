package codec

import "fmt"

const wordKeyCountB = 13

// xorKeyB is the fixed 13-word XOR key for the family-B whole-image codec.
var xorKeyB = [wordKeyCountB]uint32{
	0xE7C29474, 0x79084B10, 0x53D54B0D, 0xFC1E8F32,
	0x48E81A9B, 0x773C808E, 0xB7483552, 0xD9CB8C76,
	0x2A8C8BC6, 0x0967ADA8, 0xD4520F5C, 0xD0C3279D,
	0xEAC091C5,
}

// transformFirmwareB XORs every little-endian 32-bit word of data with
// xorKeyB, cycling the key by word position. It is its own inverse, so
// DecodeFirmwareB and EncodeFirmwareB are the same operation under different
// names for symmetry with the family-A API.
func transformFirmwareB(data []byte) ([]byte, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("codec: family-B firmware length must be a multiple of 4, got %d", len(data))
	}
	out := make([]byte, len(data))
	for w := 0; w*4 < len(data); w++ {
		key := xorKeyB[w%wordKeyCountB]
		p := w * 4
		out[p] = data[p] ^ byte(key)
		out[p+1] = data[p+1] ^ byte(key>>8)
		out[p+2] = data[p+2] ^ byte(key>>16)
		out[p+3] = data[p+3] ^ byte(key>>24)
	}
	return out, nil
}

// DecodeFirmwareB reverses family-B firmware obfuscation.
func DecodeFirmwareB(data []byte) ([]byte, error) {
	return transformFirmwareB(data)
}

// EncodeFirmwareB applies family-B firmware obfuscation. The transform is an
// involution, so this is identical to DecodeFirmwareB; it is exported
// separately so callers can name the direction they intend.
func EncodeFirmwareB(data []byte) ([]byte, error) {
	return transformFirmwareB(data)
}
