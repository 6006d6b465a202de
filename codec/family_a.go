package codec

import "fmt"

// PacketSizeA is the fixed packet size the family-A codec operates on: 13
// little-endian 32-bit words.
const PacketSizeA = 52

const wordsPerPacketA = PacketSizeA / 4

// firstObfuscatedPacketA and lastObfuscatedPacketA bound the packet-index
// window the whole-firmware codec transforms; packets outside [10, 100] pass
// through unchanged.
const (
	firstObfuscatedPacketA = 10
	lastObfuscatedPacketA  = 100
)

// xorKeyA is the fixed 13-word XOR key for the family-A packet codec.
var xorKeyA = [wordsPerPacketA]uint32{
	0x55AA55AA, 0xAA55AA55, 0x000000FF, 0x0000FF00,
	0x00FF0000, 0xFF000000, 0x00000000, 0xFFFFFFFF,
	0x0F0F0F0F, 0xF0F0F0F0, 0xAAAAAAAA, 0x55555555,
	0x00000000,
}

// swapTableA holds the 8 byte-permutation rows, selected by packet number & 7.
var swapTableA = [8][4]byte{
	{0, 1, 2, 3},
	{1, 2, 3, 0},
	{2, 1, 3, 0},
	{3, 2, 1, 0},
	{3, 1, 0, 2},
	{1, 2, 0, 3},
	{2, 3, 1, 0},
	{0, 2, 1, 3},
}

func xorWordBytes(word [4]byte, key uint32) [4]byte {
	var kb [4]byte
	kb[0] = byte(key)
	kb[1] = byte(key >> 8)
	kb[2] = byte(key >> 16)
	kb[3] = byte(key >> 24)
	return [4]byte{word[0] ^ kb[0], word[1] ^ kb[1], word[2] ^ kb[2], word[3] ^ kb[3]}
}

// DecodePacketA reverses the family-A obfuscation of a single 52-byte packet
// at packet index n: XOR each word with xorKeyA, then permute bytes within
// each word per swapTableA[n&7].
func DecodePacketA(packet []byte, n int) ([]byte, error) {
	if len(packet) != PacketSizeA {
		return nil, fmt.Errorf("codec: family-A packet must be %d bytes, got %d", PacketSizeA, len(packet))
	}
	row := swapTableA[n&7]
	out := make([]byte, PacketSizeA)
	for i := 0; i < wordsPerPacketA; i++ {
		var word [4]byte
		copy(word[:], packet[i*4:i*4+4])
		xored := xorWordBytes(word, xorKeyA[i])
		for k := 0; k < 4; k++ {
			out[i*4+k] = xored[row[k]]
		}
	}
	return out, nil
}

// EncodePacketA is the inverse of DecodePacketA: permute first, then XOR.
func EncodePacketA(packet []byte, n int) ([]byte, error) {
	if len(packet) != PacketSizeA {
		return nil, fmt.Errorf("codec: family-A packet must be %d bytes, got %d", PacketSizeA, len(packet))
	}
	row := swapTableA[n&7]
	out := make([]byte, PacketSizeA)
	for i := 0; i < wordsPerPacketA; i++ {
		var permuted [4]byte
		for k := 0; k < 4; k++ {
			permuted[row[k]] = packet[i*4+k]
		}
		xored := xorWordBytes(permuted, xorKeyA[i])
		copy(out[i*4:i*4+4], xored[:])
	}
	return out, nil
}

// transformFirmwareA applies packetFn to every 52-byte packet in the
// obfuscated window [firstObfuscatedPacketA, lastObfuscatedPacketA]; packets
// outside that window, and any trailing partial packet, pass through
// unchanged.
func transformFirmwareA(data []byte, packetFn func([]byte, int) ([]byte, error)) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	packetCount := len(data) / PacketSizeA
	for n := 0; n < packetCount; n++ {
		if n < firstObfuscatedPacketA || n > lastObfuscatedPacketA {
			continue
		}
		start := n * PacketSizeA
		transformed, err := packetFn(data[start:start+PacketSizeA], n)
		if err != nil {
			return nil, fmt.Errorf("codec: packet %d: %w", n, err)
		}
		copy(out[start:start+PacketSizeA], transformed)
	}
	return out, nil
}

// DecodeFirmwareA reverses family-A firmware obfuscation over a whole image.
func DecodeFirmwareA(data []byte) ([]byte, error) {
	return transformFirmwareA(data, DecodePacketA)
}

// EncodeFirmwareA applies family-A firmware obfuscation over a whole image.
func EncodeFirmwareA(data []byte) ([]byte, error) {
	return transformFirmwareA(data, EncodePacketA)
}
