package codec

// DecodeFirmwareCMMK is the identity transform: CMMK devices store firmware
// in the clear. It is named and exported so callers dispatching on protocol
// family can treat CMMK uniformly with DecodeFirmwareA/DecodeFirmwareB.
func DecodeFirmwareCMMK(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// EncodeFirmwareCMMK is the identity transform, the inverse of
// DecodeFirmwareCMMK.
func EncodeFirmwareCMMK(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
