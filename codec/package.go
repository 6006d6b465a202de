package codec

// DecodePackageData reverses the three-stage obfuscation transform vendor
// installers use on their trailing metadata ("strings") block. It is a pure
// byte permutation plus a per-byte bit rotation; no key material is
// involved, so it needs only the encoded bytes.
//
// The installer extractor (package installer) is the only caller that needs
// this direction — no vendor tool re-encodes a trailer on the host, so an
// encoder is not exposed here.
func DecodePackageData(data []byte) []byte {
	buf := make([]byte, len(data))
	copy(buf, data)

	// Stage 1: for every 5-byte group starting at offset 4, swap byte 0 and
	// byte 4 of the group (i.e. swap buf[i-4] and buf[i] for i = 4, 9, 14, ...).
	for i := 4; i < len(buf); i += 5 {
		buf[i-4], buf[i] = buf[i], buf[i-4]
	}

	// Stage 2: swap every adjacent byte pair.
	for i := 1; i < len(buf); i += 2 {
		buf[i-1], buf[i] = buf[i], buf[i-1]
	}

	// Stage 3: y = ((x - 7) << 4) + (x >> 4), mod 256. (x-7) can go negative
	// for x < 7; the shift and addition are done in signed arithmetic and
	// only the low 8 bits of the result are kept, matching the original's
	// unbounded-precision-then-mask behavior.
	for i, x := range buf {
		val := (int32(x)-7)<<4 + int32(x>>4)
		buf[i] = byte(uint32(val) & 0xFF)
	}

	return buf
}
