package device

// hidUsage is one (usage page, usage) pair declared by an Input item in a
// HID report descriptor.
type hidUsage struct {
	Page  uint16
	Usage uint16
}

// inputUsages walks a HID report descriptor and returns the (usage page,
// usage) pair in effect at every Input main item. Only short items are
// handled, which covers every descriptor this tool's devices emit.
func inputUsages(desc []byte) []hidUsage {
	const (
		typeMain   = 0
		typeGlobal = 1
		typeLocal  = 2

		tagUsagePage = 0x0
		tagUsage     = 0x0
		tagInput     = 0x8
		tagCollection = 0xA
	)

	var usages []hidUsage
	var curPage uint16
	var curUsage uint16

	i := 0
	for i < len(desc) {
		header := desc[i]
		size := int(header & 0x03)
		if size == 3 {
			size = 4
		}
		itemType := (header >> 2) & 0x03
		tag := (header >> 4) & 0x0F
		i++
		if i+size > len(desc) {
			break
		}
		var value uint32
		for k := 0; k < size; k++ {
			value |= uint32(desc[i+k]) << (8 * k)
		}
		i += size

		switch {
		case itemType == typeGlobal && tag == tagUsagePage:
			curPage = uint16(value)
		case itemType == typeLocal && tag == tagUsage:
			curUsage = uint16(value)
		case itemType == typeMain && tag == tagInput:
			usages = append(usages, hidUsage{Page: curPage, Usage: curUsage})
		case itemType == typeMain && tag == tagCollection:
			// Collections don't reset curUsage; nested usages are rare in
			// the vendor-defined pages these devices use.
		}
	}
	return usages
}

// matchesUsage reports whether any Input item in desc declares the given
// (usage page, usage) pair.
func matchesUsage(desc []byte, page, usage uint16) bool {
	for _, u := range inputUsages(desc) {
		if u.Page == page && u.Usage == usage {
			return true
		}
	}
	return false
}
