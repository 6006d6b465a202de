package device

import "github.com/vxfw/vxfw/protocol"

// Class describes one supported (vendor, product) pair: its human name,
// which protocol family and variant it speaks, and the bit that, when set
// in the product ID, marks the device as being in bootloader mode.
type Class struct {
	VendorID  uint16
	ProductID uint16
	Name      string
	Family    protocol.Family
	Variant   protocol.Variant
	BootMask  uint16

	// UsagePage and Usage identify the HID Input item the device's
	// bootloader/command interface advertises; enumeration selects the
	// first interface whose report descriptor declares this pair.
	UsagePage uint16
	Usage     uint16
}

// BootloaderProductID returns the product ID this class advertises while
// in bootloader mode.
func (c Class) BootloaderProductID() uint16 {
	return c.ProductID | c.BootMask
}

// ApplicationProductID returns the product ID this class advertises while
// running its application firmware.
func (c Class) ApplicationProductID() uint16 {
	return c.ProductID &^ c.BootMask
}

// family-specific HID usage tuples (§4.5): family A's command interface
// reports usage 0x01 on the vendor-defined page 0xFF00, family B's
// reports usage 0x02 on the same page.
const (
	usagePageVendor = 0xFF00
	usageA          = 0x01
	usageB          = 0x02
)

// vidHoltek is the vendor ID shared by every family-A and plain family-B
// (Holtek-variant) device this tool supports. CMMK-variant boards enumerate
// under their own vendor ID instead.
const vidHoltek = 0x04D9

// KnownDevices is the closed set of (vendor, product) pairs this tool
// targets. It is a static, compile-time table: never mutated at runtime,
// only filtered during enumeration.
//
// BootMask differs by variant: plain Holtek boards (family A and the
// non-CMMK family-B boards) flip bit 0x1000 to enter bootloader mode; CMMK
// boards flip bit 0x1 instead.
var KnownDevices = []Class{
	{
		VendorID: vidHoltek, ProductID: 0x0141,
		Name:      "Vortex POK3R",
		Family:    protocol.FamilyA,
		Variant:   protocol.VariantNone,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageA,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0112,
		Name:      "KBP V60",
		Family:    protocol.FamilyA,
		Variant:   protocol.VariantNone,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageA,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0129,
		Name:      "KBP V80",
		Family:    protocol.FamilyA,
		Variant:   protocol.VariantNone,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageA,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0167,
		Name:      "Vortex POK3R RGB",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0207,
		Name:      "Vortex POK3R RGB2",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0175,
		Name:      "Vortex Core",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0192,
		Name:      "Vortex Race 3",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0216,
		Name:      "Vortex ViBE",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0282,
		Name:      "Vortex Cypher",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0304,
		Name:      "Vortex Tab 60",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0344,
		Name:      "Vortex Tab 75",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0346,
		Name:      "Vortex Tab 90",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0163,
		Name:      "Tex Yoda II",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0143,
		Name:      "Mistel Barocco MD600",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: vidHoltek, ProductID: 0x0200,
		Name:      "Mistel Freeboard MD200",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantHoltek,
		BootMask:  0x1000,
		UsagePage: usagePageVendor, Usage: usageB,
	},
	{
		VendorID: 0x2516, ProductID: 0x003C,
		Name:      "MasterKeys Pro S RGB",
		Family:    protocol.FamilyB,
		Variant:   protocol.VariantCMMK,
		BootMask:  0x0001,
		UsagePage: usagePageVendor, Usage: usageB,
	},
}

// LookupExact finds the known class whose ProductID equals pid exactly.
func LookupExact(vid, pid uint16) (Class, bool) {
	for _, c := range KnownDevices {
		if c.VendorID == vid && c.ProductID == pid {
			return c, true
		}
	}
	return Class{}, false
}

// Lookup finds the known class matching (vid, pid) in either application or
// bootloader mode, i.e. pid equal to either ProductID or
// ProductID|BootMask.
func Lookup(vid, pid uint16) (Class, bool) {
	for _, c := range KnownDevices {
		if c.VendorID != vid {
			continue
		}
		if pid == c.ApplicationProductID() || pid == c.BootloaderProductID() {
			return c, true
		}
	}
	return Class{}, false
}
