package memory

import (
	"fmt"
)

const (
	titleAddress          = 0x0134
	titleLength           = 16
	cgbFlagAddress        = 0x0143
	cartTypeAddress       = 0x0147
	romSizeAddress        = 0x0148
	ramSizeAddress        = 0x0149
	headerChecksumAddress = 0x014D

	headerStart = 0x0100
	headerEnd   = 0x014F
)

// MBCKind identifies which bank controller a cartridge type byte selects.
type MBCKind uint8

const (
	NoMBCKind MBCKind = iota
	MBC1Kind
	MBC3Kind
	MBC5Kind
	// unsupportedMBCKind covers cartridge-type bytes the header recognizes
	// (MBC2, MBC4, MMM01, pocket camera, bandai tama5, huc1/huc3, ...) that
	// fall outside this core's four implemented controllers.
	unsupportedMBCKind
)

// cartTypeInfo describes what a cartridge-type byte implies about banking
// hardware present on the cartridge board.
type cartTypeInfo struct {
	kind       MBCKind
	hasRAM     bool
	hasBattery bool
	hasRTC     bool
}

// cartridgeTypes is the fixed 22-entry table of recognized cartridge-type
// byte values from the header at 0x0147.
var cartridgeTypes = map[uint8]cartTypeInfo{
	0x00: {NoMBCKind, false, false, false},
	0x01: {MBC1Kind, false, false, false},
	0x02: {MBC1Kind, true, false, false},
	0x03: {MBC1Kind, true, true, false},
	0x05: {unsupportedMBCKind, false, false, false}, // MBC2
	0x06: {unsupportedMBCKind, false, true, false},  // MBC2+BATTERY
	0x08: {NoMBCKind, true, false, false},
	0x09: {NoMBCKind, true, true, false},
	0x0F: {MBC3Kind, false, true, true},
	0x10: {MBC3Kind, true, true, true},
	0x11: {MBC3Kind, false, false, false},
	0x12: {MBC3Kind, true, false, false},
	0x13: {MBC3Kind, true, true, false},
	0x15: {unsupportedMBCKind, false, false, false}, // MBC4
	0x16: {unsupportedMBCKind, true, false, false},  // MBC4+RAM
	0x17: {unsupportedMBCKind, true, true, false},   // MBC4+RAM+BATTERY
	0x19: {MBC5Kind, false, false, false},
	0x1A: {MBC5Kind, true, false, false},
	0x1B: {MBC5Kind, true, true, false},
	0x1C: {MBC5Kind, false, false, false}, // +RUMBLE
	0x1D: {MBC5Kind, true, false, false},  // +RUMBLE+RAM
	0x1E: {MBC5Kind, true, true, false},   // +RUMBLE+RAM+BATTERY
}

// romBankCounts maps the ROM-size header byte to a count of 16 KiB banks.
var romBankCounts = map[uint8]int{
	0x00: 2, 0x01: 4, 0x02: 8, 0x03: 16, 0x04: 32,
	0x05: 64, 0x06: 128, 0x07: 256, 0x08: 512,
	0x52: 72, 0x53: 80, 0x54: 96,
}

// ramBankSizes maps the RAM-size header byte to a total RAM size in bytes.
// Value 1 is the one irregular entry: a single 2 KiB bank rather than 8 KiB.
var ramBankSizes = map[uint8]int{
	0: 0,
	1: 2 * 1024,
	2: 1 * 8 * 1024,
	3: 4 * 8 * 1024,
	4: 16 * 8 * 1024,
	5: 8 * 8 * 1024,
}

// CartridgeError describes why a ROM image could not be loaded.
type CartridgeError struct {
	Reason string
}

func (e *CartridgeError) Error() string {
	return "cartridge load failed: " + e.Reason
}

// Cartridge holds a parsed ROM image and the header metadata needed to
// build the right bank controller for it.
type Cartridge struct {
	data []byte

	Title          string
	CGBCompatible  bool
	CGBOnly        bool
	MBCKind        MBCKind
	HasBattery     bool
	HasRTC         bool
	RAMSizeBytes   int
	HeaderValid    bool
	headerChecksum uint8
}

// NewCartridge returns an empty cartridge with no MBC, useful as a
// power-on-with-no-cartridge-inserted placeholder.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x8000),
		MBCKind: NoMBCKind,
	}
}

// NewCartridgeFromBytes parses a ROM image's header and returns a
// Cartridge ready to have its bank controller constructed. It validates
// just enough of the header to build the MBC; it does not reject ROMs
// with an invalid header checksum (HeaderValid records that instead).
func NewCartridgeFromBytes(data []byte) (*Cartridge, error) {
	if len(data) <= headerEnd {
		return nil, &CartridgeError{Reason: fmt.Sprintf("truncated header: image is %d bytes", len(data))}
	}

	typeByte := data[cartTypeAddress]
	info, known := cartridgeTypes[typeByte]
	if !known {
		return nil, &CartridgeError{Reason: fmt.Sprintf("unknown cartridge-type byte 0x%02X", typeByte)}
	}
	if info.kind == unsupportedMBCKind {
		return nil, &CartridgeError{Reason: fmt.Sprintf("unsupported MBC for cartridge-type byte 0x%02X", typeByte)}
	}

	romSizeByte := data[romSizeAddress]
	if _, known := romBankCounts[romSizeByte]; !known {
		return nil, &CartridgeError{Reason: fmt.Sprintf("unknown ROM-size byte 0x%02X", romSizeByte)}
	}

	ramSizeByte := data[ramSizeAddress]
	ramSize, known := ramBankSizes[ramSizeByte]
	if !known {
		return nil, &CartridgeError{Reason: fmt.Sprintf("unknown RAM-size byte 0x%02X", ramSizeByte)}
	}
	if !info.hasRAM {
		ramSize = 0
	}

	cgbFlag := data[cgbFlagAddress]

	cart := &Cartridge{
		data:          append([]byte(nil), data...),
		Title:         cleanGameboyTitle(data[titleAddress : titleAddress+titleLength]),
		CGBCompatible: cgbFlag == 0x80 || cgbFlag == 0xC0,
		CGBOnly:       cgbFlag == 0xC0,
		MBCKind:       info.kind,
		HasBattery:    info.hasBattery,
		HasRTC:        info.hasRTC,
		RAMSizeBytes:  ramSize,
	}

	cart.headerChecksum = computeHeaderChecksum(data)
	cart.HeaderValid = cart.headerChecksum == data[headerChecksumAddress]

	return cart, nil
}

// computeHeaderChecksum reproduces the boot ROM's header checksum over
// 0x0134-0x014C: sum(-b[i]-1) mod 256.
func computeHeaderChecksum(data []byte) uint8 {
	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - data[i] - 1
	}
	return sum
}

// ROM returns the raw ROM bytes, for handing to an MBC constructor.
func (c *Cartridge) ROM() []byte {
	return c.data
}
