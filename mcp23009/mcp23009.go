package mcp23009

// Default bits all zero, except IODIR (all input) and, if configured, GPPU

// ============== General IO configuration
// IODIR: 0: output, 1: input
// IPOL: 1: GPIO reflects inverted value of the pin
// GPIO: Reading reads pin values. Writing modifies OLAT.
// OLAT: Output values ("latches")
// GPPU: 1: enable internal pull-up for input pins (100 kOhm)

// ============== Interrupt configuration
// GPINTEN: 1: enable interrupt-on-change. Pins must also be input.
// DEFVAL: opposite value on input pin will cause interrupt (if INTCON is set)
// INTCON: for interrupt: 0: pins compared to previous value 1: pins compared to DEFVAL
// INTF: (read only) interrupt flags. Cleared when INTCAP or GPIO is read.
// INTCAP: (read only) state of pins when interrupt occurs. Remains unchanged until read (or GPIO is read)

// The MCP23009 is the single-port sibling of the MCP23017: one 8-bit port,
// one register bank, no BANK bit games.
const (
	IODIR = byte(iota)
	IPOL
	GPINTEN
	DEFVAL
	INTCON
	IOCON
	GPPU
	INTF
	INTCAP
	GPIO
	OLAT
)

const (
	_                = byte(1 << iota)
	IOCON_BIT_INTPOL // 1: INT pin active-high 0: INT pin active-low
	IOCON_BIT_ODR    // (overrides INTPOL) 1: INT pin is open-drain
	_                // unused on the MCP23009 (HAEN is MCP23S09 only)
	IOCON_BIT_DISSLW // 0: slew rate control for SDA output enabled 1: disabled
	IOCON_BIT_SEQOP  // 0: sequential operation enabled 1: disabled (address stays after read/write)
	_
	_ // unimplemented
)

const (
	ADDRESS     = byte(0x20) // 0010 0000
	MAX_ADDRESS = byte(0x27) // 0010 0111

	// Values for the IODIR register
	INPUT  = byte(0xFF)
	OUTPUT = byte(0x00)

	// Value for the GPPU register: pull up all pins configured as input
	PULLUP_ALL = byte(0xFF)

	NUM_PINS = 8
)
