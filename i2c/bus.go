package i2c

// Bus is a synchronous, register-oriented I2C master. Implementations either
// talk to real hardware (DevBus, ft260.Ft260) or serialize access to another
// Bus (Sequencer).
type Bus interface {
	// I2cWrite sends the given bytes to the slave in a single transaction and
	// returns the number of payload bytes that were transferred.
	I2cWrite(addr byte, data ...byte) (int, error)

	// I2cRead fills data with bytes read from the slave and returns the
	// number of bytes received.
	I2cRead(addr byte, data []byte) (int, error)
}

// Address range probed by Scan (reserved addresses excluded)
const (
	ScanMinAddress = byte(0x08)
	ScanMaxAddress = byte(0x77)
)

// Scan probes all non-reserved slave addresses with an empty write and
// returns the addresses that acknowledged.
func Scan(bus Bus) []byte {
	var slaves []byte
	for addr := ScanMinAddress; addr <= ScanMaxAddress; addr++ {
		if _, err := bus.I2cWrite(addr); err == nil {
			slaves = append(slaves, addr)
		}
	}
	return slaves
}
