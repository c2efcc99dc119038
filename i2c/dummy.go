package i2c

import (
	log "github.com/sirupsen/logrus"
)

// Dummy is a Bus that only logs all traffic and reports success. Used for
// running the tools without USB/I2C peripherals.
type Dummy struct {
}

func (d *Dummy) I2cWrite(addr byte, data ...byte) (int, error) {
	log.Printf("Dummy I2C write to %#02x: %#02v", addr, data)
	return len(data), nil
}

func (d *Dummy) I2cRead(addr byte, data []byte) (int, error) {
	log.Printf("Dummy I2C read of %v byte from %#02x", len(data), addr)
	for i := range data {
		data[i] = 0
	}
	return len(data), nil
}
