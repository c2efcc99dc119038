package ft260

import (
	"errors"
	"fmt"
)

const (
	ReportID_I2CStatus    = 0xC0 // Feature In
	ReportID_I2CRead      = 0xC2 // Output
	ReportID_I2CInOut     = 0xD0 // 0xD0 - 0xDE, Input, Output
	ReportID_I2CInOut_Max = 0xDE
	// Max size of I2C write payload: (1 + Report ID - 0xD0) * 4 byte

	I2CMaxPayload = (1 + ReportID_I2CInOut_Max - ReportID_I2CInOut) * 4
)

const (
	I2C_StatusControllerBusy = byte(1 << iota)
	I2C_StatusError
	I2C_StatusNoSlaveAck
	I2C_StatusNoDataAck
	I2C_StatusArbitrationLost
	I2C_StatusControllerIdle
	I2C_StatusBusBusy
)

const (
	I2C_MasterNone      = 0x0
	I2C_MasterStart     = 0x2
	I2C_MasterRepStart  = 0x3
	I2C_MasterStop      = 0x4
	I2C_MasterStartStop = 0x6
)

const i2cStatusRetries = 100

const i2cErrorBits = I2C_StatusError | I2C_StatusNoSlaveAck | I2C_StatusNoDataAck | I2C_StatusArbitrationLost

// Result of ReportID_I2CStatus Feature In
type ReportI2cStatus struct {
	BusStatus byte   // Bitmask of I2C_Status...
	BusSpeed  uint16 // 2 byte: LSB+MSB
	// 1 reserved
}

func (r *ReportI2cStatus) ReportID() byte {
	return ReportID_I2CStatus
}

func (r *ReportI2cStatus) ReportLen() int {
	return 5
}

func (r *ReportI2cStatus) Unmarshall(b []byte) error {
	r.BusStatus = b[1]
	r.BusSpeed = uint16(b[2]) + uint16(b[3])<<8
	return nil
}

// Data of ReportID_I2CInOut Interrupt Out
type OperationI2cWrite struct {
	SlaveAddr byte // 0..127
	Condition byte // I2C_Master...
	// 1 byte payload len
	Payload []byte
}

func (r *OperationI2cWrite) ReportID() byte {
	return ReportID_I2CInOut + byte(len(r.Payload))/4
}

func (r *OperationI2cWrite) ReportLen() int {
	return len(r.Payload) + 4
}

func (r *OperationI2cWrite) Marshall(b []byte) error {
	if len(r.Payload) > I2CMaxPayload {
		return fmt.Errorf("Payload len %v exceeds maximum size of %v", len(r.Payload), I2CMaxPayload)
	}
	if r.SlaveAddr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %02x", r.SlaveAddr)
	}
	b[1] = r.SlaveAddr
	b[2] = r.Condition
	b[3] = byte(len(r.Payload))
	copy(b[4:], r.Payload)
	return nil
}

// Data of ReportID_I2CRead Interrupt Out
type OperationI2cRead struct {
	SlaveAddr byte   // 0..127
	Condition byte   // I2C_Master...
	Len       uint16 // data length (little endian)
}

func (r *OperationI2cRead) ReportID() byte {
	return ReportID_I2CRead
}

func (r *OperationI2cRead) ReportLen() int {
	return 5
}

func (r *OperationI2cRead) Marshall(b []byte) error {
	if r.SlaveAddr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %02x", r.SlaveAddr)
	}
	b[1] = r.SlaveAddr
	b[2] = r.Condition
	b[3], b[4] = byte(r.Len), byte(r.Len>>8)
	return nil
}

// i2cSplitTransaction splits a payload into chunks that fit into single
// write reports. The first chunk carries the Start condition, the last one
// the Stop condition (if requested), a single chunk carries both.
func i2cSplitTransaction(stop bool, data []byte) (payload [][]byte, conditions []byte) {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > I2CMaxPayload {
			chunk = chunk[:I2CMaxPayload]
		}
		data = data[len(chunk):]
		condition := byte(I2C_MasterNone)
		if len(payload) == 0 {
			condition = I2C_MasterStart
		}
		if len(data) == 0 && stop {
			if len(payload) == 0 {
				condition = I2C_MasterStartStop
			} else {
				condition = I2C_MasterStop
			}
		}
		payload = append(payload, chunk)
		conditions = append(conditions, condition)
	}
	return
}

// I2cWrite implements i2c.Bus. A zero-length write probes the address
// without transferring data.
func (f *Ft260) I2cWrite(addr byte, data ...byte) (int, error) {
	payloads, conditions := i2cSplitTransaction(true, data)
	if len(payloads) == 0 {
		payloads, conditions = [][]byte{nil}, []byte{I2C_MasterStartStop}
	}
	transferred := 0
	for i, chunk := range payloads {
		op := OperationI2cWrite{
			SlaveAddr: addr,
			Condition: conditions[i],
			Payload:   chunk,
		}
		if err := f.Write(&op); err != nil {
			return transferred, err
		}
		if err := f.i2cWaitIdle(); err != nil {
			return transferred, err
		}
		transferred += len(chunk)
	}
	return transferred, nil
}

// I2cRead implements i2c.Bus.
func (f *Ft260) I2cRead(addr byte, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	op := OperationI2cRead{
		SlaveAddr: addr,
		Condition: I2C_MasterStartStop,
		Len:       uint16(len(data)),
	}
	if err := f.Write(&op); err != nil {
		return 0, err
	}

	// Input reports arrive as [report ID, payload len, payload...]
	received := 0
	buf := make([]byte, I2CMaxPayload+2)
	for received < len(data) {
		n, err := f.Device.Read(buf)
		if err != nil {
			return received, err
		}
		if n < 2 {
			return received, fmt.Errorf("Short I2C input report (%v byte)", n)
		}
		id, payloadLen := buf[0], int(buf[1])
		if id < ReportID_I2CInOut || id > ReportID_I2CInOut_Max {
			return received, fmt.Errorf("Unexpected I2C input report id %#02x", id)
		}
		if payloadLen > n-2 {
			return received, fmt.Errorf("Short I2C input report (%v byte, header says %v)", n-2, payloadLen)
		}
		received += copy(data[received:], buf[2:2+payloadLen])
	}
	if err := f.i2cWaitIdle(); err != nil {
		return received, err
	}
	return received, nil
}

func (f *Ft260) i2cWaitIdle() error {
	for i := 0; ; i++ {
		var status ReportI2cStatus
		if err := f.Read(&status); err != nil {
			return err
		}
		if status.BusStatus&I2C_StatusControllerBusy == 0 {
			if bad := status.BusStatus & i2cErrorBits; bad != 0 {
				return fmt.Errorf("I2C transaction failed (bus status %#02x)", status.BusStatus)
			}
			return nil
		}
		if i >= i2cStatusRetries {
			return errors.New("I2C controller stays busy")
		}
	}
}
