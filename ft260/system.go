package ft260

import "fmt"

const (
	ReportID_ChipCode      = 0xA0 // Feature In
	ReportID_SystemSetting = 0xA1 // Feature In/Out

	FT260_CHIP_CODE = uint32(0x02600200)
)

// Requests for ReportID_SystemSetting Feature Out
const (
	SetSystemSetting_Clock       = 0x01 // Clock...
	SetSystemSetting_I2CReset    = 0x20 // <empty>
	SetSystemSetting_I2CSetClock = 0x22 // LSB+MSB of clock speed (60K-3400K bps)
)

const (
	Clock12MHz = byte(0)
	Clock24MHz = byte(1)
	Clock48MHz = byte(2)
)

// Result of ReportID_ChipCode Feature In
type ReportChipCode struct {
	ChipCode uint32
	// 8 reserved byte
}

func (r *ReportChipCode) ReportID() byte {
	return ReportID_ChipCode
}

func (r *ReportChipCode) ReportLen() int {
	return 13
}

func (r *ReportChipCode) Unmarshall(b []byte) error {
	r.ChipCode = uint32(b[4]) + uint32(b[3])<<8 + uint32(b[2])<<16 + uint32(b[1])<<24
	return nil
}

// SetSystemStatus writes one system setting (ReportID_SystemSetting Feature
// Out). Value may be nil, bool, byte or uint16 depending on the request.
type SetSystemStatus struct {
	Request byte
	Value   interface{}
}

func (s *SetSystemStatus) ReportID() byte {
	return ReportID_SystemSetting
}

func (s *SetSystemStatus) ReportLen() int {
	return 2 + valueLen(s.Value)
}

func (s *SetSystemStatus) Marshall(b []byte) error {
	b[1] = s.Request
	switch v := s.Value.(type) {
	case nil:
	case bool:
		if v {
			b[2] = 1
		}
	case byte:
		b[2] = v
	case uint16:
		b[2], b[3] = byte(v), byte(v>>8)
	default:
		return fmt.Errorf("Unexpected type for system setting %#02x: %T", s.Request, s.Value)
	}
	return nil
}

func valueLen(val interface{}) int {
	switch val.(type) {
	case nil:
		return 0
	case uint16:
		return 2
	default:
		return 1
	}
}

// Setup validates the chip code and configures the system clock and the I2C
// master for the given bus frequency (60 - 3400 kbps).
func (f *Ft260) Setup(i2cFreq uint) error {
	var code ReportChipCode
	if err := f.Read(&code); err != nil {
		return err
	}
	if code.ChipCode != FT260_CHIP_CODE {
		return fmt.Errorf("Unexpected chip code %08x (expected %08x)", code.ChipCode, FT260_CHIP_CODE)
	}

	var err error
	f.writeConfigValue(&err, SetSystemSetting_Clock, Clock48MHz)
	f.writeConfigValue(&err, SetSystemSetting_I2CReset, nil) // Reset i2c bus in case it was disturbed
	f.writeConfigValue(&err, SetSystemSetting_I2CSetClock, uint16(i2cFreq))
	if err != nil {
		return err
	}

	var status ReportI2cStatus
	if err := f.Read(&status); err != nil {
		return err
	}
	if status.BusSpeed != uint16(i2cFreq) {
		return fmt.Errorf("FT260: unexpected I2C bus speed %v (expected %v)", status.BusSpeed, i2cFreq)
	}
	return nil
}

func (f *Ft260) writeConfigValue(outErr *error, request byte, val interface{}) {
	if *outErr == nil {
		*outErr = f.Write(&SetSystemStatus{
			Request: request,
			Value:   val,
		})
	}
}
