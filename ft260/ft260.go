package ft260

import (
	"errors"
	"fmt"

	"github.com/antongulenko/hid"
	log "github.com/sirupsen/logrus"
)

const (
	FTDIVendorId   = 0x0403
	FT260ProductId = 0x6030
)

// Driver selects and opens an FT260 USB-HID-to-I2C bridge.
type Driver struct {
	Vendor  uint16
	Product uint16
	Path    string // If set, select the device with this USB path
}

func (d *Driver) Open() (*Ft260, error) {
	if !hid.Supported() {
		return nil, errors.New("The hid library is not supported on this platform")
	}
	vendor, product := d.Vendor, d.Product
	if vendor == 0 {
		vendor = FTDIVendorId
	}
	if product == 0 {
		product = FT260ProductId
	}
	devices := hid.Enumerate(vendor, product)
	if len(devices) == 0 {
		return nil, fmt.Errorf("No USB HID device found with vendorID=%04x productID=%04x", vendor, product)
	}
	info := devices[0]
	if d.Path != "" {
		found := false
		for _, candidate := range devices {
			if candidate.Path == d.Path {
				info = candidate
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("No USB HID device with path %v (vendorID=%04x productID=%04x)", d.Path, vendor, product)
		}
	} else if len(devices) > 1 {
		log.Warnf("Multiple devices connected with vendorID=%04x productID=%04x, using first", vendor, product)
	}
	log.Printf("Opening USB HID device %v (USB %v): %v (%04x) from %v (%04x), Release %v",
		info.Path, info.Interface, info.Product, info.ProductID, info.Manufacturer, info.VendorID, info.Release)
	dev, err := info.Open()
	if err != nil {
		return nil, err
	}
	return &Ft260{
		Device: dev,
	}, nil
}

func Open() (*Ft260, error) {
	return (&Driver{}).Open()
}

func OpenPath(path string) (*Ft260, error) {
	return (&Driver{Path: path}).Open()
}

// Ft260 talks to the bridge chip through HID reports and implements i2c.Bus
// on top of its I2C master (see i2c.go in this package).
type Ft260 struct {
	*hid.Device
}

// Reports sent to or received from the device. The marshalled buffer
// contains the report ID at index 0, payload fields start at index 1.
type ReportIn interface {
	Unmarshall(data []byte) error
	ReportID() byte
	ReportLen() int
}

type ReportOut interface {
	Marshall(data []byte) error
	ReportID() byte
	ReportLen() int
}

func (f *Ft260) Write(report ReportOut) error {
	data := make([]byte, report.ReportLen())
	if err := report.Marshall(data); err != nil {
		return err
	}
	data[0] = report.ReportID()
	n, err := f.Device.Write(data)
	if err == nil && n != len(data) {
		err = fmt.Errorf("ft260: wrong write len (%v instead of %v)", n, len(data))
	}
	return err
}

func (f *Ft260) Read(report ReportIn) error {
	data := make([]byte, report.ReportLen())
	data[0] = report.ReportID()
	n, err := f.Device.Read(data)
	if err == nil && n != len(data) {
		err = fmt.Errorf("ft260: wrong read len (%v instead of %v)", n, len(data))
	}
	if err == nil && data[0] != report.ReportID() {
		return fmt.Errorf("Unexpected report id (expected %v, received %v)", report.ReportID(), data[0])
	}
	if err == nil {
		err = report.Unmarshall(data)
	}
	return err
}
