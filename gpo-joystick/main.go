package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/gpo/ft260"
	"github.com/antongulenko/gpo/gpo"
	"github.com/antongulenko/gpo/i2c"
	"github.com/antongulenko/gpo/mcp23009"
	log "github.com/sirupsen/logrus"
	"github.com/splace/joysticks"
)

// Selects the active GPO channel with joystick buttons: button n drives
// output channel n, the off button deselects all outputs.

var (
	joystickIndex = 1
	retryDuration = 2 * time.Second
	offButton     = 9

	devNum    = -1
	useUsb    = false
	usbPath   = ""
	i2cFreq   = uint(400)
	dummy     = false
	queueSize = 20
	i2cAddr   = uint(mcp23009.ADDRESS)
	numOut    = uint(mcp23009.NUM_PINS)
)

func main() {
	flag.IntVar(&joystickIndex, "js", joystickIndex, "Joystick device index")
	flag.DurationVar(&retryDuration, "js-retry", retryDuration, "Time to retry joystick initialization")
	flag.IntVar(&offButton, "off-button", offButton, "Joystick button index that deselects all outputs")
	flag.IntVar(&devNum, "dev", devNum, "Number of the /dev/i2c-N device node to use")
	flag.BoolVar(&useUsb, "usb", useUsb, "Reach the I2C bus through an FT260 USB bridge")
	flag.StringVar(&usbPath, "usb-path", usbPath, "Specify a USB path for the FT260 (implies -usb)")
	flag.UintVar(&i2cFreq, "freq", i2cFreq, "The I2C bus frequency for the FT260 (60 - 3400)")
	flag.BoolVar(&dummy, "dummy", dummy, "Disable real I2C traffic, only log writes")
	flag.IntVar(&queueSize, "i2c-queue", queueSize, "Size of the I2C request queue")
	flag.UintVar(&i2cAddr, "addr", i2cAddr, "I2C address of the MCP23009")
	flag.UintVar(&numOut, "num-out", numOut, "Number of usable one-hot output pins (0-8)")
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()

	bus, err := openBus()
	golib.Checkerr(err)
	device := gpo.New(bus, byte(i2cAddr), int(numOut))
	golib.Checkerr(device.Init())
	golib.Checkerr(device.SetValue(0))

	// "Clean" shutdown with Ctrl-C signal: deselect all outputs
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			golib.Printerr(device.Off())
		})
	}
	defer cleanup()
	go func() {
		fmt.Println("Received signal", <-c)
		cleanup()
		os.Exit(0)
	}()

	js := connectJoystick()
	selected := make(chan int, mcp23009.NUM_PINS)
	registered := 0
	for channel := 1; channel <= device.NumOut; channel++ {
		button := uint8(channel)
		if !js.ButtonExists(button) {
			log.Warnf("Button %v does not exist on joystick, channel %v not selectable", button, channel)
			continue
		}
		pressed := js.OnButton(button)
		go forwardButton(pressed, channel, selected)
		registered++
	}
	if registered == 0 {
		log.Fatalln("No usable buttons on joystick device", joystickIndex)
	}
	if js.ButtonExists(uint8(offButton)) {
		pressed := js.OnButton(uint8(offButton))
		go forwardButton(pressed, 0, selected)
	} else {
		log.Warnf("Off button %v does not exist on joystick", offButton)
	}

	go js.ParcelOutEvents()

	// Single writer towards the device, see gpo.Gpo concurrency contract
	for channel := range selected {
		log.Println("Selecting channel", channel)
		golib.Printerr(device.SetValue(channel))
	}
}

func forwardButton(events chan joysticks.Event, channel int, selected chan<- int) {
	for range events {
		selected <- channel
	}
}

func connectJoystick() *joysticks.HID {
	for {
		js := joysticks.Connect(joystickIndex)
		if js == nil {
			log.Errorf("Failed to open joystick with index %v, retrying in %v...", joystickIndex, retryDuration)
			time.Sleep(retryDuration)
			continue
		}
		log.Printf("Opened joystick device index %v (%v buttons, %v axes, %v events)",
			joystickIndex, len(js.Buttons), len(js.HatAxes), len(js.Events))
		return js
	}
}

func openBus() (i2c.Bus, error) {
	var bus i2c.Bus
	switch {
	case dummy:
		log.Println("Dummy bus: skipping initialization of I2C peripherals")
		bus = new(i2c.Dummy)
	case useUsb || usbPath != "":
		usb, err := ft260.OpenPath(usbPath)
		if err != nil {
			return nil, err
		}
		if err := usb.Setup(i2cFreq); err != nil {
			return nil, err
		}
		bus = usb
	default:
		if devNum < 0 {
			return nil, fmt.Errorf("Specify the I2C bus with -dev N or -usb")
		}
		dev, err := i2c.OpenDev(devNum)
		if err != nil {
			return nil, err
		}
		bus = dev
	}
	return i2c.NewSequencer(bus, queueSize), nil
}
