package main

import (
	"flag"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/gpo/ft260"
	"github.com/antongulenko/gpo/gpo"
	"github.com/antongulenko/gpo/i2c"
	"github.com/antongulenko/gpo/mcp23009"
	log "github.com/sirupsen/logrus"
)

type commandFunc func() error

var (
	command  = "get"
	commands = map[string]commandFunc{
		"none":  func() error { return nil },
		"scan":  scanBus,
		"get":   getValue,
		"set":   setValue,
		"off":   allOff,
		"cycle": cycleChannels,
	}

	devNum      = -1
	useUsb      = false
	usbPath     = ""
	i2cFreq     = uint(400)
	dummy       = false
	noSequencer = false
	queueSize   = 20

	i2cAddr   = uint(mcp23009.ADDRESS)
	numOut    = uint(mcp23009.NUM_PINS)
	channel   = uint(0)
	sleepTime = 400 * time.Millisecond

	device *gpo.Gpo
	bus    i2c.Bus
)

func main() {
	flag.StringVar(&command, "c", command, fmt.Sprintf("Command to execute, one of: %v", commandNames()))
	flag.IntVar(&devNum, "dev", devNum, "Number of the /dev/i2c-N device node to use")
	flag.BoolVar(&useUsb, "usb", useUsb, "Reach the I2C bus through an FT260 USB bridge")
	flag.StringVar(&usbPath, "usb-path", usbPath, "Specify a USB path for the FT260 (implies -usb)")
	flag.UintVar(&i2cFreq, "freq", i2cFreq, "The I2C bus frequency for the FT260 (60 - 3400)")
	flag.BoolVar(&dummy, "dummy", dummy, "Disable real I2C traffic, only log writes")
	flag.BoolVar(&noSequencer, "no-i2c-sequencer", noSequencer, "Disable the extra goroutine for sequencing I2C commands")
	flag.IntVar(&queueSize, "i2c-queue", queueSize, "Size of the I2C request queue")
	flag.UintVar(&i2cAddr, "addr", i2cAddr, "I2C address of the MCP23009")
	flag.UintVar(&numOut, "num-out", numOut, "Number of usable one-hot output pins (0-8)")
	flag.UintVar(&channel, "value", channel, "Channel to select (set command)")
	flag.DurationVar(&sleepTime, "sleep", sleepTime, "Sleep time between channel changes (cycle command)")
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	golib.Checkerr(doMain())
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func doMain() error {
	openedBus, err := openBus()
	if err != nil {
		return err
	}
	bus = openedBus
	device = gpo.New(bus, byte(i2cAddr), int(numOut))

	commandFunc, ok := commands[command]
	if !ok {
		return fmt.Errorf("Unknown command %v, available commands: %v", command, commandNames())
	}
	return commandFunc()
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
	if !noSequencer {
		bus = i2c.NewSequencer(bus, queueSize)
	}
	return bus, nil
}

func scanBus() error {
	slaves := i2c.Scan(bus)
	log.Printf("Scanned slaves: %#02v", slaves)
	return nil
}

func getValue() error {
	if err := device.Init(); err != nil {
		return err
	}
	log.Printf("Raw value: %v, scale: %v", device.Value(), device.Scale())
	return nil
}

func setValue() error {
	selected := int(channel)
	if args := flag.Args(); len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("Failed to parse argument '%v' as channel: %v", args[0], err)
		}
		selected = parsed
	}
	if err := device.Init(); err != nil {
		return err
	}
	if err := device.SetValue(selected); err != nil {
		return err
	}
	log.Printf("Selected channel %v of %v", device.Value(), device.NumOut)
	return nil
}

func allOff() error {
	if err := device.Init(); err != nil {
		return err
	}
	return device.Off()
}

func cycleChannels() error {
	if err := device.Init(); err != nil {
		return err
	}
	for {
		for selected := 0; selected <= device.NumOut; selected++ {
			log.Println("Selecting channel", selected)
			if err := device.SetValue(selected); err != nil {
				return err
			}
			time.Sleep(sleepTime)
		}
	}
}
