package mcp23009

import "fmt"

// OutputMask computes the IODIR register value that enables the numOut lowest
// pins as outputs and leaves the remaining high pins as inputs.
// Examples: 0 -> 0xFF (all input), 3 -> 0xF8, 8 -> 0x00 (all output).
func OutputMask(numOut int) byte {
	if numOut < 0 || numOut > NUM_PINS {
		panic(fmt.Sprintf("Invalid number of output pins %v (must be 0..%v)", numOut, NUM_PINS))
	}
	return byte(^((1 << uint(numOut)) - 1) & 0xFF)
}

// ChannelMask translates a one-hot channel selection into a GPIO register
// value. Channel 0 deasserts all outputs, channels 1..8 assert exactly the
// corresponding pin (channel 1 -> bit 0, channel 8 -> bit 7).
func ChannelMask(channel int) byte {
	if channel < 0 || channel > NUM_PINS {
		panic(fmt.Sprintf("Invalid channel %v (must be 0..%v)", channel, NUM_PINS))
	}
	if channel == 0 {
		return 0
	}
	return byte(1 << uint(channel-1))
}
