package bridge

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

const (
	DefaultPort     = "/dev/ttyACM0"
	DefaultBaudRate = 115200
	// DefaultTValue selects the board's speed-control command.
	DefaultTValue = 13
)

// supportedBaudRates are the rates the controller board firmware accepts.
var supportedBaudRates = []int{9600, 19200, 38400, 57600, 115200}

// Config describes the serial link to the motor controller.
type Config struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
	TValue   int    `yaml:"t_value"`
}

func DefaultConfig() Config {
	return Config{
		Port:     DefaultPort,
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		TValue:   DefaultTValue,
	}
}

// Normalize validates the options and applies defaults for any unset values.
// An unsupported baud rate falls back to DefaultBaudRate.
func (c Config) Normalize() (Config, error) {
	out := c
	if strings.TrimSpace(out.Port) == "" {
		out.Port = DefaultPort
	}
	if !isSupportedBaud(out.BaudRate) {
		out.BaudRate = DefaultBaudRate
	}

	if out.DataBits == 0 {
		out.DataBits = 8
	}
	if out.DataBits < 5 || out.DataBits > 8 {
		return out, fmt.Errorf("invalid data bits %d: must be between 5 and 8", out.DataBits)
	}

	if out.StopBits == 0 {
		out.StopBits = 1
	}
	if out.StopBits != 1 && out.StopBits != 2 {
		return out, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", out.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(out.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return out, fmt.Errorf("unsupported parity %q: expected N, E, or O", out.Parity)
	}
	out.Parity = parity

	if out.TValue == 0 {
		out.TValue = DefaultTValue
	}
	return out, nil
}

// SerialMode converts the options into the mode used to open the port.
func (c Config) SerialMode() (*serial.Mode, error) {
	opts, err := c.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch opts.Parity {
	case "N":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}

func isSupportedBaud(rate int) bool {
	for _, r := range supportedBaudRates {
		if r == rate {
			return true
		}
	}
	return false
}
