package bridge

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/san-kum/seekbot/internal/servo"
	"go.bug.st/serial"
)

// Frame is the wire form of one speed command.
type Frame struct {
	T int     `json:"T"`
	X float64 `json:"X"`
	Z float64 `json:"Z"`
}

// Encode renders f as one newline-terminated JSON line.
func (f Frame) Encode() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Bridge writes velocity commands to a serial port. It is safe for
// concurrent use.
type Bridge struct {
	mu      sync.Mutex
	port    io.WriteCloser
	tValue  int
	logger  *log.Logger
	written int
}

// New wraps an already open port.
func New(port io.WriteCloser, tValue int, logger *log.Logger) *Bridge {
	if tValue == 0 {
		tValue = DefaultTValue
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{port: port, tValue: tValue, logger: logger}
}

// Open opens the configured serial port.
func Open(cfg Config, logger *log.Logger) (*Bridge, error) {
	if logger == nil {
		logger = log.Default()
	}
	if !isSupportedBaud(cfg.BaudRate) {
		logger.Printf("bridge: unsupported baud %d, defaulting to %d", cfg.BaudRate, DefaultBaudRate)
	}
	opts, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(opts.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Port, err)
	}
	logger.Printf("bridge: writing speed commands to %s at %d baud", opts.Port, opts.BaudRate)
	return New(port, opts.TValue, logger), nil
}

// Publish writes one command frame.
func (b *Bridge) Publish(cmd servo.Command) error {
	line, err := Frame{T: b.tValue, X: cmd.Linear, Z: cmd.Angular}.Encode()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.port.Write(line)
	if err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	if n != len(line) {
		return fmt.Errorf("serial write: short write %d of %d bytes", n, len(line))
	}
	b.written += n
	return nil
}

// Written returns the number of bytes sent so far.
func (b *Bridge) Written() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written
}

func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}
