// Package serialport reads line-framed text from a serial device
package serialport

import (
	"fmt"

	"csi-monitor/internal/config"

	"go.bug.st/serial"
)

// Port is an open serial device delivering lines
type Port struct {
	port   serial.Port
	reader *LineReader
}

// Open opens the configured device at 8N1 with the configured read timeout
func Open(cfg config.SerialConfig) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Port, err)
	}

	// Drop whatever the device queued before we connected, it lags the plot
	if cfg.ResetInput {
		if err := port.ResetInputBuffer(); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to reset input buffer on %s: %w", cfg.Port, err)
		}
	}

	return &Port{
		port:   port,
		reader: NewLineReader(port, cfg.MaxLineLength),
	}, nil
}

// ReadLine returns the next line, or ErrTimeout if none arrived in time
func (p *Port) ReadLine() ([]byte, error) {
	return p.reader.ReadLine()
}

// Close closes the device
func (p *Port) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// ListPorts returns the serial devices present on the system
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
