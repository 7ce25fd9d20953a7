// Package serialline is the serial-line collaborator (spec §1 "serial
// I/O and reporting"): a newline-framed `$`-command transport to and
// from a grbl-style controller, built on go.bug.st/serial. Framing
// itself (ASCII lines) is owned here; port enumeration and the raw
// termios handshake are go.bug.st/serial's concern, not this package's.
package serialline

import (
	"bufio"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// LineSource is the transport cmd/maslowctl console reads `$`-command
// lines from (handing each to pkg/dispatch) and writes status lines back to. Decoupling this
// from *PortSource lets tests substitute an in-memory pipe.
type LineSource interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	io.Closer
}

// PortSource is a LineSource backed by a real serial port, grounded on
// Thermoquad-heliostat's SerialConnection wrapper but narrowed to
// newline-delimited line transport instead of raw byte streaming.
type PortSource struct {
	port    serial.Port
	scanner *bufio.Scanner
}

// OpenPortSource opens device at baud and returns a PortSource ready to
// exchange `$`-lines with a grbl-style controller.
func OpenPortSource(device string, baud int) (*PortSource, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serialline: open %s: %w", device, err)
	}
	return &PortSource{
		port:    port,
		scanner: bufio.NewScanner(port),
	}, nil
}

// ReadLine blocks for the next newline-terminated line, with the
// trailing newline stripped.
func (p *PortSource) ReadLine() (string, error) {
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", fmt.Errorf("serialline: read: %w", err)
	}
	return "", io.EOF
}

// WriteLine writes line followed by a newline.
func (p *PortSource) WriteLine(line string) error {
	if _, err := p.port.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("serialline: write: %w", err)
	}
	return nil
}

// Close releases the underlying port.
func (p *PortSource) Close() error {
	return p.port.Close()
}

// ListAvailablePorts enumerates serial ports go.bug.st/serial can see,
// for a CLI flag that wants to list candidate --port values.
func ListAvailablePorts() ([]string, error) {
	infos, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialline: list ports: %w", err)
	}
	return infos, nil
}
