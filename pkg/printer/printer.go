// Package printer renders receipts as ESC/POS and sends them to a thermal printer.
package printer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Printer delivers a finished ESC/POS job.
type Printer interface {
	Print(data []byte) error
	Close() error
	// IsConnected reports whether the device answers right now
	IsConnected() bool
	// Kind is "usb", "network" or "none"
	Kind() string
}

// Config selects and addresses a printer.
type Config struct {
	Type    string // usb, network or none
	USBPath string // /dev/usb/lp0
	Address string // host:9100
	Width   int
}

const (
	dialTimeout    = 5 * time.Second
	connectTimeout = 2 * time.Second
	writeTimeout   = 10 * time.Second
)

// device opens a fresh writer for every job, so an unplugged printer
// recovers without a restart.
type device struct {
	kind      string
	target    string
	open      func() (io.WriteCloser, error)
	connected func() bool
}

func (d *device) Print(data []byte) error {
	w, err := d.open()
	if err != nil {
		return fmt.Errorf("printer: open %s %s: %w", d.kind, d.target, err)
	}
	_, werr := w.Write(data)
	cerr := w.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return fmt.Errorf("printer: write %s %s: %w", d.kind, d.target, err)
	}
	return nil
}

func (d *device) Close() error      { return nil }
func (d *device) IsConnected() bool { return d.connected() }
func (d *device) Kind() string      { return d.kind }

func usbDevice(path string) *device {
	return &device{
		kind:   "usb",
		target: path,
		open: func() (io.WriteCloser, error) {
			return os.OpenFile(path, os.O_WRONLY, 0)
		},
		connected: func() bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

func networkDevice(addr string) *device {
	return &device{
		kind:   "network",
		target: addr,
		open: func() (io.WriteCloser, error) {
			conn, err := net.DialTimeout("tcp", addr, dialTimeout)
			if err != nil {
				return nil, err
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			return conn, nil
		},
		connected: func() bool {
			conn, err := net.DialTimeout("tcp", addr, connectTimeout)
			if err != nil {
				return false
			}
			conn.Close()
			return true
		},
	}
}

// MemoryPrinter records jobs instead of printing them. It backs the "none" type.
type MemoryPrinter struct {
	mu   sync.Mutex
	Jobs [][]byte
}

// NewMemoryPrinter creates an empty MemoryPrinter
func NewMemoryPrinter() *MemoryPrinter {
	return &MemoryPrinter{}
}

func (p *MemoryPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Jobs = append(p.Jobs, append([]byte(nil), data...))
	return nil
}

func (p *MemoryPrinter) Close() error      { return nil }
func (p *MemoryPrinter) IsConnected() bool { return false }
func (p *MemoryPrinter) Kind() string      { return "none" }

// New builds the printer described by cfg.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case "", "none":
		return NewMemoryPrinter(), nil
	case "usb":
		if cfg.USBPath == "" {
			return nil, errors.New("printer: usb type needs a device path")
		}
		return usbDevice(cfg.USBPath), nil
	case "network":
		if cfg.Address == "" {
			return nil, errors.New("printer: network type needs an address")
		}
		return networkDevice(cfg.Address), nil
	}
	return nil, fmt.Errorf("printer: unknown type %q", cfg.Type)
}
