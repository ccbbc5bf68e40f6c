// Package bletest provides a scripted in-memory Adapter for tests that
// need to drive a simulated amplifier without hardware.
package bletest

import (
	"context"
	"fmt"
	"sync"

	"github.com/xyamp/ampbridge/internal/ble"
)

// Characteristic records writes and lets tests script read values and
// inject notifications.
type Characteristic struct {
	mu        sync.Mutex
	writes    [][]byte
	readValue []byte
	callback  func([]byte)

	WriteErr error
	ReadErr  error
}

func (c *Characteristic) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	return nil
}

func (c *Characteristic) Read() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	cp := make([]byte, len(c.readValue))
	copy(cp, c.readValue)
	return cp, nil
}

func (c *Characteristic) Subscribe(cb func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
	return nil
}

func (c *Characteristic) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = nil
	return nil
}

// SetReadValue scripts the value returned by subsequent Reads.
func (c *Characteristic) SetReadValue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readValue = append([]byte(nil), data...)
}

// Writes returns a copy of all data written so far.
func (c *Characteristic) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

// Notify delivers a notification to the current subscriber, if any.
// Returns true if a subscriber received it.
func (c *Characteristic) Notify(data []byte) bool {
	c.mu.Lock()
	cb := c.callback
	c.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(data)
	return true
}

// Subscribed reports whether a notification callback is registered.
func (c *Characteristic) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callback != nil
}

// Connection simulates one BLE connection with a fixed characteristic set.
type Connection struct {
	mu          sync.Mutex
	chars       map[string]*Characteristic
	disconnects int

	DiscoverErr error
}

// NewConnection creates a connection exposing characteristics for the
// given UUIDs.
func NewConnection(charUUIDs ...string) *Connection {
	chars := make(map[string]*Characteristic, len(charUUIDs))
	for _, uuid := range charUUIDs {
		chars[uuid] = &Characteristic{}
	}
	return &Connection{chars: chars}
}

func (c *Connection) DiscoverCharacteristic(serviceUUID, charUUID string) (ble.Characteristic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DiscoverErr != nil {
		return nil, c.DiscoverErr
	}
	char, ok := c.chars[charUUID]
	if !ok {
		return nil, fmt.Errorf("bletest: unknown characteristic UUID %q", charUUID)
	}
	return char, nil
}

func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return nil
}

// Char returns the scripted characteristic for the given UUID, or nil.
func (c *Connection) Char(charUUID string) *Characteristic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chars[charUUID]
}

// Disconnects returns how many times Disconnect was called.
func (c *Connection) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

// Adapter simulates the BLE hardware adapter. Connect hands out the
// configured Connection regardless of address, mirroring a single
// amplifier on the air.
type Adapter struct {
	mu   sync.Mutex
	conn *Connection

	Devices    []ble.Device
	ScanErr    error
	ConnectErr error
	EnableErr  error

	connects []string
}

// NewAdapter creates a fake adapter handing out conn on every Connect.
func NewAdapter(conn *Connection) *Adapter {
	return &Adapter{conn: conn}
}

func (a *Adapter) Enable() error { return a.EnableErr }

func (a *Adapter) Scan(_ context.Context) ([]ble.Device, error) {
	if a.ScanErr != nil {
		return nil, a.ScanErr
	}
	return a.Devices, nil
}

func (a *Adapter) Connect(_ context.Context, addr string) (ble.Connection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ConnectErr != nil {
		return nil, a.ConnectErr
	}
	a.connects = append(a.connects, addr)
	return a.conn, nil
}

// Connects returns the addresses passed to Connect, in order.
func (a *Adapter) Connects() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.connects))
	copy(out, a.connects)
	return out
}

// Compile-time interface checks.
var (
	_ ble.Adapter        = (*Adapter)(nil)
	_ ble.Connection     = (*Connection)(nil)
	_ ble.Characteristic = (*Characteristic)(nil)
)
