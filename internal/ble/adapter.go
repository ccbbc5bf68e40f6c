// Package ble abstracts the Bluetooth LE transport used to reach the
// amplifier. It exposes just the primitives the command protocol needs:
// scan, connect, characteristic write/read, and notification subscribe.
package ble

import "context"

// Characteristic represents a BLE GATT characteristic on a connected device.
type Characteristic interface {
	// Write sends data to the characteristic, requesting delivery
	// acknowledgment where the underlying stack supports it.
	Write(data []byte) error
	// Read performs a direct read of the characteristic value.
	Read() ([]byte, error)
	// Subscribe registers a callback for notifications on this characteristic.
	Subscribe(callback func(data []byte)) error
	// Unsubscribe stops notification delivery.
	Unsubscribe() error
}

// Device represents a discovered BLE peripheral.
type Device struct {
	Name    string
	Address string
	RSSI    int
}

// Connection represents an active BLE connection to a peripheral.
type Connection interface {
	// DiscoverCharacteristic finds a characteristic by UUID within a service.
	DiscoverCharacteristic(serviceUUID, charUUID string) (Characteristic, error)
	// Disconnect terminates the connection.
	Disconnect() error
}

// Adapter abstracts the BLE hardware adapter for testing.
type Adapter interface {
	// Enable powers on the BLE adapter.
	Enable() error
	// Scan discovers advertising peripherals until ctx expires. The
	// amplifier does not advertise its control service, so no service
	// filter is applied.
	Scan(ctx context.Context) ([]Device, error)
	// Connect establishes a connection to the device at the given address.
	Connect(ctx context.Context, addr string) (Connection, error)
}
