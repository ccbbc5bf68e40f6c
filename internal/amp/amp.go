// Package amp drives a Sinilink XY-AP100H Bluetooth LE audio amplifier.
// Each operation opens its own connection, performs one protocol
// exchange, and disconnects; no connection outlives an operation.
package amp

import "fmt"

// GATT UUIDs of the amplifier's control service. These are bit-exact
// contracts with the device firmware.
const (
	ServiceUUID     = "0000ae00-0000-1000-8000-00805f9b34fb"
	CommandCharUUID = "0000ae10-0000-1000-8000-00805f9b34fb"
	StatusCharUUID  = "0000ae04-0000-1000-8000-00805f9b34fb"
)

// OpError describes a transport failure during a device operation,
// carrying the operation name and device address for context. No
// retries are performed at this layer.
type OpError struct {
	Op      string
	Address string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("amp: %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
