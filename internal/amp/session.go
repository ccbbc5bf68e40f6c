package amp

import (
	"context"

	"go.uber.org/zap"

	"github.com/xyamp/ampbridge/internal/ble"
)

// withSession runs fn against a freshly connected device and guarantees
// the connection is released on every exit path, success or failure.
// This is the only place disconnect happens; no caller performs raw
// connect/disconnect.
func (c *Client) withSession(ctx context.Context, op, addr string, fn func(ctx context.Context, conn ble.Connection) error) error {
	conn, err := c.adapter.Connect(ctx, addr)
	if err != nil {
		return &OpError{Op: op, Address: addr, Err: err}
	}
	c.log.Debug("connected", zap.String("op", op), zap.String("address", addr))

	defer func() {
		if derr := conn.Disconnect(); derr != nil {
			c.log.Warn("disconnect failed", zap.String("address", addr), zap.Error(derr))
			return
		}
		c.log.Debug("disconnected", zap.String("address", addr))
	}()

	return fn(ctx, conn)
}

// commandChar locates the command characteristic on an open connection.
func commandChar(conn ble.Connection) (ble.Characteristic, error) {
	return conn.DiscoverCharacteristic(ServiceUUID, CommandCharUUID)
}

// statusChar locates the status (notification) characteristic.
func statusChar(conn ble.Connection) (ble.Characteristic, error) {
	return conn.DiscoverCharacteristic(ServiceUUID, StatusCharUUID)
}
