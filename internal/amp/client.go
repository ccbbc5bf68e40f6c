package amp

import (
	"context"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/xyamp/ampbridge/internal/amp/protocol"
	"github.com/xyamp/ampbridge/internal/ble"
)

// Options configures client timing behavior.
type Options struct {
	NotifyWait time.Duration // how long Volume waits for a status push
	ScanWait   time.Duration // discovery window for Scan
}

// DefaultOptions returns the timing the device is known to work with.
func DefaultOptions() Options {
	return Options{
		NotifyWait: 2 * time.Second,
		ScanWait:   5 * time.Second,
	}
}

// Client performs amplifier operations over a BLE adapter. The codec is
// stateless and each operation owns its session, so a Client is safe
// for concurrent use; serialization of device access is the bridge's
// job, not the client's.
type Client struct {
	adapter ble.Adapter
	log     *zap.Logger
	opts    Options
}

// NewClient creates an amplifier client on the given adapter.
func NewClient(adapter ble.Adapter, log *zap.Logger, opts Options) *Client {
	if opts.NotifyWait <= 0 {
		opts.NotifyWait = 2 * time.Second
	}
	if opts.ScanWait <= 0 {
		opts.ScanWait = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{adapter: adapter, log: log, opts: opts}
}

// Scan discovers nearby BLE peripherals for the configured window.
// Unnamed peripherals are reported as "Unknown".
func (c *Client) Scan(ctx context.Context) ([]ble.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ScanWait)
	defer cancel()

	devices, err := c.adapter.Scan(ctx)
	if err != nil {
		return nil, &OpError{Op: "scan", Address: "", Err: err}
	}
	for i := range devices {
		if devices[i].Name == "" {
			devices[i].Name = "Unknown"
		}
	}
	c.log.Info("scan complete", zap.Int("devices", len(devices)))
	return devices, nil
}

// SetVolume sets the output volume. The level is validated before any
// transport I/O; the device does not acknowledge the new level beyond
// the write itself, confirmation requires a later status query.
func (c *Client) SetVolume(ctx context.Context, addr string, level int) error {
	frame, err := protocol.EncodeVolume(level)
	if err != nil {
		return err
	}
	return c.withSession(ctx, "set_volume", addr, func(ctx context.Context, conn ble.Connection) error {
		char, err := commandChar(conn)
		if err != nil {
			return &OpError{Op: "set_volume", Address: addr, Err: err}
		}
		c.log.Debug("sending volume command",
			zap.String("address", addr),
			zap.String("frame", hex.EncodeToString(frame)))
		if err := char.Write(frame); err != nil {
			return &OpError{Op: "set_volume", Address: addr, Err: err}
		}
		c.log.Info("volume set", zap.String("address", addr), zap.Int("level", level))
		return nil
	})
}

// Volume queries the current volume level. The device only reports
// volume via notification pushes, so this subscribes to the status
// characteristic, provokes a push by reading the command
// characteristic, and waits up to NotifyWait for a usable payload.
// ok is false when no usable notification arrived in the window; the
// caller is never blocked past it.
func (c *Client) Volume(ctx context.Context, addr string) (level byte, ok bool, err error) {
	err = c.withSession(ctx, "get_volume", addr, func(ctx context.Context, conn ble.Connection) error {
		status, err := statusChar(conn)
		if err != nil {
			return &OpError{Op: "get_volume", Address: addr, Err: err}
		}

		// Resolved at most once; later pushes are dropped.
		got := make(chan byte, 1)
		if err := status.Subscribe(func(data []byte) {
			v, usable := protocol.DecodeVolumeNotification(data)
			if !usable {
				c.log.Debug("ignoring short notification",
					zap.String("address", addr), zap.Int("len", len(data)))
				return
			}
			select {
			case got <- v:
			default:
			}
		}); err != nil {
			return &OpError{Op: "get_volume", Address: addr, Err: err}
		}
		defer func() {
			if uerr := status.Unsubscribe(); uerr != nil {
				c.log.Warn("unsubscribe failed", zap.String("address", addr), zap.Error(uerr))
			}
		}()

		// Reading the command characteristic nudges the device into
		// pushing its status. This is a trigger, not a request/response:
		// the notification may never come.
		cmd, err := commandChar(conn)
		if err != nil {
			return &OpError{Op: "get_volume", Address: addr, Err: err}
		}
		if _, err := cmd.Read(); err != nil {
			return &OpError{Op: "get_volume", Address: addr, Err: err}
		}

		timer := time.NewTimer(c.opts.NotifyWait)
		defer timer.Stop()
		select {
		case v := <-got:
			level, ok = v, true
			c.log.Debug("volume notification", zap.String("address", addr), zap.Uint8("level", v))
		case <-timer.C:
			c.log.Debug("no volume notification within wait window", zap.String("address", addr))
		case <-ctx.Done():
			return &OpError{Op: "get_volume", Address: addr, Err: ctx.Err()}
		}
		return nil
	})
	return level, ok, err
}

// Input queries the currently selected input source code via a direct
// read of the command characteristic.
func (c *Client) Input(ctx context.Context, addr string) (code byte, err error) {
	err = c.withSession(ctx, "get_input", addr, func(ctx context.Context, conn ble.Connection) error {
		char, err := commandChar(conn)
		if err != nil {
			return &OpError{Op: "get_input", Address: addr, Err: err}
		}
		data, err := char.Read()
		if err != nil {
			return &OpError{Op: "get_input", Address: addr, Err: err}
		}
		c.log.Debug("input status read",
			zap.String("address", addr),
			zap.String("data", hex.EncodeToString(data)))
		code, err = protocol.DecodeInputStatus(data)
		return err
	})
	return code, err
}

// SetInput switches the active input source. The symbolic name is
// resolved before connecting; unknown names never reach the transport.
func (c *Client) SetInput(ctx context.Context, addr, name string) error {
	code, err := protocol.InputCode(name)
	if err != nil {
		return err
	}
	frame := protocol.EncodeInputSelect(code)
	return c.withSession(ctx, "set_input", addr, func(ctx context.Context, conn ble.Connection) error {
		char, err := commandChar(conn)
		if err != nil {
			return &OpError{Op: "set_input", Address: addr, Err: err}
		}
		c.log.Debug("sending input command",
			zap.String("address", addr),
			zap.String("frame", hex.EncodeToString(frame)))
		if err := char.Write(frame); err != nil {
			return &OpError{Op: "set_input", Address: addr, Err: err}
		}
		c.log.Info("input set", zap.String("address", addr), zap.String("input", name))
		return nil
	})
}
