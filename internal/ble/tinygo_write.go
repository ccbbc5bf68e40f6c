//go:build darwin || windows

package ble

// The CoreBluetooth and WinRT backends of tinygo bluetooth expose an
// acknowledged write; use it so command delivery is confirmed by the
// device's ATT response.
func (c *tinygoCharacteristic) Write(data []byte) error {
	_, err := c.char.Write(data)
	return err
}
