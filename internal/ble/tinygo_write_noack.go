//go:build !darwin && !windows

package ble

// The BlueZ backend only exposes write-without-response; BlueZ itself
// picks write-with-response when the characteristic demands it.
func (c *tinygoCharacteristic) Write(data []byte) error {
	_, err := c.char.WriteWithoutResponse(data)
	return err
}
