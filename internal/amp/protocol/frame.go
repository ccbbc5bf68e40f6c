// Package protocol implements the XY-AP100H command frame encoding.
//
// The amplifier speaks a small binary protocol over GATT: every command
// is a fixed-layout frame terminated by a checksum byte, and status is
// reported either as a direct characteristic read or as a notification
// push. Offsets and opcodes here are bit-exact contracts with the device.
package protocol

import "errors"

// Volume levels accepted by the amplifier.
const (
	MinVolume = 1
	MaxVolume = 31
)

var (
	// ErrVolumeRange is returned before any transport I/O when the
	// requested volume is outside [MinVolume, MaxVolume].
	ErrVolumeRange = errors.New("protocol: volume out of range")

	// ErrShortResponse is returned when a device reply is too short to
	// carry the requested status byte.
	ErrShortResponse = errors.New("protocol: response too short")
)

// Checksum returns the low 8 bits of the sum of all bytes in frame.
func Checksum(frame []byte) byte {
	var sum int
	for _, b := range frame {
		sum += int(b)
	}
	return byte(sum & 0xFF)
}

// EncodeVolume builds the volume-set frame:
//
//	7E 0F 1D <level> 00×10 <checksum>
//
// The level must be in [1, 31]; anything else fails with ErrVolumeRange
// before a connection is ever attempted.
func EncodeVolume(level int) ([]byte, error) {
	if level < MinVolume || level > MaxVolume {
		return nil, ErrVolumeRange
	}
	frame := make([]byte, 0, 15)
	frame = append(frame, 0x7E, 0x0F, 0x1D, byte(level))
	frame = append(frame, make([]byte, 10)...)
	return append(frame, Checksum(frame)), nil
}

// EncodeInputSelect builds the input-select frame:
//
//	7E 05 <code> 00 <checksum>
//
// The caller guarantees code is one of the write-side input codes.
func EncodeInputSelect(code byte) []byte {
	frame := []byte{0x7E, 0x05, code, 0x00}
	return append(frame, Checksum(frame))
}

// DecodeInputStatus extracts the current input code from a direct read
// of the command characteristic. The code sits at offset 4; shorter
// replies fail with ErrShortResponse.
func DecodeInputStatus(data []byte) (byte, error) {
	if len(data) < 5 {
		return 0, ErrShortResponse
	}
	return data[4], nil
}

// DecodeVolumeNotification extracts the volume level from a status
// notification payload. The level sits at offset 5; payloads of 5 bytes
// or fewer carry no usable level and report ok=false rather than an
// error, since the device pushes partial frames while settling.
func DecodeVolumeNotification(data []byte) (level byte, ok bool) {
	if len(data) <= 5 {
		return 0, false
	}
	return data[5], true
}
