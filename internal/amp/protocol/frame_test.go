package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeVolumeFrameLayout(t *testing.T) {
	got, err := EncodeVolume(31)
	if err != nil {
		t.Fatalf("EncodeVolume(31) error = %v", err)
	}
	// 7E 0F 1D 1F, ten zeros, checksum 0x7E+0x0F+0x1D+0x1F = 0xC9
	want := []byte{
		0x7E, 0x0F, 0x1D, 0x1F,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xC9,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeVolume(31) =\n  got  %x\n  want %x", got, want)
	}
}

func TestEncodeVolumeChecksum(t *testing.T) {
	for level := MinVolume; level <= MaxVolume; level++ {
		frame, err := EncodeVolume(level)
		if err != nil {
			t.Fatalf("EncodeVolume(%d) error = %v", level, err)
		}
		if len(frame) != 15 {
			t.Fatalf("EncodeVolume(%d) length = %d, want 15", level, len(frame))
		}
		var sum int
		for _, b := range frame[:14] {
			sum += int(b)
		}
		if frame[14] != byte(sum&0xFF) {
			t.Errorf("EncodeVolume(%d) checksum = 0x%02x, want 0x%02x", level, frame[14], sum&0xFF)
		}
	}
}

func TestEncodeVolumeRange(t *testing.T) {
	for _, level := range []int{-1, 0, 32, 100} {
		_, err := EncodeVolume(level)
		if !errors.Is(err, ErrVolumeRange) {
			t.Errorf("EncodeVolume(%d) error = %v, want ErrVolumeRange", level, err)
		}
	}
}

func TestEncodeInputSelect(t *testing.T) {
	// 0x7E+0x05+0x16+0x00 = 0x99
	got := EncodeInputSelect(0x16)
	want := []byte{0x7E, 0x05, 0x16, 0x00, 0x99}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeInputSelect(0x16) = %x, want %x", got, want)
	}
}

func TestEncodeInputSelectAllCodes(t *testing.T) {
	for _, code := range []byte{0x16, 0x14, 0x15, 0x04} {
		frame := EncodeInputSelect(code)
		if len(frame) != 5 {
			t.Fatalf("EncodeInputSelect(0x%02x) length = %d, want 5", code, len(frame))
		}
		if frame[4] != Checksum(frame[:4]) {
			t.Errorf("EncodeInputSelect(0x%02x) checksum = 0x%02x, want 0x%02x",
				code, frame[4], Checksum(frame[:4]))
		}
	}
}

func TestChecksumTruncates(t *testing.T) {
	if got := Checksum([]byte{0xFF, 0xFF, 0x02}); got != 0x00 {
		t.Errorf("Checksum(ff ff 02) = 0x%02x, want 0x00", got)
	}
}

func TestDecodeInputStatus(t *testing.T) {
	_, err := DecodeInputStatus([]byte{0x7E, 0x05, 0x16, 0x00})
	if !errors.Is(err, ErrShortResponse) {
		t.Errorf("DecodeInputStatus(4 bytes) error = %v, want ErrShortResponse", err)
	}

	code, err := DecodeInputStatus([]byte{0x7E, 0x05, 0x00, 0x00, 0x17})
	if err != nil {
		t.Fatalf("DecodeInputStatus(5 bytes) error = %v", err)
	}
	if code != 0x17 {
		t.Errorf("DecodeInputStatus = 0x%02x, want 0x17", code)
	}
}

func TestDecodeVolumeNotification(t *testing.T) {
	level, ok := DecodeVolumeNotification([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x0F})
	if !ok {
		t.Fatal("DecodeVolumeNotification(6 bytes) ok = false, want true")
	}
	if level != 0x0F {
		t.Errorf("DecodeVolumeNotification = 0x%02x, want 0x0F", level)
	}

	if _, ok := DecodeVolumeNotification([]byte{0x00, 0x00, 0x00, 0x00, 0x0F}); ok {
		t.Error("DecodeVolumeNotification(5 bytes) ok = true, want false")
	}
	if _, ok := DecodeVolumeNotification(nil); ok {
		t.Error("DecodeVolumeNotification(nil) ok = true, want false")
	}
}
