package protocol

import "fmt"

// Input source names accepted by the select command.
const (
	InputAux     = "aux"
	InputBT      = "bt"
	InputSndcard = "sndcard"
	InputUSB     = "usb"
)

// ErrUnknownInput wraps the name of an unrecognized input source.
type ErrUnknownInput struct {
	Name string
}

func (e *ErrUnknownInput) Error() string {
	return fmt.Sprintf("protocol: unknown input %q", e.Name)
}

// Write-side input codes for the select command. Note that the device
// reports sndcard as 0x17 on the status path but selects it with 0x15;
// the asymmetry is a firmware quirk, do not unify the tables.
var inputCodes = map[string]byte{
	InputAux:     0x16,
	InputBT:      0x14,
	InputSndcard: 0x15,
	InputUSB:     0x04,
}

// Read-side code names as reported by the status path.
var inputNames = map[byte]string{
	0x16: InputAux,
	0x14: InputBT,
	0x17: InputSndcard,
	0x04: InputUSB,
}

// InputCode resolves a symbolic input name to its select-command code.
// Unknown names fail before any transport I/O.
func InputCode(name string) (byte, error) {
	code, ok := inputCodes[name]
	if !ok {
		return 0, &ErrUnknownInput{Name: name}
	}
	return code, nil
}

// InputName resolves a status code to its symbolic name. Codes the
// device may report but we do not know resolve to "Unknown" so that
// status reads never fail on an unexpected device state.
func InputName(code byte) string {
	if name, ok := inputNames[code]; ok {
		return name
	}
	return "Unknown"
}
