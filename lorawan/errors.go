package lorawan

import "fmt"

// MalformedFrameError is returned when the length or structure of a frame
// violates the fixed layout of its message type.
type MalformedFrameError struct {
	MType  MType
	Len    int
	Reason string
}

// Error implements error.
func (e MalformedFrameError) Error() string {
	return fmt.Sprintf("lorawan: malformed %s frame of %d bytes: %s", e.MType, e.Len, e.Reason)
}

// TruncatedCommandError is returned when a MAC command requires more
// payload bytes than the buffer holds. Commands decoded before the
// truncation point are still returned alongside the error.
type TruncatedCommandError struct {
	CID  CID
	Need int
	Have int
}

// Error implements error.
func (e TruncatedCommandError) Error() string {
	return fmt.Sprintf("lorawan: mac-command %02x requires %d payload bytes, only %d remaining", byte(e.CID), e.Need, e.Have)
}
