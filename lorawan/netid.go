package lorawan

import (
	"encoding/hex"
	"fmt"
)

// NetID represents the network identifier, in display byte order.
type NetID [3]byte

// NwkID returns the NwkID bits of the NetID.
func (n NetID) NwkID() byte {
	return n[2] & 127 // 7 lsb
}

// MarshalBinary marshals the object in binary form.
func (n NetID) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(n))
	for i, v := range n {
		// little endian
		out[len(n)-i-1] = v
	}
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (n *NetID) UnmarshalBinary(data []byte) error {
	if len(data) != len(n) {
		return fmt.Errorf("lorawan: %d bytes of data are expected", len(n))
	}
	for i, v := range data {
		// little endian
		n[len(n)-i-1] = v
	}
	return nil
}

// String implements fmt.Stringer.
func (n NetID) String() string {
	return hex.EncodeToString(n[:])
}

// MarshalText implements encoding.TextMarshaler.
func (n NetID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NetID) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(n) {
		return fmt.Errorf("lorawan: exactly %d bytes are expected", len(n))
	}
	copy(n[:], b)
	return nil
}
