package lorawan

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// DevAddr represents the device address.
type DevAddr [4]byte

// NwkID returns the NwkID bits of the DevAddr.
func (a DevAddr) NwkID() byte {
	return a[0] >> 1 // 7 msb
}

// MarshalBinary marshals the object in binary form.
func (a DevAddr) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(a))
	for i, v := range a {
		// little endian
		out[len(a)-i-1] = v
	}
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (a *DevAddr) UnmarshalBinary(data []byte) error {
	if len(data) != len(a) {
		return fmt.Errorf("lorawan: %d bytes of data are expected", len(a))
	}
	for i, v := range data {
		// little endian
		a[len(a)-i-1] = v
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a DevAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *DevAddr) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(a) {
		return fmt.Errorf("lorawan: exactly %d bytes are expected", len(a))
	}
	copy(a[:], b)
	return nil
}

// String implements fmt.Stringer.
func (a DevAddr) String() string {
	return hex.EncodeToString(a[:])
}

// FCtrl represents the FCtrl (frame control) field. The meaning of bit 4
// and bit 6 depends on the frame direction and, for downlinks, on the
// protocol version: bit 4 is ClassB on uplinks (1.0.3 and later) and
// FPending on downlinks, bit 6 is ADRACKReq on uplinks and RFU on 1.0.3+
// downlinks.
type FCtrl struct {
	ADR       bool `json:"adr"`
	ADRACKReq bool `json:"adrAckReq"`
	ACK       bool `json:"ack"`
	FPending  bool `json:"fPending"`
	ClassB    bool `json:"classB"`
	fOptsLen  uint8
}

// FOptsLen returns the decoded FOpts length in bytes.
func (c FCtrl) FOptsLen() uint8 {
	return c.fOptsLen
}

// MarshalBinary marshals the object in binary form.
func (c FCtrl) MarshalBinary() ([]byte, error) {
	if c.fOptsLen > 15 {
		return nil, errors.New("lorawan: max value of FOptsLen is 15")
	}
	b := c.fOptsLen
	if c.FPending || c.ClassB {
		b |= 1 << 4
	}
	if c.ACK {
		b |= 1 << 5
	}
	if c.ADRACKReq {
		b |= 1 << 6
	}
	if c.ADR {
		b |= 1 << 7
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (c *FCtrl) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	c.fOptsLen = data[0] & 0x0f
	if uplink {
		c.ClassB = data[0]&(1<<4) > 0
	} else {
		c.FPending = data[0]&(1<<4) > 0
	}
	c.ACK = data[0]&(1<<5) > 0
	c.ADRACKReq = data[0]&(1<<6) > 0
	c.ADR = data[0]&(1<<7) > 0
	return nil
}

// FHDR represents the frame header. FOpts holds the raw option bytes as
// read from the wire: 1.1 frames carry them encrypted, so interpretation
// as MAC commands is a separate step (see DecodeMACCommands).
type FHDR struct {
	DevAddr DevAddr `json:"devAddr"`
	FCtrl   FCtrl   `json:"fCtrl"`
	FCnt    uint32  `json:"fCnt"` // only the least-significant 16 bits are on the wire
	FOpts   []byte  `json:"fOpts"`
}

// MarshalBinary marshals the object in binary form.
func (h FHDR) MarshalBinary() ([]byte, error) {
	if len(h.FOpts) > 15 {
		return nil, errors.New("lorawan: max number of FOpts bytes is 15")
	}
	h.FCtrl.fOptsLen = uint8(len(h.FOpts))

	out := make([]byte, 0, 7+len(h.FOpts))
	b, err := h.DevAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = h.FCtrl.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	fCntBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(fCntBytes, h.FCnt)
	out = append(out, fCntBytes[0:2]...)
	out = append(out, h.FOpts...)
	return out, nil
}

// UnmarshalBinary decodes the object from binary form. Only the lower 16
// bits of FCnt are set; see SetFCntUpper.
func (h *FHDR) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) < 7 {
		return errors.New("lorawan: at least 7 bytes are expected")
	}

	if err := h.DevAddr.UnmarshalBinary(data[0:4]); err != nil {
		return err
	}
	if err := h.FCtrl.UnmarshalBinary(uplink, data[4:5]); err != nil {
		return err
	}
	h.FCnt = uint32(binary.LittleEndian.Uint16(data[5:7]))

	if len(data) != 7+int(h.FCtrl.fOptsLen) {
		return fmt.Errorf("lorawan: FHDR length %d does not match FOptsLen %d", len(data), h.FCtrl.fOptsLen)
	}
	if h.FCtrl.fOptsLen > 0 {
		h.FOpts = make([]byte, h.FCtrl.fOptsLen)
		copy(h.FOpts, data[7:])
	}
	return nil
}

// SetFCntUpper widens the on-wire 16 bit frame counter to the full 32 bit
// value using an externally tracked upper half.
func (h *FHDR) SetFCntUpper(upper uint16) {
	h.FCnt = uint32(upper)<<16 | h.FCnt&0xffff
}
