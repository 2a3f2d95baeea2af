package lorawan

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// EUI64 data type
type EUI64 [8]byte

// String implements fmt.Stringer.
func (e EUI64) String() string {
	return hex.EncodeToString(e[:])
}

// MarshalText implements encoding.TextMarshaler.
func (e EUI64) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EUI64) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(e) {
		return fmt.Errorf("lorawan: exactly %d bytes are expected", len(e))
	}
	copy(e[:], b)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e EUI64) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(e))
	for i, v := range e {
		// little endian
		out[len(e)-i-1] = v
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *EUI64) UnmarshalBinary(data []byte) error {
	if len(data) != len(e) {
		return fmt.Errorf("lorawan: %d bytes of data are expected", len(e))
	}
	for i, v := range data {
		// little endian
		e[len(e)-i-1] = v
	}
	return nil
}

// DevNonce represents the device nonce, in display (big endian) byte order.
type DevNonce [2]byte

// String implements fmt.Stringer.
func (n DevNonce) String() string {
	return hex.EncodeToString(n[:])
}

// MarshalText implements encoding.TextMarshaler.
func (n DevNonce) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// AppNonce represents the application nonce (JoinNonce in 1.1), in display
// byte order.
type AppNonce [3]byte

// String implements fmt.Stringer.
func (n AppNonce) String() string {
	return hex.EncodeToString(n[:])
}

// MarshalText implements encoding.TextMarshaler.
func (n AppNonce) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// Payload is the interface that every payload needs to implement.
type Payload interface {
	encoding.BinaryMarshaler
	UnmarshalBinary(uplink bool, data []byte) error
}

// DataPayload represents a slice of bytes.
type DataPayload struct {
	Bytes []byte `json:"bytes"`
}

// MarshalBinary marshals the object in binary form.
func (p DataPayload) MarshalBinary() ([]byte, error) {
	return p.Bytes, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DataPayload) UnmarshalBinary(uplink bool, data []byte) error {
	p.Bytes = make([]byte, len(data))
	copy(p.Bytes, data)
	return nil
}

// JoinRequestPayload represents the join-request message payload. The
// AppEUI is called JoinEUI from LoRaWAN 1.1 on.
type JoinRequestPayload struct {
	AppEUI   EUI64    `json:"appEUI"`
	DevEUI   EUI64    `json:"devEUI"`
	DevNonce DevNonce `json:"devNonce"`
}

// MarshalBinary marshals the object in binary form.
func (p JoinRequestPayload) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 18)
	b, err := p.AppEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)
	b, err = p.DevEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)
	// little endian
	out = append(out, p.DevNonce[1], p.DevNonce[0])
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *JoinRequestPayload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 18 {
		return errors.New("lorawan: 18 bytes of data are expected")
	}
	if err := p.AppEUI.UnmarshalBinary(data[0:8]); err != nil {
		return err
	}
	if err := p.DevEUI.UnmarshalBinary(data[8:16]); err != nil {
		return err
	}
	// little endian
	p.DevNonce[1] = data[16]
	p.DevNonce[0] = data[17]
	return nil
}

// DLSettings represents the DLSettings field carried by the join-accept
// message and the RXParamSetupReq MAC command. OptNeg is only meaningful
// in a 1.1 join-accept; earlier versions treat bit 7 as RFU.
type DLSettings struct {
	OptNeg      bool  `json:"optNeg"`
	RX1DROffset uint8 `json:"rx1DROffset"`
	RX2DataRate uint8 `json:"rx2DataRate"`
}

// MarshalBinary marshals the object in binary form.
func (s DLSettings) MarshalBinary() ([]byte, error) {
	if s.RX2DataRate > 15 {
		return nil, errors.New("lorawan: max value of RX2DataRate is 15")
	}
	if s.RX1DROffset > 7 {
		return nil, errors.New("lorawan: max value of RX1DROffset is 7")
	}
	b := s.RX2DataRate | s.RX1DROffset<<4
	if s.OptNeg {
		b |= 1 << 7
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (s *DLSettings) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	s.OptNeg = data[0]&(1<<7) > 0
	s.RX1DROffset = (data[0] >> 4) & 0x07
	s.RX2DataRate = data[0] & 0x0f
	return nil
}

// CFList holds the optional list of channel frequencies appended to a
// join-accept. The frequencies are 24 bit values in units of 100 Hz.
type CFList struct {
	Channels   [5]uint32 `json:"channels"`
	CFListType byte      `json:"cFListType"`
}

// MarshalBinary marshals the object in binary form.
func (l CFList) MarshalBinary() ([]byte, error) {
	out := make([]byte, 16)
	for i, f := range l.Channels {
		if f >= 1<<24 {
			return nil, errors.New("lorawan: max value of a CFList frequency is 2^24 - 1")
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], f)
		copy(out[i*3:i*3+3], b[0:3])
	}
	out[15] = l.CFListType
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (l *CFList) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return errors.New("lorawan: 16 bytes of data are expected")
	}
	for i := range l.Channels {
		var b [4]byte
		copy(b[0:3], data[i*3:i*3+3])
		l.Channels[i] = binary.LittleEndian.Uint32(b[:])
	}
	l.CFListType = data[15]
	return nil
}

// JoinAcceptPayload represents the decrypted join-accept message payload.
// The AppNonce is called JoinNonce from LoRaWAN 1.1 on.
type JoinAcceptPayload struct {
	AppNonce   AppNonce   `json:"appNonce"`
	NetID      NetID      `json:"netID"`
	DevAddr    DevAddr    `json:"devAddr"`
	DLSettings DLSettings `json:"dlSettings"`
	RXDelay    uint8      `json:"rxDelay"`
	CFList     *CFList    `json:"cfList,omitempty"`
}

// MarshalBinary marshals the object in binary form.
func (p JoinAcceptPayload) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 28)

	// little endian
	for i := len(p.AppNonce) - 1; i >= 0; i-- {
		out = append(out, p.AppNonce[i])
	}

	b, err := p.NetID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DevAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DLSettings.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)
	out = append(out, p.RXDelay)

	if p.CFList != nil {
		b, err = p.CFList.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *JoinAcceptPayload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 12 && len(data) != 28 {
		return errors.New("lorawan: 12 or 28 bytes of data are expected")
	}

	// little endian
	for i, v := range data[0:3] {
		p.AppNonce[2-i] = v
	}

	if err := p.NetID.UnmarshalBinary(data[3:6]); err != nil {
		return err
	}
	if err := p.DevAddr.UnmarshalBinary(data[6:10]); err != nil {
		return err
	}
	if err := p.DLSettings.UnmarshalBinary(data[10:11]); err != nil {
		return err
	}
	p.RXDelay = data[11]

	if len(data) == 28 {
		p.CFList = &CFList{}
		if err := p.CFList.UnmarshalBinary(data[12:28]); err != nil {
			return err
		}
	}
	return nil
}
