package lorawan

import "errors"

// MACPayload represents the MAC payload of a data frame. FRMPayload holds
// the bytes as read from the wire, i.e. ciphertext until
// DecryptFRMPayload has been called.
type MACPayload struct {
	FHDR       FHDR   `json:"fhdr"`
	FPort      *uint8 `json:"fPort"`
	FRMPayload []byte `json:"frmPayload"`
}

// MarshalBinary marshals the object in binary form.
func (p MACPayload) MarshalBinary() ([]byte, error) {
	var out []byte

	b, err := p.FHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	if p.FPort == nil {
		if len(p.FRMPayload) != 0 {
			return nil, errors.New("lorawan: FPort must be set when FRMPayload is not empty")
		}
		return out, nil
	}
	if *p.FPort == 0 && len(p.FHDR.FOpts) != 0 {
		return nil, errors.New("lorawan: FPort must not be 0 when FOpts are set")
	}

	out = append(out, *p.FPort)
	out = append(out, p.FRMPayload...)
	return out, nil
}

// marshalWire serializes the payload exactly as it appears on the wire,
// without the structural validation MarshalBinary applies. MIC
// computation uses this path so that invalid but parseable frames (e.g.
// FOpts combined with FPort 0) still get a verdict.
func (p MACPayload) marshalWire() ([]byte, error) {
	out, err := p.FHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if p.FPort != nil {
		out = append(out, *p.FPort)
		out = append(out, p.FRMPayload...)
	}
	return out, nil
}

// UnmarshalBinary decodes the object from binary form. A missing FPort
// implies an empty FRMPayload; a present FPort with no remaining bytes is
// a legal empty application payload.
func (p *MACPayload) UnmarshalBinary(uplink bool, data []byte) error {
	dataLen := len(data)

	if dataLen < 7 {
		return errors.New("lorawan: at least 7 bytes needed to decode FHDR")
	}

	// FCtrl is needed first to know the FOptsLen
	if err := p.FHDR.FCtrl.UnmarshalBinary(uplink, data[4:5]); err != nil {
		return err
	}
	fOptsLen := int(p.FHDR.FCtrl.fOptsLen)
	if dataLen < 7+fOptsLen {
		return errors.New("lorawan: not enough bytes to decode FHDR")
	}

	if err := p.FHDR.UnmarshalBinary(uplink, data[0:7+fOptsLen]); err != nil {
		return err
	}

	if dataLen >= 7+fOptsLen+1 {
		fPort := data[7+fOptsLen]
		p.FPort = &fPort
	}

	if dataLen > 7+fOptsLen+1 {
		p.FRMPayload = make([]byte, dataLen-7-fOptsLen-1)
		copy(p.FRMPayload, data[7+fOptsLen+1:])
	}
	return nil
}
