package lorawan

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// CID defines the MAC command identifier.
type CID byte

// MAC commands as specified by the LoRaWAN specs. Note that each *Req /
// *Ans (and *Ind / *Conf) pair shares the same value; based on whether a
// message is uplink or downlink you should use one or the other.
const (
	ResetInd           CID = 0x01 // 1.1, ABP devices only
	ResetConf          CID = 0x01
	LinkCheckReq       CID = 0x02
	LinkCheckAns       CID = 0x02
	LinkADRReq         CID = 0x03
	LinkADRAns         CID = 0x03
	DutyCycleReq       CID = 0x04
	DutyCycleAns       CID = 0x04
	RXParamSetupReq    CID = 0x05
	RXParamSetupAns    CID = 0x05
	DevStatusReq       CID = 0x06
	DevStatusAns       CID = 0x06
	NewChannelReq      CID = 0x07
	NewChannelAns      CID = 0x07
	RXTimingSetupReq   CID = 0x08
	RXTimingSetupAns   CID = 0x08
	TXParamSetupReq    CID = 0x09
	TXParamSetupAns    CID = 0x09
	DLChannelReq       CID = 0x0a
	DLChannelAns       CID = 0x0a
	PingSlotInfoReq    CID = 0x10 // class B
	PingSlotInfoAns    CID = 0x10
	PingSlotChannelReq CID = 0x11
	PingSlotChannelAns CID = 0x11
	BeaconTimingReq    CID = 0x12 // deprecated
	BeaconTimingAns    CID = 0x12
	BeaconFreqReq      CID = 0x13
	BeaconFreqAns      CID = 0x13
	DeviceModeInd      CID = 0x20 // class C
	DeviceModeConf     CID = 0x20
	// 0x80 to 0xFF reserved for proprietary network command extensions
)

// Name returns the command name for the given direction, or an empty
// string for an unknown CID.
func (c CID) Name(uplink bool) string {
	v, ok := macPayloadRegistry[uplink][c]
	if !ok {
		return ""
	}
	return v.name
}

// macPayloadInfo contains the info about a MAC payload.
type macPayloadInfo struct {
	name    string
	size    int
	payload func() MACCommandPayload
}

// macPayloadRegistry contains the info for uplink and downlink MAC
// payloads in the format map[uplink]map[CID]. Payload sizes are fixed per
// (CID, direction); commands carry no length prefix.
var macPayloadRegistry = map[bool]map[CID]macPayloadInfo{
	false: {
		ResetConf:          {"ResetConf", 1, func() MACCommandPayload { return &ResetConfPayload{} }},
		LinkCheckAns:       {"LinkCheckAns", 2, func() MACCommandPayload { return &LinkCheckAnsPayload{} }},
		LinkADRReq:         {"LinkADRReq", 4, func() MACCommandPayload { return &LinkADRReqPayload{} }},
		DutyCycleReq:       {"DutyCycleReq", 1, func() MACCommandPayload { return &DutyCycleReqPayload{} }},
		RXParamSetupReq:    {"RXParamSetupReq", 4, func() MACCommandPayload { return &RXParamSetupReqPayload{} }},
		DevStatusReq:       {"DevStatusReq", 0, nil},
		NewChannelReq:      {"NewChannelReq", 5, func() MACCommandPayload { return &NewChannelReqPayload{} }},
		RXTimingSetupReq:   {"RXTimingSetupReq", 1, func() MACCommandPayload { return &RXTimingSetupReqPayload{} }},
		TXParamSetupReq:    {"TxParamSetupReq", 1, func() MACCommandPayload { return &TXParamSetupReqPayload{} }},
		DLChannelReq:       {"DlChannelReq", 4, func() MACCommandPayload { return &DLChannelReqPayload{} }},
		PingSlotInfoAns:    {"PingSlotInfoAns", 0, nil},
		PingSlotChannelReq: {"PingSlotChannelReq", 4, func() MACCommandPayload { return &PingSlotChannelReqPayload{} }},
		BeaconTimingAns:    {"BeaconTimingAns", 3, func() MACCommandPayload { return &BeaconTimingAnsPayload{} }},
		BeaconFreqReq:      {"BeaconFreqReq", 3, func() MACCommandPayload { return &BeaconFreqReqPayload{} }},
		DeviceModeConf:     {"DeviceModeConf", 1, func() MACCommandPayload { return &DeviceModeConfPayload{} }},
	},
	true: {
		ResetInd:           {"ResetInd", 1, func() MACCommandPayload { return &ResetIndPayload{} }},
		LinkCheckReq:       {"LinkCheckReq", 0, nil},
		LinkADRAns:         {"LinkADRAns", 1, func() MACCommandPayload { return &LinkADRAnsPayload{} }},
		DutyCycleAns:       {"DutyCycleAns", 0, nil},
		RXParamSetupAns:    {"RXParamSetupAns", 1, func() MACCommandPayload { return &RXParamSetupAnsPayload{} }},
		DevStatusAns:       {"DevStatusAns", 2, func() MACCommandPayload { return &DevStatusAnsPayload{} }},
		NewChannelAns:      {"NewChannelAns", 1, func() MACCommandPayload { return &NewChannelAnsPayload{} }},
		RXTimingSetupAns:   {"RXTimingSetupAns", 0, nil},
		TXParamSetupAns:    {"TxParamSetupAns", 0, nil},
		DLChannelAns:       {"DlChannelAns", 1, func() MACCommandPayload { return &DLChannelAnsPayload{} }},
		PingSlotInfoReq:    {"PingSlotInfoReq", 1, func() MACCommandPayload { return &PingSlotInfoReqPayload{} }},
		PingSlotChannelAns: {"PingSlotChannelAns", 1, func() MACCommandPayload { return &PingSlotChannelAnsPayload{} }},
		BeaconTimingReq:    {"BeaconTimingReq", 0, nil},
		BeaconFreqAns:      {"BeaconFreqAns", 1, func() MACCommandPayload { return &BeaconFreqAnsPayload{} }},
		DeviceModeInd:      {"DeviceModeInd", 1, func() MACCommandPayload { return &DeviceModeIndPayload{} }},
	},
}

// GetMACPayloadAndSize returns a new MACCommandPayload instance and its
// fixed size for the given direction and CID. The payload is nil for
// commands without a payload.
func GetMACPayloadAndSize(uplink bool, c CID) (MACCommandPayload, int, error) {
	v, ok := macPayloadRegistry[uplink][c]
	if !ok {
		return nil, 0, fmt.Errorf("lorawan: payload unknown for uplink=%v and CID=%02x", uplink, byte(c))
	}
	if v.payload == nil {
		return nil, v.size, nil
	}
	return v.payload(), v.size, nil
}

// MACCommandPayload is the interface that every MACCommand payload must
// implement.
type MACCommandPayload interface {
	MarshalBinary() (data []byte, err error)
	UnmarshalBinary(data []byte) error
}

// MACCommand represents a MAC command with optional payload.
type MACCommand struct {
	CID     CID               `json:"cid"`
	Payload MACCommandPayload `json:"payload,omitempty"`
}

// MarshalBinary marshals the object in binary form.
func (m MACCommand) MarshalBinary() ([]byte, error) {
	b := []byte{byte(m.CID)}
	if m.Payload != nil {
		p, err := m.Payload.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = append(b, p...)
	}
	return b, nil
}

// DecodeMACCommands decodes a byte stream of piggy-backed (FOpts) or
// FPort-0 MAC commands. Commands are consumed sequentially; an unknown or
// proprietary CID stops the decode. When a command's fixed payload size
// exceeds the remaining bytes, the commands decoded so far are returned
// together with a TruncatedCommandError.
func DecodeMACCommands(uplink bool, data []byte) ([]MACCommand, error) {
	var out []MACCommand
	i := 0
	for i < len(data) {
		c := CID(data[i])
		info, ok := macPayloadRegistry[uplink][c]
		if !ok {
			// proprietary or unknown command, the remaining bytes
			// can't be interpreted
			return out, nil
		}
		i++
		if len(data)-i < info.size {
			return out, TruncatedCommandError{CID: c, Need: info.size, Have: len(data) - i}
		}
		mc := MACCommand{CID: c}
		if info.size > 0 {
			mc.Payload = info.payload()
			if err := mc.Payload.UnmarshalBinary(data[i : i+info.size]); err != nil {
				return out, err
			}
		}
		out = append(out, mc)
		i += info.size
	}
	return out, nil
}

// ResetIndPayload represents the ResetInd payload (1.1).
type ResetIndPayload struct {
	DevLoRaWANVersion uint8 `json:"devLoRaWANVersion"`
}

// MarshalBinary marshals the object in binary form.
func (p ResetIndPayload) MarshalBinary() ([]byte, error) {
	if p.DevLoRaWANVersion > 15 {
		return nil, errors.New("lorawan: max value of DevLoRaWANVersion is 15")
	}
	return []byte{p.DevLoRaWANVersion}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *ResetIndPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.DevLoRaWANVersion = data[0] & 0x0f
	return nil
}

// ResetConfPayload represents the ResetConf payload (1.1).
type ResetConfPayload struct {
	ServLoRaWANVersion uint8 `json:"servLoRaWANVersion"`
}

// MarshalBinary marshals the object in binary form.
func (p ResetConfPayload) MarshalBinary() ([]byte, error) {
	if p.ServLoRaWANVersion > 15 {
		return nil, errors.New("lorawan: max value of ServLoRaWANVersion is 15")
	}
	return []byte{p.ServLoRaWANVersion}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *ResetConfPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.ServLoRaWANVersion = data[0] & 0x0f
	return nil
}

// LinkCheckAnsPayload represents the LinkCheckAns payload.
type LinkCheckAnsPayload struct {
	Margin uint8 `json:"margin"`
	GwCnt  uint8 `json:"gwCnt"`
}

// MarshalBinary marshals the object in binary form.
func (p LinkCheckAnsPayload) MarshalBinary() ([]byte, error) {
	return []byte{p.Margin, p.GwCnt}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *LinkCheckAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return errors.New("lorawan: 2 bytes of data are expected")
	}
	p.Margin = data[0]
	p.GwCnt = data[1]
	return nil
}

// ChMask encodes the channels usable for uplink access. 0 = channel 1,
// 15 = channel 16.
type ChMask [16]bool

// MarshalBinary marshals the object in binary form.
func (m ChMask) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	for i := uint8(0); i < 16; i++ {
		if m[i] {
			b[i/8] |= 1 << (i % 8)
		}
	}
	return b, nil
}

// UnmarshalBinary decodes the object from binary form.
func (m *ChMask) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return errors.New("lorawan: 2 bytes of data are expected")
	}
	for i, b := range data {
		for j := uint8(0); j < 8; j++ {
			if b&(1<<j) > 0 {
				m[uint8(i)*8+j] = true
			}
		}
	}
	return nil
}

// Redundancy represents the redundancy field.
type Redundancy struct {
	ChMaskCntl uint8 `json:"chMaskCntl"`
	NbRep      uint8 `json:"nbRep"`
}

// MarshalBinary marshals the object in binary form.
func (r Redundancy) MarshalBinary() ([]byte, error) {
	if r.NbRep > 15 {
		return nil, errors.New("lorawan: max value of NbRep is 15")
	}
	if r.ChMaskCntl > 7 {
		return nil, errors.New("lorawan: max value of ChMaskCntl is 7")
	}
	return []byte{r.NbRep | r.ChMaskCntl<<4}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (r *Redundancy) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	r.NbRep = data[0] & 0x0f
	r.ChMaskCntl = (data[0] >> 4) & 0x07
	return nil
}

// LinkADRReqPayload represents the LinkADRReq payload.
type LinkADRReqPayload struct {
	DataRate   uint8      `json:"dataRate"`
	TXPower    uint8      `json:"txPower"`
	ChMask     ChMask     `json:"chMask"`
	Redundancy Redundancy `json:"redundancy"`
}

// MarshalBinary marshals the object in binary form.
func (p LinkADRReqPayload) MarshalBinary() ([]byte, error) {
	if p.DataRate > 15 {
		return nil, errors.New("lorawan: the max value of DataRate is 15")
	}
	if p.TXPower > 15 {
		return nil, errors.New("lorawan: the max value of TXPower is 15")
	}

	cm, err := p.ChMask.MarshalBinary()
	if err != nil {
		return nil, err
	}
	r, err := p.Redundancy.MarshalBinary()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 4)
	out = append(out, p.TXPower|p.DataRate<<4)
	out = append(out, cm...)
	out = append(out, r...)
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *LinkADRReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errors.New("lorawan: 4 bytes of data are expected")
	}
	p.DataRate = (data[0] >> 4) & 0x0f
	p.TXPower = data[0] & 0x0f
	if err := p.ChMask.UnmarshalBinary(data[1:3]); err != nil {
		return err
	}
	return p.Redundancy.UnmarshalBinary(data[3:4])
}

// LinkADRAnsPayload represents the LinkADRAns payload.
type LinkADRAnsPayload struct {
	ChannelMaskACK bool `json:"channelMaskAck"`
	DataRateACK    bool `json:"dataRateAck"`
	PowerACK       bool `json:"powerAck"`
}

// MarshalBinary marshals the object in binary form.
func (p LinkADRAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelMaskACK {
		b |= 1 << 0
	}
	if p.DataRateACK {
		b |= 1 << 1
	}
	if p.PowerACK {
		b |= 1 << 2
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *LinkADRAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.ChannelMaskACK = data[0]&(1<<0) > 0
	p.DataRateACK = data[0]&(1<<1) > 0
	p.PowerACK = data[0]&(1<<2) > 0
	return nil
}

// DutyCycleReqPayload represents the DutyCycleReq payload.
type DutyCycleReqPayload struct {
	MaxDCCycle uint8 `json:"maxDCCycle"`
}

// MarshalBinary marshals the object in binary form.
func (p DutyCycleReqPayload) MarshalBinary() ([]byte, error) {
	if p.MaxDCCycle > 15 && p.MaxDCCycle < 255 {
		return nil, errors.New("lorawan: only a MaxDCCycle value of 0 - 15 and 255 is allowed")
	}
	return []byte{p.MaxDCCycle}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DutyCycleReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.MaxDCCycle = data[0]
	return nil
}

// RXParamSetupReqPayload represents the RXParamSetupReq payload.
type RXParamSetupReqPayload struct {
	Frequency  uint32     `json:"frequency"`
	DLSettings DLSettings `json:"dlSettings"`
}

// MarshalBinary marshals the object in binary form.
func (p RXParamSetupReqPayload) MarshalBinary() ([]byte, error) {
	if p.Frequency >= 1<<24 {
		return nil, errors.New("lorawan: max value of Frequency is 2^24 - 1")
	}
	b, err := p.DLSettings.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 5)
	out[0] = b[0]
	binary.LittleEndian.PutUint32(out[1:5], p.Frequency)
	// the last octet is always zero since Frequency is 24 bits
	return out[0:4], nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *RXParamSetupReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errors.New("lorawan: 4 bytes of data are expected")
	}
	if err := p.DLSettings.UnmarshalBinary(data[0:1]); err != nil {
		return err
	}
	var b [4]byte
	copy(b[0:3], data[1:4])
	p.Frequency = binary.LittleEndian.Uint32(b[:])
	return nil
}

// RXParamSetupAnsPayload represents the RXParamSetupAns payload.
type RXParamSetupAnsPayload struct {
	ChannelACK     bool `json:"channelAck"`
	RX2DataRateACK bool `json:"rx2DataRateAck"`
	RX1DROffsetACK bool `json:"rx1DROffsetAck"`
}

// MarshalBinary marshals the object in binary form.
func (p RXParamSetupAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelACK {
		b |= 1 << 0
	}
	if p.RX2DataRateACK {
		b |= 1 << 1
	}
	if p.RX1DROffsetACK {
		b |= 1 << 2
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *RXParamSetupAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.ChannelACK = data[0]&(1<<0) > 0
	p.RX2DataRateACK = data[0]&(1<<1) > 0
	p.RX1DROffsetACK = data[0]&(1<<2) > 0
	return nil
}

// DevStatusAnsPayload represents the DevStatusAns payload.
type DevStatusAnsPayload struct {
	Battery uint8 `json:"battery"`
	Margin  int8  `json:"margin"`
}

// MarshalBinary marshals the object in binary form.
func (p DevStatusAnsPayload) MarshalBinary() ([]byte, error) {
	if p.Margin < -32 {
		return nil, errors.New("lorawan: min value of Margin is -32")
	}
	if p.Margin > 31 {
		return nil, errors.New("lorawan: max value of Margin is 31")
	}

	out := make([]byte, 0, 2)
	out = append(out, p.Battery)
	if p.Margin < 0 {
		out = append(out, uint8(64+p.Margin))
	} else {
		out = append(out, uint8(p.Margin))
	}
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DevStatusAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return errors.New("lorawan: 2 bytes of data are expected")
	}
	p.Battery = data[0]
	if data[1] > 31 {
		p.Margin = int8(data[1]) - 64
	} else {
		p.Margin = int8(data[1])
	}
	return nil
}

// NewChannelReqPayload represents the NewChannelReq payload.
type NewChannelReqPayload struct {
	ChIndex uint8  `json:"chIndex"`
	Freq    uint32 `json:"freq"`
	MaxDR   uint8  `json:"maxDR"`
	MinDR   uint8  `json:"minDR"`
}

// MarshalBinary marshals the object in binary form.
func (p NewChannelReqPayload) MarshalBinary() ([]byte, error) {
	if p.Freq >= 1<<24 {
		return nil, errors.New("lorawan: max value of Freq is 2^24 - 1")
	}
	if p.MaxDR > 15 {
		return nil, errors.New("lorawan: max value of MaxDR is 15")
	}
	if p.MinDR > 15 {
		return nil, errors.New("lorawan: max value of MinDR is 15")
	}

	out := make([]byte, 5)
	binary.LittleEndian.PutUint32(out[1:5], p.Freq)
	out[0] = p.ChIndex
	out[4] = p.MinDR | p.MaxDR<<4
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *NewChannelReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 5 {
		return errors.New("lorawan: 5 bytes of data are expected")
	}
	p.ChIndex = data[0]
	p.MinDR = data[4] & 0x0f
	p.MaxDR = (data[4] >> 4) & 0x0f

	var b [4]byte
	copy(b[0:3], data[1:4])
	p.Freq = binary.LittleEndian.Uint32(b[:])
	return nil
}

// NewChannelAnsPayload represents the NewChannelAns payload.
type NewChannelAnsPayload struct {
	ChannelFrequencyOK bool `json:"channelFrequencyOK"`
	DataRateRangeOK    bool `json:"dataRateRangeOK"`
}

// MarshalBinary marshals the object in binary form.
func (p NewChannelAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelFrequencyOK {
		b |= 1 << 0
	}
	if p.DataRateRangeOK {
		b |= 1 << 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *NewChannelAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.ChannelFrequencyOK = data[0]&(1<<0) > 0
	p.DataRateRangeOK = data[0]&(1<<1) > 0
	return nil
}

// RXTimingSetupReqPayload represents the RXTimingSetupReq payload.
type RXTimingSetupReqPayload struct {
	Delay uint8 `json:"delay"` // 0=1s, 1=1s, 2=2s, ... 15=15s
}

// MarshalBinary marshals the object in binary form.
func (p RXTimingSetupReqPayload) MarshalBinary() ([]byte, error) {
	if p.Delay > 15 {
		return nil, errors.New("lorawan: the max value of Delay is 15")
	}
	return []byte{p.Delay}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *RXTimingSetupReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.Delay = data[0] & 0x0f
	return nil
}

// maxEIRPTable maps the MaxEIRP index of TxParamSetupReq to dBm.
var maxEIRPTable = [16]uint8{8, 10, 12, 13, 14, 16, 18, 20, 21, 24, 26, 27, 29, 30, 33, 36}

// TXParamSetupReqPayload represents the TxParamSetupReq payload.
type TXParamSetupReqPayload struct {
	DownlinkDwellTime400ms bool  `json:"downlinkDwellTime400ms"`
	UplinkDwellTime400ms   bool  `json:"uplinkDwellTime400ms"`
	MaxEIRPIndex           uint8 `json:"maxEIRPIndex"`
}

// MaxEIRP returns the maximum EIRP in dBm for the payload's index.
func (p TXParamSetupReqPayload) MaxEIRP() uint8 {
	return maxEIRPTable[p.MaxEIRPIndex&0x0f]
}

// MarshalBinary marshals the object in binary form.
func (p TXParamSetupReqPayload) MarshalBinary() ([]byte, error) {
	if p.MaxEIRPIndex > 15 {
		return nil, errors.New("lorawan: max value of MaxEIRPIndex is 15")
	}
	b := p.MaxEIRPIndex
	if p.UplinkDwellTime400ms {
		b |= 1 << 4
	}
	if p.DownlinkDwellTime400ms {
		b |= 1 << 5
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *TXParamSetupReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.MaxEIRPIndex = data[0] & 0x0f
	p.UplinkDwellTime400ms = data[0]&(1<<4) > 0
	p.DownlinkDwellTime400ms = data[0]&(1<<5) > 0
	return nil
}

// DLChannelReqPayload represents the DlChannelReq payload.
type DLChannelReqPayload struct {
	ChIndex uint8  `json:"chIndex"`
	Freq    uint32 `json:"freq"`
}

// MarshalBinary marshals the object in binary form.
func (p DLChannelReqPayload) MarshalBinary() ([]byte, error) {
	if p.Freq >= 1<<24 {
		return nil, errors.New("lorawan: max value of Freq is 2^24 - 1")
	}
	out := make([]byte, 5)
	binary.LittleEndian.PutUint32(out[1:5], p.Freq)
	out[0] = p.ChIndex
	return out[0:4], nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DLChannelReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errors.New("lorawan: 4 bytes of data are expected")
	}
	p.ChIndex = data[0]
	var b [4]byte
	copy(b[0:3], data[1:4])
	p.Freq = binary.LittleEndian.Uint32(b[:])
	return nil
}

// DLChannelAnsPayload represents the DlChannelAns payload.
type DLChannelAnsPayload struct {
	UplinkFrequencyExists bool `json:"uplinkFrequencyExists"`
	ChannelFrequencyOK    bool `json:"channelFrequencyOK"`
}

// MarshalBinary marshals the object in binary form.
func (p DLChannelAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelFrequencyOK {
		b |= 1 << 0
	}
	if p.UplinkFrequencyExists {
		b |= 1 << 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DLChannelAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.ChannelFrequencyOK = data[0]&(1<<0) > 0
	p.UplinkFrequencyExists = data[0]&(1<<1) > 0
	return nil
}

// PingSlotInfoReqPayload represents the PingSlotInfoReq payload (class B).
type PingSlotInfoReqPayload struct {
	Periodicity uint8 `json:"periodicity"`
}

// PingSlotPeriod returns the ping-slot period in seconds.
func (p PingSlotInfoReqPayload) PingSlotPeriod() int {
	return 1 << p.Periodicity
}

// MarshalBinary marshals the object in binary form.
func (p PingSlotInfoReqPayload) MarshalBinary() ([]byte, error) {
	if p.Periodicity > 7 {
		return nil, errors.New("lorawan: max value of Periodicity is 7")
	}
	return []byte{p.Periodicity}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *PingSlotInfoReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.Periodicity = data[0] & 0x07
	return nil
}

// PingSlotChannelReqPayload represents the PingSlotChannelReq payload
// (class B).
type PingSlotChannelReqPayload struct {
	Frequency uint32 `json:"frequency"`
	DR        uint8  `json:"dr"`
}

// MarshalBinary marshals the object in binary form.
func (p PingSlotChannelReqPayload) MarshalBinary() ([]byte, error) {
	if p.Frequency >= 1<<24 {
		return nil, errors.New("lorawan: max value of Frequency is 2^24 - 1")
	}
	if p.DR > 15 {
		return nil, errors.New("lorawan: max value of DR is 15")
	}
	out := make([]byte, 5)
	binary.LittleEndian.PutUint32(out[0:4], p.Frequency)
	out[3] = p.DR
	return out[0:4], nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *PingSlotChannelReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errors.New("lorawan: 4 bytes of data are expected")
	}
	var b [4]byte
	copy(b[0:3], data[0:3])
	p.Frequency = binary.LittleEndian.Uint32(b[:])
	p.DR = data[3] & 0x0f
	return nil
}

// PingSlotChannelAnsPayload represents the PingSlotChannelAns payload
// (class B).
type PingSlotChannelAnsPayload struct {
	DataRateOK         bool `json:"dataRateOK"`
	ChannelFrequencyOK bool `json:"channelFrequencyOK"`
}

// MarshalBinary marshals the object in binary form.
func (p PingSlotChannelAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelFrequencyOK {
		b |= 1 << 0
	}
	if p.DataRateOK {
		b |= 1 << 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *PingSlotChannelAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.ChannelFrequencyOK = data[0]&(1<<0) > 0
	p.DataRateOK = data[0]&(1<<1) > 0
	return nil
}

// BeaconTimingAnsPayload represents the BeaconTimingAns payload
// (class B, deprecated).
type BeaconTimingAnsPayload struct {
	Delay   uint16 `json:"delay"` // in units of 30 ms
	Channel uint8  `json:"channel"`
}

// MarshalBinary marshals the object in binary form.
func (p BeaconTimingAnsPayload) MarshalBinary() ([]byte, error) {
	out := make([]byte, 3)
	binary.LittleEndian.PutUint16(out[0:2], p.Delay)
	out[2] = p.Channel
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *BeaconTimingAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 3 {
		return errors.New("lorawan: 3 bytes of data are expected")
	}
	p.Delay = binary.LittleEndian.Uint16(data[0:2])
	p.Channel = data[2]
	return nil
}

// BeaconFreqReqPayload represents the BeaconFreqReq payload (class B).
type BeaconFreqReqPayload struct {
	Frequency uint32 `json:"frequency"`
}

// MarshalBinary marshals the object in binary form.
func (p BeaconFreqReqPayload) MarshalBinary() ([]byte, error) {
	if p.Frequency >= 1<<24 {
		return nil, errors.New("lorawan: max value of Frequency is 2^24 - 1")
	}
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, p.Frequency)
	return out[0:3], nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *BeaconFreqReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 3 {
		return errors.New("lorawan: 3 bytes of data are expected")
	}
	var b [4]byte
	copy(b[0:3], data)
	p.Frequency = binary.LittleEndian.Uint32(b[:])
	return nil
}

// BeaconFreqAnsPayload represents the BeaconFreqAns payload (class B).
type BeaconFreqAnsPayload struct {
	BeaconFrequencyOK bool `json:"beaconFrequencyOK"`
}

// MarshalBinary marshals the object in binary form.
func (p BeaconFreqAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.BeaconFrequencyOK {
		b |= 1 << 0
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *BeaconFreqAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.BeaconFrequencyOK = data[0]&(1<<0) > 0
	return nil
}

// DeviceModeClass defines the device class carried by the DeviceModeInd /
// DeviceModeConf commands (class C).
type DeviceModeClass byte

// Device classes.
const (
	DeviceModeClassA DeviceModeClass = 0x00
	DeviceModeClassC DeviceModeClass = 0x02
)

// String implements fmt.Stringer.
func (c DeviceModeClass) String() string {
	switch c {
	case DeviceModeClassA:
		return "A"
	case DeviceModeClassC:
		return "C"
	}
	return "RFU"
}

// DeviceModeIndPayload represents the DeviceModeInd payload (class C).
type DeviceModeIndPayload struct {
	Class DeviceModeClass `json:"class"`
}

// MarshalBinary marshals the object in binary form.
func (p DeviceModeIndPayload) MarshalBinary() ([]byte, error) {
	return []byte{byte(p.Class)}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DeviceModeIndPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.Class = DeviceModeClass(data[0])
	return nil
}

// DeviceModeConfPayload represents the DeviceModeConf payload (class C).
type DeviceModeConfPayload struct {
	Class DeviceModeClass `json:"class"`
}

// MarshalBinary marshals the object in binary form.
func (p DeviceModeConfPayload) MarshalBinary() ([]byte, error) {
	return []byte{byte(p.Class)}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *DeviceModeConfPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	p.Class = DeviceModeClass(data[0])
	return nil
}
