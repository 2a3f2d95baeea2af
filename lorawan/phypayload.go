package lorawan

import (
	"crypto/aes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jacobsa/crypto/cmac"
)

// MType represents the message type.
type MType byte

// Supported message types (MType)
const (
	JoinRequest MType = iota
	JoinAccept
	UnconfirmedDataUp
	UnconfirmedDataDown
	ConfirmedDataUp
	ConfirmedDataDown
	RFU
	Proprietary
)

// String implements fmt.Stringer.
func (m MType) String() string {
	switch m {
	case JoinRequest:
		return "JoinRequest"
	case JoinAccept:
		return "JoinAccept"
	case UnconfirmedDataUp:
		return "UnconfirmedDataUp"
	case UnconfirmedDataDown:
		return "UnconfirmedDataDown"
	case ConfirmedDataUp:
		return "ConfirmedDataUp"
	case ConfirmedDataDown:
		return "ConfirmedDataDown"
	case Proprietary:
		return "Proprietary"
	}
	return "RFU"
}

// MarshalText implements encoding.TextMarshaler.
func (m MType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Uplink returns true for device-originated message types. Note that for
// MType Proprietary the direction can't be derived and false is returned.
func (m MType) Uplink() bool {
	switch m {
	case JoinRequest, UnconfirmedDataUp, ConfirmedDataUp:
		return true
	default:
		return false
	}
}

// Major defines the major version of data message.
type Major byte

// Supported major versions
const (
	LoRaWANR1 Major = 0
)

// String implements fmt.Stringer.
func (m Major) String() string {
	if m == LoRaWANR1 {
		return "LoRaWAN R1"
	}
	return "RFU"
}

// MarshalText implements encoding.TextMarshaler.
func (m Major) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// AES128Key represents a 128 bit AES key.
type AES128Key [16]byte

// String implements fmt.Stringer.
func (k AES128Key) String() string {
	return hex.EncodeToString(k[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k AES128Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AES128Key) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(k) {
		return fmt.Errorf("lorawan: exactly %d bytes are expected", len(k))
	}
	copy(k[:], b)
	return nil
}

// MIC represents the message integrity code, in wire byte order.
type MIC [4]byte

// String implements fmt.Stringer.
func (m MIC) String() string {
	return hex.EncodeToString(m[:])
}

// MarshalText implements encoding.TextMarshaler.
func (m MIC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Reversed returns the MIC in reversed byte order, the most-significant
// byte first form used for display.
func (m MIC) Reversed() MIC {
	return MIC{m[3], m[2], m[1], m[0]}
}

// MHDR represents the MAC header.
type MHDR struct {
	MType MType `json:"mType"`
	Major Major `json:"major"`
}

// MarshalBinary marshals the object in binary form.
func (h MHDR) MarshalBinary() ([]byte, error) {
	return []byte{byte(h.Major) ^ (byte(h.MType) << 5)}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (h *MHDR) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	h.Major = Major(data[0] & 3)
	h.MType = MType((data[0] & 224) >> 5)
	return nil
}

// MICKeys bundles the keys a MIC computation may need. Which fields are
// consulted depends on the message type and the protocol version.
type MICKeys struct {
	// JoinKey signs join-request and join-accept messages: the AppKey for
	// 1.0.x, the NwkKey for 1.1.
	JoinKey AES128Key

	// FNwkSIntKey signs data frames. For 1.0.x this is the NwkSKey.
	FNwkSIntKey AES128Key

	// SNwkSIntKey is only used for 1.1 data frames.
	SNwkSIntKey AES128Key
}

// PHYPayload represents the physical payload.
type PHYPayload struct {
	MHDR       MHDR    `json:"mhdr"`
	MACPayload Payload `json:"macPayload"`
	MIC        MIC     `json:"mic"`
}

// UnmarshalBinary decodes the object from binary form. The frame length is
// validated against the fixed layout of the message type before any field
// is read.
func (p *PHYPayload) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return MalformedFrameError{MType: RFU, Len: len(data), Reason: "at least 5 bytes needed to decode PHYPayload"}
	}

	if err := p.MHDR.UnmarshalBinary(data[0:1]); err != nil {
		return err
	}

	switch p.MHDR.MType {
	case JoinRequest:
		if len(data) != 23 {
			return MalformedFrameError{MType: JoinRequest, Len: len(data), Reason: "join-request must be 23 bytes"}
		}
		p.MACPayload = &JoinRequestPayload{}
	case JoinAccept:
		if len(data) != 17 && len(data) != 33 {
			return MalformedFrameError{MType: JoinAccept, Len: len(data), Reason: "join-accept must be 17 or 33 bytes"}
		}
		// the body is encrypted on the wire, keep it opaque until
		// DecryptJoinAcceptPayload is called
		p.MACPayload = &DataPayload{}
	case Proprietary, RFU:
		p.MACPayload = &DataPayload{}
	default:
		if len(data) < 12 {
			return MalformedFrameError{MType: p.MHDR.MType, Len: len(data), Reason: "at least 12 bytes needed to decode a data frame"}
		}
		p.MACPayload = &MACPayload{}
	}

	if err := p.MACPayload.UnmarshalBinary(p.isUplink(), data[1:len(data)-4]); err != nil {
		return err
	}

	copy(p.MIC[:], data[len(data)-4:])
	return nil
}

// MarshalBinary marshals the object in binary form.
func (p PHYPayload) MarshalBinary() ([]byte, error) {
	if p.MACPayload == nil {
		return nil, errors.New("lorawan: MACPayload should not be nil")
	}

	var out []byte

	b, err := p.MHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.MACPayload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)
	out = append(out, p.MIC[:]...)
	return out, nil
}

// CalculateMIC calculates and returns the MIC based on the message type and
// the given protocol version. For data frames the FCnt in the FHDR must
// already hold the full 32 bit counter value.
func (p PHYPayload) CalculateMIC(v Version, keys MICKeys) (MIC, error) {
	switch pl := p.MACPayload.(type) {
	case *JoinRequestPayload:
		return p.calculateUnframedMIC(keys.JoinKey)
	case *JoinAcceptPayload:
		return p.calculateUnframedMIC(keys.JoinKey)
	case *MACPayload:
		return p.calculateDataMIC(v, keys, pl)
	default:
		return MIC{}, errors.New("lorawan: no MIC algorithm for this payload type")
	}
}

// ValidateMIC recalculates the MIC and compares it to the MIC in the frame.
// A false return value is a normal outcome, not an error.
func (p PHYPayload) ValidateMIC(v Version, keys MICKeys) (bool, error) {
	mic, err := p.CalculateMIC(v, keys)
	if err != nil {
		return false, err
	}
	return mic == p.MIC, nil
}

// SetMIC calculates and sets the MIC field.
func (p *PHYPayload) SetMIC(v Version, keys MICKeys) error {
	mic, err := p.CalculateMIC(v, keys)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// calculateUnframedMIC computes CMAC(key, MHDR | body), the construction
// shared by join-request and (decrypted) join-accept messages.
func (p PHYPayload) calculateUnframedMIC(key AES128Key) (MIC, error) {
	var micBytes []byte

	b, err := p.MHDR.MarshalBinary()
	if err != nil {
		return MIC{}, err
	}
	micBytes = append(micBytes, b...)

	b, err = p.MACPayload.MarshalBinary()
	if err != nil {
		return MIC{}, err
	}
	micBytes = append(micBytes, b...)

	return aesCMAC4(key, micBytes)
}

func (p PHYPayload) calculateDataMIC(v Version, keys MICKeys, macPL *MACPayload) (MIC, error) {
	var msg []byte

	b, err := p.MHDR.MarshalBinary()
	if err != nil {
		return MIC{}, err
	}
	msg = append(msg, b...)

	b, err = macPL.marshalWire()
	if err != nil {
		return MIC{}, err
	}
	msg = append(msg, b...)
	if len(msg) > 255 {
		return MIC{}, errors.New("lorawan: maximum message length for MIC is 255 bytes")
	}

	b0 := make([]byte, 16)
	b0[0] = 0x49
	if !p.isUplink() {
		b0[5] = 1
	}
	devAddr, err := macPL.FHDR.DevAddr.MarshalBinary()
	if err != nil {
		return MIC{}, err
	}
	copy(b0[6:10], devAddr)
	binary.LittleEndian.PutUint32(b0[10:14], macPL.FHDR.FCnt)
	b0[15] = byte(len(msg))

	if v != LoRaWAN1_1 || !p.isUplink() {
		key := keys.FNwkSIntKey
		if v == LoRaWAN1_1 {
			// 1.1 downlinks are signed by the serving network server
			key = keys.SNwkSIntKey
		}
		return aesCMAC4(key, append(b0, msg...))
	}

	// 1.1 uplink: two CMACs, two bytes of each. The B1 block extends B0
	// with ConfFCnt, TxDR and TxCh, none of which are known to an offline
	// parser, so they are left zero.
	micF, err := aesCMAC4(keys.FNwkSIntKey, append(b0, msg...))
	if err != nil {
		return MIC{}, err
	}

	b1 := make([]byte, 16)
	copy(b1, b0)
	b1[0] = 0x49
	micS, err := aesCMAC4(keys.SNwkSIntKey, append(b1, msg...))
	if err != nil {
		return MIC{}, err
	}

	return MIC{micS[0], micS[1], micF[0], micF[1]}, nil
}

// aesCMAC4 returns the first four bytes of AES-CMAC(key, msg).
func aesCMAC4(key AES128Key, msg []byte) (MIC, error) {
	hash, err := cmac.New(key[:])
	if err != nil {
		return MIC{}, err
	}
	if _, err = hash.Write(msg); err != nil {
		return MIC{}, err
	}
	hb := hash.Sum([]byte{})
	if len(hb) < 4 {
		return MIC{}, errors.New("lorawan: the hash returned less than 4 bytes")
	}
	var mic MIC
	copy(mic[:], hb[0:4])
	return mic, nil
}

// DecryptJoinAcceptPayload decrypts the join-accept payload with the given
// root key (AppKey for 1.0.x, NwkKey for 1.1). The MIC is part of the
// encrypted region, so it is replaced by its decrypted value. Note that the
// network server applies the AES decrypt operation when encrypting, so the
// decryption here is a plain block encrypt of the wire bytes.
func (p *PHYPayload) DecryptJoinAcceptPayload(key AES128Key) error {
	dp, ok := p.MACPayload.(*DataPayload)
	if !ok {
		return errors.New("lorawan: MACPayload must be of type *DataPayload")
	}

	ct := make([]byte, 0, len(dp.Bytes)+4)
	ct = append(ct, dp.Bytes...)
	ct = append(ct, p.MIC[:]...)
	if len(ct)%16 != 0 {
		return errors.New("lorawan: ciphertext must be a multiple of 16 bytes")
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	pt := make([]byte, len(ct))
	for i := 0; i < len(pt)/16; i++ {
		offset := i * 16
		block.Encrypt(pt[offset:offset+16], ct[offset:offset+16])
	}

	p.MACPayload = &JoinAcceptPayload{}
	copy(p.MIC[:], pt[len(pt)-4:])
	return p.MACPayload.UnmarshalBinary(p.isUplink(), pt[0:len(pt)-4])
}

// EncryptJoinAcceptPayload encrypts the join-accept payload with the given
// root key. Encryption must be performed after calling SetMIC, since the
// MIC is part of the encrypted region.
func (p *PHYPayload) EncryptJoinAcceptPayload(key AES128Key) error {
	if _, ok := p.MACPayload.(*JoinAcceptPayload); !ok {
		return errors.New("lorawan: MACPayload must be of type *JoinAcceptPayload")
	}

	pt, err := p.MACPayload.MarshalBinary()
	if err != nil {
		return err
	}
	pt = append(pt, p.MIC[:]...)
	if len(pt)%16 != 0 {
		return errors.New("lorawan: plaintext must be a multiple of 16 bytes")
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	ct := make([]byte, len(pt))
	for i := 0; i < len(ct)/16; i++ {
		offset := i * 16
		block.Decrypt(ct[offset:offset+16], pt[offset:offset+16])
	}
	p.MACPayload = &DataPayload{Bytes: ct[0 : len(ct)-4]}
	copy(p.MIC[:], ct[len(ct)-4:])
	return nil
}

// DecryptFRMPayload decrypts the FRMPayload in place with the given key.
// The key must be the AppSKey for FPort >= 1 and the NwkSKey (1.0.x) or
// NwkSEncKey (1.1) for FPort 0.
func (p *PHYPayload) DecryptFRMPayload(key AES128Key) error {
	return p.EncryptFRMPayload(key)
}

// EncryptFRMPayload encrypts the FRMPayload in place with the given key.
// Encryption and decryption are the same operation.
func (p *PHYPayload) EncryptFRMPayload(key AES128Key) error {
	macPL, ok := p.MACPayload.(*MACPayload)
	if !ok {
		return errors.New("lorawan: MACPayload must be of type *MACPayload")
	}
	if len(macPL.FRMPayload) == 0 {
		return nil
	}

	data, err := EncryptFRMPayload(key, p.isUplink(), macPL.FHDR.DevAddr, macPL.FHDR.FCnt, macPL.FRMPayload)
	if err != nil {
		return err
	}
	macPL.FRMPayload = data
	return nil
}

func (p PHYPayload) isUplink() bool {
	return p.MHDR.MType.Uplink()
}

// EncryptFRMPayload encrypts (or decrypts, the operation is involutive) a
// slice of FRMPayload bytes. The input slice is not modified.
func EncryptFRMPayload(key AES128Key, uplink bool, devAddr DevAddr, fCnt uint32, data []byte) ([]byte, error) {
	pLen := len(data)
	buf := make([]byte, pLen)
	copy(buf, data)
	if pLen%16 != 0 {
		buf = append(buf, make([]byte, 16-(pLen%16))...)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	s := make([]byte, 16)
	a := make([]byte, 16)
	a[0] = 0x01
	if !uplink {
		a[5] = 0x01
	}
	b, err := devAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(a[6:10], b)
	binary.LittleEndian.PutUint32(a[10:14], fCnt)

	for i := 0; i < len(buf)/16; i++ {
		a[15] = byte(i + 1)
		block.Encrypt(s, a)
		for j := range s {
			buf[i*16+j] ^= s[j]
		}
	}

	return buf[0:pLen], nil
}

// EncryptFOpts encrypts (or decrypts) the FOpts bytes with the NwkSEncKey.
// Only 1.1 frames carry encrypted FOpts; the block counter is fixed to
// zero as the options always fit a single block.
func EncryptFOpts(key AES128Key, uplink bool, devAddr DevAddr, fCnt uint32, data []byte) ([]byte, error) {
	if len(data) > 15 {
		return nil, errors.New("lorawan: max number of FOpts bytes is 15")
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	a := make([]byte, 16)
	a[0] = 0x01
	if !uplink {
		a[5] = 0x01
	}
	b, err := devAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(a[6:10], b)
	binary.LittleEndian.PutUint32(a[10:14], fCnt)

	s := make([]byte, 16)
	block.Encrypt(s, a)

	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ s[i]
	}
	return out, nil
}
