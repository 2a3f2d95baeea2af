// Package decoder ties the lorawan primitives together: it decodes a raw
// frame, verifies its MIC when the needed keys are present, decrypts the
// payloads and interprets MAC commands.
package decoder

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tanupoo/lorawan-parser/lorawan"
)

// Options controls a single decode. Key fields are optional: a nil key
// skips the steps that would need it, the frame structure is reported
// either way.
type Options struct {
	Version lorawan.Version

	// AppKey is the root key: it verifies and decrypts join messages and,
	// for 1.1, doubles as the NwkKey.
	AppKey *lorawan.AES128Key

	// Session keys for data frames. NwkSKey is the FNwkSIntKey in 1.1
	// terms.
	NwkSKey     *lorawan.AES128Key
	AppSKey     *lorawan.AES128Key
	SNwkSIntKey *lorawan.AES128Key
	NwkSEncKey  *lorawan.AES128Key

	// FCntUpper supplies the upper 16 bits of the frame counter for MIC
	// and keystream computation.
	FCntUpper uint16
}

// MICStatus reports the outcome of the MIC verification. Checked is false
// when no suitable key was available.
type MICStatus struct {
	Checked bool        `json:"checked"`
	Valid   bool        `json:"valid"`
	InFrame lorawan.MIC `json:"inFrame"`
	Derived lorawan.MIC `json:"derived"`
}

// Result holds everything learned about one frame.
type Result struct {
	Raw     []byte             `json:"raw"`
	Version lorawan.Version    `json:"version"`
	PHY     lorawan.PHYPayload `json:"phy"`
	MIC     MICStatus          `json:"mic"`

	// JoinAcceptEncrypted is true when a join-accept could not be
	// decrypted for lack of a root key.
	JoinAcceptEncrypted bool `json:"joinAcceptEncrypted,omitempty"`

	// FRMPayloadDecrypted is true when PHY holds the FRMPayload in
	// plaintext.
	FRMPayloadDecrypted bool `json:"frmPayloadDecrypted,omitempty"`

	// FOptsCommands holds the MAC commands carried in the FOpts field,
	// FRMCommands the ones carried in an FPort 0 payload.
	FOptsCommands []lorawan.MACCommand `json:"fOptsCommands,omitempty"`
	FRMCommands   []lorawan.MACCommand `json:"frmCommands,omitempty"`

	// CommandError is set when a MAC command stream was truncated; the
	// command slices still hold the prefix decoded before the error.
	CommandError error `json:"-"`
}

// Decode parses raw as a PHYPayload and applies every cryptographic step
// the given keys allow.
func Decode(raw []byte, opts Options) (*Result, error) {
	res := &Result{
		Raw:     append([]byte(nil), raw...),
		Version: opts.Version,
	}

	if err := res.PHY.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal phypayload")
	}
	res.MIC.InFrame = res.PHY.MIC

	switch res.PHY.MACPayload.(type) {
	case *lorawan.JoinRequestPayload:
		if opts.AppKey == nil {
			log.Debug("no appkey given, skipping join-request mic check")
			return res, nil
		}
		return res, res.checkMIC(lorawan.MICKeys{JoinKey: *opts.AppKey})

	case *lorawan.MACPayload:
		return res, res.decodeData(opts)

	default:
		if res.PHY.MHDR.MType != lorawan.JoinAccept {
			// proprietary frames stay opaque
			return res, nil
		}
		if opts.AppKey == nil {
			log.Debug("no appkey given, join-accept stays encrypted")
			res.JoinAcceptEncrypted = true
			return res, nil
		}
		if err := res.PHY.DecryptJoinAcceptPayload(*opts.AppKey); err != nil {
			return nil, errors.Wrap(err, "decrypt join-accept")
		}
		res.MIC.InFrame = res.PHY.MIC
		return res, res.checkMIC(lorawan.MICKeys{JoinKey: *opts.AppKey})
	}
}

func (r *Result) checkMIC(keys lorawan.MICKeys) error {
	derived, err := r.PHY.CalculateMIC(r.Version, keys)
	if err != nil {
		return errors.Wrap(err, "calculate mic")
	}
	r.MIC.Checked = true
	r.MIC.Derived = derived
	r.MIC.Valid = derived == r.MIC.InFrame
	if !r.MIC.Valid {
		log.WithFields(log.Fields{
			"in_frame": r.MIC.InFrame,
			"derived":  derived,
		}).Debug("mic mismatch")
	}
	return nil
}

func (r *Result) decodeData(opts Options) error {
	macPL := r.PHY.MACPayload.(*lorawan.MACPayload)
	uplink := r.PHY.MHDR.MType.Uplink()
	macPL.FHDR.SetFCntUpper(opts.FCntUpper)

	if macPL.FPort != nil && *macPL.FPort == 0 && len(macPL.FHDR.FOpts) > 0 {
		// invalid per the specification, but still worth a full report
		log.Warning("mac commands present in both FOpts and FRMPayload")
	}

	if keys, ok := r.dataMICKeys(opts, uplink); ok {
		if err := r.checkMIC(keys); err != nil {
			return err
		}
	} else {
		log.Debug("session keys missing, skipping data mic check")
	}

	if err := r.decodeFOpts(opts, macPL, uplink); err != nil {
		return err
	}
	return r.decryptFRMPayload(opts, macPL, uplink)
}

// dataMICKeys assembles the MIC keys for a data frame, reporting false
// when a required key is missing.
func (r *Result) dataMICKeys(opts Options, uplink bool) (lorawan.MICKeys, bool) {
	var keys lorawan.MICKeys

	if r.Version != lorawan.LoRaWAN1_1 {
		if opts.NwkSKey == nil {
			return keys, false
		}
		keys.FNwkSIntKey = *opts.NwkSKey
		return keys, true
	}

	if uplink {
		if opts.NwkSKey == nil || opts.SNwkSIntKey == nil {
			return keys, false
		}
		keys.FNwkSIntKey = *opts.NwkSKey
		keys.SNwkSIntKey = *opts.SNwkSIntKey
		return keys, true
	}

	if opts.SNwkSIntKey == nil {
		return keys, false
	}
	keys.SNwkSIntKey = *opts.SNwkSIntKey
	return keys, true
}

func (r *Result) decodeFOpts(opts Options, macPL *lorawan.MACPayload, uplink bool) error {
	if len(macPL.FHDR.FOpts) == 0 {
		return nil
	}

	fOpts := macPL.FHDR.FOpts
	if r.Version == lorawan.LoRaWAN1_1 {
		// 1.1 encrypts the FOpts with the NwkSEncKey
		if opts.NwkSEncKey == nil {
			log.Debug("no nwksenckey given, fopts stay encrypted")
			return nil
		}
		var err error
		fOpts, err = lorawan.EncryptFOpts(*opts.NwkSEncKey, uplink, macPL.FHDR.DevAddr, macPL.FHDR.FCnt, fOpts)
		if err != nil {
			return errors.Wrap(err, "decrypt fopts")
		}
		macPL.FHDR.FOpts = fOpts
	}

	cmds, err := lorawan.DecodeMACCommands(uplink, fOpts)
	r.FOptsCommands = cmds
	if err != nil {
		r.CommandError = err
		log.WithError(err).Debug("fopts mac-command decode stopped")
	}
	return nil
}

func (r *Result) decryptFRMPayload(opts Options, macPL *lorawan.MACPayload, uplink bool) error {
	if macPL.FPort == nil || len(macPL.FRMPayload) == 0 {
		return nil
	}

	var key *lorawan.AES128Key
	if *macPL.FPort == 0 {
		// FPort 0 carries MAC commands under the network session key
		key = opts.NwkSKey
		if r.Version == lorawan.LoRaWAN1_1 {
			key = opts.NwkSEncKey
		}
	} else {
		key = opts.AppSKey
	}
	if key == nil {
		log.WithField("fport", *macPL.FPort).Debug("no key for fport, frmpayload stays encrypted")
		return nil
	}

	if err := r.PHY.DecryptFRMPayload(*key); err != nil {
		return errors.Wrap(err, "decrypt frmpayload")
	}
	r.FRMPayloadDecrypted = true

	if *macPL.FPort == 0 {
		cmds, err := lorawan.DecodeMACCommands(uplink, macPL.FRMPayload)
		r.FRMCommands = cmds
		if err != nil {
			r.CommandError = err
			log.WithError(err).Debug("fport-0 mac-command decode stopped")
		}
	}
	return nil
}

// InvalidJoinPairError is returned by DeriveSessionKeys when the given
// frames are not a join-request / join-accept pair.
type InvalidJoinPairError struct {
	Reason string
}

// Error implements error.
func (e InvalidJoinPairError) Error() string {
	return fmt.Sprintf("invalid join pair: %s", e.Reason)
}

// DeriveSessionKeys decodes a raw join-request / join-accept pair and
// derives the session keys for the given version. The rootKey is the
// AppKey; for 1.1 it is used as NwkKey as well, as only one root key can
// be supplied.
func DeriveSessionKeys(jrRaw, jaRaw []byte, rootKey lorawan.AES128Key, v lorawan.Version) (lorawan.SessionKeys, error) {
	var sk lorawan.SessionKeys

	var jr lorawan.PHYPayload
	if err := jr.UnmarshalBinary(jrRaw); err != nil {
		return sk, errors.Wrap(err, "unmarshal join-request")
	}
	jrPL, ok := jr.MACPayload.(*lorawan.JoinRequestPayload)
	if !ok {
		return sk, InvalidJoinPairError{Reason: fmt.Sprintf("first frame is a %s, not a join-request", jr.MHDR.MType)}
	}

	var ja lorawan.PHYPayload
	if err := ja.UnmarshalBinary(jaRaw); err != nil {
		return sk, errors.Wrap(err, "unmarshal join-accept")
	}
	if ja.MHDR.MType != lorawan.JoinAccept {
		return sk, InvalidJoinPairError{Reason: fmt.Sprintf("second frame is a %s, not a join-accept", ja.MHDR.MType)}
	}
	if err := ja.DecryptJoinAcceptPayload(rootKey); err != nil {
		return sk, errors.Wrap(err, "decrypt join-accept")
	}
	jaPL := ja.MACPayload.(*lorawan.JoinAcceptPayload)

	if v == lorawan.LoRaWAN1_1 {
		return lorawan.DeriveSessionKeys11(rootKey, rootKey, jaPL.AppNonce, jrPL.AppEUI, jrPL.DevNonce)
	}
	return lorawan.DeriveSessionKeys10x(rootKey, jaPL.AppNonce, jaPL.NetID, jrPL.DevNonce)
}
