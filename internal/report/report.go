// Package report renders a decoded frame for humans, in the layout of the
// classic text dump, or as JSON for machines.
package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/tanupoo/lorawan-parser/internal/decoder"
	"github.com/tanupoo/lorawan-parser/lorawan"
)

// RenderJSON writes the result as indented JSON.
func RenderJSON(w io.Writer, res *decoder.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return errors.Wrap(err, "encode json")
	}
	return nil
}

// Render writes the result as an indented text dump. MIC values are shown
// most-significant byte first, matching the display convention for the
// other multi-byte fields.
func Render(w io.Writer, res *decoder.Result) error {
	p := printer{w: w}

	p.printf("PHYPayload: %s (%d bytes)", hex.EncodeToString(res.Raw), len(res.Raw))
	p.printf("  MHDR")
	direction := "downlink"
	if res.PHY.MHDR.MType.Uplink() {
		direction = "uplink"
	}
	p.printf("    MType: %s (%s)", res.PHY.MHDR.MType, direction)
	p.printf("    Major: %s", res.PHY.MHDR.Major)

	switch pl := res.PHY.MACPayload.(type) {
	case *lorawan.JoinRequestPayload:
		p.renderJoinRequest(res, pl)
	case *lorawan.JoinAcceptPayload:
		p.renderJoinAccept(res, pl)
	case *lorawan.MACPayload:
		p.renderData(res, pl)
	case *lorawan.DataPayload:
		if res.JoinAcceptEncrypted {
			p.printf("  JoinAccept: %s (encrypted, no appkey)", hex.EncodeToString(pl.Bytes))
		} else {
			p.printf("  Payload: %s", hex.EncodeToString(pl.Bytes))
		}
		p.renderMIC(res)
	}

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) renderJoinRequest(res *decoder.Result, pl *lorawan.JoinRequestPayload) {
	joinEUIName := "AppEUI"
	if res.Version == lorawan.LoRaWAN1_1 {
		joinEUIName = "JoinEUI"
	}
	p.printf("  JoinRequest")
	p.printf("    %s: %s", joinEUIName, pl.AppEUI)
	p.printf("    DevEUI: %s", pl.DevEUI)
	p.printf("    DevNonce: %s", pl.DevNonce)
	p.renderMIC(res)
}

func (p *printer) renderJoinAccept(res *decoder.Result, pl *lorawan.JoinAcceptPayload) {
	nonceName := "AppNonce"
	if res.Version == lorawan.LoRaWAN1_1 {
		nonceName = "JoinNonce"
	}
	p.printf("  JoinAccept")
	p.printf("    %s: %s", nonceName, pl.AppNonce)
	p.printf("    NetID: %s (NwkID %d)", pl.NetID, pl.NetID.NwkID())
	p.printf("    DevAddr: %s", pl.DevAddr)
	p.printf("    DLSettings: OptNeg=%s RX1DROffset=%d RX2DataRate=%d",
		boolBit(pl.DLSettings.OptNeg), pl.DLSettings.RX1DROffset, pl.DLSettings.RX2DataRate)
	p.printf("    RxDelay: %d sec", rxDelaySeconds(pl.RXDelay))
	if pl.CFList != nil {
		p.printf("    CFList (type %d)", pl.CFList.CFListType)
		for i, f := range pl.CFList.Channels {
			if f == 0 {
				continue
			}
			// frequencies are coded in units of 100 Hz
			p.printf("      Ch%d: %d Hz", i+4, f*100)
		}
	}
	p.renderMIC(res)
}

func (p *printer) renderData(res *decoder.Result, pl *lorawan.MACPayload) {
	uplink := res.PHY.MHDR.MType.Uplink()

	p.printf("  FHDR")
	p.printf("    DevAddr: %s (NwkID %d)", pl.FHDR.DevAddr, pl.FHDR.DevAddr.NwkID())
	p.renderFCtrl(res, pl, uplink)
	p.printf("    FCnt: %d (lsb %d)", pl.FHDR.FCnt, pl.FHDR.FCnt&0xffff)

	if len(pl.FHDR.FOpts) > 0 {
		p.printf("    FOpts: %s", hex.EncodeToString(pl.FHDR.FOpts))
		p.renderCommands("    ", res.FOptsCommands, uplink)
	}

	if pl.FPort != nil {
		switch {
		case *pl.FPort == 0:
			p.printf("  FPort: 0 (MAC commands)")
		case *pl.FPort == 224:
			p.printf("  FPort: 224 (MAC test protocol)")
		default:
			p.printf("  FPort: %d", *pl.FPort)
		}
	}

	if len(pl.FRMPayload) > 0 {
		state := "ciphertext"
		if res.FRMPayloadDecrypted {
			state = "decrypted"
		}
		p.printf("  FRMPayload (%s, %d bytes): %s", state, len(pl.FRMPayload), hex.EncodeToString(pl.FRMPayload))
		if pl.FPort != nil && *pl.FPort == 0 && res.FRMPayloadDecrypted {
			p.renderCommands("  ", res.FRMCommands, uplink)
		}
	}

	p.renderMIC(res)
}

// renderFCtrl labels bit 4 and bit 6 according to direction and version:
// bit 4 is ClassB on uplinks (1.0.3 and later) and FPending on downlinks,
// bit 6 is ADRACKReq except on 1.0.3+ downlinks where it is RFU.
func (p *printer) renderFCtrl(res *decoder.Result, pl *lorawan.MACPayload, uplink bool) {
	c := pl.FHDR.FCtrl

	if uplink {
		if res.Version == lorawan.LoRaWAN1_0 {
			p.printf("    FCtrl: ADR=%s ADRACKReq=%s ACK=%s RFU=%s FOptsLen=%d",
				boolBit(c.ADR), boolBit(c.ADRACKReq), boolBit(c.ACK), boolBit(c.ClassB), c.FOptsLen())
		} else {
			p.printf("    FCtrl: ADR=%s ADRACKReq=%s ACK=%s ClassB=%s FOptsLen=%d",
				boolBit(c.ADR), boolBit(c.ADRACKReq), boolBit(c.ACK), boolBit(c.ClassB), c.FOptsLen())
		}
		return
	}

	if res.Version == lorawan.LoRaWAN1_0 {
		p.printf("    FCtrl: ADR=%s ADRACKReq=%s ACK=%s FPending=%s FOptsLen=%d",
			boolBit(c.ADR), boolBit(c.ADRACKReq), boolBit(c.ACK), boolBit(c.FPending), c.FOptsLen())
	} else {
		p.printf("    FCtrl: ADR=%s RFU=%s ACK=%s FPending=%s FOptsLen=%d",
			boolBit(c.ADR), boolBit(c.ADRACKReq), boolBit(c.ACK), boolBit(c.FPending), c.FOptsLen())
	}
}

func (p *printer) renderCommands(indent string, cmds []lorawan.MACCommand, uplink bool) {
	for _, c := range cmds {
		name := c.CID.Name(uplink)
		if c.Payload == nil {
			p.printf("%s  %s (%02x)", indent, name, byte(c.CID))
			continue
		}
		p.printf("%s  %s (%02x): %+v", indent, name, byte(c.CID), c.Payload)
	}
}

func (p *printer) renderMIC(res *decoder.Result) {
	p.printf("  MIC (in frame): %s", res.MIC.InFrame.Reversed())
	if !res.MIC.Checked {
		p.printf("  MIC (derived): not checked, key missing")
		return
	}
	verdict := "mismatch"
	if res.MIC.Valid {
		verdict = "valid"
	}
	p.printf("  MIC (derived): %s => %s", res.MIC.Derived.Reversed(), verdict)
}

func boolBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// rxDelaySeconds maps the RXDelay field to seconds; the value 0 means one
// second.
func rxDelaySeconds(v uint8) int {
	d := int(v & 0x0f)
	if d == 0 {
		return 1
	}
	return d
}
