package lorawan

import (
	"encoding/hex"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mustKey(t *testing.T, s string) AES128Key {
	var k AES128Key
	if err := k.UnmarshalText([]byte(s)); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestPHYPayloadJoinRequest(t *testing.T) {
	appKey := mustKey(t, "beef000102030405060708090a0b0c0d")
	frame := mustHex(t, "00050403020100efbe050403020100efbe87bcc54c5b5f")

	Convey("Given a join-request frame", t, func() {
		var phy PHYPayload

		Convey("Then UnmarshalBinary decodes the fields", func() {
			So(phy.UnmarshalBinary(frame), ShouldBeNil)
			So(phy.MHDR.MType, ShouldEqual, JoinRequest)
			So(phy.MHDR.Major, ShouldEqual, LoRaWANR1)

			jrPL, ok := phy.MACPayload.(*JoinRequestPayload)
			So(ok, ShouldBeTrue)
			So(jrPL.AppEUI.String(), ShouldEqual, "beef000102030405")
			So(jrPL.DevEUI.String(), ShouldEqual, "beef000102030405")
			So(jrPL.DevNonce.String(), ShouldEqual, "bc87")
			So(phy.MIC.String(), ShouldEqual, "c54c5b5f")

			Convey("Then the MIC validates under the AppKey", func() {
				keys := MICKeys{JoinKey: appKey}
				ok, err := phy.ValidateMIC(LoRaWAN1_0, keys)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)

				mic, err := phy.CalculateMIC(LoRaWAN1_0, keys)
				So(err, ShouldBeNil)
				So(mic.Reversed().String(), ShouldEqual, "5f5b4cc5")
			})

			Convey("Then MarshalBinary returns the original bytes", func() {
				b, err := phy.MarshalBinary()
				So(err, ShouldBeNil)
				So(b, ShouldResemble, frame)
			})
		})

		Convey("When the frame is one byte short", func() {
			err := phy.UnmarshalBinary(frame[:22])

			Convey("Then a MalformedFrameError is returned", func() {
				mfe, ok := err.(MalformedFrameError)
				So(ok, ShouldBeTrue)
				So(mfe.MType, ShouldEqual, JoinRequest)
				So(mfe.Len, ShouldEqual, 22)
			})
		})
	})
}

func TestPHYPayloadJoinAccept(t *testing.T) {
	appKey := mustKey(t, "beef000102030405060708090a0b0c0d")
	frame := mustHex(t, "20b46c0022dae91f38e172ac0312d4bc5b")

	Convey("Given a join-accept frame", t, func() {
		var phy PHYPayload
		So(phy.UnmarshalBinary(frame), ShouldBeNil)
		So(phy.MHDR.MType, ShouldEqual, JoinAccept)

		Convey("Then the payload stays opaque until decrypted", func() {
			_, ok := phy.MACPayload.(*DataPayload)
			So(ok, ShouldBeTrue)
		})

		Convey("When decrypting with the AppKey", func() {
			So(phy.DecryptJoinAcceptPayload(appKey), ShouldBeNil)

			jaPL, ok := phy.MACPayload.(*JoinAcceptPayload)
			So(ok, ShouldBeTrue)

			Convey("Then the fields match", func() {
				So(jaPL.AppNonce.String(), ShouldEqual, "4c5247")
				So(jaPL.NetID.String(), ShouldEqual, "000015")
				So(jaPL.DevAddr.String(), ShouldEqual, "2bbe0934")
				So(jaPL.RXDelay, ShouldEqual, 1)
				So(jaPL.CFList, ShouldBeNil)
			})

			Convey("Then the MIC validates under the AppKey", func() {
				keys := MICKeys{JoinKey: appKey}
				ok, err := phy.ValidateMIC(LoRaWAN1_0, keys)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(phy.MIC.Reversed().String(), ShouldEqual, "223195d7")
			})

			Convey("Then re-encrypting restores the wire bytes", func() {
				So(phy.EncryptJoinAcceptPayload(appKey), ShouldBeNil)
				b, err := phy.MarshalBinary()
				So(err, ShouldBeNil)
				So(b, ShouldResemble, frame)
			})
		})

		Convey("When the frame has an invalid length", func() {
			err := phy.UnmarshalBinary(frame[:16])
			_, ok := err.(MalformedFrameError)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestPHYPayloadDataUp(t *testing.T) {
	nwkSKey := mustKey(t, "70ff6652c80bcee90b21f2d74bf336b2")
	appSKey := mustKey(t, "51ebd6666d77121b3782ef59a252e013")
	frame := mustHex(t, "403409be2b80000002c7fb8963476d5bf4090e6b867a40b597047241eb80aef79df6")

	Convey("Given an unconfirmed data-up frame", t, func() {
		var phy PHYPayload
		So(phy.UnmarshalBinary(frame), ShouldBeNil)
		So(phy.MHDR.MType, ShouldEqual, UnconfirmedDataUp)

		macPL, ok := phy.MACPayload.(*MACPayload)
		So(ok, ShouldBeTrue)

		Convey("Then the FHDR fields match", func() {
			So(macPL.FHDR.DevAddr.String(), ShouldEqual, "2bbe0934")
			So(macPL.FHDR.FCtrl.ADR, ShouldBeTrue)
			So(macPL.FHDR.FCtrl.ACK, ShouldBeFalse)
			So(macPL.FHDR.FCtrl.FOptsLen(), ShouldEqual, 0)
			So(macPL.FHDR.FCnt, ShouldEqual, 0)
			So(macPL.FPort, ShouldNotBeNil)
			So(*macPL.FPort, ShouldEqual, 2)
		})

		Convey("Then the MIC validates under the NwkSKey", func() {
			keys := MICKeys{FNwkSIntKey: nwkSKey}
			ok, err := phy.ValidateMIC(LoRaWAN1_0, keys)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			mic, err := phy.CalculateMIC(LoRaWAN1_0, keys)
			So(err, ShouldBeNil)
			So(mic.Reversed().String(), ShouldEqual, "f69df7ae")
		})

		Convey("Then the MIC does not validate under a wrong key", func() {
			keys := MICKeys{FNwkSIntKey: appSKey}
			ok, err := phy.ValidateMIC(LoRaWAN1_0, keys)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When decrypting the FRMPayload with the AppSKey", func() {
			So(phy.DecryptFRMPayload(appSKey), ShouldBeNil)

			Convey("Then the plaintext matches", func() {
				So(hex.EncodeToString(macPL.FRMPayload), ShouldEqual, "8105000a14033e0000000000000e7e09420a8c0000")
			})

			Convey("Then encrypting again restores the ciphertext", func() {
				So(phy.EncryptFRMPayload(appSKey), ShouldBeNil)
				b, err := phy.MarshalBinary()
				So(err, ShouldBeNil)
				So(b, ShouldResemble, frame)
			})
		})

		Convey("When the frame is shorter than a minimal data frame", func() {
			err := phy.UnmarshalBinary(frame[:11])
			mfe, ok := err.(MalformedFrameError)
			So(ok, ShouldBeTrue)
			So(mfe.MType, ShouldEqual, UnconfirmedDataUp)
		})
	})
}

func TestPHYPayloadFOptsWithPortZero(t *testing.T) {
	key := mustKey(t, "000102030405060708090a0b0c0d0e0f")
	// FOptsLen 1 together with FPort 0 violates the specification, but the
	// frame parses and must still get a MIC verdict
	frame := mustHex(t, "40040302010100000200aabbccdd")

	Convey("Given a data frame carrying both FOpts and FPort 0", t, func() {
		var phy PHYPayload
		So(phy.UnmarshalBinary(frame), ShouldBeNil)

		macPL, ok := phy.MACPayload.(*MACPayload)
		So(ok, ShouldBeTrue)
		So(macPL.FHDR.FOpts, ShouldResemble, []byte{0x02})
		So(macPL.FPort, ShouldNotBeNil)
		So(*macPL.FPort, ShouldEqual, 0)

		Convey("Then the MIC is computed instead of aborting", func() {
			keys := MICKeys{FNwkSIntKey: key}
			_, err := phy.CalculateMIC(LoRaWAN1_0, keys)
			So(err, ShouldBeNil)

			valid, err := phy.ValidateMIC(LoRaWAN1_0, keys)
			So(err, ShouldBeNil)
			So(valid, ShouldBeFalse)
		})
	})
}

func TestFCnt32(t *testing.T) {
	Convey("Given an FHDR with wire FCnt 0x0102", t, func() {
		var h FHDR
		So(h.UnmarshalBinary(true, []byte{1, 2, 3, 4, 0x00, 0x02, 0x01}), ShouldBeNil)
		So(h.FCnt, ShouldEqual, 0x0102)

		Convey("When widening with upper half 0xabcd", func() {
			h.SetFCntUpper(0xabcd)
			So(h.FCnt, ShouldEqual, uint32(0xabcd0102))
		})
	})
}

func TestEncryptFRMPayload(t *testing.T) {
	key := mustKey(t, "000102030405060708090a0b0c0d0e0f")
	devAddr := DevAddr{1, 2, 3, 4}

	Convey("Given payloads of every length from 0 to 255", t, func() {
		for size := 0; size <= 255; size++ {
			pt := make([]byte, size)
			for i := range pt {
				pt[i] = byte(i)
			}

			ct, err := EncryptFRMPayload(key, true, devAddr, 42, pt)
			So(err, ShouldBeNil)
			So(ct, ShouldHaveLength, size)

			back, err := EncryptFRMPayload(key, true, devAddr, 42, ct)
			So(err, ShouldBeNil)
			So(back, ShouldResemble, pt)
		}
	})

	Convey("The keystream depends on the direction", t, func() {
		pt := make([]byte, 16)
		up, err := EncryptFRMPayload(key, true, devAddr, 1, pt)
		So(err, ShouldBeNil)
		down, err := EncryptFRMPayload(key, false, devAddr, 1, pt)
		So(err, ShouldBeNil)
		So(up, ShouldNotResemble, down)
	})
}

func TestEncryptFOpts(t *testing.T) {
	key := mustKey(t, "000102030405060708090a0b0c0d0e0f")
	devAddr := DevAddr{1, 2, 3, 4}

	Convey("Given up to 15 bytes of FOpts", t, func() {
		opts := mustHex(t, "0302ff0001")
		ct, err := EncryptFOpts(key, true, devAddr, 7, opts)
		So(err, ShouldBeNil)
		So(ct, ShouldHaveLength, len(opts))

		back, err := EncryptFOpts(key, true, devAddr, 7, ct)
		So(err, ShouldBeNil)
		So(back, ShouldResemble, opts)
	})

	Convey("Given more than 15 bytes of FOpts", t, func() {
		_, err := EncryptFOpts(key, true, devAddr, 7, make([]byte, 16))
		So(err, ShouldNotBeNil)
	})
}

func TestMHDR(t *testing.T) {
	Convey("Given all MType and Major combinations", t, func() {
		for m := JoinRequest; m <= Proprietary; m++ {
			h := MHDR{MType: m, Major: LoRaWANR1}
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)
			So(b, ShouldHaveLength, 1)

			var h2 MHDR
			So(h2.UnmarshalBinary(b), ShouldBeNil)
			So(h2, ShouldResemble, h)
		}
	})

	Convey("The direction follows the MType", t, func() {
		So(JoinRequest.Uplink(), ShouldBeTrue)
		So(ConfirmedDataUp.Uplink(), ShouldBeTrue)
		So(JoinAccept.Uplink(), ShouldBeFalse)
		So(UnconfirmedDataDown.Uplink(), ShouldBeFalse)
	})
}
