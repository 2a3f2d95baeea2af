package decoder

import (
	"encoding/hex"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tanupoo/lorawan-parser/lorawan"
)

var (
	testAppKey  = mustKey("beef000102030405060708090a0b0c0d")
	testNwkSKey = mustKey("70ff6652c80bcee90b21f2d74bf336b2")
	testAppSKey = mustKey("51ebd6666d77121b3782ef59a252e013")

	testJoinRequest = mustHex("00050403020100efbe050403020100efbe87bcc54c5b5f")
	testJoinAccept  = mustHex("20b46c0022dae91f38e172ac0312d4bc5b")
	testDataUp      = mustHex("403409be2b80000002c7fb8963476d5bf4090e6b867a40b597047241eb80aef79df6")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func mustKey(s string) lorawan.AES128Key {
	var k lorawan.AES128Key
	if err := k.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return k
}

func TestDecodeJoinRequest(t *testing.T) {
	Convey("Given a join-request frame", t, func() {
		Convey("When decoding with the AppKey", func() {
			res, err := Decode(testJoinRequest, Options{AppKey: &testAppKey})
			So(err, ShouldBeNil)

			Convey("Then the MIC is checked and valid", func() {
				So(res.MIC.Checked, ShouldBeTrue)
				So(res.MIC.Valid, ShouldBeTrue)
				So(res.MIC.Derived.Reversed().String(), ShouldEqual, "5f5b4cc5")
			})
		})

		Convey("When decoding without keys", func() {
			res, err := Decode(testJoinRequest, Options{})
			So(err, ShouldBeNil)

			Convey("Then the structure is decoded but the MIC is not checked", func() {
				So(res.MIC.Checked, ShouldBeFalse)
				jrPL, ok := res.PHY.MACPayload.(*lorawan.JoinRequestPayload)
				So(ok, ShouldBeTrue)
				So(jrPL.DevEUI.String(), ShouldEqual, "beef000102030405")
			})
		})
	})
}

func TestDecodeJoinAccept(t *testing.T) {
	Convey("Given a join-accept frame", t, func() {
		Convey("When decoding with the AppKey", func() {
			res, err := Decode(testJoinAccept, Options{AppKey: &testAppKey})
			So(err, ShouldBeNil)

			Convey("Then the payload is decrypted and the MIC valid", func() {
				So(res.JoinAcceptEncrypted, ShouldBeFalse)
				So(res.MIC.Checked, ShouldBeTrue)
				So(res.MIC.Valid, ShouldBeTrue)

				jaPL, ok := res.PHY.MACPayload.(*lorawan.JoinAcceptPayload)
				So(ok, ShouldBeTrue)
				So(jaPL.DevAddr.String(), ShouldEqual, "2bbe0934")
			})
		})

		Convey("When decoding without keys", func() {
			res, err := Decode(testJoinAccept, Options{})
			So(err, ShouldBeNil)

			Convey("Then the payload stays encrypted", func() {
				So(res.JoinAcceptEncrypted, ShouldBeTrue)
				So(res.MIC.Checked, ShouldBeFalse)
			})
		})
	})
}

func TestDecodeDataUp(t *testing.T) {
	Convey("Given an unconfirmed data-up frame", t, func() {
		Convey("When decoding with both session keys", func() {
			res, err := Decode(testDataUp, Options{NwkSKey: &testNwkSKey, AppSKey: &testAppSKey})
			So(err, ShouldBeNil)

			Convey("Then the MIC is valid and the payload decrypted", func() {
				So(res.MIC.Checked, ShouldBeTrue)
				So(res.MIC.Valid, ShouldBeTrue)
				So(res.FRMPayloadDecrypted, ShouldBeTrue)

				macPL := res.PHY.MACPayload.(*lorawan.MACPayload)
				So(hex.EncodeToString(macPL.FRMPayload), ShouldEqual, "8105000a14033e0000000000000e7e09420a8c0000")
			})
		})

		Convey("When decoding with only the NwkSKey", func() {
			res, err := Decode(testDataUp, Options{NwkSKey: &testNwkSKey})
			So(err, ShouldBeNil)

			Convey("Then the MIC is checked but the payload stays encrypted", func() {
				So(res.MIC.Checked, ShouldBeTrue)
				So(res.MIC.Valid, ShouldBeTrue)
				So(res.FRMPayloadDecrypted, ShouldBeFalse)
			})
		})

		Convey("When decoding with a non-zero upper frame counter", func() {
			res, err := Decode(testDataUp, Options{NwkSKey: &testNwkSKey, FCntUpper: 1})
			So(err, ShouldBeNil)

			Convey("Then the widened counter invalidates the MIC", func() {
				macPL := res.PHY.MACPayload.(*lorawan.MACPayload)
				So(macPL.FHDR.FCnt, ShouldEqual, uint32(1)<<16)
				So(res.MIC.Checked, ShouldBeTrue)
				So(res.MIC.Valid, ShouldBeFalse)
			})
		})
	})

	Convey("Given a truncated frame", t, func() {
		_, err := Decode(testDataUp[:8], Options{})
		So(err, ShouldNotBeNil)
	})

	Convey("Given a frame carrying both FOpts and FPort 0", t, func() {
		frame := mustHex("40040302010100000200aabbccdd")

		Convey("Then the decode still produces a full report", func() {
			res, err := Decode(frame, Options{NwkSKey: &testNwkSKey})
			So(err, ShouldBeNil)
			So(res.MIC.Checked, ShouldBeTrue)

			So(res.FOptsCommands, ShouldHaveLength, 1)
			So(res.FOptsCommands[0].CID, ShouldEqual, lorawan.LinkCheckReq)
		})
	})
}

func TestDeriveSessionKeys(t *testing.T) {
	Convey("Given a join-request / join-accept pair", t, func() {
		Convey("Then the 1.0 session keys derive from the pair", func() {
			sk, err := DeriveSessionKeys(testJoinRequest, testJoinAccept, testAppKey, lorawan.LoRaWAN1_0)
			So(err, ShouldBeNil)
			So(sk.NwkSKey.String(), ShouldEqual, "70ff6652c80bcee90b21f2d74bf336b2")
			So(sk.AppSKey.String(), ShouldEqual, "51ebd6666d77121b3782ef59a252e013")
		})

		Convey("When the frames are swapped", func() {
			_, err := DeriveSessionKeys(testJoinAccept, testJoinRequest, testAppKey, lorawan.LoRaWAN1_0)

			Convey("Then an InvalidJoinPairError is returned", func() {
				_, ok := err.(InvalidJoinPairError)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the second frame is a data frame", func() {
			_, err := DeriveSessionKeys(testJoinRequest, testDataUp, testAppKey, lorawan.LoRaWAN1_0)

			Convey("Then an InvalidJoinPairError is returned", func() {
				_, ok := err.(InvalidJoinPairError)
				So(ok, ShouldBeTrue)
			})
		})
	})
}
