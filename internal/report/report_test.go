package report

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tanupoo/lorawan-parser/internal/decoder"
	"github.com/tanupoo/lorawan-parser/lorawan"
)

func mustDecode(t *testing.T, frame string, opts decoder.Options) *decoder.Result {
	b, err := hex.DecodeString(frame)
	if err != nil {
		t.Fatal(err)
	}
	res, err := decoder.Decode(b, opts)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func mustKey(t *testing.T, s string) *lorawan.AES128Key {
	var k lorawan.AES128Key
	if err := k.UnmarshalText([]byte(s)); err != nil {
		t.Fatal(err)
	}
	return &k
}

func TestRenderJoinRequest(t *testing.T) {
	Convey("Given a decoded join-request", t, func() {
		res := mustDecode(t, "00050403020100efbe050403020100efbe87bcc54c5b5f",
			decoder.Options{AppKey: mustKey(t, "beef000102030405060708090a0b0c0d")})

		var buf bytes.Buffer
		So(Render(&buf, res), ShouldBeNil)
		out := buf.String()

		Convey("Then the dump holds the display-order fields", func() {
			So(out, ShouldContainSubstring, "MType: JoinRequest (uplink)")
			So(out, ShouldContainSubstring, "AppEUI: beef000102030405")
			So(out, ShouldContainSubstring, "DevNonce: bc87")
			So(out, ShouldContainSubstring, "MIC (in frame): 5f5b4cc5")
			So(out, ShouldContainSubstring, "=> valid")
		})

		Convey("Then the 1.1 dump names the JoinEUI", func() {
			res.Version = lorawan.LoRaWAN1_1
			buf.Reset()
			So(Render(&buf, res), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "JoinEUI: beef000102030405")
		})
	})
}

func TestRenderJoinAccept(t *testing.T) {
	Convey("Given a decrypted join-accept", t, func() {
		res := mustDecode(t, "20b46c0022dae91f38e172ac0312d4bc5b",
			decoder.Options{AppKey: mustKey(t, "beef000102030405060708090a0b0c0d")})

		var buf bytes.Buffer
		So(Render(&buf, res), ShouldBeNil)
		out := buf.String()

		So(out, ShouldContainSubstring, "AppNonce: 4c5247")
		So(out, ShouldContainSubstring, "NetID: 000015")
		So(out, ShouldContainSubstring, "DevAddr: 2bbe0934")
		So(out, ShouldContainSubstring, "RxDelay: 1 sec")
		So(out, ShouldContainSubstring, "MIC (derived): 223195d7 => valid")
	})

	Convey("Given an encrypted join-accept", t, func() {
		res := mustDecode(t, "20b46c0022dae91f38e172ac0312d4bc5b", decoder.Options{})

		var buf bytes.Buffer
		So(Render(&buf, res), ShouldBeNil)
		out := buf.String()

		So(out, ShouldContainSubstring, "encrypted, no appkey")
		So(out, ShouldContainSubstring, "not checked, key missing")
	})
}

func TestRenderData(t *testing.T) {
	Convey("Given a decoded data-up frame", t, func() {
		res := mustDecode(t, "403409be2b80000002c7fb8963476d5bf4090e6b867a40b597047241eb80aef79df6",
			decoder.Options{
				NwkSKey: mustKey(t, "70ff6652c80bcee90b21f2d74bf336b2"),
				AppSKey: mustKey(t, "51ebd6666d77121b3782ef59a252e013"),
			})

		var buf bytes.Buffer
		So(Render(&buf, res), ShouldBeNil)
		out := buf.String()

		Convey("Then the dump holds the frame fields", func() {
			So(out, ShouldContainSubstring, "MType: UnconfirmedDataUp (uplink)")
			So(out, ShouldContainSubstring, "DevAddr: 2bbe0934")
			So(out, ShouldContainSubstring, "FCnt: 0 (lsb 0)")
			So(out, ShouldContainSubstring, "FPort: 2")
			So(out, ShouldContainSubstring, "decrypted, 21 bytes")
			So(out, ShouldContainSubstring, "8105000a14033e0000000000000e7e09420a8c0000")
			So(out, ShouldContainSubstring, "MIC (derived): f69df7ae => valid")
		})

		Convey("Then the 1.0 uplink labels bit 4 as RFU", func() {
			So(out, ShouldContainSubstring, "RFU=0")
		})

		Convey("Then a 1.0.3 uplink labels bit 4 as ClassB", func() {
			res.Version = lorawan.LoRaWAN1_0_3
			buf.Reset()
			So(Render(&buf, res), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "ClassB=0")
		})
	})
}

func TestRenderJSON(t *testing.T) {
	Convey("Given a decoded frame", t, func() {
		res := mustDecode(t, "00050403020100efbe050403020100efbe87bcc54c5b5f",
			decoder.Options{AppKey: mustKey(t, "beef000102030405060708090a0b0c0d")})

		var buf bytes.Buffer
		So(RenderJSON(&buf, res), ShouldBeNil)

		Convey("Then the output is valid JSON with display-order fields", func() {
			var m map[string]interface{}
			So(json.Unmarshal(buf.Bytes(), &m), ShouldBeNil)

			mic, ok := m["mic"].(map[string]interface{})
			So(ok, ShouldBeTrue)
			So(mic["valid"], ShouldEqual, true)
		})
	})
}
