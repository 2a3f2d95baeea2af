package lorawan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFCtrlDirectionBits(t *testing.T) {
	assert := require.New(t)

	// bit 4 is ClassB on uplinks and FPending on downlinks
	var up FCtrl
	assert.NoError(up.UnmarshalBinary(true, []byte{0x10}))
	assert.True(up.ClassB)
	assert.False(up.FPending)

	var down FCtrl
	assert.NoError(down.UnmarshalBinary(false, []byte{0x10}))
	assert.True(down.FPending)
	assert.False(down.ClassB)
}

func TestFCtrlMarshal(t *testing.T) {
	assert := require.New(t)

	tests := []struct {
		name  string
		fCtrl FCtrl
		bytes []byte
	}{
		{"adr", FCtrl{ADR: true}, []byte{0x80}},
		{"adr ack req", FCtrl{ADRACKReq: true}, []byte{0x40}},
		{"ack", FCtrl{ACK: true}, []byte{0x20}},
		{"class b", FCtrl{ClassB: true}, []byte{0x10}},
		{"f pending", FCtrl{FPending: true}, []byte{0x10}},
		{"fopts len", FCtrl{fOptsLen: 5}, []byte{0x05}},
	}

	for _, tt := range tests {
		b, err := tt.fCtrl.MarshalBinary()
		assert.NoError(err, tt.name)
		assert.Equal(tt.bytes, b, tt.name)
	}

	_, err := FCtrl{fOptsLen: 16}.MarshalBinary()
	assert.Error(err)
}

func TestDevAddrNwkID(t *testing.T) {
	assert := require.New(t)

	addr := DevAddr{0x2b, 0xbe, 0x09, 0x34}
	assert.EqualValues(0x15, addr.NwkID())
	assert.Equal("2bbe0934", addr.String())

	b, err := addr.MarshalBinary()
	assert.NoError(err)
	assert.Equal([]byte{0x34, 0x09, 0xbe, 0x2b}, b)

	var back DevAddr
	assert.NoError(back.UnmarshalBinary(b))
	assert.Equal(addr, back)
}

func TestFHDRLengthMismatch(t *testing.T) {
	assert := require.New(t)

	// FOptsLen 2 but only one option byte present
	var h FHDR
	err := h.UnmarshalBinary(true, []byte{1, 2, 3, 4, 0x02, 0x00, 0x00, 0xaa})
	assert.Error(err)
}
