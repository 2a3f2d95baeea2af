package lorawan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetIDWireOrder(t *testing.T) {
	assert := require.New(t)

	n := NetID{0x00, 0x00, 0x15}
	assert.EqualValues(0x15, n.NwkID())
	assert.Equal("000015", n.String())

	b, err := n.MarshalBinary()
	assert.NoError(err)
	assert.Equal([]byte{0x15, 0x00, 0x00}, b)

	var back NetID
	assert.NoError(back.UnmarshalBinary(b))
	assert.Equal(n, back)

	assert.Error(back.UnmarshalBinary([]byte{0x15, 0x00}))
}

func TestNetIDText(t *testing.T) {
	assert := require.New(t)

	var n NetID
	assert.NoError(n.UnmarshalText([]byte("00006f")))
	assert.Equal(NetID{0x00, 0x00, 0x6f}, n)
	assert.EqualValues(0x6f, n.NwkID())

	txt, err := n.MarshalText()
	assert.NoError(err)
	assert.Equal("00006f", string(txt))

	assert.Error(n.UnmarshalText([]byte("00")))
	assert.Error(n.UnmarshalText([]byte("zz")))
}
