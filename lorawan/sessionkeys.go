package lorawan

import (
	"crypto/aes"
	"fmt"
)

// SessionKeys holds the session keys derived from a join-request /
// join-accept exchange. For 1.0.x activations only NwkSKey and AppSKey
// are set; 1.1 fills all four fields and NwkSKey aliases FNwkSIntKey.
type SessionKeys struct {
	NwkSKey     AES128Key `json:"nwkSKey"`
	AppSKey     AES128Key `json:"appSKey"`
	SNwkSIntKey AES128Key `json:"sNwkSIntKey,omitempty"`
	NwkSEncKey  AES128Key `json:"nwkSEncKey,omitempty"`
}

// deriveKey performs a single AES-128 block encryption of
// prefix | fields | pad16 under the given root key. Every multi-byte
// field is appended little-endian, so the input fields are given in
// their wire (LSB-first) order.
func deriveKey(rootKey AES128Key, prefix byte, fields ...[]byte) (AES128Key, error) {
	var out AES128Key

	b := make([]byte, 0, 16)
	b = append(b, prefix)
	for _, f := range fields {
		b = append(b, f...)
	}
	if len(b) > 16 {
		return out, fmt.Errorf("lorawan: key derivation input exceeds one block: %d bytes", len(b))
	}
	for len(b) < 16 {
		b = append(b, 0)
	}

	block, err := aes.NewCipher(rootKey[:])
	if err != nil {
		return out, err
	}
	block.Encrypt(out[:], b)
	return out, nil
}

// reverse returns the bytes in reversed order. Nonce and identifier
// fields are held in display (MSB-first) order and go over the wire
// LSB-first.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// DeriveSessionKeys10x derives the 1.0.x NwkSKey and AppSKey from the
// AppKey and the join-accept / join-request nonces.
func DeriveSessionKeys10x(appKey AES128Key, appNonce AppNonce, netID NetID, devNonce DevNonce) (SessionKeys, error) {
	var sk SessionKeys
	var err error

	sk.NwkSKey, err = deriveKey(appKey, 0x01, reverse(appNonce[:]), reverse(netID[:]), reverse(devNonce[:]))
	if err != nil {
		return sk, err
	}
	sk.AppSKey, err = deriveKey(appKey, 0x02, reverse(appNonce[:]), reverse(netID[:]), reverse(devNonce[:]))
	if err != nil {
		return sk, err
	}
	return sk, nil
}

// DeriveSessionKeys11 derives the 1.1 session keys. The network session
// keys (FNwkSIntKey, SNwkSIntKey, NwkSEncKey) derive from the NwkKey,
// the AppSKey from the AppKey. NwkSKey is set to FNwkSIntKey so 1.0
// oriented callers keep working.
func DeriveSessionKeys11(nwkKey, appKey AES128Key, joinNonce AppNonce, joinEUI EUI64, devNonce DevNonce) (SessionKeys, error) {
	var sk SessionKeys
	var err error

	jn := reverse(joinNonce[:])
	je := reverse(joinEUI[:])
	dn := reverse(devNonce[:])

	sk.NwkSKey, err = deriveKey(nwkKey, 0x01, jn, je, dn) // FNwkSIntKey
	if err != nil {
		return sk, err
	}
	sk.AppSKey, err = deriveKey(appKey, 0x02, jn, je, dn)
	if err != nil {
		return sk, err
	}
	sk.SNwkSIntKey, err = deriveKey(nwkKey, 0x03, jn, je, dn)
	if err != nil {
		return sk, err
	}
	sk.NwkSEncKey, err = deriveKey(nwkKey, 0x04, jn, je, dn)
	if err != nil {
		return sk, err
	}
	return sk, nil
}
