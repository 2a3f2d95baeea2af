// Package lorawan provides structures and tooling to read and write
// LoRaWAN 1.0 and 1.1 PHY payloads: frame (un)marshaling, MIC calculation
// and validation, join-accept and FRMPayload encryption, session-key
// derivation and MAC command decoding.
//
// All multi-byte fields are little endian on the wire; the exported types
// hold them in display (most significant byte first) order.
package lorawan
