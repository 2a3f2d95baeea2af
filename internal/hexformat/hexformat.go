// Package hexformat parses the loosely formatted byte-string notations
// accepted on the command-line: hex with separators and 0x prefixes,
// dotted per-byte hex and base64.
package hexformat

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// StringType defines the input notation.
type StringType string

// Supported input notations.
const (
	HexStr StringType = "hexstr"
	Base64 StringType = "base64"
)

// StringTypeFromString parses the notation name as used on the
// command-line.
func StringTypeFromString(s string) (StringType, error) {
	switch StringType(s) {
	case HexStr:
		return HexStr, nil
	case Base64:
		return Base64, nil
	}
	return "", fmt.Errorf("unknown string type %q (expected hexstr or base64)", s)
}

// Decode parses s according to the given notation.
func Decode(t StringType, s string) ([]byte, error) {
	switch t {
	case Base64:
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.Wrap(err, "decode base64")
		}
		return b, nil
	case HexStr:
		return ParseHex(s)
	}
	return nil, fmt.Errorf("unknown string type %q", t)
}

// ParseHex parses a hex string in any of the accepted spellings. Spaces,
// tabs, newlines and commas are ignored and each word may start with a 0x
// prefix, so "0xDE 0xAD", "de,ad" and "dead" are all the same two bytes.
// A dotted string is read byte-wise with each group zero-padded, so
// "1.2.30" means 01 02 30.
func ParseHex(s string) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range strings.FieldsFunc(s, isSeparator) {
		// a 0x anywhere else is left in place so decoding fails loudly
		if len(tok) > 2 && (strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X")) {
			tok = tok[2:]
		}
		sb.WriteString(tok)
	}
	cleaned := sb.String()

	if strings.Contains(cleaned, ".") {
		var sb strings.Builder
		for _, g := range strings.Split(cleaned, ".") {
			if g == "" {
				continue
			}
			if len(g)%2 != 0 {
				sb.WriteByte('0')
			}
			sb.WriteString(g)
		}
		cleaned = sb.String()
	}

	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits in %q", s)
	}
	b, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, errors.Wrap(err, "decode hex")
	}
	return b, nil
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', ',':
		return true
	}
	return false
}
