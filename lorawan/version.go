package lorawan

import "fmt"

// Version defines the LoRaWAN specification version of a frame. The wire
// format only carries the major version (see Major), the minor version must
// be supplied out of band.
type Version int

// Supported specification versions.
const (
	LoRaWAN1_0 Version = iota
	LoRaWAN1_0_3
	LoRaWAN1_1
)

// VersionFromString parses a version string as used on the command-line.
func VersionFromString(s string) (Version, error) {
	switch s {
	case "1.0":
		return LoRaWAN1_0, nil
	case "1.0.2", "1.0.3":
		return LoRaWAN1_0_3, nil
	case "1.1":
		return LoRaWAN1_1, nil
	}
	return 0, fmt.Errorf("lorawan: unknown version %q (expected 1.0, 1.0.3 or 1.1)", s)
}

// String implements fmt.Stringer.
func (v Version) String() string {
	switch v {
	case LoRaWAN1_0:
		return "1.0"
	case LoRaWAN1_0_3:
		return "1.0.3"
	case LoRaWAN1_1:
		return "1.1"
	}
	return "unknown"
}
