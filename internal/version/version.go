// ABOUTME: Version and product identification
// ABOUTME: Reported in control handshakes, mDNS TXT records and -version output
package version

const (
	Version      = "0.1.0"
	Product      = "tonesynth"
	Manufacturer = "Resonate"
)

// String returns the product and version, e.g. "tonesynth 0.1.0"
func String() string {
	return Product + " " + Version
}
