package protocol

// Sentinel is the payload that ends a conversation for whichever side
// sends or receives it.
const Sentinel = "Fin"

// Message is the opaque payload carried by one frame.
type Message []byte

// String returns the payload as text.
func (m Message) String() string {
	return string(m)
}

// IsSentinel reports whether the payload is exactly Sentinel.
func (m Message) IsSentinel() bool {
	return IsSentinel(m)
}

// IsSentinel reports whether b is exactly Sentinel. The comparison is
// case-sensitive and ignores no whitespace.
func IsSentinel(b []byte) bool {
	return string(b) == Sentinel
}
