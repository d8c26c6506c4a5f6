package mav

const (
	// MagicV1 and MagicV2 mark the start of a frame on the wire.
	MagicV1 = 0xFE
	MagicV2 = 0xFD

	headerSizeV1 = 6
	headerSizeV2 = 10

	minFrameSizeV1 = headerSizeV1 + 2
	minFrameSizeV2 = headerSizeV2 + 2

	checksumSize  = 2
	signatureSize = 13

	// incompatFlagSigned marks a v2 frame that carries a trailing signature
	// block. The engine preserves the block in transit but does not produce
	// or verify it.
	incompatFlagSigned = 0x01

	// MaxIDV1 is the highest message id a v1 frame can carry.
	MaxIDV1 = 0xFF
)

// Frame is a single wire frame extracted from a byte stream. Payload and
// Signature reference freshly allocated storage independent of the input
// buffer.
type Frame struct {
	Magic         uint8
	PayloadLength uint8
	IncompatFlags uint8
	CompatFlags   uint8
	Sequence      uint8
	SystemID      uint8
	ComponentID   uint8
	MessageID     uint32
	Payload       []byte
	Checksum      uint16
	Signature     []byte
	CRCOK         bool
}

// Protocol returns the MAVLink major version of the frame, 1 or 2.
func (f *Frame) Protocol() int {
	if f.Magic == MagicV2 {
		return 2
	}
	return 1
}

// Signed reports whether the frame carries a signature block.
func (f *Frame) Signed() bool {
	return f.Magic == MagicV2 && f.IncompatFlags&incompatFlagSigned != 0
}
