package go_csi

import (
	"bytes"
	"fmt"
)

// Stream provides security-block serialization operations.
// It wraps bytes.Buffer and adds methods for reading/writing the
// TLV primitives carried inside cipher parameter fields.
//
// The length field of every TLV record is an SDNV (Self-Delimiting
// Numeric Value, RFC 6256): big-endian base-128, high bit set on every
// byte except the last.
type Stream struct {
	*bytes.Buffer
}

// NewStream creates a new Stream from a byte slice.
// The Stream wraps a bytes.Buffer initialized with the provided data.
func NewStream(buf []byte) *Stream {
	return &Stream{bytes.NewBuffer(buf)}
}

// sdnvMaxBytes bounds an encoded SDNV to a uint64 payload (ceil(64/7)).
const sdnvMaxBytes = 10

// WriteSdnv writes v as an SDNV to the stream.
func (s *Stream) WriteSdnv(v uint64) error {
	enc := make([]byte, sdnvMaxBytes)
	i := sdnvMaxBytes - 1
	enc[i] = byte(v & 0x7f)
	v >>= 7
	for v != 0 {
		i--
		enc[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	_, err := s.Write(enc[i:])
	return err
}

// ReadSdnv reads an SDNV from the stream.
// Returns an error on end of stream mid-value or on an encoding longer
// than a uint64 can hold.
func (s *Stream) ReadSdnv() (uint64, error) {
	var v uint64
	for i := 0; i < sdnvMaxBytes; i++ {
		b, err := s.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("truncated sdnv: %w", err)
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("sdnv exceeds %d bytes", sdnvMaxBytes)
}

// SdnvLen returns the number of bytes the SDNV encoding of v occupies.
func SdnvLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}
