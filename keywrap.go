package go_csi

import (
	"crypto/aes"
	"fmt"

	aeskw "github.com/NickBall/go-aes-key-wrap"
)

// AES key wrap (RFC 3394 / NIST SP 800-38F KW), used to protect bulk
// encryption keys carried in security-block parameters under a
// long-term key-encryption key. The wrapped form is len(key)+8 bytes:
// the input blocks plus the 8-byte integrity register.

// KeyWrap wraps key under kek. kek must be a valid AES key (16, 24 or
// 32 bytes); key must be a multiple of 8 bytes, at least 16.
func KeyWrap(kek, key []byte) ([]byte, error) {
	if len(key) < 16 || len(key)%8 != 0 {
		return nil, fmt.Errorf("%w: wrap input must be a multiple of 8 bytes, minimum 16", ErrConfig)
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("%w: key-encryption key: %v", ErrBadKeyLength, err)
	}
	out, err := aeskw.Wrap(block, key)
	if err != nil {
		return nil, fmt.Errorf("%w: key wrap: %v", ErrSystem, err)
	}
	return out, nil
}

// KeyUnwrap reverses KeyWrap. An integrity register mismatch means the
// wrapped blob or the kek is wrong and is reported as a verification
// failure.
func KeyUnwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped) < 24 || len(wrapped)%8 != 0 {
		return nil, fmt.Errorf("%w: wrapped input must be a multiple of 8 bytes, minimum 24", ErrConfig)
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("%w: key-encryption key: %v", ErrBadKeyLength, err)
	}
	out, err := aeskw.Unwrap(block, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: key unwrap integrity check", ErrVerificationFailed)
	}
	return out, nil
}
