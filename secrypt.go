package go_csi

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"hash"
	"os"
	"strings"
)

// Buffer crypt-and-hash utility: a standalone encrypt+authenticate /
// decrypt+verify operation over a whole in-memory buffer, independent of
// the suite dispatcher. Used by messaging subsystems that carry opaque
// encrypted payloads rather than security blocks.
//
// Encrypted layout: IV (one cipher block), ciphertext (same length as
// the plaintext), HMAC over the ciphertext (one digest). The cipher key
// and the HMAC key are both derived by stretching (IV, passphrase)
// through an iterated hash; the IV itself is derived from a DRBG seeded
// by device entropy plus the caller's personalization string.

// Buffer utility defaults.
const (
	DefaultBufferCipher = "AES-256-GCM"
	DefaultBufferDigest = "SHA256"

	// DefaultStretchCount is the key-stretching iteration count. It is
	// part of the wire format: both sides must use the same count, and
	// changing the default breaks already-encrypted buffers.
	DefaultStretchCount = 8192
)

// maxBufferKeyLen bounds the passphrase; longer keys are right-truncated.
const maxBufferKeyLen = 512

// bufferIVSize is one cipher block. All supported ciphers are AES based.
const bufferIVSize = aes.BlockSize

// BufferCryptConfig selects the algorithms of the buffer utility.
// The zero value selects the defaults.
type BufferCryptConfig struct {
	// Cipher names the encryption algorithm, e.g. "AES-256-GCM",
	// "AES-128-CTR", "AES-256-CFB", "AES-192-OFB". All supported modes
	// produce ciphertext of the same length as the plaintext; in GCM
	// mode only the keystream is used and integrity comes from the
	// trailing HMAC.
	Cipher string

	// Digest names the hash used for IV derivation, key stretching and
	// the trailing HMAC: "SHA1", "SHA256", "SHA384" or "SHA512".
	Digest string

	// Iterations is the key-stretching count. Zero selects
	// DefaultStretchCount. Both sides of an exchange must agree.
	Iterations int

	// Personalization is mixed into the DRBG that randomizes the IV.
	// Only the encrypt path consumes it.
	Personalization []byte
}

func (c *BufferCryptConfig) cipherName() string {
	if c == nil || c.Cipher == "" {
		return DefaultBufferCipher
	}
	return c.Cipher
}

func (c *BufferCryptConfig) digestName() string {
	if c == nil || c.Digest == "" {
		return DefaultBufferDigest
	}
	return c.Digest
}

func (c *BufferCryptConfig) iterations() int {
	if c == nil || c.Iterations == 0 {
		return DefaultStretchCount
	}
	return c.Iterations
}

func (c *BufferCryptConfig) personalization() []byte {
	if c == nil {
		return nil
	}
	return c.Personalization
}

func bufferDigestNew(name string) (func() hash.Hash, error) {
	switch name {
	case "SHA1":
		return sha1.New, nil
	case "SHA256":
		return sha256.New, nil
	case "SHA384":
		return sha512.New384, nil
	case "SHA512":
		return sha512.New, nil
	}
	return nil, fmt.Errorf("%w: unsupported digest %q", ErrConfig, name)
}

// bufferCipherKeyLen parses an "AES-<bits>-<mode>" name.
func bufferCipherKeyLen(name string) (int, string, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 3 || parts[0] != "AES" {
		return 0, "", fmt.Errorf("%w: unsupported cipher %q", ErrConfig, name)
	}
	var keyLen int
	switch parts[1] {
	case "128":
		keyLen = 16
	case "192":
		keyLen = 24
	case "256":
		keyLen = 32
	default:
		return 0, "", fmt.Errorf("%w: unsupported cipher %q", ErrConfig, name)
	}
	switch parts[2] {
	case "GCM", "CTR", "CFB", "OFB":
		return keyLen, parts[2], nil
	}
	return 0, "", fmt.Errorf("%w: unsupported cipher %q", ErrConfig, name)
}

// bufferApplyCipher runs the named mode over data with a one-block IV,
// producing output of identical length. decrypting only matters for CFB;
// the other modes XOR a keystream and are their own inverse. GCM is used
// keystream-only: Seal supplies the counter stream and the tag is
// dropped, since integrity is carried by the trailing HMAC.
func bufferApplyCipher(mode string, key, iv, data []byte, decrypting bool) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSystem, err)
	}

	out := make([]byte, len(data))
	switch mode {
	case "GCM":
		aead, err := cipher.NewGCMWithNonceSize(block, bufferIVSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSystem, err)
		}
		sealed := aead.Seal(nil, iv, data, nil)
		copy(out, sealed[:len(data)])
	case "CTR":
		cipher.NewCTR(block, iv).XORKeyStream(out, data)
	case "OFB":
		cipher.NewOFB(block, iv).XORKeyStream(out, data)
	case "CFB":
		if decrypting {
			cipher.NewCFBDecrypter(block, iv).XORKeyStream(out, data)
		} else {
			cipher.NewCFBEncrypter(block, iv).XORKeyStream(out, data)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported cipher mode %q", ErrConfig, mode)
	}
	return out, nil
}

// loadBufferKey resolves the key argument: a readable file path yields
// the file's bytes, anything else is taken as a literal passphrase.
// Keys longer than maxBufferKeyLen are right-truncated.
func loadBufferKey(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: missing key", ErrEmptyValue)
	}
	raw, err := os.ReadFile(key)
	if err != nil {
		raw = []byte(key)
	}
	if len(raw) > maxBufferKeyLen {
		raw = raw[:maxBufferKeyLen]
	}
	return raw, nil
}

// stretchKey iterates digest = MD(digest || key) count times, starting
// from the IV zero-padded to the digest size. The result keys both the
// cipher (truncated or zero-padded to keyLen) and the HMAC (full digest
// size).
func stretchKey(newHash func() hash.Hash, iv, key []byte, count int) []byte {
	mdSize := newHash().Size()
	digest := make([]byte, mdSize)
	copy(digest, iv)

	for i := 0; i < count; i++ {
		h := newHash()
		h.Write(digest)
		h.Write(key)
		digest = h.Sum(digest[:0])
	}
	return digest
}

func cipherKeyFromDigest(digest []byte, keyLen int) []byte {
	ckey := make([]byte, keyLen)
	copy(ckey, digest)
	return ckey
}

// EncryptBuffer encrypts and authenticates input under the key (a file
// path or literal passphrase), returning IV || ciphertext || HMAC.
func EncryptBuffer(input []byte, key string, cfg *BufferCryptConfig) ([]byte, error) {
	keyBytes, err := loadBufferKey(key)
	if err != nil {
		return nil, err
	}
	newHash, err := bufferDigestNew(cfg.digestName())
	if err != nil {
		return nil, err
	}
	keyLen, mode, err := bufferCipherKeyLen(cfg.cipherName())
	if err != nil {
		return nil, err
	}
	mdSize := newHash().Size()

	// Derive the IV from the input length and fresh DRBG output so that
	// equal plaintexts never share an IV.
	gen, err := newDeviceGenerator(string(cfg.personalization()))
	if err != nil {
		return nil, err
	}
	randomizer, err := gen.Bytes(64)
	if err != nil {
		return nil, err
	}
	var lenPrefix [8]byte
	binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(input)))
	h := newHash()
	h.Write(lenPrefix[:])
	h.Write(randomizer)
	iv := h.Sum(nil)[:bufferIVSize]

	digest := stretchKey(newHash, iv, keyBytes, cfg.iterations())

	ct, err := bufferApplyCipher(mode, cipherKeyFromDigest(digest, keyLen), iv, input, false)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(newHash, digest[:mdSize])
	mac.Write(ct)

	out := make([]byte, 0, bufferIVSize+len(ct)+mdSize)
	out = append(out, iv...)
	out = append(out, ct...)
	out = mac.Sum(out)
	return out, nil
}

// DecryptBuffer reverses EncryptBuffer. The trailing HMAC is recomputed
// over the ciphertext and compared in constant time before any plaintext
// is returned; a mismatch yields ErrVerificationFailed and no output.
// Input too small to hold an IV and an HMAC is rejected before any
// cryptographic work.
func DecryptBuffer(input []byte, key string, cfg *BufferCryptConfig) ([]byte, error) {
	keyBytes, err := loadBufferKey(key)
	if err != nil {
		return nil, err
	}
	newHash, err := bufferDigestNew(cfg.digestName())
	if err != nil {
		return nil, err
	}
	keyLen, mode, err := bufferCipherKeyLen(cfg.cipherName())
	if err != nil {
		return nil, err
	}
	mdSize := newHash().Size()

	if len(input) < bufferIVSize+mdSize {
		return nil, fmt.Errorf("%w: %d bytes cannot hold an IV and an HMAC", ErrShortBuffer, len(input))
	}

	iv := input[:bufferIVSize]
	ct := input[bufferIVSize : len(input)-mdSize]
	tag := input[len(input)-mdSize:]

	digest := stretchKey(newHash, iv, keyBytes, cfg.iterations())

	mac := hmac.New(newHash, digest[:mdSize])
	mac.Write(ct)
	if subtle.ConstantTimeCompare(mac.Sum(nil), tag) != 1 {
		return nil, fmt.Errorf("%w: buffer HMAC mismatch", ErrVerificationFailed)
	}

	return bufferApplyCipher(mode, cipherKeyFromDigest(digest, keyLen), iv, ct, true)
}
