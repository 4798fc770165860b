package go_csi

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestBufferRoundTrip tests encrypt/decrypt with the default algorithms
func TestBufferRoundTrip(t *testing.T) {
	data := []byte("message body handed to the messaging subsystem")

	enc, err := EncryptBuffer(data, "a shared passphrase", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}

	// IV (one block), equal-length ciphertext, one SHA-256 HMAC.
	wantLen := bufferIVSize + len(data) + SHA256_DIGEST_LEN
	if len(enc) != wantLen {
		t.Errorf("encrypted length = %d, want %d", len(enc), wantLen)
	}
	if bytes.Contains(enc, data) {
		t.Error("plaintext visible in encrypted output")
	}

	dec, err := DecryptBuffer(enc, "a shared passphrase", nil)
	if err != nil {
		t.Fatalf("DecryptBuffer failed: %v", err)
	}
	if !bytes.Equal(dec, data) {
		t.Error("round trip mismatch")
	}
}

// TestBufferCipherDigestMatrix tests the supported cipher and digest combinations
func TestBufferCipherDigestMatrix(t *testing.T) {
	data := bytes.Repeat([]byte("payload "), 20)

	ciphers := []string{"AES-128-CTR", "AES-192-CTR", "AES-256-CTR", "AES-128-CFB", "AES-256-CFB", "AES-256-OFB", "AES-256-GCM"}
	digests := []string{"SHA1", "SHA256", "SHA384", "SHA512"}

	for _, cipherName := range ciphers {
		for _, digestName := range digests {
			cfg := &BufferCryptConfig{Cipher: cipherName, Digest: digestName}
			enc, err := EncryptBuffer(data, "matrix key", cfg)
			if err != nil {
				t.Fatalf("%s/%s: encrypt failed: %v", cipherName, digestName, err)
			}
			dec, err := DecryptBuffer(enc, "matrix key", cfg)
			if err != nil {
				t.Fatalf("%s/%s: decrypt failed: %v", cipherName, digestName, err)
			}
			if !bytes.Equal(dec, data) {
				t.Errorf("%s/%s: round trip mismatch", cipherName, digestName)
			}
		}
	}
}

// TestBufferHMACTamper tests that corrupting the trailing HMAC yields no plaintext
func TestBufferHMACTamper(t *testing.T) {
	data := []byte("contents protected by the trailing mac")

	enc, err := EncryptBuffer(data, "tamper key", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}

	for i := len(enc) - SHA256_DIGEST_LEN; i < len(enc); i++ {
		bad := append([]byte(nil), enc...)
		bad[i] ^= 0x01
		out, err := DecryptBuffer(bad, "tamper key", nil)
		if !errors.Is(err, ErrVerificationFailed) {
			t.Fatalf("decrypt with HMAC byte %d corrupted = %v, want verification failure", i, err)
		}
		if out != nil {
			t.Fatal("decrypt returned plaintext despite HMAC mismatch")
		}
	}
}

// TestBufferCiphertextTamper tests that ciphertext corruption is caught by the HMAC
func TestBufferCiphertextTamper(t *testing.T) {
	data := []byte("ciphertext corruption must not go unnoticed")

	enc, err := EncryptBuffer(data, "tamper key", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}

	bad := append([]byte(nil), enc...)
	bad[bufferIVSize+3] ^= 0x40
	if _, err := DecryptBuffer(bad, "tamper key", nil); !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("decrypt of corrupted ciphertext = %v, want verification failure", err)
	}
}

// TestBufferWrongKey tests that a wrong passphrase fails verification
func TestBufferWrongKey(t *testing.T) {
	enc, err := EncryptBuffer([]byte("data"), "right key", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}
	if _, err := DecryptBuffer(enc, "wrong key", nil); !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("decrypt with wrong key = %v, want verification failure", err)
	}
}

// TestBufferTooShort tests the pre-flight size check
func TestBufferTooShort(t *testing.T) {
	short := make([]byte, bufferIVSize+SHA256_DIGEST_LEN-1)
	if _, err := DecryptBuffer(short, "key", nil); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("decrypt of undersized buffer = %v, want ErrShortBuffer", err)
	}

	// Exactly IV + HMAC holds an empty plaintext and is legal.
	enc, err := EncryptBuffer(nil, "key", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer of empty input failed: %v", err)
	}
	dec, err := DecryptBuffer(enc, "key", nil)
	if err != nil {
		t.Fatalf("DecryptBuffer of empty payload failed: %v", err)
	}
	if len(dec) != 0 {
		t.Errorf("decrypted %d bytes from empty plaintext", len(dec))
	}
}

// TestBufferStretchCount tests that both sides must agree on the iteration count
func TestBufferStretchCount(t *testing.T) {
	data := []byte("iteration count is part of the wire format")

	enc, err := EncryptBuffer(data, "key", &BufferCryptConfig{Iterations: 100})
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}

	dec, err := DecryptBuffer(enc, "key", &BufferCryptConfig{Iterations: 100})
	if err != nil {
		t.Fatalf("DecryptBuffer with matching count failed: %v", err)
	}
	if !bytes.Equal(dec, data) {
		t.Error("round trip mismatch")
	}

	if _, err := DecryptBuffer(enc, "key", &BufferCryptConfig{Iterations: 200}); !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("decrypt with different count = %v, want verification failure", err)
	}
}

// TestBufferKeyFromFile tests the file-path-then-literal key resolution
func TestBufferKeyFromFile(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "secret.key")
	if err := os.WriteFile(keyFile, []byte("raw key bytes from a file"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	data := []byte("encrypted under a file-sourced key")
	enc, err := EncryptBuffer(data, keyFile, nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}

	dec, err := DecryptBuffer(enc, keyFile, nil)
	if err != nil {
		t.Fatalf("DecryptBuffer failed: %v", err)
	}
	if !bytes.Equal(dec, data) {
		t.Error("round trip mismatch with file key")
	}

	// The same string used where no such file exists is a literal key,
	// which cannot verify material encrypted under the file contents.
	if _, err := DecryptBuffer(enc, "no/such/key/file", nil); !errors.Is(err, ErrVerificationFailed) {
		t.Errorf("decrypt with literal fallback key = %v, want verification failure", err)
	}

	// Empty key is rejected outright.
	if _, err := EncryptBuffer(data, "", nil); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("encrypt with empty key = %v, want ErrEmptyValue", err)
	}
}

// TestBufferUnsupportedAlgorithms tests algorithm-name validation
func TestBufferUnsupportedAlgorithms(t *testing.T) {
	if _, err := EncryptBuffer([]byte("x"), "key", &BufferCryptConfig{Cipher: "DES-64-CBC"}); !errors.Is(err, ErrConfig) {
		t.Errorf("unsupported cipher = %v, want a config error", err)
	}
	if _, err := EncryptBuffer([]byte("x"), "key", &BufferCryptConfig{Digest: "MD5"}); !errors.Is(err, ErrConfig) {
		t.Errorf("unsupported digest = %v, want a config error", err)
	}
}

// TestBufferIVUniqueness tests that equal plaintexts never share an IV
func TestBufferIVUniqueness(t *testing.T) {
	data := []byte("identical plaintext encrypted twice")

	a, err := EncryptBuffer(data, "key", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}
	b, err := EncryptBuffer(data, "key", nil)
	if err != nil {
		t.Fatalf("EncryptBuffer failed: %v", err)
	}
	if bytes.Equal(a[:bufferIVSize], b[:bufferIVSize]) {
		t.Error("two encryptions produced the same IV")
	}
}
