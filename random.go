package go_csi

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

// Generator is an explicit deterministic random byte generator: a seeded
// HKDF-SHA256 expansion that reseeds itself from its entropy source when
// the expansion is exhausted. Each generator is personalized so that
// independent consumers never share a byte stream.
//
// A Generator is not safe for concurrent use. The dispatcher holds one
// generator per digest family; multi-threaded hosts must serialize access
// or construct per-worker generators.
type Generator struct {
	personalization string
	entropy         func(n int) ([]byte, error)
	expand          io.Reader
}

const generatorSeedLen = 48

// NewGenerator creates a generator seeded from the operating system CSPRNG.
func NewGenerator(personalization string) (*Generator, error) {
	g := &Generator{
		personalization: personalization,
		entropy:         osEntropy,
	}
	if err := g.reseed(); err != nil {
		return nil, err
	}
	return g, nil
}

// newDeviceGenerator creates a generator seeded from the entropy devices
// in deviceEntropy's priority order. Used by the buffer crypt-and-hash
// utility, which requires hardware entropy when available.
func newDeviceGenerator(personalization string) (*Generator, error) {
	g := &Generator{
		personalization: personalization,
		entropy:         deviceEntropy,
	}
	if err := g.reseed(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) reseed() error {
	seed, err := g.entropy(generatorSeedLen)
	if err != nil {
		return err
	}
	g.expand = hkdf.New(sha256.New, seed, nil, []byte(g.personalization))
	return nil
}

// Read fills p with generator output, reseeding transparently when the
// current expansion runs out. Implements io.Reader so the generator can
// feed signature nonce generation directly.
func (g *Generator) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := io.ReadFull(g.expand, p[total:])
		total += n
		if err != nil {
			if rerr := g.reseed(); rerr != nil {
				return total, rerr
			}
		}
	}
	return total, nil
}

// Bytes returns n fresh random bytes.
func (g *Generator) Bytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: random length %d", ErrConfig, n)
	}
	out := make([]byte, n)
	if _, err := g.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}

func osEntropy(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSystem, err)
	}
	return buf, nil
}

// entropyDevices is the fixed priority order for device entropy:
// hardware RNG first, then the software pools.
var entropyDevices = []string{"/dev/hwrng", "/dev/urandom", "/dev/random"}

// deviceEntropy reads n bytes from the first usable entropy device.
// Fails only when all devices are unavailable.
func deviceEntropy(n int) ([]byte, error) {
	for _, dev := range entropyDevices {
		f, err := os.Open(dev)
		if err != nil {
			continue
		}
		buf := make([]byte, n)
		_, err = io.ReadFull(f, buf)
		f.Close()
		if err != nil {
			log.Debugf("entropy device %s: %v", dev, err)
			continue
		}
		return buf, nil
	}
	return nil, ErrEntropyUnavailable
}
