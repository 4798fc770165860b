// Package go_csi implements the cryptographic suite interface (CSI) of a
// Bundle Protocol Security implementation: a single dispatch surface
// through which security blocks apply integrity and confidentiality
// services independent of the configured algorithm family.
//
// Three families are provided: keyed hash (HMAC-SHA1/256/384/512),
// elliptic-curve signatures (ECDSA over SHA-256/384) and authenticated
// encryption (AES-GCM, 128/256-bit). The package also implements the TLV
// encoding that carries cipher parameters inside security blocks, NIST
// AES key wrap for protecting per-bundle keys, and a standalone buffer
// encrypt-and-authenticate utility.
//
// All operations are synchronous and CPU-bound. Contexts and the CSI
// dispatcher itself are not safe for concurrent use; multi-threaded
// hosts serialize access or hold one CSI per worker.
package go_csi

import (
	"fmt"
	"unsafe"
)

// CSI is the suite dispatcher. It routes every operation to the family
// selected by the suite identifier and owns the random generators the
// families draw from: one per digest family plus one for the AES-GCM
// family.
type CSI struct {
	gens [numGenFamilies]*Generator
}

// generator families, one DRBG each.
type genFamily int

const (
	genSHA1 genFamily = iota
	genSHA256
	genSHA384
	genSHA512
	genGCM
	numGenFamilies
)

var genPersonalization = [numGenFamilies]string{
	"csi-sha1",
	"csi-sha256",
	"csi-sha384",
	"csi-sha512",
	"csi-gcm",
}

// NewCSI constructs a dispatcher and seeds its generators from the
// operating system CSPRNG.
func NewCSI() (*CSI, error) {
	c := &CSI{}
	for f := genFamily(0); f < numGenFamilies; f++ {
		g, err := NewGenerator(genPersonalization[f])
		if err != nil {
			return nil, fmt.Errorf("csi: seeding %s generator: %w", genPersonalization[f], err)
		}
		c.gens[f] = g
	}
	return c, nil
}

// Close releases the dispatcher's generators. The CSI is unusable
// afterwards.
func (c *CSI) Close() {
	for i := range c.gens {
		c.gens[i] = nil
	}
}

func suiteFamily(suite SuiteID) (genFamily, error) {
	switch suite {
	case HMAC_SHA1:
		return genSHA1, nil
	case HMAC_SHA256, ECDSA_SHA256:
		return genSHA256, nil
	case HMAC_SHA384, ECDSA_SHA384:
		return genSHA384, nil
	case HMAC_SHA512:
		return genSHA512, nil
	case SHA256_AES128, SHA384_AES256, AES128_GCM, AES256_GCM:
		return genGCM, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownSuite, suite)
}

func (c *CSI) generator(suite SuiteID) (*Generator, error) {
	f, err := suiteFamily(suite)
	if err != nil {
		return nil, err
	}
	if c.gens[f] == nil {
		return nil, fmt.Errorf("%w: dispatcher closed", ErrConfig)
	}
	return c.gens[f], nil
}

func isHSHA(suite SuiteID) bool {
	switch suite {
	case HMAC_SHA1, HMAC_SHA256, HMAC_SHA384, HMAC_SHA512:
		return true
	}
	return false
}

func isECDSA(suite SuiteID) bool {
	return suite == ECDSA_SHA256 || suite == ECDSA_SHA384
}

func isGCM(suite SuiteID) bool {
	switch suite {
	case SHA256_AES128, SHA384_AES256, AES128_GCM, AES256_GCM:
		return true
	}
	return false
}

// checkContext verifies that ctx was created by the family suite
// dispatches to. A mismatched context is rejected before any state is
// touched.
func checkContext(suite SuiteID, ctx Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: nil context", ErrConfig)
	}
	switch ctx.(type) {
	case *hshaContext:
		if isHSHA(suite) {
			return nil
		}
	case *ecdsaContext:
		if isECDSA(suite) {
			return nil
		}
	case *gcmContext:
		if isGCM(suite) {
			return nil
		}
	default:
		return fmt.Errorf("%w: foreign context type", ErrContextMismatch)
	}
	return fmt.Errorf("%w: context for suite %d passed to suite %d", ErrContextMismatch, ctx.Suite(), suite)
}

// ContextLength returns the nominal in-memory size of a context for the
// suite, for callers budgeting per-operation working storage.
func (c *CSI) ContextLength(suite SuiteID) (int, error) {
	switch {
	case isHSHA(suite):
		return int(unsafe.Sizeof(hshaContext{})), nil
	case isECDSA(suite):
		return int(unsafe.Sizeof(ecdsaContext{})), nil
	case isGCM(suite):
		return int(unsafe.Sizeof(gcmContext{})), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownSuite, suite)
}

// Blocksize returns the largest chunk the suite accepts in one streaming
// update call.
func (c *CSI) Blocksize(suite SuiteID) (int, error) {
	if _, err := suiteFamily(suite); err != nil {
		return 0, err
	}
	return MAX_BLOCKSIZE, nil
}

// ContextInit creates a context for a streaming operation. The key
// parameter is raw key bytes for the keyed-hash and AES-GCM families and
// TLV-encoded key-info for the ECDSA family. The service is fixed for
// the context's lifetime.
func (c *CSI) ContextInit(suite SuiteID, key []byte, svc ServiceID) (Context, error) {
	switch {
	case isHSHA(suite):
		return hshaCtxInit(suite, key, svc)
	case isECDSA(suite):
		g, err := c.generator(suite)
		if err != nil {
			return nil, err
		}
		return ecdsaCtxInit(suite, key, svc, g)
	case isGCM(suite):
		return gcmCtxInit(suite, key, svc)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownSuite, suite)
}

// ContextFree releases a context, zeroing key material. Freeing a
// context through the wrong suite is rejected.
func (c *CSI) ContextFree(suite SuiteID, ctx Context) error {
	if err := checkContext(suite, ctx); err != nil {
		return err
	}
	switch t := ctx.(type) {
	case *hshaContext:
		t.free()
	case *ecdsaContext:
		t.free()
	case *gcmContext:
		t.free()
	}
	return nil
}

// SignStart validates a context for a streaming integrity operation.
// The context created by ContextInit is already primed; SignStart exists
// so callers can fail fast on a mismatched suite or service.
func (c *CSI) SignStart(suite SuiteID, ctx Context) error {
	if err := checkContext(suite, ctx); err != nil {
		return err
	}
	if isGCM(suite) {
		return fmt.Errorf("%w: AES-GCM suites do not sign", ErrSuiteService)
	}
	if svc := ctx.Service(); svc != SVC_SIGN && svc != SVC_VERIFY {
		return fmt.Errorf("%w: context service %d is not an integrity service", ErrSuiteService, svc)
	}
	return nil
}

// SignUpdate feeds one chunk into a streaming integrity operation.
// Update may be called any number of times between start and finish.
func (c *CSI) SignUpdate(suite SuiteID, ctx Context, data []byte) error {
	if err := checkContext(suite, ctx); err != nil {
		return err
	}
	if len(data) > MAX_BLOCKSIZE {
		return fmt.Errorf("%w: chunk of %d bytes exceeds %d", ErrConfig, len(data), MAX_BLOCKSIZE)
	}
	switch t := ctx.(type) {
	case *hshaContext:
		return t.update(data)
	case *ecdsaContext:
		return t.update(data)
	}
	return fmt.Errorf("%w: AES-GCM suites do not sign", ErrSuiteService)
}

// SignFinish completes a streaming integrity operation. For a SVC_SIGN
// context it returns the digest or signature and sig is ignored; for a
// SVC_VERIFY context it checks sig and returns a nil result, with
// ErrVerificationFailed on mismatch. The context is spent afterwards.
func (c *CSI) SignFinish(suite SuiteID, ctx Context, sig []byte) ([]byte, error) {
	if err := checkContext(suite, ctx); err != nil {
		return nil, err
	}
	switch t := ctx.(type) {
	case *hshaContext:
		return t.finish(sig)
	case *ecdsaContext:
		return t.finish(sig)
	}
	return nil, fmt.Errorf("%w: AES-GCM suites do not sign", ErrSuiteService)
}

// SignFull performs a one-shot integrity operation over a single bounded
// input. Semantics of key and sig match ContextInit and SignFinish.
func (c *CSI) SignFull(suite SuiteID, svc ServiceID, input, key, sig []byte) ([]byte, error) {
	switch {
	case isHSHA(suite):
		return hshaSignFull(suite, svc, input, key, sig)
	case isECDSA(suite):
		g, err := c.generator(suite)
		if err != nil {
			return nil, err
		}
		return ecdsaSignFull(suite, svc, input, key, sig, g)
	case isGCM(suite):
		return nil, fmt.Errorf("%w: AES-GCM suites do not sign", ErrSuiteService)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownSuite, suite)
}

// CryptStart begins a streaming AEAD operation with the IV and AAD
// carried in parms.
func (c *CSI) CryptStart(suite SuiteID, ctx Context, parms CipherParms) error {
	if err := checkContext(suite, ctx); err != nil {
		return err
	}
	g, ok := ctx.(*gcmContext)
	if !ok {
		return fmt.Errorf("%w: only AES-GCM suites encrypt", ErrSuiteService)
	}
	return g.start(parms)
}

// CryptUpdate applies the cipher to one chunk, returning output of equal
// length. Chunks must arrive in the order they appear in the stream.
func (c *CSI) CryptUpdate(suite SuiteID, ctx Context, data []byte) ([]byte, error) {
	if err := checkContext(suite, ctx); err != nil {
		return nil, err
	}
	g, ok := ctx.(*gcmContext)
	if !ok {
		return nil, fmt.Errorf("%w: only AES-GCM suites encrypt", ErrSuiteService)
	}
	return g.update(data)
}

// CryptFinish completes a streaming AEAD operation: computes the auth
// tag into parms.ICV on encrypt, verifies it on decrypt.
func (c *CSI) CryptFinish(suite SuiteID, ctx Context, parms *CipherParms) error {
	if err := checkContext(suite, ctx); err != nil {
		return err
	}
	g, ok := ctx.(*gcmContext)
	if !ok {
		return fmt.Errorf("%w: only AES-GCM suites encrypt", ErrSuiteService)
	}
	return g.finish(parms)
}

// CryptFull performs a one-shot AEAD operation over a single contiguous
// buffer.
func (c *CSI) CryptFull(suite SuiteID, svc ServiceID, parms *CipherParms, key, input []byte) ([]byte, error) {
	if !isGCM(suite) {
		if _, err := suiteFamily(suite); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: only AES-GCM suites encrypt", ErrSuiteService)
	}
	return gcmCryptFull(suite, svc, parms, key, input)
}

// CryptKey wraps (SVC_ENCRYPT) or unwraps (SVC_DECRYPT) a bulk
// encryption key under a long-term key using the suite's AEAD. The wrap
// auth tag is stored in, and recovered from, the key-info field of
// parms.
func (c *CSI) CryptKey(suite SuiteID, svc ServiceID, parms *CipherParms, longtermKey, input []byte) ([]byte, error) {
	if !isGCM(suite) {
		if _, err := suiteFamily(suite); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: only AES-GCM suites wrap keys", ErrSuiteService)
	}
	return gcmCryptKey(suite, svc, parms, longtermKey, input)
}

// ParmLen returns the generated size of the given parameter for the
// suite.
func (c *CSI) ParmLen(suite SuiteID, parm ParmID) (int, error) {
	switch {
	case isHSHA(suite):
		return hshaParmLen(suite, parm)
	case isGCM(suite):
		return gcmParmLen(suite, parm)
	case isECDSA(suite):
		return 0, fmt.Errorf("%w: ECDSA suites take key material, not generated parameters", ErrConfig)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownSuite, suite)
}

// ParmGenerate produces fresh random material for the parameter, sized
// per suite.
func (c *CSI) ParmGenerate(suite SuiteID, parm ParmID) ([]byte, error) {
	length, err := c.ParmLen(suite, parm)
	if err != nil {
		return nil, err
	}
	g, err := c.generator(suite)
	if err != nil {
		return nil, err
	}
	out, err := g.Bytes(length)
	if err != nil {
		return nil, err
	}
	log.Debugf("parm generate: suite %d parm %d -> %d bytes", suite, parm, length)
	return out, nil
}

// Random returns length random bytes drawn from the suite's family
// generator.
func (c *CSI) Random(suite SuiteID, length int) ([]byte, error) {
	g, err := c.generator(suite)
	if err != nil {
		return nil, err
	}
	return g.Bytes(length)
}

// CryptResLen returns the output size of a confidentiality operation on
// inputLen bytes. AES-GCM output always equals its input; the tag
// travels separately in the ICV parameter.
func (c *CSI) CryptResLen(suite SuiteID, inputLen int) (int, error) {
	if !isGCM(suite) {
		if _, err := suiteFamily(suite); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: only AES-GCM suites encrypt", ErrSuiteService)
	}
	return inputLen, nil
}

// SignResLen returns the size a caller must budget for an integrity
// result: the digest length for keyed-hash suites, the maximum DER
// signature encoding for ECDSA suites.
func (c *CSI) SignResLen(suite SuiteID) (int, error) {
	switch {
	case isHSHA(suite):
		return hshaDigestLen(suite)
	case isECDSA(suite):
		return ecdsaMaxSigLen(suite)
	case isGCM(suite):
		return 0, fmt.Errorf("%w: AES-GCM suites do not sign", ErrSuiteService)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownSuite, suite)
}
