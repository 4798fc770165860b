package go_csi

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// Keyed-hash (HMAC) suite family: HMAC over SHA-1/256/384/512.
// Sign produces the digest; Verify recomputes it over the fed data and
// compares in constant time against the caller-supplied digest.

// hshaContext is the streaming state of an HMAC sign or verify.
type hshaContext struct {
	suite SuiteID
	svc   ServiceID
	mac   hash.Hash
}

func (c *hshaContext) Suite() SuiteID     { return c.suite }
func (c *hshaContext) Service() ServiceID { return c.svc }

func hshaHashNew(suite SuiteID) (func() hash.Hash, error) {
	switch suite {
	case HMAC_SHA1:
		return sha1.New, nil
	case HMAC_SHA256:
		return sha256.New, nil
	case HMAC_SHA384:
		return sha512.New384, nil
	case HMAC_SHA512:
		return sha512.New, nil
	}
	return nil, fmt.Errorf("%w: %d is not a keyed-hash suite", ErrUnknownSuite, suite)
}

func hshaDigestLen(suite SuiteID) (int, error) {
	switch suite {
	case HMAC_SHA1:
		return SHA1_DIGEST_LEN, nil
	case HMAC_SHA256:
		return SHA256_DIGEST_LEN, nil
	case HMAC_SHA384:
		return SHA384_DIGEST_LEN, nil
	case HMAC_SHA512:
		return SHA512_DIGEST_LEN, nil
	}
	return 0, fmt.Errorf("%w: %d is not a keyed-hash suite", ErrUnknownSuite, suite)
}

func hshaCtxInit(suite SuiteID, key []byte, svc ServiceID) (*hshaContext, error) {
	if svc != SVC_SIGN && svc != SVC_VERIFY {
		return nil, fmt.Errorf("%w: keyed-hash suites sign and verify only", ErrSuiteService)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: missing HMAC key", ErrEmptyValue)
	}
	newHash, err := hshaHashNew(suite)
	if err != nil {
		return nil, err
	}
	return &hshaContext{suite: suite, svc: svc, mac: hmac.New(newHash, key)}, nil
}

func (c *hshaContext) update(data []byte) error {
	if c.mac == nil {
		return fmt.Errorf("%w: context already finished", ErrConfig)
	}
	c.mac.Write(data)
	return nil
}

// finish completes the HMAC. For SVC_SIGN it returns the digest; for
// SVC_VERIFY it compares the recomputed digest against sig and returns
// nil output with a nil error on match, ErrVerificationFailed on
// mismatch. A sig of the wrong length never reaches the comparison.
func (c *hshaContext) finish(sig []byte) ([]byte, error) {
	if c.mac == nil {
		return nil, fmt.Errorf("%w: context already finished", ErrConfig)
	}
	digest := c.mac.Sum(nil)

	if c.svc == SVC_SIGN {
		return digest, nil
	}

	want, err := hshaDigestLen(c.suite)
	if err != nil {
		return nil, err
	}
	if len(sig) != want {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrBadDigestLength, want, len(sig))
	}
	if !hmac.Equal(digest, sig) {
		return nil, fmt.Errorf("%w: HMAC mismatch", ErrVerificationFailed)
	}
	return nil, nil
}

func (c *hshaContext) free() {
	c.mac = nil
}

// hshaSignFull is the one-shot form: a single bounded input, no
// persistent context.
func hshaSignFull(suite SuiteID, svc ServiceID, input, key, sig []byte) ([]byte, error) {
	ctx, err := hshaCtxInit(suite, key, svc)
	if err != nil {
		return nil, err
	}
	if err := ctx.update(input); err != nil {
		return nil, err
	}
	return ctx.finish(sig)
}

// hshaParmLen returns the length of generated parameter material for the
// keyed-hash suites. Only bulk keys are generated; the key length equals
// the digest length of the underlying hash.
func hshaParmLen(suite SuiteID, parm ParmID) (int, error) {
	if parm != PARM_BEK {
		return 0, fmt.Errorf("%w: keyed-hash suites generate bulk keys only", ErrConfig)
	}
	switch suite {
	case HMAC_SHA256:
		return SHA256_DIGEST_LEN, nil
	case HMAC_SHA384:
		return SHA384_DIGEST_LEN, nil
	case HMAC_SHA512:
		return SHA512_DIGEST_LEN, nil
	}
	return 0, fmt.Errorf("%w: no generated key size for suite %d", ErrConfig, suite)
}
