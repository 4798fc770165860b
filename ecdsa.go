package go_csi

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"math/big"
)

// ECDSA suite family. The digest algorithm binds the curve:
// SHA-256 pairs with P-256, SHA-384 with P-384. Key material arrives as
// TLV-encoded key-info: sub-type ECDSA_KEY_PUBLIC carries the
// uncompressed point Q, sub-type ECDSA_KEY_PRIVATE the scalar d.
// Signatures use the ASN.1 DER encoding.

// ecdsaContext carries a running digest plus the curve keys decoded from
// key-info material.
type ecdsaContext struct {
	suite SuiteID
	svc   ServiceID
	hash  hash.Hash
	pub   *ecdsa.PublicKey
	priv  *ecdsa.PrivateKey
	rng   io.Reader
}

func (c *ecdsaContext) Suite() SuiteID     { return c.suite }
func (c *ecdsaContext) Service() ServiceID { return c.svc }

func ecdsaCurve(suite SuiteID) (elliptic.Curve, error) {
	switch suite {
	case ECDSA_SHA256:
		return elliptic.P256(), nil
	case ECDSA_SHA384:
		return elliptic.P384(), nil
	}
	return nil, fmt.Errorf("%w: %d is not an ECDSA suite", ErrUnknownSuite, suite)
}

func ecdsaHashNew(suite SuiteID) (func() hash.Hash, error) {
	switch suite {
	case ECDSA_SHA256:
		return sha256.New, nil
	case ECDSA_SHA384:
		return sha512.New384, nil
	}
	return nil, fmt.Errorf("%w: %d is not an ECDSA suite", ErrUnknownSuite, suite)
}

func ecdsaMaxSigLen(suite SuiteID) (int, error) {
	switch suite {
	case ECDSA_SHA256:
		return ECDSA_P256_MAX_SIG_LEN, nil
	case ECDSA_SHA384:
		return ECDSA_P384_MAX_SIG_LEN, nil
	}
	return 0, fmt.Errorf("%w: %d is not an ECDSA suite", ErrUnknownSuite, suite)
}

// ecdsaCtxInit decodes key-info and starts the running digest. Supplying
// a point that is not on the suite's curve is a configuration error;
// curve identity is suite-bound, never inferred from the key material.
func ecdsaCtxInit(suite SuiteID, keyInfo []byte, svc ServiceID, rng io.Reader) (*ecdsaContext, error) {
	if svc != SVC_SIGN && svc != SVC_VERIFY {
		return nil, fmt.Errorf("%w: ECDSA suites sign and verify only", ErrSuiteService)
	}
	curve, err := ecdsaCurve(suite)
	if err != nil {
		return nil, err
	}
	newHash, err := ecdsaHashNew(suite)
	if err != nil {
		return nil, err
	}

	ctx := &ecdsaContext{suite: suite, svc: svc, hash: newHash(), rng: rng}

	if q := ExtractTLV(ECDSA_KEY_PUBLIC, keyInfo); q != nil {
		x, y := elliptic.Unmarshal(curve, q)
		if x == nil {
			return nil, fmt.Errorf("%w: public point is not on %s", ErrBadKeyInfo, curve.Params().Name)
		}
		ctx.pub = &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	}

	if d := ExtractTLV(ECDSA_KEY_PRIVATE, keyInfo); d != nil {
		scalar := new(big.Int).SetBytes(d)
		if scalar.Sign() == 0 || scalar.Cmp(curve.Params().N) >= 0 {
			return nil, fmt.Errorf("%w: private scalar out of range for %s", ErrBadKeyInfo, curve.Params().Name)
		}
		priv := &ecdsa.PrivateKey{
			PublicKey: ecdsa.PublicKey{Curve: curve},
			D:         scalar,
		}
		priv.X, priv.Y = curve.ScalarBaseMult(d)
		ctx.priv = priv
		if ctx.pub == nil {
			ctx.pub = &priv.PublicKey
		}
	}

	if svc == SVC_SIGN && ctx.priv == nil {
		return nil, fmt.Errorf("%w: signing requires a private scalar", ErrBadKeyInfo)
	}
	if svc == SVC_VERIFY && ctx.pub == nil {
		return nil, fmt.Errorf("%w: verification requires a public point", ErrBadKeyInfo)
	}

	return ctx, nil
}

func (c *ecdsaContext) update(data []byte) error {
	if c.hash == nil {
		return fmt.Errorf("%w: context already finished", ErrConfig)
	}
	c.hash.Write(data)
	return nil
}

// finish finalizes the digest, then signs it or checks sig against it.
func (c *ecdsaContext) finish(sig []byte) ([]byte, error) {
	if c.hash == nil {
		return nil, fmt.Errorf("%w: context already finished", ErrConfig)
	}
	digest := c.hash.Sum(nil)

	if c.svc == SVC_SIGN {
		out, err := ecdsa.SignASN1(c.rng, c.priv, digest)
		if err != nil {
			return nil, fmt.Errorf("%w: ECDSA signing: %v", ErrSystem, err)
		}
		return out, nil
	}

	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: missing signature", ErrEmptyValue)
	}
	if !ecdsa.VerifyASN1(c.pub, digest, sig) {
		return nil, fmt.Errorf("%w: ECDSA signature mismatch", ErrVerificationFailed)
	}
	return nil, nil
}

func (c *ecdsaContext) free() {
	if c.priv != nil && c.priv.D != nil {
		c.priv.D.SetInt64(0)
	}
	c.priv = nil
	c.pub = nil
	c.hash = nil
}

// ecdsaSignFull is the one-shot form over a single bounded input.
func ecdsaSignFull(suite SuiteID, svc ServiceID, input, keyInfo, sig []byte, rng io.Reader) ([]byte, error) {
	ctx, err := ecdsaCtxInit(suite, keyInfo, svc, rng)
	if err != nil {
		return nil, err
	}
	if err := ctx.update(input); err != nil {
		return nil, err
	}
	return ctx.finish(sig)
}
