package go_csi

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// AES-GCM suite family: authenticated encryption with a 12-byte IV,
// optional salt and AAD, and a 16-byte auth tag. 128- and 256-bit keys
// are the only accepted lengths. The legacy composite suites map onto
// the matching key size.
//
// The streaming path produces ciphertext incrementally with the GCM
// counter keystream and computes or verifies the tag over the
// accumulated data at finish, so chunked output is byte-identical to
// the one-shot path.

// gcmContext is the streaming state of an AEAD encrypt or decrypt.
// Direction is fixed at init; IV and AAD arrive at start.
type gcmContext struct {
	suite SuiteID
	svc   ServiceID
	key   []byte
	iv    []byte
	aad   []byte
	ctr   cipher.Stream
	acc   bytes.Buffer // input accumulated for the finish tag computation
	spent bool
}

func (c *gcmContext) Suite() SuiteID     { return c.suite }
func (c *gcmContext) Service() ServiceID { return c.svc }

func gcmKeyLen(suite SuiteID) (int, error) {
	switch suite {
	case SHA256_AES128, AES128_GCM:
		return AES128_KEY_LEN, nil
	case SHA384_AES256, AES256_GCM:
		return AES256_KEY_LEN, nil
	}
	return 0, fmt.Errorf("%w: %d is not an AES-GCM suite", ErrUnknownSuite, suite)
}

// gcmCheck is the single validation routine shared by the one-shot and
// streaming paths: both enforce the same key, IV and tag constraints.
func gcmCheck(suite SuiteID, svc ServiceID, key, iv []byte) error {
	if svc != SVC_ENCRYPT && svc != SVC_DECRYPT {
		return fmt.Errorf("%w: AES-GCM suites encrypt and decrypt only", ErrSuiteService)
	}
	want, err := gcmKeyLen(suite)
	if err != nil {
		return err
	}
	if len(key) != want {
		return fmt.Errorf("%w: suite %d requires a %d-byte key, got %d", ErrBadKeyLength, suite, want, len(key))
	}
	if len(iv) != GCM_IV_LEN {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrBadIVLength, GCM_IV_LEN, len(iv))
	}
	return nil
}

func gcmCheckTag(icv []byte) error {
	if len(icv) != GCM_ICV_LEN {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrBadTagLength, GCM_ICV_LEN, len(icv))
	}
	return nil
}

func gcmCtxInit(suite SuiteID, key []byte, svc ServiceID) (*gcmContext, error) {
	if svc != SVC_ENCRYPT && svc != SVC_DECRYPT {
		return nil, fmt.Errorf("%w: AES-GCM suites encrypt and decrypt only", ErrSuiteService)
	}
	want, err := gcmKeyLen(suite)
	if err != nil {
		return nil, err
	}
	if len(key) != want {
		return nil, fmt.Errorf("%w: suite %d requires a %d-byte key, got %d", ErrBadKeyLength, suite, want, len(key))
	}
	return &gcmContext{
		suite: suite,
		svc:   svc,
		key:   append([]byte(nil), key...),
	}, nil
}

// start begins the AEAD computation with the IV and AAD from parms.
func (c *gcmContext) start(parms CipherParms) error {
	if c.spent {
		return fmt.Errorf("%w: context already finished", ErrConfig)
	}
	if c.ctr != nil {
		return fmt.Errorf("%w: context already started", ErrConfig)
	}
	if err := gcmCheck(c.suite, c.svc, c.key, parms.IV); err != nil {
		return err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSystem, err)
	}

	// GCM encrypts the payload with the counter keystream starting at
	// IV || 0x00000002; counter 1 is reserved for the tag.
	ctrIV := make([]byte, aes.BlockSize)
	copy(ctrIV, parms.IV)
	ctrIV[aes.BlockSize-1] = 2

	c.ctr = cipher.NewCTR(block, ctrIV)
	c.iv = append([]byte(nil), parms.IV...)
	c.aad = append([]byte(nil), parms.AAD...)
	return nil
}

// update applies the cipher to one chunk, returning output of equal
// length. Chunks must be supplied in stream order; update never reorders.
func (c *gcmContext) update(data []byte) ([]byte, error) {
	if c.ctr == nil {
		return nil, fmt.Errorf("%w: context not started", ErrConfig)
	}
	if len(data) > MAX_BLOCKSIZE {
		return nil, fmt.Errorf("%w: chunk of %d bytes exceeds %d", ErrConfig, len(data), MAX_BLOCKSIZE)
	}
	out := make([]byte, len(data))
	c.ctr.XORKeyStream(out, data)
	c.acc.Write(data)
	return out, nil
}

// finish computes (encrypt) or verifies (decrypt) the auth tag over all
// data passed to update. On encrypt, an absent ICV field is allocated
// and populated; a present one must be exactly GCM_ICV_LEN bytes and is
// overwritten. On decrypt a tag mismatch is a verification failure, not
// a system fault.
func (c *gcmContext) finish(parms *CipherParms) error {
	if c.ctr == nil {
		return fmt.Errorf("%w: context not started", ErrConfig)
	}
	defer func() {
		c.ctr = nil
		c.acc.Reset()
		c.spent = true
	}()

	aead, err := newGCM(c.key)
	if err != nil {
		return err
	}

	if c.svc == SVC_ENCRYPT {
		sealed := aead.Seal(nil, c.iv, c.acc.Bytes(), c.aad)
		tag := sealed[len(sealed)-GCM_ICV_LEN:]
		if len(parms.ICV) == 0 {
			parms.ICV = append([]byte(nil), tag...)
		} else {
			if err := gcmCheckTag(parms.ICV); err != nil {
				return err
			}
			copy(parms.ICV, tag)
		}
		return nil
	}

	if err := gcmCheckTag(parms.ICV); err != nil {
		return err
	}
	sealed := make([]byte, 0, c.acc.Len()+GCM_ICV_LEN)
	sealed = append(sealed, c.acc.Bytes()...)
	sealed = append(sealed, parms.ICV...)
	if _, err := aead.Open(nil, c.iv, sealed, c.aad); err != nil {
		return fmt.Errorf("%w: auth tag mismatch", ErrVerificationFailed)
	}
	return nil
}

func (c *gcmContext) free() {
	for i := range c.key {
		c.key[i] = 0
	}
	c.key = nil
	c.ctr = nil
	c.acc.Reset()
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSystem, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSystem, err)
	}
	return aead, nil
}

// gcmCryptFull performs start, update and finish in one call over a
// single contiguous buffer. Encrypt returns ciphertext of equal length
// and populates parms.ICV with the tag; decrypt verifies parms.ICV
// before returning plaintext.
func gcmCryptFull(suite SuiteID, svc ServiceID, parms *CipherParms, key, input []byte) ([]byte, error) {
	if err := gcmCheck(suite, svc, key, parms.IV); err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if svc == SVC_ENCRYPT {
		sealed := aead.Seal(nil, parms.IV, input, parms.AAD)
		out := sealed[:len(input)]
		tag := sealed[len(input):]
		if len(parms.ICV) == 0 {
			parms.ICV = append([]byte(nil), tag...)
		} else {
			if err := gcmCheckTag(parms.ICV); err != nil {
				return nil, err
			}
			copy(parms.ICV, tag)
		}
		log.Debugf("gcm encrypt: suite %d, %d bytes, iv %s", suite, len(input), hexPreview(parms.IV, 12))
		return out, nil
	}

	if err := gcmCheckTag(parms.ICV); err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(input)+GCM_ICV_LEN)
	sealed = append(sealed, input...)
	sealed = append(sealed, parms.ICV...)
	out, err := aead.Open(nil, parms.IV, sealed, parms.AAD)
	if err != nil {
		return nil, fmt.Errorf("%w: auth tag mismatch", ErrVerificationFailed)
	}
	return out, nil
}

// gcmCryptKey wraps or unwraps a bulk encryption key under the long-term
// key using the suite's own AEAD. The wrap tag travels inside the
// key-info field under its own sub-type, so unwrap can locate it
// independently of the IV and salt records. The wrap runs over a private
// parameter record sharing only the caller's IV and salt; the caller's
// ICV field carries the payload auth tag and is never touched here.
func gcmCryptKey(suite SuiteID, svc ServiceID, parms *CipherParms, longtermKey, input []byte) ([]byte, error) {
	switch svc {
	case SVC_ENCRYPT:
		if len(input) == 0 {
			return nil, fmt.Errorf("%w: missing key to wrap", ErrEmptyValue)
		}
		keyParms := CipherParms{IV: parms.IV, Salt: parms.Salt}
		out, err := gcmCryptFull(suite, SVC_ENCRYPT, &keyParms, longtermKey, input)
		if err != nil {
			return nil, err
		}
		parms.KeyInfo = BuildTLV(PARM_BEK_ICV, keyParms.ICV)
		return out, nil

	case SVC_DECRYPT:
		icv := ExtractTLV(PARM_BEK_ICV, parms.KeyInfo)
		if icv == nil {
			return nil, fmt.Errorf("%w: key-info lacks wrap auth tag", ErrBadKeyInfo)
		}
		keyParms := CipherParms{IV: parms.IV, Salt: parms.Salt, ICV: icv}
		return gcmCryptFull(suite, SVC_DECRYPT, &keyParms, longtermKey, input)
	}

	return nil, fmt.Errorf("%w: key wrap is encrypt or decrypt only", ErrSuiteService)
}

// gcmParmLen returns the generated length of each AES-GCM parameter.
func gcmParmLen(suite SuiteID, parm ParmID) (int, error) {
	switch parm {
	case PARM_IV:
		return GCM_IV_LEN, nil
	case PARM_SALT:
		return GCM_SALT_LEN, nil
	case PARM_ICV:
		return GCM_ICV_LEN, nil
	case PARM_BEK:
		return gcmKeyLen(suite)
	}
	return 0, fmt.Errorf("%w: no generated length for parameter %d", ErrConfig, parm)
}
