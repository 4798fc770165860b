package go_csi

import (
	"bytes"
	"errors"
	"testing"
)

// TestUnknownSuiteRejected tests that every entry point hard-rejects unknown identifiers
func TestUnknownSuiteRejected(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	const bogus SuiteID = 99

	if _, err := c.Blocksize(bogus); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("Blocksize = %v, want ErrUnknownSuite", err)
	}
	if _, err := c.ContextLength(bogus); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("ContextLength = %v, want ErrUnknownSuite", err)
	}
	if _, err := c.ContextInit(bogus, []byte("key"), SVC_SIGN); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("ContextInit = %v, want ErrUnknownSuite", err)
	}
	if _, err := c.SignFull(bogus, SVC_SIGN, []byte("m"), []byte("k"), nil); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("SignFull = %v, want ErrUnknownSuite", err)
	}
	if _, err := c.CryptFull(bogus, SVC_ENCRYPT, &CipherParms{}, []byte("k"), []byte("m")); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("CryptFull = %v, want ErrUnknownSuite", err)
	}
	if _, err := c.ParmGenerate(bogus, PARM_IV); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("ParmGenerate = %v, want ErrUnknownSuite", err)
	}
	if _, err := c.Random(bogus, 8); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("Random = %v, want ErrUnknownSuite", err)
	}
}

// TestContextFamilyMismatch tests that a context cannot cross into another family
func TestContextFamilyMismatch(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	hmacCtx, err := c.ContextInit(HMAC_SHA256, []byte("key"), SVC_SIGN)
	if err != nil {
		t.Fatalf("ContextInit failed: %v", err)
	}
	gcmCtx, err := c.ContextInit(AES128_GCM, make([]byte, AES128_KEY_LEN), SVC_ENCRYPT)
	if err != nil {
		t.Fatalf("ContextInit failed: %v", err)
	}

	// HMAC context into GCM entry points.
	if err := c.CryptStart(AES128_GCM, hmacCtx, CipherParms{IV: make([]byte, GCM_IV_LEN)}); !errors.Is(err, ErrContextMismatch) {
		t.Errorf("CryptStart with HMAC context = %v, want ErrContextMismatch", err)
	}
	if err := c.ContextFree(AES128_GCM, hmacCtx); !errors.Is(err, ErrContextMismatch) {
		t.Errorf("ContextFree across families = %v, want ErrContextMismatch", err)
	}

	// GCM context into integrity entry points.
	if err := c.SignUpdate(HMAC_SHA256, gcmCtx, []byte("data")); !errors.Is(err, ErrContextMismatch) {
		t.Errorf("SignUpdate with GCM context = %v, want ErrContextMismatch", err)
	}
	if _, err := c.SignFinish(HMAC_SHA256, gcmCtx, nil); !errors.Is(err, ErrContextMismatch) {
		t.Errorf("SignFinish with GCM context = %v, want ErrContextMismatch", err)
	}

	// Nil context never dereferences.
	if err := c.SignUpdate(HMAC_SHA256, nil, []byte("data")); !errors.Is(err, ErrConfig) {
		t.Errorf("SignUpdate with nil context = %v, want a config error", err)
	}
}

// TestGCMSuitesDoNotSign tests the service split between families
func TestGCMSuitesDoNotSign(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	if _, err := c.SignFull(AES256_GCM, SVC_SIGN, []byte("m"), make([]byte, AES256_KEY_LEN), nil); !errors.Is(err, ErrSuiteService) {
		t.Errorf("SignFull on GCM suite = %v, want ErrSuiteService", err)
	}
	if _, err := c.CryptFull(HMAC_SHA256, SVC_ENCRYPT, &CipherParms{}, []byte("k"), []byte("m")); !errors.Is(err, ErrSuiteService) {
		t.Errorf("CryptFull on HMAC suite = %v, want ErrSuiteService", err)
	}
}

// TestParmGenerateSizes tests generated parameter material sizes per suite
func TestParmGenerateSizes(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	cases := []struct {
		suite SuiteID
		parm  ParmID
		want  int
	}{
		{AES128_GCM, PARM_IV, GCM_IV_LEN},
		{AES256_GCM, PARM_IV, GCM_IV_LEN},
		{AES128_GCM, PARM_SALT, GCM_SALT_LEN},
		{AES128_GCM, PARM_ICV, GCM_ICV_LEN},
		{AES128_GCM, PARM_BEK, AES128_KEY_LEN},
		{AES256_GCM, PARM_BEK, AES256_KEY_LEN},
		{SHA256_AES128, PARM_BEK, AES128_KEY_LEN},
		{SHA384_AES256, PARM_BEK, AES256_KEY_LEN},
		{HMAC_SHA256, PARM_BEK, SHA256_DIGEST_LEN},
		{HMAC_SHA384, PARM_BEK, SHA384_DIGEST_LEN},
		{HMAC_SHA512, PARM_BEK, SHA512_DIGEST_LEN},
	}

	for _, tc := range cases {
		got, err := c.ParmGenerate(tc.suite, tc.parm)
		if err != nil {
			t.Errorf("ParmGenerate(%d, %d) failed: %v", tc.suite, tc.parm, err)
			continue
		}
		if len(got) != tc.want {
			t.Errorf("ParmGenerate(%d, %d) length = %d, want %d", tc.suite, tc.parm, len(got), tc.want)
		}
	}

	// No generated parameters exist for ECDSA suites.
	if _, err := c.ParmGenerate(ECDSA_SHA256, PARM_IV); !errors.Is(err, ErrConfig) {
		t.Errorf("ParmGenerate on ECDSA suite = %v, want a config error", err)
	}
}

// TestRandomAndBlocksize tests the remaining dispatcher queries
func TestRandomAndBlocksize(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	a, err := c.Random(AES256_GCM, 32)
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	b, err := c.Random(AES256_GCM, 32)
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	if len(a) != 32 || len(b) != 32 {
		t.Errorf("Random lengths = %d, %d, want 32", len(a), len(b))
	}
	if bytes.Equal(a, b) {
		t.Error("two generator draws returned identical bytes")
	}

	bs, err := c.Blocksize(HMAC_SHA1)
	if err != nil {
		t.Fatalf("Blocksize failed: %v", err)
	}
	if bs != MAX_BLOCKSIZE {
		t.Errorf("Blocksize = %d, want %d", bs, MAX_BLOCKSIZE)
	}

	n, err := c.ContextLength(AES128_GCM)
	if err != nil || n <= 0 {
		t.Errorf("ContextLength = %d, %v, want a positive size", n, err)
	}
}

// TestCryptResLen tests that GCM output length always equals input length
func TestCryptResLen(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	for _, n := range []int{0, 1, 16, 65000} {
		got, err := c.CryptResLen(AES128_GCM, n)
		if err != nil {
			t.Fatalf("CryptResLen(%d) failed: %v", n, err)
		}
		if got != n {
			t.Errorf("CryptResLen(%d) = %d", n, got)
		}
	}

	if _, err := c.CryptResLen(HMAC_SHA1, 16); !errors.Is(err, ErrSuiteService) {
		t.Errorf("CryptResLen on HMAC suite = %v, want ErrSuiteService", err)
	}
}

// TestSignResLen tests result sizing for the integrity families
func TestSignResLen(t *testing.T) {
	c, err := NewCSI()
	if err != nil {
		t.Fatalf("NewCSI failed: %v", err)
	}
	defer c.Close()

	cases := []struct {
		suite SuiteID
		want  int
	}{
		{HMAC_SHA1, SHA1_DIGEST_LEN},
		{HMAC_SHA256, SHA256_DIGEST_LEN},
		{HMAC_SHA384, SHA384_DIGEST_LEN},
		{HMAC_SHA512, SHA512_DIGEST_LEN},
		{ECDSA_SHA256, ECDSA_P256_MAX_SIG_LEN},
		{ECDSA_SHA384, ECDSA_P384_MAX_SIG_LEN},
	}
	for _, tc := range cases {
		got, err := c.SignResLen(tc.suite)
		if err != nil {
			t.Errorf("SignResLen(%d) failed: %v", tc.suite, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SignResLen(%d) = %d, want %d", tc.suite, got, tc.want)
		}
	}
}

// TestResultCodeMapping tests the bridge to the historical integer codes
func TestResultCodeMapping(t *testing.T) {
	if got := ResultCode(nil); got != CSI_SUCCESS {
		t.Errorf("ResultCode(nil) = %d, want %d", got, CSI_SUCCESS)
	}
	if got := ResultCode(ErrUnknownSuite); got != CSI_ERR_CONFIG {
		t.Errorf("ResultCode(config) = %d, want %d", got, CSI_ERR_CONFIG)
	}
	if got := ResultCode(ErrVerificationFailed); got != CSI_ERR_VERIFICATION {
		t.Errorf("ResultCode(verification) = %d, want %d", got, CSI_ERR_VERIFICATION)
	}
	if got := ResultCode(ErrEntropyUnavailable); got != CSI_ERR_SYSTEM {
		t.Errorf("ResultCode(system) = %d, want %d", got, CSI_ERR_SYSTEM)
	}

	if !IsVerificationFailed(NewSuiteError(HMAC_SHA1, "verify", ErrVerificationFailed)) {
		t.Error("IsVerificationFailed should see through SuiteError wrapping")
	}
}
