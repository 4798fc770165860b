package go_csi

// SuiteID identifies a ciphersuite. The value space is closed: every
// dispatcher entry point rejects identifiers outside this enumeration.
type SuiteID uint8

// Ciphersuite identifiers.
//
// SHA256_AES128 and SHA384_AES256 are legacy composite ("signed and
// encrypted") identifiers kept for wire compatibility with older security
// blocks. For confidentiality operations they behave as AES128_GCM and
// AES256_GCM respectively; they are not valid for integrity operations.
const (
	HMAC_SHA1     SuiteID = 0
	HMAC_SHA256   SuiteID = 1
	SHA256_AES128 SuiteID = 2
	HMAC_SHA384   SuiteID = 3
	SHA384_AES256 SuiteID = 4
	HMAC_SHA512   SuiteID = 5
	ECDSA_SHA256  SuiteID = 6
	ECDSA_SHA384  SuiteID = 7
	AES128_GCM    SuiteID = 8
	AES256_GCM    SuiteID = 9
)

// ServiceID selects which half of a suite's logic runs.
type ServiceID uint8

// Security services.
const (
	SVC_SIGN ServiceID = iota
	SVC_VERIFY
	SVC_ENCRYPT
	SVC_DECRYPT
)

// ParmID identifies a cipher parameter TLV record inside a security block.
type ParmID uint8

// Cipher parameter type codes.
const (
	PARM_IV      ParmID = 1
	PARM_BEK     ParmID = 2 // bulk encryption key (wrapped)
	PARM_KEYINFO ParmID = 3
	PARM_INTSIG  ParmID = 5 // integrity signature
	PARM_BEK_ICV ParmID = 6 // wrap auth tag, nested inside key-info
	PARM_SALT    ParmID = 7
	PARM_ICV     ParmID = 8 // integrity check value (auth tag)
	PARM_AAD     ParmID = 9
)

// Key-info TLV sub-types carrying ECDSA key material.
const (
	ECDSA_KEY_PUBLIC  ParmID = 0 // uncompressed curve point Q
	ECDSA_KEY_PRIVATE ParmID = 1 // private scalar d
)

// Legacy numeric result codes. New code should test errors with errors.Is
// against ErrConfig, ErrSystem and ErrVerificationFailed; these constants
// exist for callers bridging the historical integer convention.
const (
	CSI_ERR_SYSTEM       = -1
	CSI_ERR_CONFIG       = 0
	CSI_SUCCESS          = 1
	CSI_ERR_VERIFICATION = 4
)

// Digest sizes in bytes.
const (
	SHA1_DIGEST_LEN   = 20
	SHA256_DIGEST_LEN = 32
	SHA384_DIGEST_LEN = 48
	SHA512_DIGEST_LEN = 64
)

// AES-GCM parameter sizes in bytes.
const (
	GCM_IV_LEN     = 12
	GCM_SALT_LEN   = 4
	GCM_ICV_LEN    = 16
	AES128_KEY_LEN = 16
	AES256_KEY_LEN = 32
)

// MAX_BLOCKSIZE is the largest chunk any suite accepts in a single
// streaming update call.
const MAX_BLOCKSIZE = 65000

// Maximum DER signature encodings for the supported curves.
const (
	ECDSA_P256_MAX_SIG_LEN = 72
	ECDSA_P384_MAX_SIG_LEN = 104
)
