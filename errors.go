package go_csi

import (
	"errors"
	"fmt"
)

// Error taxonomy
//
// Every failure surfaced by this package belongs to exactly one of three
// classes, each with its own sentinel. Specific errors wrap the class
// sentinel, so callers distinguish classes with errors.Is():
//
//   - ErrConfig: the request was structurally invalid (unsupported suite,
//     wrong key length, truncated TLV). Checked before any cryptographic
//     work; nothing is partially executed.
//   - ErrSystem: an underlying primitive or resource failed for a reason
//     unrelated to verification (entropy unavailable, cipher construction
//     failed).
//   - ErrVerificationFailed: the operation ran to completion and the
//     signature, digest or auth tag did not match. This is a
//     protocol-meaningful negative result, never an internal fault, and is
//     never conflated with ErrSystem.

// Class sentinels.
var (
	// ErrConfig indicates a structurally invalid request.
	ErrConfig = errors.New("csi: configuration error")

	// ErrSystem indicates a failure of an underlying primitive or resource.
	ErrSystem = errors.New("csi: system error")

	// ErrVerificationFailed indicates a signature, digest or auth tag
	// mismatch. The input was processed correctly; its integrity did not
	// hold.
	ErrVerificationFailed = errors.New("csi: verification failed")
)

// Specific errors. Each wraps its class sentinel.
var (
	// ErrUnknownSuite indicates a suite identifier outside the supported
	// enumeration. Unknown suites are rejected, never coerced.
	ErrUnknownSuite = fmt.Errorf("%w: unknown suite", ErrConfig)

	// ErrSuiteService indicates a service the suite does not provide,
	// such as asking an HMAC suite to encrypt.
	ErrSuiteService = fmt.Errorf("%w: service not supported by suite", ErrConfig)

	// ErrContextMismatch indicates a context handed to a different family
	// than the one that created it.
	ErrContextMismatch = fmt.Errorf("%w: context belongs to a different suite", ErrConfig)

	// ErrBadKeyLength indicates key material whose length the suite does
	// not accept.
	ErrBadKeyLength = fmt.Errorf("%w: bad key length", ErrConfig)

	// ErrBadDigestLength indicates a caller-supplied digest that is not
	// exactly the suite's digest size.
	ErrBadDigestLength = fmt.Errorf("%w: bad digest length", ErrConfig)

	// ErrBadIVLength indicates an IV that is not the suite's IV size.
	ErrBadIVLength = fmt.Errorf("%w: bad IV length", ErrConfig)

	// ErrBadTagLength indicates an auth tag that is not exactly
	// GCM_ICV_LEN bytes. 16 bytes is the only supported tag length.
	ErrBadTagLength = fmt.Errorf("%w: bad auth tag length", ErrConfig)

	// ErrBadKeyInfo indicates key-info TLV material that does not decode
	// to usable key material for the suite.
	ErrBadKeyInfo = fmt.Errorf("%w: bad key info", ErrConfig)

	// ErrEmptyValue indicates a required value that was absent or empty.
	ErrEmptyValue = fmt.Errorf("%w: empty value", ErrConfig)

	// ErrShortBuffer indicates an input buffer too small to contain the
	// structure it is claimed to hold.
	ErrShortBuffer = fmt.Errorf("%w: buffer too short", ErrConfig)

	// ErrEntropyUnavailable indicates that no entropy source could be
	// opened.
	ErrEntropyUnavailable = fmt.Errorf("%w: no entropy source available", ErrSystem)
)

// SuiteError wraps a failure with the suite and operation it occurred in.
type SuiteError struct {
	Suite     SuiteID
	Operation string
	Err       error
}

func (e *SuiteError) Error() string {
	return fmt.Sprintf("csi: suite %d %s failed: %v", e.Suite, e.Operation, e.Err)
}

func (e *SuiteError) Unwrap() error {
	return e.Err
}

// NewSuiteError wraps err with suite and operation context.
//
// Example:
//
//	if err := ctx.update(data); err != nil {
//	    return NewSuiteError(suite, "sign update", err)
//	}
func NewSuiteError(suite SuiteID, operation string, err error) error {
	return &SuiteError{
		Suite:     suite,
		Operation: operation,
		Err:       err,
	}
}

// ResultCode maps an error to the historical integer result convention:
// CSI_SUCCESS for nil, CSI_ERR_CONFIG for configuration errors,
// CSI_ERR_VERIFICATION for verification failures and CSI_ERR_SYSTEM for
// everything else.
func ResultCode(err error) int {
	switch {
	case err == nil:
		return CSI_SUCCESS
	case errors.Is(err, ErrVerificationFailed):
		return CSI_ERR_VERIFICATION
	case errors.Is(err, ErrConfig):
		return CSI_ERR_CONFIG
	default:
		return CSI_ERR_SYSTEM
	}
}

// IsVerificationFailed reports whether err is an integrity mismatch rather
// than an internal fault. Callers use this to reject a tampered block
// without treating it as a pipeline failure.
func IsVerificationFailed(err error) bool {
	return errors.Is(err, ErrVerificationFailed)
}
