package paygate

import (
	"errors"
	"fmt"
)

// Standard error definitions

var (
	// ErrPaymentRequired indicates that payment is required to access the resource.
	ErrPaymentRequired = errors.New("payment required")

	// ErrInvalidPayment indicates that the provided payment payload is invalid.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrUnsupportedVersion indicates an unsupported x402 protocol version.
	ErrUnsupportedVersion = errors.New("unsupported x402 version")

	// ErrUnsupportedScheme indicates an unsupported payment scheme.
	ErrUnsupportedScheme = errors.New("unsupported payment scheme")

	// ErrUnsupportedNetwork indicates an unsupported blockchain network.
	ErrUnsupportedNetwork = errors.New("unsupported network")

	// ErrInvalidSignature indicates an invalid or mismatched signature.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidAuthorization indicates invalid payment authorization data.
	ErrInvalidAuthorization = errors.New("invalid authorization")

	// ErrExpiredAuthorization indicates the authorization window has passed.
	ErrExpiredAuthorization = errors.New("expired authorization")

	// ErrInvalidAmount indicates a malformed or negative amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidKey indicates a malformed private key.
	ErrInvalidKey = errors.New("invalid private key")

	// ErrInvalidMnemonic indicates a malformed BIP-39 mnemonic phrase.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidKeystore indicates a malformed or undecryptable keystore file.
	ErrInvalidKeystore = errors.New("invalid keystore")

	// ErrFacilitatorUnavailable indicates the facilitator service is unavailable.
	ErrFacilitatorUnavailable = errors.New("facilitator unavailable")

	// ErrSettlementFailed indicates transfer execution failed.
	ErrSettlementFailed = errors.New("settlement failed")

	// ErrReceiptInvalid indicates a receipt token failed verification.
	ErrReceiptInvalid = errors.New("invalid receipt")

	// ErrReceiptExpired indicates a receipt token is past its expiry.
	ErrReceiptExpired = errors.New("expired receipt")

	// ErrReceiptMissing indicates no receipt token was found on the request.
	ErrReceiptMissing = errors.New("missing receipt")
)

// ErrorCode is a stable identifier carried on programmatic error objects.
type ErrorCode string

// Payment errors.
const (
	ErrCodePaymentFailed      ErrorCode = "PAYMENT_FAILED"
	ErrCodeFacilitatorError   ErrorCode = "FACILITATOR_ERROR"
	ErrCodeInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeSigningFailed      ErrorCode = "SIGNING_FAILED"
	ErrCodeInvalid402Response ErrorCode = "INVALID_402_RESPONSE"
)

// Budget errors.
const (
	ErrCodeBudgetExceeded   ErrorCode = "BUDGET_EXCEEDED"
	ErrCodePerRequestLimit  ErrorCode = "PER_REQUEST_LIMIT"
	ErrCodeDomainNotAllowed ErrorCode = "DOMAIN_NOT_ALLOWED"
)

// Receipt errors.
const (
	ErrCodeReceiptExpired ErrorCode = "RECEIPT_EXPIRED"
	ErrCodeReceiptInvalid ErrorCode = "RECEIPT_INVALID"
	ErrCodeReceiptMissing ErrorCode = "RECEIPT_MISSING"
)

// Network errors.
const (
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"
	ErrCodeRPCError     ErrorCode = "RPC_ERROR"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
)

// PaymentError is a structured error carrying a stable code, a human-readable
// message, and an optional wrapped cause. Details hold supplementary
// key-value context for diagnostics.
type PaymentError struct {
	Code    ErrorCode
	Message string
	Err     error
	Details map[string]string
}

// NewPaymentError creates a PaymentError wrapping err.
func NewPaymentError(code ErrorCode, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a key-value pair to the error and returns it for chaining.
func (e *PaymentError) WithDetails(key, value string) *PaymentError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the stable code from an error, or "" if the error is not a
// PaymentError.
func CodeOf(err error) ErrorCode {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
