// Package validation checks the shape of facilitator request payloads before
// any cryptographic work happens. Failures name the offending field so the
// facilitator can return them verbatim in 400 responses.
package validation

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	paygate "github.com/paygate-labs/paygate-go"
)

var (
	// evmAddressRegex matches Ethereum-style addresses (0x followed by 40 hex chars)
	evmAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

	// signatureRegex matches a 0x-prefixed 65-byte hex signature
	signatureRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{130}$`)
)

// ValidateAddress validates an EVM address string.
func ValidateAddress(field, address string) error {
	if address == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("%s must be 0x-prefixed", field)
	}
	if !evmAddressRegex.MatchString(address) {
		return fmt.Errorf("%s is not a valid address: %s", field, address)
	}
	return nil
}

// ValidateAmount validates that an amount string is a positive decimal
// integer fitting an unsigned 256-bit value.
func ValidateAmount(field, amount string) error {
	if amount == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return fmt.Errorf("%s is not a decimal integer: %s", field, amount)
	}
	if v.Sign() < 1 {
		return fmt.Errorf("%s must be at least 1, got: %s", field, amount)
	}
	if v.BitLen() > 256 {
		return fmt.Errorf("%s exceeds uint256: %s", field, amount)
	}
	return nil
}

// ValidateAuthorization checks every field of a transfer authorization.
func ValidateAuthorization(auth paygate.TransferAuthorization) error {
	if err := ValidateAddress("authorization.from", auth.From); err != nil {
		return err
	}
	if err := ValidateAddress("authorization.to", auth.To); err != nil {
		return err
	}
	if err := ValidateAmount("authorization.value", auth.Value); err != nil {
		return err
	}
	if auth.ValidBefore == 0 {
		return fmt.Errorf("authorization.validBefore cannot be empty")
	}
	if auth.ValidAfter >= auth.ValidBefore {
		return fmt.Errorf("authorization.validAfter must be before validBefore")
	}
	if auth.Nonce == "" {
		return fmt.Errorf("authorization.nonce cannot be empty")
	}
	if !strings.HasPrefix(auth.Nonce, "0x") {
		return fmt.Errorf("authorization.nonce must be 0x-prefixed")
	}
	if !paygate.ValidNonce(auth.Nonce) {
		return fmt.Errorf("authorization.nonce must be 32 hex-encoded bytes")
	}
	return nil
}

// ValidatePayload performs the full shape validation of a facilitator
// request: protocol version, scheme, network and resource presence,
// signature format, and the authorization fields.
func ValidatePayload(p paygate.PaymentPayload) error {
	if p.X402Version != paygate.X402Version {
		return fmt.Errorf("unsupported x402Version: %d", p.X402Version)
	}
	if p.Scheme != paygate.SchemeExact {
		return fmt.Errorf("unsupported scheme: %q", p.Scheme)
	}
	if p.Network == "" {
		return fmt.Errorf("network cannot be empty")
	}
	if p.Resource == "" {
		return fmt.Errorf("resource cannot be empty")
	}
	if p.Payload.Signature == "" {
		return fmt.Errorf("payload.signature cannot be empty")
	}
	if !strings.HasPrefix(p.Payload.Signature, "0x") {
		return fmt.Errorf("payload.signature must be 0x-prefixed")
	}
	if !signatureRegex.MatchString(p.Payload.Signature) {
		return fmt.Errorf("payload.signature must be 65 hex-encoded bytes")
	}
	return ValidateAuthorization(p.Payload.Authorization)
}
