// Package encoding provides the base64-JSON wire codec used by the header
// transports: X-PAYMENT carries an encoded payment payload, and
// X-PAYMENT-RESPONSE carries encoded settlement info.
package encoding

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	paygate "github.com/paygate-labs/paygate-go"
)

// EncodePayment converts a payment payload to a base64-encoded JSON string
// for the X-PAYMENT header.
func EncodePayment(payment paygate.PaymentPayload) (string, error) {
	raw, err := json.Marshal(payment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodePayment parses a base64-encoded JSON payment payload.
func DecodePayment(encoded string) (paygate.PaymentPayload, error) {
	var payment paygate.PaymentPayload

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return payment, fmt.Errorf("failed to decode base64: %w", err)
	}
	if err := json.Unmarshal(raw, &payment); err != nil {
		return payment, fmt.Errorf("failed to unmarshal payment: %w", err)
	}
	return payment, nil
}

// EncodeSettlement converts settlement info to a base64-encoded JSON string
// for the X-PAYMENT-RESPONSE header.
func EncodeSettlement(info paygate.SettlementInfo) (string, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settlement: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeSettlement parses a base64-encoded JSON settlement header.
func DecodeSettlement(encoded string) (paygate.SettlementInfo, error) {
	var info paygate.SettlementInfo

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return info, fmt.Errorf("failed to decode base64: %w", err)
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return info, fmt.Errorf("failed to unmarshal settlement: %w", err)
	}
	return info, nil
}
