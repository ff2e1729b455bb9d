package paygate

import (
	"net/http"
	"strings"
)

// Protocol header names. Lookups are case-insensitive; these constants give
// the canonical casing used when writing.
const (
	HeaderPayTo       = "X-402-PayTo"
	HeaderPrice       = "X-402-Price"
	HeaderCurrency    = "X-402-Currency"
	HeaderNetwork     = "X-402-Network"
	HeaderFacilitator = "X-402-Facilitator"
	HeaderContentID   = "X-402-Content-Id"
	HeaderDescription = "X-402-Description"
	HeaderReceipt     = "X-402-Receipt"

	// HeaderPayment is the legacy receipt-carrying header also recognized
	// on inbound requests.
	HeaderPayment = "X-PAYMENT"

	// HeaderPaymentResponse carries facilitator-originated settlement data
	// on protected responses.
	HeaderPaymentResponse = "X-PAYMENT-RESPONSE"
)

// authSchemePrefix is the Authorization scheme marking a receipt token.
const authSchemePrefix = "X402 "

// ExtractReceipt returns the receipt token carried by a request, inspecting
// in order X-402-Receipt, X-PAYMENT, and an Authorization header with the
// "X402" scheme. Returns "" when no token is present.
func ExtractReceipt(h http.Header) string {
	if v := h.Get(HeaderReceipt); v != "" {
		return v
	}
	if v := h.Get(HeaderPayment); v != "" {
		return v
	}
	if auth := h.Get("Authorization"); strings.HasPrefix(auth, authSchemePrefix) {
		return strings.TrimPrefix(auth, authSchemePrefix)
	}
	return ""
}
