// Package paygate implements the protocol primitives for the x402
// "Payment Required" micropayment flow: wire formats, the network registry,
// price conversion, 402 response assembly and parsing, and receipt header
// extraction. Higher layers (the facilitator service, the agent client, and
// the resource-server adapters) build on this package.
package paygate

// SchemeExact is the only payment scheme this module implements: the client
// signs an EIP-3009 authorization for the exact announced amount.
const SchemeExact = "exact"

// X402Version is the protocol version carried in every payload.
const X402Version = 1

// TransferAuthorization carries the parameters of an EIP-3009
// transferWithAuthorization call. Value is a decimal string in the
// stablecoin's smallest unit (6 decimals); it must fit an unsigned 256-bit
// integer. Nonce is 32 random bytes, hex-encoded with a 0x prefix.
type TransferAuthorization struct {
	// From is the payer's address.
	From string `json:"from"`

	// To is the recipient's address.
	To string `json:"to"`

	// Value is the payment amount in smallest units, as a decimal string.
	Value string `json:"value"`

	// ValidAfter is the unix timestamp after which the authorization is valid.
	ValidAfter int64 `json:"validAfter"`

	// ValidBefore is the unix timestamp before which the authorization is valid.
	ValidBefore int64 `json:"validBefore"`

	// Nonce is a unique 0x-prefixed 32-byte hex string preventing replay.
	Nonce string `json:"nonce"`
}

// ExactPayload is the signed payment data for the "exact" scheme.
type ExactPayload struct {
	// Signature is the 0x-prefixed hex encoding of the 65-byte secp256k1
	// signature over the EIP-712 hash of the authorization.
	Signature string `json:"signature"`

	// Authorization contains the transferWithAuthorization parameters.
	Authorization TransferAuthorization `json:"authorization"`
}

// PaymentPayload is the request body submitted to the facilitator.
type PaymentPayload struct {
	// X402Version is the protocol version (currently 1).
	X402Version int `json:"x402Version"`

	// Scheme is the payment scheme identifier (currently always "exact").
	Scheme string `json:"scheme"`

	// Network is the CAIP-2 chain identifier (e.g. "eip155:8453").
	Network string `json:"network"`

	// Payload contains the signature and authorization.
	Payload ExactPayload `json:"payload"`

	// Resource is the opaque content identifier being paid for.
	Resource string `json:"resource"`
}

// SettleResponse is the facilitator's success response.
type SettleResponse struct {
	// Receipt is the signed receipt token.
	Receipt string `json:"receipt"`

	// TxHash is the settlement transaction hash, when available.
	TxHash string `json:"txHash,omitempty"`
}

// ErrorResponse is the facilitator's failure response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SchemeEntry is one entry of the "accepts" array in a 402 response body.
type SchemeEntry struct {
	// Scheme is the payment scheme identifier (currently always "exact").
	Scheme string `json:"scheme"`

	// Network is the CAIP-2 chain identifier.
	Network string `json:"network"`

	// MaxAmountRequired is the price in smallest units, as a decimal string.
	MaxAmountRequired string `json:"maxAmountRequired"`

	// Resource is the content identifier the payment is for.
	Resource string `json:"resource"`

	// Description is an optional human-readable payment description.
	Description string `json:"description,omitempty"`

	// MimeType is the content type of the protected resource.
	MimeType string `json:"mimeType"`

	// Payload is the EIP-712 typed-data skeleton the client completes and
	// signs (from, validAfter, validBefore and nonce left unfilled).
	Payload *TypedDataSkeleton `json:"payload,omitempty"`
}

// PaymentRequest is the payment announcement a resource server returns with
// a 402 status. The same information appears in the response body and in the
// X-402-* headers.
type PaymentRequest struct {
	// PayTo is the publisher's receiving address.
	PayTo string `json:"payTo"`

	// Price is the human-readable price (e.g. "0.01").
	Price string `json:"price"`

	// Currency is the stablecoin symbol (e.g. "USDC").
	Currency string `json:"currency"`

	// ContentID identifies the protected resource.
	ContentID string `json:"contentId"`

	// Network is the registry key of the target chain (e.g. "base-mainnet").
	Network string `json:"network"`

	// FacilitatorURL is the facilitator endpoint accepting payment.
	FacilitatorURL string `json:"facilitatorUrl"`

	// Description is an optional human-readable description.
	Description string `json:"description,omitempty"`

	// Accepts lists the payment schemes the server will accept.
	Accepts []SchemeEntry `json:"accepts,omitempty"`
}

// SettlementInfo is the facilitator-originated settlement data a resource
// server may attach to a paid response via the X-PAYMENT-RESPONSE header.
type SettlementInfo struct {
	// Success indicates whether the payment was settled.
	Success bool `json:"success"`

	// TxHash is the settlement transaction hash.
	TxHash string `json:"txHash,omitempty"`

	// Payer is the address that made the payment.
	Payer string `json:"payer,omitempty"`

	// Network is the registry key of the settlement chain.
	Network string `json:"network,omitempty"`
}

// PaymentRecord is one entry of the agent's spend history.
type PaymentRecord struct {
	// ContentID identifies the resource that was paid for.
	ContentID string `json:"contentId"`

	// Amount is the spend in smallest units, as a decimal string.
	Amount string `json:"amount"`

	// Domain is the host the payment was made to.
	Domain string `json:"domain"`

	// Timestamp is the unix time of the payment.
	Timestamp int64 `json:"timestamp"`
}
