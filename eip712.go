package paygate

// EIP-712 typed-data description of TransferWithAuthorization, as published
// in 402 response bodies for clients that construct the signing payload
// themselves. The actual hashing and signing live in the eip3009 package.

// TypedDataField is one field of an EIP-712 type definition.
type TypedDataField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypedDataDomain is the EIP-712 domain separator contents.
type TypedDataDomain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// TypedDataSkeleton is an EIP-712 typed-data payload with the client-supplied
// fields (from, validAfter, validBefore, nonce) left unfilled.
type TypedDataSkeleton struct {
	Types       map[string][]TypedDataField `json:"types"`
	PrimaryType string                      `json:"primaryType"`
	Domain      TypedDataDomain             `json:"domain"`
	Message     map[string]any              `json:"message"`
}

// TransferWithAuthorizationTypes is the canonical type table for EIP-3009
// signing. Field order is normative.
func TransferWithAuthorizationTypes() map[string][]TypedDataField {
	return map[string][]TypedDataField{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		"TransferWithAuthorization": {
			{Name: "from", Type: "address"},
			{Name: "to", Type: "address"},
			{Name: "value", Type: "uint256"},
			{Name: "validAfter", Type: "uint256"},
			{Name: "validBefore", Type: "uint256"},
			{Name: "nonce", Type: "bytes32"},
		},
	}
}

// NewTypedDataSkeleton builds the typed-data skeleton for a payment of
// valueSmallest to payTo on the given network.
func NewTypedDataSkeleton(net Network, payTo, valueSmallest string) *TypedDataSkeleton {
	return &TypedDataSkeleton{
		Types:       TransferWithAuthorizationTypes(),
		PrimaryType: "TransferWithAuthorization",
		Domain: TypedDataDomain{
			Name:              net.EIP712Name,
			Version:           net.EIP712Version,
			ChainID:           net.ChainID,
			VerifyingContract: net.TokenAddress,
		},
		Message: map[string]any{
			"to":    payTo,
			"value": valueSmallest,
		},
	}
}
