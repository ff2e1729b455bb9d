// Package eip3009 implements EIP-712 hashing, signing, and signer recovery
// for the EIP-3009 TransferWithAuthorization message used by the exact
// payment scheme.
package eip3009

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	paygate "github.com/paygate-labs/paygate-go"
)

// Digest computes the EIP-712 signing digest of auth under the stablecoin
// domain of net: keccak256("\x19\x01" || domainSeparator || structHash).
func Digest(auth paygate.TransferAuthorization, net paygate.Network) ([]byte, error) {
	value, err := paygate.ParseSmallestUnit(auth.Value)
	if err != nil {
		return nil, err
	}

	nonce, err := parseNonce(auth.Nonce)
	if err != nil {
		return nil, err
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"TransferWithAuthorization": []apitypes.Type{
				{Name: "from", Type: "address"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "validAfter", Type: "uint256"},
				{Name: "validBefore", Type: "uint256"},
				{Name: "nonce", Type: "bytes32"},
			},
		},
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              net.EIP712Name,
			Version:           net.EIP712Version,
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(net.ChainID)),
			VerifyingContract: net.TokenAddress,
		},
		Message: apitypes.TypedDataMessage{
			"from":        common.HexToAddress(auth.From).Hex(),
			"to":          common.HexToAddress(auth.To).Hex(),
			"value":       (*math.HexOrDecimal256)(value),
			"validAfter":  (*math.HexOrDecimal256)(big.NewInt(auth.ValidAfter)),
			"validBefore": (*math.HexOrDecimal256)(big.NewInt(auth.ValidBefore)),
			"nonce":       nonce.Hex(),
		},
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}

	structHash, err := typedData.HashStruct("TransferWithAuthorization", typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}

	rawData := append([]byte{0x19, 0x01}, append(domainSeparator, structHash...)...)
	return crypto.Keccak256(rawData), nil
}

// Sign signs auth under the stablecoin domain of net and returns the
// 0x-prefixed 65-byte signature with the Ethereum v adjustment (27/28).
func Sign(privateKey *ecdsa.PrivateKey, auth paygate.TransferAuthorization, net paygate.Network) (string, error) {
	digest, err := Digest(auth, net)
	if err != nil {
		return "", err
	}

	signature, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", paygate.NewPaymentError(paygate.ErrCodeSigningFailed, "failed to sign authorization", err)
	}

	// Adjust v value for Ethereum (27 or 28)
	signature[64] += 27

	return "0x" + hex.EncodeToString(signature), nil
}

// Recover recovers the address that produced signature over auth's EIP-712
// digest. The signature is a 0x-prefixed 65-byte hex string with v in
// {0,1,27,28}.
func Recover(auth paygate.TransferAuthorization, signature string, net paygate.Network) (common.Address, error) {
	sig, err := parseSignature(signature)
	if err != nil {
		return common.Address{}, err
	}

	digest, err := Digest(auth, net)
	if err != nil {
		return common.Address{}, err
	}

	pubKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", paygate.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// SignatureComponents splits a 0x-prefixed 65-byte signature into the
// (v, r, s) values expected by the transferWithAuthorization contract call.
func SignatureComponents(signature string) (v uint8, r, s common.Hash, err error) {
	sig, err := parseSignature(signature)
	if err != nil {
		return 0, common.Hash{}, common.Hash{}, err
	}
	v = sig[64]
	if v < 27 {
		v += 27
	}
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	return v, r, s, nil
}

// parseSignature decodes and normalizes a 65-byte signature so that the
// recovery id is 0 or 1 as go-ethereum expects.
func parseSignature(signature string) ([]byte, error) {
	hexSig := strings.TrimPrefix(signature, "0x")
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", paygate.ErrInvalidSignature)
	}
	if len(sig) != 65 {
		return nil, fmt.Errorf("%w: expected 65 bytes, got %d", paygate.ErrInvalidSignature, len(sig))
	}
	out := make([]byte, 65)
	copy(out, sig)
	if out[64] >= 27 {
		out[64] -= 27
	}
	return out, nil
}

// parseNonce decodes a 0x-prefixed 32-byte nonce.
func parseNonce(nonce string) (common.Hash, error) {
	if !paygate.ValidNonce(nonce) {
		return common.Hash{}, fmt.Errorf("%w: malformed nonce", paygate.ErrInvalidAuthorization)
	}
	return common.HexToHash(nonce), nil
}
