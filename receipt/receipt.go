// Package receipt implements the signed receipts a facilitator mints after a
// successful settlement. Receipts travel as compact JWS tokens
// (header.payload.signature): HS256-signed with the facilitator secret by
// default, with ECDSA P-256 over an SPKI public key as an alternative verify
// mode for parties that never see the secret.
package receipt

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	paygate "github.com/paygate-labs/paygate-go"
)

// DefaultTTL is how long a freshly minted receipt stays valid.
const DefaultTTL = 24 * time.Hour

// Receipt proves a settled payment for a specific content id.
type Receipt struct {
	// ID uniquely identifies the receipt.
	ID string `json:"id"`

	// ContentID identifies the resource the payment covers.
	ContentID string `json:"contentId"`

	// Payer is the address the funds came from.
	Payer string `json:"payer"`

	// Payee is the publisher's receiving address.
	Payee string `json:"payee"`

	// Amount is the publisher's share after fee, in smallest units.
	Amount string `json:"amount"`

	// Currency is the stablecoin symbol.
	Currency string `json:"currency"`

	// ChainID is the numeric chain id of the settlement chain.
	ChainID int64 `json:"chainId"`

	// TxHash is the settlement transaction hash.
	TxHash string `json:"txHash"`

	// PaidAt and ExpiresAt are unix-seconds bounds of validity.
	PaidAt    int64 `json:"paidAt"`
	ExpiresAt int64 `json:"expiresAt"`

	// Facilitator is the URL of the issuing facilitator.
	Facilitator string `json:"facilitator"`
}

// Claims is the JWT claim set: every receipt field plus the standard
// sub/iat/exp claims mirroring payer/paidAt/expiresAt.
type Claims struct {
	Receipt
	jwt.RegisteredClaims
}

// BuildParams are the inputs to Build.
type BuildParams struct {
	ContentID   string
	Payer       string
	Payee       string
	Amount      string
	Currency    string
	ChainID     int64
	TxHash      string
	Facilitator string

	// TTL defaults to DefaultTTL when zero.
	TTL time.Duration
}

// Build assembles an unsigned receipt with a fresh id, PaidAt = now and
// ExpiresAt = now + TTL.
func Build(p BuildParams) Receipt {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return Receipt{
		ID:          uuid.NewString(),
		ContentID:   p.ContentID,
		Payer:       p.Payer,
		Payee:       p.Payee,
		Amount:      p.Amount,
		Currency:    p.Currency,
		ChainID:     p.ChainID,
		TxHash:      p.TxHash,
		PaidAt:      now.Unix(),
		ExpiresAt:   now.Add(ttl).Unix(),
		Facilitator: p.Facilitator,
	}
}

// Sign signs a receipt with HMAC-SHA256 under the facilitator secret and
// returns the compact token.
func Sign(r Receipt, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret cannot be empty")
	}
	claims := Claims{
		Receipt: r,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   r.Payer,
			IssuedAt:  jwt.NewNumericDate(time.Unix(r.PaidAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(r.ExpiresAt, 0)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign receipt: %w", err)
	}
	return signed, nil
}

// VerifyOptions selects the verification mode. Exactly one of JWTSecret or
// FacilitatorPublicKey must be set; with neither, Verify fails. Use Decode
// for display-only access to a token's contents.
type VerifyOptions struct {
	// JWTSecret is the HMAC-SHA256 key shared with the facilitator.
	JWTSecret string

	// FacilitatorPublicKey is an ECDSA P-256 public key in SPKI form,
	// either PEM-encoded or raw base64 DER.
	FacilitatorPublicKey string

	// ExpectedContentID, when set, must match the receipt's content id.
	ExpectedContentID string
}

// Verify checks a receipt token's signature and validity window and returns
// the embedded receipt. Expiry is enforced in every mode; the content id is
// enforced when ExpectedContentID is set.
func Verify(token string, opts VerifyOptions) (*Receipt, error) {
	var claims Claims
	var err error

	switch {
	case opts.JWTSecret != "":
		_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			return []byte(opts.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

	case opts.FacilitatorPublicKey != "":
		var pub *ecdsa.PublicKey
		pub, err = parsePublicKey(opts.FacilitatorPublicKey)
		if err == nil {
			_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
				return pub, nil
			}, jwt.WithValidMethods([]string{"ES256"}))
		}

	default:
		return nil, paygate.NewPaymentError(paygate.ErrCodeReceiptInvalid, "no verification key configured", paygate.ErrReceiptInvalid)
	}

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, paygate.NewPaymentError(paygate.ErrCodeReceiptExpired, "receipt has expired", paygate.ErrReceiptExpired)
		}
		return nil, paygate.NewPaymentError(paygate.ErrCodeReceiptInvalid, "receipt verification failed", fmt.Errorf("%w: %v", paygate.ErrReceiptInvalid, err))
	}

	r := claims.Receipt

	// JWT parsing only checks exp when present; enforce the receipt's own
	// window too.
	if r.ExpiresAt <= time.Now().Unix() {
		return nil, paygate.NewPaymentError(paygate.ErrCodeReceiptExpired, "receipt has expired", paygate.ErrReceiptExpired)
	}

	if opts.ExpectedContentID != "" && r.ContentID != opts.ExpectedContentID {
		return nil, paygate.NewPaymentError(
			paygate.ErrCodeReceiptInvalid,
			fmt.Sprintf("receipt content id %q does not match expected %q", r.ContentID, opts.ExpectedContentID),
			paygate.ErrReceiptInvalid,
		)
	}

	return &r, nil
}

// Decode extracts the receipt from a token without any verification.
// Display-only; never use the result to authorize access.
func Decode(token string) (*Receipt, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeReceiptInvalid, "malformed receipt token", fmt.Errorf("%w: %v", paygate.ErrReceiptInvalid, err))
	}
	r := claims.Receipt
	return &r, nil
}

// parsePublicKey imports an ECDSA P-256 public key from SPKI bytes, accepting
// either a PEM block or raw base64 DER.
func parsePublicKey(key string) (*ecdsa.PublicKey, error) {
	der := []byte(key)
	if block, _ := pem.Decode([]byte(key)); block != nil {
		der = block.Bytes
	} else {
		decoded, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("%w: public key is neither PEM nor base64 DER", paygate.ErrReceiptInvalid)
		}
		der = decoded
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paygate.ErrReceiptInvalid, err)
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ECDSA public key", paygate.ErrReceiptInvalid)
	}
	return pub, nil
}
