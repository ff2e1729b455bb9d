// Package http provides receipt-gating middleware for resource servers. A
// request carrying a valid receipt for the requested content passes through;
// anything else receives a 402 response announcing the price.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/receipt"
)

// Config holds the middleware configuration.
type Config struct {
	// Publisher announces who gets paid, how much, and through which
	// facilitator.
	Publisher paygate.PublisherConfig

	// JWTSecret verifies receipt signatures (HS256). Exactly one of
	// JWTSecret or FacilitatorPublicKey must be set; with neither, every
	// request is answered with 402 regardless of any receipt presented.
	JWTSecret string

	// FacilitatorPublicKey verifies ES256 receipt signatures for servers
	// that never share the facilitator secret.
	FacilitatorPublicKey string

	// ContentID maps a request to its content id. Defaults to the request
	// path.
	ContentID func(r *http.Request) string

	// CacheTTL bounds how long verified receipts are remembered. Zero
	// selects the default.
	CacheTTL time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// contextKey is a private type for context keys.
type contextKey string

// paymentContextKey stores the verified PaymentInfo on the request context.
const paymentContextKey = contextKey("paygate_payment")

// PaymentInfo is what a protected handler can learn about the payment that
// admitted the request.
type PaymentInfo struct {
	// Receipt is the verified receipt.
	Receipt *receipt.Receipt

	// ContentID is the id the receipt was checked against.
	ContentID string

	// Token is the raw receipt token.
	Token string
}

// FromContext returns the payment info attached by RequirePayment, or nil
// when the request was not payment-gated.
func FromContext(ctx context.Context) *PaymentInfo {
	info, _ := ctx.Value(paymentContextKey).(*PaymentInfo)
	return info
}

// RequirePayment wraps handlers with receipt gating. Requests without a
// valid receipt for the content receive a 402 announcing the price;
// verified requests proceed with PaymentInfo on the context.
func RequirePayment(cfg Config) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	contentID := cfg.ContentID
	if contentID == nil {
		contentID = func(r *http.Request) string { return r.URL.Path }
	}
	cache := receipt.NewVerificationCache(cfg.CacheTTL, 0)
	keyConfigured := cfg.JWTSecret != "" || cfg.FacilitatorPublicKey != ""
	if !keyConfigured {
		logger.Error("payment middleware has no verification key; all receipts will be refused")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := contentID(r)

			token := paygate.ExtractReceipt(r.Header)
			if token == "" || !keyConfigured {
				logger.Info("payment required", "path", r.URL.Path, "contentId", id)
				if err := paygate.WritePaymentRequired(w, cfg.Publisher, id); err != nil {
					logger.Error("failed to write 402 response", "error", err)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
				return
			}

			rcpt := cache.Get(token)
			if rcpt == nil || rcpt.ContentID != id {
				var err error
				rcpt, err = receipt.Verify(token, receipt.VerifyOptions{
					JWTSecret:            cfg.JWTSecret,
					FacilitatorPublicKey: cfg.FacilitatorPublicKey,
					ExpectedContentID:    id,
				})
				if err != nil {
					logger.Info("receipt rejected",
						"path", r.URL.Path,
						"code", paygate.CodeOf(err),
					)
					if wErr := paygate.WritePaymentRequired(w, cfg.Publisher, id); wErr != nil {
						logger.Error("failed to write 402 response", "error", wErr)
						http.Error(w, "internal error", http.StatusInternalServerError)
					}
					return
				}
				cache.Put(token, rcpt)
			}

			info := &PaymentInfo{Receipt: rcpt, ContentID: id, Token: token}
			ctx := context.WithValue(r.Context(), paymentContextKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
