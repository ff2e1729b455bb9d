// Package chi provides chi-compatible receipt gating. chi middleware is
// plain func(http.Handler) http.Handler, so this is a direct re-export of
// the http package middleware under the conventional chi naming.
package chi

import (
	"net/http"

	httppay "github.com/paygate-labs/paygate-go/http"
)

// RequirePayment creates a chi middleware gating routes behind a receipt.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(chipay.RequirePayment(httppay.Config{
//	    Publisher: paygate.PublisherConfig{PayTo: "0x...", Price: "0.01"},
//	    JWTSecret: secret,
//	}))
func RequirePayment(cfg httppay.Config) func(http.Handler) http.Handler {
	return httppay.RequirePayment(cfg)
}
