// Package gin provides Gin-compatible receipt gating. It is a thin adapter
// that delegates all verification and 402 assembly to the http package.
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httppay "github.com/paygate-labs/paygate-go/http"
)

// PaymentContextKey is the Gin context key holding the verified PaymentInfo.
const PaymentContextKey = "paygate_payment"

// RequirePayment creates a Gin middleware gating handlers behind a receipt.
// On success the PaymentInfo is available both via c.Get(PaymentContextKey)
// and via httppay.FromContext on the request context.
//
// Example:
//
//	r := gin.Default()
//	r.Use(ginpay.RequirePayment(httppay.Config{
//	    Publisher: paygate.PublisherConfig{PayTo: "0x...", Price: "0.01"},
//	    JWTSecret: secret,
//	}))
//	r.GET("/premium", func(c *gin.Context) {
//	    info := c.MustGet(ginpay.PaymentContextKey).(*httppay.PaymentInfo)
//	    c.JSON(200, gin.H{"payer": info.Receipt.Payer})
//	})
func RequirePayment(cfg httppay.Config) gin.HandlerFunc {
	middleware := httppay.RequirePayment(cfg)

	return func(c *gin.Context) {
		proceeded := false
		handler := middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			proceeded = true
			c.Request = r
			if info := httppay.FromContext(r.Context()); info != nil {
				c.Set(PaymentContextKey, info)
			}
		}))

		handler.ServeHTTP(c.Writer, c.Request)
		if !proceeded {
			c.Abort()
			return
		}
		c.Next()
	}
}
