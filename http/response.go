package http

import (
	"net/http"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/encoding"
)

// SetPaymentResponse attaches settlement info to a paid response via the
// X-PAYMENT-RESPONSE header. Must be called before the response body is
// written.
func SetPaymentResponse(w http.ResponseWriter, info paygate.SettlementInfo) error {
	encoded, err := encoding.EncodeSettlement(info)
	if err != nil {
		return err
	}
	w.Header().Set(paygate.HeaderPaymentResponse, encoded)
	return nil
}

// GetPaymentResponse reads settlement info from a response's
// X-PAYMENT-RESPONSE header. Returns false when the header is absent or
// undecodable.
func GetPaymentResponse(resp *http.Response) (paygate.SettlementInfo, bool) {
	encoded := resp.Header.Get(paygate.HeaderPaymentResponse)
	if encoded == "" {
		return paygate.SettlementInfo{}, false
	}
	info, err := encoding.DecodeSettlement(encoded)
	if err != nil {
		return paygate.SettlementInfo{}, false
	}
	return info, true
}
