package paygate

import (
	"encoding/json"
	"io"
	"net/http"
)

// ParsePaymentRequired extracts the payment announcement from a 402
// response. Each field is read from the JSON body first, with the X-402-*
// headers as fallback. Returns ErrInvalidPayment when any of payTo, price,
// contentId or network is missing from both.
//
// The response body is consumed; callers should not read it again.
func ParsePaymentRequired(resp *http.Response) (*PaymentRequest, error) {
	var fromBody PaymentRequest
	if resp.Body != nil {
		data, err := io.ReadAll(resp.Body)
		if err == nil && len(data) > 0 {
			// Tolerate an unparseable body; headers may still carry the fields.
			_ = json.Unmarshal(data, &fromBody)
		}
	}

	h := resp.Header
	pick := func(bodyValue, headerName string) string {
		if bodyValue != "" {
			return bodyValue
		}
		return h.Get(headerName)
	}

	req := &PaymentRequest{
		PayTo:          pick(fromBody.PayTo, HeaderPayTo),
		Price:          pick(fromBody.Price, HeaderPrice),
		Currency:       pick(fromBody.Currency, HeaderCurrency),
		ContentID:      pick(fromBody.ContentID, HeaderContentID),
		Network:        pick(fromBody.Network, HeaderNetwork),
		FacilitatorURL: pick(fromBody.FacilitatorURL, HeaderFacilitator),
		Description:    pick(fromBody.Description, HeaderDescription),
		Accepts:        fromBody.Accepts,
	}

	if req.PayTo == "" || req.Price == "" || req.ContentID == "" || req.Network == "" {
		return nil, ErrInvalidPayment
	}
	return req, nil
}
