package paygate

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// PublisherConfig describes the party selling access to content.
type PublisherConfig struct {
	// PayTo is the publisher's receiving address.
	PayTo string

	// Price is the human-readable price per resource (e.g. "0.01").
	Price string

	// Currency is the stablecoin symbol, default "USDC".
	Currency string

	// Network is the registry key of the settlement chain, default "base-mainnet".
	Network string

	// FacilitatorURL is the facilitator endpoint clients should pay through.
	FacilitatorURL string

	// Description is an optional human-readable description.
	Description string
}

// PaymentRequired is an assembled 402 response: status code, headers, and
// JSON body.
type PaymentRequired struct {
	Status  int
	Headers http.Header
	Body    PaymentRequest
}

// BuildPaymentRequired assembles the 402 response announcing the price of
// contentID under cfg. The announcement carries the same information in
// headers and body, plus an "accepts" entry with the EIP-712 typed-data
// skeleton for the exact scheme.
func BuildPaymentRequired(cfg PublisherConfig, contentID string) (*PaymentRequired, error) {
	if cfg.PayTo == "" {
		return nil, fmt.Errorf("publisher payTo cannot be empty")
	}

	networkKey := cfg.Network
	if networkKey == "" {
		networkKey = BaseMainnet.Key
	}
	net, err := NetworkByKey(networkKey)
	if err != nil {
		return nil, err
	}

	currency := cfg.Currency
	if currency == "" {
		currency = net.TokenSymbol
	}

	smallest, err := ParsePrice(cfg.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid publisher price: %w", err)
	}

	headers := http.Header{}
	headers.Set(HeaderPayTo, cfg.PayTo)
	headers.Set(HeaderPrice, cfg.Price)
	headers.Set(HeaderCurrency, currency)
	headers.Set(HeaderNetwork, net.Key)
	headers.Set(HeaderFacilitator, cfg.FacilitatorURL)
	headers.Set(HeaderContentID, contentID)
	if cfg.Description != "" {
		headers.Set(HeaderDescription, cfg.Description)
	}
	headers.Set("Content-Type", "application/json")

	body := PaymentRequest{
		PayTo:          cfg.PayTo,
		Price:          cfg.Price,
		Currency:       currency,
		ContentID:      contentID,
		Network:        net.Key,
		FacilitatorURL: cfg.FacilitatorURL,
		Description:    cfg.Description,
		Accepts: []SchemeEntry{
			{
				Scheme:            SchemeExact,
				Network:           net.CAIP2,
				MaxAmountRequired: smallest,
				Resource:          contentID,
				Description:       cfg.Description,
				MimeType:          "application/json",
				Payload:           NewTypedDataSkeleton(net, cfg.PayTo, smallest),
			},
		},
	}

	return &PaymentRequired{
		Status:  http.StatusPaymentRequired,
		Headers: headers,
		Body:    body,
	}, nil
}

// WritePaymentRequired assembles and writes a 402 response for contentID.
func WritePaymentRequired(w http.ResponseWriter, cfg PublisherConfig, contentID string) error {
	pr, err := BuildPaymentRequired(cfg, contentID)
	if err != nil {
		return err
	}
	for name, values := range pr.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(pr.Status)
	// Ignore encoding errors - headers are already sent with 402 status.
	_ = json.NewEncoder(w).Encode(pr.Body)
	return nil
}
