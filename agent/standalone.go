package agent

import (
	"context"
	"net/http"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/wallet"
)

// FetchOptions configures a one-shot FetchWithPayment call.
type FetchOptions struct {
	// Wallet pays for the resource. When nil an ephemeral wallet is
	// generated; that only works against facilitators in mock mode, since a
	// fresh key holds no funds.
	Wallet *wallet.Wallet

	// MaxPrice caps what this single fetch may pay, as a human-readable
	// price string. Empty means no cap.
	MaxPrice string

	// FacilitatorURL, when set, overrides the facilitator announced in the
	// 402 response.
	FacilitatorURL string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// FetchWithPayment fetches url, paying at most opts.MaxPrice. It is the
// stateless convenience entry point: no shared cache, no budget history
// beyond the single call.
func FetchWithPayment(ctx context.Context, url string, opts FetchOptions) (*http.Response, error) {
	w := opts.Wallet
	if w == nil {
		var err error
		if w, err = wallet.Generate(); err != nil {
			return nil, err
		}
	}

	var budgetCfg BudgetConfig
	if opts.MaxPrice != "" {
		maxAmount, err := paygate.ParsePrice(opts.MaxPrice)
		if err != nil {
			return nil, paygate.NewPaymentError(paygate.ErrCodePerRequestLimit, "malformed maxPrice", err)
		}
		budgetCfg.MaxPerRequest = maxAmount
	}
	budget, err := NewBudget(budgetCfg, nil)
	if err != nil {
		return nil, err
	}

	agentOpts := []Option{WithBudget(budget)}
	if opts.FacilitatorURL != "" {
		agentOpts = append(agentOpts, WithFacilitatorURL(opts.FacilitatorURL))
	}
	if opts.HTTPClient != nil {
		agentOpts = append(agentOpts, WithHTTPClient(opts.HTTPClient))
	}

	a, err := New(w, agentOpts...)
	if err != nil {
		return nil, err
	}
	return a.Fetch(ctx, url)
}
