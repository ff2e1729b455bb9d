// Package agent implements the paying HTTP client: it fetches resources,
// reacts to 402 responses by signing and submitting payments through a
// facilitator, caches the resulting receipts, and enforces spending limits.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/receipt"
	"github.com/paygate-labs/paygate-go/retry"
	"github.com/paygate-labs/paygate-go/wallet"
)

// authorizationWindow is how long a signed authorization stays valid.
const authorizationWindow = time.Hour

// fallbackReceiptTTL bounds cache entries when a receipt carries no usable
// expiry.
const fallbackReceiptTTL = 24 * time.Hour

// Agent is an HTTP client that pays for 402-protected resources.
type Agent struct {
	wallet   *wallet.Wallet
	budget   *Budget
	cache    *ReceiptCache
	client   *http.Client
	retryCfg retry.Config
	events   emitter
	logger   *slog.Logger

	// facilitatorURL, when set, overrides the facilitator announced in 402
	// responses.
	facilitatorURL string
}

// Option configures an Agent.
type Option func(*Agent)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Agent) { a.client = client }
}

// WithBudget sets the agent's spending limits.
func WithBudget(b *Budget) Option {
	return func(a *Agent) { a.budget = b }
}

// WithRetryConfig overrides the facilitator retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(a *Agent) { a.retryCfg = cfg }
}

// WithLogger sets the agent's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithPaymentCallback registers a payment lifecycle listener.
func WithPaymentCallback(cb paygate.PaymentCallback) Option {
	return func(a *Agent) { a.events.subscribe(cb) }
}

// WithFacilitatorURL pins all payments to one facilitator, ignoring the URL
// announced in 402 responses.
func WithFacilitatorURL(url string) Option {
	return func(a *Agent) { a.facilitatorURL = url }
}

// New creates an Agent paying from w.
func New(w *wallet.Wallet, opts ...Option) (*Agent, error) {
	if w == nil {
		return nil, fmt.Errorf("wallet is required")
	}
	a := &Agent{
		wallet:   w,
		cache:    NewReceiptCache(),
		client:   &http.Client{Timeout: 30 * time.Second},
		retryCfg: retry.DefaultConfig,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.budget == nil {
		// Unlimited by default.
		b, err := NewBudget(BudgetConfig{}, a.logger)
		if err != nil {
			return nil, err
		}
		a.budget = b
	}
	return a, nil
}

// Budget returns the agent's budget tracker.
func (a *Agent) Budget() *Budget {
	return a.budget
}

// Cache returns the agent's receipt cache.
func (a *Agent) Cache() *ReceiptCache {
	return a.cache
}

// Fetch GETs url, paying for it if the server demands payment.
func (a *Agent) Fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return a.Do(req)
}

// Do executes req, handling the 402 payment flow transparently. On a 402 the
// agent pays through the announced facilitator and retries the request with
// the minted receipt attached.
func (a *Agent) Do(req *http.Request) (*http.Response, error) {
	contentID := req.URL.Host + req.URL.Path
	domain := req.URL.Hostname()

	if token := a.cache.Get(contentID); token != "" {
		resp, err := a.send(req, token)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusPaymentRequired {
			return resp, nil
		}
		// Receipt no longer honored; drop it and pay again.
		a.cache.Evict(contentID)
		token, err = a.payFor(req, resp, contentID, domain)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return a.send(req, token)
	}

	resp, err := a.send(req, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return resp, nil
	}

	token, err := a.payFor(req, resp, contentID, domain)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	return a.send(req, token)
}

// send issues one copy of req, attaching token to both receipt headers when
// present.
func (a *Agent) send(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	if token != "" {
		clone.Header.Set(paygate.HeaderReceipt, token)
		clone.Header.Set(paygate.HeaderPayment, token)
	}
	resp, err := a.client.Do(clone)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeNetworkError, "request failed", err)
	}
	return resp, nil
}

// payFor runs the payment sub-flow for a 402 response and returns the minted
// receipt token.
func (a *Agent) payFor(req *http.Request, resp *http.Response, contentID, domain string) (string, error) {
	payReq, err := paygate.ParsePaymentRequired(resp)
	if err != nil {
		return "", paygate.NewPaymentError(paygate.ErrCodeInvalid402Response, "malformed 402 response", err)
	}

	amount, err := paygate.ParsePrice(payReq.Price)
	if err != nil {
		return "", paygate.NewPaymentError(paygate.ErrCodeInvalid402Response, "unparseable price in 402 response", err)
	}

	a.events.emit(paygate.PaymentEvent{
		Type:      paygate.PaymentEventStarted,
		Timestamp: time.Now(),
		ContentID: contentID,
		Amount:    amount,
		Domain:    domain,
	})

	token, txHash, err := a.pay(req, payReq, contentID, domain, amount)
	if err != nil {
		a.events.emit(paygate.PaymentEvent{
			Type:      paygate.PaymentEventFailed,
			Timestamp: time.Now(),
			ContentID: contentID,
			Amount:    amount,
			Domain:    domain,
			Err:       err,
		})
		return "", err
	}

	a.events.emit(paygate.PaymentEvent{
		Type:            paygate.PaymentEventSuccess,
		Timestamp:       time.Now(),
		ContentID:       contentID,
		Amount:          amount,
		Domain:          domain,
		TxHash:          txHash,
		BudgetRemaining: a.budget.Remaining(),
	})
	return token, nil
}

func (a *Agent) pay(req *http.Request, payReq *paygate.PaymentRequest, contentID, domain, amount string) (string, string, error) {
	if err := a.budget.CheckSpend(domain, amount); err != nil {
		return "", "", err
	}

	net, err := paygate.NetworkByKey(payReq.Network)
	if err != nil {
		return "", "", paygate.NewPaymentError(paygate.ErrCodeInvalid402Response, "unsupported network in 402 response", err)
	}

	nonce, err := paygate.NewNonce()
	if err != nil {
		return "", "", paygate.NewPaymentError(paygate.ErrCodeSigningFailed, "failed to generate nonce", err)
	}

	auth := paygate.TransferAuthorization{
		From:        a.wallet.Address().Hex(),
		To:          payReq.PayTo,
		Value:       amount,
		ValidAfter:  0,
		ValidBefore: time.Now().Add(authorizationWindow).Unix(),
		Nonce:       nonce,
	}
	sig, err := a.wallet.SignAuthorization(auth, net)
	if err != nil {
		return "", "", paygate.NewPaymentError(paygate.ErrCodeSigningFailed, "failed to sign authorization", err)
	}

	payload := paygate.PaymentPayload{
		X402Version: paygate.X402Version,
		Scheme:      paygate.SchemeExact,
		Network:     net.CAIP2,
		Resource:    contentID,
		Payload: paygate.ExactPayload{
			Signature:     sig,
			Authorization: auth,
		},
	}

	facilitatorURL := a.facilitatorURL
	if facilitatorURL == "" {
		facilitatorURL = payReq.FacilitatorURL
	}
	if facilitatorURL == "" {
		return "", "", paygate.NewPaymentError(paygate.ErrCodeInvalid402Response, "402 response names no facilitator", nil)
	}

	settled, err := retry.Do(req.Context(), a.retryCfg, isRetryable, func() (*paygate.SettleResponse, error) {
		return a.settle(req, facilitatorURL, payload)
	})
	if err != nil {
		return "", "", err
	}

	expiresAt := time.Now().Add(fallbackReceiptTTL)
	if r, err := receipt.Decode(settled.Receipt); err == nil && r.ExpiresAt > 0 {
		expiresAt = time.Unix(r.ExpiresAt, 0)
	}
	a.cache.Set(contentID, settled.Receipt, expiresAt)

	if err := a.budget.RecordSpend(contentID, domain, amount); err != nil {
		return "", "", err
	}

	a.logger.Info("payment completed",
		"contentId", contentID,
		"amount", amount,
		"domain", domain,
		"txHash", settled.TxHash,
	)
	return settled.Receipt, settled.TxHash, nil
}

// settle POSTs the payment payload to the facilitator and classifies
// failures: transport errors and 5xx responses are retryable, 4xx rejections
// are final.
func (a *Agent) settle(req *http.Request, facilitatorURL string, payload paygate.PaymentPayload) (*paygate.SettleResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodePaymentFailed, "failed to marshal payment", err)
	}

	httpReq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, facilitatorURL, bytes.NewReader(body))
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodePaymentFailed, "failed to build facilitator request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeNetworkError, "facilitator unreachable", fmt.Errorf("%w: %v", paygate.ErrFacilitatorUnavailable, err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusOK:
		var settled paygate.SettleResponse
		if err := json.Unmarshal(respBody, &settled); err != nil || settled.Receipt == "" {
			return nil, paygate.NewPaymentError(paygate.ErrCodeFacilitatorError, "facilitator returned malformed response", err)
		}
		return &settled, nil

	case resp.StatusCode >= 500:
		return nil, paygate.NewPaymentError(
			paygate.ErrCodeFacilitatorError,
			fmt.Sprintf("facilitator error (%d): %s", resp.StatusCode, errorMessage(respBody)),
			paygate.ErrFacilitatorUnavailable,
		)

	default:
		return nil, paygate.NewPaymentError(
			paygate.ErrCodePaymentFailed,
			fmt.Sprintf("payment rejected (%d): %s", resp.StatusCode, errorMessage(respBody)),
			nil,
		)
	}
}

// isRetryable retries transient transport and facilitator failures; budget
// violations and payment rejections are final.
func isRetryable(err error) bool {
	switch paygate.CodeOf(err) {
	case paygate.ErrCodeNetworkError, paygate.ErrCodeFacilitatorError, paygate.ErrCodeTimeout:
		return true
	}
	return false
}

func errorMessage(body []byte) string {
	var er paygate.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
