package agent

import (
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	paygate "github.com/paygate-labs/paygate-go"
)

// warnThreshold is the budget fraction past which a one-time warning fires.
const warnThreshold = 0.8

// BudgetConfig bounds what an agent may spend. Amounts are smallest-unit
// decimal strings; empty means unlimited.
type BudgetConfig struct {
	// MaxTotal caps lifetime spend across all requests.
	MaxTotal string

	// MaxPerRequest caps any single payment.
	MaxPerRequest string

	// AllowedDomains, when non-empty, restricts payments to these hosts.
	// Matching is case-insensitive and ignores ports.
	AllowedDomains []string
}

// Budget tracks agent spending against configured limits. Safe for
// concurrent use.
type Budget struct {
	mu sync.Mutex

	maxTotal      *big.Int
	maxPerRequest *big.Int
	domains       map[string]bool

	totalSpent *big.Int
	history    []paygate.PaymentRecord
	warned     bool

	logger *slog.Logger
}

// NewBudget creates a Budget from cfg. Malformed limit strings are rejected.
func NewBudget(cfg BudgetConfig, logger *slog.Logger) (*Budget, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Budget{
		totalSpent: new(big.Int),
		logger:     logger,
	}

	var err error
	if cfg.MaxTotal != "" {
		if b.maxTotal, err = paygate.ParseSmallestUnit(cfg.MaxTotal); err != nil {
			return nil, fmt.Errorf("maxTotal: %w", err)
		}
	}
	if cfg.MaxPerRequest != "" {
		if b.maxPerRequest, err = paygate.ParseSmallestUnit(cfg.MaxPerRequest); err != nil {
			return nil, fmt.Errorf("maxPerRequest: %w", err)
		}
	}
	if len(cfg.AllowedDomains) > 0 {
		b.domains = make(map[string]bool, len(cfg.AllowedDomains))
		for _, d := range cfg.AllowedDomains {
			b.domains[normalizeDomain(d)] = true
		}
	}
	return b, nil
}

// CheckSpend reports whether a payment of amount to domain is allowed.
// Checks run in a fixed order: domain allowlist, per-request cap, total cap.
func (b *Budget) CheckSpend(domain, amount string) error {
	value, err := paygate.ParseSmallestUnit(amount)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.domains != nil && !b.domains[normalizeDomain(domain)] {
		return paygate.NewPaymentError(
			paygate.ErrCodeDomainNotAllowed,
			fmt.Sprintf("domain %s is not on the allowlist", domain),
			nil,
		).WithDetails("domain", domain)
	}

	if b.maxPerRequest != nil && value.Cmp(b.maxPerRequest) > 0 {
		return paygate.NewPaymentError(
			paygate.ErrCodePerRequestLimit,
			fmt.Sprintf("payment of %s exceeds per-request limit %s", amount, b.maxPerRequest),
			nil,
		).WithDetails("amount", amount).WithDetails("limit", b.maxPerRequest.String())
	}

	if b.maxTotal != nil {
		projected := new(big.Int).Add(b.totalSpent, value)
		if projected.Cmp(b.maxTotal) > 0 {
			return paygate.NewPaymentError(
				paygate.ErrCodeBudgetExceeded,
				fmt.Sprintf("payment of %s would exceed total budget %s (spent %s)", amount, b.maxTotal, b.totalSpent),
				nil,
			).WithDetails("amount", amount).WithDetails("spent", b.totalSpent.String())
		}
	}
	return nil
}

// RecordSpend adds a completed payment to the running total and history, and
// fires the one-time warning when spending crosses 80% of the total cap.
func (b *Budget) RecordSpend(contentID, domain, amount string) error {
	value, err := paygate.ParseSmallestUnit(amount)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalSpent.Add(b.totalSpent, value)
	b.history = append(b.history, paygate.PaymentRecord{
		ContentID: contentID,
		Amount:    amount,
		Domain:    domain,
		Timestamp: time.Now().Unix(),
	})

	if b.maxTotal != nil && !b.warned {
		threshold := new(big.Float).Mul(new(big.Float).SetInt(b.maxTotal), big.NewFloat(warnThreshold))
		spent := new(big.Float).SetInt(b.totalSpent)
		if spent.Cmp(threshold) >= 0 {
			b.warned = true
			b.logger.Warn("budget warning",
				"spent", b.totalSpent.String(),
				"maxTotal", b.maxTotal.String(),
			)
		}
	}
	return nil
}

// Spent returns the lifetime spend in smallest units.
func (b *Budget) Spent() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalSpent.String()
}

// Remaining returns the remaining total budget, or "" when unlimited.
func (b *Budget) Remaining() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxTotal == nil {
		return ""
	}
	remaining := new(big.Int).Sub(b.maxTotal, b.totalSpent)
	if remaining.Sign() < 0 {
		return "0"
	}
	return remaining.String()
}

// History returns a copy of the payment history in order of payment.
func (b *Budget) History() []paygate.PaymentRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]paygate.PaymentRecord, len(b.history))
	copy(out, b.history)
	return out
}

// normalizeDomain lowercases a host and strips any port.
func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	return d
}
