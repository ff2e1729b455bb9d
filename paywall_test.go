package paygate

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testPublisherConfig() PublisherConfig {
	return PublisherConfig{
		PayTo:          "0x2222222222222222222222222222222222222222",
		Price:          "0.01",
		Network:        "base-mainnet",
		FacilitatorURL: "http://facilitator.test",
		Description:    "Premium article",
	}
}

func TestBuildPaymentRequired(t *testing.T) {
	pr, err := BuildPaymentRequired(testPublisherConfig(), "example.com/articles/42")
	if err != nil {
		t.Fatal(err)
	}

	if pr.Status != http.StatusPaymentRequired {
		t.Errorf("status = %d", pr.Status)
	}
	if got := pr.Headers.Get(HeaderPayTo); got != "0x2222222222222222222222222222222222222222" {
		t.Errorf("payTo = %q", got)
	}
	if got := pr.Headers.Get(HeaderNetwork); got != "base-mainnet" {
		t.Errorf("network = %q", got)
	}
	if got := pr.Headers.Get(HeaderContentID); got != "example.com/articles/42" {
		t.Errorf("contentId = %q", got)
	}
	if pr.Body.Currency != "USDC" {
		t.Errorf("currency default = %q", pr.Body.Currency)
	}

	if len(pr.Body.Accepts) != 1 {
		t.Fatalf("accepts = %d entries", len(pr.Body.Accepts))
	}
	entry := pr.Body.Accepts[0]
	if entry.Scheme != SchemeExact || entry.Network != "eip155:8453" {
		t.Errorf("accepts entry = %+v", entry)
	}
	if entry.MaxAmountRequired != "10000" {
		t.Errorf("maxAmountRequired = %q", entry.MaxAmountRequired)
	}
	if entry.Payload == nil || entry.Payload.Domain.Name != "USD Coin" {
		t.Errorf("typed-data skeleton = %+v", entry.Payload)
	}
}

func TestBuildPaymentRequiredErrors(t *testing.T) {
	cfg := testPublisherConfig()
	cfg.PayTo = ""
	if _, err := BuildPaymentRequired(cfg, "x"); err == nil {
		t.Error("expected error for missing payTo")
	}

	cfg = testPublisherConfig()
	cfg.Network = "unknown-chain"
	if _, err := BuildPaymentRequired(cfg, "x"); err == nil {
		t.Error("expected error for unknown network")
	}

	cfg = testPublisherConfig()
	cfg.Price = "-1"
	if _, err := BuildPaymentRequired(cfg, "x"); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestBuildPaymentRequiredIdempotent(t *testing.T) {
	a, err := BuildPaymentRequired(testPublisherConfig(), "example.com/a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildPaymentRequired(testPublisherConfig(), "example.com/a")
	if err != nil {
		t.Fatal(err)
	}

	aJSON, _ := json.Marshal(a.Body)
	bJSON, _ := json.Marshal(b.Body)
	if !bytes.Equal(aJSON, bJSON) {
		t.Error("repeated builds differ")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WritePaymentRequired(rec, testPublisherConfig(), "example.com/articles/42"); err != nil {
		t.Fatal(err)
	}

	resp := rec.Result()
	defer resp.Body.Close()
	req, err := ParsePaymentRequired(resp)
	if err != nil {
		t.Fatal(err)
	}
	if req.PayTo != "0x2222222222222222222222222222222222222222" {
		t.Errorf("payTo = %q", req.PayTo)
	}
	if req.Price != "0.01" || req.Network != "base-mainnet" {
		t.Errorf("parsed = %+v", req)
	}
	if req.ContentID != "example.com/articles/42" {
		t.Errorf("contentId = %q", req.ContentID)
	}
	if len(req.Accepts) != 1 {
		t.Errorf("accepts lost in round trip: %+v", req.Accepts)
	}
}

func TestParsePaymentRequiredHeaderFallback(t *testing.T) {
	// Empty body; headers carry everything.
	resp := &http.Response{
		Header: http.Header{},
		Body:   io.NopCloser(strings.NewReader("")),
	}
	resp.Header.Set(HeaderPayTo, "0x2222222222222222222222222222222222222222")
	resp.Header.Set(HeaderPrice, "0.05")
	resp.Header.Set(HeaderContentID, "example.com/x")
	resp.Header.Set(HeaderNetwork, "base-sepolia")

	req, err := ParsePaymentRequired(resp)
	if err != nil {
		t.Fatal(err)
	}
	if req.Price != "0.05" || req.Network != "base-sepolia" {
		t.Errorf("parsed = %+v", req)
	}
}

func TestParsePaymentRequiredBodyWins(t *testing.T) {
	body, _ := json.Marshal(PaymentRequest{
		PayTo:     "0x2222222222222222222222222222222222222222",
		Price:     "0.01",
		ContentID: "from-body",
		Network:   "base-mainnet",
	})
	resp := &http.Response{
		Header: http.Header{},
		Body:   io.NopCloser(bytes.NewReader(body)),
	}
	resp.Header.Set(HeaderContentID, "from-header")

	req, err := ParsePaymentRequired(resp)
	if err != nil {
		t.Fatal(err)
	}
	if req.ContentID != "from-body" {
		t.Errorf("contentId = %q, body should win over header", req.ContentID)
	}
}

func TestParsePaymentRequiredMissingFields(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{},
		Body:   io.NopCloser(strings.NewReader("{}")),
	}
	if _, err := ParsePaymentRequired(resp); err == nil {
		t.Error("expected error for missing required fields")
	}
}

func TestExtractReceiptOrder(t *testing.T) {
	h := http.Header{}
	if got := ExtractReceipt(h); got != "" {
		t.Errorf("empty headers = %q", got)
	}

	h.Set("Authorization", "X402 from-auth")
	if got := ExtractReceipt(h); got != "from-auth" {
		t.Errorf("auth fallback = %q", got)
	}

	h.Set(HeaderPayment, "from-x-payment")
	if got := ExtractReceipt(h); got != "from-x-payment" {
		t.Errorf("X-PAYMENT should beat Authorization: %q", got)
	}

	h.Set(HeaderReceipt, "from-receipt")
	if got := ExtractReceipt(h); got != "from-receipt" {
		t.Errorf("X-402-Receipt should win: %q", got)
	}

	// Non-X402 authorization schemes are ignored.
	h2 := http.Header{}
	h2.Set("Authorization", "Bearer abc")
	if got := ExtractReceipt(h2); got != "" {
		t.Errorf("bearer token misread as receipt: %q", got)
	}
}
