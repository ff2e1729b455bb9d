package facilitator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/eip3009"
	"github.com/paygate-labs/paygate-go/encoding"
	"github.com/paygate-labs/paygate-go/receipt"
	"github.com/paygate-labs/paygate-go/validation"
)

// Version is the service version reported by the health endpoint.
const Version = "1.0.0"

// Handler processes settlement requests. Each request moves through a fixed
// sequence: shape validation, network lookup, signature recovery, time-window
// check, fee split, transfer execution, receipt minting.
type Handler struct {
	cfg      *Config
	executor TransferExecutor
	logger   *slog.Logger
}

// NewHandler creates a Handler. A nil logger selects slog.Default().
func NewHandler(cfg *Config, executor TransferExecutor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{cfg: cfg, executor: executor, logger: logger}
}

// Settle handles POST settlement requests.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload, err := decodeSettleRequest(r)
	if err != nil {
		h.reject(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validation.ValidatePayload(payload); err != nil {
		h.logger.Info("payment rejected", "reason", err.Error())
		h.reject(w, http.StatusBadRequest, err.Error())
		return
	}

	net, err := paygate.NetworkByCAIP2(payload.Network)
	if err != nil {
		h.reject(w, http.StatusBadRequest, fmt.Sprintf("Unsupported network: %s", payload.Network))
		return
	}

	auth := payload.Payload.Authorization
	recovered, err := eip3009.Recover(auth, payload.Payload.Signature, net)
	if err != nil {
		h.reject(w, http.StatusBadRequest, "Invalid signature")
		return
	}
	if !strings.EqualFold(recovered.Hex(), auth.From) {
		h.logger.Info("signature mismatch", "recovered", recovered.Hex(), "claimed", auth.From)
		h.reject(w, http.StatusBadRequest, fmt.Sprintf("Signature mismatch: signed by %s, claimed %s", recovered.Hex(), auth.From))
		return
	}

	now := time.Now().Unix()
	if now >= auth.ValidBefore {
		h.reject(w, http.StatusBadRequest, "Authorization expired")
		return
	}
	if now < auth.ValidAfter {
		h.reject(w, http.StatusBadRequest, "Authorization not yet valid")
		return
	}

	value, err := paygate.ParseSmallestUnit(auth.Value)
	if err != nil {
		h.reject(w, http.StatusBadRequest, err.Error())
		return
	}
	split := SplitFee(value, h.cfg.FeePercent)

	result, err := h.executor.Execute(r.Context(), auth, payload.Payload.Signature, net)
	if err != nil || !result.Success {
		h.logger.Error("transfer execution failed", "error", err, "payer", auth.From, "value", auth.Value)
		h.reject(w, http.StatusInternalServerError, "Transfer execution failed")
		return
	}

	rcpt := receipt.Build(receipt.BuildParams{
		ContentID:   payload.Resource,
		Payer:       recovered.Hex(),
		Payee:       auth.To,
		Amount:      split.Publisher.String(),
		Currency:    net.TokenSymbol,
		ChainID:     net.ChainID,
		TxHash:      result.TxHash,
		Facilitator: h.cfg.FacilitatorURL,
		TTL:         time.Duration(h.cfg.ReceiptTTLSeconds) * time.Second,
	})

	token, err := receipt.Sign(rcpt, h.cfg.JWTSecret)
	if err != nil {
		h.logger.Error("receipt signing failed", "error", err)
		h.reject(w, http.StatusInternalServerError, "Failed to sign receipt")
		return
	}

	h.logger.Info("payment settled",
		"payer", recovered.Hex(),
		"payee", auth.To,
		"value", auth.Value,
		"publisherAmount", split.Publisher.String(),
		"fee", split.Fee.String(),
		"network", net.Key,
		"txHash", result.TxHash,
		"contentId", payload.Resource,
		"duration", time.Since(start),
	)

	writeJSON(w, http.StatusOK, paygate.SettleResponse{
		Receipt: token,
		TxHash:  result.TxHash,
	})
}

// Health handles GET health checks.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"service":  "paygate-facilitator",
		"version":  Version,
		"mockMode": h.cfg.MockTransfers,
	})
}

// decodeSettleRequest reads the payment payload from the X-PAYMENT header
// when present, falling back to the JSON request body.
func decodeSettleRequest(r *http.Request) (paygate.PaymentPayload, error) {
	if encoded := r.Header.Get(paygate.HeaderPayment); encoded != "" {
		payload, err := encoding.DecodePayment(encoded)
		if err != nil {
			return payload, errors.New("Invalid X-PAYMENT header")
		}
		return payload, nil
	}

	var payload paygate.PaymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, errors.New("Invalid JSON body")
	}
	return payload, nil
}

func (h *Handler) reject(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, paygate.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
