// Package facilitator implements the settlement service: it validates signed
// payment payloads, executes the stablecoin transfers (split between the
// publisher and the facilitator fee), and mints signed receipts.
package facilitator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the facilitator's runtime configuration, loaded from the
// environment.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// JWTSecret signs minted receipts. Required.
	JWTSecret string

	// FeePercent is the facilitator's cut of every payment, in percent.
	FeePercent float64

	// FacilitatorURL is the public URL embedded in minted receipts.
	FacilitatorURL string

	// MockTransfers selects the mock executor: transfers are simulated and
	// receipts carry deterministic pseudo transaction hashes.
	MockTransfers bool

	// PrivateKey is the facilitator's hot-wallet key used to submit
	// transferWithAuthorization transactions. Required unless MockTransfers.
	PrivateKey string

	// RPCURL is the JSON-RPC endpoint for on-chain settlement. Required
	// unless MockTransfers.
	RPCURL string

	// ReceiptTTLSeconds is how long minted receipts stay valid.
	ReceiptTTLSeconds int64
}

// LoadConfig reads configuration from the environment, applying defaults.
func LoadConfig() *Config {
	return &Config{
		Port:              getInt("PORT", 4020),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		FeePercent:        getFloat("FEE_PERCENT", 2.0),
		FacilitatorURL:    getEnv("FACILITATOR_URL", "http://localhost:4020"),
		MockTransfers:     getBool("MOCK_TRANSFERS", true),
		PrivateKey:        getEnv("FACILITATOR_PRIVATE_KEY", ""),
		RPCURL:            getEnv("RPC_URL", ""),
		ReceiptTTLSeconds: int64(getInt("RECEIPT_TTL_SECONDS", 86400)),
	}
}

// Validate checks the configuration for completeness and sane ranges.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.FeePercent < 0 || c.FeePercent > 50 {
		return fmt.Errorf("FEE_PERCENT must be between 0 and 50, got %g", c.FeePercent)
	}
	if c.ReceiptTTLSeconds < 1 {
		return fmt.Errorf("RECEIPT_TTL_SECONDS must be positive, got %d", c.ReceiptTTLSeconds)
	}
	if !c.MockTransfers {
		if c.PrivateKey == "" {
			return fmt.Errorf("FACILITATOR_PRIVATE_KEY is required when MOCK_TRANSFERS is false")
		}
		if c.RPCURL == "" {
			return fmt.Errorf("RPC_URL is required when MOCK_TRANSFERS is false")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}
