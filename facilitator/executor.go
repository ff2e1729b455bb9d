package facilitator

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/eip3009"
)

// transferWithAuthSelector is the 4-byte selector for
// transferWithAuthorization on EIP-3009 tokens.
var transferWithAuthSelector = crypto.Keccak256([]byte(
	"transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32)",
))[:4]

// TransferResult reports the outcome of a transfer execution.
type TransferResult struct {
	// TxHash is the settlement transaction hash.
	TxHash string

	// Success indicates the transfer was accepted.
	Success bool
}

// TransferExecutor moves the authorized funds. The mock implementation
// simulates settlement for development; the chain implementation submits a
// real transferWithAuthorization transaction.
type TransferExecutor interface {
	Execute(ctx context.Context, auth paygate.TransferAuthorization, signature string, net paygate.Network) (*TransferResult, error)
}

// MockExecutor simulates settlement without touching any chain. The
// transaction hash is derived deterministically from the authorization nonce
// so repeated runs and tests see stable values.
type MockExecutor struct{}

// NewMockExecutor creates a MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Execute returns a successful result with a pseudo transaction hash.
func (e *MockExecutor) Execute(_ context.Context, auth paygate.TransferAuthorization, _ string, _ paygate.Network) (*TransferResult, error) {
	nonceBytes, err := hex.DecodeString(strings.TrimPrefix(auth.Nonce, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed nonce", paygate.ErrInvalidAuthorization)
	}
	hash := crypto.Keccak256(nonceBytes)
	return &TransferResult{
		TxHash:  "0x" + hex.EncodeToString(hash),
		Success: true,
	}, nil
}

// ChainExecutor submits transferWithAuthorization transactions to the
// stablecoin contract, paying gas from the facilitator's hot wallet. A mutex
// serializes submissions so account nonces stay ordered.
type ChainExecutor struct {
	rpcURL     string
	privateKey *ecdsa.PrivateKey
	address    common.Address

	mu sync.Mutex
}

// NewChainExecutor creates a ChainExecutor from a hex-encoded private key.
func NewChainExecutor(rpcURL, privateKeyHex string) (*ChainExecutor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: facilitator key", paygate.ErrInvalidKey)
	}
	return &ChainExecutor{
		rpcURL:     rpcURL,
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the hot wallet address paying gas for settlements.
func (e *ChainExecutor) Address() common.Address {
	return e.address
}

// Execute submits the authorized transfer to net's stablecoin contract and
// returns once the transaction is accepted by the RPC node. It does not wait
// for confirmation.
func (e *ChainExecutor) Execute(ctx context.Context, auth paygate.TransferAuthorization, signature string, net paygate.Network) (*TransferResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	callData, err := packTransferWithAuthorization(auth, signature)
	if err != nil {
		return nil, err
	}
	tokenAddr := common.HexToAddress(net.TokenAddress)

	client, err := ethclient.DialContext(ctx, e.rpcURL)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeRPCError, "failed to connect to RPC endpoint", err)
	}
	defer client.Close()

	txNonce, err := client.PendingNonceAt(ctx, e.address)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeRPCError, "failed to fetch account nonce", err)
	}

	// Gas estimation with a safe fallback and a 20% buffer.
	gasLimit := uint64(100_000)
	if est, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: e.address,
		To:   &tokenAddr,
		Data: callData,
	}); err == nil {
		gasLimit = est * 12 / 10
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeRPCError, "failed to fetch latest header", err)
	}
	tip := big.NewInt(1e9)
	feeCap := new(big.Int).Add(header.BaseFee, tip)

	chainID := big.NewInt(net.ChainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     txNonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &tokenAddr,
		Value:     new(big.Int),
		Data:      callData,
	})

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), e.privateKey)
	if err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeSigningFailed, "failed to sign settlement transaction", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, paygate.NewPaymentError(paygate.ErrCodeRPCError, "failed to submit settlement transaction", fmt.Errorf("%w: %v", paygate.ErrSettlementFailed, err))
	}

	return &TransferResult{
		TxHash:  signed.Hash().Hex(),
		Success: true,
	}, nil
}

// packTransferWithAuthorization ABI-encodes the transferWithAuthorization
// call: nine static 32-byte slots after the selector.
func packTransferWithAuthorization(auth paygate.TransferAuthorization, signature string) ([]byte, error) {
	value, err := paygate.ParseSmallestUnit(auth.Value)
	if err != nil {
		return nil, err
	}

	v, r, s, err := eip3009.SignatureComponents(signature)
	if err != nil {
		return nil, err
	}

	nonceBytes, err := hex.DecodeString(strings.TrimPrefix(auth.Nonce, "0x"))
	if err != nil || len(nonceBytes) != 32 {
		return nil, fmt.Errorf("%w: malformed nonce", paygate.ErrInvalidAuthorization)
	}

	data := make([]byte, 4+9*32)
	copy(data[:4], transferWithAuthSelector)
	offset := 4
	copy(data[offset+12:offset+32], common.HexToAddress(auth.From).Bytes())
	offset += 32
	copy(data[offset+12:offset+32], common.HexToAddress(auth.To).Bytes())
	offset += 32
	copy(data[offset:offset+32], pad32(value))
	offset += 32
	copy(data[offset:offset+32], pad32(big.NewInt(auth.ValidAfter)))
	offset += 32
	copy(data[offset:offset+32], pad32(big.NewInt(auth.ValidBefore)))
	offset += 32
	copy(data[offset:offset+32], nonceBytes)
	offset += 32
	data[offset+31] = v
	offset += 32
	copy(data[offset:offset+32], r[:])
	offset += 32
	copy(data[offset:offset+32], s[:])
	return data, nil
}

// pad32 left-pads a big integer to a 32-byte slot.
func pad32(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}
