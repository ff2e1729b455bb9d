// Package wallet holds the client-side signing key for the exact payment
// scheme. A Wallet can be loaded from a raw hex key, an encrypted keystore
// file, or a BIP-39 mnemonic, or generated fresh for one-shot use.
package wallet

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/eip3009"
)

// Wallet is a secp256k1 signing key and its derived address.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// FromHex loads a wallet from a hex-encoded private key, with or without a
// 0x prefix.
func FromHex(hexKey string) (*Wallet, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, paygate.ErrInvalidKey
	}
	return fromKey(privateKey), nil
}

// FromKeystore loads a wallet from an encrypted go-ethereum keystore file.
func FromKeystore(keystorePath, password string) (*Wallet, error) {
	data, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paygate.ErrInvalidKeystore, err)
	}

	var keyJSON struct {
		Crypto keystore.CryptoJSON `json:"crypto"`
	}
	if err := json.Unmarshal(data, &keyJSON); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON format", paygate.ErrInvalidKeystore)
	}

	privateKeyBytes, err := keystore.DecryptDataV3(keyJSON.Crypto, password)
	if err != nil {
		return nil, fmt.Errorf("%w: decryption failed", paygate.ErrInvalidKeystore)
	}

	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key", paygate.ErrInvalidKeystore)
	}
	return fromKey(privateKey), nil
}

// FromMnemonic derives a wallet from a BIP-39 mnemonic phrase using the
// standard Ethereum path m/44'/60'/0'/0/{accountIndex}.
func FromMnemonic(mnemonic string, accountIndex uint32) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, paygate.ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")
	privateKey, err := deriveEthereumKey(seed, accountIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paygate.ErrInvalidMnemonic, err)
	}
	return fromKey(privateKey), nil
}

// Generate creates an ephemeral wallet with a fresh random key. Used by the
// standalone agent mode for one-shot payments.
func Generate() (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromKey(privateKey), nil
}

func fromKey(privateKey *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// Address returns the wallet's Ethereum address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// SignAuthorization signs an EIP-3009 authorization under the stablecoin
// domain of net. The authorization's From must match the wallet address.
func (w *Wallet) SignAuthorization(auth paygate.TransferAuthorization, net paygate.Network) (string, error) {
	if !strings.EqualFold(auth.From, w.address.Hex()) {
		return "", fmt.Errorf("%w: from %s does not match wallet %s", paygate.ErrInvalidAuthorization, auth.From, w.address.Hex())
	}
	return eip3009.Sign(w.privateKey, auth, net)
}

// deriveEthereumKey derives an Ethereum private key from a BIP-39 seed.
// Follows BIP-44 path m/44'/60'/0'/0/{index}.
func deriveEthereumKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	// m/44'/60'/0'/0/{index}
	key, err := masterKey.NewChildKey(bip32.FirstHardenedChild + 44)
	if err != nil {
		return nil, err
	}
	key, err = key.NewChildKey(bip32.FirstHardenedChild + 60)
	if err != nil {
		return nil, err
	}
	key, err = key.NewChildKey(bip32.FirstHardenedChild + 0)
	if err != nil {
		return nil, err
	}
	key, err = key.NewChildKey(0)
	if err != nil {
		return nil, err
	}
	key, err = key.NewChildKey(index)
	if err != nil {
		return nil, err
	}

	return crypto.ToECDSA(key.Key)
}
