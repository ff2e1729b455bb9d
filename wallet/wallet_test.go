package wallet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"

	paygate "github.com/paygate-labs/paygate-go"
	"github.com/paygate-labs/paygate-go/eip3009"
)

// Well-known hardhat test key; never holds real funds.
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
const testKeyAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

const testMnemonic = "test test test test test test test test test test test junk"

func TestFromHex(t *testing.T) {
	for _, key := range []string{testKey, "0x" + testKey} {
		w, err := FromHex(key)
		if err != nil {
			t.Fatalf("FromHex(%q): %v", key, err)
		}
		if w.Address().Hex() != testKeyAddress {
			t.Errorf("address = %s, want %s", w.Address().Hex(), testKeyAddress)
		}
	}

	if _, err := FromHex("not-hex"); !errors.Is(err, paygate.ErrInvalidKey) {
		t.Errorf("error = %v, want ErrInvalidKey", err)
	}
}

func TestFromMnemonic(t *testing.T) {
	// The hardhat mnemonic derives the hardhat key at index 0.
	w, err := FromMnemonic(testMnemonic, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w.Address().Hex() != testKeyAddress {
		t.Errorf("address = %s, want %s", w.Address().Hex(), testKeyAddress)
	}

	// Different account indexes give different addresses.
	w1, err := FromMnemonic(testMnemonic, 1)
	if err != nil {
		t.Fatal(err)
	}
	if w1.Address() == w.Address() {
		t.Error("indexes 0 and 1 derived the same address")
	}

	if _, err := FromMnemonic("not a valid mnemonic phrase", 0); !errors.Is(err, paygate.ErrInvalidMnemonic) {
		t.Errorf("error = %v, want ErrInvalidMnemonic", err)
	}
}

func TestFromKeystore(t *testing.T) {
	keyBytes, err := hex.DecodeString(testKey)
	if err != nil {
		t.Fatal(err)
	}
	cryptoJSON, err := keystore.EncryptDataV3(keyBytes, []byte("hunter2"), keystore.LightScryptN, keystore.LightScryptP)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(map[string]any{"crypto": cryptoJSON})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := FromKeystore(path, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if w.Address().Hex() != testKeyAddress {
		t.Errorf("address = %s, want %s", w.Address().Hex(), testKeyAddress)
	}

	if _, err := FromKeystore(path, "wrong-password"); !errors.Is(err, paygate.ErrInvalidKeystore) {
		t.Errorf("error = %v, want ErrInvalidKeystore", err)
	}
	if _, err := FromKeystore(filepath.Join(t.TempDir(), "missing.json"), "x"); !errors.Is(err, paygate.ErrInvalidKeystore) {
		t.Errorf("error = %v, want ErrInvalidKeystore", err)
	}
}

func TestGenerate(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if a.Address() == b.Address() {
		t.Error("generated wallets share an address")
	}
}

func TestSignAuthorization(t *testing.T) {
	w, err := FromHex(testKey)
	if err != nil {
		t.Fatal(err)
	}

	auth := paygate.TransferAuthorization{
		From:        w.Address().Hex(),
		To:          "0x2222222222222222222222222222222222222222",
		Value:       "10000",
		ValidAfter:  0,
		ValidBefore: 1900000000,
		Nonce:       "0x" + strings.Repeat("cd", 32),
	}
	sig, err := w.SignAuthorization(auth, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}

	recovered, err := eip3009.Recover(auth, sig, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}
	if recovered != w.Address() {
		t.Errorf("recovered %s, want %s", recovered.Hex(), w.Address().Hex())
	}
}

func TestSignAuthorizationWrongFrom(t *testing.T) {
	w, err := FromHex(testKey)
	if err != nil {
		t.Fatal(err)
	}
	auth := paygate.TransferAuthorization{
		From:        "0x2222222222222222222222222222222222222222",
		To:          "0x3333333333333333333333333333333333333333",
		Value:       "10000",
		ValidBefore: 1900000000,
		Nonce:       "0x" + strings.Repeat("cd", 32),
	}
	if _, err := w.SignAuthorization(auth, paygate.BaseMainnet); !errors.Is(err, paygate.ErrInvalidAuthorization) {
		t.Errorf("error = %v, want ErrInvalidAuthorization", err)
	}
}
