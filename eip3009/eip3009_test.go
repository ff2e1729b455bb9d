package eip3009

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	paygate "github.com/paygate-labs/paygate-go"
)

func testAuth(from string) paygate.TransferAuthorization {
	return paygate.TransferAuthorization{
		From:        from,
		To:          "0x2222222222222222222222222222222222222222",
		Value:       "10000",
		ValidAfter:  0,
		ValidBefore: 1900000000,
		Nonce:       "0x" + strings.Repeat("ab", 32),
	}
}

func TestSignRecoverRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	auth := testAuth(addr.Hex())

	sig, err := Sign(key, auth, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sig, "0x") || len(sig) != 132 {
		t.Fatalf("malformed signature: %s", sig)
	}

	recovered, err := Recover(auth, sig, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}
	if recovered != addr {
		t.Errorf("recovered %s, want %s", recovered.Hex(), addr.Hex())
	}
}

func TestRecoverDetectsTampering(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	auth := testAuth(addr.Hex())

	sig, err := Sign(key, auth, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}

	// Any change to the signed fields must break recovery.
	tampered := auth
	tampered.Value = "20000"
	recovered, err := Recover(tampered, sig, paygate.BaseMainnet)
	if err == nil && recovered == addr {
		t.Error("tampered value still recovers the signer")
	}

	// A different chain domain must too.
	recovered, err = Recover(auth, sig, paygate.BaseSepolia)
	if err == nil && recovered == addr {
		t.Error("signature valid across chains")
	}
}

func TestDigestDeterministic(t *testing.T) {
	auth := testAuth("0x1111111111111111111111111111111111111111")
	a, err := Digest(auth, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Digest(auth, paygate.BaseMainnet)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("digest not deterministic")
	}
	if len(a) != 32 {
		t.Errorf("digest length = %d", len(a))
	}

	c, err := Digest(auth, paygate.BaseSepolia)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(c) {
		t.Error("digest identical across chains")
	}
}

func TestSignatureComponents(t *testing.T) {
	sig := "0x" + strings.Repeat("11", 32) + strings.Repeat("22", 32) + "01"
	v, r, s, err := SignatureComponents(sig)
	if err != nil {
		t.Fatal(err)
	}
	if v != 28 {
		t.Errorf("v = %d, want 28 (1 normalized)", v)
	}
	if r[0] != 0x11 || s[0] != 0x22 {
		t.Errorf("r[0] = %x, s[0] = %x", r[0], s[0])
	}

	if _, _, _, err := SignatureComponents("0xabcd"); err == nil {
		t.Error("short signature accepted")
	}
}

func TestParseSignatureErrors(t *testing.T) {
	if _, err := parseSignature("0xzz"); err == nil {
		t.Error("non-hex signature accepted")
	}
	if _, err := parseSignature("0x" + strings.Repeat("ab", 64)); err == nil {
		t.Error("64-byte signature accepted")
	}
}
