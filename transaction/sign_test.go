package transaction

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

func TestSignProducesVerifiableSignature(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	tx := buildV1()
	ctx := InputContext{ScriptCode: []byte{0x76, 0xa9, 0x14}, Value: 5_000_000_000}

	sigWithType, err := Sign(tx, 0, ctx, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sigWithType) < 2 {
		t.Fatalf("signature too short: %d bytes", len(sigWithType))
	}
	hashType := sigWithType[len(sigWithType)-1]
	if hashType != sighashAll {
		t.Fatalf("trailing hash type = %d, want %d", hashType, sighashAll)
	}

	der := sigWithType[:len(sigWithType)-1]
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		t.Fatalf("ParseDERSignature: %v", err)
	}

	preimage := tx.SignaturePreimage(0, ctx.ScriptCode, ctx.Value)
	digest := tx.SigningDigest(preimage)
	if !sig.Verify(digest[:], priv.PubKey()) {
		t.Fatal("signature does not verify against the signing digest")
	}
}

func TestUpdateSignaturesRecoversMatchingPubkey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pub := priv.PubKey().SerializeCompressed()

	tx := buildV1()
	tx.Inputs[0].ScriptSig = nil
	ctx := InputContext{ScriptCode: []byte{0x76, 0xa9, 0x14}, Value: 5_000_000_000, Pubkeys: [][]byte{pub}}

	preimage := tx.SignaturePreimage(0, ctx.ScriptCode, ctx.Value)
	digest := tx.SigningDigest(preimage)
	compact, err := ecdsa.SignCompact(priv, digest[:], true)
	if err != nil {
		t.Fatalf("SignCompact: %v", err)
	}
	raw := compact[1:] // strip the recovery-id header byte UpdateSignatures re-derives itself

	if err := tx.UpdateSignatures([]InputContext{ctx}, [][]byte{raw}); err != nil {
		t.Fatalf("UpdateSignatures: %v", err)
	}
	if len(tx.Inputs[0].ScriptSig) == 0 {
		t.Fatal("expected UpdateSignatures to populate the input's scriptSig")
	}
}
