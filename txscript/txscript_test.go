package txscript

import (
	"bytes"
	"testing"
)

func compressedPubkey(b byte) []byte {
	pk := make([]byte, 33)
	pk[0] = 0x02
	pk[1] = b
	return pk
}

func TestClassifyPubKeyHash(t *testing.T) {
	hash160 := bytes.Repeat([]byte{0xab}, 20)
	script := append([]byte{opDup, opHash160, opData20}, hash160...)
	script = append(script, opEqualVerify, opCheckSig)

	class, payload := ClassifyOutputScript(script)
	if class != PubKeyHash {
		t.Fatalf("class = %v, want PubKeyHash", class)
	}
	if !bytes.Equal(payload, hash160) {
		t.Fatalf("payload = %x, want %x", payload, hash160)
	}
}

func TestClassifyScriptHash(t *testing.T) {
	hash160 := bytes.Repeat([]byte{0xcd}, 20)
	script := append([]byte{opHash160, opData20}, hash160...)
	script = append(script, opEqual)

	class, payload := ClassifyOutputScript(script)
	if class != ScriptHash || !bytes.Equal(payload, hash160) {
		t.Fatalf("got class=%v payload=%x", class, payload)
	}
}

func TestClassifyWitnessV0(t *testing.T) {
	prog20 := bytes.Repeat([]byte{1}, 20)
	s1 := append([]byte{op0, opData20}, prog20...)
	if class, payload := ClassifyOutputScript(s1); class != WitnessV0KeyHash || !bytes.Equal(payload, prog20) {
		t.Fatalf("witness v0 keyhash: class=%v payload=%x", class, payload)
	}

	prog32 := bytes.Repeat([]byte{2}, 32)
	s2 := append([]byte{op0, opData32}, prog32...)
	if class, payload := ClassifyOutputScript(s2); class != WitnessV0ScriptHash || !bytes.Equal(payload, prog32) {
		t.Fatalf("witness v0 scripthash: class=%v payload=%x", class, payload)
	}
}

func TestClassifyPubKey(t *testing.T) {
	pk := compressedPubkey(1)
	script := append([]byte{byte(len(pk))}, pk...)
	script = append(script, opCheckSig)

	class, payload := ClassifyOutputScript(script)
	if class != PubKey || !bytes.Equal(payload, pk) {
		t.Fatalf("got class=%v payload=%x", class, payload)
	}
}

func TestClassifyNonStandardFallsBackToRawScript(t *testing.T) {
	script := []byte{0x6a, 0x04, 1, 2, 3, 4} // OP_RETURN <4 bytes>
	class, payload := ClassifyOutputScript(script)
	if class != NonStandard {
		t.Fatalf("class = %v, want NonStandard", class)
	}
	if !bytes.Equal(payload, script) {
		t.Fatalf("payload = %x, want the raw script back", payload)
	}
}

func TestParseScriptSigPubKeyHash(t *testing.T) {
	sig := bytes.Repeat([]byte{0x30}, 71)
	pk := compressedPubkey(7)
	script := append([]byte{byte(len(sig))}, sig...)
	script = append(script, byte(len(pk)))
	script = append(script, pk...)

	info := ParseScriptSig(script)
	if info.Class != SigPubKeyHash {
		t.Fatalf("class = %v, want SigPubKeyHash", info.Class)
	}
	if !bytes.Equal(info.Pubkeys[0], pk) || !bytes.Equal(info.Signatures[0], sig) {
		t.Fatalf("unexpected sig/pubkey in %+v", info)
	}
}

func TestMultisigRoundTripThroughRedeemScript(t *testing.T) {
	pubkeys := [][]byte{compressedPubkey(1), compressedPubkey(2), compressedPubkey(3)}
	redeem := MultisigScript(pubkeys, 2)

	m, n, got, sanitized, err := ParseRedeemScriptMultisig(redeem)
	if err != nil {
		t.Fatalf("ParseRedeemScriptMultisig: %v", err)
	}
	if m != 2 || n != 3 {
		t.Fatalf("m=%d n=%d, want 2,3", m, n)
	}
	if len(got) != 3 {
		t.Fatalf("got %d pubkeys, want 3", len(got))
	}
	if !bytes.Equal(sanitized, redeem) {
		t.Fatalf("sanitized redeem script does not match the canonical encoding")
	}
}

func TestParseScriptSigScriptHashMultisig(t *testing.T) {
	pubkeys := [][]byte{compressedPubkey(1), compressedPubkey(2)}
	redeem := MultisigScript(pubkeys, 2)
	sig1 := bytes.Repeat([]byte{0x30}, 71)
	sig2 := bytes.Repeat([]byte{0x31}, 71)

	var script []byte
	script = append(script, op0)
	script = append(script, byte(len(sig1)))
	script = append(script, sig1...)
	script = append(script, byte(len(sig2)))
	script = append(script, sig2...)
	script = append(script, opPushData1, byte(len(redeem)))
	script = append(script, redeem...)

	info := ParseScriptSig(script)
	if info.Class != SigScriptHash {
		t.Fatalf("class = %v, want SigScriptHash", info.Class)
	}
	if info.M != 2 || len(info.Pubkeys) != 2 {
		t.Fatalf("unexpected multisig info: %+v", info)
	}
}

func TestParseRedeemScriptMultisigRejectsMismatchedCount(t *testing.T) {
	pubkeys := [][]byte{compressedPubkey(1)}
	redeem := MultisigScript(pubkeys, 1)
	redeem[len(redeem)-2] = byte(op1 + 1) // claim n=2 while only one pubkey is present

	if _, _, _, _, err := ParseRedeemScriptMultisig(redeem); err == nil {
		t.Fatal("expected a pubkey-count mismatch to be rejected")
	}
}
