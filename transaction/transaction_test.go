package transaction

import (
	"bytes"
	"testing"

	"github.com/koto-project/kotochain/internal/wire"
)

func buildV1() *Transaction {
	return &Transaction{
		Version: 1,
		Inputs: []*TxIn{
			{PrevTxOutIndex: 0, ScriptSig: []byte{0x01, 0x02}, Sequence: 0xffffffff},
		},
		Outputs: []*TxOut{
			{Value: 5_000_000_000, ScriptPubKey: []byte{0x76, 0xa9, 0x14}},
		},
		LockTime: 0,
	}
}

func buildV4() *Transaction {
	tx := &Transaction{
		Overwintered:   true,
		Version:        4,
		VersionGroupID: saplingVersionGroupID,
		Inputs: []*TxIn{
			{PrevTxOutIndex: 1, ScriptSig: []byte{}, Sequence: 0xfffffffe},
		},
		Outputs: []*TxOut{
			{Value: 1_000, ScriptPubKey: []byte{0x00, 0x14}},
		},
		LockTime:     1234,
		ExpiryHeight: 5000,
		ValueBalance: 0,
	}
	return tx
}

func TestRoundTripV1Transparent(t *testing.T) {
	tx := buildV1()
	encoded := tx.Serialize()

	got, err := ParseFromSlice(encoded)
	if err != nil {
		t.Fatalf("ParseFromSlice: %v", err)
	}
	if got.Version != 1 || got.Overwintered {
		t.Fatalf("got version=%d overwintered=%v", got.Version, got.Overwintered)
	}
	if !bytes.Equal(got.Serialize(), encoded) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRoundTripV4SaplingNoShieldedContent(t *testing.T) {
	tx := buildV4()
	encoded := tx.Serialize()

	got, err := ParseFromSlice(encoded)
	if err != nil {
		t.Fatalf("ParseFromSlice: %v", err)
	}
	if !got.Saplinged() {
		t.Fatal("expected Saplinged() true for version 4")
	}
	if got.HasBindingSig {
		t.Fatal("bindingSig must be absent with no shielded spends/outputs")
	}
	if !bytes.Equal(got.Serialize(), encoded) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRoundTripV4WithShieldedSpendRequiresBindingSig(t *testing.T) {
	tx := buildV4()
	spend := &ShieldedSpend{}
	spend.CV[0] = 0xaa
	tx.ShieldedSpends = []*ShieldedSpend{spend}
	tx.BindingSig[0] = 0x77

	encoded := tx.Serialize()
	got, err := ParseFromSlice(encoded)
	if err != nil {
		t.Fatalf("ParseFromSlice: %v", err)
	}
	if !got.HasBindingSig || got.BindingSig[0] != 0x77 {
		t.Fatalf("bindingSig not recovered: %+v", got.BindingSig)
	}
	if len(got.ShieldedSpends) != 1 || got.ShieldedSpends[0].CV[0] != 0xaa {
		t.Fatalf("shielded spend not recovered: %+v", got.ShieldedSpends)
	}
	if !bytes.Equal(got.Serialize(), encoded) {
		t.Fatalf("round trip mismatch")
	}
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	tx := buildV1()
	encoded := append(tx.Serialize(), 0x00)
	if _, err := ParseFromSlice(encoded); err == nil {
		t.Fatal("expected trailing-byte rejection")
	}
}

func TestParseRejectsOutOfRangeOutputValue(t *testing.T) {
	tx := buildV1()
	tx.Outputs[0].Value = maxOutputValue + 1
	encoded := tx.Serialize()
	if _, err := ParseFromSlice(encoded); err == nil {
		t.Fatal("expected out-of-range output value to be rejected")
	}
}

func TestParseRejectsNegativeOutputValue(t *testing.T) {
	// Built by hand with a wire.Writer so the encoding under test does not
	// depend on Transaction.Serialize.
	var w wire.Writer
	w.WriteUint32(1)
	w.WriteCompactSize(0)
	w.WriteCompactSize(1)
	w.WriteInt64(-1)
	w.WriteCompactLengthPrefixed(nil)
	w.WriteUint32(0)

	if _, err := ParseFromSlice(w.Bytes()); err == nil {
		t.Fatal("expected negative output value to be rejected")
	}
}

func TestPartialEnvelopeRoundTrip(t *testing.T) {
	tx := buildV1()
	wrapped := tx.SerializePartial()

	got, err := ParseFromSlice(wrapped)
	if err != nil {
		t.Fatalf("ParseFromSlice: %v", err)
	}
	if !got.Partial {
		t.Fatal("expected Partial=true when parsed through the envelope")
	}
	if !bytes.Equal(got.SerializePartial(), wrapped) {
		t.Fatal("partial envelope round trip mismatch")
	}
}

func TestPartialEnvelopeUnknownVersionRejected(t *testing.T) {
	tx := buildV1()
	wrapped := tx.SerializePartial()
	wrapped[5] = 0x01

	if _, err := ParseFromSlice(wrapped); err == nil {
		t.Fatal("expected unknown partial format version to be rejected")
	}
}

func TestIsCompleteReflectsScriptSigPresence(t *testing.T) {
	tx := buildV1()
	if !tx.IsComplete() {
		t.Fatal("expected complete: input already carries a scriptSig")
	}
	tx.Inputs[0].ScriptSig = nil
	if tx.IsComplete() {
		t.Fatal("expected incomplete: input has no scriptSig")
	}
}

func TestTxIDIsByteReversedEncodableHash(t *testing.T) {
	tx := buildV1()
	id := tx.TxID()
	enc := tx.GetEncodableHash()
	if id != enc.Reversed() {
		t.Fatal("TxID must be the byte-reversed display form of GetEncodableHash")
	}
}
