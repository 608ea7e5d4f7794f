package transaction

import (
	"bytes"
	"testing"
)

func TestLegacyPreimageSubstitutesScriptCodeOnlyAtSignedIndex(t *testing.T) {
	tx := buildV1()
	tx.Inputs = append(tx.Inputs, &TxIn{PrevTxOutIndex: 2, ScriptSig: []byte{0x03}, Sequence: 1})

	scriptCode := []byte{0x76, 0xa9, 0x14, 0xaa}
	p0 := tx.legacyPreimage(0, scriptCode)
	p1 := tx.legacyPreimage(1, scriptCode)

	if bytes.Equal(p0, p1) {
		t.Fatal("preimages for different signed inputs must differ")
	}
	if !bytes.Contains(p0, scriptCode) {
		t.Fatal("preimage for index 0 must contain the substituted scriptCode")
	}
}

func TestOverwinterPreimageChangesWithOutpoint(t *testing.T) {
	tx := buildV4()
	scriptCode := []byte{0x00, 0x14, 0xbb}

	p1 := tx.overwinterPreimage(0, scriptCode, 1000)
	tx.Inputs[0].PrevTxOutIndex = 99
	p2 := tx.overwinterPreimage(0, scriptCode, 1000)

	if bytes.Equal(p1, p2) {
		t.Fatal("changing the input outpoint must change the preimage")
	}
}

func TestSigningDigestDeterministicAndSensitiveToInput(t *testing.T) {
	tx := buildV4()
	scriptCode := []byte{0x00, 0x14, 0xcc}

	p := tx.overwinterPreimage(0, scriptCode, 500)
	d1 := tx.SigningDigest(p)
	d2 := tx.SigningDigest(p)
	if d1 != d2 {
		t.Fatal("SigningDigest must be deterministic for the same preimage")
	}

	tx.Inputs[0].PrevTxHash[0] ^= 0xff
	p2 := tx.overwinterPreimage(0, scriptCode, 500)
	d3 := tx.SigningDigest(p2)
	if d1 == d3 {
		t.Fatal("changing the outpoint hash must change the resulting digest")
	}
}

func TestSigningDigestUsesSaplingPersonalizationWhenSaplinged(t *testing.T) {
	tx := buildV4()
	scriptCode := []byte{0x00, 0x14, 0xdd}
	preimage := tx.overwinterPreimage(0, scriptCode, 500)
	saplingDigest := tx.SigningDigest(preimage)

	tx.Version = overwinterVersion
	tx.VersionGroupID = overwinterVersionGroupID
	overwinterDigest := tx.SigningDigest(preimage)

	if saplingDigest == overwinterDigest {
		t.Fatal("Sapling and Overwinter personalizations must produce different digests for the same bytes")
	}
}

func TestHashJoinSplitsIsZeroWhenAbsent(t *testing.T) {
	tx := buildV1()
	h := tx.hashJoinSplits()
	if len(h) != 32 {
		t.Fatalf("hashJoinSplits length = %d, want 32", len(h))
	}
	for _, b := range h {
		if b != 0 {
			t.Fatal("hashJoinSplits must be all-zero when there are no JoinSplits")
		}
	}
}
