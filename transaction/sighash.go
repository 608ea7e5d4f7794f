package transaction

import (
	"crypto/sha256"

	"github.com/koto-project/kotochain/internal/wire"
	"golang.org/x/crypto/blake2b"
)

// SignaturePreimage builds the byte string that gets hashed to produce the
// digest input i's signature commits to. scriptCode is the script (prevout
// scriptPubKey, or redeem script for p2sh) substituted in place of input
// i's own scriptSig, and inputValue is that input's prevout value — used
// only by the Overwinter/Sapling layout. Ground: serialize_preimage.
func (tx *Transaction) SignaturePreimage(i int, scriptCode []byte, inputValue int64) []byte {
	if tx.Overwintered {
		return tx.overwinterPreimage(i, scriptCode, inputValue)
	}
	return tx.legacyPreimage(i, scriptCode)
}

func (tx *Transaction) legacyPreimage(i int, scriptCode []byte) []byte {
	var w wire.Writer
	w.WriteUint32(tx.Version)

	w.WriteCompactSize(len(tx.Inputs))
	for k, in := range tx.Inputs {
		w.WriteBytes(in.PrevTxHash[:])
		w.WriteUint32(in.PrevTxOutIndex)
		if k == i {
			w.WriteCompactLengthPrefixed(scriptCode)
		} else {
			w.WriteCompactLengthPrefixed(nil)
		}
		w.WriteUint32(in.Sequence)
	}

	w.WriteCompactSize(len(tx.Outputs))
	for _, out := range tx.Outputs {
		w.WriteInt64(out.Value)
		w.WriteCompactLengthPrefixed(out.ScriptPubKey)
	}

	w.WriteUint32(tx.LockTime)
	w.WriteUint32(sighashAll)
	return w.Bytes()
}

func (tx *Transaction) overwinterPreimage(i int, scriptCode []byte, inputValue int64) []byte {
	var w wire.Writer

	word := tx.Version | overwinteredBit
	w.WriteUint32(word)
	w.WriteUint32(tx.VersionGroupID)

	w.WriteBytes(tx.hashPrevouts())
	w.WriteBytes(tx.hashSequence())
	w.WriteBytes(tx.hashOutputs())
	w.WriteBytes(tx.hashJoinSplits())
	if tx.Saplinged() {
		w.WriteBytes(tx.hashShieldedSpends())
		w.WriteBytes(tx.hashShieldedOutputs())
	}

	w.WriteUint32(tx.LockTime)
	w.WriteUint32(tx.ExpiryHeight)
	if tx.Saplinged() {
		// The preimage always hashes a zero valueBalance here, regardless
		// of tx.ValueBalance: only transparent-input signing is supported,
		// and that path never has a nonzero Sapling value balance to sign.
		w.WriteInt64(0)
	}
	w.WriteUint32(sighashAll)

	in := tx.Inputs[i]
	w.WriteBytes(in.PrevTxHash[:])
	w.WriteUint32(in.PrevTxOutIndex)
	w.WriteCompactLengthPrefixed(scriptCode)
	w.WriteInt64(inputValue)
	w.WriteUint32(in.Sequence)

	return w.Bytes()
}

// SigningDigest hashes a signature preimage with the personalization
// appropriate to tx's version: no personalization (plain SHA256d) for
// legacy transactions, ZcashSigHash+Overwinter's branch id for
// Overwinter, or +Sapling's for Sapling. Ground: the final hash step of
// serialize_preimage/sign.
func (tx *Transaction) SigningDigest(preimage []byte) [32]byte {
	if !tx.Overwintered {
		first := sha256.Sum256(preimage)
		return sha256.Sum256(first[:])
	}
	person := personSigOverwinter
	if tx.Saplinged() {
		person = personSigSapling
	}
	return blake2bPersonalized(person, preimage)
}

func (tx *Transaction) hashPrevouts() []byte {
	var w wire.Writer
	for _, in := range tx.Inputs {
		w.WriteBytes(in.PrevTxHash[:])
		w.WriteUint32(in.PrevTxOutIndex)
	}
	d := blake2bPersonalized(personPrevouts, w.Bytes())
	return d[:]
}

func (tx *Transaction) hashSequence() []byte {
	var w wire.Writer
	for _, in := range tx.Inputs {
		w.WriteUint32(in.Sequence)
	}
	d := blake2bPersonalized(personSequence, w.Bytes())
	return d[:]
}

func (tx *Transaction) hashOutputs() []byte {
	var w wire.Writer
	for _, out := range tx.Outputs {
		w.WriteInt64(out.Value)
		w.WriteCompactLengthPrefixed(out.ScriptPubKey)
	}
	d := blake2bPersonalized(personOutputs, w.Bytes())
	return d[:]
}

// hashJoinSplits is the zero digest: this codec only signs transactions
// whose JoinSplit content is untouched (transparent-input signing), so
// there is no JoinSplit-bearing preimage content to hash, matching
// serialize_preimage's hashJoinSplits placeholder.
func (tx *Transaction) hashJoinSplits() []byte {
	return make([]byte, 32)
}

func (tx *Transaction) hashShieldedSpends() []byte {
	return make([]byte, 32)
}

func (tx *Transaction) hashShieldedOutputs() []byte {
	return make([]byte, 32)
}

func blake2bPersonalized(person [16]byte, data []byte) [32]byte {
	h, err := blake2b.New256(&blake2b.Config{Person: person[:]})
	if err != nil {
		panic("transaction: blake2b.New256 with 16-byte Person: " + err.Error())
	}
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
