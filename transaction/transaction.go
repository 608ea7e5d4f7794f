// Package transaction implements the Koto transaction wire codec: the
// version-gated transparent/Overwinter/Sapling layout, the JoinSplit and
// shielded sections (parsed and re-emitted as opaque byte ranges, never
// cryptographically verified), and the partial-serialization envelope used
// while a transaction is still being signed. Grounded on deserialize() and
// the Transaction class in the original Electrum-Koto transaction module;
// the struct-per-wire-section, ParseFromSlice(...) (*Transaction, error)
// idiom follows parser/transaction.go's precedent, generalized from Zcash's own
// v4/v5 layout to Koto's.
package transaction

import (
	"crypto/sha256"

	"github.com/koto-project/kotochain/chainhash"
	"github.com/koto-project/kotochain/internal/wire"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/pkg/errors"
)

// TxIn is one transparent input.
type TxIn struct {
	PrevTxHash     chainhash.Hash
	PrevTxOutIndex uint32
	ScriptSig      []byte
	Sequence       uint32
}

// TxOut is one transparent output.
type TxOut struct {
	Value        int64
	ScriptPubKey []byte
}

// ShieldedSpend is a Sapling spend description. Its fields are stored but
// never verified, and none of them enter the sighash: hashShieldedSpends
// is the all-zero digest.
type ShieldedSpend struct {
	CV           [32]byte
	Anchor       [32]byte
	Nullifier    [32]byte
	RK           [32]byte
	Groth        [192]byte
	SpendAuthSig [64]byte
}

// ShieldedOutput is a Sapling output description.
type ShieldedOutput struct {
	CV            [32]byte
	CM            [32]byte
	EphemeralKey  [32]byte
	EncCiphertext [580]byte
	OutCiphertext [80]byte
	Groth         [192]byte
}

// JoinSplit is a Sprout JoinSplit description. Proof is either a 192-byte
// Groth16 encoding (version >= 4) or a 296-byte PHGR13 bundle, copied
// verbatim; this package does not interpret its internal structure.
type JoinSplit struct {
	VpubOld      uint64
	VpubNew      uint64
	Anchor       [32]byte
	Nullifiers   [2][32]byte
	Commitments  [2][32]byte
	EphemeralKey [32]byte
	RandomSeed   [32]byte
	Macs         [2][32]byte
	Proof        []byte
	Ciphertexts  [2][noteCiphertextSize]byte
}

// Transaction is the deserialized form of a Koto transaction, spanning
// versions 1 (transparent), 2-3 (JoinSplits, Overwinter), and 4 (Sapling
// shielded spends/outputs).
type Transaction struct {
	Overwintered   bool
	Version        uint32
	VersionGroupID uint32

	Inputs  []*TxIn
	Outputs []*TxOut

	LockTime      uint32
	ExpiryHeight  uint32

	ValueBalance    int64
	ShieldedSpends  []*ShieldedSpend
	ShieldedOutputs []*ShieldedOutput

	JoinSplits       []*JoinSplit
	JoinSplitPubKey  [32]byte
	JoinSplitSig     [64]byte
	HasJoinSplitSig  bool

	BindingSig    [64]byte
	HasBindingSig bool

	// Partial records whether tx was read through the "EPTF\xff" envelope;
	// SerializePartial always re-wraps with it regardless of this flag.
	Partial bool
}

// Saplinged reports whether tx uses the Sapling wire layout (shielded
// spends/outputs, Groth proofs, a value balance).
func (tx *Transaction) Saplinged() bool { return tx.Version >= saplingVersion }

// hasJoinSplitSection reports whether tx's version carries a JoinSplit section at
// all (even if empty).
func (tx *Transaction) hasJoinSplitSection() bool { return tx.Version >= sproutVersion }

func (tx *Transaction) hasShieldedContent() bool {
	return len(tx.ShieldedSpends) > 0 || len(tx.ShieldedOutputs) > 0
}

// ParseFromSlice decodes a transaction from raw network bytes, or from
// bytes framed with the "EPTF\xff" partial-serialization envelope. It
// returns kotoerr.ErrSerializationError wrapped with context for any
// length, bound, or trailing-byte violation.
func ParseFromSlice(data []byte) (*Transaction, error) {
	partial := false
	if len(data) >= 6 && [5]byte(data[:5]) == partialHeaderMagic {
		if data[5] != partialFormatVersion {
			return nil, errors.Wrapf(kotoerr.ErrSerializationError,
				"unknown partial transaction format version %d", data[5])
		}
		data = data[6:]
		partial = true
	}

	r := wire.NewReader(data)
	tx := &Transaction{Partial: partial}

	word, err := r.ReadUint32()
	if err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "version word")
	}
	tx.Overwintered = word&overwinteredBit != 0
	tx.Version = word &^ overwinteredBit

	if tx.Version >= overwinterVersion {
		if tx.VersionGroupID, err = r.ReadUint32(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "versionGroupId")
		}
	}

	if tx.Inputs, err = parseInputs(r); err != nil {
		return nil, err
	}
	if tx.Outputs, err = parseOutputs(r); err != nil {
		return nil, err
	}

	if tx.LockTime, err = r.ReadUint32(); err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "lockTime")
	}
	if tx.Version >= overwinterVersion {
		if tx.ExpiryHeight, err = r.ReadUint32(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "expiryHeight")
		}
	}

	if tx.Saplinged() {
		if err := parseShieldedSection(r, tx); err != nil {
			return nil, err
		}
	}

	if tx.hasJoinSplitSection() {
		if err := parseJoinSplitSection(r, tx); err != nil {
			return nil, err
		}
	}

	if tx.Version >= saplingVersion && tx.hasShieldedContent() {
		b, err := r.ReadBytes(64)
		if err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "bindingSig")
		}
		copy(tx.BindingSig[:], b)
		tx.HasBindingSig = true
	}

	if !r.AtEnd() {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "trailing bytes after transaction")
	}
	return tx, nil
}

func parseInputs(r *wire.Reader) ([]*TxIn, error) {
	n, err := r.ReadCompactSize()
	if err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "input count")
	}
	ins := make([]*TxIn, n)
	for i := range ins {
		in := &TxIn{}
		h, err := r.ReadBytes(chainhash.Size)
		if err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "input prevout hash")
		}
		in.PrevTxHash, _ = chainhash.FromBytes(h)
		if in.PrevTxOutIndex, err = r.ReadUint32(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "input prevout index")
		}
		if in.ScriptSig, err = r.ReadCompactLengthPrefixed(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "input scriptSig")
		}
		if in.Sequence, err = r.ReadUint32(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "input sequence")
		}
		ins[i] = in
	}
	return ins, nil
}

func parseOutputs(r *wire.Reader) ([]*TxOut, error) {
	n, err := r.ReadCompactSize()
	if err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "output count")
	}
	outs := make([]*TxOut, n)
	for i := range outs {
		out := &TxOut{}
		if out.Value, err = r.ReadInt64(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "output value")
		}
		if out.Value < 0 || out.Value > maxOutputValue {
			return nil, errors.Wrapf(kotoerr.ErrSerializationError, "output value %d out of range", out.Value)
		}
		if out.ScriptPubKey, err = r.ReadCompactLengthPrefixed(); err != nil {
			return nil, errors.Wrap(kotoerr.ErrSerializationError, "output scriptPubKey")
		}
		outs[i] = out
	}
	return outs, nil
}

func parseShieldedSection(r *wire.Reader, tx *Transaction) error {
	var err error
	if tx.ValueBalance, err = r.ReadInt64(); err != nil {
		return errors.Wrap(kotoerr.ErrSerializationError, "valueBalance")
	}

	nSpend, err := r.ReadCompactSize()
	if err != nil {
		return errors.Wrap(kotoerr.ErrSerializationError, "shielded spend count")
	}
	tx.ShieldedSpends = make([]*ShieldedSpend, nSpend)
	for i := range tx.ShieldedSpends {
		b, err := r.ReadBytes(shieldedSpendSize)
		if err != nil {
			return errors.Wrap(kotoerr.ErrSerializationError, "shielded spend")
		}
		tx.ShieldedSpends[i] = decodeShieldedSpend(b)
	}

	nOutput, err := r.ReadCompactSize()
	if err != nil {
		return errors.Wrap(kotoerr.ErrSerializationError, "shielded output count")
	}
	tx.ShieldedOutputs = make([]*ShieldedOutput, nOutput)
	for i := range tx.ShieldedOutputs {
		b, err := r.ReadBytes(shieldedOutputSize)
		if err != nil {
			return errors.Wrap(kotoerr.ErrSerializationError, "shielded output")
		}
		tx.ShieldedOutputs[i] = decodeShieldedOutput(b)
	}
	return nil
}

func decodeShieldedSpend(b []byte) *ShieldedSpend {
	s := &ShieldedSpend{}
	off := 0
	take := func(n int) []byte { v := b[off : off+n]; off += n; return v }
	copy(s.CV[:], take(32))
	copy(s.Anchor[:], take(32))
	copy(s.Nullifier[:], take(32))
	copy(s.RK[:], take(32))
	copy(s.Groth[:], take(grothProofSize))
	copy(s.SpendAuthSig[:], take(64))
	return s
}

func decodeShieldedOutput(b []byte) *ShieldedOutput {
	o := &ShieldedOutput{}
	off := 0
	take := func(n int) []byte { v := b[off : off+n]; off += n; return v }
	copy(o.CV[:], take(32))
	copy(o.CM[:], take(32))
	copy(o.EphemeralKey[:], take(32))
	copy(o.EncCiphertext[:], take(580))
	copy(o.OutCiphertext[:], take(80))
	copy(o.Groth[:], take(grothProofSize))
	return o
}

func parseJoinSplitSection(r *wire.Reader, tx *Transaction) error {
	nJS, err := r.ReadCompactSize()
	if err != nil {
		return errors.Wrap(kotoerr.ErrSerializationError, "joinSplit count")
	}
	proofSize := phgrProofSize
	if tx.Version >= saplingVersion {
		proofSize = grothProofSize
	}

	tx.JoinSplits = make([]*JoinSplit, nJS)
	for i := range tx.JoinSplits {
		js, err := parseJoinSplit(r, proofSize)
		if err != nil {
			return err
		}
		tx.JoinSplits[i] = js
	}

	if nJS > 0 {
		pk, err := r.ReadBytes(32)
		if err != nil {
			return errors.Wrap(kotoerr.ErrSerializationError, "joinSplitPubKey")
		}
		copy(tx.JoinSplitPubKey[:], pk)
		sig, err := r.ReadBytes(64)
		if err != nil {
			return errors.Wrap(kotoerr.ErrSerializationError, "joinSplitSig")
		}
		copy(tx.JoinSplitSig[:], sig)
		tx.HasJoinSplitSig = true
	}
	return nil
}

func parseJoinSplit(r *wire.Reader, proofSize int) (*JoinSplit, error) {
	js := &JoinSplit{}
	var err error
	if js.VpubOld, err = r.ReadUint64(); err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "joinSplit vpub_old")
	}
	if js.VpubNew, err = r.ReadUint64(); err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "joinSplit vpub_new")
	}
	if err := readFixed(r, js.Anchor[:]); err != nil {
		return nil, err
	}
	for i := range js.Nullifiers {
		if err := readFixed(r, js.Nullifiers[i][:]); err != nil {
			return nil, err
		}
	}
	for i := range js.Commitments {
		if err := readFixed(r, js.Commitments[i][:]); err != nil {
			return nil, err
		}
	}
	if err := readFixed(r, js.EphemeralKey[:]); err != nil {
		return nil, err
	}
	if err := readFixed(r, js.RandomSeed[:]); err != nil {
		return nil, err
	}
	for i := range js.Macs {
		if err := readFixed(r, js.Macs[i][:]); err != nil {
			return nil, err
		}
	}
	if js.Proof, err = r.ReadBytes(proofSize); err != nil {
		return nil, errors.Wrap(kotoerr.ErrSerializationError, "joinSplit proof")
	}
	for i := range js.Ciphertexts {
		if err := readFixed(r, js.Ciphertexts[i][:]); err != nil {
			return nil, err
		}
	}
	return js, nil
}

func readFixed(r *wire.Reader, dst []byte) error {
	b, err := r.ReadBytes(len(dst))
	if err != nil {
		return errors.Wrap(kotoerr.ErrSerializationError, "joinSplit field")
	}
	copy(dst, b)
	return nil
}

// Serialize encodes tx in its network wire form, without the partial
// envelope.
func (tx *Transaction) Serialize() []byte {
	var w wire.Writer

	word := tx.Version
	if tx.Overwintered {
		word |= overwinteredBit
	}
	w.WriteUint32(word)
	if tx.Version >= overwinterVersion {
		w.WriteUint32(tx.VersionGroupID)
	}

	w.WriteCompactSize(len(tx.Inputs))
	for _, in := range tx.Inputs {
		w.WriteBytes(in.PrevTxHash[:])
		w.WriteUint32(in.PrevTxOutIndex)
		w.WriteCompactLengthPrefixed(in.ScriptSig)
		w.WriteUint32(in.Sequence)
	}

	w.WriteCompactSize(len(tx.Outputs))
	for _, out := range tx.Outputs {
		w.WriteInt64(out.Value)
		w.WriteCompactLengthPrefixed(out.ScriptPubKey)
	}

	w.WriteUint32(tx.LockTime)
	if tx.Version >= overwinterVersion {
		w.WriteUint32(tx.ExpiryHeight)
	}

	if tx.Saplinged() {
		w.WriteInt64(tx.ValueBalance)
		w.WriteCompactSize(len(tx.ShieldedSpends))
		for _, s := range tx.ShieldedSpends {
			w.WriteBytes(s.CV[:])
			w.WriteBytes(s.Anchor[:])
			w.WriteBytes(s.Nullifier[:])
			w.WriteBytes(s.RK[:])
			w.WriteBytes(s.Groth[:])
			w.WriteBytes(s.SpendAuthSig[:])
		}
		w.WriteCompactSize(len(tx.ShieldedOutputs))
		for _, o := range tx.ShieldedOutputs {
			w.WriteBytes(o.CV[:])
			w.WriteBytes(o.CM[:])
			w.WriteBytes(o.EphemeralKey[:])
			w.WriteBytes(o.EncCiphertext[:])
			w.WriteBytes(o.OutCiphertext[:])
			w.WriteBytes(o.Groth[:])
		}
	}

	if tx.hasJoinSplitSection() {
		w.WriteCompactSize(len(tx.JoinSplits))
		for _, js := range tx.JoinSplits {
			w.WriteUint64(js.VpubOld)
			w.WriteUint64(js.VpubNew)
			w.WriteBytes(js.Anchor[:])
			for i := range js.Nullifiers {
				w.WriteBytes(js.Nullifiers[i][:])
			}
			for i := range js.Commitments {
				w.WriteBytes(js.Commitments[i][:])
			}
			w.WriteBytes(js.EphemeralKey[:])
			w.WriteBytes(js.RandomSeed[:])
			for i := range js.Macs {
				w.WriteBytes(js.Macs[i][:])
			}
			w.WriteBytes(js.Proof)
			for i := range js.Ciphertexts {
				w.WriteBytes(js.Ciphertexts[i][:])
			}
		}
		if len(tx.JoinSplits) > 0 {
			w.WriteBytes(tx.JoinSplitPubKey[:])
			w.WriteBytes(tx.JoinSplitSig[:])
		}
	}

	if tx.Version >= saplingVersion && tx.hasShieldedContent() {
		w.WriteBytes(tx.BindingSig[:])
	}

	return w.Bytes()
}

// SerializePartial wraps Serialize's output with the "EPTF\xff" partial
// envelope used while a transaction is still being signed.
func (tx *Transaction) SerializePartial() []byte {
	out := make([]byte, 0, 6+len(tx.Serialize()))
	out = append(out, partialHeaderMagic[:]...)
	out = append(out, partialFormatVersion)
	out = append(out, tx.Serialize()...)
	return out
}

// GetEncodableHash returns the double-SHA256 of the wire serialization, in
// the byte order it appears on the wire (not reversed for display).
func (tx *Transaction) GetEncodableHash() chainhash.Hash {
	first := sha256.Sum256(tx.Serialize())
	second := sha256.Sum256(first[:])
	return chainhash.Hash(second)
}

// TxID returns the conventional, byte-reversed display hash of tx.
func (tx *Transaction) TxID() chainhash.Hash {
	return tx.GetEncodableHash().Reversed()
}

// IsComplete reports whether every transparent input carries a non-empty
// scriptSig. Ground: is_complete, simplified to the transparent-only
// signing path this package supports.
func (tx *Transaction) IsComplete() bool {
	for _, in := range tx.Inputs {
		if len(in.ScriptSig) == 0 {
			return false
		}
	}
	return true
}
