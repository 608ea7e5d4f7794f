package transaction

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/pkg/errors"
)

// InputContext supplies the scriptCode and prevout value signing input i
// needs, since a Transaction carries no view of the UTXOs it spends.
type InputContext struct {
	ScriptCode []byte
	Value      int64
	// Pubkeys lists the candidate public keys (compressed, 33 bytes) that
	// may legitimately sign this input, e.g. a p2pkh address's single key
	// or a multisig redeem script's set.
	Pubkeys [][]byte
}

// Sign produces a DER-encoded ECDSA signature with the SIGHASH_ALL type
// byte appended, over input i's signature preimage. Ground: the signing
// half of update_signatures/sign, simplified to a single private key per
// call rather than a keyring.
func Sign(tx *Transaction, i int, ctx InputContext, priv *btcec.PrivateKey) ([]byte, error) {
	preimage := tx.SignaturePreimage(i, ctx.ScriptCode, ctx.Value)
	digest := tx.SigningDigest(preimage)

	sig := ecdsa.Sign(priv, digest[:])
	out := append(sig.Serialize(), byte(sighashAll))
	return out, nil
}

// UpdateSignatures applies each candidate compact-recoverable signature to
// the input it actually belongs to, by ECDSA public-key recovery: for each
// of the 4 possible recovery ids, recover a candidate pubkey from the
// signature and the input's digest, and accept the signature for that
// input only if the recovered key matches one of ctx.Pubkeys. A signature
// that doesn't recover to any known pubkey for any input is ignored. Ground:
// Transaction.update_signatures.
func (tx *Transaction) UpdateSignatures(contexts []InputContext, candidates [][]byte) error {
	if len(contexts) != len(tx.Inputs) {
		return errors.Wrap(kotoerr.ErrSerializationError, "update_signatures: context count mismatch")
	}

	for i, in := range tx.Inputs {
		if len(in.ScriptSig) > 0 {
			continue
		}
		ctx := contexts[i]
		preimage := tx.SignaturePreimage(i, ctx.ScriptCode, ctx.Value)
		digest := tx.SigningDigest(preimage)

		for _, raw := range candidates {
			der, matched := recoverAndMatch(digest, raw, ctx.Pubkeys)
			if !matched {
				continue
			}
			in.ScriptSig = append(der, byte(sighashAll))
			if len(ctx.Pubkeys) == 1 {
				in.ScriptSig = pushPubkeyScriptSig(in.ScriptSig, ctx.Pubkeys[0])
			}
			break
		}
	}
	return nil
}

// recoverAndMatch tries all 4 compact-signature recovery ids against raw
// (a 64-byte r||s signature with no header byte) and reports whether any
// of them recovers to a pubkey in want, returning that recovery's
// DER-encoded signature.
func recoverAndMatch(digest [32]byte, raw []byte, want [][]byte) ([]byte, bool) {
	if len(raw) != 64 {
		return nil, false
	}
	for recID := byte(0); recID < 4; recID++ {
		compact := make([]byte, 65)
		compact[0] = 27 + recID
		copy(compact[1:], raw)

		pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
		if err != nil {
			continue
		}
		compressed := pub.SerializeCompressed()
		for _, w := range want {
			if bytes.Equal(compressed, w) {
				return derFromCompact(raw), true
			}
		}
	}
	return nil, false
}

// derFromCompact re-derives a DER encoding of a 64-byte r||s signature by
// round-tripping it through ecdsa.NewSignature, avoiding a hand-rolled ASN.1
// encoder.
func derFromCompact(raw []byte) []byte {
	var r, s btcec.ModNScalar
	r.SetByteSlice(raw[:32])
	s.SetByteSlice(raw[32:])
	return ecdsa.NewSignature(&r, &s).Serialize()
}

func pushPubkeyScriptSig(sig []byte, pubkey []byte) []byte {
	out := make([]byte, 0, 2+len(sig)+len(pubkey))
	out = append(out, byte(len(sig)))
	out = append(out, sig...)
	out = append(out, byte(len(pubkey)))
	out = append(out, pubkey...)
	return out
}
