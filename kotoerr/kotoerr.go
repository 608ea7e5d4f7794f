// Package kotoerr defines the sentinel error kinds shared across the header
// chain and transaction codec packages. Callers use errors.Is against these
// values; the packages that raise them wrap with github.com/pkg/errors to
// attach context without losing the underlying kind.
package kotoerr

import "errors"

var (
	// ErrMissingHeader: requested height not present in this chain's file.
	ErrMissingHeader = errors.New("kotoerr: missing header")
	// ErrInvalidHeader: length or structure wrong on deserialization.
	ErrInvalidHeader = errors.New("kotoerr: invalid header")
	// ErrHashMismatch: recomputed header id does not match the expected hash.
	ErrHashMismatch = errors.New("kotoerr: hash mismatch")
	// ErrPrevHashMismatch: header.prev_block_hash does not match the chain's
	// previous header id.
	ErrPrevHashMismatch = errors.New("kotoerr: prev hash mismatch")
	// ErrBitsMismatch: target_to_bits(target) does not equal header.bits.
	ErrBitsMismatch = errors.New("kotoerr: bits mismatch")
	// ErrInsufficientProofOfWork: PoW hash exceeds the required target.
	ErrInsufficientProofOfWork = errors.New("kotoerr: insufficient proof of work")
	// ErrInvalidBits: malformed compact target encoding.
	ErrInvalidBits = errors.New("kotoerr: invalid bits")
	// ErrSerializationError: transaction codec ran past end of buffer, saw
	// trailing junk, or read an illegal value.
	ErrSerializationError = errors.New("kotoerr: serialization error")
	// ErrNotRecognizedRedeemScript: a redeem script didn't match any known
	// multisig/standard pattern.
	ErrNotRecognizedRedeemScript = errors.New("kotoerr: not recognized redeem script")
	// ErrMalformedBitcoinScript: a script failed to parse into opcodes/pushes.
	ErrMalformedBitcoinScript = errors.New("kotoerr: malformed bitcoin script")
	// ErrUnknownTxinType: scriptSig didn't match any recognized input type.
	ErrUnknownTxinType = errors.New("kotoerr: unknown txin type")
	// ErrReorgLoop: swap_with_parent loop exceeded its safety bound.
	ErrReorgLoop = errors.New("kotoerr: reorg loop exceeded safety bound")
	// ErrForkBelowCheckpoint: a fork's forkpoint is at or below max_checkpoint.
	ErrForkBelowCheckpoint = errors.New("kotoerr: fork at or below checkpoint")
)
