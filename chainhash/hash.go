// Package chainhash holds the 32-byte hash type shared by block and
// transaction identifiers throughout the header chain and codec packages.
package chainhash

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Size is the number of bytes in a hash.
const Size = 32

// Hash is a 32-byte hash, such as a block id, txid, or merkle root. Values
// of this type are small enough to pass and return by value.
type Hash [Size]byte

// Zero is the all-zeros hash, used to represent an absent/virtual entry
// (e.g. the virtual header at height -1, or a tombstoned record).
var Zero = Hash{}

// FromBytes builds a Hash from a byte slice that must be exactly Size long.
func FromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, errors.Errorf("chainhash: invalid length %d, expected %d", len(b), Size)
	}
	copy(h[:], b)
	return h, nil
}

// Reversed returns a copy of h with its bytes reversed. Headers store
// hashes little-endian on the wire; the conventional hex "id" is printed
// big-endian, so every wire<->display conversion is a Reverse.
func (h Hash) Reversed() Hash {
	var r Hash
	for i := range h {
		r[i] = h[Size-1-i]
	}
	return r
}

// String returns the big-endian hex encoding, matching how block/tx ids are
// conventionally displayed.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zeros hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// NewFromStr decodes a 64-character hex string (big-endian display order)
// into a Hash.
func NewFromStr(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, errors.Wrap(err, "chainhash: decode hex")
	}
	return FromBytes(b)
}
