package transaction

// Format-version gates. A transaction's version field also carries the
// "overwintered" top bit on the wire once version >= overwinterVersion;
// see ParseFromSlice.
const (
	sproutVersion     = 2 // JoinSplits present
	overwinterVersion = 3 // versionGroupId + expiryHeight present
	saplingVersion    = 4 // shielded spends/outputs + Groth proofs present

	overwinterVersionGroupID = 0x02e7d970
	saplingVersionGroupID    = 0x9023e50a

	overwinteredBit = 1 << 31
)

// coin is the number of base units per whole coin; totalSupply bounds a
// parsed output's value (maxOutputValue = coin*totalSupply). The original
// Electrum-Koto source imports both from a constants module that wasn't
// part of the retrieved pack, so these are the conventional Bitcoin-derived
// values (100,000,000 base units/coin, 21,000,000,000 max coins) rather
// than figures taken from Koto's own chain parameters.
const (
	coin           = 100_000_000
	totalSupply    = 21_000_000_000
	maxOutputValue = coin * totalSupply
)

// Fixed field sizes for the opaque shielded/JoinSplit sections.
const (
	shieldedSpendSize  = 32 + 32 + 32 + 32 + 192 + 64  // cv,anchor,nullifier,rk,groth,spendAuthSig
	shieldedOutputSize = 32 + 32 + 32 + 580 + 80 + 192 // cv,cm,ephemeralKey,encCipher,outCipher,groth
	grothProofSize     = 192
	phgrProofSize      = 33 + 33 + 65 + 33 + 33 + 33 + 33 + 33
	noteCiphertextSize = 601
)

// partialHeaderMagic prefixes a not-yet-fully-signed transaction; see
// ParseFromSlice and SerializePartial. Ground: PARTIAL_TXN_HEADER_MAGIC.
var partialHeaderMagic = [5]byte{'E', 'P', 'T', 'F', 0xff}

const partialFormatVersion = 0x00

// BLAKE2b personalizations used by the sighash digest and its component
// hash trees. Ground: PREVOUTS_HASH_PERSON et al. and
// ZCASH_SIGHASH_PERSONALIZATION_PREFIX in the original transaction module.
var (
	personPrevouts      = [16]byte{'Z', 'c', 'a', 's', 'h', 'P', 'r', 'e', 'v', 'o', 'u', 't', 'H', 'a', 's', 'h'}
	personSequence      = [16]byte{'Z', 'c', 'a', 's', 'h', 'S', 'e', 'q', 'u', 'e', 'n', 'c', 'H', 'a', 's', 'h'}
	personOutputs       = [16]byte{'Z', 'c', 'a', 's', 'h', 'O', 'u', 't', 'p', 'u', 't', 's', 'H', 'a', 's', 'h'}
	personSigOverwinter = [16]byte{'Z', 'c', 'a', 's', 'h', 'S', 'i', 'g', 'H', 'a', 's', 'h', 0x19, 0x1b, 0xa8, 0x5b}
	personSigSapling    = [16]byte{'Z', 'c', 'a', 's', 'h', 'S', 'i', 'g', 'H', 'a', 's', 'h', 0xbb, 0x09, 0xb8, 0x76}
)

const sighashAll = 1
