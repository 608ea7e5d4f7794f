package txscript

// Class identifies the recognized shape of a scriptPubKey.
type Class int

const (
	// NonStandard is returned (with the raw script as Payload) for any
	// script that does not match one of the recognized patterns, matching
	// get_address_from_output_script's TYPE_SCRIPT fallback.
	NonStandard Class = iota
	PubKey
	PubKeyHash
	ScriptHash
	WitnessV0KeyHash
	WitnessV0ScriptHash
)

// ClassifyOutputScript recognizes a scriptPubKey's shape and extracts its
// payload: the raw pubkey for PubKey, or the hash160/sha256 program for
// the hash-based classes. Ground: get_address_from_output_script.
func ClassifyOutputScript(script []byte) (Class, []byte) {
	decoded, err := disassemble(script)
	if err != nil {
		return NonStandard, script
	}

	if len(decoded) == 2 && decoded[0].isPush() && decoded[1].Opcode == opCheckSig &&
		isPubkeyBytes(decoded[0].Data) {
		return PubKey, decoded[0].Data
	}

	if len(decoded) == 5 &&
		decoded[0].Opcode == opDup && decoded[1].Opcode == opHash160 &&
		decoded[2].isPush() && len(decoded[2].Data) == opData20 &&
		decoded[3].Opcode == opEqualVerify && decoded[4].Opcode == opCheckSig {
		return PubKeyHash, decoded[2].Data
	}

	if len(decoded) == 3 &&
		decoded[0].Opcode == opHash160 &&
		decoded[1].isPush() && len(decoded[1].Data) == opData20 &&
		decoded[2].Opcode == opEqual {
		return ScriptHash, decoded[1].Data
	}

	if len(decoded) == 2 && decoded[0].Opcode == op0 && decoded[1].isPush() {
		switch len(decoded[1].Data) {
		case opData20:
			return WitnessV0KeyHash, decoded[1].Data
		case opData32:
			return WitnessV0ScriptHash, decoded[1].Data
		}
	}

	return NonStandard, script
}

// isPubkeyBytes reports whether b has the length and header byte of a
// compressed (33-byte, 0x02/0x03 prefix) or uncompressed (65-byte, 0x04
// prefix) secp256k1 public key encoding.
func isPubkeyBytes(b []byte) bool {
	switch len(b) {
	case 33:
		return b[0] == 0x02 || b[0] == 0x03
	case 65:
		return b[0] == 0x04
	default:
		return false
	}
}
