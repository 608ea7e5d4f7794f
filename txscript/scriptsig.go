package txscript

// SigScriptClass identifies the recognized shape of a scriptSig.
type SigScriptClass int

const (
	// SigUnknown is returned when the scriptSig doesn't match a
	// recognized shape — a coinbase input, a segwit-embedded-in-p2sh
	// push, or simply malformed data. Ground: parse_scriptSig's
	// catch-all, which leaves the txin untyped rather than aborting.
	SigUnknown SigScriptClass = iota
	SigPubKey
	SigPubKeyHash
	SigScriptHash
)

// SigScriptInfo is what ParseScriptSig recovers from a scriptSig.
type SigScriptInfo struct {
	Class      SigScriptClass
	Signatures [][]byte
	Pubkeys    [][]byte // for SigScriptHash, the multisig redeem script's keys
	// RedeemScript is the sanitized (re-serialized) redeem script for a
	// SigScriptHash input whose redeem script is recognized multisig.
	RedeemScript []byte
	M, N         int
}

// ParseScriptSig recognizes the three standard scriptSig shapes: bare
// pay-to-pubkey (a single signature push), pay-to-pubkey-hash (a signature
// then a pubkey), and pay-to-script-hash (OP_0 placeholder, signatures,
// then a multisig redeem script). It never returns an error: an
// unrecognized shape comes back as SigUnknown, matching parse_scriptSig's
// policy of recording "couldn't classify this input" rather than aborting
// the whole transaction parse.
func ParseScriptSig(script []byte) *SigScriptInfo {
	decoded, err := disassemble(script)
	if err != nil || len(decoded) == 0 {
		return &SigScriptInfo{Class: SigUnknown}
	}

	if len(decoded) == 1 && decoded[0].isPush() {
		return &SigScriptInfo{Class: SigPubKey, Signatures: [][]byte{decoded[0].Data}}
	}

	if len(decoded) == 2 && decoded[0].isPush() && decoded[1].isPush() && isPubkeyBytes(decoded[1].Data) {
		return &SigScriptInfo{
			Class:      SigPubKeyHash,
			Signatures: [][]byte{decoded[0].Data},
			Pubkeys:    [][]byte{decoded[1].Data},
		}
	}

	if len(decoded) >= 2 && decoded[0].Opcode == op0 {
		allPush := true
		for _, e := range decoded[1:] {
			if !e.isPush() {
				allPush = false
				break
			}
		}
		if allPush {
			sigs := make([][]byte, len(decoded)-2)
			for i, e := range decoded[1 : len(decoded)-1] {
				sigs[i] = e.Data
			}
			redeem := decoded[len(decoded)-1].Data
			m, n, pubkeys, sanitized, err := ParseRedeemScriptMultisig(redeem)
			if err != nil {
				return &SigScriptInfo{Class: SigUnknown}
			}
			return &SigScriptInfo{
				Class:        SigScriptHash,
				Signatures:   sigs,
				Pubkeys:      pubkeys,
				RedeemScript: sanitized,
				M:            m,
				N:            n,
			}
		}
	}

	return &SigScriptInfo{Class: SigUnknown}
}

// ParseRedeemScriptMultisig recognizes an m-of-n CHECKMULTISIG redeem
// script and returns its threshold, public keys, and a re-serialized
// (sanitized) copy for comparison against the original. It reports
// kotoerr.ErrNotRecognizedRedeemScript for anything that doesn't match the
// OP_m <pubkey>... OP_n OP_CHECKMULTISIG shape. Ground:
// parse_redeemScript_multisig.
func ParseRedeemScriptMultisig(redeem []byte) (m, n int, pubkeys [][]byte, sanitized []byte, err error) {
	decoded, derr := disassemble(redeem)
	if derr != nil {
		return 0, 0, nil, nil, errNotRecognized("malformed redeem script")
	}
	if len(decoded) < 3 {
		return 0, 0, nil, nil, errNotRecognized("too short")
	}

	m = smallInt(decoded[0].Opcode)
	n = smallInt(decoded[len(decoded)-2].Opcode)
	if m < 1 || n < 1 || m > n {
		return 0, 0, nil, nil, errNotRecognized("invalid m-of-n")
	}
	if decoded[len(decoded)-1].Opcode != opCheckMultiSig {
		return 0, 0, nil, nil, errNotRecognized("missing OP_CHECKMULTISIG")
	}
	if len(decoded)-3 != n {
		return 0, 0, nil, nil, errNotRecognized("pubkey count does not match n")
	}
	for _, e := range decoded[1 : len(decoded)-2] {
		if !e.isPush() || !isPubkeyBytes(e.Data) {
			return 0, 0, nil, nil, errNotRecognized("non-pubkey entry")
		}
		pubkeys = append(pubkeys, e.Data)
	}

	sanitized = MultisigScript(pubkeys, m)
	return m, n, pubkeys, sanitized, nil
}

// MultisigScript builds an OP_m <pubkeys...> OP_n OP_CHECKMULTISIG redeem
// script, the canonical serialization used both to build new multisig
// addresses and to sanity-check a parsed one. Ground: multisig_script.
func MultisigScript(pubkeys [][]byte, m int) []byte {
	n := len(pubkeys)
	out := []byte{byte(op1 + m - 1)}
	for _, pk := range pubkeys {
		out = append(out, byte(len(pk)))
		out = append(out, pk...)
	}
	out = append(out, byte(op1+n-1), opCheckMultiSig)
	return out
}
