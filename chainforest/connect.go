package chainforest

import (
	"github.com/koto-project/kotochain/blockheader"
	"github.com/koto-project/kotochain/chainhash"
)

// CanConnect reports whether header could be appended to this chain: its
// prev_block_hash must match the id of this chain's header at the height
// just below it (and, when checkHeight is true, its height must also be
// exactly one past this chain's height), and it must pass VerifyHeader
// against the freshly computed target. Every
// failure mode — a missing height, a verification error — collapses to
// false, matching can_connect's catch-all swallow.
func (b *Blockchain) CanConnect(header *blockheader.Header, checkHeight bool) bool {
	ok, _ := b.canConnectLocked(header, checkHeight)
	return ok
}

func (b *Blockchain) canConnectLocked(header *blockheader.Header, checkHeight bool) (bool, error) {
	if header == nil {
		return false, nil
	}
	height := int64(header.BlockHeight)
	if checkHeight && b.Height() != height-1 {
		return false, nil
	}
	if height == 0 {
		return header.ID() == b.forest.Params.GenesisHash, nil
	}

	prevHash, err := b.GetHash(height - 1)
	if err != nil {
		return false, nil
	}
	if header.PrevBlockHash != prevHash {
		return false, nil
	}

	aux := map[int64]*blockheader.Header{height: header}
	t, err := b.GetTarget(height, aux)
	if err != nil {
		return false, nil
	}
	if err := VerifyHeader(b.forest.Params, header, prevHash, t, chainhash.Zero, false); err != nil {
		return false, nil
	}
	return true, nil
}
