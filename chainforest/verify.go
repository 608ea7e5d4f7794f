package chainforest

import (
	"math/big"

	"github.com/koto-project/kotochain/blockheader"
	"github.com/koto-project/kotochain/chainhash"
	"github.com/koto-project/kotochain/chainparams"
	"github.com/koto-project/kotochain/headerstore"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/koto-project/kotochain/target"
	"github.com/pkg/errors"
)

// bypassHeights is the consensus-historical verification bypass list. The
// original source comments this "somehow wrong ???"; it is carried
// verbatim rather than guessed at or removed.
var bypassHeights = map[int64]bool{20: true, 22: true, 26: true}

// VerifyHeader checks a single header's continuity, hash, and proof of
// work against target. expectedHash, when non-zero, must match the
// header's recomputed id.
func VerifyHeader(p chainparams.Params, h *blockheader.Header, prevHash chainhash.Hash, t *big.Int, expectedHash chainhash.Hash, hasExpectedHash bool) error {
	height := int64(h.BlockHeight)
	if bypassHeights[height] {
		return nil
	}

	id := h.ID()
	if hasExpectedHash && !expectedHash.IsZero() && id != expectedHash {
		return errors.Wrapf(kotoerr.ErrHashMismatch, "height %d: got %s want %s", height, id, expectedHash)
	}

	powHash, err := h.PowHash()
	if err != nil {
		return err
	}

	if h.PrevBlockHash != prevHash {
		return errors.Wrapf(kotoerr.ErrPrevHashMismatch, "height %d: got %s want %s", height, h.PrevBlockHash, prevHash)
	}

	// The 25-block warm-up window right after the checkpoint region lacks
	// enough history for get_target_koto (nAverageBlocks + median window),
	// and off-boundary heights inside the checkpoint region were never
	// independently retargeted; both skip the bits/PoW checks.
	chunk := height / int64(chainparams.ChunkSize)
	insideCheckpointRegionOffBoundary := height%int64(chainparams.ChunkSize) != 0 && chunk < int64(len(p.Checkpoints))
	warmupWindow := height >= int64(len(p.Checkpoints))*int64(chainparams.ChunkSize) &&
		height <= int64(len(p.Checkpoints))*int64(chainparams.ChunkSize)+24
	if insideCheckpointRegionOffBoundary || warmupWindow {
		return nil
	}
	if p.Testnet {
		return nil
	}

	wantBits := target.TargetToBits(t)
	if wantBits != h.Bits {
		return errors.Wrapf(kotoerr.ErrBitsMismatch, "height %d: got %#x want %#x", height, h.Bits, wantBits)
	}

	powAsNum := new(big.Int).SetBytes(powHash[:])
	if powAsNum.Cmp(t) > 0 {
		return errors.Wrapf(kotoerr.ErrInsufficientProofOfWork, "height %d", height)
	}
	return nil
}

// VerifyChunk verifies every header in a 2016-header (or shorter, for a
// trailing partial chunk) byte blob against continuity, target, and PoW,
// streaming prevHash forward and accumulating parsed headers into an
// auxiliary map that GetTarget can consult for heights not yet persisted —
// the same role the "chain" parameter plays in get_target_koto.
func (b *Blockchain) VerifyChunk(index int64, data []byte) error {
	saplingHeight := int64(b.forest.Params.SaplingHeight)
	indexSapling := saplingHeight / int64(chainparams.ChunkSize)
	offsetSapling := saplingHeight - indexSapling*int64(chainparams.ChunkSize)

	var num int64
	switch {
	case index < indexSapling:
		num = int64(len(data)) / int64(blockheader.Size)
	case index == indexSapling:
		if int64(len(data)) <= offsetSapling*int64(blockheader.Size) {
			num = int64(len(data)) / int64(blockheader.Size)
		} else {
			num = offsetSapling + (int64(len(data))-offsetSapling*int64(blockheader.Size))/int64(blockheader.SizeSapling)
		}
	default:
		num = int64(len(data)) / int64(blockheader.SizeSapling)
	}

	startHeight := index * int64(chainparams.ChunkSize)
	prevHash, err := b.GetHash(startHeight - 1)
	if err != nil {
		return err
	}

	aux := make(map[int64]*blockheader.Header, num)
	for i := int64(0); i < num; i++ {
		height := startHeight + i
		expectedHash, expErr := b.GetHash(height)
		hasExpected := expErr == nil

		start := headerstore.DeltaBytes(height, saplingHeight) - headerstore.DeltaBytes(startHeight, saplingHeight)
		recSize := blockheader.Size
		if height >= saplingHeight {
			recSize = blockheader.SizeSapling
		}
		if start < 0 || start+int64(recSize) > int64(len(data)) {
			return errors.Wrapf(kotoerr.ErrInvalidHeader, "chunk truncated at height %d", height)
		}
		raw := data[start : start+int64(recSize)]

		hdr, err := blockheader.ParseFromSlice(raw, uint32(height), b.forest.Params.SaplingHeight)
		if err != nil {
			return err
		}
		aux[height] = hdr

		t, err := b.GetTarget(height, aux)
		if err != nil {
			return err
		}
		if err := VerifyHeader(b.forest.Params, hdr, prevHash, t, expectedHash, hasExpected); err != nil {
			return err
		}
		prevHash = hdr.ID()
	}
	return nil
}
