// Package retarget implements Koto's per-header difficulty adjustment: a
// 17-block sliding window of prior targets, damped by the change in
// median-time-past, clamped to a maximum adjustment factor. Grounded on
// Blockchain.get_target/get_target_koto/get_median_timestamp in the original
// Electrum-Koto blockchain module.
package retarget

import (
	"math/big"
	"sort"

	"github.com/koto-project/kotochain/chainparams"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/koto-project/kotochain/target"
	"github.com/pkg/errors"
)

// AverageBlocks is Koto's retarget window size (nAverageBlocks).
const AverageBlocks = 17

// TargetTimespan is the window's target duration in seconds.
const TargetTimespan = AverageBlocks * 60

// medianWindow is how many trailing timestamps get_median_timestamp draws
// from.
const medianWindow = 11

// HeaderSource looks up consensus fields needed by the retarget engine for
// an already-known height. It is satisfied by a header store (persisted
// headers) layered under an in-memory overlay of not-yet-persisted ones
// (the "chain" map in the original source), matching how verify_chunk feeds
// get_target auxiliary headers it hasn't saved yet.
type HeaderSource interface {
	// Bits returns the compact target of the header at height h.
	Bits(h int64) (uint32, bool)
	// Timestamp returns the timestamp of the header at height h.
	Timestamp(h int64) (uint32, bool)
}

// GetTarget computes the target a header at height must satisfy, following
// get_target's checkpoint/testnet/bypass policy before falling back to the
// Koto retarget window. A zero return means "skip verification" (testnet,
// or inside the checkpoint region off a chunk boundary).
func GetTarget(p chainparams.Params, height int64, src HeaderSource) (*big.Int, error) {
	if p.Testnet {
		return big.NewInt(0), nil
	}
	if height == -1 {
		return target.MaxTarget, nil
	}

	chunk := height / int64(chainparams.ChunkSize)
	if chunk < int64(len(p.Checkpoints)) {
		if height%int64(chainparams.ChunkSize) == 0 {
			return target.BitsToTarget(p.Checkpoints[chunk].Bits)
		}
		return big.NewInt(0), nil
	}

	return getTargetKoto(p, height, src)
}

// getTargetKoto implements get_target_koto: sum the prior AverageBlocks
// targets, scale by the damped/clamped ratio of actual-to-expected
// timespan measured via median-time-past.
func getTargetKoto(p chainparams.Params, height int64, src HeaderSource) (*big.Int, error) {
	if height < int64(len(p.Checkpoints))*int64(chainparams.ChunkSize)+28 {
		return big.NewInt(0), nil
	}
	if height-1 <= AverageBlocks {
		return target.MaxTarget, nil
	}

	sumOfTargets := big.NewInt(0)
	for h := height - 1; h >= height-AverageBlocks; h-- {
		bits, ok := src.Bits(h)
		if !ok {
			return nil, errMissing(h)
		}
		t, err := target.BitsToTarget(bits)
		if err != nil {
			return nil, err
		}
		sumOfTargets.Add(sumOfTargets, t)
	}

	tEnd, err := medianTimestamp(height-1, src)
	if err != nil {
		return nil, err
	}
	tStart, err := medianTimestamp(height-1-AverageBlocks, src)
	if err != nil {
		return nil, err
	}
	actualTimespan := tEnd - tStart

	// Damp by one quarter of the deviation. The source computes
	// nTargetTimespan + floor(d/4) with a +1 correction whenever d is
	// negative and not a multiple of 4 — floor division plus that
	// correction is exactly truncation toward zero, which is what Go's
	// integer division already does.
	d := actualTimespan - TargetTimespan
	actualTimespan = TargetTimespan + d/4

	minTimespan := TargetTimespan * 84 / 100
	maxTimespan := TargetTimespan * 132 / 100
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	}
	if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	// Division-before-multiplication order is consensus-significant:
	// (sum/N)/targetTimespan computed first, then scaled by
	// actualTimespan.
	avg := new(big.Int).Div(sumOfTargets, big.NewInt(AverageBlocks))
	perSecond := new(big.Int).Div(avg, big.NewInt(TargetTimespan))
	newTarget := new(big.Int).Mul(perSecond, big.NewInt(actualTimespan))

	if newTarget.Cmp(target.MaxTarget) > 0 {
		newTarget = target.MaxTarget
	}
	return newTarget, nil
}

// medianTimestamp returns the median of the medianWindow most recent
// timestamps ending at (and including) height h, walking backward. Height 0
// is never read: the source stops as soon as the walking index reaches 0,
// matching get_median_timestamp's `pindex != 0` loop guard, which checks
// before reading rather than after decrementing.
func medianTimestamp(h int64, src HeaderSource) (int64, error) {
	var ts []int64
	i := 0
	for height := h; i < medianWindow && height != 0; height-- {
		stamp, ok := src.Timestamp(height)
		if !ok {
			return 0, errMissing(height)
		}
		ts = append(ts, int64(stamp))
		i++
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts[len(ts)/2], nil
}

func errMissing(h int64) error {
	return errors.Wrapf(kotoerr.ErrMissingHeader, "retarget: height %d", h)
}
