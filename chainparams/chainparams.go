// Package chainparams holds the compiled-in network constants: the genesis
// header id, the Sapling activation height, and the checkpoint list used to
// bound fork creation and to skip redundant retarget verification over
// already-checkpointed history.
package chainparams

import "github.com/koto-project/kotochain/chainhash"

// Checkpoint pins a chunk boundary: the id of the last header in a completed
// 2016-header chunk, and the compact target that chunk finished at.
type Checkpoint struct {
	Hash chainhash.Hash
	Bits uint32
}

// Params bundles one network's consensus constants.
type Params struct {
	Name string

	// GenesisHash is the id of height-0 header.
	GenesisHash chainhash.Hash

	// SaplingHeight is the height at which headers grow from 80 to 112
	// bytes and Sapling-era transaction fields activate.
	SaplingHeight uint32

	// OverwinterHeight is the height at which version>=3 (Overwinter)
	// transactions become valid. It is carried for completeness only: no
	// package in this module reads it, and the header chain doesn't gate
	// on it.
	OverwinterHeight uint32

	// Testnet, when true, disables target verification entirely
	// (get_target returns 0, meaning "skip").
	Testnet bool

	// Checkpoints is one entry per completed 2016-header chunk, ordered
	// by height ascending. No fork may be created at or below
	// MaxCheckpoint().
	Checkpoints []Checkpoint
}

// ChunkSize is the number of headers in one retarget period.
const ChunkSize = 2016

// MaxCheckpoint returns the highest height covered by the checkpoint list,
// or -1 if there are no checkpoints. A fork whose forkpoint is <=
// MaxCheckpoint is rejected with kotoerr.ErrForkBelowCheckpoint.
func (p Params) MaxCheckpoint() int64 {
	if len(p.Checkpoints) == 0 {
		return -1
	}
	return int64(len(p.Checkpoints))*int64(ChunkSize) - 1
}

// Mainnet holds Koto's production parameters. The genesis hash and
// checkpoint list are placeholders for the values baked into a production
// binary; the shapes and the SaplingHeight/OverwinterHeight split follow
// Koto's published activation heights.
var Mainnet = Params{
	Name:             "main",
	SaplingHeight:    600000,
	OverwinterHeight: 400000,
	Testnet:          false,
	Checkpoints:      nil,
}

// Testnet holds Koto's test network parameters: verification is disabled
// entirely (see retarget.GetTarget), so SaplingHeight still governs header
// sizing but Checkpoints/PoW are not consulted.
var Testnet = Params{
	Name:             "test",
	SaplingHeight:    600000,
	OverwinterHeight: 400000,
	Testnet:          true,
	Checkpoints:      nil,
}
