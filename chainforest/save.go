package chainforest

import (
	"github.com/koto-project/kotochain/blockheader"
	"github.com/koto-project/kotochain/chainparams"
	"github.com/koto-project/kotochain/headerstore"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/pkg/errors"
)

// write durably writes data at offset to this chain's file, recomputing
// size afterward. Caller must hold b.mu.
func (b *Blockchain) write(data []byte, offset int64, truncate bool) error {
	if err := b.file.Write(data, offset, truncate); err != nil {
		return err
	}
	return b.updateSize()
}

// SaveHeader appends header to this chain's file; it must be the strictly
// next header (height == forkpoint + size). After writing, it invokes the
// reorg check so a chain that just overtook its parent is swapped
// immediately.
func (b *Blockchain) SaveHeader(header *blockheader.Header) error {
	b.mu.Lock()
	if int64(header.BlockHeight) != b.forkpoint+b.size {
		b.mu.Unlock()
		return errors.Wrapf(kotoerr.ErrInvalidHeader,
			"save_header: height %d is not contiguous with forkpoint %d size %d",
			header.BlockHeight, b.forkpoint, b.size)
	}
	data := header.Serialize()
	size, err := b.file.FileSize()
	if err != nil {
		b.mu.Unlock()
		return err
	}
	if err := b.write(data, size, true); err != nil {
		b.mu.Unlock()
		return err
	}
	b.mu.Unlock()

	return b.SwapWithParent()
}

// SaveChunk persists a 2016-header chunk at chunk index. Chunks inside the
// checkpointed region are always the main chain's responsibility, even
// when called on a fork — matching save_chunk's delegation, which re-enters
// the main chain's lock while this chain may already hold its own.
func (b *Blockchain) SaveChunk(index int64, chunk []byte) error {
	withinCheckpointRegion := index < int64(len(b.forest.Params.Checkpoints))

	b.mu.Lock()
	hasParent := b.parent != nil
	forkpoint := b.forkpoint
	b.mu.Unlock()

	if withinCheckpointRegion && hasParent {
		return b.forest.GetBestChain().SaveChunk(index, chunk)
	}

	saplingHeight := int64(b.forest.Params.SaplingHeight)
	offset, _ := headerstore.Offset(forkpoint, index*int64(chainparams.ChunkSize), saplingHeight)
	if offset < 0 {
		chunk = chunk[-offset:]
		offset = 0
	}
	truncate := !withinCheckpointRegion

	b.mu.Lock()
	if err := b.write(chunk, offset, truncate); err != nil {
		b.mu.Unlock()
		return err
	}
	b.mu.Unlock()

	return b.SwapWithParent()
}

// ConnectChunk verifies then saves a chunk, matching connect_chunk's
// catch-all: any failure during verification or persistence reports false
// rather than propagating a typed error, since this is the one interface
// boundary the wallet layer treats as a plain success/failure signal.
func (b *Blockchain) ConnectChunk(index int64, data []byte) bool {
	if err := b.VerifyChunk(index, data); err != nil {
		return false
	}
	if err := b.SaveChunk(index, data); err != nil {
		return false
	}
	return true
}
