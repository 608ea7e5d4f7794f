package chainforest

import (
	"crypto/sha256"
	"sync"

	"github.com/koto-project/kotochain/blockheader"
	"github.com/koto-project/kotochain/chainhash"
	"github.com/koto-project/kotochain/headerstore"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SwapWithParent repeatedly swaps this chain's underlying file with its
// parent's for as long as this chain outweighs its parent, acquiring
// parent -> self -> registry locks in that strict order on every attempt (a
// no-op lock substitutes when there is no parent). A safety bound prevents
// an unbounded loop if chainwork bookkeeping is ever inconsistent.
func (b *Blockchain) SwapWithParent() error {
	count := 0
	for {
		b.mu.Lock()
		parent := b.parent
		b.mu.Unlock()

		var parentLock sync.Locker
		if parent != nil {
			parentLock = &parent.mu
		} else {
			parentLock = &sync.Mutex{}
		}

		parentLock.Lock()
		b.mu.Lock()
		b.forest.mu.Lock()

		swapped, err := b.swapOnce()

		b.forest.mu.Unlock()
		b.mu.Unlock()
		parentLock.Unlock()

		if err != nil {
			return err
		}
		if !swapped {
			return nil
		}

		count++
		b.forest.mu.Lock()
		registrySize := len(b.forest.chains)
		b.forest.mu.Unlock()
		if count > registrySize {
			return errors.Wrap(kotoerr.ErrReorgLoop, "swap_with_parent")
		}
	}
}

// swapOnce performs the single-step check-and-swap. Caller must hold
// parent.mu, b.mu, and forest.mu in that order.
func (b *Blockchain) swapOnce() (bool, error) {
	if b.parent == nil {
		return false, nil
	}
	parent := b.parent

	parentWork, err := parent.GetChainwork(parent.forkpoint + parent.size - 1)
	if err != nil {
		return false, err
	}
	childWork, err := b.GetChainwork(b.forkpoint + b.size - 1)
	if err != nil {
		return false, err
	}
	if parentWork.Cmp(childWork) >= 0 {
		return false, nil
	}

	b.forest.Log.WithFields(logrus.Fields{
		"child_forkpoint":  b.forkpoint,
		"parent_forkpoint": parent.forkpoint,
	}).Info("swap with parent")

	saplingHeight := int64(b.forest.Params.SaplingHeight)
	parentBranchSize := parent.forkpoint + parent.size - b.forkpoint
	forkpoint := b.forkpoint

	childOldID := b.forkpointHash
	parentOldID := parent.forkpointHash
	childOldPath := b.file.Path()
	parentOldFile := parent.file

	myData, err := b.file.ReadAll()
	if err != nil {
		return false, err
	}

	var offset int64
	var parentData []byte
	switch {
	case forkpoint > saplingHeight:
		if saplingHeight > parent.forkpoint {
			offset = (forkpoint-saplingHeight)*int64(blockheader.SizeSapling) +
				(saplingHeight-parent.forkpoint)*int64(blockheader.Size)
		} else {
			// Preserved verbatim: the source reuses HEADER_SIZE_SAPLING on
			// both terms here instead of HEADER_SIZE on the second, a
			// likely bug flagged in the design notes. File-format and
			// consensus compatibility require the bit-exact offset.
			offset = (forkpoint-saplingHeight)*int64(blockheader.SizeSapling) +
				(saplingHeight-parent.forkpoint)*int64(blockheader.SizeSapling)
		}
		parentData, err = parent.file.ReadAt(offset, int(parentBranchSize)*blockheader.SizeSapling)
	default:
		offset = (forkpoint - parent.forkpoint) * int64(blockheader.Size)
		if saplingHeight > parent.forkpoint+parent.size-1 {
			parentData, err = parent.file.ReadAt(offset, int(parentBranchSize)*blockheader.Size)
		} else {
			n := int((parent.forkpoint+parent.size-1-saplingHeight+1)*int64(blockheader.SizeSapling) +
				(saplingHeight-forkpoint)*int64(blockheader.Size))
			parentData, err = parent.file.ReadAt(offset, n)
		}
	}
	if err != nil {
		return false, err
	}

	if err := b.file.Write(parentData, 0, true); err != nil {
		return false, err
	}
	if err := parent.file.Write(myData, offset, true); err != nil {
		return false, err
	}

	b.parent, parent.parent = parent.parent, b
	b.forkpoint, parent.forkpoint = parent.forkpoint, forkpoint

	var newParentHash chainhash.Hash
	if forkpoint < saplingHeight {
		newParentHash = rawHeaderID(parentData[:blockheader.Size])
	} else {
		newParentHash = rawHeaderID(parentData[:blockheader.SizeSapling])
	}
	b.forkpointHash, parent.forkpointHash = parent.forkpointHash, newParentHash
	b.prevHash, parent.prevHash = parent.prevHash, b.prevHash
	b.hasPrevHash, parent.hasPrevHash = parent.hasPrevHash, b.hasPrevHash

	newParentPath := b.forest.pathFor(parent)
	if err := renameOrReplace(childOldPath, newParentPath); err != nil {
		return false, err
	}
	parent.file = headerstore.Open(newParentPath)

	// b inherited parent's old identity (forkpoint, prevHash, forkpointHash,
	// parent pointer) wholesale, and the merged best-chain bytes were
	// written in place into parent's original file above — b.file must
	// follow that identity to the file that actually holds its data,
	// rather than staying pinned to the now-renamed childOldPath.
	b.file = parentOldFile

	if err := b.updateSize(); err != nil {
		return false, err
	}
	if err := parent.updateSize(); err != nil {
		return false, err
	}

	delete(b.forest.chains, childOldID)
	delete(b.forest.chains, parentOldID)
	b.forest.chains[b.forkpointHash] = b
	b.forest.chains[parent.forkpointHash] = parent
	return true, nil
}

func renameOrReplace(oldPath, newPath string) error {
	f := headerstore.Open(oldPath)
	return f.Rename(newPath)
}

// pathFor computes b's file path from its current state: the main filename
// when it has no parent, otherwise a fork2_ filename derived from its
// forkpoint and the (leading-zero-stripped) prev/first hashes.
func (f *ChainForest) pathFor(b *Blockchain) string {
	if b.parent == nil {
		return headerstore.MainPath(f.HeadersDir)
	}
	return headerstore.ForkPath(f.HeadersDir, b.forkpoint, b.prevHash.String(), b.forkpointHash.String())
}

func rawHeaderID(raw []byte) chainhash.Hash {
	// Mirrors hash_raw_header: double-SHA256 of the raw serialized bytes,
	// reversed into display order. Duplicated here (rather than reusing
	// blockheader.ParseFromSlice + ID) because the header's height/version
	// gating isn't relevant to just hashing a known-length raw record.
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])
	return chainhash.Hash(second).Reversed()
}
