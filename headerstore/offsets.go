// Package headerstore implements the per-chain, fixed-offset header file:
// byte-offset arithmetic across the Sapling record-size transition, and the
// durable read/append/write operations layered on top of it. Grounded on
// Blockchain.path/write/save_header/save_chunk/read_header/update_size/
// get_delta_bytes in the original Electrum-Koto blockchain module; the
// append-only, fsync'd, fixed-record file discipline follows the shape of
// common/cache.go's BlockCache, the in-pack Go precedent for this kind of
// storage.
package headerstore

import "github.com/koto-project/kotochain/blockheader"

// Offset returns the byte offset of height h within a chain whose first
// header is at forkpoint f, along with the record size (80 or 112) of the
// header stored there. This is the one piecewise helper every read/write/
// reorg path consults, per the design note that record-size arithmetic
// belongs in a single place.
func Offset(forkpoint, h, saplingHeight int64) (offset int64, recordSize int) {
	switch {
	case h < saplingHeight:
		return (h - forkpoint) * int64(blockheader.Size), blockheader.Size
	case forkpoint >= saplingHeight:
		return (h - forkpoint) * int64(blockheader.SizeSapling), blockheader.SizeSapling
	default:
		return (saplingHeight-forkpoint)*int64(blockheader.Size) +
			(h-saplingHeight)*int64(blockheader.SizeSapling), blockheader.SizeSapling
	}
}

// DeltaBytes is Offset measured from height 0 regardless of a chain's own
// forkpoint: the absolute byte position of height h in a hypothetical chain
// that started at genesis. Used by verify_chunk-style streaming to compute
// a chunk-relative start position as a difference of two DeltaBytes calls.
func DeltaBytes(h, saplingHeight int64) int64 {
	off, _ := Offset(0, h, saplingHeight)
	return off
}

// SizeFromFileLength recomputes the number of headers represented by a file
// of the given length, for a chain starting at forkpoint. This mirrors
// update_size's three branches exactly, including its documented quirk: the
// third branch (forkpoint below, but file already past the transition)
// divides the post-transition remainder by 112 without checking it's a
// whole multiple, so a corrupt or truncated file silently rounds down
// rather than failing.
func SizeFromFileLength(forkpoint, saplingHeight, fileLength int64) int64 {
	switch {
	case saplingHeight <= forkpoint:
		return fileLength / int64(blockheader.SizeSapling)
	case fileLength <= int64(blockheader.Size)*(saplingHeight-forkpoint):
		return fileLength / int64(blockheader.Size)
	default:
		pre := saplingHeight - forkpoint
		return pre + (fileLength-pre*int64(blockheader.Size))/int64(blockheader.SizeSapling)
	}
}
