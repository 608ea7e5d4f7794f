package chainforest

import (
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/koto-project/kotochain/chainhash"
	"github.com/koto-project/kotochain/chainparams"
	"github.com/koto-project/kotochain/headerstore"
	"github.com/koto-project/kotochain/kotoerr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ChainForest is the registry of Blockchain instances for one headers
// directory, keyed by chain id (forkpoint_hash). It replaces the source's
// process-wide blockchains/blockchains_lock globals with an explicitly
// constructed value: tests get independent forests instead of sharing
// mutable global state.
type ChainForest struct {
	mu sync.Mutex

	HeadersDir string
	Params     chainparams.Params
	Log        *logrus.Entry

	chains map[chainhash.Hash]*Blockchain

	workMu sync.Mutex
	work   map[chainhash.Hash]*big.Int
}

// NewForest constructs an empty forest. Call ReadChains to populate it from
// disk (this seeds the main chain at genesis and discovers forks).
func NewForest(headersDir string, params chainparams.Params, log *logrus.Entry) *ChainForest {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	f := &ChainForest{
		HeadersDir: headersDir,
		Params:     params,
		Log:        log,
		chains:     make(map[chainhash.Hash]*Blockchain),
		work:       make(map[chainhash.Hash]*big.Int),
	}
	f.work[chainhash.Zero] = big.NewInt(0) // virtual block at height -1
	return f
}

func (f *ChainForest) chainworkCache(id chainhash.Hash) (*big.Int, bool) {
	f.workMu.Lock()
	defer f.workMu.Unlock()
	w, ok := f.work[id]
	return w, ok
}

func (f *ChainForest) setChainworkCache(id chainhash.Hash, w *big.Int) {
	f.workMu.Lock()
	defer f.workMu.Unlock()
	f.work[id] = w
}

// newBlockchain constructs a Blockchain and computes its initial size from
// whatever is already on disk at its file path.
func (f *ChainForest) newBlockchain(parent *Blockchain, forkpoint int64, forkpointHash chainhash.Hash, prevHash chainhash.Hash, hasPrevHash bool, path string) (*Blockchain, error) {
	if forkpoint > 0 && forkpoint <= f.Params.MaxCheckpoint() {
		return nil, errors.Wrapf(kotoerr.ErrForkBelowCheckpoint, "forkpoint %d", forkpoint)
	}
	b := &Blockchain{
		forest:        f,
		parent:        parent,
		forkpoint:     forkpoint,
		forkpointHash: forkpointHash,
		prevHash:      prevHash,
		hasPrevHash:   hasPrevHash,
		file:          headerstore.Open(path),
	}
	if err := b.updateSize(); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadChains seeds the main chain at genesis, then discovers forks on disk
// under <HeadersDir>/forks, matching read_blockchains's fork-instantiation
// pass: files are sorted by forkpoint ascending (so a fork's parent is
// always already instantiated), rejected below the checkpoint region, and
// dropped when no existing chain holds the expected predecessor header.
func (f *ChainForest) ReadChains() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	mainPath := headerstore.MainPath(f.HeadersDir)
	main, err := f.newBlockchain(nil, 0, f.Params.GenesisHash, chainhash.Hash{}, false, mainPath)
	if err != nil {
		return err
	}
	f.chains[main.forkpointHash] = main

	forksDir := filepath.Join(f.HeadersDir, headerstore.ForksDirName)
	if err := os.MkdirAll(forksDir, 0o755); err != nil {
		return errors.Wrap(err, "chainforest: mkdir forks")
	}
	entries, err := os.ReadDir(forksDir)
	if err != nil {
		return errors.Wrap(err, "chainforest: read forks dir")
	}

	type candidate struct {
		name      string
		forkpoint int64
	}
	var candidates []candidate
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "fork2_") || strings.Contains(name, ".") {
			continue
		}
		parts := strings.Split(name, "_")
		if len(parts) != 4 {
			continue
		}
		fp, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{name: name, forkpoint: fp})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].forkpoint < candidates[j].forkpoint })

	for _, c := range candidates {
		f.instantiateFork(forksDir, c.name, c.forkpoint)
	}
	return nil
}

func (f *ChainForest) instantiateFork(forksDir, name string, forkpoint int64) {
	parts := strings.Split(name, "_")
	prevHashHex := leftPad64(parts[2])
	firstHashHex := leftPad64(parts[3])

	deleteFork := func(reason string) {
		f.Log.WithFields(logrus.Fields{"file": name, "reason": reason}).Warn("dropping fork file")
		_ = os.Remove(filepath.Join(forksDir, name))
	}

	if forkpoint <= f.Params.MaxCheckpoint() {
		deleteFork("forkpoint at or below max checkpoint")
		return
	}

	prevHash, err := chainhash.NewFromStr(prevHashHex)
	if err != nil {
		deleteFork("malformed prev hash in filename")
		return
	}
	firstHash, err := chainhash.NewFromStr(firstHashHex)
	if err != nil {
		deleteFork("malformed first hash in filename")
		return
	}

	var parent *Blockchain
	for _, candidate := range f.chains {
		if candidate.CheckHash(forkpoint-1, prevHash) {
			parent = candidate
			break
		}
	}
	if parent == nil {
		deleteFork("cannot find parent for chain")
		return
	}

	path := filepath.Join(forksDir, name)
	b, err := f.newBlockchain(parent, forkpoint, firstHash, prevHash, true, path)
	if err != nil {
		deleteFork(err.Error())
		return
	}

	first, err := b.ReadHeader(forkpoint)
	if err != nil || first == nil || first.ID() != firstHash {
		deleteFork("first header does not hash to expected id")
		return
	}
	if ok, err := b.canConnectLocked(first, false); err != nil || !ok {
		deleteFork("does not connect to parent")
		return
	}

	f.chains[b.forkpointHash] = b
}

func leftPad64(s string) string {
	if len(s) >= 64 {
		return s
	}
	return strings.Repeat("0", 64-len(s)) + s
}

// GetBestChain returns the chain currently keyed under genesis: after any
// swap, a stronger fork is re-keyed to the genesis id, so this always
// reflects the chain with the most chainwork rooted at genesis.
func (f *ChainForest) GetBestChain() *Blockchain {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chains[f.Params.GenesisHash]
}

// Chains returns a snapshot slice of all registered chains.
func (f *ChainForest) Chains() []*Blockchain {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Blockchain, 0, len(f.chains))
	for _, b := range f.chains {
		out = append(out, b)
	}
	return out
}

// CheckHeader returns the chain, if any, whose header at the given height
// has the given id.
func (f *ChainForest) CheckHeader(height int64, id chainhash.Hash) *Blockchain {
	for _, b := range f.Chains() {
		if b.CheckHash(height, id) {
			return b
		}
	}
	return nil
}
