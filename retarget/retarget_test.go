package retarget

import (
	"testing"

	"github.com/koto-project/kotochain/chainparams"
	"github.com/koto-project/kotochain/target"
)

// fakeSource is an in-memory HeaderSource used only by tests.
type fakeSource struct {
	bits map[int64]uint32
	ts   map[int64]uint32
}

func (f *fakeSource) Bits(h int64) (uint32, bool) {
	v, ok := f.bits[h]
	return v, ok
}

func (f *fakeSource) Timestamp(h int64) (uint32, bool) {
	v, ok := f.ts[h]
	return v, ok
}

func TestGetTargetTestnetSkips(t *testing.T) {
	p := chainparams.Params{Testnet: true}
	got, err := GetTarget(p, 100, &fakeSource{})
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	if got.Sign() != 0 {
		t.Fatalf("expected 0 (skip), got %s", got)
	}
}

func TestGetTargetHeightMinusOneIsMaxTarget(t *testing.T) {
	p := chainparams.Params{}
	got, err := GetTarget(p, -1, &fakeSource{})
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	if got.Cmp(target.MaxTarget) != 0 {
		t.Fatalf("expected MaxTarget, got %s", got)
	}
}

func TestGetTargetSteadyState(t *testing.T) {
	// Construct 17 prior headers all at the seed target, timestamps spaced
	// 60s apart, so the retarget window should reproduce the same target
	// (the steady-state case called out by the boundary scenario). The
	// seed's mantissa is chosen divisible by the 1020s target timespan so
	// the window's floor divisions land back on the exact seed value.
	const seedBits = 0x030df5fc
	p := chainparams.Params{
		Checkpoints: []chainparams.Checkpoint{{Bits: seedBits}},
	}
	height := int64(2016 + 28)

	src := &fakeSource{bits: map[int64]uint32{}, ts: map[int64]uint32{}}
	var baseTime uint32 = 1000000
	for h := int64(0); h <= height; h++ {
		src.bits[h] = seedBits
		src.ts[h] = baseTime + uint32(h)*60
	}

	got, err := GetTarget(p, height, src)
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	seed, _ := target.BitsToTarget(seedBits)
	if got.Cmp(seed) != 0 {
		t.Fatalf("expected steady-state target %s, got %s", seed, got)
	}
}

func TestGetTargetCheckpointBoundary(t *testing.T) {
	p := chainparams.Params{
		Checkpoints: []chainparams.Checkpoint{{Bits: 0x1d00ffff}},
	}
	got, err := GetTarget(p, 0, &fakeSource{})
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	want, _ := target.BitsToTarget(0x1d00ffff)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestGetTargetInsideCheckpointOffBoundarySkips(t *testing.T) {
	p := chainparams.Params{
		Checkpoints: []chainparams.Checkpoint{{Bits: 0x1d00ffff}},
	}
	got, err := GetTarget(p, 100, &fakeSource{})
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	if got.Sign() != 0 {
		t.Fatalf("expected skip (0), got %s", got)
	}
}
