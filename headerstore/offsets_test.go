package headerstore

import "testing"

func TestOffsetPreSapling(t *testing.T) {
	off, size := Offset(0, 5, 10)
	if off != 400 || size != 80 {
		t.Fatalf("got offset=%d size=%d", off, size)
	}
}

func TestOffsetForkpointAtOrAboveSapling(t *testing.T) {
	off, size := Offset(20, 25, 10)
	if off != 5*112 || size != 112 {
		t.Fatalf("got offset=%d size=%d", off, size)
	}
}

func TestOffsetStraddlesTransition(t *testing.T) {
	// forkpoint=0, SAPLING_HEIGHT=3, height=4: 3 pre-Sapling headers
	// (0,1,2) then post-Sapling headers starting at height 3.
	off, size := Offset(0, 4, 3)
	want := int64(3*80 + 1*112)
	if off != want || size != 112 {
		t.Fatalf("got offset=%d size=%d, want offset=%d", off, size, want)
	}
}

func TestSaplingTransitionBoundaryScenario(t *testing.T) {
	// 3 pre-Sapling + 2 post-Sapling headers, SAPLING_HEIGHT=3: total file
	// size must be 3*80 + 2*112 = 464.
	const saplingHeight = 3
	off, size := Offset(0, 4, saplingHeight)
	last := off + int64(size)
	if last != 464 {
		t.Fatalf("expected final byte offset 464, got %d", last)
	}
	if s := SizeFromFileLength(0, saplingHeight, 464); s != 5 {
		t.Fatalf("expected 5 headers recovered from 464 bytes, got %d", s)
	}
}

func TestSizeFromFileLengthRoundsDownOddTrailingBytes(t *testing.T) {
	// Documented quirk: the post-transition branch does not check that the
	// trailing bytes are a whole multiple of 112; it must round down
	// rather than error.
	const saplingHeight = 3
	pre := int64(3 * 80) // 3 pre-Sapling headers
	odd := pre + 112 + 50 // one full post-Sapling header plus half of another
	got := SizeFromFileLength(0, saplingHeight, odd)
	if got != 4 {
		t.Fatalf("expected rounding down to 4 headers, got %d", got)
	}
}

func TestDeltaBytesMatchesOffsetFromGenesis(t *testing.T) {
	const saplingHeight = 100
	for _, h := range []int64{0, 50, 100, 150} {
		want, _ := Offset(0, h, saplingHeight)
		if got := DeltaBytes(h, saplingHeight); got != want {
			t.Fatalf("DeltaBytes(%d) = %d, want %d", h, got, want)
		}
	}
}

func TestForkPathStripsLeadingZeros(t *testing.T) {
	p := ForkPath("/headers", 90, "00ab", "00cd")
	want := "/headers/forks/fork2_90_ab_cd"
	if p != want {
		t.Fatalf("got %q, want %q", p, want)
	}
}
