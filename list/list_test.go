package list

import (
	"testing"

	"github.com/ajroetker/gktypes/alloc"
)

func newTestAllocator() alloc.Allocator {
	return alloc.Default()
}

func TestPushStaysInlineWithinCapacity(t *testing.T) {
	l := New[uint32](newTestAllocator())
	cap0 := l.Cap()
	if cap0 == 0 {
		t.Fatalf("uint32 should qualify for inline storage, got capacity 0")
	}
	for i := 0; i < cap0; i++ {
		if err := l.Push(uint32(i)); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if l.IsHeap() {
		t.Fatalf("List should still be inline after filling exactly to inline capacity")
	}
	if l.Len() != cap0 {
		t.Fatalf("Len() = %d, want %d", l.Len(), cap0)
	}
	for i := 0; i < cap0; i++ {
		if got := l.At(i); got != uint32(i) {
			t.Fatalf("At(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestPushBeyondInlineCapacityPromotesToHeap(t *testing.T) {
	l := New[uint32](newTestAllocator())
	cap0 := l.Cap()
	for i := 0; i < cap0+10; i++ {
		if err := l.Push(uint32(i)); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if !l.IsHeap() {
		t.Fatalf("List should have promoted to heap storage")
	}
	if l.Len() != cap0+10 {
		t.Fatalf("Len() = %d, want %d", l.Len(), cap0+10)
	}
	for i := 0; i < cap0+10; i++ {
		if got := l.At(i); got != uint32(i) {
			t.Fatalf("At(%d) after promotion = %d, want %d", i, got, i)
		}
	}
}

// pod24 mimics a 24-byte plain-old-data element too large for inline
// storage, matching spec.md's non-inline-eligible example type.
type pod24 struct {
	a, b, c uint64
}

func TestNonQualifyingTypeIsAlwaysHeap(t *testing.T) {
	l := New[pod24](newTestAllocator())
	if !l.IsHeap() {
		t.Fatalf("24-byte element type must never use inline storage")
	}
	if l.Cap() != 0 {
		t.Fatalf("freshly constructed non-qualifying List should have capacity 0, got %d", l.Cap())
	}
	if err := l.Push(pod24{1, 2, 3}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if l.Len() != 1 || l.Cap() < 1 {
		t.Fatalf("after first push: len=%d cap=%d", l.Len(), l.Cap())
	}
	if got := l.At(0); got != (pod24{1, 2, 3}) {
		t.Fatalf("At(0) = %+v, want {1 2 3}", got)
	}
}

func TestInsertRemoveSwapRemove(t *testing.T) {
	l := New[int32](newTestAllocator())
	for _, v := range []int32{10, 20, 30, 40} {
		if err := l.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Insert(1, 15); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	want := []int32{10, 15, 20, 30, 40}
	for i, w := range want {
		if got := l.At(i); got != w {
			t.Fatalf("after Insert, At(%d) = %d, want %d", i, got, w)
		}
	}

	removed := l.Remove(1)
	if removed != 15 {
		t.Fatalf("Remove(1) = %d, want 15", removed)
	}
	want = []int32{10, 20, 30, 40}
	for i, w := range want {
		if got := l.At(i); got != w {
			t.Fatalf("after Remove, At(%d) = %d, want %d", i, got, w)
		}
	}

	swapped := l.SwapRemove(0)
	if swapped != 10 {
		t.Fatalf("SwapRemove(0) = %d, want 10", swapped)
	}
	if l.Len() != 3 || l.At(0) != 40 {
		t.Fatalf("after SwapRemove(0): len=%d at0=%d, want len=3 at0=40", l.Len(), l.At(0))
	}
}

func TestInsertAtLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Insert at Len() should panic; use Push instead")
		}
	}()
	l := New[int32](newTestAllocator())
	l.Push(1)
	l.Insert(1, 99)
}

func TestFindAndFindSIMDAgree(t *testing.T) {
	a := newTestAllocator()
	l, err := WithCapacity[uint32](a, 500)
	if err != nil {
		t.Fatalf("WithCapacity: %v", err)
	}
	for i := 0; i < 500; i++ {
		if err := l.Push(uint32(i)); err != nil {
			t.Fatal(err)
		}
	}

	for _, needle := range []uint32{0, 1, 137, 499, 999999} {
		plainIdx, plainOK := Find(l, needle)
		simdIdx, simdOK := FindSIMD(l, needle)
		if plainOK != simdOK || plainIdx != simdIdx {
			t.Fatalf("Find/FindSIMD disagree for needle=%d: Find=(%d,%v) FindSIMD=(%d,%v)",
				needle, plainIdx, plainOK, simdIdx, simdOK)
		}
	}
}

func TestSetLengthTruncationHidesTailFromFindSIMD(t *testing.T) {
	a := newTestAllocator()
	l, err := WithCapacity[uint32](a, 200)
	if err != nil {
		t.Fatalf("WithCapacity: %v", err)
	}
	for i := 0; i < 200; i++ {
		l.Push(uint32(i))
	}

	if idx, ok := FindSIMD(l, uint32(137)); !ok || idx != 137 {
		t.Fatalf("FindSIMD(137) before truncation = (%d,%v), want (137,true)", idx, ok)
	}

	l.SetLength(100)
	if l.Len() != 100 {
		t.Fatalf("Len() after SetLength(100) = %d, want 100", l.Len())
	}
	if _, ok := FindSIMD(l, uint32(137)); ok {
		t.Fatalf("FindSIMD(137) after truncating length to 100 should miss")
	}
	if idx, ok := FindSIMD(l, uint32(42)); !ok || idx != 42 {
		t.Fatalf("FindSIMD(42) after truncation = (%d,%v), want (42,true)", idx, ok)
	}
}

func TestReserveIsNoOpWhenSatisfied(t *testing.T) {
	l, err := WithCapacity[uint32](newTestAllocator(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	cap0 := l.Cap()
	if err := l.Reserve(10); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if l.Cap() != cap0 {
		t.Fatalf("Reserve should be a no-op here: Cap() changed from %d to %d", cap0, l.Cap())
	}
}

func TestReserveExactDoesNotOvershootLikeAmortizedGrowth(t *testing.T) {
	l := New[uint32](newTestAllocator())
	inlineCap := l.Cap()
	// Push past inline to force one heap allocation with amortized growth.
	for i := 0; i < inlineCap+1; i++ {
		l.Push(uint32(i))
	}
	grownCap := l.Cap()

	l2, err := WithCapacity[uint32](newTestAllocator(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := l2.ReserveExact(inlineCap + 1); err != nil {
		t.Fatalf("ReserveExact: %v", err)
	}
	if l2.Cap() > grownCap {
		t.Fatalf("ReserveExact overshot amortized growth: exact-cap=%d amortized-cap=%d", l2.Cap(), grownCap)
	}
}

func TestShrinkToFitReleasesExcessCapacity(t *testing.T) {
	a := newTestAllocator()
	l, err := WithCapacity[uint32](a, 1000)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		l.Push(uint32(i))
	}
	if err := l.ShrinkToFit(); err != nil {
		t.Fatalf("ShrinkToFit: %v", err)
	}
	// SIMD rounding may keep the effective floor above Len() exactly, but it
	// must never stay anywhere near the original 1000.
	if l.Cap() >= 1000 {
		t.Fatalf("ShrinkToFit did not release capacity: still %d", l.Cap())
	}
	if l.Cap() < l.Len() {
		t.Fatalf("ShrinkToFit dropped capacity below Len(): cap=%d len=%d", l.Cap(), l.Len())
	}
	for i := 0; i < 10; i++ {
		if got := l.At(i); got != uint32(i) {
			t.Fatalf("At(%d) after ShrinkToFit = %d, want %d", i, got, i)
		}
	}
}

func TestShrinkToNoOpBelowFloor(t *testing.T) {
	l, err := WithCapacity[uint32](newTestAllocator(), 50)
	if err != nil {
		t.Fatal(err)
	}
	cap0 := l.Cap()
	if err := l.ShrinkTo(cap0 + 1000); err != nil {
		t.Fatalf("ShrinkTo: %v", err)
	}
	if l.Cap() != cap0 {
		t.Fatalf("ShrinkTo with floor above current capacity should be a no-op: cap changed %d -> %d", cap0, l.Cap())
	}
}

func TestAllIteratesInOrder(t *testing.T) {
	l := New[int32](newTestAllocator())
	for _, v := range []int32{5, 6, 7, 8} {
		l.Push(v)
	}
	var got []int32
	for i, v := range All(l) {
		if int32(i) != v-5 {
			t.Fatalf("All(): index %d value %d mismatch", i, v)
		}
		got = append(got, v)
	}
	if len(got) != 4 {
		t.Fatalf("All() yielded %d elements, want 4", len(got))
	}
}

func TestIteratorExplicitCursor(t *testing.T) {
	l := New[int32](newTestAllocator())
	for _, v := range []int32{1, 2, 3} {
		l.Push(v)
	}
	it := NewIterator(l)
	var got []int32
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Iterator.Next() sequence = %v, want [1 2 3]", got)
	}
}

func TestOutOfRangeAccessPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("At() out of range should panic")
		}
	}()
	l := New[int32](newTestAllocator())
	l.Push(1)
	l.At(5)
}
