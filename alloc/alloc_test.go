package alloc

import (
	"testing"
	"unsafe"
)

func TestDefaultIsSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a.Backend() != b.Backend() {
		t.Fatalf("Default() returned distinct backends across calls")
	}
}

func TestNewZeroed(t *testing.T) {
	a := Default()
	p, err := NewZeroed[uint64](a)
	if err != nil {
		t.Fatalf("NewZeroed failed: %v", err)
	}
	if *p != 0 {
		t.Errorf("NewZeroed did not zero memory: got %d", *p)
	}
	*p = 42
	if *p != 42 {
		t.Errorf("write through pointer failed")
	}
	Free(a, p)
}

func TestNewAlignedRespectsAlignment(t *testing.T) {
	a := Default()
	const align = 64
	p, err := NewAligned[byte](a, align)
	if err != nil {
		t.Fatalf("NewAligned failed: %v", err)
	}
	if uintptr(unsafe.Pointer(p))%align != 0 {
		t.Errorf("pointer %p is not %d-byte aligned", p, align)
	}
	FreeAligned(a, p, align)
}

func TestAlignedBufferMultipleSizesAndAlignments(t *testing.T) {
	a := Default()
	for _, align := range []uintptr{8, 16, 32, 64, 128} {
		p, err := AlignedBuffer[uint32](a, 17, align)
		if err != nil {
			t.Fatalf("AlignedBuffer align=%d failed: %v", align, err)
		}
		if uintptr(p)%align != 0 {
			t.Errorf("align=%d: pointer %p not aligned", align, p)
		}
		FreeAlignedBuffer[uint32](a, p, 17, align)
	}
}

func TestBufferZeroed(t *testing.T) {
	a := Default()
	const n = 100
	p, err := BufferZeroed[int32](a, n)
	if err != nil {
		t.Fatalf("BufferZeroed failed: %v", err)
	}
	slice := unsafe.Slice((*int32)(p), n)
	for i, v := range slice {
		if v != 0 {
			t.Fatalf("index %d not zeroed: %d", i, v)
		}
	}
	FreeBuffer[int32](a, p, n)
}

func TestCloneSharesBackend(t *testing.T) {
	a := Default()
	clone := a.Clone()
	if a.Backend() != clone.Backend() {
		t.Fatalf("Clone() should share the backend")
	}
}

type fakeOOMBackend struct{}

func (fakeOOMBackend) Alloc(Layout) (unsafe.Pointer, error)       { return nil, ErrOutOfMemory }
func (fakeOOMBackend) AllocZeroed(Layout) (unsafe.Pointer, error) { return nil, ErrOutOfMemory }
func (fakeOOMBackend) Free(unsafe.Pointer, Layout)                {}

func TestOutOfMemoryPropagates(t *testing.T) {
	a := NewAllocator(fakeOOMBackend{})
	if _, err := New[int](a); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if _, err := Buffer[int](a, 10); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}
