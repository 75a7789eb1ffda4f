package pixmap

import "testing"

func TestArenaRetriesSmallerSizes(t *testing.T) {
	attempts := []int{}
	allocate := func(size int) []byte {
		attempts = append(attempts, size)
		if size <= BufferSizeMin {
			return make([]byte, size)
		}
		return nil
	}
	a := New(SpecV121, allocate, nil)
	if a.Failed() {
		t.Fatal("arena should have succeeded at the minimum size")
	}
	if len(attempts) < 2 {
		t.Fatalf("expected multiple shrinking attempts, got %v", attempts)
	}
	for i := 1; i < len(attempts); i++ {
		if attempts[i] >= attempts[i-1] {
			t.Fatalf("attempts must shrink: %v", attempts)
		}
	}
}

func TestArenaPermanentFailure(t *testing.T) {
	a := New(SpecV121, func(int) []byte { return nil }, nil)
	if !a.Failed() {
		t.Fatal("expected permanent failure")
	}
	if a.Allocate(1) != nil {
		t.Fatal("allocate must fail on a failed arena")
	}
	a.Reset()
	if a.Allocate(1) != nil {
		t.Fatal("reset must not resurrect a failed arena")
	}
}

func TestArenaBumpAndReset(t *testing.T) {
	a := New(SpecV121, func(size int) []byte { return make([]byte, size) }, nil)
	total := SpecV121.maxSize()

	if !a.CanAllocate(total) {
		t.Fatalf("expected to be able to allocate the whole block")
	}
	first := a.Allocate(100)
	if first == nil || len(first) != 100 {
		t.Fatalf("first alloc = %v", first)
	}
	if a.BytesInUse() != 100 {
		t.Fatalf("bytes in use = %d", a.BytesInUse())
	}
	if a.Allocate(total) != nil {
		t.Fatal("over-allocation must fail without consuming the bump pointer")
	}

	a.Reset()
	if a.BytesInUse() != 0 {
		t.Fatalf("reset must rewind bump pointer, got %d", a.BytesInUse())
	}
	second := a.Allocate(total)
	if second == nil || len(second) != total {
		t.Fatalf("post-reset alloc of full size failed: %v", second)
	}
}

func TestArenaResetTwiceIsIdempotent(t *testing.T) {
	a := New(SpecV121, func(size int) []byte { return make([]byte, size) }, nil)
	a.Allocate(10)
	a.Reset()
	state1 := a.BytesInUse()
	a.Reset()
	state2 := a.BytesInUse()
	if state1 != state2 {
		t.Fatalf("reset must be idempotent: %d != %d", state1, state2)
	}
}

func TestArenaSpecSizes(t *testing.T) {
	if SpecV121.maxSize() != 80*1024*4 {
		t.Fatalf("v121 size = %d", SpecV121.maxSize())
	}
	if SpecV131.maxSize() != 320*1024*4 {
		t.Fatalf("v131 size = %d", SpecV131.maxSize())
	}
}
