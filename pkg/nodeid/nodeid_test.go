package nodeid

import (
	"sync"
	"testing"
)

func TestNextIDStrictlyIncreasing(t *testing.T) {
	a := NewAllocator(DefaultSeed)

	const n = 1000
	seen := make(map[ID]bool, n)
	prev := None
	for i := 0; i < n; i++ {
		id := a.NextID()
		if seen[id] {
			t.Fatalf("id %d issued twice", id)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestSeedAndSetCounter(t *testing.T) {
	a := NewAllocator(42)
	if got := a.NextID(); got != 42 {
		t.Fatalf("first id = %d, want 42", got)
	}

	a.SetCounter(100)
	if got := a.Peek(); got != 100 {
		t.Fatalf("Peek after SetCounter = %d, want 100", got)
	}
	if got := a.NextID(); got != 100 {
		t.Fatalf("NextID after SetCounter = %d, want 100", got)
	}

	a.SetCounter(-5)
	if got := a.NextID(); got != DefaultSeed {
		t.Fatalf("negative counter should clamp to seed, got %d", got)
	}

	if z := NewAllocator(0); z.Peek() != DefaultSeed {
		t.Errorf("zero seed should clamp to %d", DefaultSeed)
	}
}

func TestObserveNeverLowers(t *testing.T) {
	a := NewAllocator(10)
	a.Observe(3)
	if got := a.Peek(); got != 10 {
		t.Fatalf("Observe lowered counter to %d", got)
	}
	a.Observe(25)
	if got := a.NextID(); got != 26 {
		t.Fatalf("NextID after Observe(25) = %d, want 26", got)
	}
}

func TestConcurrentAllocationUnique(t *testing.T) {
	a := NewAllocator(DefaultSeed)

	var mu sync.Mutex
	seen := make(map[ID]bool)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := a.NextID()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 1600 {
		t.Errorf("expected 1600 ids, got %d", len(seen))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ID
		ok   bool
	}{
		{"7", 7, true},
		{"", None, false},
		{"0", None, false},
		{"-3", None, false},
		{"abc", None, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if ID(12).String() != "12" {
		t.Errorf("String() mismatch")
	}
}
