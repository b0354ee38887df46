package pools

import (
	"sync"
	"testing"
)

func TestBytePool_Get(t *testing.T) {
	pool := NewBytePool()

	tests := []struct {
		name   string
		size   int
		minCap int
	}{
		{"empty frame", 0, SmallSize},
		{"small", 200, SmallSize},
		{"small_exact", SmallSize, SmallSize},
		{"medium", SmallSize + 1, MediumSize},
		{"large", 10000, LargeSize},
		{"huge", 40000, HugeSize},
		{"max", MaxPool, MaxPool},
		{"oversized", MaxPool + 1, MaxPool + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pool.Get(tt.size)
			if len(b) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(b))
			}
			if cap(b) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(b), tt.minCap)
			}
		})
	}
}

func TestBytePool_PutFilesByCapacity(t *testing.T) {
	pool := NewBytePool()

	// a buffer that grew past its class is filed under the class it satisfies
	grown := make([]byte, 0, LargeSize+100)
	pool.Put(grown)

	b := pool.Get(LargeSize)
	if cap(b) < LargeSize {
		t.Errorf("Reused buffer too small: %d", cap(b))
	}

	// undersized and oversized buffers are dropped without panicking
	pool.Put(make([]byte, 10))
	pool.Put(make([]byte, 0, MaxPool*2))
}

func TestDefaultPool(t *testing.T) {
	b := GetBytes(3000)
	b = append(b, "frame"...)
	if string(b) != "frame" {
		t.Errorf("Unexpected content %q", b)
	}
	PutBytes(b)
}

func TestBytePool_Concurrent(t *testing.T) {
	pool := NewBytePool()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b := pool.Get(512 * (g + 1))
				b = append(b, byte(i))
				if b[0] != byte(i) {
					t.Errorf("Corrupted buffer")
					return
				}
				pool.Put(b)
			}
		}(g)
	}
	wg.Wait()
}

func BenchmarkBytePool_Frame(b *testing.B) {
	pool := NewBytePool()
	for i := 0; i < b.N; i++ {
		buf := pool.Get(30000)
		buf = append(buf, make([]byte, 30000)...)
		pool.Put(buf)
	}
}
