package gate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_MutualExclusion(t *testing.T) {
	g := New()

	var inFlight int32
	var overlapped int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.Lock()
				if atomic.AddInt32(&inFlight, 1) > 1 {
					atomic.StoreInt32(&overlapped, 1)
				}
				time.Sleep(time.Microsecond)
				atomic.AddInt32(&inFlight, -1)
				g.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlapped), "gate admitted two holders at once")
}

func TestGate_UnlockAllowsNextHolder(t *testing.T) {
	g := New()
	g.Lock()

	acquired := make(chan struct{})
	go func() {
		g.Lock()
		close(acquired)
		g.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the gate while it was held")
	case <-time.After(10 * time.Millisecond):
	}

	g.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the gate after release")
	}
}
