package collector

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// watchTransient watches a target that becomes unreachable as soon as
// this function returns.
func watchTransient(t *testing.T, c *GC[target]) *Handle[target] {
	t.Helper()
	obj := &target{id: 1}
	h := c.Watch(obj)
	require.Same(t, obj, h.Value())
	runtime.KeepAlive(obj)
	return h
}

// drainEventually forces collection cycles until the collector reports
// ready handles or the attempt budget runs out.
func drainEventually(c *GC[target]) []*Handle[target] {
	for range 100 {
		runtime.GC()
		if handles := c.Drain(); len(handles) > 0 {
			return handles
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func TestGCDrainAfterCollection(t *testing.T) {
	c := NewGC[target]()
	h := watchTransient(t, c)

	drained := drainEventually(c)
	require.Len(t, drained, 1, "handle should become ready once its target is collected")
	assert.Equal(t, h, drained[0])
	assert.Nil(t, h.Value())
}

func TestGCReleaseStopsReadiness(t *testing.T) {
	c := NewGC[target]()
	h := watchTransient(t, c)
	c.Release(h)

	for range 10 {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, 0, c.Pending(), "released handle must not become ready")
	assert.Nil(t, c.Drain())
}

func TestGCLiveTargetNotReady(t *testing.T) {
	c := NewGC[target]()
	obj := &target{id: 1}
	h := c.Watch(obj)

	for range 5 {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, 0, c.Pending(), "reachable target must not be reported")
	assert.Same(t, obj, h.Value())
	runtime.KeepAlive(obj)
}

func TestGCReadySignal(t *testing.T) {
	c := NewGC[target]()
	watchTransient(t, c)

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case <-c.Ready():
			assert.Len(t, c.Drain(), 1)
			return
		case <-deadline:
			t.Fatal("no readiness signal after repeated collections")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestGCMultipleHandlesSameTarget(t *testing.T) {
	c := NewGC[target]()

	var handles []*Handle[target]
	func() {
		obj := &target{id: 2}
		handles = append(handles, c.Watch(obj), c.Watch(obj), c.Watch(obj))
		runtime.KeepAlive(obj)
	}()

	var drained []*Handle[target]
	for range 100 {
		runtime.GC()
		drained = append(drained, c.Drain()...)
		if len(drained) == 3 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	assert.ElementsMatch(t, handles, drained)
}

func BenchmarkGCWatch(b *testing.B) {
	c := NewGC[target]()
	obj := &target{id: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := c.Watch(obj)
		c.Release(h)
	}
	runtime.KeepAlive(obj)
}
