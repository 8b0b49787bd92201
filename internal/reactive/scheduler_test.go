package reactive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScheduler_Batching(t *testing.T) {
	t.Run("many_writes_one_run", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0, "b": 0})
		Observe(m, false)

		runs := 0
		NewWatcher(nil, func(any) any {
			return m.Get("a").(int) + m.Get("b").(int)
		}, func(newVal, oldVal any) { runs++ }, WatcherOptions{}, false)

		release := holdTick(t)
		m.Set("a", 1)
		m.Set("b", 2)
		m.Set("a", 3)
		release()
		waitTick(t)
		require.Equal(t, 1, runs)
	})

	t.Run("flush_runs_in_id_order", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"x": 0})
		Observe(m, false)

		var order []string
		for _, name := range []string{"first", "second", "third"} {
			name := name
			NewWatcher(nil, func(any) any { return m.Get("x") }, func(newVal, oldVal any) {
				order = append(order, name)
			}, WatcherOptions{}, false)
		}

		m.Set("x", 1)
		waitTick(t)
		require.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("watcher_queued_mid_flush_runs_same_flush", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0, "b": 0})
		Observe(m, false)

		var order []string
		NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) {
			order = append(order, "a")
			m.Set("b", m.Get("b").(int)+1)
		}, WatcherOptions{}, false)
		NewWatcher(nil, func(any) any { return m.Get("b") }, func(newVal, oldVal any) {
			order = append(order, "b")
		}, WatcherOptions{}, false)

		m.Set("a", 1)
		waitTick(t)
		require.Equal(t, []string{"a", "b"}, order)
	})

	t.Run("before_hook_precedes_callback", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0})
		Observe(m, false)

		var order []string
		NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) {
			order = append(order, "cb")
		}, WatcherOptions{Before: func() { order = append(order, "before") }}, false)

		m.Set("a", 1)
		waitTick(t)
		require.Equal(t, []string{"before", "cb"}, order)
	})

	t.Run("torn_down_watcher_is_skipped_in_queue", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0})
		Observe(m, false)

		calls := 0
		w := NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) { calls++ }, WatcherOptions{}, false)

		release := holdTick(t)
		m.Set("a", 1)
		w.Teardown()
		release()
		waitTick(t)
		require.Zero(t, calls)
	})
}

func TestScheduler_DeterministicMode(t *testing.T) {
	t.Run("notification_order_follows_ids", func(t *testing.T) {
		useSyncMode(t)
		m := NewMapFrom(map[string]any{"x": 0})
		Observe(m, false)

		var order []int
		// Subscribe in one order; ids decide delivery.
		w1 := NewWatcher(nil, func(any) any { return m.Get("x") }, func(newVal, oldVal any) {
			order = append(order, 1)
		}, WatcherOptions{}, false)
		w2 := NewWatcher(nil, func(any) any { return m.Get("x") }, func(newVal, oldVal any) {
			order = append(order, 2)
		}, WatcherOptions{}, false)
		require.Greater(t, w2.ID(), w1.ID())

		m.Set("x", 7)
		require.Equal(t, []int{1, 2}, order)
	})

	t.Run("repeat_runs_are_identical", func(t *testing.T) {
		useSyncMode(t)
		run := func() []string {
			m := NewMapFrom(map[string]any{"a": 0, "b": 0})
			Observe(m, false)
			var order []string
			NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) {
				order = append(order, "wa")
			}, WatcherOptions{}, false)
			NewWatcher(nil, func(any) any { return m.Get("b") }, func(newVal, oldVal any) {
				order = append(order, "wb")
			}, WatcherOptions{}, false)
			m.Set("a", 1)
			m.Set("b", 1)
			return order
		}
		require.Equal(t, run(), run())
	})

	t.Run("sync_watchers_fire_in_notification_order", func(t *testing.T) {
		// A sync watcher runs during notification; queued watchers run in
		// the flush that follows. Their relative order is notification
		// order, not id order.
		useSyncMode(t)
		m := NewMapFrom(map[string]any{"x": 0})
		Observe(m, false)

		var order []string
		NewWatcher(nil, func(any) any { return m.Get("x") }, func(newVal, oldVal any) {
			order = append(order, "queued")
		}, WatcherOptions{}, false)
		NewWatcher(nil, func(any) any { return m.Get("x") }, func(newVal, oldVal any) {
			order = append(order, "sync")
		}, WatcherOptions{Sync: true}, false)

		m.Set("x", 1)
		require.Equal(t, []string{"queued", "sync"}, order)
	})
}

func TestScheduler_CycleDetection(t *testing.T) {
	useSyncMode(t)
	prev := Config.MaxUpdateCount
	Config.MaxUpdateCount = 10
	t.Cleanup(func() { Config.MaxUpdateCount = prev })

	warnings := captureWarnings(t)
	m := NewMapFrom(map[string]any{"n": 0})
	Observe(m, false)

	runs := 0
	NewWatcher(nil, func(any) any { return m.Get("n") }, func(newVal, oldVal any) {
		runs++
		m.Set("n", m.Get("n").(int)+1)
	}, WatcherOptions{User: true}, false)

	m.Set("n", 1)

	require.Equal(t, Config.MaxUpdateCount+1, runs)
	require.Len(t, *warnings, 1)
	require.True(t, strings.Contains((*warnings)[0], "infinite update loop"))
}

func TestScheduler_PostFlushHooks(t *testing.T) {
	t.Run("updated_hook_receives_flushed_watchers", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0})
		Observe(m, false)

		w := NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) {}, WatcherOptions{}, false)

		var flushed []*Watcher
		OnFlushUpdated(func(ws []*Watcher) { flushed = append(flushed, ws...) })

		m.Set("a", 1)
		waitTick(t)
		require.Equal(t, []*Watcher{w}, flushed)
	})

	t.Run("activated_hook_receives_queued_batch", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0})
		Observe(m, false)

		var activated []*Watcher
		OnFlushActivated(func(ws []*Watcher) { activated = append(activated, ws...) })

		var keepAlive *Watcher
		keepAlive = NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) {
			QueueActivated(keepAlive)
		}, WatcherOptions{}, false)

		m.Set("a", 1)
		waitTick(t)
		require.Equal(t, []*Watcher{keepAlive}, activated)
	})
}

func TestNextTick(t *testing.T) {
	t.Run("callbacks_run_in_order", func(t *testing.T) {
		useAsyncMode(t)
		var order []int
		done := make(chan struct{})
		NextTick(func() { order = append(order, 1) })
		NextTick(func() { order = append(order, 2) })
		NextTick(func() { close(done) })
		<-done
		require.Equal(t, []int{1, 2}, order)
	})

	t.Run("tick_runs_after_flush", func(t *testing.T) {
		useAsyncMode(t)
		m := NewMapFrom(map[string]any{"a": 0})
		Observe(m, false)

		var order []string
		NewWatcher(nil, func(any) any { return m.Get("a") }, func(newVal, oldVal any) {
			order = append(order, "flush")
		}, WatcherOptions{}, false)

		m.Set("a", 1)
		done := make(chan struct{})
		NextTick(func() {
			order = append(order, "tick")
			close(done)
		})
		<-done
		require.Equal(t, []string{"flush", "tick"}, order)
	})
}
