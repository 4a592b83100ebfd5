package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func receive(t *testing.T, ch <-chan Neighbors) Neighbors {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "channel closed")
		return n
	case <-time.After(time.Second):
		t.Fatal("no emission")
		return Neighbors{}
	}
}

func TestNeighbors(t *testing.T) {
	t.Run("Should resolve both sides in the middle", func(t *testing.T) {
		x := NewIndex()
		x.SetList([]string{"a", "b", "c"})
		x.SetCurrentID("b")
		assert.Equal(t, Neighbors{PrevID: strPtr("a"), NextID: strPtr("c"), Index: 1, Total: 3}, x.Neighbors())
	})

	t.Run("Should have no previous at the head and no next at the tail", func(t *testing.T) {
		x := NewIndex()
		x.SetList([]string{"a", "b", "c"})

		x.SetCurrentID("a")
		assert.Equal(t, Neighbors{NextID: strPtr("b"), Index: 0, Total: 3}, x.Neighbors())

		x.SetCurrentID("c")
		assert.Equal(t, Neighbors{PrevID: strPtr("b"), Index: 2, Total: 3}, x.Neighbors())
	})

	t.Run("Should report -1 for an unknown or cleared id", func(t *testing.T) {
		x := NewIndex()
		x.SetList([]string{"a", "b", "c"})
		x.SetCurrentID("zzz")
		assert.Equal(t, Neighbors{Index: -1, Total: 3}, x.Neighbors())

		x.SetCurrentID("")
		assert.Equal(t, Neighbors{Index: -1, Total: 3}, x.Neighbors())
	})

	t.Run("Should drop empty ids and keep first occurrences", func(t *testing.T) {
		x := NewIndex()
		x.SetList([]string{"a", "", "b", "a", "c", "b"})
		assert.Equal(t, []string{"a", "b", "c"}, x.IDs())
		x.SetCurrentID("c")
		assert.Equal(t, 2, x.Neighbors().Index)
	})

	t.Run("Should keep the pointer when the list changes", func(t *testing.T) {
		x := NewIndex()
		x.SetCurrentID("b")
		assert.Equal(t, Neighbors{Index: -1, Total: 0}, x.Neighbors())

		x.SetList([]string{"b", "a"})
		assert.Equal(t, "b", x.CurrentID())
		assert.Equal(t, Neighbors{NextID: strPtr("a"), Index: 0, Total: 2}, x.Neighbors())
	})

	t.Run("Should not alias the caller's slice", func(t *testing.T) {
		ids := []string{"a", "b"}
		x := NewIndex()
		x.SetList(ids)
		ids[0] = "mutated"
		assert.Equal(t, []string{"a", "b"}, x.IDs())
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("Should emit the current value immediately", func(t *testing.T) {
		x := NewIndex()
		x.SetList([]string{"a", "b"})
		x.SetCurrentID("a")

		ch, cancel := x.Subscribe()
		defer cancel()
		assert.Equal(t, Neighbors{NextID: strPtr("b"), Index: 0, Total: 2}, receive(t, ch))
	})

	t.Run("Should re-emit after list and pointer changes", func(t *testing.T) {
		x := NewIndex()
		ch, cancel := x.Subscribe()
		defer cancel()
		assert.Equal(t, Neighbors{Index: -1, Total: 0}, receive(t, ch))

		x.SetList([]string{"a", "b", "c"})
		assert.Equal(t, Neighbors{Index: -1, Total: 3}, receive(t, ch))

		x.SetCurrentID("b")
		assert.Equal(t, 1, receive(t, ch).Index)
	})

	t.Run("Should coalesce to the latest value for a slow reader", func(t *testing.T) {
		x := NewIndex()
		x.SetList([]string{"a", "b", "c"})
		ch, cancel := x.Subscribe()
		defer cancel()

		x.SetCurrentID("a")
		x.SetCurrentID("b")
		x.SetCurrentID("c")

		assert.Equal(t, Neighbors{PrevID: strPtr("b"), Index: 2, Total: 3}, receive(t, ch))
		select {
		case n := <-ch:
			t.Fatalf("unexpected extra emission %+v", n)
		default:
		}
	})

	t.Run("Should close the channel on cancel and stop emitting", func(t *testing.T) {
		x := NewIndex()
		ch, cancel := x.Subscribe()
		receive(t, ch)

		cancel()
		cancel()
		_, ok := <-ch
		assert.False(t, ok)

		assert.NotPanics(t, func() { x.SetCurrentID("a") })
	})

	t.Run("Should close every subscriber when the index closes", func(t *testing.T) {
		x := NewIndex()
		first, cancelFirst := x.Subscribe()
		second, _ := x.Subscribe()
		receive(t, first)
		receive(t, second)

		x.Close()
		_, ok := <-first
		assert.False(t, ok)
		_, ok = <-second
		assert.False(t, ok)

		assert.NotPanics(t, cancelFirst)
		assert.NotPanics(t, func() { x.SetList([]string{"a"}) })

		late, _ := x.Subscribe()
		_, ok = <-late
		assert.False(t, ok)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("Should keep one index per session", func(t *testing.T) {
		r := NewRegistry()
		a := r.For("admin-1")
		assert.Same(t, a, r.For("admin-1"))
		assert.NotSame(t, a, r.For("admin-2"))
		assert.Equal(t, 2, r.Len())

		r.Drop("admin-2")
		assert.Equal(t, 1, r.Len())
	})

	t.Run("Should end live streams of a dropped session", func(t *testing.T) {
		r := NewRegistry()
		ch, cancel := r.For("admin-1").Subscribe()
		defer cancel()
		receive(t, ch)

		r.Drop("admin-1")
		r.Drop("admin-1")

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("stream still open after logout")
		}
	})

	t.Run("Should rebuild every index and keep each pointer", func(t *testing.T) {
		r := NewRegistry()
		r.For("admin-1").SetCurrentID("b")
		r.For("admin-2").SetCurrentID("c")

		r.RebuildAll([]string{"a", "b", "c"})

		assert.Equal(t, 1, r.For("admin-1").Neighbors().Index)
		assert.Equal(t, 2, r.For("admin-2").Neighbors().Index)
	})
}

type mockWatcher struct{ mock.Mock }

func (m *mockWatcher) Watch(ctx context.Context, onChange func()) error {
	args := m.Called(ctx, onChange)
	return args.Error(0)
}

type mockLister struct{ mock.Mock }

func (m *mockLister) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestFollow(t *testing.T) {
	t.Run("Should rebuild indexes on each notification", func(t *testing.T) {
		ctx := context.Background()
		r := NewRegistry()
		r.For("admin-1").SetCurrentID("b")

		watcher := new(mockWatcher)
		lister := new(mockLister)
		lister.On("ListIDs", ctx).Return([]string{"a", "b"}, nil).Once()
		lister.On("ListIDs", ctx).Return(nil, errors.New("db down")).Once()
		watcher.On("Watch", ctx, mock.Anything).Run(func(args mock.Arguments) {
			onChange := args.Get(1).(func())
			onChange()
			onChange()
		}).Return(context.Canceled)

		err := Follow(ctx, watcher, lister, r)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Neighbors{PrevID: strPtr("a"), Index: 1, Total: 2}, r.For("admin-1").Neighbors())
		lister.AssertExpectations(t)
	})
}
