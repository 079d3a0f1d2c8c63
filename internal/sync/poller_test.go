package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guerinoni/ghn/internal/github"
	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/state"
	"github.com/guerinoni/ghn/tests/testutil"
)

type fakeFetcher struct {
	mu    gosync.Mutex
	calls []bool
	fn    func(ctx context.Context, call int, all bool) ([]model.Notification, error)
}

func (f *fakeFetcher) ListNotifications(ctx context.Context, all bool) ([]model.Notification, error) {
	f.mu.Lock()
	f.calls = append(f.calls, all)
	call := len(f.calls)
	f.mu.Unlock()
	return f.fn(ctx, call, all)
}

func (f *fakeFetcher) Calls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.calls))
	copy(out, f.calls)
	return out
}

func listOf(ids ...string) []model.Notification {
	out := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		out = append(out, testutil.Notification(id, true))
	}
	return out
}

func ids(list []model.Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestFetchNow_UsesFilter(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		return listOf("1"), nil
	}}
	st := state.New(true)
	p := New(f, st, nil, zerolog.Nop())

	msg := p.FetchNow(context.Background())
	require.NoError(t, msg.Err)
	assert.True(t, msg.Applied)
	assert.True(t, msg.UnreadOnly)

	st.SetUnreadOnly(false)
	p.FetchNow(context.Background())

	assert.Equal(t, []bool{false, true}, f.Calls())
}

func TestFetchNow_ReplacesStateAndCache(t *testing.T) {
	lists := [][]model.Notification{listOf("1", "2", "3"), listOf("4")}
	f := &fakeFetcher{fn: func(_ context.Context, call int, _ bool) ([]model.Notification, error) {
		return lists[call-1], nil
	}}
	st := state.New(true)
	cache := testutil.NewTestStore(t)
	p := New(f, st, cache, zerolog.Nop())
	ctx := context.Background()

	p.FetchNow(ctx)
	p.FetchNow(ctx)

	assert.Equal(t, []string{"4"}, ids(st.Snapshot().Notifications))

	cached, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(cached))
}

func TestFetchNow_ErrorKeepsPreviousList(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{fn: func(_ context.Context, call int, _ bool) ([]model.Notification, error) {
		if call == 1 {
			return listOf("1"), nil
		}
		return nil, boom
	}}
	st := state.New(true)
	p := New(f, st, nil, zerolog.Nop())

	p.FetchNow(context.Background())
	msg := p.FetchNow(context.Background())

	assert.ErrorIs(t, msg.Err, boom)
	assert.False(t, msg.AuthError)
	assert.Equal(t, []string{"1"}, ids(st.Snapshot().Notifications))
	assert.ErrorIs(t, st.LastError(), boom)
	assert.Equal(t, SyncError, p.Status().State)
}

func TestFetchNow_FlagsAuthErrors(t *testing.T) {
	authErr := &github.AuthError{APIError: github.APIError{StatusCode: 401, Message: "Bad credentials"}}
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		return nil, authErr
	}}
	p := New(f, state.New(true), nil, zerolog.Nop())

	msg := p.FetchNow(context.Background())
	assert.True(t, msg.AuthError)
}

func TestFetch_StaleResultIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := &fakeFetcher{fn: func(_ context.Context, call int, _ bool) ([]model.Notification, error) {
		if call == 1 {
			close(started)
			<-release
			return listOf("stale"), nil
		}
		return listOf("fresh"), nil
	}}
	st := state.New(true)
	cache := testutil.NewTestStore(t)
	p := New(f, st, cache, zerolog.Nop())
	ctx := context.Background()

	slow := make(chan FetchResultMsg, 1)
	go func() { slow <- p.FetchNow(ctx) }()
	<-started

	fast := p.FetchNow(ctx)
	close(release)
	stale := <-slow

	assert.True(t, fast.Applied)
	assert.False(t, stale.Applied)
	assert.Less(t, stale.Seq, fast.Seq)

	snap := st.Snapshot()
	assert.Equal(t, []string{"fresh"}, ids(snap.Notifications))
	assert.Equal(t, fast.Seq, snap.Seq)

	cached, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids(cached))
}

func TestStart_FetchesImmediatelyAndOnTick(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		return listOf("1"), nil
	}}
	p := New(f, state.New(true), nil, zerolog.Nop())
	p.interval = 20 * time.Millisecond

	cmd := p.Start(context.Background())
	require.NotNil(t, cmd)
	defer p.Stop()

	first, ok := cmd().(FetchResultMsg)
	require.True(t, ok)
	assert.False(t, first.Manual)
	assert.True(t, first.Applied)

	second, ok := p.WaitForNextResult()().(FetchResultMsg)
	require.True(t, ok)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestStart_Twice(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		return nil, nil
	}}
	p := New(f, state.New(true), nil, zerolog.Nop())
	require.NotNil(t, p.Start(context.Background()))
	defer p.Stop()
	assert.Nil(t, p.Start(context.Background()))
}

func TestStop_CancelsInFlightFetch(t *testing.T) {
	entered := make(chan struct{})
	f := &fakeFetcher{fn: func(ctx context.Context, _ int, _ bool) ([]model.Notification, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	st := state.New(true)
	p := New(f, st, nil, zerolog.Nop())

	p.Start(context.Background())
	<-entered
	p.Stop()

	assert.NoError(t, st.LastError())
	assert.Equal(t, SyncIdle, p.Status().State)
}

func TestApplyFilter_RefreshesWithNewFilter(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		return listOf("1"), nil
	}}
	st := state.New(true)
	p := New(f, st, nil, zerolog.Nop())
	p.interval = time.Hour

	cmd := p.Start(context.Background())
	defer p.Stop()
	cmd()

	p.ApplyFilter(false)
	msg, ok := p.WaitForNextResult()().(FetchResultMsg)
	require.True(t, ok)

	assert.True(t, msg.Manual)
	assert.False(t, msg.UnreadOnly)
	assert.False(t, st.UnreadOnly())
	assert.Equal(t, []bool{false, true}, f.Calls())
}

func TestRefresh_NoopWhenStopped(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		return nil, nil
	}}
	p := New(f, state.New(true), nil, zerolog.Nop())
	p.Refresh()
	assert.Empty(t, f.Calls())
}

func TestFetch_SnapshotRecordsFetchFilter(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := &fakeFetcher{fn: func(context.Context, int, bool) ([]model.Notification, error) {
		close(started)
		<-release
		return listOf("1"), nil
	}}
	st := state.New(true)
	p := New(f, st, nil, zerolog.Nop())

	done := make(chan FetchResultMsg, 1)
	go func() { done <- p.FetchNow(context.Background()) }()
	<-started

	st.SetUnreadOnly(false)
	close(release)
	msg := <-done

	require.True(t, msg.Applied)
	assert.True(t, msg.UnreadOnly)
	assert.True(t, st.Snapshot().UnreadOnly)
}
