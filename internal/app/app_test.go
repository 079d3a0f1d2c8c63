package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guerinoni/ghn/internal/action"
	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/state"
	appsync "github.com/guerinoni/ghn/internal/sync"
	"github.com/guerinoni/ghn/internal/ui/command"
	"github.com/guerinoni/ghn/tests/testutil"
)

type stubFetcher struct {
	list []model.Notification
	err  error
}

func (f *stubFetcher) ListNotifications(context.Context, bool) ([]model.Notification, error) {
	return f.list, f.err
}

type stubClient struct{}

func (stubClient) MarkThreadRead(context.Context, string) error { return nil }
func (stubClient) MarkThreadDone(context.Context, string) error { return nil }

type stubOpener struct{ urls []string }

func (o *stubOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

type harness struct {
	model   Model
	poller  *appsync.Poller
	state   *state.State
	opener  *stubOpener
	fetcher *stubFetcher
}

func newHarness(t *testing.T, list ...model.Notification) *harness {
	t.Helper()
	st := state.New(true)
	cache := testutil.NewTestStore(t)
	fetcher := &stubFetcher{list: list}
	p := appsync.New(fetcher, st, cache, zerolog.Nop())
	opener := &stubOpener{}
	d := action.NewDispatcher(stubClient{}, cache, opener, action.Options{}, zerolog.Nop())

	m := New(context.Background(), Deps{
		Poller:        p,
		Dispatcher:    d,
		State:         st,
		Log:           zerolog.Nop(),
		Authenticated: true,
		Cache:         cache,
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	return &harness{model: updated.(Model), poller: p, state: st, opener: opener, fetcher: fetcher}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	return cmd
}

// fetch delivers one fetch result and the unread count that follows it.
// The batched command also waits on the poller channel, so the count
// command is run directly.
func (h *harness) fetch() {
	h.send(h.poller.FetchNow(context.Background()))
	h.send(h.model.loadUnreadCount()())
}

func TestFetchResult_UpdatesListAndHeader(t *testing.T) {
	h := newHarness(t,
		testutil.Notification("1", true),
		testutil.Notification("2", true),
		testutil.Notification("3", false),
	)
	h.fetch()

	assert.Equal(t, 2, h.model.unreadCount)
	view := h.model.View()
	assert.Contains(t, view, "[2 unread]")
	for _, title := range []string{"Thread 1", "Thread 2", "Thread 3"} {
		assert.Contains(t, view, title)
	}
}

func TestUnreadCount_StaleCountIsIgnored(t *testing.T) {
	h := newHarness(t, testutil.Notification("1", true))
	h.fetch()
	require.Equal(t, 1, h.model.unreadCount)

	h.send(unreadCountMsg{seq: h.model.countSeq - 1, count: 9})
	assert.Equal(t, 1, h.model.unreadCount)

	h.send(unreadCountMsg{err: errors.New("disk I/O error")})
	assert.Equal(t, 1, h.model.unreadCount)
}

func TestFetchResult_RendersFilterOfAppliedFetch(t *testing.T) {
	h := newHarness(t)
	msg := h.poller.FetchNow(context.Background())
	require.True(t, msg.Applied)
	require.True(t, msg.UnreadOnly)

	// The filter flips to all while the unread-only result is in flight.
	h.state.SetUnreadOnly(false)
	h.send(msg)

	assert.True(t, h.model.shownUnreadOnly)
	view := h.model.View()
	assert.Contains(t, view, "Inbox zero")
	assert.Contains(t, view, "unread · updated")
}

func TestFetchResult_ErrorKeepsListAndShowsStatus(t *testing.T) {
	h := newHarness(t, testutil.Notification("1", true))
	h.fetch()

	h.fetcher.err = errors.New("connection refused")
	h.send(h.poller.FetchNow(context.Background()))

	assert.Contains(t, h.model.View(), "Thread 1")
	assert.True(t, h.model.status.IsErr())
	assert.Contains(t, h.model.status.Text(), "connection refused")
	assert.Contains(t, h.model.syncStatus(), "fetch failed")
	assert.Contains(t, h.model.View(), "✗ fetch failed: connection refused")
}

func TestStatusLine_OnlyLatestMessageClears(t *testing.T) {
	h := newHarness(t)

	h.send(action.Result{Kind: action.KindRead, ThreadID: "1"})
	first := h.model.status.gen
	h.send(action.Result{Kind: action.KindDone, ThreadID: "2", Err: errors.New("boom")})

	h.send(clearStatusMsg{gen: first})
	assert.Contains(t, h.model.status.Text(), "done failed")

	h.send(clearStatusMsg{gen: h.model.status.gen})
	assert.Empty(t, h.model.status.Text())
}

func TestActionResult_Success(t *testing.T) {
	h := newHarness(t)
	h.send(action.Result{Kind: action.KindRead, ThreadID: "9"})

	assert.False(t, h.model.status.IsErr())
	assert.Equal(t, "marked 9 as read", h.model.status.Text())
}

func TestToggleFilterKey(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.state.UnreadOnly())

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.False(t, h.state.UnreadOnly())

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.True(t, h.state.UnreadOnly())
}

func TestOpenKey_OpensSelectedNotification(t *testing.T) {
	h := newHarness(t, testutil.PullRequestNotification("5", 42, 99))
	h.fetch()

	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	require.NotNil(t, cmd)

	res, ok := cmd().(action.Result)
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"https://github.com/a/b/pull/42#issuecomment-99"}, h.opener.urls)
}

func TestCommand_FilterAndUnknown(t *testing.T) {
	h := newHarness(t)

	h.send(command.CommandMsg{Name: "all"})
	assert.False(t, h.state.UnreadOnly())

	h.send(command.CommandMsg{Name: "unread"})
	assert.True(t, h.state.UnreadOnly())

	h.send(command.CommandMsg{Name: "bogus"})
	assert.True(t, h.model.status.IsErr())
}

func TestCommand_OpenByIndex(t *testing.T) {
	h := newHarness(t,
		testutil.Notification("1", true),
		testutil.PullRequestNotification("2", 7, 8),
	)
	h.fetch()

	cmd := h.send(command.CommandMsg{Name: "open", Arg: "#2"})
	require.NotNil(t, cmd)
	res := cmd().(action.Result)
	require.NoError(t, res.Err)
	assert.Equal(t, "https://github.com/a/b/pull/7#issuecomment-8", res.URL)
}

func TestQuitKey(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
