package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/guerinoni/ghn/internal/github"
	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/state"
	"github.com/guerinoni/ghn/internal/store"
)

// SyncState represents the current state of the notification fetcher.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncFetching
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncFetching:
		return "fetching"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus is a point-in-time view of the poller. When the last
// successful fetch landed is recorded in the state snapshot.
type SyncStatus struct {
	State    SyncState
	Error    error
	InFlight int
}

// FetchResultMsg is a tea.Msg sent when a fetch completes.
type FetchResultMsg struct {
	// Seq is the sequence number reserved when the fetch started.
	Seq uint64

	Notifications []model.Notification
	UnreadOnly    bool

	// Applied is false when a newer fetch had already been applied, in
	// which case Notifications were discarded.
	Applied bool

	// Manual is true for user-triggered refreshes.
	Manual bool

	Err       error
	AuthError bool
}

// Fetcher lists notifications. all=false restricts the result to unread
// threads.
type Fetcher interface {
	ListNotifications(ctx context.Context, all bool) ([]model.Notification, error)
}

// PollInterval is the fixed period between background fetches.
const PollInterval = 60 * time.Second

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// Poller refreshes the shared notification list in the background and on
// demand. Fetches may overlap; each reserves a sequence number before it
// starts and only a result newer than the last applied one replaces the
// list.
type Poller struct {
	fetcher  Fetcher
	state    *state.State
	cache    store.Cache
	log      zerolog.Logger
	interval time.Duration
	resultCh chan FetchResultMsg

	// applyMu orders state and cache writes so the cache never holds an
	// older list than the state.
	applyMu gosync.Mutex

	mu       gosync.Mutex
	status   SyncStatus
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       gosync.WaitGroup
	inFlight int
}

// New creates a Poller. cache may be nil.
func New(f Fetcher, st *state.State, cache store.Cache, log zerolog.Logger) *Poller {
	return &Poller{
		fetcher:  f,
		state:    st,
		cache:    cache,
		log:      log.With().Str("component", "poller").Logger(),
		interval: PollInterval,
		resultCh: make(chan FetchResultMsg, 16),
	}
}

// Start launches the polling goroutine and returns a command that waits
// for the first result. The first fetch happens immediately.
func (p *Poller) Start(ctx context.Context) tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	runCtx := p.ctx
	p.mu.Unlock()

	go p.run(runCtx)

	return p.waitForResult()
}

// Stop cancels the polling loop and any in-flight fetches and waits for
// them to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
}

// Refresh starts an immediate fetch without waiting for the next tick.
// The periodic schedule is not reset.
func (p *Poller) Refresh() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if msg, ok := p.fetch(ctx, true); ok {
			p.sendResult(msg)
		}
	}()
}

// ApplyFilter switches between unread-only and all notifications and
// refreshes so the list reflects the new filter.
func (p *Poller) ApplyFilter(unreadOnly bool) {
	p.state.SetUnreadOnly(unreadOnly)
	p.log.Debug().Bool("unread_only", unreadOnly).Msg("filter changed")
	p.Refresh()
}

// FetchNow performs a synchronous fetch on the caller's goroutine and
// applies its result. It does not require Start.
func (p *Poller) FetchNow(ctx context.Context) FetchResultMsg {
	msg, _ := p.fetch(ctx, true)
	return msg
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if msg, ok := p.fetch(ctx, false); ok {
		p.sendResult(msg)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if msg, ok := p.fetch(ctx, false); ok {
				p.sendResult(msg)
			}
		}
	}
}

// fetch performs one list request and applies it if it is the newest
// result. ok is false when the fetch was abandoned because ctx was
// cancelled.
func (p *Poller) fetch(parent context.Context, manual bool) (FetchResultMsg, bool) {
	seq := p.state.NextSeq()
	unreadOnly := p.state.UnreadOnly()
	msg := FetchResultMsg{Seq: seq, UnreadOnly: unreadOnly, Manual: manual}

	p.begin()

	ctx, cancel := context.WithTimeout(parent, fetchTimeout)
	defer cancel()

	log := p.log.With().Uint64("seq", seq).Bool("all", !unreadOnly).Logger()
	log.Debug().Bool("manual", manual).Msg("fetching notifications")

	start := time.Now()
	list, err := p.fetcher.ListNotifications(ctx, !unreadOnly)
	if err != nil {
		if parent.Err() != nil {
			p.end(nil, false)
			return msg, false
		}
		p.state.SetError(err)
		p.end(err, false)
		log.Warn().Err(err).Dur("took", time.Since(start)).Msg("fetch failed")
		msg.Err = err
		msg.AuthError = github.IsAuthError(err)
		return msg, true
	}

	p.applyMu.Lock()
	applied := p.state.Apply(seq, unreadOnly, list)
	if applied && p.cache != nil {
		if cacheErr := p.cache.ReplaceAll(ctx, seq, list); cacheErr != nil {
			log.Error().Err(cacheErr).Msg("replacing cached notifications")
		}
	}
	p.applyMu.Unlock()

	p.end(nil, applied)
	log.Debug().
		Int("count", len(list)).
		Bool("applied", applied).
		Dur("took", time.Since(start)).
		Msg("fetch complete")

	msg.Notifications = list
	msg.Applied = applied
	return msg, true
}

func (p *Poller) begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight++
	p.status.InFlight = p.inFlight
	p.status.State = SyncFetching
}

func (p *Poller) end(err error, applied bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--
	p.status.InFlight = p.inFlight
	if err != nil {
		p.status.Error = err
	} else if applied {
		p.status.Error = nil
	}
	switch {
	case p.inFlight > 0:
		p.status.State = SyncFetching
	case p.status.Error != nil:
		p.status.State = SyncError
	default:
		p.status.State = SyncIdle
	}
}

// sendResult sends a FetchResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg FetchResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		p.log.Debug().Uint64("seq", msg.Seq).Msg("result channel full, dropping message")
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next fetch result.
// Call it after handling a FetchResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
