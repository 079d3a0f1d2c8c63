// Package action runs user actions on notifications: mark a thread read,
// mark it done, open it in the browser. Actions are independent tasks on a
// bounded worker set; API calls are rate limited.
package action

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/store"
)

// Kind identifies an action.
type Kind int

const (
	KindRead Kind = iota
	KindDone
	KindOpen
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindDone:
		return "done"
	case KindOpen:
		return "open"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrEmptyRef is returned when an action is given no id or index.
	ErrEmptyRef = errors.New("no notification id or index given")

	// ErrUnknownRef is returned when a reference matches neither a cached
	// thread id nor a list index.
	ErrUnknownRef = errors.New("no such notification")
)

// Client is the subset of the GitHub client the dispatcher needs.
type Client interface {
	MarkThreadRead(ctx context.Context, threadID string) error
	MarkThreadDone(ctx context.Context, threadID string) error
}

// Opener opens a URL in the user's browser.
type Opener interface {
	Open(url string) error
}

// Lookup resolves cached notifications.
type Lookup interface {
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	GetByPosition(ctx context.Context, position int) (*model.Notification, error)
}

// Result is the outcome of one action. It is also the tea.Msg delivered
// to the UI.
type Result struct {
	RequestID string
	Kind      Kind
	Ref       string
	ThreadID  string
	URL       string
	Took      time.Duration
	Err       error
}

// Options bounds the dispatcher.
type Options struct {
	MaxInFlight int
	RatePerSec  int
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{MaxInFlight: 4, RatePerSec: 5}
}

// Dispatcher executes actions concurrently.
type Dispatcher struct {
	client  Client
	lookup  Lookup
	opener  Opener
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	log     zerolog.Logger
	wg      gosync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Non-positive limits fall back to
// DefaultOptions.
func NewDispatcher(client Client, lookup Lookup, opener Opener, opts Options, log zerolog.Logger) *Dispatcher {
	def := DefaultOptions()
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = def.MaxInFlight
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = def.RatePerSec
	}

	return &Dispatcher{
		client:  client,
		lookup:  lookup,
		opener:  opener,
		sem:     semaphore.NewWeighted(int64(opts.MaxInFlight)),
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RatePerSec),
		log:     log.With().Str("component", "action").Logger(),
	}
}

// MarkRead marks a thread as read. It blocks until the request completes.
func (d *Dispatcher) MarkRead(ctx context.Context, threadID string) Result {
	return d.run(ctx, KindRead, threadID)
}

// MarkDone marks a thread as done. It blocks until the request completes.
func (d *Dispatcher) MarkDone(ctx context.Context, threadID string) Result {
	return d.run(ctx, KindDone, threadID)
}

// OpenLink resolves ref against the cache and opens its web URL. ref is a
// thread id, or a one-based list index written as "#N" or "N".
func (d *Dispatcher) OpenLink(ctx context.Context, ref string) Result {
	return d.run(ctx, KindOpen, ref)
}

// Dispatch starts an action in the background and returns a command that
// yields its Result. The action runs even if the command is never
// executed; Wait joins it.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, ref string) tea.Cmd {
	ch := make(chan Result, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ch <- d.run(ctx, kind, ref)
	}()

	return func() tea.Msg {
		return <-ch
	}
}

// Wait blocks until every dispatched action has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Resolve finds the cached notification for ref: an exact thread id first,
// then a one-based list index.
func (d *Dispatcher) Resolve(ctx context.Context, ref string) (*model.Notification, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrEmptyRef
	}
	if d.lookup == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}

	n, err := d.lookup.GetByID(ctx, ref)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	index, convErr := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if convErr != nil || index < 1 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}

	n, err = d.lookup.GetByPosition(ctx, index-1)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}
	return n, err
}

func (d *Dispatcher) run(ctx context.Context, kind Kind, ref string) Result {
	res := Result{
		RequestID: uuid.NewString(),
		Kind:      kind,
		Ref:       ref,
	}
	log := d.log.With().
		Str("request_id", res.RequestID).
		Stringer("action", kind).
		Str("ref", ref).
		Logger()

	start := time.Now()
	res.Err = d.execute(ctx, kind, ref, &res)
	res.Took = time.Since(start)

	if res.Err != nil {
		log.Warn().Err(res.Err).Dur("took", res.Took).Msg("action failed")
	} else {
		log.Info().Str("thread", res.ThreadID).Dur("took", res.Took).Msg("action complete")
	}
	return res
}

func (d *Dispatcher) execute(ctx context.Context, kind Kind, ref string, res *Result) error {
	if strings.TrimSpace(ref) == "" {
		return ErrEmptyRef
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for a free worker: %w", err)
	}
	defer d.sem.Release(1)

	switch kind {
	case KindRead, KindDone:
		res.ThreadID = ref
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
		if kind == KindRead {
			return d.client.MarkThreadRead(ctx, ref)
		}
		return d.client.MarkThreadDone(ctx, ref)

	case KindOpen:
		n, err := d.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		res.ThreadID = n.ID
		res.URL = n.WebURL()
		return d.opener.Open(res.URL)

	default:
		return fmt.Errorf("unknown action %s", kind)
	}
}
