package main

import (
	"fmt"
	"time"

	"github.com/guerinoni/ghn/internal/action"
	"github.com/guerinoni/ghn/internal/browser"
	"github.com/guerinoni/ghn/internal/credential"
	"github.com/guerinoni/ghn/internal/github"
	"github.com/guerinoni/ghn/internal/state"
	"github.com/guerinoni/ghn/internal/store"
	appsync "github.com/guerinoni/ghn/internal/sync"
)

// services bundles everything one ghn invocation talks to.
type services struct {
	client     *github.Client
	state      *state.State
	cache      *store.SQLiteStore
	poller     *appsync.Poller
	dispatcher *action.Dispatcher
}

// newServices resolves credentials and wires the client, cache, poller and
// dispatcher. unreadOnly is the initial filter.
func newServices(unreadOnly bool) (*services, error) {
	token := resolveToken()
	if token.Source == credential.SourceNone {
		logger.Warn().Msg("no GitHub token found; requests will be unauthenticated")
	} else {
		logger.Debug().Str("source", string(token.Source)).Msg("resolved GitHub token")
	}

	client := newClient(token.Value)

	cache, err := store.NewMemoryStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	st := state.New(unreadOnly)
	opener := browser.NewOpener(cfg.Browser.Command, logger)

	return &services{
		client: client,
		state:  st,
		cache:  cache,
		poller: appsync.New(client, st, cache, logger),
		dispatcher: action.NewDispatcher(client, cache, opener, action.Options{
			MaxInFlight: cfg.Actions.MaxInFlight,
			RatePerSec:  cfg.Actions.RatePerSec,
		}, logger),
	}, nil
}

// apiHost is the GitHub host the configured API root belongs to.
func apiHost() string {
	return credential.HostForAPI(cfg.API.BaseURL)
}

func resolveToken() credential.Token {
	return credential.Resolve(credential.ResolveOptions{
		Host:      apiHost(),
		HostsPath: cfg.Auth.HostsPath,
	})
}

func newClient(token string) *github.Client {
	return github.NewClient(github.Options{
		BaseURL:   cfg.API.BaseURL,
		Token:     token,
		UserAgent: cfg.API.UserAgent,
		Timeout:   time.Duration(cfg.API.TimeoutSec) * time.Second,
	})
}

// Close stops background work and releases the cache.
func (s *services) Close() error {
	s.poller.Stop()
	s.dispatcher.Wait()
	return s.cache.Close()
}
