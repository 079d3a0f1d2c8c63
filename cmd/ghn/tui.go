package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/guerinoni/ghn/internal/app"
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := newServices(cfg.Display.UnreadOnly)
	if err != nil {
		return err
	}

	m := app.New(ctx, app.Deps{
		Poller:        svc.poller,
		Dispatcher:    svc.dispatcher,
		State:         svc.state,
		Log:           logger,
		Cache:         svc.cache,
		Authenticated: svc.client.Authenticated(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	cancel()
	if err := svc.Close(); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}

	if runErr != nil {
		return fmt.Errorf("running TUI: %w", runErr)
	}
	return nil
}
