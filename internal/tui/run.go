package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/origin/internal/cli"
)

// Run starts the chat interface and blocks until the user quits or ctx is
// canceled.
func Run(ctx context.Context, responder cli.Responder, opts ...Option) error {
	if responder == nil {
		return fmt.Errorf("responder is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.Responder = responder

	p := tea.NewProgram(newModel(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
