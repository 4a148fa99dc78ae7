package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	cfg := newConfig(opts...)
	if cfg.Store == nil {
		return fmt.Errorf("storage is required")
	}

	changes, unsubscribe := subscribe(cfg.Bus)
	defer unsubscribe()

	p := tea.NewProgram(newModel(cfg, changes),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
