package tui

import (
	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/cli"
	"github.com/Veraticus/origin/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Responder cli.Responder
	Theme     themes.Theme
	Base      advisor.Request
	Width     int
	Height    int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithContext sets the financial and survey context sent with every turn.
func WithContext(financial, survey string) Option {
	return func(c *Config) {
		c.Base.FinancialContext = financial
		c.Base.SurveyContext = survey
	}
}
