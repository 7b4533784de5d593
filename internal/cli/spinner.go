package cli

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const spinnerInterval = 100 * time.Millisecond

// newSpinner creates an indeterminate progress bar for model calls whose
// duration is unknown.
func newSpinner(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription(SubtleStyle.Render(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// WithSpinner runs fn while a spinner ticks on w. The spinner is cleared
// before the result is returned.
func WithSpinner[T any](ctx context.Context, w io.Writer, description string, fn func(context.Context) (T, error)) (T, error) {
	bar := newSpinner(w, description)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	result, err := fn(ctx)
	close(done)
	<-stopped
	_ = bar.Finish()
	return result, err
}
