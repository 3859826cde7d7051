package cli

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Rendering...")
	s.Start()
	time.Sleep(20 * time.Millisecond)

	s.Stop()
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q to a non-terminal writer", buf.String())
	}
}

func TestSpinnerContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"canceled", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 10*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinner(ctx, &bytes.Buffer{}, "Rendering...")
			s.Start()
			<-ctx.Done()

			if !s.Canceled() {
				t.Error("Canceled() = false after the context ended")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Rendering...")
	s.Start()
	s.StopWithError("Render failed")
}
