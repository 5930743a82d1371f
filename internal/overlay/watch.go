package overlay

import (
	"context"

	"ScoreScribble/internal/state"
)

// watch starts following host's size and returns the function that stops
// it. Called with c.mu held.
func (c *Controller) watch(ctx context.Context, host Host) (stop func()) {
	log := state.Logger()
	if n, ok := host.(ResizeNotifier); ok {
		log.Info("overlay: following host resize notifications")
		return n.NotifyResize(c.syncSize)
	}

	log.Info("overlay: polling host size", "interval", c.pollInterval)
	ctx, cancel := context.WithCancel(ctx)
	t := c.clock.NewTicker(c.pollInterval)
	go c.poll(ctx, t)
	return cancel
}

func (c *Controller) poll(ctx context.Context, t state.Ticker) {
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			c.syncSize()
		}
	}
}
