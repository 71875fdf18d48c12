package navigator

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Source supplies the snapshot a tick runs against. Implementations must not
// block; they should return the last value received from the transport.
type Source interface {
	TickInput() TickInput
}

// Sink consumes the setpoint produced by each tick.
type Sink interface {
	Consume(Setpoint)
}

// Start runs the pipeline in the background at the configured tick frequency
// until ctx is canceled or Close is called. The loop is a single goroutine,
// so the yaw lock and reference anchor writes stay serialized.
func (n *Navigator) Start(ctx context.Context, source Source, sink Sink) error {
	n.loopMu.Lock()
	defer n.loopMu.Unlock()
	if n.cancel != nil {
		return errors.New("navigator already started")
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	period := n.cfg.tickPeriod()

	n.activeBackgroundWorkers.Add(1)
	utils.PanicCapturingGo(func() {
		defer n.activeBackgroundWorkers.Done()
		for {
			if !utils.SelectContextOrWait(cancelCtx, period) {
				return
			}
			sp, err := n.Tick(source.TickInput())
			if err != nil {
				n.logger.Errorw("tick failed", "error", err)
			}
			// Even a failed tick yields a safe hold setpoint.
			sink.Consume(sp)
		}
	})
	return nil
}

// Close stops the background loop, if running, and waits for it to exit.
func (n *Navigator) Close() {
	n.loopMu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.loopMu.Unlock()
	n.activeBackgroundWorkers.Wait()
}
