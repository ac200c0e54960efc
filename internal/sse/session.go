package sse

import (
	"context"

	"github.com/mauropereiira/Moldavite-sub001/internal/lifecycle"
)

// Forward publishes editing-session events until events is closed or ctx
// is done.
func (b *Broker) Forward(ctx context.Context, events <-chan lifecycle.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			b.Publish(Event{Type: e.Type, Data: e})
		}
	}
}
