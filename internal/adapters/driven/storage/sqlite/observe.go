package sqlite

import (
	"context"

	"github.com/custodia-labs/gamefeed-cli/internal/logger"
)

// observe emits query's result now and again after every change on topic,
// until ctx is done. The first query runs before observe returns so its
// error reaches the caller.
func observe[T any](
	ctx context.Context,
	b *broadcaster,
	topic string,
	query func(context.Context) ([]T, error),
) (<-chan []T, error) {
	// Subscribe first so a write landing during the initial query is not missed.
	signal, release := b.subscribe(topic)

	items, err := query(ctx)
	if err != nil {
		release()
		return nil, err
	}

	out := make(chan []T)
	go func() {
		defer close(out)
		defer release()

		ready := true
		for {
			if ready {
				select {
				case out <- items:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-signal:
			case <-ctx.Done():
				return
			}

			next, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("sqlite: re-querying %s failed: %v", topic, err)
				ready = false
				continue
			}
			items, ready = next, true
		}
	}()

	return out, nil
}
