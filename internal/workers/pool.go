package workers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/calebrosario/pregame/internal/kafka"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/models"
)

// Handler consumes one decoded snapshot.
type Handler func(context.Context, *models.MarketSnapshot) error

// Run consumes the snapshot topic with workerCount readers in one consumer
// group and blocks until ctx is cancelled. Offsets are committed only after
// the handler succeeds; a restart replays unacknowledged snapshots, which is
// safe because game tracking upserts by event ticker.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			consume(ctx, id, brokers, topic, group, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
}

func consume(ctx context.Context, id int, brokers []string, topic, group string, handler Handler) {
	reader := kafka.NewReader(brokers, topic, group)
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[worker %d] fetch: %v", id, err)
			continue
		}

		var snapshot models.MarketSnapshot
		if err := json.Unmarshal(msg.Value, &snapshot); err != nil {
			// A bad payload never becomes readable; acknowledge and move on.
			logging.Errorf("[worker %d] unmarshal %s: %v", id, string(msg.Key), err)
			if err := reader.CommitMessages(ctx, msg); err != nil {
				logging.Errorf("[worker %d] commit: %v", id, err)
			}
			continue
		}

		if handler != nil {
			if err := handler(ctx, &snapshot); err != nil {
				logging.Errorf("[worker %d] handle %s: %v", id, snapshot.Market.EventTicker, err)
				continue
			}
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logging.Errorf("[worker %d] commit: %v", id, err)
		}
	}
}
