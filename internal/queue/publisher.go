package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/models"
)

// PublishSnapshots writes one message per combined market. Keys carry the
// sport and event ticker so a game can be identified without decoding the
// payload.
func PublishSnapshots(ctx context.Context, writer *kafka.Writer, sport string, combined []markets.CombinedMarket) error {
	if writer == nil || len(combined) == 0 {
		return nil
	}

	captured := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(combined))

	for _, m := range combined {
		snapshot := models.NewSnapshot(sport, m, captured)
		payload, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", m.EventTicker, err)
		}
		key := fmt.Sprintf("%s-%s", sport, m.EventTicker)
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: payload})
	}

	return writer.WriteMessages(ctx, msgs...)
}
