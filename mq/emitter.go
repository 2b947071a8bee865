package mq

import (
	"context"
	"encoding/json"
	"log"

	"plateful/models"
	"plateful/rdx"
)

const eventsChannel = "storefront-events"

// Emit publishes entity-change events to Redis for background consumers
// (search indexing, cache warmers). Handlers fire it with `go mq.Emit(ctx,
// ...)`, so the publish runs on a context detached from the request's
// cancellation while keeping its values.
func Emit(ctx context.Context, eventName string, content models.Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(detach(ctx), eventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event to Redis: %v", eventName, err)
		return
	}
}

func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// StartEventWorker consumes storefront events and logs them. Indexing and
// cache warming hang off this loop.
func StartEventWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, eventsChannel)
	ch := sub.Channel()

	go func() {
		for msg := range ch {
			var content models.Index
			if err := json.Unmarshal([]byte(msg.Payload), &content); err != nil {
				log.Printf("[EventWorker] Bad payload: %v", err)
				continue
			}
			log.Printf("[EventWorker] %s %s %s", content.Method, content.EntityType, content.EntityId)
		}
	}()
}
