package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
)

// Hub keeps one room per order and rebroadcasts location updates to its
// subscribers. With a Redis client attached, publishes go through a pub/sub
// channel so every service instance fans out to its own local subscribers;
// without one, delivery is in-process only.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]*Subscription
	last  map[int64]models.LocationUpdate
	rdb   *redis.Client
	log   logger.ILogger
}

type Subscription struct {
	ID      string
	OrderID int64
	C       <-chan models.LocationUpdate
	ch      chan models.LocationUpdate
}

const subscriberBuffer = 16

func NewHub(ctx context.Context, log logger.ILogger, rdb *redis.Client) *Hub {
	h := &Hub{
		rooms: make(map[int64]map[string]*Subscription),
		last:  make(map[int64]models.LocationUpdate),
		rdb:   rdb,
		log:   log,
	}
	if rdb != nil {
		go h.consume(ctx)
	}
	return h
}

func channelFor(orderID int64) string {
	return fmt.Sprintf("tracking:order:%d", orderID)
}

// Subscribe attaches a viewer to an order's room. The last known position, if
// any, is replayed immediately so late joiners see the runner without waiting
// for the next update.
func (h *Hub) Subscribe(orderID int64) *Subscription {
	sub := &Subscription{
		ID:      uuid.NewString(),
		OrderID: orderID,
	}
	sub.ch = make(chan models.LocationUpdate, subscriberBuffer)
	sub.C = sub.ch

	h.mu.Lock()
	room := h.rooms[orderID]
	if room == nil {
		room = make(map[string]*Subscription)
		h.rooms[orderID] = room
	}
	room[sub.ID] = sub
	if lastKnown, ok := h.last[orderID]; ok {
		sub.ch <- lastKnown
	}
	h.mu.Unlock()

	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	if room := h.rooms[sub.OrderID]; room != nil {
		if _, ok := room[sub.ID]; ok {
			delete(room, sub.ID)
			close(sub.ch)
		}
		if len(room) == 0 {
			delete(h.rooms, sub.OrderID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(ctx context.Context, update models.LocationUpdate) error {
	if h.rdb != nil {
		payload, err := json.Marshal(update)
		if err != nil {
			return err
		}
		return h.rdb.Publish(ctx, channelFor(update.OrderID), payload).Err()
	}
	h.deliver(update)
	return nil
}

func (h *Hub) RoomSize(orderID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orderID])
}

func (h *Hub) deliver(update models.LocationUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[update.OrderID] = update
	for _, sub := range h.rooms[update.OrderID] {
		// Slow consumers drop updates instead of stalling the room. Sends
		// stay under the lock so Unsubscribe cannot close a channel
		// mid-broadcast.
		select {
		case sub.ch <- update:
		default:
		}
	}
}

func (h *Hub) consume(ctx context.Context) {
	pubsub := h.rdb.PSubscribe(ctx, "tracking:order:*")
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var update models.LocationUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				h.log.Warning("malformed tracking payload", logger.Error(err))
				continue
			}
			h.deliver(update)
		}
	}
}
