package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/CareNestHQ/CareNest/app/models"
)

// Payload is one real-time notification message.
type Payload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	RefID   uint   `json:"ref_id,omitempty"`
}

// Notifier pushes a notification to a single user over the real-time
// channel. Implementations must be safe to call from request handlers and
// background jobs; failures are the caller's to log, never to propagate.
type Notifier interface {
	Notify(userID uint, payload Payload) error
}

// Noop satisfies Notifier without doing anything. Used in tests and when no
// push channel is configured.
type Noop struct{}

func (Noop) Notify(uint, Payload) error { return nil }

// RedisNotifier publishes notifications on per-user Redis channels; a
// websocket gateway subscribed to those channels forwards them to clients.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Notify(userID uint, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("notify:user:%d", userID)
	return n.client.Publish(context.Background(), channel, data).Err()
}

// Store persists notifications for the in-app inbox.
type Store interface {
	Create(n *models.Notification) error
}

// PersistentNotifier writes the inbox row first, then pushes the payload
// over the real-time channel. The row is the source of truth; a push
// failure after a stored row is still reported to the caller.
type PersistentNotifier struct {
	store Store
	push  Notifier
}

func NewPersistentNotifier(store Store, push Notifier) *PersistentNotifier {
	if push == nil {
		push = Noop{}
	}
	return &PersistentNotifier{store: store, push: push}
}

func (n *PersistentNotifier) Notify(userID uint, payload Payload) error {
	row := &models.Notification{
		UserID:      userID,
		Type:        payload.Type,
		Content:     payload.Content,
		ReferenceID: payload.RefID,
	}
	if err := n.store.Create(row); err != nil {
		return err
	}
	return n.push.Notify(userID, payload)
}
