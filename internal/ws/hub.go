package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"secondhand_market/internal/domain"
	"secondhand_market/pkg/logger"
)

// Hub tracks connections and the channels they are subscribed to. Every
// connection is subscribed to its own user channel on register.
type Hub struct {
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan *outbound

	mu           sync.RWMutex
	redisClient  *redis.Client
	relayChannel string
	instanceID   string
	log          logger.Logger
	ctx          context.Context
	cancel       context.CancelFunc
}

type subscription struct {
	client  *Client
	channel string
}

type outbound struct {
	channel string
	data    []byte
}

// relayMessage is what instances exchange over Redis. Origin lets an instance
// skip its own messages, which it already delivered locally.
type relayMessage struct {
	Origin  string          `json:"origin"`
	Channel string          `json:"channel"`
	Event   json.RawMessage `json:"event"`
}

// NewHub creates a hub. A nil redisClient disables the cross-instance relay.
func NewHub(redisClient *redis.Client, relayChannel string, log logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:      make(map[*Client]struct{}),
		channels:     make(map[string]map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		subscribe:    make(chan subscription),
		unsubscribe:  make(chan subscription),
		broadcast:    make(chan *outbound, 256),
		redisClient:  redisClient,
		relayChannel: relayChannel,
		instanceID:   uuid.NewString(),
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Join subscribes client to channel.
func (h *Hub) Join(client *Client, channel string) {
	select {
	case h.subscribe <- subscription{client: client, channel: channel}:
	case <-h.ctx.Done():
	}
}

// Leave unsubscribes client from channel.
func (h *Hub) Leave(client *Client, channel string) {
	select {
	case h.unsubscribe <- subscription{client: client, channel: channel}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.join(client, domain.UserChannel(client.userID))
			h.mu.Unlock()
			connectionsActive.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case sub := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[sub.client]; ok {
				h.join(sub.client, sub.channel)
			}
			h.mu.Unlock()

		case sub := <-h.unsubscribe:
			h.mu.Lock()
			h.leave(sub.client, sub.channel)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.channels[msg.channel] {
				select {
				case client.send <- msg.data:
				default:
					h.log.Warn("Dropping slow realtime client", "user_id", client.userID)
					slowClientsDropped.Inc()
					h.remove(client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// join and leave expect h.mu to be held.
func (h *Hub) join(client *Client, channel string) {
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Client]struct{})
		h.channels[channel] = members
	}
	members[client] = struct{}{}
	client.channels[channel] = struct{}{}
}

func (h *Hub) leave(client *Client, channel string) {
	if members, ok := h.channels[channel]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(client.channels, channel)
}

// remove tears down every membership of client and closes its send queue.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	for channel := range client.channels {
		h.leave(client, channel)
	}
	delete(h.clients, client)
	close(client.send)
	connectionsActive.Dec()
}

// Publish delivers event to local subscribers of channel and, when the relay
// is enabled, to other instances.
func (h *Hub) Publish(ctx context.Context, channel string, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := h.deliver(ctx, channel, data); err != nil {
		return err
	}
	eventsPublished.WithLabelValues(event.Name).Inc()

	if h.redisClient == nil {
		return nil
	}
	payload, err := json.Marshal(relayMessage{Origin: h.instanceID, Channel: channel, Event: data})
	if err != nil {
		return fmt.Errorf("marshal relay message: %w", err)
	}
	if err := h.redisClient.Publish(ctx, h.relayChannel, payload).Err(); err != nil {
		h.log.Warn("Failed to relay realtime event", "error", err, "channel", channel)
		return err
	}
	return nil
}

func (h *Hub) deliver(ctx context.Context, channel string, data []byte) error {
	select {
	case h.broadcast <- &outbound{channel: channel, data: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

// subscribeRedis delivers events published by other instances.
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, h.relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil {
				h.log.Warn("Malformed relay message", "error", err)
				continue
			}
			if rm.Origin == h.instanceID {
				continue
			}
			_ = h.deliver(h.ctx, rm.Channel, rm.Event)
		case <-h.ctx.Done():
			return
		}
	}
}

// Subscribers reports how many connections are subscribed to channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) Stop() {
	h.cancel()
}
