// Package events carries card updates between server instances.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gameboard/backend/internal/hub"
	"gameboard/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "games:"

// Publisher announces card updates.
type Publisher interface {
	Publish(ctx context.Context, event hub.Event) error
}

// JoinedPayload is the payload of a player_joined event.
type JoinedPayload struct {
	Email         string   `json:"email"`
	PlayersNeeded int      `json:"players_needed"`
	JoinedPlayers []string `json:"joined_players"`
	Version       int64    `json:"version"`
}

// PlayerJoined builds the event announcing that email joined g.
func PlayerJoined(g models.Game, email string) hub.Event {
	return hub.Event{
		Type:   hub.EventPlayerJoined,
		GameID: g.ID,
		Payload: JoinedPayload{
			Email:         email,
			PlayersNeeded: g.PlayersNeeded,
			JoinedPlayers: g.JoinedPlayers,
			Version:       g.Version,
		},
	}
}

// LocalPublisher broadcasts straight into an in-process hub.
type LocalPublisher struct {
	Hub *hub.Hub
}

func (p LocalPublisher) Publish(_ context.Context, event hub.Event) error {
	p.Hub.Broadcast(event)
	return nil
}

// RedisPublisher publishes events on the games:<id> channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event hub.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	channel := Channel(event.GameID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

// Channel returns the redis channel for a game.
func Channel(gameID string) string {
	return channelPrefix + gameID
}

// Decode parses a message received on a game channel.
func Decode(channel, payload string) (hub.Event, error) {
	var event hub.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return hub.Event{}, fmt.Errorf("failed to decode event on %s: %w", channel, err)
	}
	if event.GameID == "" {
		event.GameID = strings.TrimPrefix(channel, channelPrefix)
	}
	return event, nil
}

// Relay forwards every game event published on redis into h until ctx is
// done.
func Relay(ctx context.Context, client *redis.Client, h *hub.Hub) error {
	sub := client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to game events: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			event, err := Decode(msg.Channel, msg.Payload)
			if err != nil {
				zap.L().Warn("Skipping malformed game event", zap.Error(err))
				continue
			}
			h.Broadcast(event)
		}
	}
}

// Connect opens a redis client and checks it with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}
