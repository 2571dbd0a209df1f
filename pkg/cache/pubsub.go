package cache

import (
	"context"
	"encoding/json"
	"time"

	"electron-shop/api/pkg/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel carries catalog cache notifications for other processes, such as
// a search indexer, that keep their own copy of the catalog.
const Channel = "CATALOG_CACHE"

type MessageType string

const MessageInvalidate MessageType = "catalog.invalidate"

type Message struct {
	Type      MessageType `json:"type"`
	Payload   string      `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// Publish sends a notification on Channel.
func Publish(ctx context.Context, client *redis.Client, messageType MessageType, payload string) error {
	raw, err := json.Marshal(Message{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	if err := client.Publish(ctx, Channel, raw).Err(); err != nil {
		util.LogWarning("cache message not published", zap.String("type", string(messageType)), zap.Error(err))
		return err
	}
	return nil
}

// DecodeMessage parses a payload received on Channel.
func DecodeMessage(payload string) (Message, error) {
	var m Message
	err := json.Unmarshal([]byte(payload), &m)
	return m, err
}
