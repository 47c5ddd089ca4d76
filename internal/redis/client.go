package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// HistoryKey is the list holding a member's recent conversation entries.
func HistoryKey(phone string) string {
	return fmt.Sprintf("history:%s", phone)
}

// ProfileKey is the hash holding a member's profile values.
func ProfileKey(phone string) string {
	return fmt.Sprintf("profile:%s", phone)
}

// RateLimitKey tracks webhook traffic per member.
func RateLimitKey(phone string) string {
	return fmt.Sprintf("ratelimit:%s", phone)
}
