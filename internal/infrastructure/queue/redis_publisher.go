package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// DefaultQueue is the list consumers pop ingested article events from.
const DefaultQueue = "news:ingested"

type pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Event is the payload pushed for every saved article.
type Event struct {
	ArticleID string          `json:"articleId"`
	TenantID  string          `json:"tenantId"`
	Category  domain.Category `json:"category"`
	Severity  domain.Severity `json:"severity"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	VendorID  string          `json:"vendorId,omitempty"`
}

// RedisPublisher pushes article events onto a Redis list.
type RedisPublisher struct {
	client pusher
	queue  string
}

var _ ports.Publisher = (*RedisPublisher)(nil)

// NewRedisClient opens a client for addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewRedisPublisher writes to queue, falling back to DefaultQueue.
func NewRedisPublisher(client *redis.Client, queue string) *RedisPublisher {
	return newPublisher(client, queue)
}

func newPublisher(client pusher, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisPublisher{client: client, queue: queue}
}

// EventFor builds the queue payload of article.
func EventFor(article domain.Article) Event {
	return Event{
		ArticleID: article.ID,
		TenantID:  article.TenantID,
		Category:  article.Category,
		Severity:  article.Severity,
		Title:     article.Title,
		URL:       article.URL,
		VendorID:  article.VendorID,
	}
}

// PublishArticle LPUSHes the JSON event of article.
func (p *RedisPublisher) PublishArticle(ctx context.Context, article domain.Article) error {
	payload, err := json.Marshal(EventFor(article))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.LPush(ctx, p.queue, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", p.queue, err)
	}
	return nil
}
