package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"

	"NewsScanner/internal/domain"
)

type recordingPusher struct {
	key    string
	values []interface{}
	err    error
}

func (r *recordingPusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	r.key = key
	r.values = values
	cmd := redis.NewIntCmd(ctx)
	if r.err != nil {
		cmd.SetErr(r.err)
	}
	return cmd
}

func TestPublishArticlePushesJSONEvent(t *testing.T) {
	t.Parallel()

	rec := &recordingPusher{}
	pub := newPublisher(rec, "")

	article := domain.Article{
		ID:       "a-1",
		TenantID: "t-1",
		Title:    "Acme breach",
		URL:      "https://news.example.org/acme",
		Category: domain.CategoryBreach,
		Severity: domain.SeverityCritical,
	}
	if err := pub.PublishArticle(context.Background(), article); err != nil {
		t.Fatalf("PublishArticle error: %v", err)
	}

	if rec.key != DefaultQueue {
		t.Fatalf("expected queue %q, got %q", DefaultQueue, rec.key)
	}
	if len(rec.values) != 1 {
		t.Fatalf("expected one value, got %d", len(rec.values))
	}
	raw, ok := rec.values[0].([]byte)
	if !ok {
		t.Fatalf("expected []byte payload, got %T", rec.values[0])
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	want := map[string]any{
		"articleId": "a-1",
		"tenantId":  "t-1",
		"category":  "breach",
		"severity":  "critical",
		"title":     "Acme breach",
		"url":       "https://news.example.org/acme",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("payload[%s] = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["vendorId"]; ok {
		t.Fatalf("empty vendorId should be omitted")
	}
}

func TestPublishArticleWrapsRedisError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	pub := newPublisher(&recordingPusher{err: boom}, "custom")

	err := pub.PublishArticle(context.Background(), domain.Article{ID: "a-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}
