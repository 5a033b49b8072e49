package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/preprocess"
)

const (
	testStream = "documents:stream"
	testGroup  = "documents:group"
	testDLQ    = "documents:dlq"
)

type fakeProcessor struct {
	mu       sync.Mutex
	events   []*models.DocumentEvent
	failures int
	err      error
}

func (f *fakeProcessor) IngestDocument(_ context.Context, event *models.DocumentEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	if f.failures > 0 {
		f.failures--
		return "", errors.New("temporary outage")
	}
	if f.err != nil {
		return "", f.err
	}
	return event.DocumentID, nil
}

func (f *fakeProcessor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newTestConsumer(t *testing.T, processor DocumentProcessor, maxRetries int) (*Consumer, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	retryHandler := NewRetryHandler(client, testDLQ, maxRetries).WithBaseBackoff(time.Millisecond)
	consumer := NewConsumer(client, testStream, testGroup, "consumer-test", processor, retryHandler, time.Hour)
	require.NoError(t, consumer.ensureGroup(context.Background()))
	return consumer, client, mr
}

func addEvent(t *testing.T, client *redis.Client, values map[string]interface{}) string {
	t.Helper()
	id, err := client.XAdd(context.Background(), &redis.XAddArgs{Stream: testStream, Values: values}).Result()
	require.NoError(t, err)
	return id
}

func pendingCount(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	pending, err := client.XPending(context.Background(), testStream, testGroup).Result()
	require.NoError(t, err)
	return pending.Count
}

func TestParseDocumentEvent(t *testing.T) {
	t.Run("Should map stream fields", func(t *testing.T) {
		event, err := ParseDocumentEvent(&StreamMessage{ID: "1-0", Fields: map[string]string{
			"documentId": "doc-1",
			"tenantId":   "school",
			"userId":     "user-1",
			"title":      "Essay",
			"text":       "body",
		}})
		require.NoError(t, err)
		assert.Equal(t, &models.DocumentEvent{
			DocumentID: "doc-1",
			TenantID:   "school",
			UserID:     "user-1",
			Title:      "Essay",
			Text:       "body",
		}, event)
	})

	t.Run("Should require documentId and text", func(t *testing.T) {
		_, err := ParseDocumentEvent(&StreamMessage{ID: "1-0", Fields: map[string]string{"text": "x"}})
		assert.ErrorContains(t, err, "missing documentId")
		_, err = ParseDocumentEvent(&StreamMessage{ID: "1-0", Fields: map[string]string{"documentId": "x"}})
		assert.ErrorContains(t, err, "missing text")
	})
}

func TestConsumer_ReadBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should process and acknowledge messages", func(t *testing.T) {
		processor := &fakeProcessor{}
		consumer, client, _ := newTestConsumer(t, processor, 2)

		for i := 0; i < 3; i++ {
			addEvent(t, client, map[string]interface{}{
				"documentId": fmt.Sprintf("doc-%d", i),
				"tenantId":   "school",
				"text":       "an essay body",
			})
		}

		require.NoError(t, consumer.readBatch(ctx))

		assert.Equal(t, 3, processor.calls())
		assert.Equal(t, "school", processor.events[0].TenantID)
		assert.Zero(t, pendingCount(t, client))
	})

	t.Run("Should retry transient failures", func(t *testing.T) {
		processor := &fakeProcessor{failures: 2}
		consumer, client, _ := newTestConsumer(t, processor, 3)

		addEvent(t, client, map[string]interface{}{"documentId": "doc-1", "text": "body"})
		require.NoError(t, consumer.readBatch(ctx))

		assert.Equal(t, 3, processor.calls())
		assert.Zero(t, pendingCount(t, client))
		length, err := client.XLen(ctx, testDLQ).Result()
		require.NoError(t, err)
		assert.Zero(t, length)
	})

	t.Run("Should dead-letter after exhausting retries", func(t *testing.T) {
		processor := &fakeProcessor{failures: 10}
		consumer, client, _ := newTestConsumer(t, processor, 2)

		id := addEvent(t, client, map[string]interface{}{"documentId": "doc-1", "text": "body"})
		require.NoError(t, consumer.readBatch(ctx))

		assert.Equal(t, 3, processor.calls())
		assert.Zero(t, pendingCount(t, client))

		entries, err := client.XRange(ctx, testDLQ, "-", "+").Result()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, id, entries[0].Values["original_id"])
		assert.Equal(t, "doc-1", entries[0].Values["documentId"])
		assert.Equal(t, "temporary outage", entries[0].Values["error"])
		assert.Equal(t, "3", entries[0].Values["attempts"])
	})

	t.Run("Should not retry permanent failures", func(t *testing.T) {
		processor := &fakeProcessor{err: preprocess.ErrEmptyDocument}
		consumer, client, _ := newTestConsumer(t, processor, 5)

		addEvent(t, client, map[string]interface{}{"documentId": "doc-1", "text": "   "})
		require.NoError(t, consumer.readBatch(ctx))

		assert.Equal(t, 1, processor.calls())
		length, err := client.XLen(ctx, testDLQ).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), length)
	})

	t.Run("Should dead-letter tenant conflicts without retrying", func(t *testing.T) {
		processor := &fakeProcessor{err: fmt.Errorf("%w: doc-1", preprocess.ErrDocumentConflict)}
		consumer, client, _ := newTestConsumer(t, processor, 5)

		addEvent(t, client, map[string]interface{}{"documentId": "doc-1", "tenantId": "school-b", "text": "essay"})
		require.NoError(t, consumer.readBatch(ctx))

		assert.Equal(t, 1, processor.calls())
		assert.Zero(t, pendingCount(t, client))
		entries, err := client.XRange(ctx, testDLQ, "-", "+").Result()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "1", entries[0].Values["attempts"])
		assert.Equal(t, "school-b", entries[0].Values["tenantId"])
	})

	t.Run("Should dead-letter malformed messages without processing", func(t *testing.T) {
		processor := &fakeProcessor{}
		consumer, client, _ := newTestConsumer(t, processor, 2)

		addEvent(t, client, map[string]interface{}{"title": "no id"})
		require.NoError(t, consumer.readBatch(ctx))

		assert.Zero(t, processor.calls())
		assert.Zero(t, pendingCount(t, client))
		entries, err := client.XRange(ctx, testDLQ, "-", "+").Result()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "0", entries[0].Values["attempts"])
	})
}

func TestConsumer_ReclaimPending(t *testing.T) {
	ctx := context.Background()
	processor := &fakeProcessor{}
	consumer, client, _ := newTestConsumer(t, processor, 1)
	consumer.reclaimMinIdle = 0

	addEvent(t, client, map[string]interface{}{"documentId": "doc-1", "text": "body"})

	// Another consumer reads the message and dies before acknowledging it
	_, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    testGroup,
		Consumer: "crashed",
		Streams:  []string{testStream, ">"},
		Count:    1,
	}).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), pendingCount(t, client))

	require.NoError(t, consumer.reclaimPending(ctx))

	assert.Equal(t, 1, processor.calls())
	assert.Zero(t, pendingCount(t, client))
}

func TestConsumer_EnsureGroup(t *testing.T) {
	consumer, _, _ := newTestConsumer(t, &fakeProcessor{}, 1)
	assert.NoError(t, consumer.ensureGroup(context.Background()))
}

func TestConsumer_Start(t *testing.T) {
	processor := &fakeProcessor{}
	consumer, client, _ := newTestConsumer(t, processor, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	addEvent(t, client, map[string]interface{}{"documentId": "doc-1", "text": "body"})
	assert.Eventually(t, func() bool { return processor.calls() == 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
