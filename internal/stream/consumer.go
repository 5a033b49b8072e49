package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/eduscore/internal/evaluation"
	"github.com/RishiKendai/eduscore/internal/metrics"
	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/preprocess"
)

// DocumentProcessor ingests one submitted document
type DocumentProcessor interface {
	IngestDocument(ctx context.Context, event *models.DocumentEvent) (string, error)
}

// Consumer reads document submissions from a Redis stream consumer group
type Consumer struct {
	client          *redis.Client
	streamKey       string
	consumerGroup   string
	consumerName    string
	processor       DocumentProcessor
	retryHandler    *RetryHandler
	retention       time.Duration
	reclaimInterval time.Duration
	reclaimMinIdle  time.Duration
	cleanupInterval time.Duration
	batchSize       int64
	lastReclaim     time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	processor DocumentProcessor,
	retryHandler *RetryHandler,
	retention time.Duration,
) *Consumer {
	return &Consumer{
		client:          client,
		streamKey:       streamKey,
		consumerGroup:   consumerGroup,
		consumerName:    consumerName,
		processor:       processor,
		retryHandler:    retryHandler,
		retention:       retention,
		reclaimInterval: 30 * time.Second,
		reclaimMinIdle:  time.Minute,
		cleanupInterval: time.Hour,
		batchSize:       10,
		lastReclaim:     time.Now(),
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group")
	}

	// Messages left pending by a crashed consumer
	if err := c.reclaimPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to reclaim pending messages on startup")
	}
	c.lastReclaim = time.Now()

	go c.runCleanup(ctx)
	log.Info().
		Str("stream", c.streamKey).
		Str("group", c.consumerGroup).
		Dur("cleanup_interval", c.cleanupInterval).
		Dur("retention", c.retention).
		Msg("Stream consumer started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.readBatch(ctx); err != nil {
			log.Error().Err(err).Msg("Error consuming messages")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream if it does not exist yet
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().Str("group", c.consumerGroup).Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created consumer group")
	return nil
}

// reclaimPending claims messages that another consumer left idle and processes them.
func (c *Consumer) reclaimPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get pending messages: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= c.reclaimMinIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  c.reclaimMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	log.Info().
		Int("idle", len(ids)).
		Int("claimed", len(claimed)).
		Msg("Reclaimed pending messages")

	for i := range claimed {
		if err := c.processMessage(ctx, &claimed[i]); err != nil {
			log.Error().Err(err).Str("message_id", claimed[i].ID).Msg("Failed to process reclaimed message")
		}
	}
	return nil
}

func (c *Consumer) readBatch(ctx context.Context) error {
	if time.Since(c.lastReclaim) > c.reclaimInterval {
		if err := c.reclaimPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to reclaim pending messages")
		}
		c.lastReclaim = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.batchSize,
		Block:    time.Second,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}
		for i := range stream.Messages {
			if err := c.processMessage(ctx, &stream.Messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", stream.Messages[i].ID).Msg("Failed to process message")
			}
		}
	}
	return nil
}

// processMessage acknowledges every message it finishes with, successful or
// dead-lettered. Only a cancelled context leaves a message pending.
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	fields := make(map[string]string, len(msg.Values))
	raw := make(map[string]interface{}, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
		raw[key] = val
	}

	event, err := ParseDocumentEvent(&StreamMessage{ID: msg.ID, Fields: fields})
	if err != nil {
		metrics.StreamMessages.WithLabelValues("invalid").Inc()
		if dlqErr := c.retryHandler.sendToDeadLetter(ctx, msg.ID, raw, err, 0); dlqErr != nil {
			log.Error().Err(dlqErr).Str("message_id", msg.ID).Msg("Failed to dead-letter invalid message")
		}
		_ = c.acknowledge(ctx, msg.ID)
		return err
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		_, err := c.processor.IngestDocument(ctx, event)
		if isPermanent(err) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return err
	}, msg.ID, raw)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		metrics.StreamMessages.WithLabelValues("dead_lettered").Inc()
		_ = c.acknowledge(ctx, msg.ID)
		return err
	}

	metrics.StreamMessages.WithLabelValues("processed").Inc()
	return c.acknowledge(ctx, msg.ID)
}

func isPermanent(err error) bool {
	return errors.Is(err, preprocess.ErrEmptyDocument) ||
		errors.Is(err, preprocess.ErrDocumentConflict) ||
		errors.Is(err, evaluation.ErrNoText)
}

// trimExpired drops stream entries older than the retention window.
func (c *Consumer) trimExpired(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retention)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Trimmed expired stream entries")
	}
	return nil
}

func (c *Consumer) runCleanup(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	if err := c.trimExpired(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial stream cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.trimExpired(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to trim stream")
			}
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}
	log.Debug().Str("message_id", messageID).Msg("Message acknowledged")
	return nil
}
