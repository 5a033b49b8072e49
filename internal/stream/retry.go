package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// ErrPermanent marks failures that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
	maxRetries    uint64
	baseBackoff   time.Duration
}

func NewRetryHandler(client *redis.Client, deadLetterKey string, maxRetries int) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    uint64(max(0, maxRetries)),
		baseBackoff:   500 * time.Millisecond,
	}
}

// WithBaseBackoff overrides the first retry delay; later delays double.
func (h *RetryHandler) WithBaseBackoff(d time.Duration) *RetryHandler {
	h.baseBackoff = d
	return h
}

// RetryWithBackoff runs fn until it succeeds or retries are exhausted. Errors
// wrapping ErrPermanent are not retried. Exhausted messages are moved to the
// dead-letter stream.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	attempts := 0
	err := retry.Do(
		ctx,
		retry.WithMaxRetries(h.maxRetries, retry.NewExponential(h.baseBackoff)),
		func(ctx context.Context) error {
			attempts++
			if err := fn(); err != nil {
				if errors.Is(err, ErrPermanent) {
					return err
				}
				log.Warn().
					Err(err).
					Str("message_id", messageID).
					Int("attempt", attempts).
					Msg("Processing failed, retrying")
				return retry.RetryableError(err)
			}
			return nil
		},
	)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if dlqErr := h.sendToDeadLetter(ctx, messageID, fields, err, attempts); dlqErr != nil {
		return fmt.Errorf("%w (dead letter failed: %v)", err, dlqErr)
	}
	return err
}

func (h *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error, attempts int) error {
	values := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = messageID
	values["error"] = cause.Error()
	values["attempts"] = attempts
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead letter stream: %w", err)
	}

	log.Error().
		Err(cause).
		Str("message_id", messageID).
		Int("attempts", attempts).
		Str("dead_letter_key", h.deadLetterKey).
		Msg("Message moved to dead letter stream")

	return nil
}
