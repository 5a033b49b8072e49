package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisInfra "github.com/RishiKendai/eduscore/internal/infra/redis"
	"github.com/RishiKendai/eduscore/internal/models"
)

const (
	statusKeyPrefix = "evaluation_status:"
	statusTTL       = 12 * time.Hour
)

var ErrStatusNotFound = errors.New("evaluation status not found")

var validSteps = map[models.Step]bool{
	models.StepQueued:    true,
	models.StepStarted:   true,
	models.StepAnalyzing: true,
	models.StepCompleted: true,
	models.StepFailed:    true,
}

// StatusTracker records evaluation progress in Redis
type StatusTracker struct {
	client *redisInfra.Client
}

func NewStatusTracker(client *redisInfra.Client) *StatusTracker {
	return &StatusTracker{client: client}
}

func statusKey(documentID string) string {
	return statusKeyPrefix + documentID
}

func (s *StatusTracker) SetStatus(ctx context.Context, documentID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(documentID)
	if err := s.client.Set(ctx, rkey, string(step), statusTTL).Err(); err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("documentId", documentID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("documentId", documentID).
		Msg("Status updated in Redis")

	return nil
}

func (s *StatusTracker) GetStatus(ctx context.Context, documentID string) (models.Step, error) {
	val, err := s.client.Get(ctx, statusKey(documentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStatusNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
