package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "eduscore")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "documents:stream", cfg.RedisStreamKey)
		assert.Equal(t, 24*time.Hour, cfg.StreamRetentionDuration)
		assert.Equal(t, plagiarism.DefaultConfig(), cfg.Plagiarism())
		assert.Equal(t, "en-US", cfg.LanguageToolLanguage)
		assert.Equal(t, "2112", cfg.MetricsPort)
	})

	t.Run("Should read plagiarism overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PLAGIARISM_THRESHOLD", "0.5")
		t.Setenv("PLAGIARISM_NUM_PERM", "64")
		t.Setenv("PLAGIARISM_SHINGLE_LENGTH", "4")
		t.Setenv("PLAGIARISM_SEED", "99")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, plagiarism.Config{Threshold: 0.5, NumPerm: 64, ShingleLength: 4, Seed: 99}, cfg.Plagiarism())
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should require MONGO_URI", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MONGO_URI", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "MONGO_URI")
	})

	t.Run("Should require JWT_SECRET", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("Should reject out of range threshold", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PLAGIARISM_THRESHOLD", "1.5")
		cfg, err := Load()
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.Validate(), plagiarism.ErrInvalidConfig)
	})

	t.Run("Should reject zero shingle length", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PLAGIARISM_SHINGLE_LENGTH", "0")
		cfg, err := Load()
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.Validate(), plagiarism.ErrInvalidConfig)
	})
}
