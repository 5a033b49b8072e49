package plagiarism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("Should reject invalid config", func(t *testing.T) {
		_, err := NewRegistry(Config{Threshold: 2, NumPerm: 128, ShingleLength: 3})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Should isolate tenants", func(t *testing.T) {
		reg, err := NewRegistry(DefaultConfig())
		require.NoError(t, err)

		require.NoError(t, reg.Get("school-a").AddDocument("A", essayText))

		report, err := reg.Get("school-b").Check(essayText, "")
		require.NoError(t, err)
		assert.Empty(t, report.Matches)

		report, err = reg.Get("school-a").Check(essayText, "")
		require.NoError(t, err)
		assert.Len(t, report.Matches, 1)

		assert.Equal(t, []string{"school-a", "school-b"}, reg.Tenants())
		assert.Equal(t, 1, reg.Size())
	})

	t.Run("Should map empty tenant to default and reuse instances", func(t *testing.T) {
		reg, err := NewRegistry(DefaultConfig())
		require.NoError(t, err)
		assert.Same(t, reg.Get(""), reg.Get(DefaultTenant))
	})
}

func TestRegistry_GetWithUnbuildableConfig(t *testing.T) {
	reg := &Registry{cfg: Config{Threshold: 0.7}, detectors: make(map[string]*Detector)}

	assert.PanicsWithValue(t,
		"plagiarism: building detector for tenant school: plagiarism: invalid configuration: num_perm must be greater than 0, got 0",
		func() { reg.Get("school") },
	)
	assert.Empty(t, reg.Tenants())
}

func TestCorpus(t *testing.T) {
	c := NewCorpus()
	c.Put("b", Signature{1})
	c.Put("a", Signature{2})
	c.Put("a", Signature{3})

	sig, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, Signature{3}, sig)
	assert.Equal(t, []string{"a", "b"}, c.IDs())
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)
}
