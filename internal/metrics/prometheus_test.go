package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitPrometheus(t *testing.T) {
	assert.NotPanics(t, func() {
		InitPrometheus()
		InitPrometheus()
	})

	PlagiarismChecks.WithLabelValues("high").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(PlagiarismChecks.WithLabelValues("high")))

	CorpusSize.WithLabelValues("tenant-a").Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(CorpusSize.WithLabelValues("tenant-a")))
}
