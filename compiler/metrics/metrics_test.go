package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSince(t *testing.T) {
	before := testutil.CollectAndCount(PhaseDuration)

	d := Since("test_phase", time.Now().Add(-time.Millisecond))
	assert.GreaterOrEqual(t, d, time.Millisecond)

	assert.Equal(t, before+1, testutil.CollectAndCount(PhaseDuration))
}

func TestCompiles(t *testing.T) {
	c := Compiles.WithLabelValues("test")
	before := testutil.ToFloat64(c)

	c.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
