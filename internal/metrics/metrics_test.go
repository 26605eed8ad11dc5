package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	before := testutil.ToFloat64(httpRequests.WithLabelValues("server", "/items/{id}", "200"))
	ObserveHTTP("server", "/items/{id}", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("server", "/items/{id}", "200"))
	assert.Equal(t, before+1, after)

	IncEvent("booking_created")
	assert.Equal(t, float64(1), testutil.ToFloat64(domainEvents.WithLabelValues("booking_created")))

	assert.NotPanics(t, func() {
		IncRateLimited("gateway")
	})
}
