package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveExternalOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(ExternalCalls.WithLabelValues("metrics-test", "ok"))
	errBefore := testutil.ToFloat64(ExternalCalls.WithLabelValues("metrics-test", "error"))

	ObserveExternal("metrics-test", time.Now(), nil)
	ObserveExternal("metrics-test", time.Now(), errors.New("boom"))
	ObserveExternal("metrics-test", time.Now(), errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ExternalCalls.WithLabelValues("metrics-test", "ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(ExternalCalls.WithLabelValues("metrics-test", "error")))
}
