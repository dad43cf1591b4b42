package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Sink_RecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewSink(reg)
	require.NoError(t, err)

	sink.RecordDispatchAttempt(DispatchResultAssigned)
	sink.RecordDispatchAttempt(DispatchResultAssigned)
	sink.RecordDispatchAttempt(DispatchResultNoPartner)
	sink.RecordNotificationFailure()
	sink.RecordLocationRejected()

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.dispatchAttempts.WithLabelValues(DispatchResultAssigned)))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.dispatchAttempts.WithLabelValues(DispatchResultNoPartner)))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.notificationFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.wsLocationRejected))
}

func Test_NewSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewSink(reg)
	require.NoError(t, err)
	second, err := NewSink(reg)
	require.NoError(t, err)

	first.RecordNotificationFailure()
	second.RecordNotificationFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(first.notificationFailures))
}

func Test_NilSink_IsNoOp(t *testing.T) {
	var sink *Sink

	assert.NotPanics(t, func() {
		sink.RecordDispatchAttempt(DispatchResultError)
		sink.RecordNotificationFailure()
		sink.RecordLocationRejected()
	})
}
