// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch attempt results used as the "result" label value.
const (
	DispatchResultAssigned   = "assigned"
	DispatchResultNoPartner  = "no_partner"
	DispatchResultContention = "contention"
	DispatchResultError      = "error"
)

// Sink records operational counters. A nil *Sink is a valid no-op recorder,
// so tests and handlers that do not care about metrics can pass nil.
type Sink struct {
	dispatchAttempts     *prometheus.CounterVec
	notificationFailures prometheus.Counter
	wsLocationRejected   prometheus.Counter
}

// NewSink registers the service's collectors on the provided registerer.
// If reg is nil, the default registerer is used. Collectors that are already
// registered are reused.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	dispatchAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_attempts_total",
		Help: "Delivery partner dispatch attempts by result",
	}, []string{"result"})

	notificationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Push notifications that could not be delivered",
	})

	wsLocationRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_location_rejected_total",
		Help: "Location updates rejected because the sender is not the assigned partner",
	})

	if err := reg.Register(dispatchAttempts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			dispatchAttempts = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(notificationFailures); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			notificationFailures = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(wsLocationRejected); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			wsLocationRejected = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &Sink{
		dispatchAttempts:     dispatchAttempts,
		notificationFailures: notificationFailures,
		wsLocationRejected:   wsLocationRejected,
	}, nil
}

// RecordDispatchAttempt counts a dispatch attempt by result.
func (s *Sink) RecordDispatchAttempt(result string) {
	if s == nil {
		return
	}
	s.dispatchAttempts.WithLabelValues(result).Inc()
}

// RecordNotificationFailure counts an undeliverable push notification.
func (s *Sink) RecordNotificationFailure() {
	if s == nil {
		return
	}
	s.notificationFailures.Inc()
}

// RecordLocationRejected counts a location update from a non-assigned sender.
func (s *Sink) RecordLocationRejected() {
	if s == nil {
		return
	}
	s.wsLocationRejected.Inc()
}
