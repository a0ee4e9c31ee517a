// Package metrics собирает счетчики клиента в собственный реестр prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketplace_client"

type Metrics struct {
	Registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Mutations     *prometheus.CounterVec
	Fetches       *prometheus.CounterVec
	Actions       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "REST requests by method and status class.",
		}, []string{"method", "status"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications shown by kind.",
		}, []string{"kind"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimistic_mutations_total",
			Help:      "Optimistic mutations by resource and outcome.",
		}, []string{"resource", "outcome"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_fetches_total",
			Help:      "Resource fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Async actions by name and outcome.",
		}, []string{"action", "outcome"}),
	}

	m.Registry.MustRegister(m.Requests, m.Notifications, m.Mutations, m.Fetches, m.Actions)

	return m
}

// Методы ниже безопасны для nil-получателя: компоненты можно собирать без метрик.

func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	class := "error"
	if status > 0 {
		class = strconv.Itoa(status/100) + "xx"
	}
	m.Requests.WithLabelValues(method, class).Inc()
}

func (m *Metrics) ObserveNotification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveMutation(resource, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) ObserveFetch(resource, outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action, outcome).Inc()
}
