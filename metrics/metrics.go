// Package metrics exposes Prometheus instrumentation for the attestation
// service along with a standalone metrics HTTP server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the attestation service.
type Metrics struct {
	registry *prometheus.Registry

	AttestationsRegistered prometheus.Counter
	RegistrationConflicts  prometheus.Counter
	ProofsVerified         *prometheus.CounterVec
	PhotosStored           prometheus.Counter
}

// New creates and registers all Prometheus metrics under the given namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AttestationsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attestations_registered_total",
			Help:      "Total number of photo attestations registered",
		}),
		RegistrationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_conflicts_total",
			Help:      "Total number of registrations rejected because the photo hash was already registered",
		}),
		ProofsVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proofs_verified_total",
			Help:      "Total number of ownership proof checks by outcome",
		}, []string{"outcome"}),
		PhotosStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_stored_total",
			Help:      "Total number of photos uploaded to storage backends",
		}),
	}
}

// IncProofVerified records a proof check outcome ("valid" or "mismatch").
func (m *Metrics) IncProofVerified(valid bool) {
	outcome := "mismatch"
	if valid {
		outcome = "valid"
	}
	m.ProofsVerified.WithLabelValues(outcome).Inc()
}

// MetricsServer serves the Prometheus scrape endpoint on its own listener.
type MetricsServer struct {
	srv *http.Server
}

// NewServer creates a metrics server exposing m on addr under /metrics.
func NewServer(m *Metrics, addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// ListenAndServe blocks serving the scrape endpoint.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
