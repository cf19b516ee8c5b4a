// Package metrics records the outcome of an import run as Prometheus gauges
// and writes them in the node_exporter textfile format for batch schedulers.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

const namespace = "gioimport"

// Recorder holds the gauges of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	geometries  *prometheus.GaugeVec
	locations   prometheus.Gauge
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
	exitCode    prometheus.Gauge
}

// NewRecorder creates a Recorder with all gauges registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		geometries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geometries",
			Help:      "Geometries handled by the last import, by outcome.",
		}, []string{"outcome"}),
		locations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "group_members",
			Help:      "Locations linked to the group location of the last import.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of the last import.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful import started.",
		}),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exit_code",
			Help:      "Exit code of the last import run.",
		}),
	}
	r.registry.MustRegister(r.geometries, r.locations, r.duration, r.lastSuccess, r.exitCode)
	return r
}

// ObserveResult records a successful run.
func (r *Recorder) ObserveResult(result *gioimport.ImportResult) {
	r.geometries.WithLabelValues("inserted").Set(float64(result.GeometriesInserted))
	r.geometries.WithLabelValues("reused").Set(float64(result.GeometriesReused))
	r.locations.Set(float64(result.Locations))
	r.duration.Set(result.Duration.Seconds())
	r.lastSuccess.Set(float64(result.Started.Unix()))
	r.exitCode.Set(gioimport.ExitSuccess)
}

// ObserveError records a failed run by its exit code.
func (r *Recorder) ObserveError(err error) {
	r.exitCode.Set(float64(gioimport.ExitCodeForError(err)))
}

// WriteTextfile atomically writes the gauges to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
