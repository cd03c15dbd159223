// Package metrics exposes Prometheus counters for the evaluation runtime.
//
// Counters are registered on a package-private registry so importing
// geofield never touches prometheus.DefaultRegisterer. Call Registry to
// expose them, for example through promhttp.HandlerFor.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Capture path labels.
const (
	PathEmptyDomain = "empty_domain"
	PathInPlace     = "in_place"
	PathShared      = "shared"
	PathAllocated   = "allocated"
	PathFailed      = "failed"
)

var (
	registry = prometheus.NewRegistry()

	// Captures counts attribute captures by the path they took.
	Captures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geofield_captures_total",
			Help: "Attribute captures by write path",
		},
		[]string{"path"},
	)

	// ComponentCopies counts copy-on-write component copies by kind.
	ComponentCopies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geofield_component_copies_total",
			Help: "Geometry components copied before a write",
		},
		[]string{"kind"},
	)

	// FieldEvaluations counts evaluator runs.
	FieldEvaluations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geofield_field_evaluations_total",
			Help: "Field evaluator runs",
		},
	)

	// EvaluatedElements counts elements written by evaluator runs.
	EvaluatedElements = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geofield_evaluated_elements_total",
			Help: "Selected elements processed by field evaluation",
		},
	)
)

func init() {
	registry.MustRegister(Captures, ComponentCopies, FieldEvaluations, EvaluatedElements)
}

// Registry returns the registry holding every geofield collector.
func Registry() *prometheus.Registry { return registry }
