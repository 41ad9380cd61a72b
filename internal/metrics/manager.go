// Package metrics holds the Prometheus collectors for the HTTP layer and the
// workout engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterWorkoutsGenerated  *prometheus.CounterVec
	CounterWorkoutsCompleted  *prometheus.CounterVec
	CounterExercisesLogged    prometheus.Counter
	CounterSelectionToggles   *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("gymsplit", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gymsplit", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterWorkoutsGenerated := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_generated",
		Help:      "The total number of generated workouts by routine day",
	}, []string{"day"})
	counterWorkoutsCompleted := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_completed",
		Help:      "The total number of completed workouts by routine day",
	}, []string{"day"})
	counterExercisesLogged := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "exercises_logged",
		Help:      "The total number of log entries written by completed workouts",
	})
	counterSelectionToggles := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "selection_toggles",
		Help:      "The total number of selection toggles by resulting state",
	}, []string{"selected"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01,
				0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10,
			},
			Name: "request_duration_seconds",
			Help: "Total duration of requests in seconds",
		},
	)

	return &Manager{
		CounterRequests:           counterRequests,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		CounterWorkoutsGenerated:  counterWorkoutsGenerated,
		CounterWorkoutsCompleted:  counterWorkoutsCompleted,
		CounterExercisesLogged:    counterExercisesLogged,
		CounterSelectionToggles:   counterSelectionToggles,
		GaugeRequests:             gaugeRequests,
		HistRequestDuration:       histReqDuration,
	}
}

// WorkoutGenerated records a generated workout for day.
func (m *Manager) WorkoutGenerated(day, _ int) {
	m.CounterWorkoutsGenerated.WithLabelValues(strconv.Itoa(day)).Inc()
}

// WorkoutCompleted records a committed workout and its log entries.
func (m *Manager) WorkoutCompleted(day, exercises int) {
	m.CounterWorkoutsCompleted.WithLabelValues(strconv.Itoa(day)).Inc()
	m.CounterExercisesLogged.Add(float64(exercises))
}

// SelectionToggled records a toggle and the state it produced.
func (m *Manager) SelectionToggled(selected bool) {
	m.CounterSelectionToggles.WithLabelValues(strconv.FormatBool(selected)).Inc()
}
