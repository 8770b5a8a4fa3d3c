// Package metrics описывает метрики Prometheus для бронирования и тарифов.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций для меток.
const (
	ResultOK          = "ok"
	ResultFailed      = "failed"
	ResultUnavailable = "unavailable"
)

// Metrics набор счётчиков сервиса.
type Metrics struct {
	Bookings           *prometheus.CounterVec
	SlotQueries        *prometheus.CounterVec
	SlotQueryDuration  prometheus.Histogram
	BestEffortFailures *prometheus.CounterVec
	LockedCardRequests prometheus.Counter
}

// New регистрирует метрики в reg. В тестах передаётся prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Bookings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardlink_bookings_total",
			Help: "Reservation attempts by result",
		}, []string{"result"}),
		SlotQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardlink_slot_queries_total",
			Help: "Available slot queries by result",
		}, []string{"result"}),
		SlotQueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardlink_slot_query_duration_seconds",
			Help:    "Duration of available slot queries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		BestEffortFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardlink_best_effort_failures_total",
			Help: "Swallowed failures of meeting link and notification calls",
		}, []string{"call"}),
		LockedCardRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardlink_locked_card_requests_total",
			Help: "Requests rejected because the card is locked by plan",
		}),
	}
}

// ObserveBooking учитывает результат бронирования.
func (m *Metrics) ObserveBooking(err error) {
	m.Bookings.WithLabelValues(result(err)).Inc()
}

// ObserveSlotQuery учитывает запрос слотов. Вызывается с time.Now() начала запроса.
func (m *Metrics) ObserveSlotQuery(start time.Time, label string) {
	m.SlotQueryDuration.Observe(time.Since(start).Seconds())
	m.SlotQueries.WithLabelValues(label).Inc()
}

// BestEffortFailed учитывает проглоченную ошибку вспомогательного вызова.
func (m *Metrics) BestEffortFailed(call string) {
	m.BestEffortFailures.WithLabelValues(call).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultFailed
	}
	return ResultOK
}
