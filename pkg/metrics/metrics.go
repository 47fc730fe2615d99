package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы бронирования и освобождения слота (метка outcome)
const (
	OutcomeOK          = "ok"
	OutcomeSlotFull    = "slot_full"
	OutcomeInvalidSlot = "invalid_slot"
	OutcomeRejected    = "rejected"
	OutcomeTransient   = "transient"
	OutcomeError       = "error"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Connection pool
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec
	DBWaitDuration    *prometheus.GaugeVec

	// Запросы и транзакции
	DBQueryDuration  *prometheus.HistogramVec
	DBTxRetriesTotal *prometheus.CounterVec

	// Бронирование слотов
	ReservationsTotal *prometheus.CounterVec
	ReleasesTotal     *prometheus.CounterVec

	serviceName string
}

// New создает метрики и регистрирует их в глобальном prometheus registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном registry (в тестах - prometheus.NewRegistry())
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "route"},
		),

		DBOpenConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_open_connections",
				Help: "Number of established connections to the database",
			},
			[]string{"service"},
		),
		DBInUse: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_in_use_connections",
				Help: "Number of connections currently in use",
			},
			[]string{"service"},
		),
		DBIdle: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_idle_connections",
				Help: "Number of idle connections",
			},
			[]string{"service"},
		),
		DBWaitCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_wait_count",
				Help: "Total number of connections waited for",
			},
			[]string{"service"},
		),
		DBWaitDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_wait_duration_seconds",
				Help: "Total time blocked waiting for a new connection",
			},
			[]string{"service"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"service", "operation"},
		),
		DBTxRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_tx_retries_total",
				Help: "Number of retried transactions by reason",
			},
			[]string{"service", "reason"},
		),

		ReservationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_reservations_total",
				Help: "Slot reservation attempts by outcome",
			},
			[]string{"service", "outcome"},
		),
		ReleasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_releases_total",
				Help: "Slot release attempts by outcome",
			},
			[]string{"service", "outcome"},
		),
	}
}

// ServiceName возвращает имя сервиса, которым помечаются метрики
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// ObserveReservation учитывает исход бронирования (см. Outcome*)
func (m *Metrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(m.serviceName, outcome).Inc()
}

// ObserveRelease учитывает исход освобождения слота
func (m *Metrics) ObserveRelease(outcome string) {
	if m == nil {
		return
	}
	m.ReleasesTotal.WithLabelValues(m.serviceName, outcome).Inc()
}

// ObserveTxRetry учитывает повтор транзакции
func (m *Metrics) ObserveTxRetry(reason string) {
	if m == nil {
		return
	}
	m.DBTxRetriesTotal.WithLabelValues(m.serviceName, reason).Inc()
}
