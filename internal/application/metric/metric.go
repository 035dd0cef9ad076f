package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// Бронирования - результат операций create/cancel
	bookingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Количество операций с бронями по результату",
		},
		[]string{"operation", "outcome"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	statusPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_status_publish_total",
			Help: "Сколько раз задача статусов опубликовала срез",
		},
		[]string{"outcome"},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

// RecordBookingOperation - outcome это "ok" или вид ошибки
func RecordBookingOperation(operation, outcome string) {
	bookingOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordStatusPublish(ok bool) {
	if ok {
		statusPublishTotal.WithLabelValues("ok").Inc()
		return
	}
	statusPublishTotal.WithLabelValues("error").Inc()
}

func SetWSActiveConnections(count int) {
	wsActiveConnections.Set(float64(count))
}
