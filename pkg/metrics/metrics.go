package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Overlay metrics
	ReconcileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_operations_total",
			Help: "Total number of overlay operations issued by the reconciler",
		},
		[]string{"op"},
	)

	TrackedEntitiesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_entities",
			Help: "Current number of aircraft shown on the map",
		},
	)

	PollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_ticks_total",
			Help: "Total number of poll ticks by outcome",
		},
		[]string{"result"},
	)

	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Snapshot feed fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	// Pipeline metrics
	IngestMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Total number of position messages received by source and outcome",
		},
		[]string{"source", "status"},
	)

	StoreMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_messages_total",
			Help: "Total number of position messages applied by the store by outcome",
		},
		[]string{"status"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)

	RabbitMQMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_consumed_total",
			Help: "Total number of messages consumed from RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// Poll tick outcomes.
const (
	PollOK      = "ok"
	PollFailed  = "failed"
	PollDropped = "dropped"
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordReconcile records the outcome of one reconciliation pass.
func RecordReconcile(created, updated, removed, skipped, failed, tracked int) {
	ReconcileOperationsTotal.WithLabelValues("create").Add(float64(created))
	ReconcileOperationsTotal.WithLabelValues("update").Add(float64(updated))
	ReconcileOperationsTotal.WithLabelValues("remove").Add(float64(removed))
	ReconcileOperationsTotal.WithLabelValues("skip").Add(float64(skipped))
	ReconcileOperationsTotal.WithLabelValues("fail").Add(float64(failed))
	TrackedEntitiesGauge.Set(float64(tracked))
}

// RecordPollTick records one poll tick with its result.
func RecordPollTick(result string) {
	PollTicksTotal.WithLabelValues(result).Inc()
}

// RecordFeedFetch records how long a snapshot fetch took.
func RecordFeedFetch(duration time.Duration) {
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordIngest records one received position message.
func RecordIngest(source string, err error) {
	IngestMessagesTotal.WithLabelValues(source, statusOf(err)).Inc()
}

// RecordStore records one applied position message. status is one of
// stored, outdated, dropped or error.
func RecordStore(status string) {
	StoreMessagesTotal.WithLabelValues(status).Inc()
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(service, operation, statusOf(err)).Inc()
	DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, queue string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(service, queue, statusOf(err)).Inc()
}

// RecordRabbitMQConsume records RabbitMQ consume metrics
func RecordRabbitMQConsume(service, queue string, err error) {
	RabbitMQMessagesConsumed.WithLabelValues(service, queue, statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
