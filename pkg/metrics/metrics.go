package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики фасада
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов к фасаду
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="console"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа фасада
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Upstream API (REST-сервер инвентаря)
// =============================================================================

// UpstreamRequestsTotal - запросы HTTP-клиента к удалённому API
// Labels: resource, method, status (код ответа или "transport_error")
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of requests sent to the inventory API",
	},
	[]string{"resource", "method", "status"},
)

// UpstreamRequestDuration - время ответа удалённого API
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of inventory API requests in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"resource", "method"},
)

// =============================================================================
// Resource Store
// =============================================================================

// StoreOperations - операции хранилищ
// Labels: resource, operation (fetch, add, update, remove), result (success, failed)
var StoreOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "Total number of resource store operations",
	},
	[]string{"resource", "operation", "result"},
)

// StoreItems - размер коллекции после последнего изменения
var StoreItems = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "store_items",
		Help: "Number of records currently held by a resource store",
	},
	[]string{"resource"},
)

// StoreStaleResponses - ответы fetch, отброшенные из-за более нового запроса
var StoreStaleResponses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_stale_responses_total",
		Help: "Total number of fetch responses discarded as superseded",
	},
	[]string{"resource"},
)

// =============================================================================
// Database Метрики (журнал активности)
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики (хранилище сессии)
// =============================================================================

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Бизнес-метрики консоли
// =============================================================================

// AuthLogins - попытки входа
var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"role", "status"}, // status: success, failed
)

// InventoryMovements - записанные продажи и закупки
var InventoryMovements = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_movements_total",
		Help: "Total number of recorded sales and purchases",
	},
	[]string{"kind", "stock_adjusted"},
)

// ScheduledRefreshes - плановые обновления хранилищ
var ScheduledRefreshes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduled_refreshes_total",
		Help: "Total number of scheduled store refreshes",
	},
	[]string{"status"}, // success, failed
)
