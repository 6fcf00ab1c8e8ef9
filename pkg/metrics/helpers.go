package metrics

import (
	"strconv"
	"time"
)

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{service: service, operation: op, start: time.Now()}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(time.Since(rt.start).Seconds())
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

func RecordKafkaMessageConsumed(service, topic, group string, processingDuration time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processingDuration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{service: service, topic: topic, start: time.Now()}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	RecordKafkaError(kt.service, kt.topic, "produce")
}

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
)

type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{service: service, operation: op, table: table, start: time.Now()}
}

func (dt *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(time.Since(dt.start).Seconds())
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// UpstreamTimer меряет один запрос к удалённому API.
type UpstreamTimer struct {
	resource string
	method   string
	start    time.Time
}

func NewUpstreamTimer(resource, method string) *UpstreamTimer {
	return &UpstreamTimer{resource: resource, method: method, start: time.Now()}
}

// Done фиксирует код ответа; statusCode == 0 означает ошибку транспорта.
func (ut *UpstreamTimer) Done(statusCode int) {
	status := "transport_error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	UpstreamRequestsTotal.WithLabelValues(ut.resource, ut.method, status).Inc()
	UpstreamRequestDuration.WithLabelValues(ut.resource, ut.method).Observe(time.Since(ut.start).Seconds())
}

// RecordStoreOperation учитывает операцию хранилища и текущий размер коллекции.
func RecordStoreOperation(resource, operation string, ok bool, items int) {
	result := "success"
	if !ok {
		result = "failed"
	}
	StoreOperations.WithLabelValues(resource, operation, result).Inc()
	StoreItems.WithLabelValues(resource).Set(float64(items))
}

func RecordStaleResponse(resource string) {
	StoreStaleResponses.WithLabelValues(resource).Inc()
}
