package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockdesk/console-service/internal/app/console/service"
)

// MockRefresher мок для service.Refresher
type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context, resource string) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockRefresher) RefreshAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ===================== CronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	refresher := new(MockRefresher)

	scheduler := NewCronScheduler(refresher)

	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, refresher, scheduler.refresher)
}

func TestCronScheduler_Start_InitialRefresh(t *testing.T) {
	// Arrange
	refresher := new(MockRefresher)
	refresher.On("RefreshAll", mock.Anything).Return(nil)
	scheduler := NewCronScheduler(refresher)

	// Act
	err := scheduler.Start(context.Background(), "*/5 * * * *")
	defer scheduler.Stop()

	// Assert
	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	refresher.AssertNumberOfCalls(t, "RefreshAll", 1)
}

func TestCronScheduler_Start_InitialRefreshFailureIsNotFatal(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("RefreshAll", mock.Anything).Return(errors.New("api down"))
	scheduler := NewCronScheduler(refresher)

	err := scheduler.Start(context.Background(), "@every 1h")
	defer scheduler.Stop()

	assert.NoError(t, err)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	refresher := new(MockRefresher)
	scheduler := NewCronScheduler(refresher)

	err := scheduler.Start(context.Background(), "not a schedule")

	assert.Error(t, err)
	refresher.AssertNotCalled(t, "RefreshAll", mock.Anything)
}

// ===================== KafkaConsumer Tests =====================

func TestNewKafkaConsumer(t *testing.T) {
	consumer := NewKafkaConsumer([]string{"localhost:9092"}, "inventory_changes", "test-group", new(MockRefresher))

	assert.NotNil(t, consumer.reader)
	assert.NotNil(t, consumer.stopChan)
	assert.NotNil(t, consumer.doneChan)

	consumer.reader.Close()
}

func TestKafkaConsumer_ProcessMessage_SingleResource(t *testing.T) {
	// Arrange
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "products").Return(nil)
	consumer := &KafkaConsumer{refresher: refresher}

	// Act
	err := consumer.processMessage(context.Background(), kafka.Message{
		Value: []byte(`{"event_type":"PRODUCT_UPDATED","resource":"products"}`),
	})

	// Assert
	assert.NoError(t, err)
	refresher.AssertExpectations(t)
	refresher.AssertNotCalled(t, "RefreshAll", mock.Anything)
}

func TestKafkaConsumer_ProcessMessage_AllResources(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("RefreshAll", mock.Anything).Return(nil)
	consumer := &KafkaConsumer{refresher: refresher}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte(`{"event_type":"BULK_IMPORT"}`)})

	assert.NoError(t, err)
	refresher.AssertExpectations(t)
}

func TestKafkaConsumer_ProcessMessage_RefreshError(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "sales").Return(errors.New("api down"))
	consumer := &KafkaConsumer{refresher: refresher}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte(`{"resource":"sales"}`)})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh sales")
}

func TestKafkaConsumer_ProcessMessage_UnknownResourceSkipped(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "invoices").Return(service.ErrUnknownResource)
	consumer := &KafkaConsumer{refresher: refresher}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte(`{"resource":"invoices"}`)})

	assert.NoError(t, err)
}

func TestKafkaConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	consumer := &KafkaConsumer{refresher: new(MockRefresher)}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("{{{")})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

// fakeReader отдаёт сообщения из канала и запоминает коммиты.
type fakeReader struct {
	messages  chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestKafkaConsumer_CommitsOnlyProcessedMessages(t *testing.T) {
	// Arrange
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything, "products").Return(nil)
	refresher.On("Refresh", mock.Anything, "sales").Return(errors.New("api down"))

	reader := &fakeReader{messages: make(chan kafka.Message, 2)}
	reader.messages <- kafka.Message{Offset: 1, Value: []byte(`{"resource":"sales"}`)}
	reader.messages <- kafka.Message{Offset: 2, Value: []byte(`{"resource":"products"}`)}

	consumer := &KafkaConsumer{
		reader:    reader,
		refresher: refresher,
		topic:     "inventory_changes",
		poll:      20 * time.Millisecond,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}

	// Act
	consumer.Start(context.Background())
	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, 2*time.Second, 10*time.Millisecond)
	consumer.Stop()

	// Assert
	assert.Equal(t, []int64{2}, reader.commits())
}
