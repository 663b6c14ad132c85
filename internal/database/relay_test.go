package database

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	called := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if err := called.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	return m.Called().Error(0)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	called := m.Called(ctx, limit)
	events, _ := called.Get(0).([]*OutboxEvent)
	return events, called.Error(1)
}

func (m *MockOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, err error) error {
	return m.Called(ctx, id, err).Error(0)
}

func testEvent() *OutboxEvent {
	payload, _ := json.Marshal(map[string]interface{}{
		"product_id": "prod-1",
		"name":       "Gorra Azul",
	})
	return &OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "product",
		AggregateID:   "prod-1",
		EventType:     EventTypeProductImported,
		Payload:       payload,
		TargetStream:  defaultTargetStream,
		Status:        OutboxStatusPending,
		CreatedAt:     time.Now(),
	}
}

func testRelay(redisClient RedisClient, outbox OutboxRepo) *Relay {
	return &Relay{
		redis:     redisClient,
		outbox:    outbox,
		logger:    slog.Default(),
		interval:  time.Second,
		batchSize: 10,
	}
}

func TestRelayPublishesAndMarksProcessed(t *testing.T) {
	ctx := context.Background()
	event := testEvent()

	mockRedis := &MockRedisClient{}
	mockOutbox := &MockOutboxRepo{}

	mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		return args.Stream == defaultTargetStream &&
			args.Values.(map[string]interface{})["event_type"] == EventTypeProductImported
	})).Return(nil)
	mockOutbox.On("MarkProcessed", ctx, event.ID).Return(nil)

	relay := testRelay(mockRedis, mockOutbox)

	err := relay.processEvent(ctx, event)
	require.NoError(t, err)

	mockRedis.AssertExpectations(t)
	mockOutbox.AssertExpectations(t)
}

func TestRelayMarksFailedOnRedisError(t *testing.T) {
	ctx := context.Background()
	event := testEvent()
	redisErr := errors.New("redis connection failed")

	mockRedis := &MockRedisClient{}
	mockOutbox := &MockOutboxRepo{}

	mockRedis.On("XAdd", ctx, mock.Anything).Return(redisErr)
	mockOutbox.On("MarkFailed", ctx, event.ID, mock.MatchedBy(func(err error) bool {
		return err.Error() == "failed to publish to redis: redis connection failed"
	})).Return(nil)

	relay := testRelay(mockRedis, mockOutbox)

	err := relay.processEvent(ctx, event)
	require.Error(t, err)

	mockOutbox.AssertExpectations(t)
	mockOutbox.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestRelayMalformedPayloadMarksFailed(t *testing.T) {
	ctx := context.Background()
	event := testEvent()
	event.Payload = json.RawMessage(`{broken`)

	mockRedis := &MockRedisClient{}
	mockOutbox := &MockOutboxRepo{}
	mockOutbox.On("MarkFailed", ctx, event.ID, mock.Anything).Return(nil)

	relay := testRelay(mockRedis, mockOutbox)

	err := relay.processEvent(ctx, event)
	require.Error(t, err)

	mockRedis.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
	mockOutbox.AssertExpectations(t)
}

func TestRelayBatchContinuesAfterEventFailure(t *testing.T) {
	ctx := context.Background()
	first := testEvent()
	second := testEvent()

	mockRedis := &MockRedisClient{}
	mockOutbox := &MockOutboxRepo{}

	mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{first, second}, nil)
	mockRedis.On("XAdd", ctx, mock.Anything).Return(errors.New("boom")).Once()
	mockRedis.On("XAdd", ctx, mock.Anything).Return(nil).Once()
	mockOutbox.On("MarkFailed", ctx, first.ID, mock.Anything).Return(nil)
	mockOutbox.On("MarkProcessed", ctx, second.ID).Return(nil)

	relay := testRelay(mockRedis, mockOutbox)

	err := relay.processBatch(ctx)
	assert.NoError(t, err)

	mockRedis.AssertExpectations(t)
	mockOutbox.AssertExpectations(t)
}
