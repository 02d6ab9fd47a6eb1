package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"thesis_backend/internals/databases/dbtest"
	"thesis_backend/internals/features/notifications/model"
	"thesis_backend/internals/features/notifications/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events []Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestEmitPersistsAndPublishes(t *testing.T) {
	db := dbtest.Open(t)
	pub := &recordingPublisher{}
	d := NewDispatcher(db, WithPublisher(pub), WithRetry(1, 0))

	alice, bob := uuid.New(), uuid.New()
	d.Emit(context.Background(),
		Notice{RecipientID: alice, Message: "topic approved"},
		Notice{RecipientID: alice, Message: "topic approved"},
		Notice{RecipientID: bob, Message: "topic approved", Payload: map[string]any{"topic_id": "t1"}},
		Notice{RecipientID: uuid.Nil, Message: "ignored"},
	)

	var count int64
	require.NoError(t, db.Model(&model.NotificationModel{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	rows, total, err := repository.ListForRecipient(context.Background(), db, bob, false, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rows[0].NotificationPayload, &payload))
	assert.Equal(t, "t1", payload["topic_id"])

	require.Len(t, pub.events, 2)
	assert.Equal(t, "t1", pub.events[1].Payload["topic_id"])
}

func TestEmitPublishFailureDoesNotQueue(t *testing.T) {
	db := dbtest.Open(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(db, WithPublisher(pub), WithRetry(1, 0))

	d.Emit(context.Background(), Notice{RecipientID: uuid.New(), Message: "hi"})
	assert.Equal(t, 0, d.Pending())
}

func TestEmitQueuesOnStoreFailureAndFlushLater(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Migrator().DropTable(&model.NotificationModel{}))

	d := NewDispatcher(db, WithRetry(2, time.Millisecond))
	recipient := uuid.New()
	d.Emit(context.Background(), Notice{RecipientID: recipient, Message: "report approved"})
	assert.Equal(t, 1, d.Pending())

	// masih gagal: batch kembali ke antrian
	assert.Equal(t, 0, d.FlushPending(context.Background()))
	assert.Equal(t, 1, d.Pending())

	require.NoError(t, db.AutoMigrate(&model.NotificationModel{}))
	assert.Equal(t, 1, d.FlushPending(context.Background()))
	assert.Equal(t, 0, d.Pending())

	unread, err := repository.CountUnread(context.Background(), db, recipient)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestRetryQueueIsBounded(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Migrator().DropTable(&model.NotificationModel{}))
	d := NewDispatcher(db, WithRetry(1, 0), WithMaxPending(2))

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Notice{RecipientID: uuid.New(), Message: "x"})
	}
	assert.Equal(t, 2, d.Pending())
}

func TestFlushRequeueStaysBounded(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Migrator().DropTable(&model.NotificationModel{}))
	d := NewDispatcher(db, WithRetry(1, 0), WithMaxPending(2))

	d.Emit(context.Background(), Notice{RecipientID: uuid.New(), Message: "old-1"})
	d.Emit(context.Background(), Notice{RecipientID: uuid.New(), Message: "old-2"})
	require.Equal(t, 2, d.Pending())

	// emit baru masuk antrian saat flush sedang berjalan
	armed := true
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_emit", func(*gorm.DB) {
		if !armed {
			return
		}
		armed = false
		d.Emit(context.Background(), Notice{RecipientID: uuid.New(), Message: "new-1"})
		d.Emit(context.Background(), Notice{RecipientID: uuid.New(), Message: "new-2"})
	}))

	assert.Equal(t, 0, d.FlushPending(context.Background()))
	require.Equal(t, 2, d.Pending())

	d.mu.Lock()
	kept := []string{d.pending[0][0].NotificationMessage, d.pending[1][0].NotificationMessage}
	d.mu.Unlock()
	assert.Equal(t, []string{"new-1", "new-2"}, kept)
}

func TestMarkReadHelpers(t *testing.T) {
	db := dbtest.Open(t)
	d := NewDispatcher(db, WithRetry(1, 0))
	me, other := uuid.New(), uuid.New()
	d.Emit(context.Background(), ToAll([]uuid.UUID{me, other}, "council approved", nil)...)
	d.Emit(context.Background(), Notice{RecipientID: me, Message: "second"})

	ctx := context.Background()
	rows, _, err := repository.ListForRecipient(ctx, db, me, true, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = repository.MarkAsRead(ctx, db, other, rows[0].NotificationID, time.Now().UTC())
	assert.Error(t, err, "cannot mark another user's notification")

	n, err := repository.MarkAsRead(ctx, db, me, rows[0].NotificationID, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repository.MarkAllAsRead(ctx, db, me, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	unread, err := repository.CountUnread(ctx, db, me)
	require.NoError(t, err)
	assert.Zero(t, unread)
	unread, err = repository.CountUnread(ctx, db, other)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisherEncodesEvents(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	recipient := uuid.New()

	err := p.Publish(context.Background(), []Event{{NotificationID: uuid.New(), RecipientID: recipient, Message: "hello"}})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, recipient.String(), string(w.msgs[0].Key))

	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, "hello", ev.Message)

	var nilPub *KafkaPublisher
	assert.NoError(t, nilPub.Publish(context.Background(), []Event{{}}))
	assert.NoError(t, nilPub.Close())
}

func TestStartRetryScheduler(t *testing.T) {
	d := NewDispatcher(dbtest.Open(t))
	c, err := StartRetryScheduler(d, "@every 1h")
	require.NoError(t, err)
	c.Stop()

	_, err = StartRetryScheduler(d, "not a cron")
	assert.Error(t, err)
}
