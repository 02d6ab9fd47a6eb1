package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"thesis_backend/internals/features/notifications/model"
	"thesis_backend/internals/features/notifications/repository"
)

// Notice adalah satu pesan untuk satu penerima.
type Notice struct {
	RecipientID uuid.UUID
	Message     string
	Payload     map[string]any
}

// Notifier dipanggil workflow setelah commit. Tidak pernah mengembalikan error.
type Notifier interface {
	Emit(ctx context.Context, notices ...Notice)
}

// ToAll membuat notice yang sama untuk beberapa penerima.
func ToAll(recipients []uuid.UUID, message string, payload map[string]any) []Notice {
	out := make([]Notice, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, Notice{RecipientID: r, Message: message, Payload: payload})
	}
	return out
}

type DispatcherOption func(*Dispatcher)

func WithRetry(attempts int, backoff time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if attempts > 0 {
			d.attempts = attempts
		}
		d.backoff = backoff
	}
}

func WithPublisher(p Publisher) DispatcherOption {
	return func(d *Dispatcher) { d.publisher = p }
}

func WithMaxPending(n int) DispatcherOption {
	return func(d *Dispatcher) { d.maxPending = n }
}

// Dispatcher menyimpan notifikasi, mengulang saat gagal, lalu mem-publish event (opsional).
type Dispatcher struct {
	db         *gorm.DB
	publisher  Publisher
	attempts   int
	backoff    time.Duration
	maxPending int
	timeout    time.Duration

	mu      sync.Mutex
	pending [][]model.NotificationModel
}

func NewDispatcher(db *gorm.DB, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		db:         db,
		attempts:   3,
		backoff:    200 * time.Millisecond,
		maxPending: 500,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Emit(ctx context.Context, notices ...Notice) {
	rows := buildRows(notices)
	if len(rows) == 0 {
		return
	}

	// request context boleh sudah selesai; state utama sudah commit
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	if err := d.persistWithRetry(ctx, rows); err != nil {
		log.Printf("[NOTIF] persist failed after %d attempts, queued for retry: %v", d.attempts, err)
		d.enqueue(rows)
		return
	}
	d.publish(ctx, rows)
}

func buildRows(notices []Notice) []model.NotificationModel {
	type key struct {
		to  uuid.UUID
		msg string
	}
	seen := make(map[key]struct{}, len(notices))
	now := time.Now().UTC()
	rows := make([]model.NotificationModel, 0, len(notices))
	for _, n := range notices {
		if n.RecipientID == uuid.Nil || n.Message == "" {
			continue
		}
		k := key{n.RecipientID, n.Message}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		row := model.NotificationModel{
			NotificationID:          uuid.New(),
			NotificationRecipientID: n.RecipientID,
			NotificationMessage:     n.Message,
			NotificationCreatedAt:   now,
		}
		if len(n.Payload) > 0 {
			if b, err := json.Marshal(n.Payload); err == nil {
				row.NotificationPayload = datatypes.JSON(b)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (d *Dispatcher) persistWithRetry(ctx context.Context, rows []model.NotificationModel) error {
	var err error
	wait := d.backoff
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if err = repository.CreateNotifications(ctx, d.db, rows); err == nil {
			return nil
		}
		if attempt == d.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func (d *Dispatcher) enqueue(rows []model.NotificationModel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, rows)
	d.trimLocked()
}

// trimLocked membuang batch tertua bila antrian melebihi maxPending. Caller memegang d.mu.
func (d *Dispatcher) trimLocked() {
	if d.maxPending <= 0 || len(d.pending) <= d.maxPending {
		return
	}
	over := len(d.pending) - d.maxPending
	dropped := 0
	for _, b := range d.pending[:over] {
		dropped += len(b)
	}
	d.pending = append([][]model.NotificationModel(nil), d.pending[over:]...)
	log.Printf("[NOTIF] retry queue full, dropping %d batch(es) / %d notification(s)", over, dropped)
}

// Pending jumlah batch yang menunggu retry.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// FlushPending mencoba ulang batch yang gagal. Batch yang masih gagal dikembalikan ke antrian.
func (d *Dispatcher) FlushPending(ctx context.Context) int {
	d.mu.Lock()
	batches := d.pending
	d.pending = nil
	d.mu.Unlock()

	flushed := 0
	for i, rows := range batches {
		if err := repository.CreateNotifications(ctx, d.db, rows); err != nil {
			log.Printf("[NOTIF] retry flush failed: %v", err)
			d.mu.Lock()
			d.pending = append(batches[i:], d.pending...)
			d.trimLocked()
			d.mu.Unlock()
			return flushed
		}
		flushed++
		d.publish(ctx, rows)
	}
	return flushed
}

func (d *Dispatcher) publish(ctx context.Context, rows []model.NotificationModel) {
	if d.publisher == nil {
		return
	}
	events := make([]Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, EventFromModel(r))
	}
	if err := d.publisher.Publish(ctx, events); err != nil {
		log.Printf("[NOTIF] publish %d events failed: %v", len(events), err)
	}
}
