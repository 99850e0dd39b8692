package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the operation an EvaluationEvent reports.
type EventKind string

const (
	EventEvolutionNext     EventKind = "evolution.next"
	EventEvolutionProgress EventKind = "evolution.progress"
	EventTypesClassify     EventKind = "types.classify"
	EventBattleFinished    EventKind = "battle.finished"
	EventDatasetPut        EventKind = "dataset.put"
	EventDatasetDeleted    EventKind = "dataset.deleted"
)

// EvaluationEvent describes one evaluation or dataset change. Request and
// Result hold the JSON bodies of the call.
type EvaluationEvent struct {
	ID        string    `json:"id"`
	DatasetID DatasetID `json:"dataset_id,omitempty"`
	Kind      EventKind `json:"kind"`
	Timestamp int64     `json:"timestamp"`
	Request   any       `json:"request,omitempty"`
	Result    any       `json:"result,omitempty"`
}

// NewEvaluationEvent stamps a new event with a random id and the current time.
func NewEvaluationEvent(datasetID DatasetID, kind EventKind, request, result any) EvaluationEvent {
	return EvaluationEvent{
		ID:        uuid.NewString(),
		DatasetID: datasetID,
		Kind:      kind,
		Timestamp: time.Now().Unix(),
		Request:   request,
		Result:    result,
	}
}

// JSON returns the event as JSON bytes
func (e EvaluationEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is the interface that all notification channels must implement
type Notifier interface {
	// ID returns a unique identifier for this notifier
	ID() string

	// Type returns the type of notifier (e.g., "webhook", "websocket")
	Type() string

	// Notify sends an event. The context carries the delivery deadline.
	Notify(ctx context.Context, event EvaluationEvent) error

	// Close releases any resources held by the notifier
	Close() error
}

type notificationJob struct {
	Event       EvaluationEvent
	NotifierIDs []string
}

// RetryPolicy controls redelivery of failed notifications.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	Timeout    time.Duration
}

// DefaultRetryPolicy retries three times starting at 100ms, doubling each time.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	Backoff:    100 * time.Millisecond,
	Timeout:    30 * time.Second,
}

// NotificationManager manages all notifiers and routes events to them
// from a background worker.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
	retry     RetryPolicy
}

// NewNotificationManager creates a manager with DefaultRetryPolicy and
// starts its worker.
func NewNotificationManager(logger Logger) *NotificationManager {
	return NewNotificationManagerWithPolicy(logger, DefaultRetryPolicy)
}

// NewNotificationManagerWithPolicy creates a manager with a custom retry policy.
func NewNotificationManagerWithPolicy(logger Logger, policy RetryPolicy) *NotificationManager {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultRetryPolicy.Timeout
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		logger:    orNoOp(logger),
		retry:     policy,
	}
	mgr.wg.Add(1)
	go mgr.worker()
	return mgr
}

// RegisterNotifier registers a notifier with the manager
func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}

	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.closed {
		return fmt.Errorf("notification manager is closed")
	}
	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}

	nm.notifiers[id] = notifier
	nm.logger.Infof("notifier registered: id=%s type=%s", id, notifier.Type())
	return nil
}

// UnregisterNotifier closes and removes a notifier
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	if exists {
		delete(nm.notifiers, id)
	}
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := notifier.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}
	nm.logger.Infof("notifier unregistered: id=%s", id)
	return nil
}

// GetNotifier retrieves a notifier by ID
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the registered notifier IDs in sorted order
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	nm.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Enqueue queues an event for the given notifiers. It never blocks; when the
// queue is full the event is dropped and a warning logged.
func (nm *NotificationManager) Enqueue(event EvaluationEvent, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}

	nm.mu.RLock()
	defer nm.mu.RUnlock()
	if nm.closed {
		return
	}

	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
	default:
		nm.logger.Warnf("notification queue full, dropping event: id=%s kind=%s", event.ID, event.Kind)
	}
}

// EnqueueAll queues an event for every notifier registered at call time.
func (nm *NotificationManager) EnqueueAll(event EvaluationEvent) {
	nm.Enqueue(event, nm.ListNotifiers())
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		nm.dispatchJob(job)
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), nm.retry.Timeout)
	defer cancel()

	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

// notifyWithRetry delivers an event with exponential backoff between attempts
func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event EvaluationEvent) {
	notifier, ok := nm.GetNotifier(notifierID)
	if !ok {
		nm.logger.Warnf("notification failed: notifier=%s error=notifier not found", notifierID)
		return
	}

	backoff := nm.retry.Backoff
	for attempt := 0; attempt <= nm.retry.MaxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s event=%s attempt=%d error=%v", notifierID, event.ID, attempt+1, err)

		if attempt == nm.retry.MaxRetries {
			nm.logger.Errorf("notification failed after %d attempts: notifier=%s event=%s", attempt+1, notifierID, event.ID)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Notify sends an event to the given notifiers synchronously, without retries.
func (nm *NotificationManager) Notify(ctx context.Context, event EvaluationEvent, notifierIDs []string) error {
	var errs []error
	for _, id := range notifierIDs {
		notifier, exists := nm.GetNotifier(id)
		if !exists {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %v", errs)
	}
	return nil
}

// Close drains the queue, stops the worker and closes every notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	var errs []error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}
	return nil
}
