package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/pkg/logger"
	"github.com/loadlane/loadlane/pkg/metrics"
)

// DefaultAdapterTimeout bounds a single channel adapter call so a hung
// provider cannot stall the channel loop.
const DefaultAdapterTimeout = 10 * time.Second

// ChannelAttempt records the terminal outcome of one channel within a dispatch.
type ChannelAttempt struct {
	Channel Channel
	Status  Status
	Reason  string
}

// Result describes what one dispatch did. Callers treat dispatch as
// fire-and-forget; the result exists for observability and tests.
type Result struct {
	InAppID          string
	Suppressed       bool
	SuppressedReason string
	Delivered        bool
	Attempts         []ChannelAttempt
}

// Dispatcher orchestrates one notification end to end: preferences, quiet
// hours, the in-app record, then the channel loop with throttling. It never
// returns an error and never panics past its boundary.
type Dispatcher struct {
	db       *gorm.DB
	prefs    *PreferenceService
	gate     Gate
	inApp    *InAppService
	adapters map[Channel]ChannelAdapter
	timeout  time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAdapterTimeout overrides the per-adapter call timeout.
func WithAdapterTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDispatcherNow overrides the clock, for tests.
func WithDispatcherNow(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher wires the dispatcher with its collaborators. Adapters are
// registered by channel; a channel without an adapter is skipped.
func NewDispatcher(db *gorm.DB, prefs *PreferenceService, gate Gate, inApp *InAppService, adapters []ChannelAdapter, opts ...DispatcherOption) *Dispatcher {
	byChannel := make(map[Channel]ChannelAdapter, len(adapters))
	for _, adapter := range adapters {
		if adapter != nil {
			byChannel[adapter.Channel()] = adapter
		}
	}

	d := &Dispatcher{
		db:       db,
		prefs:    prefs,
		gate:     gate,
		inApp:    inApp,
		adapters: byChannel,
		timeout:  DefaultAdapterTimeout,
		now:      time.Now,
		log:      logger.WithModule("notify.dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers one notification to one user. Policy suppression (type
// disabled, quiet hours) returns before anything is written. Otherwise the
// in-app record is written exactly once and the user's channel list is tried
// in order until one delivers.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, t Type, data Data) (result Result) {
	started := d.now()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("dispatch panicked",
				zap.String("user_id", userID),
				zap.String("type", string(t)),
				zap.Any("panic", r))
			metrics.Dispatches.WithLabelValues(string(t), "panic").Inc()
			result = Result{Suppressed: true, SuppressedReason: "internal error"}
		}
		metrics.DispatchLatency.Observe(time.Since(started).Seconds())
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	payload := data.Clone()
	payload["user_id"] = userID

	prefs := d.prefs.Get(ctx, userID)

	typePref := prefs.TypePreferenceFor(t)
	if !typePref.Enabled {
		d.log.Debug("notification type disabled for user",
			zap.String("user_id", userID),
			zap.String("type", string(t)))
		metrics.Dispatches.WithLabelValues(string(t), "suppressed").Inc()
		return Result{Suppressed: true, SuppressedReason: "type disabled"}
	}

	if InQuietHours(prefs, d.now()) {
		d.log.Debug("suppressed by quiet hours",
			zap.String("user_id", userID),
			zap.String("type", string(t)))
		metrics.Dispatches.WithLabelValues(string(t), "suppressed").Inc()
		return Result{Suppressed: true, SuppressedReason: "quiet hours"}
	}

	result.InAppID = d.inApp.Write(ctx, userID, t, payload)

	snapshot := encodePayload(payload)
	var attemptErrs error

	for _, channel := range typePref.Channels {
		if channel == ChannelInApp {
			continue
		}
		if !prefs.ChannelEnabled(channel) {
			continue
		}
		adapter, ok := d.adapters[channel]
		if !ok {
			continue
		}

		if d.gate != nil && d.gate.Throttled(ctx, userID, channel, t) {
			d.recordAttempt(ctx, userID, t, channel, snapshot, StatusThrottled, "throttle window active")
			result.Attempts = append(result.Attempts, ChannelAttempt{Channel: channel, Status: StatusThrottled, Reason: "throttle window active"})
			metrics.ChannelAttempts.WithLabelValues(string(channel), string(StatusThrottled)).Inc()
			continue
		}

		record := d.createSendingRecord(ctx, userID, t, channel, snapshot)
		outcome := d.deliverWithTimeout(ctx, adapter, userID, t, payload)
		d.finaliseRecord(ctx, record, outcome)

		result.Attempts = append(result.Attempts, ChannelAttempt{Channel: channel, Status: outcome.Status, Reason: outcome.Reason})
		metrics.ChannelAttempts.WithLabelValues(string(channel), string(outcome.Status)).Inc()

		switch outcome.Status {
		case StatusDelivered:
			if d.gate != nil {
				d.gate.RecordSuccess(ctx, userID, channel, t)
			}
			result.Delivered = true
		case StatusFailed:
			attemptErrs = multierr.Append(attemptErrs, fmt.Errorf("%s: %s", channel, outcome.Reason))
		}

		if result.Delivered {
			break
		}
	}

	if result.Delivered {
		metrics.Dispatches.WithLabelValues(string(t), "delivered").Inc()
	} else {
		metrics.Dispatches.WithLabelValues(string(t), "undelivered").Inc()
		if len(result.Attempts) > 0 {
			d.log.Warn("no channel delivered",
				zap.String("user_id", userID),
				zap.String("type", string(t)),
				zap.Int("attempts", len(result.Attempts)),
				zap.Error(attemptErrs))
		}
	}
	return result
}

// deliverWithTimeout bounds the adapter call and converts a deadline hit
// into a failed delivery so the loop can move to the next channel.
func (d *Dispatcher) deliverWithTimeout(ctx context.Context, adapter ChannelAdapter, userID string, t Type, payload Data) Delivery {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	outcome := adapter.Deliver(callCtx, userID, t, payload)
	if outcome.Status == StatusFailed && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		outcome.Reason = "adapter timed out: " + outcome.Reason
	}
	return outcome
}

func (d *Dispatcher) createSendingRecord(ctx context.Context, userID string, t Type, channel Channel, snapshot datatypes.JSON) *models.NotificationDelivery {
	record := &models.NotificationDelivery{
		UserID:  userID,
		Type:    string(t),
		Channel: string(channel),
		Status:  string(StatusSending),
		Payload: snapshot,
	}
	if err := d.db.WithContext(ctx).Create(record).Error; err != nil {
		d.log.Warn("failed to create delivery record",
			zap.String("user_id", userID),
			zap.String("channel", string(channel)),
			zap.Error(err))
		return nil
	}
	return record
}

func (d *Dispatcher) finaliseRecord(ctx context.Context, record *models.NotificationDelivery, outcome Delivery) {
	if record == nil {
		return
	}
	now := d.now()
	err := d.db.WithContext(ctx).Model(record).Updates(map[string]interface{}{
		"status":       string(outcome.Status),
		"error":        outcome.Reason,
		"completed_at": &now,
	}).Error
	if err != nil {
		d.log.Warn("failed to finalise delivery record",
			zap.String("delivery_id", record.ID),
			zap.Error(err))
	}
}

func (d *Dispatcher) recordAttempt(ctx context.Context, userID string, t Type, channel Channel, snapshot datatypes.JSON, status Status, reason string) {
	now := d.now()
	record := &models.NotificationDelivery{
		UserID:      userID,
		Type:        string(t),
		Channel:     string(channel),
		Status:      string(status),
		Payload:     snapshot,
		Error:       reason,
		CompletedAt: &now,
	}
	if err := d.db.WithContext(ctx).Create(record).Error; err != nil {
		d.log.Warn("failed to record channel attempt",
			zap.String("user_id", userID),
			zap.String("channel", string(channel)),
			zap.Error(err))
	}
}

func encodePayload(data Data) datatypes.JSON {
	encoded, err := json.Marshal(data)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(encoded)
}
