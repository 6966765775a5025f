package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/cache"
	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/pkg/logger"
)

const (
	defaultDeliveryRetention = 90 * 24 * time.Hour
	defaultReadRetention     = 30 * 24 * time.Hour
	defaultSchedule          = "@hourly"
)

// Cleaner coordinates background maintenance: pruning old delivery audit
// rows, clearing long-read in-app notifications and dropping expired cache
// entries.
type Cleaner struct {
	db    *gorm.DB
	store *cache.DatabaseStore
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger

	deliveryRetention time.Duration
	readRetention     time.Duration
	schedule          string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithDeliveryRetention adjusts how long delivery audit rows are kept.
func WithDeliveryRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.deliveryRetention = retention
		}
	}
}

// WithReadRetention adjusts how long read in-app notifications are kept.
func WithReadRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.readRetention = retention
		}
	}
}

// WithSchedule overrides the cron specification for the cleanup job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil cache store
// skips cache pruning.
func NewCleaner(db *gorm.DB, store *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                db,
		store:             store,
		now:               time.Now,
		deliveryRetention: defaultDeliveryRetention,
		readRetention:     defaultReadRetention,
		schedule:          defaultSchedule,
		log:               logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("cleanup run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all cleanup routines sequentially. Primarily used in
// tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.db == nil {
		return errors.New("maintenance: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := c.now()
	var errs error

	if pruned, err := c.pruneDeliveries(ctx, now); err != nil {
		errs = multierr.Append(errs, err)
	} else if pruned > 0 {
		c.log.Info("pruned delivery records", zap.Int64("count", pruned))
	}

	if pruned, err := c.pruneReadNotifications(ctx, now); err != nil {
		errs = multierr.Append(errs, err)
	} else if pruned > 0 {
		c.log.Info("pruned read notifications", zap.Int64("count", pruned))
	}

	if c.store != nil {
		if pruned, err := c.store.PruneExpired(ctx, now); err != nil {
			errs = multierr.Append(errs, err)
		} else if pruned > 0 {
			c.log.Info("pruned expired cache entries", zap.Int64("count", pruned))
		}
	}

	return errs
}

func (c *Cleaner) pruneDeliveries(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-c.deliveryRetention)
	result := c.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.NotificationDelivery{})
	return result.RowsAffected, result.Error
}

func (c *Cleaner) pruneReadNotifications(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-c.readRetention)
	result := c.db.WithContext(ctx).
		Where("is_read = ? AND read_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
