package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	"github.com/meetgrid/meetgrid/internal/services"
	"github.com/meetgrid/meetgrid/pkg/logger"
)

const (
	defaultPurgeRetention = 90 * 24 * time.Hour
	defaultAuditRetention = 90 * 24 * time.Hour
	defaultCompleteSpec   = "@hourly"
	defaultPurgeSpec      = "@daily"
)

// Cleaner coordinates background maintenance: closing out events whose date
// has passed, purging soft-deleted rows past their retention window, and
// pruning stale audit logs.
type Cleaner struct {
	db    *gorm.DB
	audit *services.AuditService
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger

	purgeRetention time.Duration
	auditRetention time.Duration

	completeSchedule string
	purgeSchedule    string
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

// WithNow overrides the clock used for scheduling and cutoff comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithPurgeRetention adjusts how long soft-deleted rows are kept before the
// purge removes them for good.
func WithPurgeRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.purgeRetention = retention
		}
	}
}

// WithAuditRetention adjusts how long audit logs are retained.
func WithAuditRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.auditRetention = retention
		}
	}
}

// WithCompleteSchedule overrides the cron specification for completing
// elapsed events.
func WithCompleteSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.completeSchedule = spec
		}
	}
}

// WithPurgeSchedule overrides the cron specification for the purge job.
func WithPurgeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.purgeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. The audit service
// may be nil, in which case audit pruning is skipped.
func NewCleaner(db *gorm.DB, audit *services.AuditService, opts ...Option) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("maintenance: database handle is required")
	}

	cleaner := &Cleaner{
		db:               db,
		audit:            audit,
		now:              time.Now,
		purgeRetention:   defaultPurgeRetention,
		auditRetention:   defaultAuditRetention,
		completeSchedule: defaultCompleteSpec,
		purgeSchedule:    defaultPurgeSpec,
		log:              logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner, nil
}

// Start registers the maintenance jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.completeSchedule, func() {
		ctx := context.Background()
		if n, err := CompleteElapsedEvents(ctx, c.db, c.now()); err != nil {
			c.log.Warn("event completion failed", zap.Error(err))
		} else if n > 0 {
			c.log.Info("marked elapsed events completed", zap.Int64("events", n))
		}
	}); err != nil {
		return err
	}

	if _, err := c.cron.AddFunc(c.purgeSchedule, func() {
		ctx := context.Background()
		cutoff := c.now().Add(-c.purgeRetention)
		if stats, err := PurgeSoftDeleted(ctx, c.db, cutoff); err != nil {
			c.log.Warn("purge failed", zap.Error(err))
		} else if total := stats.Users + stats.Events + stats.Comments; total > 0 {
			c.log.Info("purged soft-deleted rows",
				zap.Int64("users", stats.Users),
				zap.Int64("events", stats.Events),
				zap.Int64("comments", stats.Comments))
		}

		if c.audit != nil {
			if _, err := c.audit.CleanupOlderThan(ctx, c.auditRetention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all maintenance routines sequentially. Used in tests and
// during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if _, err := CompleteElapsedEvents(ctx, c.db, c.now()); err != nil {
		errs = multierr.Append(errs, err)
	}

	cutoff := c.now().Add(-c.purgeRetention)
	if _, err := PurgeSoftDeleted(ctx, c.db, cutoff); err != nil {
		errs = multierr.Append(errs, err)
	}

	if c.audit != nil {
		if _, err := c.audit.CleanupOlderThan(ctx, c.auditRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// CompleteElapsedEvents marks published events whose date has passed as
// completed and reports how many rows were updated.
func CompleteElapsedEvents(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("complete events: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("status = ? AND date < ? AND is_deleted = ?", models.EventStatusPublished, now, false).
		Update("status", models.EventStatusCompleted)
	if result.Error != nil {
		return 0, fmt.Errorf("complete events: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeStats captures the number of rows removed per table during a purge.
type PurgeStats struct {
	Users    int64
	Events   int64
	Comments int64
}

// PurgeSoftDeleted physically removes rows that were soft-deleted before the
// cutoff, along with their dependent rows.
func PurgeSoftDeleted(ctx context.Context, db *gorm.DB, cutoff time.Time) (PurgeStats, error) {
	if db == nil {
		return PurgeStats{}, errors.New("purge: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := PurgeStats{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := func(model any) *gorm.DB {
			return tx.Model(model).Select("id").
				Where("is_deleted = ? AND deleted_at < ?", true, cutoff)
		}

		eventIDs := expired(&models.Event{})
		for _, dependent := range []any{
			&models.EventParticipant{},
			&models.EventInvitation{},
			&models.EventPhoto{},
			&models.EventComment{},
		} {
			if err := tx.Where("event_id IN (?)", eventIDs).Delete(dependent).Error; err != nil {
				return fmt.Errorf("purge: event dependents: %w", err)
			}
		}
		if err := tx.Where("event_id IN (?)", eventIDs).Delete(&models.EventCategory{}).Error; err != nil {
			return fmt.Errorf("purge: event categories: %w", err)
		}

		result := tx.Where("is_deleted = ? AND deleted_at < ?", true, cutoff).Delete(&models.Event{})
		if result.Error != nil {
			return fmt.Errorf("purge: events: %w", result.Error)
		}
		stats.Events = result.RowsAffected

		// Orphaned replies of purged comments go with their parent thread.
		result = tx.Where("is_deleted = ? AND deleted_at < ?", true, cutoff).Delete(&models.EventComment{})
		if result.Error != nil {
			return fmt.Errorf("purge: comments: %w", result.Error)
		}
		stats.Comments = result.RowsAffected

		userIDs := expired(&models.User{})
		if err := tx.Where("sender_id IN (?) OR receiver_id IN (?)", userIDs, userIDs).
			Delete(&models.Friendship{}).Error; err != nil {
			return fmt.Errorf("purge: friendships: %w", err)
		}

		// Audit entries outlive the account; detach instead of deleting.
		if err := tx.Model(&models.AuditLog{}).
			Where("user_id IN (?)", userIDs).
			Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("purge: audit references: %w", err)
		}

		result = tx.Where("is_deleted = ? AND deleted_at < ?", true, cutoff).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("purge: users: %w", result.Error)
		}
		stats.Users = result.RowsAffected

		return nil
	})
	if err != nil {
		return PurgeStats{}, err
	}

	return stats, nil
}
