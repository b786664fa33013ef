// Package worker holds background jobs that run beside the portal.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/pkg/logger"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
)

// Notifier posts the bill message for a bill.
type Notifier interface {
	NotifyBill(ctx context.Context, bill *model.Bill) error
}

type BillReconcilerConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	GracePeriod   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func (c BillReconcilerConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.New("BatchSize must be greater than 0")
	case c.PollInterval <= 0:
		return errors.New("PollInterval must be greater than 0")
	case c.GracePeriod < 0:
		return errors.New("GracePeriod must not be negative")
	case c.RetryAttempts <= 0:
		return errors.New("RetryAttempts must be greater than 0")
	}
	return nil
}

// BillReconciler sends the bill message for bills whose creation succeeded
// but whose notification was lost. Delivery is at-least-once: a bill can be
// notified twice if a message insert succeeds but is not yet visible on the
// next poll.
type BillReconciler struct {
	bills    repository.BillRepository
	notifier Notifier
	config   BillReconcilerConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewBillReconciler(
	bills repository.BillRepository,
	notifier Notifier,
	config BillReconcilerConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*BillReconciler, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid reconciler config: %w", err)
	}
	return &BillReconciler{
		bills:    bills,
		notifier: notifier,
		config:   config,
		logger:   logger.WithFields(map[string]interface{}{"worker": "bill_reconciler"}),
		metrics:  metrics,
		now:      time.Now,
	}, nil
}

func (r *BillReconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.logger.Info("Starting bill reconciler")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down bill reconciler")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error(err, "Failed to reconcile bills")
			}
		}
	}
}

// RunOnce notifies one batch and returns how many bills were notified.
func (r *BillReconciler) RunOnce(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(r.metrics.ReconcilerLatency)
	defer timer.ObserveDuration()
	r.metrics.ReconcilerRuns.Inc()

	cutoff := r.now().Add(-r.config.GracePeriod)
	bills, err := r.bills.ListUnnotified(ctx, cutoff, r.config.BatchSize)
	if err != nil {
		r.metrics.DatabaseOperations.WithLabelValues("list_unnotified_bills", "error").Inc()
		return 0, fmt.Errorf("failed to list unnotified bills: %w", err)
	}
	r.metrics.DatabaseOperations.WithLabelValues("list_unnotified_bills", "success").Inc()

	notified := 0
	for _, bill := range bills {
		err := retry(ctx, r.config.RetryAttempts, r.config.RetryDelay, func() error {
			return r.notifier.NotifyBill(ctx, bill)
		})
		if err != nil {
			r.metrics.ReconcilerFailures.Inc()
			r.logger.Error(err, "Failed to notify bill", "bill_id", bill.ID.String())
			continue
		}
		r.metrics.ReconcilerNotified.Inc()
		notified++
	}

	if notified > 0 {
		r.logger.Info("Reconciled bill notifications", "count", notified)
	}
	return notified, nil
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
