// Package sweep implements the bulk-deletion executor. It consumes a finalized
// selection record, walks the chosen categories strictly in order, deletes the
// listings that pass the inclusion filters, and aggregates per-item failures
// into a report instead of aborting the batch.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lotsweep/internal/common"
	"lotsweep/internal/marketplace"
	"lotsweep/internal/model"
	"lotsweep/internal/session"
)

// Config holds the inclusion filters and pacing delays for a deletion pass.
//
// The two delays are an external contract: the marketplace has implicit rate
// limits, and the sequential fixed-delay pacing is what keeps the account from
// being throttled or banned. Do not parallelize the pass.
type Config struct {
	IncludeActive   bool
	IncludeInactive bool
	ListingDelay    time.Duration
	CategoryDelay   time.Duration
}

// DefaultConfig returns the default filters and pacing.
func DefaultConfig() Config {
	return Config{
		IncludeActive:   false,
		IncludeInactive: true,
		ListingDelay:    700 * time.Millisecond,
		CategoryDelay:   1500 * time.Millisecond,
	}
}

// Executor runs bulk deletion passes over finalized selection records.
type Executor struct {
	store  *session.Store
	client marketplace.Client
	sleep  func(ctx context.Context, d time.Duration) error
	config Config

	// OnAttempt, when set, is called after every delete attempt with the
	// listing and the attempt's error (nil on success). Used by the CLI to
	// drive its progress display.
	OnAttempt func(listing model.Listing, err error)
}

// New creates an executor with the given dependencies.
func New(store *session.Store, client marketplace.Client, config Config) *Executor {
	return &Executor{
		store:  store,
		client: client,
		config: config,
		sleep:  sleepCtx,
	}
}

// Execute runs one deletion pass for the record.
//
// Categories are processed in the chosen set's insertion order and listings in
// marketplace order. Per-item failures are collected, never fatal. A failed
// listing fetch for one category is recorded as a category-level failure and
// the pass continues with the remaining categories. The record is deleted
// unconditionally once every chosen category has been processed.
//
// An empty chosen set is rejected with ErrEmptySelection before any external
// call; an unknown record ID fails with ErrRecordNotFound. Context
// cancellation aborts the pass between external calls and leaves the record to
// TTL eviction.
func (e *Executor) Execute(ctx context.Context, recordID int64) (*model.DeletionReport, error) {
	rec, ok := e.store.Get(recordID)
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	if len(rec.Chosen) == 0 {
		return nil, common.ErrEmptySelection
	}

	slog.Info("starting deletion pass",
		"record_id", recordID,
		"categories", len(rec.Chosen))

	report := &model.DeletionReport{}
	for _, categoryID := range rec.Chosen {
		if err := e.sweepCategory(ctx, categoryID, report); err != nil {
			return nil, err
		}
		if err := e.sleep(ctx, e.config.CategoryDelay); err != nil {
			return nil, err
		}
	}

	e.store.Delete(recordID)

	slog.Info("deletion pass finished",
		"record_id", recordID,
		"deleted", report.SuccessCount,
		"errors", report.ErrorCount)
	return report, nil
}

// sweepCategory deletes one category's listings into the report. The only
// errors it returns are cancellation; everything else is aggregated.
func (e *Executor) sweepCategory(ctx context.Context, categoryID int64, report *model.DeletionReport) error {
	listings, err := e.client.GetListings(ctx, categoryID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("listing fetch failed, skipping category",
			"category_id", categoryID,
			"error", err)
		report.ErrorCount++
		report.Failures = append(report.Failures, model.DeleteFailure{
			CategoryID: categoryID,
			Message:    fmt.Sprintf("listing fetch failed: %v", err),
		})
		return nil
	}

	for _, listing := range listings {
		if !e.included(listing) {
			continue
		}

		err := e.client.DeleteListing(ctx, listing.ID)
		if e.OnAttempt != nil {
			e.OnAttempt(listing, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.ErrorCount++
			report.Failures = append(report.Failures, model.DeleteFailure{
				ListingID:  listing.ID,
				CategoryID: categoryID,
				Message:    err.Error(),
			})
			slog.Warn("delete failed",
				"listing_id", listing.ID,
				"category_id", categoryID,
				"error", err)
			continue
		}

		report.SuccessCount++
		if err := e.sleep(ctx, e.config.ListingDelay); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) included(listing model.Listing) bool {
	if listing.Active() {
		return e.config.IncludeActive
	}
	return e.config.IncludeInactive
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
