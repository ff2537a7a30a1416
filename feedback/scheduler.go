// Package feedback maintains the pending-review obligations created by
// completed transactions. At most one pending record exists per
// (property, payer phone) pair.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeRefreshed Outcome = "refreshed"
	OutcomeSkipped   Outcome = "skipped"
)

type Scheduler struct {
	reviews store.ReviewStore
	pending store.FeedbackStore
	now     func() time.Time
}

func NewScheduler(reviews store.ReviewStore, pending store.FeedbackStore) *Scheduler {
	return &Scheduler{reviews: reviews, pending: pending, now: time.Now}
}

// Schedule registers the payer's obligation to review the property. It is
// idempotent: a completed review skips, an existing pending record is only
// refreshed, otherwise a new pending record is created.
func (s *Scheduler) Schedule(ctx context.Context, txn *models.Transaction) (Outcome, error) {
	reviewed, err := s.reviews.Exists(ctx, txn.PropertyID, txn.PayerPhone)
	if err != nil {
		return "", fmt.Errorf("checking existing review: %w", err)
	}
	if reviewed {
		return OutcomeSkipped, nil
	}

	existing, err := s.pending.FindPending(ctx, txn.PropertyID, txn.PayerPhone)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("checking pending feedback: %w", err)
	}
	if existing != nil {
		if err := s.pending.Touch(ctx, existing.ID, s.now()); err != nil {
			return "", fmt.Errorf("refreshing pending feedback: %w", err)
		}
		return OutcomeRefreshed, nil
	}

	now := s.now()
	record := &models.PendingFeedback{
		PropertyID:    txn.PropertyID,
		PayerPhone:    txn.PayerPhone,
		PayerName:     txn.PayerName,
		TransactionID: txn.TransactionID,
		Status:        models.FeedbackPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.pending.Insert(ctx, record); err != nil {
		return "", fmt.Errorf("creating pending feedback: %w", err)
	}
	return OutcomeCreated, nil
}

// CompleteForReview transitions the matching pending record to completed
// when a review comes in. Reviews without a pending record are fine; the
// obligation may have been cancelled.
func (s *Scheduler) CompleteForReview(ctx context.Context, review *models.Review) (bool, error) {
	return s.pending.Complete(ctx, review.PropertyID, review.ReviewerPhone, s.now())
}

// Cancel removes a pending obligation outright.
func (s *Scheduler) Cancel(ctx context.Context, id primitive.ObjectID) error {
	return s.pending.Delete(ctx, id)
}
