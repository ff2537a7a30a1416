// Package finalize orchestrates the work triggered by one completed payment:
// availability check, transaction persistence, sold transition, owner stat
// recalculation, feedback scheduling, and notification fan-out.
//
// The transaction write is the durability commit point. Failures before it
// abort the request with no side effects; failures after it are caught per
// step, logged, and surfaced as advisory flags on the response. Every
// post-persistence step is independently re-runnable, so the workflow rolls
// forward instead of compensating.
package finalize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/availability"
	"github.com/harborview/property_market_system/feedback"
	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/realtime"
	"github.com/harborview/property_market_system/sequence"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store"
)

var (
	ErrInvalidPurchaseType = errors.New("purchase type must be buy or rent")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidPropertyID   = errors.New("invalid property id")
	ErrMissingPayer        = errors.New("payer name and phone are required")
)

type Step string

const (
	StepValidated           Step = "validated"
	StepPropertyChecked     Step = "property_checked"
	StepPersisted           Step = "persisted"
	StepProfileChecked      Step = "profile_checked"
	StepAvailabilityApplied Step = "availability_applied"
	StepStatsRecalculated   Step = "stats_recalculated"
	StepFeedbackScheduled   Step = "feedback_scheduled"
	StepNotified            Step = "notified"
)

// StepResult records one step's outcome so partial failure is diagnosable
// as a whole rather than collapsed into a single boolean.
type StepResult struct {
	Step Step   `json:"step"`
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}

// Request is the inbound payment-completed event.
type Request struct {
	PaymentReference string              `json:"paymentReference"`
	PayerName        string              `json:"payerName"`
	PayerPhone       string              `json:"payerPhone"`
	PayerEmail       string              `json:"payerEmail,omitempty"`
	PayerPhoto       string              `json:"payerPhoto,omitempty"`
	Amount           int64               `json:"amount"`
	PurchaseType     models.PurchaseType `json:"purchaseType"`
	PropertyID       string              `json:"propertyId"`
	OwnerName        string              `json:"ownerName,omitempty"`
}

// Result is returned to the caller once the transaction is durable. The
// advisory flags report which downstream steps succeeded; the caller can
// warn on them without failing the request.
type Result struct {
	Transaction          *models.Transaction `json:"transaction"`
	ProfileFound         bool                `json:"profileFound"`
	PropertyMarkedAsSold bool                `json:"propertyMarkedAsSold"`
	OwnerStatsUpdated    bool                `json:"ownerStatsUpdated"`
	FeedbackScheduled    bool                `json:"feedbackScheduled"`
	Notified             bool                `json:"notified"`
	Steps                []StepResult        `json:"steps"`
}

type Finalizer struct {
	transactions store.TransactionStore
	properties   store.PropertyStore
	users        store.UserStore
	allocator    *sequence.Allocator
	guard        *availability.Guard
	recalc       *stats.Recalculator
	scheduler    *feedback.Scheduler
	notifier     *notify.Service
	dispatcher   *realtime.Dispatcher
	now          func() time.Time
}

func New(
	transactions store.TransactionStore,
	properties store.PropertyStore,
	users store.UserStore,
	allocator *sequence.Allocator,
	guard *availability.Guard,
	recalc *stats.Recalculator,
	scheduler *feedback.Scheduler,
	notifier *notify.Service,
	dispatcher *realtime.Dispatcher,
) *Finalizer {
	return &Finalizer{
		transactions: transactions,
		properties:   properties,
		users:        users,
		allocator:    allocator,
		guard:        guard,
		recalc:       recalc,
		scheduler:    scheduler,
		notifier:     notifier,
		dispatcher:   dispatcher,
		now:          time.Now,
	}
}

// Finalize runs the state machine for one completed payment.
func (f *Finalizer) Finalize(ctx context.Context, req Request) (*Result, error) {
	// Validated: fatal, nothing written yet.
	if err := validate(req); err != nil {
		return nil, err
	}
	propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		return nil, ErrInvalidPropertyID
	}

	// PropertyChecked: availability consulted before any write. The check is
	// advisory for buy; the authoritative claim happens at the sold
	// transition below.
	property, err := f.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("loading property %s: %w", req.PropertyID, err)
	}
	if err := f.guard.Check(property, req.PurchaseType); err != nil {
		return nil, err
	}

	// Persisted: the durability commit point. No ID, no record.
	transactionID, err := f.allocator.NextTransactionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating transaction id: %w", err)
	}
	paymentRef := req.PaymentReference
	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}
	txn := &models.Transaction{
		TransactionID:    transactionID,
		PaymentReference: paymentRef,
		PayerName:        req.PayerName,
		PayerPhone:       req.PayerPhone,
		PayerEmail:       req.PayerEmail,
		PayerPhoto:       req.PayerPhoto,
		Amount:           req.Amount,
		PurchaseType:     req.PurchaseType,
		PropertyID:       property.ID,
		OwnerID:          property.OwnerID,
		OwnerName:        req.OwnerName,
		Status:           models.TransactionCompleted,
		CreatedAt:        f.now(),
	}
	if err := f.transactions.Insert(ctx, txn); err != nil {
		return nil, fmt.Errorf("persisting transaction: %w", err)
	}

	result := &Result{Transaction: txn}
	result.record(StepValidated, nil)
	result.record(StepPropertyChecked, nil)
	result.record(StepPersisted, nil)

	// ProfileChecked: whether the payer has a registered account, keyed by
	// phone with an email fallback. Purely advisory; a guest purchase is
	// still a valid purchase.
	found, profileErr := f.lookupProfile(ctx, req)
	if profileErr != nil {
		log.Printf("finalize: payer profile lookup failed for txn %s: %v", txn.TransactionID, profileErr)
		result.record(StepProfileChecked, profileErr)
	} else {
		result.ProfileFound = found
		result.record(StepProfileChecked, nil)
	}

	// AvailabilityApplied (buy only): the conditional sold transition. A
	// concurrent buyer may have won between the check and here; the loser's
	// transaction record is removed and the conflict surfaced, so exactly
	// one buy ever succeeds per property.
	soldAt := f.now()
	if req.PurchaseType == models.PurchaseBuy {
		if err := f.guard.MarkSold(ctx, property.ID, req.PayerName, txn.TransactionID, soldAt); err != nil {
			if errors.Is(err, availability.ErrAlreadySold) {
				if delErr := f.transactions.Delete(ctx, txn.ID); delErr != nil {
					log.Printf("finalize: removing transaction %s after lost sold race: %v", txn.TransactionID, delErr)
				}
				return nil, err
			}
			// Store trouble after persistence: keep the transaction, report.
			log.Printf("finalize: sold transition failed for property %s (txn %s): %v", property.PropId, txn.TransactionID, err)
			result.record(StepAvailabilityApplied, err)
		} else {
			result.PropertyMarkedAsSold = true
			result.record(StepAvailabilityApplied, nil)
		}
	}

	// StatsRecalculated: stale counters are a correctness bug, not a crash.
	if _, err := f.recalc.Recalculate(ctx, property.OwnerID); err != nil {
		log.Printf("finalize: owner stats NOT updated for owner %s after txn %s: %v", property.OwnerID.Hex(), txn.TransactionID, err)
		result.record(StepStatsRecalculated, err)
	} else {
		result.OwnerStatsUpdated = true
		result.record(StepStatsRecalculated, nil)
	}

	// FeedbackScheduled: never fatal.
	if _, err := f.scheduler.Schedule(ctx, txn); err != nil {
		log.Printf("finalize: feedback scheduling failed for txn %s: %v", txn.TransactionID, err)
		result.record(StepFeedbackScheduled, err)
	} else {
		result.FeedbackScheduled = true
		result.record(StepFeedbackScheduled, nil)
	}

	// Notified: fan out the transaction event, and for a completed buy a
	// distinct property-sold event, then the realtime hints.
	notifyErr := f.sendNotifications(ctx, req, txn, property, result.PropertyMarkedAsSold, soldAt)
	if notifyErr != nil {
		log.Printf("finalize: notification fan-out incomplete for txn %s: %v", txn.TransactionID, notifyErr)
		result.record(StepNotified, notifyErr)
	} else {
		result.Notified = true
		result.record(StepNotified, nil)
	}

	return result, nil
}

func (f *Finalizer) lookupProfile(ctx context.Context, req Request) (bool, error) {
	_, err := f.users.GetByPhone(ctx, req.PayerPhone)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if req.PayerEmail == "" {
		return false, nil
	}
	_, err = f.users.GetByEmail(ctx, req.PayerEmail)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (f *Finalizer) sendNotifications(ctx context.Context, req Request, txn *models.Transaction, property *models.Property, sold bool, soldAt time.Time) error {
	_, err := f.notifier.Send(ctx, notify.Event{
		Type:          models.EventTransactionCompleted,
		Subtype:       property.Type,
		Message:       fmt.Sprintf("Transaction %s: %s %s for %d by %s", txn.TransactionID, req.PurchaseType, property.Title, req.Amount, req.PayerName),
		PropertyID:    property.ID,
		TransactionID: txn.TransactionID,
		OwnerID:       property.OwnerID,
	})
	if err != nil {
		return err
	}

	if sold {
		_, err = f.notifier.Send(ctx, notify.Event{
			Type:          models.EventPropertySold,
			Subtype:       property.Type,
			Message:       fmt.Sprintf("Property %s sold to %s (txn %s)", property.Title, req.PayerName, txn.TransactionID),
			PropertyID:    property.ID,
			TransactionID: txn.TransactionID,
			OwnerID:       property.OwnerID,
		})
		if err != nil {
			return err
		}
	}

	if f.dispatcher != nil {
		f.dispatcher.Dispatch(realtime.ChannelAnalytics, map[string]interface{}{
			"ownerId": property.OwnerID.Hex(),
		})
		if sold {
			f.dispatcher.Dispatch(realtime.ChannelPropertySold, map[string]interface{}{
				"propertyId":    property.ID.Hex(),
				"buyerName":     req.PayerName,
				"soldAt":        soldAt,
				"transactionId": txn.TransactionID,
			})
		}
	}
	return nil
}

func validate(req Request) error {
	if !models.ValidPurchaseType(req.PurchaseType) {
		return ErrInvalidPurchaseType
	}
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	if req.PayerName == "" || req.PayerPhone == "" {
		return ErrMissingPayer
	}
	return nil
}

func (r *Result) record(step Step, err error) {
	res := StepResult{Step: step, OK: err == nil}
	if err != nil {
		res.Err = err.Error()
	}
	r.Steps = append(r.Steps, res)
}
