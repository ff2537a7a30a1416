// Package memstore is an in-memory implementation of the store interfaces.
// It mirrors the conditional-update semantics of the Mongo implementation
// (sold transition, read-set add, counter increment) so component tests can
// exercise race behavior without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type Stores struct {
	Properties    *PropertyStore
	Owners        *OwnerStore
	Transactions  *TransactionStore
	Reviews       *ReviewStore
	Feedback      *FeedbackStore
	Notifications *NotificationStore
	Users         *UserStore
	Sequences     *SequenceStore
}

func New() *Stores {
	return &Stores{
		Properties:    &PropertyStore{byID: map[primitive.ObjectID]*models.Property{}},
		Owners:        &OwnerStore{byID: map[primitive.ObjectID]*models.Owner{}},
		Transactions:  &TransactionStore{byID: map[primitive.ObjectID]*models.Transaction{}},
		Reviews:       &ReviewStore{},
		Feedback:      &FeedbackStore{byID: map[primitive.ObjectID]*models.PendingFeedback{}},
		Notifications: &NotificationStore{byID: map[primitive.ObjectID]*models.Notification{}},
		Users:         &UserStore{},
		Sequences:     &SequenceStore{counters: map[string]int64{}},
	}
}

var (
	_ store.PropertyStore     = (*PropertyStore)(nil)
	_ store.OwnerStore        = (*OwnerStore)(nil)
	_ store.TransactionStore  = (*TransactionStore)(nil)
	_ store.ReviewStore       = (*ReviewStore)(nil)
	_ store.FeedbackStore     = (*FeedbackStore)(nil)
	_ store.NotificationStore = (*NotificationStore)(nil)
	_ store.UserStore         = (*UserStore)(nil)
	_ store.SequenceStore     = (*SequenceStore)(nil)
)

type PropertyStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Property
}

func (s *PropertyStore) Insert(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.PropId = p.ID.Hex()
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *PropertyStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PropertyStore) List(_ context.Context, f store.PropertyFilter) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Property
	for _, p := range s.byID {
		if f.OwnerID != nil && p.OwnerID != *f.OwnerID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
			continue
		}
		if f.City != "" && p.City != f.City {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *PropertyStore) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title, _ = v.(string)
		case "type":
			p.Type, _ = v.(string)
		case "status":
			switch sv := v.(type) {
			case models.PropertyStatus:
				p.Status = sv
			case string:
				p.Status = models.PropertyStatus(sv)
			}
		case "price":
			if n, ok := v.(int64); ok {
				p.Price = n
			}
		case "rentPrice":
			if n, ok := v.(int64); ok {
				p.RentPrice = n
			}
		case "city":
			p.City, _ = v.(string)
		case "state":
			p.State, _ = v.(string)
		}
	}
	return nil
}

func (s *PropertyStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *PropertyStore) MarkSold(_ context.Context, id primitive.ObjectID, buyer, transactionID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	if p.Status != models.StatusSale && p.Status != models.StatusBoth {
		return false, nil
	}
	p.Status = models.StatusSold
	p.SoldTo = buyer
	p.SoldTransactionID = transactionID
	soldAt := at
	p.SoldAt = &soldAt
	return true, nil
}

func (s *PropertyStore) CountsByOwner(_ context.Context, ownerID primitive.ObjectID) (store.PropertyCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c store.PropertyCounts
	for _, p := range s.byID {
		if p.OwnerID != ownerID {
			continue
		}
		c.Owned++
		switch p.Status {
		case models.StatusRent:
			c.RentEligible++
		case models.StatusSale:
			c.SaleEligible++
		case models.StatusBoth:
			c.RentEligible++
			c.SaleEligible++
		case models.StatusSold:
			c.Sold++
		}
	}
	return c, nil
}

func containsStatus(statuses []models.PropertyStatus, s models.PropertyStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

type OwnerStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Owner
}

func (s *OwnerStore) Insert(_ context.Context, o *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	s.byID[o.ID] = &cp
	return nil
}

func (s *OwnerStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *OwnerStore) List(_ context.Context, limit int64) ([]models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Owner
	for _, o := range s.byID {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *OwnerStore) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			o.Name, _ = v.(string)
		case "phone":
			o.Phone, _ = v.(string)
		case "email":
			o.Email, _ = v.(string)
		case "address":
			o.Address, _ = v.(string)
		}
	}
	return nil
}

func (s *OwnerStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *OwnerStore) UpdateStats(_ context.Context, id primitive.ObjectID, stats models.OwnerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Stats = stats
	return nil
}

type TransactionStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Transaction
}

func (s *TransactionStore) Insert(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *TransactionStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *TransactionStore) List(_ context.Context, limit int64) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TransactionStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type ReviewStore struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (s *ReviewStore) Insert(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.reviews = append(s.reviews, *r)
	return nil
}

func (s *ReviewStore) Exists(_ context.Context, propertyID primitive.ObjectID, reviewerPhone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.PropertyID == propertyID && r.ReviewerPhone == reviewerPhone {
			return true, nil
		}
	}
	return false, nil
}

func (s *ReviewStore) ListByProperty(_ context.Context, propertyID primitive.ObjectID) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Review
	for _, r := range s.reviews {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	return out, nil
}

type FeedbackStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.PendingFeedback
}

func (s *FeedbackStore) Insert(_ context.Context, f *models.PendingFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	cp := *f
	s.byID[f.ID] = &cp
	return nil
}

func (s *FeedbackStore) FindPending(_ context.Context, propertyID primitive.ObjectID, payerPhone string) (*models.PendingFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.byID {
		if f.PropertyID == propertyID && f.PayerPhone == payerPhone && f.Status == models.FeedbackPending {
			cp := *f
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *FeedbackStore) Touch(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	f.UpdatedAt = at
	return nil
}

func (s *FeedbackStore) Complete(_ context.Context, propertyID primitive.ObjectID, payerPhone string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.byID {
		if f.PropertyID == propertyID && f.PayerPhone == payerPhone && f.Status == models.FeedbackPending {
			f.Status = models.FeedbackCompleted
			f.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (s *FeedbackStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *FeedbackStore) ListPending(_ context.Context) ([]models.PendingFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PendingFeedback
	for _, f := range s.byID {
		if f.Status == models.FeedbackPending {
			out = append(out, *f)
		}
	}
	return out, nil
}

type NotificationStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Notification
}

func (s *NotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	cp := copyNotification(n)
	s.byID[n.ID] = cp
	return nil
}

func (s *NotificationStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyNotification(n), nil
}

func (s *NotificationStore) MarkAdminRead(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.Target != models.TargetAdmin || n.Admin == nil {
		return store.ErrNotFound
	}
	if !n.Admin.IsRead {
		n.Admin.IsRead = true
		readAt := at
		n.Admin.ReadAt = &readAt
	}
	return nil
}

func (s *NotificationStore) MarkMobileRead(_ context.Context, id primitive.ObjectID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.Target != models.TargetMobile || n.Mobile == nil {
		return store.ErrNotFound
	}
	for _, r := range n.Mobile.ReadBy {
		if r == readerID {
			return nil
		}
	}
	n.Mobile.ReadBy = append(n.Mobile.ReadBy, readerID)
	n.Mobile.TotalReads++
	return nil
}

func (s *NotificationStore) Hide(_ context.Context, id primitive.ObjectID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.Target != models.TargetMobile || n.Mobile == nil {
		return store.ErrNotFound
	}
	for _, r := range n.Mobile.HiddenBy {
		if r == readerID {
			return nil
		}
	}
	n.Mobile.HiddenBy = append(n.Mobile.HiddenBy, readerID)
	return nil
}

func (s *NotificationStore) ListAdmin(_ context.Context, since time.Time, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.byID {
		if n.Target != models.TargetAdmin || n.CreatedAt.Before(since) {
			continue
		}
		out = append(out, *copyNotification(n))
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Admin.IsRead, out[j].Admin.IsRead
		if ri != rj {
			return !ri
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) ListMobile(_ context.Context, readerID string, since time.Time) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.byID {
		if n.Target != models.TargetMobile || n.CreatedAt.Before(since) {
			continue
		}
		if n.HiddenFor(readerID) {
			continue
		}
		out = append(out, *copyNotification(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *NotificationStore) CountAdminUnread(_ context.Context, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.byID {
		if n.Target == models.TargetAdmin && n.Admin != nil && !n.Admin.IsRead && !n.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) CountMobileUnread(_ context.Context, readerID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.byID {
		if n.Target != models.TargetMobile || n.CreatedAt.Before(since) {
			continue
		}
		if n.ReadBy(readerID) || n.HiddenFor(readerID) {
			continue
		}
		count++
	}
	return count, nil
}

func copyNotification(n *models.Notification) *models.Notification {
	cp := *n
	if n.Admin != nil {
		admin := *n.Admin
		cp.Admin = &admin
	}
	if n.Mobile != nil {
		mobile := *n.Mobile
		mobile.ReadBy = append([]string(nil), n.Mobile.ReadBy...)
		mobile.HiddenBy = append([]string(nil), n.Mobile.HiddenBy...)
		cp.Mobile = &mobile
	}
	return &cp
}

type UserStore struct {
	mu    sync.Mutex
	users []models.User
}

func (s *UserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *UserStore) GetByUserID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == userID {
			cp := u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			cp := u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

type SequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (s *SequenceStore) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}
