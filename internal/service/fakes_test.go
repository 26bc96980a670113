package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"staynest/internal/domain"
	"staynest/internal/models"
	"staynest/pkg/gateway"
)

// In-memory store fakes backing the service tests. The wallet fake is
// mutex-guarded so concurrency tests can hammer Reserve from many
// goroutines.

type fakeUserStore struct {
	users map[uint]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if u.ID == 0 {
		u.ID = uint(len(s.users) + 1)
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

type fakeListingStore struct {
	listings map[uint]*models.Listing
	blocked  []models.BlockedDate
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[uint]*models.Listing)}
}

func (s *fakeListingStore) add(l *models.Listing) *models.Listing {
	if l.ID == 0 {
		l.ID = uint(len(s.listings) + 1)
	}
	s.listings[l.ID] = l
	return l
}

func (s *fakeListingStore) GetByID(_ context.Context, id uint) (*models.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return l, nil
}

func (s *fakeListingStore) ListBlockedOverlapping(_ context.Context, listingID uint, from, to time.Time) ([]models.BlockedDate, error) {
	var out []models.BlockedDate
	for _, b := range s.blocked {
		if b.ListingID == listingID && b.StartDate.Before(to) && b.EndDate.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	lockMu   sync.Mutex // stands in for the per-listing row lock
	bookings map[uint]*models.Booking
	nextID   uint
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uint]*models.Booking), nextID: 1}
}

func (s *fakeBookingStore) add(b *models.Booking) *models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID
		s.nextID++
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return b
}

func (s *fakeBookingStore) Create(_ context.Context, b *models.Booking) error {
	s.add(b)
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookingStore) Update(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeBookingStore) ListConfirmedOverlapping(_ context.Context, listingID uint, checkIn, checkOut time.Time, excludeID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ListingID != listingID || b.Status != domain.BookingConfirmed || b.ID == excludeID {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// WithListingLock serializes callers the way the SELECT ... FOR UPDATE row
// lock does in production.
func (s *fakeBookingStore) WithListingLock(ctx context.Context, _ uint, fn func(ctx context.Context) error) error {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	return fn(ctx)
}

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[uint]*models.Payment
	nextID   uint
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[uint]*models.Payment), nextID: 1}
}

func (s *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *fakePaymentStore) GetByIntentionID(_ context.Context, intentionID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.GatewayIntentionID == intentionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (s *fakePaymentStore) GetByBookingAndStatus(_ context.Context, bookingID uint, status string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.BookingID == bookingID && p.Status == status {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (s *fakePaymentStore) Update(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

type walletTx struct {
	amountCents int64
	txType      string
	reference   string
}

type fakeWalletStore struct {
	mu       sync.Mutex
	balances map[uint]int64
	txs      map[uint][]walletTx
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{
		balances: make(map[uint]int64),
		txs:      make(map[uint][]walletTx),
	}
}

func (s *fakeWalletStore) setBalance(hostID uint, cents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[hostID] = cents
}

func (s *fakeWalletStore) balance(hostID uint) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[hostID]
}

func (s *fakeWalletStore) GetOrCreate(_ context.Context, hostID uint) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[hostID]; !ok {
		s.balances[hostID] = 0
	}
	return &models.Wallet{HostID: hostID, BalanceCents: s.balances[hostID], Currency: "USD"}, nil
}

func (s *fakeWalletStore) Credit(_ context.Context, hostID uint, amountCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[hostID] += amountCents
	return nil
}

// Reserve mirrors the conditional UPDATE: decrement only when the balance
// covers the amount, atomically.
func (s *fakeWalletStore) Reserve(_ context.Context, hostID uint, amountCents int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[hostID] < amountCents {
		return false, nil
	}
	s.balances[hostID] -= amountCents
	return true, nil
}

func (s *fakeWalletStore) Reverse(_ context.Context, hostID uint, amountCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[hostID] += amountCents
	return nil
}

func (s *fakeWalletStore) RecordTransaction(_ context.Context, hostID uint, amountCents int64, txType, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[hostID] = append(s.txs[hostID], walletTx{amountCents: amountCents, txType: txType, reference: reference})
	return nil
}

type fakePayoutStore struct {
	mu      sync.Mutex
	payouts map[uint]*models.Payout
	events  []models.PayoutEvent
	nextID  uint
}

func newFakePayoutStore() *fakePayoutStore {
	return &fakePayoutStore{payouts: make(map[uint]*models.Payout), nextID: 1}
}

func (s *fakePayoutStore) Create(_ context.Context, p *models.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	cp := *p
	s.payouts[p.ID] = &cp
	return nil
}

func (s *fakePayoutStore) GetByGatewayTxnID(_ context.Context, txnID string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payouts {
		if p.GatewayTxnID != nil && *p.GatewayTxnID == txnID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPayoutNotFound
}

// The fake transactor serializes whole transactions, so the locked read only
// needs to behave like the plain one.
func (s *fakePayoutStore) GetByGatewayTxnIDLocked(ctx context.Context, txnID string) (*models.Payout, error) {
	return s.GetByGatewayTxnID(ctx, txnID)
}

func (s *fakePayoutStore) Update(_ context.Context, p *models.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[p.ID]; !ok {
		return domain.ErrPayoutNotFound
	}
	cp := *p
	s.payouts[p.ID] = &cp
	return nil
}

func (s *fakePayoutStore) AppendEvent(_ context.Context, e *models.PayoutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *fakePayoutStore) eventsFor(payoutID uint) []models.PayoutEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PayoutEvent
	for _, e := range s.events {
		if e.PayoutID == payoutID {
			out = append(out, e)
		}
	}
	return out
}

type sentNotification struct {
	userID uint
	typ    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(_ context.Context, userID uint, typ, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID: userID, typ: typ})
}

// fakeTx runs fn directly, holding a mutex for the duration so concurrent
// transactions serialize the way row-locked database transactions do. The
// fakes apply effects as they go.
type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type fakePaymentProvider struct {
	mu              sync.Mutex
	intentionCalls  int
	refundCalls     int
	refundedTxns    []string
	createErr       error
	refundErr       error
	nextIntentionID string
}

func (p *fakePaymentProvider) CreateIntention(_ context.Context, req gateway.IntentionRequest) (*gateway.IntentionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intentionCalls++
	if p.createErr != nil {
		return nil, p.createErr
	}
	id := p.nextIntentionID
	if id == "" {
		id = fmt.Sprintf("int-%d", p.intentionCalls)
	}
	return &gateway.IntentionResponse{
		IntentionID:  id,
		ClientSecret: "cs_test",
		CheckoutURL:  "https://checkout.test/" + id,
	}, nil
}

func (p *fakePaymentProvider) RefundTransaction(_ context.Context, transactionID string, _ int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refundCalls++
	if p.refundErr != nil {
		return p.refundErr
	}
	p.refundedTxns = append(p.refundedTxns, transactionID)
	return nil
}

type fakeDisbursementProvider struct {
	mu         sync.Mutex
	calls      int
	err        error
	nextTxnID  string
	nextStatus string
}

func (p *fakeDisbursementProvider) CreateDisbursement(_ context.Context, req gateway.DisbursementRequest) (*gateway.DisbursementResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	txn := p.nextTxnID
	if txn == "" {
		txn = fmt.Sprintf("disb-%d", p.calls)
	}
	status := p.nextStatus
	if status == "" {
		status = "pending"
	}
	return &gateway.DisbursementResponse{TransactionID: txn, Status: status}, nil
}
