package tests

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"sawari/internal/domain"
	"sawari/internal/redis"
	"sawari/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet // keyed by driver ID

	// Counters for verification
	CreateCallCount    int32
	UpdateCallCount    int32
	ForUpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error

	// MissReads makes the next N GetByDriverID calls report not found
	// even when the wallet exists, simulating a read racing an insert.
	MissReads int32
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

// AddWallet adds a wallet to the mock repository.
func (m *MockWalletRepository) AddWallet(wallet *domain.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.DriverID] = wallet
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.wallets[wallet.DriverID]; exists {
		return repository.ErrDuplicate
	}
	m.wallets[wallet.DriverID] = wallet
	return nil
}

func (m *MockWalletRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.Wallet, error) {
	if atomic.AddInt32(&m.MissReads, -1) >= 0 {
		return nil, repository.ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *wallet
	return &copy, nil
}

func (m *MockWalletRepository) GetByDriverIDForUpdate(ctx context.Context, driverID string) (*domain.Wallet, error) {
	atomic.AddInt32(&m.ForUpdateCallCount, 1)
	return m.GetByDriverID(ctx, driverID)
}

func (m *MockWalletRepository) Update(ctx context.Context, wallet *domain.Wallet) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[wallet.DriverID]; !ok {
		return repository.ErrNotFound
	}
	copy := *wallet
	m.wallets[wallet.DriverID] = &copy
	return nil
}

// GetWallet returns the stored wallet for test assertions.
func (m *MockWalletRepository) GetWallet(driverID string) *domain.Wallet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wallets[driverID]
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of the ledger.
// Entries are kept in insertion order; listings return them
// newest-first like the real repository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction

	// Rides to join into listings, keyed by ride ID.
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError error
}

// NewMockTransactionRepository creates a new mock ledger.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddTransaction seeds a ledger entry.
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, txn)
}

// AddRide seeds a ride for listing joins.
func (m *MockTransactionRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.IdempotencyKey != "" {
		for _, existing := range m.txns {
			if existing.IdempotencyKey == txn.IdempotencyKey {
				return repository.ErrDuplicate
			}
		}
	}
	copy := *txn
	m.txns = append(m.txns, &copy)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.ID == id {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.IdempotencyKey == key {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, nil // Unseen key, not an error.
}

func (m *MockTransactionRepository) ListByDriver(ctx context.Context, filter repository.TransactionFilter) ([]*domain.TransactionWithRide, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Transaction
	for i := len(m.txns) - 1; i >= 0; i-- {
		txn := m.txns[i]
		if txn.DriverID != filter.DriverID {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.Status != "" && txn.Status != filter.Status {
			continue
		}
		matched = append(matched, txn)
	}

	total := len(matched)
	if filter.Offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	result := make([]*domain.TransactionWithRide, 0, len(matched))
	for _, txn := range matched {
		item := &domain.TransactionWithRide{Transaction: *txn}
		if txn.RideID != "" {
			if ride, ok := m.rides[txn.RideID]; ok {
				item.Ride = ride.Summary()
			}
		}
		result = append(result, item)
	}
	return result, total, nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range m.txns {
		if txn.ID == id {
			txn.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// CountTransactions returns the number of ledger entries.
func (m *MockTransactionRepository) CountTransactions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txns)
}

// GetTransaction returns the entry by ID for assertions.
func (m *MockTransactionRepository) GetTransaction(id string) *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.ID == id {
			return txn
		}
	}
	return nil
}

// LatestTransaction returns the newest entry for assertions.
func (m *MockTransactionRepository) LatestTransaction() *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.txns) == 0 {
		return nil
	}
	return m.txns[len(m.txns)-1]
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings []*domain.Booking

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error

	// DuplicateCreates fails the next N Create calls with ErrDuplicate,
	// simulating confirmation code collisions.
	DuplicateCreates int32
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{}
}

// AddBooking seeds a booking.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, booking)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	if atomic.AddInt32(&m.DuplicateCreates, -1) >= 0 {
		return repository.ErrDuplicate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.ConfirmationCode == booking.ConfirmationCode {
			return repository.ErrDuplicate
		}
	}
	copy := *booking
	m.bookings = append(m.bookings, &copy)
	return nil
}

func (m *MockBookingRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.ID == id && b.UserID == userID {
			copy := *b
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Booking
	for i := len(m.bookings) - 1; i >= 0; i-- {
		b := m.bookings[i]
		if b.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		copy := *b
		matched = append(matched, &copy)
	}

	total := len(matched)
	if filter.Offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.bookings {
		if b.ID == booking.ID && b.UserID == booking.UserID {
			copy := *booking
			m.bookings[i] = &copy
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockBookingRepository) ConfirmedSeats(ctx context.Context, vehicleType domain.VehicleType, departure time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var seats []string
	for _, b := range m.bookings {
		if b.Status != domain.BookingStatusConfirmed {
			continue
		}
		if b.VehicleType != vehicleType || !b.Datetime.Equal(departure) {
			continue
		}
		seats = append(seats, b.Seats...)
	}
	return seats, nil
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// GetBooking returns the booking by ID for assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK REVIEW REPOSITORY
// ──────────────────────────────────────────────

// MockReviewRepository is a mock implementation of ReviewRepository.
// AverageRating is computed from the stored reviews the way the SQL
// aggregate does: mean rounded to one decimal place, 0 when empty.
type MockReviewRepository struct {
	mu      sync.RWMutex
	reviews []*domain.Review

	// Counters for verification
	CreateCallCount        int32
	AverageRatingCallCount int32

	// Error injection
	CreateError error
}

// NewMockReviewRepository creates a new mock review repository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{}
}

// AddReview seeds a review.
func (m *MockReviewRepository) AddReview(review *domain.Review) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, review)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *review
	m.reviews = append(m.reviews, &copy)
	return nil
}

func (m *MockReviewRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.ReviewWithRide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ReviewWithRide
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].DriverID == driverID {
			result = append(result, &domain.ReviewWithRide{Review: *m.reviews[i]})
		}
	}
	return result, nil
}

func (m *MockReviewRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.ReviewWithRide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ReviewWithRide
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].CustomerID == customerID {
			result = append(result, &domain.ReviewWithRide{Review: *m.reviews[i]})
		}
	}
	return result, nil
}

func (m *MockReviewRepository) AverageRating(ctx context.Context, driverID string) (float64, error) {
	atomic.AddInt32(&m.AverageRatingCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.DriverID == driverID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return math.Round(float64(sum)/float64(count)*10) / 10, nil
}

// CountReviews returns the number of stored reviews.
func (m *MockReviewRepository) CountReviews() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reviews)
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK SEAT LOCKER
// ──────────────────────────────────────────────

// MockSeatLocker is a mock implementation of SeatLocker.
type MockSeatLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockSeatLocker creates a new mock seat locker.
func NewMockSeatLocker() *MockSeatLocker {
	return &MockSeatLocker{
		locks: make(map[string]time.Time),
	}
}

func seatKey(vehicleType string, departure time.Time) string {
	return vehicleType + ":" + departure.UTC().Format(time.RFC3339)
}

func (m *MockSeatLocker) AcquireSeatLock(ctx context.Context, vehicleType string, departure time.Time, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := seatKey(vehicleType, departure)
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockSeatLocker) ReleaseSeatLock(ctx context.Context, vehicleType string, departure time.Time) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, seatKey(vehicleType, departure))
	return nil
}

// IsLocked checks whether the pair is locked (for test assertions).
func (m *MockSeatLocker) IsLocked(vehicleType string, departure time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[seatKey(vehicleType, departure)]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK RATING CACHE
// ──────────────────────────────────────────────

// MockRatingCache is a mock implementation of RatingCache.
type MockRatingCache struct {
	mu      sync.RWMutex
	ratings map[string]*redis.CachedRating

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockRatingCache creates a new mock rating cache.
func NewMockRatingCache() *MockRatingCache {
	return &MockRatingCache{
		ratings: make(map[string]*redis.CachedRating),
	}
}

func (m *MockRatingCache) GetRating(ctx context.Context, driverID string) (*redis.CachedRating, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ratings[driverID], nil
}

func (m *MockRatingCache) SetRating(ctx context.Context, rating *redis.CachedRating) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[rating.DriverID] = rating
	return nil
}

func (m *MockRatingCache) InvalidateRating(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ratings, driverID)
	return nil
}

// HasRating checks whether a cached rating exists (for assertions).
func (m *MockRatingCache) HasRating(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ratings[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK STORE
// ──────────────────────────────────────────────

// MockStore runs store transaction callbacks against the mock
// repositories directly. There is no rollback: a failed callback in
// these tests must not have mutated state, which the service-level
// tests assert explicitly.
type MockStore struct {
	Wallets  *MockWalletRepository
	Ledger   *MockTransactionRepository
	Bookings *MockBookingRepository

	// Counters
	WalletTxCallCount  int32
	BookingTxCallCount int32

	// Error injection
	TxError error
}

// NewMockStore creates a store over the given mock repositories.
func NewMockStore(wallets *MockWalletRepository, ledger *MockTransactionRepository, bookings *MockBookingRepository) *MockStore {
	return &MockStore{
		Wallets:  wallets,
		Ledger:   ledger,
		Bookings: bookings,
	}
}

func (m *MockStore) InWalletTx(ctx context.Context, fn func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error) error {
	atomic.AddInt32(&m.WalletTxCallCount, 1)
	if m.TxError != nil {
		return m.TxError
	}
	return fn(m.Wallets, m.Ledger)
}

func (m *MockStore) InBookingTx(ctx context.Context, fn func(bookings repository.BookingRepository) error) error {
	atomic.AddInt32(&m.BookingTxCallCount, 1)
	if m.TxError != nil {
		return m.TxError
	}
	return fn(m.Bookings)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBDown  = errors.New("mock: database unavailable")
	ErrMockTimeout = errors.New("mock: operation timeout")
)
