package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	reserrors "qota/internal/reservations/errors"
	"qota/internal/reservations/repository"
	"qota/internal/reservations/validator"
	"qota/pkg/config"
	mongotx "qota/pkg/db/mongo"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
	"qota/pkg/notify"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockReservationRepository struct {
	mu sync.Mutex

	createFunc               func(ctx context.Context, reservation *model.Reservation) error
	findByIDFunc             func(ctx context.Context, id string) (*model.Reservation, error)
	findFirstOverlappingFunc func(ctx context.Context, propertyID string, start, end time.Time) (*model.Reservation, error)
	countActiveFunc          func(ctx context.Context, propertyID, memberID string, from time.Time) (int64, error)
	findConfirmedFunc        func(ctx context.Context, propertyID, memberID string) ([]*model.Reservation, error)
	findByPropertyFunc       func(ctx context.Context, propertyID string, start, end *time.Time, limit int, offset int64) ([]*model.Reservation, error)
	countByPropertyFunc      func(ctx context.Context, propertyID string, start, end *time.Time) (int64, error)
	cancelFunc               func(ctx context.Context, id string, cancelledAt time.Time) error

	created   []*model.Reservation
	cancelled []string
}

func (m *mockReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createFunc != nil {
		if err := m.createFunc(ctx, reservation); err != nil {
			return err
		}
	}
	m.created = append(m.created, reservation)
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reserrors.ErrNotFound
}

func (m *mockReservationRepository) FindFirstOverlapping(ctx context.Context, propertyID string, start, end time.Time) (*model.Reservation, error) {
	if m.findFirstOverlappingFunc != nil {
		return m.findFirstOverlappingFunc(ctx, propertyID, start, end)
	}
	return nil, nil
}

func (m *mockReservationRepository) CountActiveForMember(ctx context.Context, propertyID, memberID string, from time.Time) (int64, error) {
	if m.countActiveFunc != nil {
		return m.countActiveFunc(ctx, propertyID, memberID, from)
	}
	return 0, nil
}

func (m *mockReservationRepository) FindConfirmedForMember(ctx context.Context, propertyID, memberID string) ([]*model.Reservation, error) {
	if m.findConfirmedFunc != nil {
		return m.findConfirmedFunc(ctx, propertyID, memberID)
	}
	return nil, nil
}

func (m *mockReservationRepository) FindByProperty(ctx context.Context, propertyID string, start, end *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findByPropertyFunc != nil {
		return m.findByPropertyFunc(ctx, propertyID, start, end, limit, offset)
	}
	return nil, nil
}

func (m *mockReservationRepository) CountByProperty(ctx context.Context, propertyID string, start, end *time.Time) (int64, error) {
	if m.countByPropertyFunc != nil {
		return m.countByPropertyFunc(ctx, propertyID, start, end)
	}
	return 0, nil
}

func (m *mockReservationRepository) Cancel(ctx context.Context, id string, cancelledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelFunc != nil {
		if err := m.cancelFunc(ctx, id, cancelledAt); err != nil {
			return err
		}
	}
	m.cancelled = append(m.cancelled, id)
	return nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type balanceChange struct {
	linkID string
	pool   string
	days   float64
}

type mockLinkRepository struct {
	mu sync.Mutex

	findFunc func(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error)

	debits  []balanceChange
	credits []balanceChange
}

func (m *mockLinkRepository) FindByMemberAndProperty(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, memberID, propertyID)
	}
	return nil, reserrors.ErrLinkNotFound
}

func (m *mockLinkRepository) DecrementBalance(ctx context.Context, linkID string, pool string, days float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debits = append(m.debits, balanceChange{linkID: linkID, pool: pool, days: days})
	return nil
}

func (m *mockLinkRepository) IncrementBalance(ctx context.Context, linkID string, pool string, days float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits = append(m.credits, balanceChange{linkID: linkID, pool: pool, days: days})
	return nil
}

// mockLockRepository mimics the unique _id semantics of the lock collection:
// a second insert for a held lock fails with a duplicate key error.
type mockLockRepository struct {
	mu sync.Mutex

	locks        map[string]struct{}
	acquisitions int
	releases     int

	afterAcquire func()
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{locks: make(map[string]struct{})}
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	m.mu.Lock()
	if _, held := m.locks[lock.ID]; held {
		m.mu.Unlock()
		return nil, duplicateKeyError()
	}
	m.locks[lock.ID] = struct{}{}
	m.acquisitions++
	m.mu.Unlock()

	if m.afterAcquire != nil {
		m.afterAcquire()
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	m.releases++
	return nil
}

var _ repository.ReservationRepository = (*mockReservationRepository)(nil)
var _ repository.ReservationLockRepository = (*mockLockRepository)(nil)

type mockPropertyReader struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Property, error)
}

func (m *mockPropertyReader) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reserrors.ErrPropertyNotFound
}

type stubHolidaySource struct {
	holidaysFunc func(ctx context.Context, year int) ([]time.Time, error)
}

func (s *stubHolidaySource) HolidaysForYear(ctx context.Context, year int) ([]time.Time, error) {
	if s.holidaysFunc != nil {
		return s.holidaysFunc(ctx, year)
	}
	return nil, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(ctx context.Context, eventType string, notification model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	testPropertyID = "64f1b2c3d4e5f6a7b8c9d0e1"
	testLinkID     = "64f1b2c3d4e5f6a7b8c9d0e2"
	testMemberID   = "member-1"
)

// testNow is a Tuesday in March; current year 2026, next year 2027.
var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Log: testLogger(),
	}
}

func testProperty() *model.Property {
	return &model.Property{
		ID:                     testPropertyID,
		Name:                   "Casa da Serra",
		Type:                   model.PropertyTypeHouse,
		TotalFractions:         4,
		MinStayDays:            2,
		MaxStayDays:            14,
		ActiveReservationLimit: 2,
		HolidayLimit:           1,
	}
}

func testLink(currentBalance, nextBalance float64) *model.MemberLink {
	return &model.MemberLink{
		ID:                 testLinkID,
		PropertyID:         testPropertyID,
		MemberID:           testMemberID,
		Role:               model.RoleMasterOwner,
		Fractions:          4,
		CurrentYearBalance: currentBalance,
		NextYearBalance:    nextBalance,
	}
}

type testDeps struct {
	repo     *mockReservationRepository
	lockRepo *mockLockRepository
	linkRepo *mockLinkRepository
	props    *mockPropertyReader
	holidays *stubHolidaySource
	notifier *recordingNotifier
}

func defaultDeps() *testDeps {
	return &testDeps{
		repo:     &mockReservationRepository{},
		lockRepo: newMockLockRepository(),
		linkRepo: &mockLinkRepository{
			findFunc: func(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
				return testLink(10, 365), nil
			},
		},
		props: &mockPropertyReader{
			findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
				return testProperty(), nil
			},
		},
		holidays: &stubHolidaySource{},
		notifier: &recordingNotifier{},
	}
}

func newTestService(deps *testDeps) ReservationService {
	cfg := testConfig()
	return &reservationService{
		repo:          deps.repo,
		lockRepo:      deps.lockRepo,
		linkRepo:      deps.linkRepo,
		propertyRepo:  deps.props,
		holidaySource: deps.holidays,
		validator:     validator.NewReservationValidator(cfg.Log),
		notifier:      deps.notifier,
		cfg:           cfg,
		now:           func() time.Time { return testNow },
	}
}

func createRequest(start, end time.Time) *model.CreateReservationRequest {
	return &model.CreateReservationRequest{
		PropertyID: testPropertyID,
		StartDate:  start.Format(time.RFC3339),
		EndDate:    end.Format(time.RFC3339),
		Guests:     2,
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// ────────────────────────────────────────────────
// Tests for Create()
// ────────────────────────────────────────────────

func TestCreate_BooksAndDebitsCurrentYearPool(t *testing.T) {
	deps := defaultDeps()
	svc := newTestService(deps)

	start := day(2026, time.April, 1)
	end := day(2026, time.April, 6)

	reservation, err := svc.Create(context.Background(), model.Member{ID: testMemberID, DisplayName: "Ana"}, createRequest(start, end))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.Status != model.StatusConfirmed {
		t.Errorf("expected status %q, got %q", model.StatusConfirmed, reservation.Status)
	}
	if got := reservation.DurationDays(); got != 5 {
		t.Errorf("expected 5 day stay, got %d", got)
	}

	if len(deps.repo.created) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(deps.repo.created))
	}
	if len(deps.linkRepo.debits) != 1 {
		t.Fatalf("expected 1 debit, got %d", len(deps.linkRepo.debits))
	}
	debit := deps.linkRepo.debits[0]
	if debit.pool != model.PoolCurrentYear {
		t.Errorf("expected debit on %q, got %q", model.PoolCurrentYear, debit.pool)
	}
	if debit.days != 5 {
		t.Errorf("expected debit of 5 days, got %v", debit.days)
	}
	if debit.linkID != testLinkID {
		t.Errorf("expected debit on link %q, got %q", testLinkID, debit.linkID)
	}

	if len(deps.notifier.events) != 1 || deps.notifier.events[0] != notify.EventReservationConfirmed {
		t.Errorf("expected one %q event, got %v", notify.EventReservationConfirmed, deps.notifier.events)
	}
}

func TestCreate_NextYearStayDebitsNextYearPool(t *testing.T) {
	deps := defaultDeps()
	svc := newTestService(deps)

	start := day(2027, time.January, 10)
	end := day(2027, time.January, 14)

	if _, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(start, end)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(deps.linkRepo.debits) != 1 {
		t.Fatalf("expected 1 debit, got %d", len(deps.linkRepo.debits))
	}
	if deps.linkRepo.debits[0].pool != model.PoolNextYear {
		t.Errorf("expected debit on %q, got %q", model.PoolNextYear, deps.linkRepo.debits[0].pool)
	}
}

func TestCreate_AdmissionRejections(t *testing.T) {
	tests := []struct {
		name        string
		start       time.Time
		end         time.Time
		link        *model.MemberLink
		wantMessage string
	}{
		{
			name:        "end not after start",
			start:       day(2026, time.April, 1),
			end:         day(2026, time.April, 1),
			wantMessage: "End date must be after the start date.",
		},
		{
			name:        "start in the past",
			start:       day(2026, time.March, 9),
			end:         day(2026, time.March, 12),
			wantMessage: "Reservations cannot start before today.",
		},
		{
			name:        "stay below minimum",
			start:       day(2026, time.April, 1),
			end:         day(2026, time.April, 2),
			wantMessage: "Stay must be at least 2 days.",
		},
		{
			name:        "stay above maximum",
			start:       day(2026, time.April, 1),
			end:         day(2026, time.April, 16),
			wantMessage: "Stay cannot exceed 14 days.",
		},
		{
			name:        "start beyond next year",
			start:       day(2028, time.January, 5),
			end:         day(2028, time.January, 10),
			wantMessage: "Reservations can only start in the current or next year.",
		},
		{
			name:        "insufficient balance",
			start:       day(2026, time.April, 1),
			end:         day(2026, time.April, 7),
			link:        testLink(5, 365),
			wantMessage: "Insufficient stay-day balance for 2026: requested 6 days, 5 available.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := defaultDeps()
			if tc.link != nil {
				link := tc.link
				deps.linkRepo.findFunc = func(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
					return link, nil
				}
			}
			svc := newTestService(deps)

			_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(tc.start, tc.end))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeBusinessRule {
				t.Errorf("expected code %q, got %q", apperrors.CodeBusinessRule, appErr.Code)
			}
			if appErr.StatusCode() != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", appErr.StatusCode())
			}
			if appErr.Message != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, appErr.Message)
			}

			if len(deps.repo.created) != 0 {
				t.Error("expected no reservation insert after rejection")
			}
			if len(deps.linkRepo.debits) != 0 {
				t.Error("expected no quota debit after rejection")
			}
			if len(deps.notifier.events) != 0 {
				t.Error("expected no notification after rejection")
			}
		})
	}
}

func TestCreate_NonMemberForbidden(t *testing.T) {
	deps := defaultDeps()
	deps.linkRepo.findFunc = func(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
		return nil, reserrors.ErrLinkNotFound
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: "outsider"}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", appErr.StatusCode())
	}
}

func TestCreate_ActiveReservationLimitReached(t *testing.T) {
	deps := defaultDeps()
	deps.repo.countActiveFunc = func(ctx context.Context, propertyID, memberID string, from time.Time) (int64, error) {
		return 2, nil
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeBusinessRule {
		t.Errorf("expected code %q, got %q", apperrors.CodeBusinessRule, appErr.Code)
	}
	if !strings.Contains(appErr.Message, "limit of 2") {
		t.Errorf("expected message to state the configured limit, got %q", appErr.Message)
	}
}

func TestCreate_HolidayCapExceeded(t *testing.T) {
	deps := defaultDeps()
	deps.holidays.holidaysFunc = func(ctx context.Context, year int) ([]time.Time, error) {
		return []time.Time{
			time.Date(2026, time.April, 3, 12, 0, 0, 0, time.UTC),
			time.Date(2026, time.April, 5, 12, 0, 0, 0, time.UTC),
		}, nil
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Message != "Holiday limit of 1 for this property would be exceeded." {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if len(deps.repo.created) != 0 {
		t.Error("expected no insert after holiday rejection")
	}
}

func TestCreate_HolidayCapCountsExistingReservations(t *testing.T) {
	deps := defaultDeps()
	deps.holidays.holidaysFunc = func(ctx context.Context, year int) ([]time.Time, error) {
		return []time.Time{
			time.Date(2026, time.April, 3, 12, 0, 0, 0, time.UTC),
			time.Date(2026, time.June, 12, 12, 0, 0, 0, time.UTC),
		}, nil
	}
	deps.repo.findConfirmedFunc = func(ctx context.Context, propertyID, memberID string) ([]*model.Reservation, error) {
		return []*model.Reservation{
			{
				PropertyID: propertyID,
				MemberID:   memberID,
				StartDate:  day(2026, time.June, 10),
				EndDate:    day(2026, time.June, 14),
				Status:     model.StatusConfirmed,
			},
		}, nil
	}
	svc := newTestService(deps)

	// One holiday in the new range plus one already held by the June stay
	// breaches a limit of one.
	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeBusinessRule {
		t.Errorf("expected code %q, got %q", apperrors.CodeBusinessRule, appErr.Code)
	}
}

func TestCreate_HolidayFreeStayIgnoresExistingUsage(t *testing.T) {
	deps := defaultDeps()
	deps.holidays.holidaysFunc = func(ctx context.Context, year int) ([]time.Time, error) {
		return []time.Time{
			time.Date(2026, time.June, 12, 12, 0, 0, 0, time.UTC),
			time.Date(2026, time.June, 13, 12, 0, 0, 0, time.UTC),
		}, nil
	}
	// The member already sits above the limit of one through the June stay,
	// but a stay containing no holidays never trips the cap.
	deps.repo.findConfirmedFunc = func(ctx context.Context, propertyID, memberID string) ([]*model.Reservation, error) {
		return []*model.Reservation{
			{
				PropertyID: propertyID,
				MemberID:   memberID,
				StartDate:  day(2026, time.June, 10),
				EndDate:    day(2026, time.June, 14),
				Status:     model.StatusConfirmed,
			},
		}, nil
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps.repo.created) != 1 {
		t.Errorf("expected 1 insert, got %d", len(deps.repo.created))
	}
}

func TestCreate_HolidayLookupFailsOpen(t *testing.T) {
	deps := defaultDeps()
	deps.holidays.holidaysFunc = func(ctx context.Context, year int) ([]time.Time, error) {
		return nil, errors.New("calendar unreachable")
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err != nil {
		t.Fatalf("expected booking to proceed without holiday data, got %v", err)
	}
	if len(deps.repo.created) != 1 {
		t.Errorf("expected 1 insert, got %d", len(deps.repo.created))
	}
}

func TestCreate_OverlapRejectedInsideTransaction(t *testing.T) {
	deps := defaultDeps()
	deps.repo.findFirstOverlappingFunc = func(ctx context.Context, propertyID string, start, end time.Time) (*model.Reservation, error) {
		return &model.Reservation{
			PropertyID: propertyID,
			MemberID:   "member-2",
			StartDate:  day(2026, time.April, 4),
			EndDate:    day(2026, time.April, 8),
			Status:     model.StatusConfirmed,
		}, nil
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", appErr.StatusCode())
	}
	if appErr.Message != "The property is already reserved for part of the requested period." {
		t.Errorf("unexpected message %q", appErr.Message)
	}

	if len(deps.repo.created) != 0 {
		t.Error("expected no insert on overlap")
	}
	if len(deps.linkRepo.debits) != 0 {
		t.Error("expected no debit on overlap")
	}
}

func TestCreate_ConcurrentSameRangeAdmitsExactlyOne(t *testing.T) {
	deps := defaultDeps()

	// Transactional reads are snapshot reads: neither request's overlap check
	// can see the rival's uncommitted insert, so the overlap re-check alone
	// cannot exclude a concurrent writer. Only the advisory lock can.
	deps.repo.findFirstOverlappingFunc = func(ctx context.Context, propertyID string, start, end time.Time) (*model.Reservation, error) {
		return nil, nil
	}

	// Hold the winner inside its critical section until the rival has tried
	// and failed to take the lock, so both requests are in flight together.
	lockHeld := make(chan struct{})
	rivalDone := make(chan struct{})
	deps.lockRepo.afterAcquire = func() {
		close(lockHeld)
		<-rivalDone
	}

	svc := newTestService(deps)

	start := day(2026, time.April, 1)
	end := day(2026, time.April, 6)

	var wg sync.WaitGroup
	var winnerErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, winnerErr = svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(start, end))
	}()

	<-lockHeld
	_, rivalErr := svc.Create(context.Background(), model.Member{ID: "member-2"}, createRequest(start, end))
	close(rivalDone)
	wg.Wait()

	if winnerErr != nil {
		t.Fatalf("expected winning request to succeed, got %v", winnerErr)
	}
	if rivalErr == nil {
		t.Fatal("expected rival request to fail, got nil")
	}
	rivalAppErr := apperrors.AsAppError(rivalErr)
	if rivalAppErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %q, got %q", apperrors.CodeConflict, rivalAppErr.Code)
	}
	if rivalAppErr.StatusCode() != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rivalAppErr.StatusCode())
	}

	if len(deps.repo.created) != 1 {
		t.Errorf("expected 1 insert, got %d", len(deps.repo.created))
	}
	if len(deps.linkRepo.debits) != 1 {
		t.Errorf("expected 1 debit, got %d", len(deps.linkRepo.debits))
	}
	if deps.lockRepo.acquisitions != 1 {
		t.Errorf("expected 1 lock acquisition, got %d", deps.lockRepo.acquisitions)
	}
}

func TestCreate_ReleasesLockAfterBooking(t *testing.T) {
	deps := defaultDeps()
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.lockRepo.releases != 1 {
		t.Errorf("expected lock to be released once, got %d", deps.lockRepo.releases)
	}
	if len(deps.lockRepo.locks) != 0 {
		t.Errorf("expected no lock left behind, got %d", len(deps.lockRepo.locks))
	}
}

func TestCreate_ReleasesLockOnOverlapFailure(t *testing.T) {
	deps := defaultDeps()
	deps.repo.findFirstOverlappingFunc = func(ctx context.Context, propertyID string, start, end time.Time) (*model.Reservation, error) {
		return confirmedReservation(day(2026, time.April, 4), day(2026, time.April, 8)), nil
	}
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, createRequest(day(2026, time.April, 1), day(2026, time.April, 6)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if deps.lockRepo.releases != 1 {
		t.Errorf("expected lock to be released after the failed booking, got %d releases", deps.lockRepo.releases)
	}
	if len(deps.lockRepo.locks) != 0 {
		t.Errorf("expected no lock left behind, got %d", len(deps.lockRepo.locks))
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	deps := defaultDeps()
	svc := newTestService(deps)

	_, err := svc.Create(context.Background(), model.Member{ID: testMemberID}, &model.CreateReservationRequest{
		PropertyID: testPropertyID,
		StartDate:  "April first",
		EndDate:    "2026-04-06T00:00:00Z",
		Guests:     2,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %q, got %q", apperrors.CodeValidation, appErr.Code)
	}
}

// ────────────────────────────────────────────────
// Tests for Cancel()
// ────────────────────────────────────────────────

func confirmedReservation(start, end time.Time) *model.Reservation {
	return &model.Reservation{
		ID:         "64f1b2c3d4e5f6a7b8c9d0f0",
		PropertyID: testPropertyID,
		MemberID:   testMemberID,
		StartDate:  start,
		EndDate:    end,
		Guests:     2,
		Status:     model.StatusConfirmed,
	}
}

func TestCancel_RefundsDebitedPool(t *testing.T) {
	deps := defaultDeps()
	reservation := confirmedReservation(day(2026, time.April, 1), day(2026, time.April, 6))
	deps.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return reservation, nil
	}
	svc := newTestService(deps)

	if err := svc.Cancel(context.Background(), model.Member{ID: testMemberID, DisplayName: "Ana"}, reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(deps.repo.cancelled) != 1 || deps.repo.cancelled[0] != reservation.ID {
		t.Errorf("expected reservation %q cancelled, got %v", reservation.ID, deps.repo.cancelled)
	}
	if len(deps.linkRepo.credits) != 1 {
		t.Fatalf("expected 1 refund, got %d", len(deps.linkRepo.credits))
	}
	credit := deps.linkRepo.credits[0]
	if credit.pool != model.PoolCurrentYear || credit.days != 5 {
		t.Errorf("expected refund of 5 days on %q, got %v days on %q", model.PoolCurrentYear, credit.days, credit.pool)
	}

	if len(deps.notifier.events) != 1 || deps.notifier.events[0] != notify.EventReservationCancelled {
		t.Errorf("expected one %q event, got %v", notify.EventReservationCancelled, deps.notifier.events)
	}
}

func TestCancel_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		reservation *model.Reservation
		member      model.Member
		wantStatus  int
	}{
		{
			name:        "not the owner",
			reservation: confirmedReservation(day(2026, time.April, 1), day(2026, time.April, 6)),
			member:      model.Member{ID: "member-2"},
			wantStatus:  http.StatusForbidden,
		},
		{
			name: "already cancelled",
			reservation: func() *model.Reservation {
				r := confirmedReservation(day(2026, time.April, 1), day(2026, time.April, 6))
				r.Status = model.StatusCancelled
				return r
			}(),
			member:     model.Member{ID: testMemberID},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "already started",
			reservation: confirmedReservation(day(2026, time.March, 8), day(2026, time.March, 12)),
			member:      model.Member{ID: testMemberID},
			wantStatus:  http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := defaultDeps()
			deps.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
				return tc.reservation, nil
			}
			svc := newTestService(deps)

			err := svc.Cancel(context.Background(), tc.member, tc.reservation.ID)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			appErr := apperrors.AsAppError(err)
			if appErr.StatusCode() != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, appErr.StatusCode())
			}

			if len(deps.repo.cancelled) != 0 {
				t.Error("expected no cancellation write")
			}
			if len(deps.linkRepo.credits) != 0 {
				t.Error("expected no refund")
			}
		})
	}
}

func TestCancel_NotFound(t *testing.T) {
	deps := defaultDeps()
	svc := newTestService(deps)

	err := svc.Cancel(context.Background(), model.Member{ID: testMemberID}, "64f1b2c3d4e5f6a7b8c9d0ff")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).StatusCode() != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apperrors.AsAppError(err).StatusCode())
	}
}

// ────────────────────────────────────────────────
// Tests for reads
// ────────────────────────────────────────────────

func TestGetByID_RequiresMembership(t *testing.T) {
	deps := defaultDeps()
	reservation := confirmedReservation(day(2026, time.April, 1), day(2026, time.April, 6))
	deps.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return reservation, nil
	}
	deps.linkRepo.findFunc = func(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
		return nil, reserrors.ErrLinkNotFound
	}
	svc := newTestService(deps)

	_, err := svc.GetByID(context.Background(), "outsider", reservation.ID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).StatusCode() != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", apperrors.AsAppError(err).StatusCode())
	}
}

func TestGetByProperty_ReturnsPageAndCount(t *testing.T) {
	deps := defaultDeps()
	deps.repo.findByPropertyFunc = func(ctx context.Context, propertyID string, start, end *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
		return []*model.Reservation{
			confirmedReservation(day(2026, time.April, 1), day(2026, time.April, 6)),
			confirmedReservation(day(2026, time.May, 1), day(2026, time.May, 4)),
		}, nil
	}
	deps.repo.countByPropertyFunc = func(ctx context.Context, propertyID string, start, end *time.Time) (int64, error) {
		return 7, nil
	}
	svc := newTestService(deps)

	reservations, count, err := svc.GetByProperty(context.Background(), testMemberID, testPropertyID, nil, nil, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reservations) != 2 {
		t.Errorf("expected 2 reservations, got %d", len(reservations))
	}
	if count != 7 {
		t.Errorf("expected total count 7, got %d", count)
	}
}

func TestGetByProperty_RequiresMembership(t *testing.T) {
	deps := defaultDeps()
	deps.linkRepo.findFunc = func(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
		return nil, reserrors.ErrLinkNotFound
	}
	svc := newTestService(deps)

	_, _, err := svc.GetByProperty(context.Background(), "outsider", testPropertyID, nil, nil, 10, 0)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).StatusCode() != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", apperrors.AsAppError(err).StatusCode())
	}
}
