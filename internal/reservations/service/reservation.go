package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reserrors "qota/internal/reservations/errors"
	"qota/internal/reservations/holiday"
	"qota/internal/reservations/repository"
	"qota/internal/reservations/validator"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
	"qota/pkg/notify"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Create(ctx context.Context, member model.Member, req *model.CreateReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, memberID string, id string) (*model.Reservation, error)
	GetByProperty(ctx context.Context, memberID string, propertyID string, start, end *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error)
	Cancel(ctx context.Context, member model.Member, id string) error
}

type reservationService struct {
	repo          repository.ReservationRepository
	lockRepo      repository.ReservationLockRepository
	linkRepo      repository.MemberLinkRepository
	propertyRepo  repository.PropertyReader
	holidaySource holiday.Source
	validator     *validator.ReservationValidator
	notifier      notify.Notifier
	cfg           *config.Config
	now           func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	linkRepo repository.MemberLinkRepository,
	propertyRepo repository.PropertyReader,
	holidaySource holiday.Source,
	validator *validator.ReservationValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:          repo,
		lockRepo:      lockRepo,
		linkRepo:      linkRepo,
		propertyRepo:  propertyRepo,
		holidaySource: holidaySource,
		validator:     validator,
		notifier:      notifier,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Create runs the admission pipeline and, if every rule passes, books the
// reservation. The pipeline short-circuits on the first failing rule; each
// rule has its own message. Only the overlap re-check inside the transaction
// is strictly consistent; everything before it reads committed state.
func (s *reservationService) Create(ctx context.Context, member model.Member, req *model.CreateReservationRequest) (*model.Reservation, error) {
	start, end, err := s.validator.ValidateCreate(req)
	if err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	link, err := s.membershipLink(ctx, member.ID, req.PropertyID)
	if err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, reserrors.ErrPropertyNotFound) {
			return nil, apperrors.NotFoundWithID("Property", req.PropertyID)
		}
		return nil, apperrors.Internal("Failed to load property", err)
	}

	now := s.now()

	reservation := &model.Reservation{
		PropertyID: req.PropertyID,
		MemberID:   member.ID,
		StartDate:  start,
		EndDate:    end,
		Guests:     req.Guests,
		Status:     model.StatusConfirmed,
	}

	pool, err := s.admit(ctx, reservation, link, property, now)
	if err != nil {
		return nil, err
	}

	duration := reservation.DurationDays()

	// Serialize concurrent bookings on the property. Mongo transactions only
	// detect write conflicts on shared documents; overlapping bookings write
	// distinct reservation and link documents, so without the lock both
	// snapshots pass the overlap check and both commit.
	lockID, err := s.acquirePropertyLock(ctx, reservation.PropertyID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflicting, err := s.repo.FindFirstOverlapping(sessCtx, reservation.PropertyID, start, end)
		if err != nil {
			return apperrors.Internal("Failed to check overlapping reservations", err)
		}
		if conflicting != nil {
			return apperrors.BusinessRule("The property is already reserved for part of the requested period.")
		}

		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}

		if err := s.linkRepo.DecrementBalance(sessCtx, link.ID, pool, float64(duration)); err != nil {
			return apperrors.Internal("Failed to debit quota pool", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to book reservation",
			"property_id", reservation.PropertyID,
			"member_id", member.ID,
			"start_date", start,
			"end_date", end,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation booked successfully",
		"id", reservation.ID,
		"property_id", reservation.PropertyID,
		"member_id", member.ID,
		"duration_days", duration,
		"pool", pool,
	)

	s.notifier.Notify(ctx, notify.EventReservationConfirmed, model.Notification{
		PropertyID: reservation.PropertyID,
		AuthorID:   member.ID,
		Message: fmt.Sprintf("%s reserved the property from %s to %s.",
			member.DisplayName,
			start.Format("2006-01-02"),
			end.Format("2006-01-02"),
		),
	})

	return reservation, nil
}

// acquirePropertyLock inserts an advisory lock document keyed by the property
// id. A duplicate key means another request holds the booking window for this
// property right now.
func (s *reservationService) acquirePropertyLock(ctx context.Context, propertyID string) (string, error) {
	lockID := fmt.Sprintf("reservation_lock_%s", propertyID)

	lock := &model.ReservationLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(10 * time.Second),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("The property is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire reservation lock", err)
	}

	return lockID, nil
}

// admit applies the ordered business rules and returns the pool the booking
// will debit.
func (s *reservationService) admit(ctx context.Context, reservation *model.Reservation, link *model.MemberLink, property *model.Property, now time.Time) (string, error) {
	start := reservation.StartDate
	end := reservation.EndDate

	if !end.After(start) {
		return "", apperrors.BusinessRule("End date must be after the start date.")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if start.Before(today) {
		return "", apperrors.BusinessRule("Reservations cannot start before today.")
	}

	duration := reservation.DurationDays()
	if duration < property.MinStayDays {
		return "", apperrors.BusinessRule(fmt.Sprintf("Stay must be at least %d days.", property.MinStayDays))
	}
	if duration > property.MaxStayDays {
		return "", apperrors.BusinessRule(fmt.Sprintf("Stay cannot exceed %d days.", property.MaxStayDays))
	}

	pool, ok := selectPool(start, now)
	if !ok {
		return "", apperrors.BusinessRule("Reservations can only start in the current or next year.")
	}

	available := link.BalanceFor(pool)
	if available < float64(duration) {
		return "", apperrors.BusinessRule(fmt.Sprintf(
			"Insufficient stay-day balance for %d: requested %d days, %d available.",
			start.Year(), duration, int(available),
		))
	}

	if property.ActiveReservationLimit > 0 {
		active, err := s.repo.CountActiveForMember(ctx, reservation.PropertyID, reservation.MemberID, now)
		if err != nil {
			return "", apperrors.Internal("Failed to count active reservations", err)
		}
		if active >= int64(property.ActiveReservationLimit) {
			return "", apperrors.BusinessRule(fmt.Sprintf(
				"Active reservation limit of %d reached for this property.",
				property.ActiveReservationLimit,
			))
		}
	}

	if property.HolidayLimit > 0 {
		if err := s.checkHolidayCap(ctx, reservation, property.HolidayLimit); err != nil {
			return "", err
		}
	}

	return pool, nil
}

// checkHolidayCap counts the holidays the requested range would consume plus
// those already consumed by the member's other confirmed reservations on the
// property. Holiday lookups fail open: an unreachable calendar behaves like a
// year without holidays.
func (s *reservationService) checkHolidayCap(ctx context.Context, reservation *model.Reservation, limit int) error {
	var holidays []time.Time
	for _, year := range yearsSpanned(reservation.StartDate, reservation.EndDate) {
		yearHolidays, err := s.holidaySource.HolidaysForYear(ctx, year)
		if err != nil {
			s.cfg.Log.Warn("Holiday lookup failed; proceeding without holidays for year",
				"year", year,
				"error", err,
			)
			continue
		}
		holidays = append(holidays, yearHolidays...)
	}

	newUsage := countHolidaysWithin(holidays, reservation.StartDate, reservation.EndDate)
	if newUsage == 0 {
		// A holiday-free stay never trips the cap, even for a member whose
		// existing reservations already sit at or above it.
		return nil
	}

	existing, err := s.repo.FindConfirmedForMember(ctx, reservation.PropertyID, reservation.MemberID)
	if err != nil {
		return apperrors.Internal("Failed to load member reservations", err)
	}

	existingUsage := 0
	for _, r := range existing {
		existingUsage += countHolidaysWithin(holidays, r.StartDate, r.EndDate)
	}

	if existingUsage+newUsage > limit {
		return apperrors.BusinessRule(fmt.Sprintf(
			"Holiday limit of %d for this property would be exceeded.",
			limit,
		))
	}

	return nil
}

func (s *reservationService) GetByID(ctx context.Context, memberID string, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	if _, err := s.membershipLink(ctx, memberID, reservation.PropertyID); err != nil {
		return nil, err
	}

	return reservation, nil
}

func (s *reservationService) GetByProperty(ctx context.Context, memberID string, propertyID string, start, end *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID cannot be empty")
	}

	if _, err := s.membershipLink(ctx, memberID, propertyID); err != nil {
		return nil, 0, err
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByProperty(ctx, propertyID, start, end)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "property_id", propertyID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByProperty(ctx, propertyID, start, end, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "property_id", propertyID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// Cancel flips a confirmed future reservation to cancelled and refunds the
// debited pool, selected by the same start-year rule the booking used.
func (s *reservationService) Cancel(ctx context.Context, member model.Member, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid reservation ID format")
		}
		return apperrors.Internal("Failed to retrieve reservation", err)
	}

	if reservation.MemberID != member.ID {
		return apperrors.Forbidden("Members can only cancel their own reservations.")
	}
	if reservation.Status == model.StatusCancelled {
		return apperrors.BusinessRule("Reservation is already cancelled.")
	}

	now := s.now()
	if !reservation.StartDate.After(now) {
		return apperrors.BusinessRule("Only future reservations can be cancelled.")
	}

	link, err := s.membershipLink(ctx, member.ID, reservation.PropertyID)
	if err != nil {
		return err
	}

	pool, refundable := selectPool(reservation.StartDate, now)
	if !refundable {
		s.cfg.Log.Warn("Reservation start year is outside the bookable range; cancelling without refund",
			"id", id,
			"start_date", reservation.StartDate,
		)
	}

	duration := reservation.DurationDays()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Cancel(sessCtx, id, now.UTC().Truncate(time.Millisecond)); err != nil {
			return apperrors.Internal("Failed to cancel reservation", err)
		}

		if refundable {
			if err := s.linkRepo.IncrementBalance(sessCtx, link.ID, pool, float64(duration)); err != nil {
				return apperrors.Internal("Failed to refund quota pool", err)
			}
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "member_id", member.ID, "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation cancelled successfully",
		"id", id,
		"member_id", member.ID,
		"refunded_days", duration,
	)

	s.notifier.Notify(ctx, notify.EventReservationCancelled, model.Notification{
		PropertyID: reservation.PropertyID,
		AuthorID:   member.ID,
		Message: fmt.Sprintf("%s cancelled the reservation from %s to %s.",
			member.DisplayName,
			reservation.StartDate.Format("2006-01-02"),
			reservation.EndDate.Format("2006-01-02"),
		),
	})

	return nil
}

// membershipLink resolves the member's link to the property, mapping absence
// to an authorization failure.
func (s *reservationService) membershipLink(ctx context.Context, memberID, propertyID string) (*model.MemberLink, error) {
	link, err := s.linkRepo.FindByMemberAndProperty(ctx, memberID, propertyID)
	if err != nil {
		if errors.Is(err, reserrors.ErrLinkNotFound) {
			return nil, apperrors.Forbidden("Member does not hold a fraction of this property.")
		}
		return nil, apperrors.Internal("Failed to check property membership", err)
	}
	return link, nil
}
