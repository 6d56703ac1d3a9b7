package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	properrors "qota/internal/properties/errors"
	"qota/internal/properties/repository"
	"qota/internal/properties/validator"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
	"qota/pkg/notify"
	"qota/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type PropertyService interface {
	Create(ctx context.Context, member model.Member, req *model.CreatePropertyRequest) (*model.CreatedProperty, error)
	GetByID(ctx context.Context, memberID string, id string) (*model.Property, error)
	GetMine(ctx context.Context, memberID string, limit int, offset int64) ([]*model.Property, int64, error)
}

type propertyService struct {
	repo      repository.PropertyRepository
	linkRepo  repository.MemberLinkRepository
	validator *validator.PropertyValidator
	notifier  notify.Notifier
	cfg       *config.Config
	now       func() time.Time
}

func NewPropertyService(
	repo repository.PropertyRepository,
	linkRepo repository.MemberLinkRepository,
	validator *validator.PropertyValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		linkRepo:  linkRepo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create registers a property and seeds the creator's quota pools. The
// property and the master-owner link are written in one transaction: the
// current-year pool gets the pro-rata share of the annual total, the
// next-year pool the full total.
func (s *propertyService) Create(ctx context.Context, member model.Member, req *model.CreatePropertyRequest) (*model.CreatedProperty, error) {
	s.sanitize(req)

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Property validation failed", "error", err)
		return nil, apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}

	property := s.buildProperty(req)

	if err := s.validator.Validate(property); err != nil {
		s.cfg.Log.Warn("Property validation failed", "error", err)
		return nil, apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}

	now := s.now()
	annualTotal := annualTotalDays(property.TotalFractions)

	link := &model.MemberLink{
		MemberID:           member.ID,
		Role:               model.RoleMasterOwner,
		Fractions:          property.TotalFractions,
		CurrentYearBalance: proRataBalance(now, annualTotal),
		NextYearBalance:    annualTotal,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, property); err != nil {
			return apperrors.Internal("Failed to create property", err)
		}

		link.PropertyID = property.ID
		if err := s.linkRepo.Create(sessCtx, link); err != nil {
			if errors.Is(err, properrors.ErrDuplicateLink) {
				return apperrors.Conflict("Member is already linked to this property")
			}
			return apperrors.Internal("Failed to create member link", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create property", "name", property.Name, "member_id", member.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Property created successfully",
		"id", property.ID,
		"name", property.Name,
		"total_fractions", property.TotalFractions,
		"current_year_balance", link.CurrentYearBalance,
		"next_year_balance", link.NextYearBalance,
	)

	s.notifier.Notify(ctx, notify.EventPropertyCreated, model.Notification{
		PropertyID: property.ID,
		AuthorID:   member.ID,
		Message:    fmt.Sprintf("Property %q was registered by %s.", property.Name, member.DisplayName),
	})

	return &model.CreatedProperty{
		ID:           property.ID,
		Name:         property.Name,
		Type:         property.Type,
		RegisteredAt: property.RegisteredAt,
	}, nil
}

func (s *propertyService) GetByID(ctx context.Context, memberID string, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	if _, err := s.linkRepo.FindByMemberAndProperty(ctx, memberID, id); err != nil {
		if errors.Is(err, properrors.ErrLinkNotFound) {
			return nil, apperrors.Forbidden("Member does not hold a fraction of this property.")
		}
		return nil, apperrors.Internal("Failed to check property membership", err)
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, properrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, properrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}

	return property, nil
}

func (s *propertyService) GetMine(ctx context.Context, memberID string, limit int, offset int64) ([]*model.Property, int64, error) {
	var count int64
	var links []*model.MemberLink
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.linkRepo.CountByMember(ctx, memberID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count member properties", "member_id", memberID, "error", errCount)
			errCount = apperrors.Internal("Failed to count properties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		links, errFind = s.linkRepo.FindByMember(ctx, memberID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list member properties", "member_id", memberID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve properties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.PropertyID)
	}

	properties, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load properties by ids", "member_id", memberID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve properties", err)
	}

	return properties, count, nil
}

// --- Helpers ---

func (s *propertyService) sanitize(req *model.CreatePropertyRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Address.PostalCode = sanitizer.NormalizePostalCode(req.Address.PostalCode)
	req.Address.City = sanitizer.TrimAndNormalize(req.Address.City)
	req.Address.District = sanitizer.TrimAndNormalize(req.Address.District)
	req.Address.Street = sanitizer.TrimAndNormalize(req.Address.Street)
	req.Address.Number = sanitizer.TrimAndNormalize(req.Address.Number)
	req.Address.Complement = sanitizer.TrimAndNormalize(req.Address.Complement)
	req.Address.Landmark = sanitizer.TrimAndNormalize(req.Address.Landmark)
}

func (s *propertyService) buildProperty(req *model.CreatePropertyRequest) *model.Property {
	totalFractions := s.cfg.DefaultTotalFractions
	if req.TotalFractions != nil {
		totalFractions = *req.TotalFractions
	}

	minStay := s.cfg.DefaultMinStayDays
	if req.MinStayDays != nil {
		minStay = *req.MinStayDays
	}

	maxStay := s.cfg.DefaultMaxStayDays
	if req.MaxStayDays != nil {
		maxStay = *req.MaxStayDays
	}

	return &model.Property{
		Name:                   req.Name,
		Type:                   req.Type,
		TotalFractions:         totalFractions,
		PerFractionDays:        perFractionDays(totalFractions),
		MinStayDays:            minStay,
		MaxStayDays:            maxStay,
		ActiveReservationLimit: req.ActiveReservationLimit,
		HolidayLimit:           req.HolidayLimit,
		Address:                req.Address,
		EstimatedValue:         req.EstimatedValue,
	}
}
