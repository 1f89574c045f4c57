package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/repo/postgres"
)

type PropertyService interface {
	Create(ctx context.Context, p *domain.Property) (*domain.Property, error)
	Get(ctx context.Context, id int64) (*domain.Property, error)
	Update(ctx context.Context, actorID int64, actorRole string, p *domain.Property) (*domain.Property, error)
	Delete(ctx context.Context, actorID int64, actorRole string, id int64) error
	Search(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error)
}

type propertyService struct {
	properties postgres.PropertiesRepo
}

func NewPropertyService(properties postgres.PropertiesRepo) PropertyService {
	return &propertyService{properties: properties}
}

func validateProperty(p *domain.Property) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Location = strings.TrimSpace(p.Location)
	if p.Title == "" || p.Location == "" {
		return fmt.Errorf("%w: title and location are required", domain.ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if p.Guests <= 0 {
		p.Guests = 1
	}
	if p.RoomType == "" {
		p.RoomType = domain.RoomEntirePlace
	} else if _, ok := domain.ParseRoomType(string(p.RoomType)); !ok {
		return fmt.Errorf("%w: room_type must be entire_place, private_room or shared_room", domain.ErrValidation)
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	return nil
}

func (s *propertyService) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	out, err := s.properties.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return out, nil
}

func (s *propertyService) Get(ctx context.Context, id int64) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: property %d", domain.ErrNotFound, id)
	}
	return p, nil
}

// Update and Delete are restricted to the listing's owner or an admin.
func (s *propertyService) Update(ctx context.Context, actorID int64, actorRole string, p *domain.Property) (*domain.Property, error) {
	existing, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID && actorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	out, err := s.properties.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: property %d", domain.ErrNotFound, p.ID)
	}
	return out, nil
}

func (s *propertyService) Delete(ctx context.Context, actorID int64, actorRole string, id int64) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID && actorRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	ok, err := s.properties.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: property %d", domain.ErrNotFound, id)
	}
	return nil
}

func (s *propertyService) Search(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	if f.RoomType != "" {
		if _, ok := domain.ParseRoomType(f.RoomType); !ok {
			return nil, fmt.Errorf("%w: invalid room_type", domain.ErrValidation)
		}
	}
	return s.properties.Search(ctx, f)
}
