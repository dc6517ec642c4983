package service

import (
	"context"
	"errors"
	"time"

	"tajapart/internal/model"
	"tajapart/internal/repository"
)

var ErrInvalidPage = errors.New("page must be >= 1 and size must be > 0")

// CatalogService serves the apartment catalog and the announcements board.
type CatalogService interface {
	ListApartments(ctx context.Context) ([]model.Apartment, error)
	PageApartments(ctx context.Context, page, size int64) ([]model.Apartment, error)
	CountApartments(ctx context.Context) (int64, error)
	CreateAnnouncement(ctx context.Context, a model.Announcement) (*model.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
}

type catalogService struct {
	apartments    repository.ApartmentRepository
	announcements repository.AnnouncementRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(apartments repository.ApartmentRepository, announcements repository.AnnouncementRepository) CatalogService {
	return &catalogService{
		apartments:    apartments,
		announcements: announcements,
	}
}

func (s *catalogService) ListApartments(ctx context.Context) ([]model.Apartment, error) {
	return s.apartments.List(ctx)
}

// PageApartments returns one page in stored order. Pages are 1-indexed from
// the caller; internally skip = (page-1)*size.
func (s *catalogService) PageApartments(ctx context.Context, page, size int64) ([]model.Apartment, error) {
	if page < 1 || size < 1 {
		return nil, ErrInvalidPage
	}
	return s.apartments.Page(ctx, (page-1)*size, size)
}

func (s *catalogService) CountApartments(ctx context.Context) (int64, error) {
	return s.apartments.Count(ctx)
}

func (s *catalogService) CreateAnnouncement(ctx context.Context, a model.Announcement) (*model.Announcement, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := s.announcements.Insert(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *catalogService) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	return s.announcements.List(ctx)
}
