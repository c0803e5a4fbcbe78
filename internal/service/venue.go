package service

import (
	"context"

	"campuseats/internal/models"
)

// VenueRepository is interface for reading the venue catalog
type VenueRepository interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
}

// VenueService serves the campus venue catalog.
type VenueService struct {
	repo VenueRepository
}

// NewVenueService creates new VenueService instance
func NewVenueService(repo VenueRepository) *VenueService {
	return &VenueService{repo: repo}
}

// ListVenues returns all venues, sorted by name.
func (vs *VenueService) ListVenues(ctx context.Context) ([]models.Venue, error) {
	return vs.repo.ListVenues(ctx)
}
