package repository

import (
	"context"

	"campuseats/internal/models"
	"campuseats/internal/repository/postgres"
)

const (
	selectVenueByRefQuery = `
						SELECT id, ref, name, location, swipe_deal FROM venues
						WHERE ref = $1
`
	selectVenueByIDQuery = `
						SELECT id, ref, name, location, swipe_deal FROM venues
						WHERE id = $1
`
	selectVenuesQuery = `
						SELECT id, ref, name, location, swipe_deal FROM venues
						ORDER BY name ASC
`
)

// VenueRepository reads the campus venue catalog.
type VenueRepository struct {
	db *postgres.DB
}

// NewVenueRepository creates new VenueRepository instance
func NewVenueRepository(db *postgres.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

func scanVenue(row rowScanner) (*models.Venue, error) {
	venue := models.Venue{}
	if err := row.Scan(&venue.ID, &venue.Ref, &venue.Name, &venue.Location, &venue.SwipeDeal); err != nil {
		return nil, err
	}
	return &venue, nil
}

// GetVenueByRef resolves a client-supplied venue reference.
func (vr *VenueRepository) GetVenueByRef(ctx context.Context, ref string) (*models.Venue, error) {
	venue, err := scanVenue(vr.db.QueryRow(ctx, selectVenueByRefQuery, ref))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return venue, nil
}

// GetVenueByID returns a venue by id.
func (vr *VenueRepository) GetVenueByID(ctx context.Context, id uint64) (*models.Venue, error) {
	venue, err := scanVenue(vr.db.QueryRow(ctx, selectVenueByIDQuery, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return venue, nil
}

// ListVenues returns all venues, sorted by name.
func (vr *VenueRepository) ListVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := vr.db.Query(ctx, selectVenuesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := []models.Venue{}

	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			continue
		}
		venues = append(venues, *venue)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return venues, nil
}
