package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/stanstork/crewdispatch/internal/models"
)

type LocationRepository interface {
	Create(ctx context.Context, loc models.GeographicLocation) (models.GeographicLocation, error)
	Get(ctx context.Context, locationID int64) (models.GeographicLocation, error)
	List(ctx context.Context) ([]models.GeographicLocation, error)
}

type locationRepository struct {
	q Querier
}

func NewLocationRepository(q Querier) LocationRepository {
	return &locationRepository{q: q}
}

func (r *locationRepository) Create(ctx context.Context, loc models.GeographicLocation) (models.GeographicLocation, error) {
	const query = `
		INSERT INTO dispatch.geographic_locations (location_name, zip_code, city, state)
		VALUES ($1, $2, $3, $4)
		RETURNING location_id, created_at
	`
	loc.Name = strings.TrimSpace(loc.Name)
	err := r.q.QueryRowContext(ctx, query,
		loc.Name,
		stringArg(loc.ZipCode),
		stringArg(loc.City),
		stringArg(loc.State),
	).Scan(&loc.ID, &loc.CreatedAt)
	if err != nil {
		return models.GeographicLocation{}, classify(err)
	}
	return loc, nil
}

func (r *locationRepository) Get(ctx context.Context, locationID int64) (models.GeographicLocation, error) {
	const query = `
		SELECT location_id, location_name, zip_code, city, state, created_at
		FROM dispatch.geographic_locations
		WHERE location_id = $1
	`
	loc, err := scanLocation(r.q.QueryRowContext(ctx, query, locationID))
	if err != nil {
		return models.GeographicLocation{}, classify(err)
	}
	return loc, nil
}

func (r *locationRepository) List(ctx context.Context) ([]models.GeographicLocation, error) {
	const query = `
		SELECT location_id, location_name, zip_code, city, state, created_at
		FROM dispatch.geographic_locations
		ORDER BY location_name, location_id
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []models.GeographicLocation{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func scanLocation(scanner rowScanner) (models.GeographicLocation, error) {
	var (
		loc   models.GeographicLocation
		zip   sql.NullString
		city  sql.NullString
		state sql.NullString
	)
	if err := scanner.Scan(&loc.ID, &loc.Name, &zip, &city, &state, &loc.CreatedAt); err != nil {
		return models.GeographicLocation{}, err
	}
	loc.ZipCode = nullStringPtr(zip)
	loc.City = nullStringPtr(city)
	loc.State = nullStringPtr(state)
	return loc, nil
}
