package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/stanstork/crewdispatch/internal/models"
)

type InstallerListFilter struct {
	Trade  models.Trade
	Active *bool
}

type InstallerRepository interface {
	Create(ctx context.Context, installer models.Installer) (models.Installer, error)
	Get(ctx context.Context, installerID int64) (models.Installer, error)
	List(ctx context.Context, filter InstallerListFilter) ([]models.Installer, error)
	SetActive(ctx context.Context, installerID int64, active bool) (models.Installer, error)
	SetLocations(ctx context.Context, installerID int64, locationIDs []int64) error
	FindCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
}

type installerRepository struct {
	q Querier
}

func NewInstallerRepository(q Querier) InstallerRepository {
	return &installerRepository{q: q}
}

const installerColumns = `
	i.installer_id, i.first_name, i.last_name, i.trade, i.phone, i.email, i.is_active,
	COALESCE(array_agg(il.location_id ORDER BY il.location_id) FILTER (WHERE il.location_id IS NOT NULL), '{}') AS location_ids,
	i.created_at, i.updated_at`

func (r *installerRepository) Create(ctx context.Context, in models.Installer) (models.Installer, error) {
	const query = `
		INSERT INTO dispatch.installers (first_name, last_name, trade, phone, email, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING installer_id, created_at, updated_at
	`
	err := withTx(ctx, r.q, func(q Querier) error {
		err := q.QueryRowContext(ctx, query,
			strings.TrimSpace(in.FirstName),
			strings.TrimSpace(in.LastName),
			in.Trade,
			stringArg(in.Phone),
			stringArg(in.Email),
			in.IsActive,
		).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
		if err != nil {
			return classify(err)
		}
		return replaceLocations(ctx, q, in.ID, in.LocationIDs)
	})
	if err != nil {
		return models.Installer{}, err
	}
	if in.LocationIDs == nil {
		in.LocationIDs = []int64{}
	}
	return in, nil
}

func (r *installerRepository) Get(ctx context.Context, installerID int64) (models.Installer, error) {
	query := `
		SELECT ` + installerColumns + `
		FROM dispatch.installers i
		LEFT JOIN dispatch.installer_locations il ON il.installer_id = i.installer_id
		WHERE i.installer_id = $1
		GROUP BY i.installer_id
	`
	installer, err := scanInstaller(r.q.QueryRowContext(ctx, query, installerID))
	if err != nil {
		return models.Installer{}, classify(err)
	}
	return installer, nil
}

func (r *installerRepository) List(ctx context.Context, filter InstallerListFilter) ([]models.Installer, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Trade != "" {
		args = append(args, filter.Trade)
		conds = append(conds, fmt.Sprintf("i.trade = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, fmt.Sprintf("i.is_active = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := `
		SELECT ` + installerColumns + `
		FROM dispatch.installers i
		LEFT JOIN dispatch.installer_locations il ON il.installer_id = i.installer_id
		` + where + `
		GROUP BY i.installer_id
		ORDER BY i.installer_id
	`
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	installers := []models.Installer{}
	for rows.Next() {
		installer, err := scanInstaller(rows)
		if err != nil {
			return nil, err
		}
		installers = append(installers, installer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return installers, nil
}

func (r *installerRepository) SetActive(ctx context.Context, installerID int64, active bool) (models.Installer, error) {
	const query = `
		UPDATE dispatch.installers
		SET is_active = $1, updated_at = NOW()
		WHERE installer_id = $2
	`
	res, err := r.q.ExecContext(ctx, query, active, installerID)
	if err != nil {
		return models.Installer{}, fmt.Errorf("failed to update installer %d: %w", installerID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Installer{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.Installer{}, ErrNotFound
	}
	return r.Get(ctx, installerID)
}

func (r *installerRepository) SetLocations(ctx context.Context, installerID int64, locationIDs []int64) error {
	return withTx(ctx, r.q, func(q Querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM dispatch.installer_locations WHERE installer_id = $1`, installerID); err != nil {
			return fmt.Errorf("failed to clear installer locations: %w", err)
		}
		return replaceLocations(ctx, q, installerID, locationIDs)
	})
}

func replaceLocations(ctx context.Context, q Querier, installerID int64, locationIDs []int64) error {
	if len(locationIDs) == 0 {
		return nil
	}
	const query = `
		INSERT INTO dispatch.installer_locations (installer_id, location_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING
	`
	if _, err := q.ExecContext(ctx, query, installerID, pq.Array(locationIDs)); err != nil {
		return classify(err)
	}
	return nil
}

// FindCandidates returns eligible installers ordered by id.
func (r *installerRepository) FindCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	query, args := buildCandidateQuery(filter)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("candidate query for trade %s: %w", filter.Trade, err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// buildCandidateQuery turns a filter into one fully specified statement.
// Installers must serve at least one location even when the filter has no
// LocationID. The same-date exclusion only counts assignments held by
// installers of the requested trade.
func buildCandidateQuery(f models.CandidateFilter) (string, []interface{}) {
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	tradeArg := arg(f.Trade)
	conds := []string{
		"i.trade = " + tradeArg,
		"i.is_active = " + arg(f.IsActive),
	}
	if f.LocationID != nil {
		conds = append(conds, "il.location_id = "+arg(*f.LocationID))
	}
	if len(f.ExcludeInstallerIDs) > 0 {
		conds = append(conds, "NOT (i.installer_id = ANY("+arg(pq.Array(f.ExcludeInstallerIDs))+"))")
	}
	if f.ExcludeDate != nil {
		conds = append(conds, `i.installer_id NOT IN (
			SELECT ia.installer_id
			FROM dispatch.installer_assignments ia
			JOIN dispatch.job_schedules js ON js.schedule_id = ia.schedule_id
			JOIN dispatch.installers ai ON ai.installer_id = ia.installer_id
			WHERE js.scheduled_date = `+arg(f.ExcludeDate.String())+`
			  AND ai.trade = `+tradeArg+`
		)`)
	}

	query := `
		SELECT DISTINCT i.installer_id, i.first_name, i.last_name
		FROM dispatch.installers i
		JOIN dispatch.installer_locations il ON il.installer_id = i.installer_id
		WHERE ` + strings.Join(conds, "\n\t\t  AND ") + `
		ORDER BY i.installer_id
	`
	return query, args
}

func scanInstaller(scanner rowScanner) (models.Installer, error) {
	var (
		installer   models.Installer
		phone       sql.NullString
		email       sql.NullString
		locationIDs pq.Int64Array
	)
	if err := scanner.Scan(
		&installer.ID,
		&installer.FirstName,
		&installer.LastName,
		&installer.Trade,
		&phone,
		&email,
		&installer.IsActive,
		&locationIDs,
		&installer.CreatedAt,
		&installer.UpdatedAt,
	); err != nil {
		return models.Installer{}, err
	}
	installer.Phone = nullStringPtr(phone)
	installer.Email = nullStringPtr(email)
	installer.LocationIDs = []int64(locationIDs)
	if installer.LocationIDs == nil {
		installer.LocationIDs = []int64{}
	}
	return installer, nil
}
