package repository

import (
	"context"
	"fmt"

	"github.com/stanstork/crewdispatch/internal/models"
)

type StatsRepository interface {
	// DispatchStats covers today and the following days-1 days.
	DispatchStats(ctx context.Context, days int) (models.DispatchStat, error)
}

type statsRepository struct {
	q Querier
}

func NewStatsRepository(q Querier) StatsRepository {
	return &statsRepository{q: q}
}

func (r *statsRepository) DispatchStats(ctx context.Context, days int) (models.DispatchStat, error) {
	if days <= 0 {
		days = 7
	}

	const query = `
		WITH days AS (
			SELECT generate_series(
				current_date,
				current_date + ($1 - 1) * INTERVAL '1 day',
				'1 day'::INTERVAL
			)::DATE AS day
		),
		coverage AS (
			SELECT js.schedule_id, js.scheduled_date, COUNT(ia.assignment_id) AS assigned
			FROM dispatch.job_schedules js
			LEFT JOIN dispatch.installer_assignments ia ON ia.schedule_id = js.schedule_id
			WHERE js.status = 'scheduled'
			GROUP BY js.schedule_id, js.scheduled_date
		)
		SELECT
			days.day,
			COUNT(coverage.schedule_id)                      AS schedules,
			COALESCE(SUM((coverage.assigned > 0)::int), 0)   AS staffed,
			COALESCE(SUM((coverage.assigned = 0)::int), 0)   AS unstaffed,
			COALESCE(SUM(coverage.assigned), 0)              AS assignments
		FROM days
		LEFT JOIN coverage ON coverage.scheduled_date = days.day
		GROUP BY days.day
		ORDER BY days.day;
	`

	rows, err := r.q.QueryContext(ctx, query, days)
	if err != nil {
		return models.DispatchStat{}, fmt.Errorf("dispatch stats query: %w", err)
	}
	defer rows.Close()

	var stats models.DispatchStat
	var schedules, staffed int
	for rows.Next() {
		var day models.DispatchStatDay
		if err := rows.Scan(&day.Day, &day.Schedules, &day.Staffed, &day.Unstaffed, &day.Assignments); err != nil {
			return models.DispatchStat{}, fmt.Errorf("scan dispatch stat: %w", err)
		}
		schedules += day.Schedules
		staffed += day.Staffed
		stats.PerDay = append(stats.PerDay, day)
	}
	if err := rows.Err(); err != nil {
		return models.DispatchStat{}, err
	}

	const totalQuery = `
		SELECT
			COUNT(*)                                      AS total,
			COALESCE(SUM((status = 'pending')::int), 0)   AS pending,
			COALESCE(SUM((status = 'scheduled')::int), 0) AS scheduled,
			COALESCE(SUM((status = 'completed')::int), 0) AS completed
		FROM dispatch.jobs;
	`
	row := r.q.QueryRowContext(ctx, totalQuery)
	if err := row.Scan(&stats.TotalJobs, &stats.PendingJobs, &stats.ScheduledJobs, &stats.CompletedJobs); err != nil {
		return models.DispatchStat{}, fmt.Errorf("dispatch stats totals: %w", err)
	}

	if schedules > 0 {
		stats.StaffedRate = float64(staffed) / float64(schedules) * 100.0
	}
	return stats, nil
}
