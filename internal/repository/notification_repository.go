package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/stanstork/crewdispatch/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error)
	ListRecent(ctx context.Context, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int64) (models.Notification, error)
}

type notificationRepository struct {
	q Querier
}

type CreateNotificationParams struct {
	Event    models.NotificationEvent
	Severity models.NotificationSeverity
	Title    string
	Message  string
	Metadata map[string]interface{}
}

func NewNotificationRepository(q Querier) NotificationRepository {
	return &notificationRepository{q: q}
}

func (r *notificationRepository) Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error) {
	const query = `
		INSERT INTO dispatch.notifications (event_type, severity, title, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING notification_id, event_type, severity, title, message, metadata, created_at, read_at
	`

	var metadata interface{}
	if len(params.Metadata) > 0 {
		bytes, err := json.Marshal(params.Metadata)
		if err != nil {
			return models.Notification{}, fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = bytes
	}

	row := r.q.QueryRowContext(ctx, query, params.Event, params.Severity, params.Title, params.Message, metadata)
	return scanNotification(row)
}

func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	const query = `
		SELECT notification_id, event_type, severity, title, message, metadata, created_at, read_at
		FROM dispatch.notifications
		ORDER BY created_at DESC, notification_id DESC
		LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID int64) (models.Notification, error) {
	const query = `
		UPDATE dispatch.notifications
		SET read_at = COALESCE(read_at, NOW())
		WHERE notification_id = $1
		RETURNING notification_id, event_type, severity, title, message, metadata, created_at, read_at
	`
	notif, err := scanNotification(r.q.QueryRowContext(ctx, query, notificationID))
	if err != nil {
		return models.Notification{}, classify(err)
	}
	return notif, nil
}

func scanNotification(scanner rowScanner) (models.Notification, error) {
	var (
		notif       models.Notification
		metadataRaw []byte
		readAt      sql.NullTime
	)

	if err := scanner.Scan(
		&notif.ID,
		&notif.EventType,
		&notif.Severity,
		&notif.Title,
		&notif.Message,
		&metadataRaw,
		&notif.CreatedAt,
		&readAt,
	); err != nil {
		return models.Notification{}, err
	}

	if len(metadataRaw) > 0 {
		notif.Metadata = metadataRaw
	}
	if readAt.Valid {
		t := readAt.Time
		notif.ReadAt = &t
	}

	return notif, nil
}
