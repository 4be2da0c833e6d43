package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

// InAppNotification is one persisted read/unread record for one user role.
type InAppNotification struct {
	ID            string
	UserRoleID    string
	InnovationID  string
	Context       domain.InAppContext
	Params        map[string]any
	CorrelationID string
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// InAppRepository persists the in-app channel records.
type InAppRepository interface {
	// CreateBatch inserts one record per target role id. An empty role list
	// is a no-op, not an error.
	CreateBatch(ctx context.Context, data domain.InAppEnvelopeData) ([]InAppNotification, error)
	ListUnread(ctx context.Context, userRoleID string, limit, offset int) ([]*InAppNotification, error)
	CountUnread(ctx context.Context, userRoleID string) (int, error)
	MarkAsRead(ctx context.Context, id, userRoleID string) error
}

type pgInAppRepo struct {
	db *pgxpool.Pool
}

func NewInAppRepository(db *pgxpool.Pool) InAppRepository {
	return &pgInAppRepo{db: db}
}

func (p *pgInAppRepo) CreateBatch(ctx context.Context, data domain.InAppEnvelopeData) ([]InAppNotification, error) {
	if len(data.UserRoleIDs) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO in_app_notifications (
			id, user_role_id, innovation_id,
			context_type, context_detail, context_id,
			params, correlation_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	created := make([]InAppNotification, 0, len(data.UserRoleIDs))
	for _, roleID := range data.UserRoleIDs {
		n := InAppNotification{
			ID:            uuid.NewString(),
			UserRoleID:    roleID,
			InnovationID:  data.InnovationID,
			Context:       data.Context,
			Params:        data.Params,
			CorrelationID: data.NotificationID,
		}
		err := p.db.QueryRow(ctx, query,
			n.ID,
			n.UserRoleID,
			n.InnovationID,
			n.Context.Type,
			n.Context.Detail,
			n.Context.ID,
			n.Params,
			n.CorrelationID,
		).Scan(&n.CreatedAt)
		if err != nil {
			return created, err
		}
		created = append(created, n)
	}

	return created, nil
}

func (p *pgInAppRepo) ListUnread(ctx context.Context, userRoleID string, limit, offset int) ([]*InAppNotification, error) {
	query := `
		SELECT id, user_role_id, innovation_id,
		       context_type, context_detail, context_id,
		       params, correlation_id, read_at, created_at
		FROM in_app_notifications
		WHERE user_role_id = $1 AND read_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userRoleID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*InAppNotification
	for rows.Next() {
		var n InAppNotification
		err := rows.Scan(
			&n.ID,
			&n.UserRoleID,
			&n.InnovationID,
			&n.Context.Type,
			&n.Context.Detail,
			&n.Context.ID,
			&n.Params,
			&n.CorrelationID,
			&n.ReadAt,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return notifications, nil
}

func (p *pgInAppRepo) CountUnread(ctx context.Context, userRoleID string) (int, error) {
	var count int
	err := p.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM in_app_notifications
		WHERE user_role_id = $1 AND read_at IS NULL
	`, userRoleID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgInAppRepo) MarkAsRead(ctx context.Context, id, userRoleID string) error {
	ct, err := p.db.Exec(ctx, `
		UPDATE in_app_notifications
		SET read_at = NOW()
		WHERE id = $1 AND user_role_id = $2 AND read_at IS NULL
	`, id, userRoleID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
