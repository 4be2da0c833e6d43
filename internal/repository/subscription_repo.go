package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

// DueNotification is a scheduled row joined with its subscription, as the
// sweep consumes it.
type DueNotification struct {
	Subscription domain.Subscription
	SendDate     time.Time
}

// SubscriptionRepository owns the notify_me_subscriptions and
// scheduled_notifications tables — the only mutable shared state in the
// engine.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userRoleID, innovationID string) ([]*domain.Subscription, error)
	// FindCandidates loads the subscriptions that may match an event: same
	// innovation, same event type, subscriber role still active, and for
	// accessor-type roles the innovation still shared with the role's
	// organisation.
	FindCandidates(ctx context.Context, innovationID string, eventType domain.EventType) ([]*domain.Subscription, error)
	// Unsubscribe soft-deletes the subscription and removes any pending
	// scheduled row in one transaction, so a reader never observes a
	// deleted subscription with a dangling schedule.
	Unsubscribe(ctx context.Context, id, userRoleID string) error

	UpsertScheduled(ctx context.Context, subscriptionID string, sendDate time.Time) error
	// DueScheduled returns rows with send_date in (from, to], skipping rows
	// whose subscription was soft-deleted.
	DueScheduled(ctx context.Context, from, to time.Time) ([]DueNotification, error)
	// DeleteScheduled removes a consumed row. Only the sweep calls this,
	// and only after the outbound enqueue succeeded.
	DeleteScheduled(ctx context.Context, subscriptionID string) error
}

type pgSubscriptionRepo struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) SubscriptionRepository {
	return &pgSubscriptionRepo{db: db}
}

func (p *pgSubscriptionRepo) CreateSubscription(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notify_me_subscriptions (
			id, user_role_id, innovation_id, event_type,
			subscription_type, config
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := p.db.QueryRow(ctx, query,
		s.ID,
		s.UserRoleID,
		s.InnovationID,
		s.Config.EventType,
		s.Config.SubscriptionType,
		s.Config,
	).Scan(&s.CreatedAt)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (p *pgSubscriptionRepo) GetSubscription(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `
		SELECT id, user_role_id, innovation_id, config, created_at, deleted_at
		FROM notify_me_subscriptions
		WHERE id = $1 AND deleted_at IS NULL
	`

	var s domain.Subscription
	err := p.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserRoleID,
		&s.InnovationID,
		&s.Config,
		&s.CreatedAt,
		&s.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (p *pgSubscriptionRepo) ListSubscriptions(ctx context.Context, userRoleID, innovationID string) ([]*domain.Subscription, error) {
	query := `
		SELECT id, user_role_id, innovation_id, config, created_at, deleted_at
		FROM notify_me_subscriptions
		WHERE user_role_id = $1
		  AND ($2 = '' OR innovation_id = $2)
		  AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := p.db.Query(ctx, query, userRoleID, innovationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func (p *pgSubscriptionRepo) FindCandidates(ctx context.Context, innovationID string, eventType domain.EventType) ([]*domain.Subscription, error) {
	query := `
		SELECT s.id, s.user_role_id, s.innovation_id, s.config, s.created_at, s.deleted_at
		FROM notify_me_subscriptions s
		JOIN user_roles r ON r.id = s.user_role_id AND r.is_active = true
		WHERE s.innovation_id = $1
		  AND s.event_type = $2
		  AND s.deleted_at IS NULL
		  AND (
		        r.role NOT IN ('ACCESSOR', 'QUALIFYING_ACCESSOR')
		     OR EXISTS (
		          SELECT 1 FROM innovation_shares sh
		          WHERE sh.innovation_id = s.innovation_id
		            AND sh.organisation_id = r.organisation_id
		        )
		  )
		ORDER BY s.created_at
	`

	rows, err := p.db.Query(ctx, query, innovationID, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func (p *pgSubscriptionRepo) Unsubscribe(ctx context.Context, id, userRoleID string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE notify_me_subscriptions
		SET deleted_at = NOW()
		WHERE id = $1 AND user_role_id = $2 AND deleted_at IS NULL
	`, id, userRoleID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM scheduled_notifications WHERE subscription_id = $1
	`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (p *pgSubscriptionRepo) UpsertScheduled(ctx context.Context, subscriptionID string, sendDate time.Time) error {
	query := `
		INSERT INTO scheduled_notifications (subscription_id, send_date)
		VALUES ($1, $2)
		ON CONFLICT (subscription_id) DO UPDATE SET send_date = EXCLUDED.send_date
	`

	_, err := p.db.Exec(ctx, query, subscriptionID, sendDate)
	return err
}

func (p *pgSubscriptionRepo) DueScheduled(ctx context.Context, from, to time.Time) ([]DueNotification, error) {
	query := `
		SELECT s.id, s.user_role_id, s.innovation_id, s.config, s.created_at, s.deleted_at,
		       n.send_date
		FROM scheduled_notifications n
		JOIN notify_me_subscriptions s ON s.id = n.subscription_id AND s.deleted_at IS NULL
		WHERE n.send_date > $1 AND n.send_date <= $2
		ORDER BY n.send_date
	`

	rows, err := p.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []DueNotification
	for rows.Next() {
		var d DueNotification
		err := rows.Scan(
			&d.Subscription.ID,
			&d.Subscription.UserRoleID,
			&d.Subscription.InnovationID,
			&d.Subscription.Config,
			&d.Subscription.CreatedAt,
			&d.Subscription.DeletedAt,
			&d.SendDate,
		)
		if err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return due, nil
}

func (p *pgSubscriptionRepo) DeleteScheduled(ctx context.Context, subscriptionID string) error {
	_, err := p.db.Exec(ctx, `
		DELETE FROM scheduled_notifications WHERE subscription_id = $1
	`, subscriptionID)
	return err
}

func scanSubscriptions(rows pgx.Rows) ([]*domain.Subscription, error) {
	var subs []*domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		err := rows.Scan(
			&s.ID,
			&s.UserRoleID,
			&s.InnovationID,
			&s.Config,
			&s.CreatedAt,
			&s.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return subs, nil
}
