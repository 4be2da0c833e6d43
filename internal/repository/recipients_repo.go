package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
)

// RecipientsRepository implements the collaborator boundary against the
// case-management store: recipient criteria in, addressable recipients
// out. Results are resolved fresh per call — never cached across events.
type RecipientsRepository struct {
	db *pgxpool.Pool
}

func NewRecipientsRepository(db *pgxpool.Pool) *RecipientsRepository {
	return &RecipientsRepository{db: db}
}

func (r *RecipientsRepository) InnovationInfo(ctx context.Context, innovationID string) (*domain.InnovationInfo, error) {
	query := `
		SELECT i.id, i.name, i.owner_id, u.identity_id
		FROM innovations i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1
	`

	var info domain.InnovationInfo
	err := r.db.QueryRow(ctx, query, innovationID).Scan(
		&info.ID,
		&info.Name,
		&info.OwnerID,
		&info.OwnerIdentityID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return &info, nil
}

func (r *RecipientsRepository) InnovationActiveRecipients(ctx context.Context, innovationID string) ([]domain.Recipient, error) {
	query := `
		SELECT ur.user_id, u.identity_id, ur.id, ur.role,
		       COALESCE(ur.organisation_unit_id, ''), ur.is_active
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role = 'INNOVATOR'
		  AND (
		       ur.user_id = (SELECT owner_id FROM innovations WHERE id = $1)
		    OR ur.user_id IN (
		         SELECT user_id FROM innovation_collaborators
		         WHERE innovation_id = $1 AND status = 'ACTIVE'
		       )
		  )
	`

	rows, err := r.db.Query(ctx, query, innovationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func (r *RecipientsRepository) ThreadFollowers(ctx context.Context, threadID string) ([]domain.Recipient, error) {
	query := `
		SELECT ur.user_id, u.identity_id, ur.id, ur.role,
		       COALESCE(ur.organisation_unit_id, ''), ur.is_active
		FROM thread_followers tf
		JOIN user_roles ur ON ur.id = tf.user_role_id
		JOIN users u ON u.id = ur.user_id
		WHERE tf.thread_id = $1
	`

	rows, err := r.db.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func (r *RecipientsRepository) NeedsAssessmentRecipients(ctx context.Context) ([]domain.Recipient, error) {
	query := `
		SELECT ur.user_id, u.identity_id, ur.id, ur.role,
		       COALESCE(ur.organisation_unit_id, ''), ur.is_active
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role = 'ASSESSMENT' AND ur.is_active = true
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func (r *RecipientsRepository) UnitAccessors(ctx context.Context, innovationID string, unitIDs []string) ([]domain.Recipient, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ur.user_id, u.identity_id, ur.id, ur.role,
		       COALESCE(ur.organisation_unit_id, ''), ur.is_active
		FROM support_assignments sa
		JOIN user_roles ur ON ur.id = sa.user_role_id
		JOIN users u ON u.id = ur.user_id
		WHERE sa.innovation_id = $1
		  AND ur.organisation_unit_id = ANY($2)
		  AND ur.role IN ('ACCESSOR', 'QUALIFYING_ACCESSOR')
	`

	rows, err := r.db.Query(ctx, query, innovationID, unitIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func (r *RecipientsRepository) DomainContext(ctx context.Context, roleID string) (*domain.DomainContext, error) {
	query := `
		SELECT ur.user_id, u.identity_id, ur.id, ur.role,
		       COALESCE(ur.organisation_unit_id, ''),
		       COALESCE(u.display_name, ''), COALESCE(u.email, '')
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.id = $1 AND ur.is_active = true
	`

	var dctx domain.DomainContext
	err := r.db.QueryRow(ctx, query, roleID).Scan(
		&dctx.UserID,
		&dctx.IdentityID,
		&dctx.RoleID,
		&dctx.Role,
		&dctx.UnitID,
		&dctx.DisplayName,
		&dctx.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return &dctx, nil
}

// IdentityInfo is the directory lookup; in production the directory is an
// external identity provider reached through this same narrow call.
func (r *RecipientsRepository) IdentityInfo(ctx context.Context, identityIDs []string) (map[string]domain.IdentityInfo, error) {
	if len(identityIDs) == 0 {
		return map[string]domain.IdentityInfo{}, nil
	}

	query := `
		SELECT identity_id, COALESCE(display_name, ''), COALESCE(email, '')
		FROM users
		WHERE identity_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, identityIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := make(map[string]domain.IdentityInfo, len(identityIDs))
	for rows.Next() {
		var id string
		var info domain.IdentityInfo
		if err := rows.Scan(&id, &info.DisplayName, &info.Email); err != nil {
			return nil, err
		}
		infos[id] = info
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return infos, nil
}

func scanRecipients(rows pgx.Rows) ([]domain.Recipient, error) {
	var recipients []domain.Recipient
	for rows.Next() {
		var rec domain.Recipient
		err := rows.Scan(
			&rec.UserID,
			&rec.IdentityID,
			&rec.RoleID,
			&rec.Role,
			&rec.UnitID,
			&rec.IsActive,
		)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return recipients, nil
}
