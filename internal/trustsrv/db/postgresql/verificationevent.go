package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

const eventColumns = `event_id, tenant_id, jti, hash_prefix, ip_hash, user_agent,
		country, verdict, reason, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.VerificationEvent, error) {
	var e models.VerificationEvent
	err := row.Scan(&e.EventID, &e.TenantID, &e.Jti, &e.HashPrefix, &e.IPHash, &e.UserAgent,
		&e.Country, &e.Verdict, &e.Reason, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateVerificationEvent appends one verification attempt to the audit
// trail. Verification is public, so the tenant may be absent from the
// context; it is then resolved from the signature record, or recorded as ''
// when no signature matched.
func (sm *signatureManager) CreateVerificationEvent(ctx context.Context, event *models.VerificationEvent) apperrors.Error {
	if event.Verdict == "" {
		return dberror.ErrInvalidInput.Msg("event verdict is required")
	}
	tenantID := trustcommon.GetTenantID(ctx)

	query := `
		INSERT INTO verification_events (tenant_id, jti, hash_prefix, ip_hash, user_agent, country, verdict, reason)
		VALUES (COALESCE(NULLIF($1, ''), (SELECT tenant_id FROM signatures WHERE jti = $2), ''),
			$2, $3, $4, $5, $6, $7, $8)
		RETURNING event_id, tenant_id, created_at;
	`

	row := sm.conn().QueryRowContext(ctx, query, tenantID, event.Jti, event.HashPrefix,
		event.IPHash, event.UserAgent, event.Country, event.Verdict, event.Reason)
	if err := row.Scan(&event.EventID, &event.TenantID, &event.CreatedAt); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to insert verification event")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// ListVerificationEvents returns the most recent events for a jti.
func (sm *signatureManager) ListVerificationEvents(ctx context.Context, jti string, limit int) ([]*models.VerificationEvent, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + eventColumns + `
		FROM verification_events
		WHERE tenant_id = $1 AND jti = $2
		ORDER BY created_at DESC
		LIMIT $3;
	`

	rows, err := sm.conn().QueryContext(ctx, query, tenantID, jti, limit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("jti", jti).Msg("failed to list verification events")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var events []*models.VerificationEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan verification event")
			return nil, dberror.ErrDatabase.Err(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return events, nil
}

// GetLatestSuccessEvent returns the most recent VALID event for a jti, used
// by the replay heuristic. The lookup is global: jtis are unique across
// tenants and the caller is usually unauthenticated.
func (sm *signatureManager) GetLatestSuccessEvent(ctx context.Context, jti string) (*models.VerificationEvent, apperrors.Error) {
	query := `
		SELECT ` + eventColumns + `
		FROM verification_events
		WHERE jti = $1 AND verdict IN ('VALID', 'VALID_WITH_WARNING')
		ORDER BY created_at DESC
		LIMIT 1;
	`

	event, err := scanEvent(sm.conn().QueryRowContext(ctx, query, jti))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("no prior successful verification")
		}
		log.Ctx(ctx).Error().Err(err).Str("jti", jti).Msg("failed to get latest success event")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return event, nil
}
