package verification

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
)

// EventStore is the subset of the trust store the event logger needs.
type EventStore interface {
	CreateVerificationEvent(ctx context.Context, event *models.VerificationEvent) apperrors.Error
	GetLatestSuccessEvent(ctx context.Context, jti string) (*models.VerificationEvent, apperrors.Error)
}

// EventLogger appends verification attempts to the audit trail. Logging is
// best-effort: a failure to record an event is logged and swallowed so it
// never changes the verdict returned to the caller.
type EventLogger struct {
	store EventStore
}

func NewEventLogger(store EventStore) *EventLogger {
	return &EventLogger{store: store}
}

// Log records one verification attempt. jti may be empty when the attempt
// failed before a signature could be resolved.
func (l *EventLogger) Log(ctx context.Context, jti, hashPrefix string, requester Requester, verdict Verdict, reason Reason) {
	event := &models.VerificationEvent{
		HashPrefix: hashPrefix,
		IPHash:     HashIP(requester.IP),
		UserAgent:  requester.UserAgent,
		Verdict:    string(verdict),
	}
	if jti != "" {
		event.Jti = sql.NullString{String: jti, Valid: true}
	}
	if reason != "" {
		event.Reason = sql.NullString{String: string(reason), Valid: true}
	}
	if requester.Country != "" {
		event.Country = sql.NullString{String: requester.Country, Valid: true}
	}

	if err := l.store.CreateVerificationEvent(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("jti", jti).Str("verdict", string(verdict)).
			Msg("failed to record verification event")
	}
}

// PriorSuccessFromDifferentClient reports whether a previous successful
// verification of this jti came from a different IP or user agent. Used by
// the replay heuristic; store errors read as "no prior success" so the
// heuristic can never fail a verification.
func (l *EventLogger) PriorSuccessFromDifferentClient(ctx context.Context, jti string, requester Requester) bool {
	prior, err := l.store.GetLatestSuccessEvent(ctx, jti)
	if err != nil || prior == nil {
		return false
	}
	if prior.IPHash != "" && prior.IPHash != HashIP(requester.IP) {
		return true
	}
	if prior.UserAgent != "" && prior.UserAgent != requester.UserAgent {
		return true
	}
	return false
}
