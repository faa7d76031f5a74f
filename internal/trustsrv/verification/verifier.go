package verification

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// SignatureReader is the subset of the trust store the verifier needs.
type SignatureReader interface {
	GetSignature(ctx context.Context, jti string) (*models.Signature, apperrors.Error)
	GetEntity(ctx context.Context, entityID uuid.UUID) (*models.Entity, apperrors.Error)
}

// ContextBuilder reconstructs the usage context to recompute a hash from,
// given the stored signature record. Full-context verification needs the
// record because the content variant embeds the recorded issuance
// timestamp in its serialization.
type ContextBuilder func(sig *models.Signature) (signing.Context, apperrors.Error)

// Verifier classifies verification attempts. Every attempt is logged
// through the event logger regardless of outcome.
type Verifier struct {
	store  SignatureReader
	keys   keymanager.KeyManager
	events *EventLogger
}

func NewVerifier(store SignatureReader, keys keymanager.KeyManager, events *EventLogger) *Verifier {
	return &Verifier{store: store, keys: keys, events: events}
}

var (
	jtiShape        = regexp.MustCompile(`^[A-Za-z0-9_-]{8,32}$`)
	hashPrefixShape = regexp.MustCompile(`^[0-9a-f]{8,64}$`)
)

// VerifyBadge classifies a badge-link verification attempt: a jti plus the
// hash prefix carried in the verify URL. Decision order is fixed and first
// match wins; the outcome is always a Result, never an error.
func (v *Verifier) VerifyBadge(ctx context.Context, jti, hashPrefix string, requester Requester) *Result {
	result, sig := v.classify(ctx, jti, hashPrefix, true, nil)
	if result.Verdict.IsSuccess() {
		result.HashOnly = true
	}
	v.finish(ctx, jti, hashPrefix, requester, result, sig, false)
	return result
}

// VerifyContext classifies a full-context verification attempt: the caller
// supplies the original context so its hash can be recomputed and compared
// against what was signed. The attempt can name the record by jti, by the
// issued token, or both; a supplied token is verified first and its claims
// fill in whatever the caller omitted. A prior success from a different
// client downgrades VALID to VALID_WITH_WARNING.
func (v *Verifier) VerifyContext(ctx context.Context, jti, hashPrefix, token string, build ContextBuilder, requester Requester) *Result {
	if token != "" {
		claims, err := signing.ParseToken(ctx, v.keys, token)
		if err != nil {
			result := &Result{Verdict: VerdictFraudAlert, Reason: ReasonInvalidSignature}
			v.finish(ctx, jti, hashPrefix, requester, result, nil, true)
			return result
		}
		if jti != "" && jti != claims.ID {
			result := &Result{Verdict: VerdictFraudAlert, Reason: ReasonInvalidSignature,
				Message: "token was issued for a different token id"}
			v.finish(ctx, jti, hashPrefix, requester, result, nil, true)
			return result
		}
		jti = claims.ID
		if hashPrefix == "" {
			hashPrefix = claims.CtxHash
		}
	}
	result, sig := v.classify(ctx, jti, hashPrefix, false, build)
	v.finish(ctx, jti, hashPrefix, requester, result, sig, true)
	return result
}

// classify runs the decision ladder and returns the verdict plus the
// resolved signature (nil when resolution failed).
func (v *Verifier) classify(ctx context.Context, jti, hashPrefix string, requireHash bool, build ContextBuilder) (*Result, *models.Signature) {
	// 1. Input shape
	if jti == "" || !jtiShape.MatchString(jti) {
		return &Result{Verdict: VerdictInvalidInput, Message: "malformed token id"}, nil
	}
	if hashPrefix != "" && !hashPrefixShape.MatchString(hashPrefix) {
		return &Result{Verdict: VerdictInvalidInput, Message: "malformed hash"}, nil
	}

	// 2. Record lookup
	sig, err := v.store.GetSignature(ctx, jti)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return &Result{Verdict: VerdictNotFound}, nil
		}
		return &Result{Verdict: VerdictError, Message: "verification unavailable"}, nil
	}

	// 3. Revocation
	if sig.Revoked {
		return &Result{Verdict: VerdictRevoked}, sig
	}

	// 4. Expiry
	if sig.IsExpired(time.Now()) {
		return &Result{Verdict: VerdictExpired}, sig
	}

	// 5. Missing hash
	if hashPrefix == "" && requireHash {
		return &Result{Verdict: VerdictFraudAlert, Reason: ReasonMissingHash}, sig
	}

	// 6. Hash prefix mismatch
	if hashPrefix != "" && !signing.EqualHash(sig.CtxHash[:len(hashPrefix)], hashPrefix) {
		if build != nil {
			return &Result{Verdict: VerdictTampered}, sig
		}
		return &Result{Verdict: VerdictFraudAlert, Reason: ReasonHashMismatch}, sig
	}

	// 7. Token signature recheck
	if _, err := signing.ParseToken(ctx, v.keys, sig.Token); err != nil {
		return &Result{Verdict: VerdictFraudAlert, Reason: ReasonInvalidSignature}, sig
	}

	// 8. Full-context recompute. A nil context from the builder means the
	// caller withheld the original content: the prefix match above stands
	// alone and the verdict says so.
	if build != nil {
		c, err := build(sig)
		if err != nil {
			return &Result{Verdict: VerdictInvalidInput, Message: err.Error()}, sig
		}
		if c == nil {
			if hashPrefix == "" {
				return &Result{Verdict: VerdictFraudAlert, Reason: ReasonMissingHash}, sig
			}
			return &Result{Verdict: VerdictValid, HashOnly: true}, sig
		}
		canonical, err := c.Canonicalize()
		if err != nil {
			return &Result{Verdict: VerdictInvalidInput, Message: err.Error()}, sig
		}
		if !signing.EqualHash(sig.CtxHash, signing.HashContent(canonical)) {
			return &Result{Verdict: VerdictTampered}, sig
		}
	}

	// 9. Valid
	return &Result{Verdict: VerdictValid}, sig
}

// finish applies the replay downgrade, attaches badge details on success,
// and records the attempt.
func (v *Verifier) finish(ctx context.Context, jti, hashPrefix string, requester Requester, result *Result, sig *models.Signature, replayCheck bool) {
	if result.Verdict == VerdictValid && replayCheck && config.Config().Verification.ReplayScopeStrict {
		if v.events.PriorSuccessFromDifferentClient(ctx, jti, requester) {
			result.Verdict = VerdictValidWithWarning
			result.Reason = ReasonReplaySuspected
			result.Message = "previously verified from a different client"
		}
	}

	if result.Verdict.IsSuccess() && sig != nil {
		result.Badge = v.badgeDetails(ctx, sig)
	}

	eventJti := ""
	if sig != nil {
		eventJti = sig.Jti
	}
	v.events.Log(ctx, eventJti, hashPrefix, requester, result.Verdict, result.Reason)
}

func (v *Verifier) badgeDetails(ctx context.Context, sig *models.Signature) *BadgeDetails {
	details := &BadgeDetails{
		Jti:       sig.Jti,
		CtxType:   string(sig.CtxType),
		IssuedAt:  sig.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt: sig.ExpiresAt.UTC().Format(time.RFC3339),
	}
	// Public verification carries no tenant of its own; the signature
	// record names the tenant the entity belongs to.
	ctx = trustcommon.WithTenantID(ctx, sig.TenantID)
	// Entity details are decorative on the badge; their absence is not a
	// verification failure.
	if entity, err := v.store.GetEntity(ctx, sig.EntityID); err == nil {
		details.EntityName = entity.DisplayName()
		details.EntityType = string(entity.Type)
		details.ValidationLevel = string(entity.ValidationLevel)
	}
	return details
}
