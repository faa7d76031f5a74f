// Package verification decides whether a presented badge matches a
// previously issued signature and classifies the outcome. Verdicts are
// data, not errors: every attempt terminates in exactly one verdict and
// callers branch on the closed enum.
package verification

// Verdict is the terminal classification of one verification attempt.
type Verdict string

const (
	VerdictValid            Verdict = "VALID"
	VerdictValidWithWarning Verdict = "VALID_WITH_WARNING"
	VerdictTampered         Verdict = "TAMPERED"
	VerdictFraudAlert       Verdict = "FRAUD_ALERT"
	VerdictExpired          Verdict = "EXPIRED"
	VerdictRevoked          Verdict = "REVOKED"
	VerdictNotFound         Verdict = "NOT_FOUND"
	VerdictRateLimited      Verdict = "RATE_LIMITED"
	VerdictInvalidInput     Verdict = "INVALID_INPUT"
	VerdictError            Verdict = "ERROR"
)

// IsSuccess reports whether the verdict confirms the badge.
func (v Verdict) IsSuccess() bool {
	return v == VerdictValid || v == VerdictValidWithWarning
}

// Reason is the subcode attached to FRAUD_ALERT and warning verdicts.
type Reason string

const (
	ReasonMissingHash      Reason = "MISSING_HASH"
	ReasonHashMismatch     Reason = "HASH_MISMATCH"
	ReasonInvalidSignature Reason = "INVALID_SIGNATURE"
	ReasonReplaySuspected  Reason = "REPLAY_SUSPECTED"
)

// Result is the outcome of a verification attempt: the verdict, an
// optional reason subcode, and badge details disclosed only on success.
type Result struct {
	Verdict Verdict       `json:"verdict"`
	Reason  Reason        `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
	Badge   *BadgeDetails `json:"badge,omitempty"`
	// HashOnly marks verdicts reached without a full-context recompute:
	// the stored hash prefix matched, but the content itself was not
	// re-checked.
	HashOnly bool `json:"hash_only,omitempty"`
}

// BadgeDetails is what a successful verification discloses about the badge
// holder. The signing key and raw context never appear here.
type BadgeDetails struct {
	Jti             string `json:"jti"`
	EntityName      string `json:"entity_name"`
	EntityType      string `json:"entity_type"`
	ValidationLevel string `json:"validation_level"`
	CtxType         string `json:"ctx_type"`
	IssuedAt        string `json:"issued_at"`
	ExpiresAt       string `json:"expires_at"`
}
