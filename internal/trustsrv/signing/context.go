// Package signing implements the context-bound signature protocol:
// canonicalization of usage contexts, content hashing, and issuance of
// signed tokens bound to a certificate, entity, and context fingerprint.
package signing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/anand-gl/jsoncanonicalizer"
	"golang.org/x/text/unicode/norm"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// Context is a usage context a signature can be bound to. Canonicalize
// returns one deterministic byte serialization of the context so hashing is
// reproducible regardless of incidental whitespace or case differences.
type Context interface {
	Type() trustcommon.ContextType
	Canonicalize() ([]byte, apperrors.Error)
}

// EmailContext binds a signature to a specific email: sender, recipient,
// subject, date, and optionally the body.
type EmailContext struct {
	From    string `json:"from" mapstructure:"from" validate:"required"`
	To      string `json:"to" mapstructure:"to" validate:"required"`
	Subject string `json:"subject" mapstructure:"subject" validate:"required"`
	Date    string `json:"date" mapstructure:"date" validate:"required"`
	Body    string `json:"body,omitempty" mapstructure:"body"`
}

func (e *EmailContext) Type() trustcommon.ContextType {
	return trustcommon.ContextTypeEmail
}

// normalizeField trims the field, collapses all internal whitespace runs
// (including CRLF line endings an email client may introduce) to single
// spaces, and applies Unicode NFC so visually identical strings hash
// identically.
func normalizeField(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// emailDateLayouts are the date formats accepted in email contexts.
var emailDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate parses a caller-supplied date string and reformats it as an
// RFC 3339 UTC instant. An unparseable date is an error; it never degrades
// into an epoch-like artifact that would silently change the hash.
func NormalizeDate(date string) (string, apperrors.Error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", ErrInvalidDate.Msg("date is required")
	}
	for _, layout := range emailDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", ErrInvalidDate.Msg("unparseable date: " + date)
}

// Canonicalize serializes the email context as RFC 8785 canonical JSON of
// its normalized fields. From and to are lowercased; the date is parsed and
// reformatted to a single UTC instant.
func (e *EmailContext) Canonicalize() ([]byte, apperrors.Error) {
	if e.From == "" || e.To == "" || e.Subject == "" {
		return nil, ErrInvalidContext.Msg("from, to, and subject are required")
	}

	date, err := NormalizeDate(e.Date)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"from":    strings.ToLower(normalizeField(e.From)),
		"to":      strings.ToLower(normalizeField(e.To)),
		"subject": normalizeField(e.Subject),
		"date":    date,
	}
	if body := normalizeField(e.Body); body != "" {
		fields["body"] = body
	}

	return canonicalJSON(fields)
}

// ContentContext binds a signature to an arbitrary content string. The
// issuance timestamp is part of the serialization, which makes this variant
// issuance-time-scoped: the hash cannot be recomputed later without the
// recorded timestamp.
type ContentContext struct {
	EntityID    uuid.UUID
	ContextType trustcommon.ContextType
	ContentData string
	IssuedAt    time.Time
}

func (c *ContentContext) Type() trustcommon.ContextType {
	return c.ContextType
}

func (c *ContentContext) Canonicalize() ([]byte, apperrors.Error) {
	if strings.TrimSpace(c.ContentData) == "" {
		return nil, ErrEmptyContent
	}
	if !c.ContextType.IsValid() {
		return nil, ErrInvalidContextType
	}

	return canonicalJSON(map[string]string{
		"entityId":    c.EntityID.String(),
		"contextType": string(c.ContextType),
		"contextData": norm.NFC.String(c.ContentData),
		"timestamp":   c.IssuedAt.UTC().Format(time.RFC3339),
	})
}

// canonicalJSON marshals v and transforms the result into RFC 8785
// canonical form.
func canonicalJSON(v any) ([]byte, apperrors.Error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, ErrInvalidContext.MsgErr("unable to serialize context", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, ErrInvalidContext.MsgErr("unable to canonicalize context", err)
	}
	return canonical, nil
}
