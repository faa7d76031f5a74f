// Package api defines the request and response types of the BlockTrust HTTP
// API, plus a small client for talking to a trust server. Shared between the
// server handlers and the trustctl CLI.
package api

import (
	"encoding/json"
	"time"
)

// SignRequest asks the server to sign free-form content under a certificate.
type SignRequest struct {
	CertificateID   string          `json:"certificateId" validate:"required,uuid"`
	ContextType     string          `json:"contextType" validate:"required,max=64"`
	Content         string          `json:"content" validate:"required"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	ValiditySeconds int64           `json:"validitySeconds,omitempty" validate:"omitempty,min=0"`
}

// IssueRequest asks the server to sign a structured email context.
type IssueRequest struct {
	CertificateID   string          `json:"certificateId" validate:"required,uuid"`
	Context         map[string]any  `json:"context" validate:"required"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	ValiditySeconds int64           `json:"validitySeconds,omitempty" validate:"omitempty,min=0"`
}

// SignatureRsp describes an issued signature.
type SignatureRsp struct {
	Jti       string    `json:"jti"`
	Token     string    `json:"token"`
	VerifyURL string    `json:"verifyUrl"`
	CtxHash   string    `json:"ctxHash"`
	CtxType   string    `json:"ctxType"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Reused    bool      `json:"reused,omitempty"`
}

// VerifyContextRequest carries a full context for recomputation against a
// stored signature. The record is named by jti, by the issued token, or
// both; at least one must be present.
type VerifyContextRequest struct {
	Jti         string         `json:"jti,omitempty"`
	Token       string         `json:"token,omitempty"`
	Hash        string         `json:"hash,omitempty"`
	ContextType string         `json:"contextType" validate:"required,max=64"`
	Context     map[string]any `json:"context,omitempty"`
	Content     string         `json:"content,omitempty"`
}

// BadgeRsp is the badge detail block attached to successful verdicts.
type BadgeRsp struct {
	Jti             string `json:"jti"`
	EntityName      string `json:"entityName,omitempty"`
	EntityType      string `json:"entityType,omitempty"`
	ValidationLevel string `json:"validationLevel,omitempty"`
	CtxType         string `json:"ctxType"`
	IssuedAt        string `json:"issuedAt"`
	ExpiresAt       string `json:"expiresAt"`
}

// VerdictRsp is the verification outcome envelope. Verdicts are data: a
// tampered signature is still HTTP 200.
type VerdictRsp struct {
	Verdict  string    `json:"verdict"`
	Reason   string    `json:"reason,omitempty"`
	Message  string    `json:"message,omitempty"`
	Badge    *BadgeRsp `json:"badge,omitempty"`
	HashOnly bool      `json:"hashOnly,omitempty"`
}

// CreateEntityRequest onboards a new entity.
type CreateEntityRequest struct {
	Type        string `json:"type" validate:"required,oneof=BUSINESS INDIVIDUAL"`
	LegalName   string `json:"legalName,omitempty" validate:"required_if=Type BUSINESS"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email" validate:"required,email"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	Description string `json:"description,omitempty"`
}

// EntityRsp describes an entity.
type EntityRsp struct {
	EntityID        string    `json:"entityId"`
	Type            string    `json:"type"`
	DisplayName     string    `json:"displayName"`
	Email           string    `json:"email"`
	Website         string    `json:"website,omitempty"`
	Description     string    `json:"description,omitempty"`
	ValidationLevel string    `json:"validationLevel"`
	KYCStatus       string    `json:"kycStatus"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateEntityRsp returns the onboarded entity and its pending certificate.
type CreateEntityRsp struct {
	Entity      EntityRsp      `json:"entity"`
	Certificate CertificateRsp `json:"certificate"`
}

// CertificateRsp describes a certificate.
type CertificateRsp struct {
	CertificateID    string     `json:"certificateId"`
	EntityID         string     `json:"entityId"`
	Status           string     `json:"status"`
	Level            string     `json:"level"`
	IssuedAt         *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	RevokedAt        *time.Time `json:"revokedAt,omitempty"`
	RevocationReason string     `json:"revocationReason,omitempty"`
}

// ActivateCertificateRequest activates a pending certificate.
type ActivateCertificateRequest struct {
	ValidityDays int `json:"validityDays,omitempty" validate:"omitempty,min=0"`
}

// ActivateCertificateRsp returns the activated certificate's identity badge.
type ActivateCertificateRsp struct {
	CertificateID string       `json:"certificateId"`
	Status        string       `json:"status"`
	Badge         SignatureRsp `json:"badge"`
}

// RevokeRequest revokes a certificate or signature.
type RevokeRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=256"`
}

// TokenRequest is the operator login request.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenRsp carries a minted access token.
type TokenRsp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerificationEventRsp is one entry of a signature's verification trail.
type VerificationEventRsp struct {
	EventID    int64     `json:"eventId"`
	Jti        string    `json:"jti,omitempty"`
	HashPrefix string    `json:"hashPrefix,omitempty"`
	IPHash     string    `json:"ipHash,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Country    string    `json:"country,omitempty"`
	Verdict    string    `json:"verdict"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
