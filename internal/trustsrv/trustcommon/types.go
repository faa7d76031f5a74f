package trustcommon

import (
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
)

type TenantId string

// EntityType identifies the kind of certified subject.
type EntityType string

const (
	EntityTypeBusiness   EntityType = "BUSINESS"
	EntityTypeIndividual EntityType = "INDIVIDUAL"
)

func (t EntityType) IsValid() bool {
	return t == EntityTypeBusiness || t == EntityTypeIndividual
}

// ValidationLevel is the trust tier assigned to an entity.
type ValidationLevel string

const (
	ValidationLevelBronze ValidationLevel = "BRONZE"
	ValidationLevelSilver ValidationLevel = "SILVER"
	ValidationLevelGold   ValidationLevel = "GOLD"
)

func (l ValidationLevel) IsValid() bool {
	switch l {
	case ValidationLevelBronze, ValidationLevelSilver, ValidationLevelGold:
		return true
	}
	return false
}

// CertificateStatus is the lifecycle state of a certificate.
type CertificateStatus string

const (
	CertificateStatusPending CertificateStatus = "PENDING"
	CertificateStatusActive  CertificateStatus = "ACTIVE"
	CertificateStatusRevoked CertificateStatus = "REVOKED"
	CertificateStatusExpired CertificateStatus = "EXPIRED"
)

func (s CertificateStatus) IsValid() bool {
	switch s {
	case CertificateStatusPending, CertificateStatusActive, CertificateStatusRevoked, CertificateStatusExpired:
		return true
	}
	return false
}

// ContextType tags the kind of content a signature is bound to. The well
// known types get dedicated handling; any other non-empty tag is accepted
// and treated as free-form content.
type ContextType string

const (
	ContextTypeEmail         ContextType = "email"
	ContextTypeDocument      ContextType = "document"
	ContextTypeCertificate   ContextType = "certificate"
	ContextTypeIdentityBadge ContextType = "identity_badge"
)

const (
	// MaxContextTypeLength bounds caller-supplied context type tags.
	MaxContextTypeLength = 64
)

func (t ContextType) IsValid() bool {
	return t != "" && len(t) <= MaxContextTypeLength
}

type EntityId = uuid.UUID
type CertificateId = uuid.UUID
