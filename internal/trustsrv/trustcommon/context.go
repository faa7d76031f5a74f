// Package trustcommon provides the shared types and context plumbing used
// across the trust service: entity/certificate enums, request context
// accessors, and key-blob encryption.
package trustcommon

import (
	"context"
)

// ctxKeyType represents the type for all context keys
type ctxKeyType string

const (
	ctxTenantIdKey    ctxKeyType = "TrustTenantId"
	ctxOperatorKey    ctxKeyType = "TrustOperator"
	ctxTestContextKey ctxKeyType = "TrustTestContext"
)

// OperatorContext carries the identity of an authenticated operator.
type OperatorContext struct {
	// Subject is the operator login name from the access token
	Subject string
	// Admin is true when the token carries the admin claim
	Admin bool
}

// WithTenantID sets the tenant ID in the provided context.
func WithTenantID(ctx context.Context, tenantId TenantId) context.Context {
	return context.WithValue(ctx, ctxTenantIdKey, tenantId)
}

// GetTenantID retrieves the tenant ID from the provided context.
func GetTenantID(ctx context.Context) TenantId {
	if tenantId, ok := ctx.Value(ctxTenantIdKey).(TenantId); ok {
		return tenantId
	}
	return ""
}

// WithOperator sets the operator context in the provided context.
func WithOperator(ctx context.Context, op *OperatorContext) context.Context {
	return context.WithValue(ctx, ctxOperatorKey, op)
}

// GetOperator retrieves the operator context, or nil if unauthenticated.
func GetOperator(ctx context.Context) *OperatorContext {
	if op, ok := ctx.Value(ctxOperatorKey).(*OperatorContext); ok {
		return op
	}
	return nil
}

// WithTestContext marks the context as belonging to a test run.
func WithTestContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxTestContextKey, true)
}

// IsTestContext reports whether the context belongs to a test run.
func IsTestContext(ctx context.Context) bool {
	if v, ok := ctx.Value(ctxTestContextKey).(bool); ok {
		return v
	}
	return false
}
