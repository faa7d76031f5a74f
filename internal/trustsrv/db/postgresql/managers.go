// Package postgresql implements the trust store on PostgreSQL with
// handwritten SQL over a scoped connection.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dbmanager"
)

// Registry Manager: entities, certificates, signing keys
type registryManager struct {
	c dbmanager.ScopedConn
}

func (rm *registryManager) conn() *sql.Conn {
	return rm.c.Conn()
}

func newRegistryManager(c dbmanager.ScopedConn) *registryManager {
	return &registryManager{c: c}
}

// Signature Manager: signatures and verification events
type signatureManager struct {
	c dbmanager.ScopedConn
}

func (sm *signatureManager) conn() *sql.Conn {
	return sm.c.Conn()
}

func newSignatureManager(c dbmanager.ScopedConn) *signatureManager {
	return &signatureManager{c: c}
}

// Connection Manager
type connectionManager struct {
	c dbmanager.ScopedConn
}

func newConnectionManager(c dbmanager.ScopedConn) *connectionManager {
	return &connectionManager{c: c}
}

func (cm *connectionManager) AddScope(ctx context.Context, scope, value string) error {
	return cm.c.AddScope(ctx, scope, value)
}

func (cm *connectionManager) DropScope(ctx context.Context, scope string) error {
	return cm.c.DropScope(ctx, scope)
}

func (cm *connectionManager) DropAllScopes(ctx context.Context) error {
	return cm.c.DropAllScopes(ctx)
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}
