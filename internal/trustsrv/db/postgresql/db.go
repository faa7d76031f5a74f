package postgresql

import (
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dbmanager"
)

// NewTrustStoreDb returns the registry, signature and connection managers
// bound to a single scoped connection.
func NewTrustStoreDb(c dbmanager.ScopedConn) (*registryManager, *signatureManager, *connectionManager) {
	return newRegistryManager(c), newSignatureManager(c), newConnectionManager(c)
}
