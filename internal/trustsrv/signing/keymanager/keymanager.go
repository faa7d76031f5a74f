package keymanager

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// KeyManager defines the interface for key management operations
type KeyManager interface {
	GetActiveKey(ctx context.Context) (*SigningKey, apperrors.Error)
}

// The KeyManager implementation here keeps the process-wide signing key in
// the database, encrypted with a password from the runtime config. Real
// production use should use a KMS.

var (
	keyManagerInstance *keyManager
	keyManagerOnce     sync.Once
)

// GetKeyManager returns the singleton instance of KeyManager
func GetKeyManager() KeyManager {
	keyManagerOnce.Do(func() {
		keyManagerInstance = &keyManager{}
	})
	return keyManagerInstance
}

// SigningKey represents a key pair used for signing tokens
type SigningKey struct {
	KeyID      uuid.UUID
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// keyManager handles the management of signing keys
type keyManager struct {
	activeKey *SigningKey
	mu        sync.RWMutex
}

// GetActiveKey retrieves the active signing key, creating a new one if necessary
func (km *keyManager) GetActiveKey(ctx context.Context) (*SigningKey, apperrors.Error) {
	if km.activeKey != nil {
		return km.activeKey, nil
	}
	return km.retrieveOrCreateKey(ctx)
}

// retrieveOrCreateKey retrieves an existing key or creates a new one
func (km *keyManager) retrieveOrCreateKey(ctx context.Context) (*SigningKey, apperrors.Error) {
	km.mu.Lock()
	defer km.mu.Unlock()

	if km.activeKey != nil {
		return km.activeKey, nil
	}

	var key *models.SigningKey
	err := retry.Do(func() error {
		var err error
		key, err = db.DB(ctx).GetActiveSigningKey(ctx)
		if err != nil {
			if errors.Is(err, dberror.ErrNotFound) {
				return nil
			}
			return retry.Unrecoverable(err)
		}
		return err
	}, retry.Attempts(3), retry.Delay(1*time.Second), retry.DelayType(retry.BackOffDelay))
	if err != nil {
		return nil, apperrors.New("unable to retrieve signing key").Err(err)
	}

	if key == nil {
		// Create new key pair
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unable to generate signing key")
			return nil, apperrors.New("unable to generate signing key").Err(err)
		}

		encKey, err := trustcommon.Encrypt(priv, config.Config().Auth.KeyEncryptionPasswd)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unable to encrypt signing key")
			return nil, apperrors.New("unable to encrypt signing key").Err(err)
		}

		key = &models.SigningKey{
			PublicKey:  pub,
			PrivateKey: encKey,
			IsActive:   true,
		}

		err = retry.Do(func() error {
			return db.DB(ctx).CreateSigningKey(ctx, key)
		}, retry.Attempts(3), retry.Delay(1*time.Second), retry.DelayType(retry.BackOffDelay))
		if err != nil {
			return nil, apperrors.New("unable to create signing key").Err(err)
		}

		km.activeKey = &SigningKey{
			KeyID:      key.KeyID,
			PrivateKey: priv,
			PublicKey:  pub,
		}
	} else {
		// Decrypt the existing key
		decKey, err := trustcommon.Decrypt(key.PrivateKey, config.Config().Auth.KeyEncryptionPasswd)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unable to decrypt signing key")
			return nil, apperrors.New("unable to decrypt signing key").Err(err)
		}

		km.activeKey = &SigningKey{
			KeyID:      key.KeyID,
			PrivateKey: decKey,
			PublicKey:  key.PublicKey,
		}
	}

	return km.activeKey, nil
}

// SetTestKey installs a fixed signing key so tests can mint and verify
// tokens without a database. No-op outside unit test mode.
func SetTestKey(key *SigningKey) {
	if !config.IsTest() {
		return
	}
	km, ok := GetKeyManager().(*keyManager)
	if !ok {
		return
	}
	km.mu.Lock()
	km.activeKey = key
	km.mu.Unlock()
}
