package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// RuntimeConfig holds secrets generated on first start and persisted in a
// restricted file: the key-blob encryption password, the operator password
// hash, and the salt used when hashing client IPs.
type RuntimeConfig struct {
	EncryptionKey        string `json:"encryption_key"`
	OperatorPasswordHash string `json:"operator_password_hash"`
	IPHashSalt           string `json:"ip_hash_salt"`
}

func generateRandomSecret(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	secret := base64.URLEncoding.EncodeToString(randomBytes)
	if len(secret) > length {
		secret = secret[:length]
	}

	return secret, nil
}

func getRuntimeConfigDir() string {
	return Config().RuntimeConfigDir + "/.trustsrv"
}

func runtimeConfigPath() string {
	return filepath.Join(getRuntimeConfigDir(), "runtime_config.json")
}

func readRuntimeConfig() (*RuntimeConfig, error) {
	file, err := os.Open(runtimeConfigPath())
	if err != nil {
		return nil, fmt.Errorf("error opening runtime config file: %w", err)
	}
	defer file.Close()

	var runtimeConfig RuntimeConfig
	if err := json.NewDecoder(file).Decode(&runtimeConfig); err != nil {
		return nil, fmt.Errorf("error decoding runtime config file: %w", err)
	}
	return &runtimeConfig, nil
}

func writeRuntimeConfig(runtimeConfig *RuntimeConfig) error {
	file, err := os.OpenFile(runtimeConfigPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("error creating runtime config file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(runtimeConfig); err != nil {
		return fmt.Errorf("error encoding runtime config: %w", err)
	}
	return nil
}

// SetOperatorPassword stores the bcrypt hash of the operator password in
// the runtime config.
func SetOperatorPassword(passwordHash string) error {
	if _, err := os.Stat(runtimeConfigPath()); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("runtime config file does not exist: %s", runtimeConfigPath())
		}
		return fmt.Errorf("error checking runtime config file: %w", err)
	}

	runtimeConfig, err := readRuntimeConfig()
	if err != nil {
		return err
	}
	runtimeConfig.OperatorPasswordHash = passwordHash

	if err := writeRuntimeConfig(runtimeConfig); err != nil {
		return err
	}

	Config().OperatorPasswordHash = passwordHash

	log.Info().Msg("Operator password updated in runtime config")
	return nil
}

// Init loads or creates the runtime config, populating the key encryption
// password, operator password hash, and IP hash salt.
func Init() {
	log.Info().Msg("Initializing runtime config")

	runtimeConfigDir := getRuntimeConfigDir()
	log.Info().Msgf("Runtime config dir: %s", runtimeConfigDir)
	if err := os.MkdirAll(runtimeConfigDir, 0700); err != nil {
		log.Error().Err(err).Msg("Error creating runtime config dir")
		os.Exit(1)
	}

	if _, err := os.Stat(runtimeConfigPath()); err == nil {
		log.Info().Msg("Runtime config file exists, reading values")
		runtimeConfig, err := readRuntimeConfig()
		if err != nil {
			log.Error().Err(err).Msg("Error reading runtime config file")
			os.Exit(1)
		}

		if runtimeConfig.EncryptionKey != "" {
			Config().Auth.KeyEncryptionPasswd = runtimeConfig.EncryptionKey
		}
		if runtimeConfig.OperatorPasswordHash != "" {
			Config().OperatorPasswordHash = runtimeConfig.OperatorPasswordHash
		}
		if runtimeConfig.IPHashSalt == "" {
			// Older runtime configs predate IP hashing; backfill the salt.
			salt, err := generateRandomSecret(32)
			if err != nil {
				log.Error().Err(err).Msg("Error generating IP hash salt")
				os.Exit(1)
			}
			runtimeConfig.IPHashSalt = salt
			if err := writeRuntimeConfig(runtimeConfig); err != nil {
				log.Error().Err(err).Msg("Error updating runtime config")
				os.Exit(1)
			}
		}
		Config().IPHashSalt = runtimeConfig.IPHashSalt
	} else if os.IsNotExist(err) {
		log.Info().Msg("Runtime config file doesn't exist, creating with new secrets")

		encryptionKey, err := generateRandomSecret(64)
		if err != nil {
			log.Error().Err(err).Msg("Error generating random encryption key")
			os.Exit(1)
		}
		ipHashSalt, err := generateRandomSecret(32)
		if err != nil {
			log.Error().Err(err).Msg("Error generating IP hash salt")
			os.Exit(1)
		}

		Config().Auth.KeyEncryptionPasswd = encryptionKey
		Config().IPHashSalt = ipHashSalt

		runtimeConfig := &RuntimeConfig{
			EncryptionKey: encryptionKey,
			IPHashSalt:    ipHashSalt,
		}

		if err := writeRuntimeConfig(runtimeConfig); err != nil {
			log.Error().Err(err).Msg("Error writing runtime config")
			os.Exit(1)
		}

		log.Info().Msgf("Created runtime config file: %s", runtimeConfigPath())
	} else {
		log.Error().Err(err).Msg("Error checking runtime config file")
		os.Exit(1)
	}
}
