// Package config provides credential hashing for API token issuance.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// CredentialConfig holds configuration for hashing and verifying the admin
// secret that gates token issuance.
type CredentialConfig struct {
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewCredentialConfig creates a credential configuration from environment
// variables. It reads BCRYPT_COST (default: 12) and optionally SECRET_PEPPER.
func NewCredentialConfig() (*CredentialConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	cfg := &CredentialConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("SECRET_PEPPER"), // empty if not set
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize validates the configuration.
func (c *CredentialConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashSecret hashes a secret using bcrypt (with optional pepper).
func (c *CredentialConfig) HashSecret(secret string) (string, error) {
	if c.Pepper != "" {
		secret = secret + c.Pepper
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	return string(hash), nil
}

// VerifySecret verifies a secret against a stored hash (with optional pepper).
func (c *CredentialConfig) VerifySecret(secret, storedHash string) bool {
	if c.Pepper != "" {
		secret = secret + c.Pepper
	}

	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}
