// internal/pkg/token/manager.go
package token

import (
	"crypto/rsa"
	"fmt"
	"time"
)

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Manager bundles the two issuance modes. They are independent and not
// interchangeable: callers pick one by intent.
type Manager struct {
	Signer    *Signer
	Encryptor *Encryptor
}

func NewManager(cfg Config, priv *rsa.PrivateKey) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token manager requires a signing secret")
	}
	if priv == nil {
		return nil, fmt.Errorf("token manager requires an RSA private key")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Manager{
		Signer:    NewSigner([]byte(cfg.Secret), cfg.Issuer, cfg.Audience, cfg.TTL),
		Encryptor: NewEncryptor(priv, cfg.Issuer, cfg.Audience, cfg.TTL),
	}, nil
}
