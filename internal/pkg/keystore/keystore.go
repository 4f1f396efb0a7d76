// internal/pkg/keystore/keystore.go
package keystore

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	xerrors "sentra-auth/internal/pkg/errors"
)

// Store loads or generates persistent key material under a root directory.
// Keys are generated exactly once and reused across restarts; losing them
// would invalidate every cookie and token issued before the restart, so any
// filesystem error here is fatal at startup.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// LoadOrCreate returns the bytes of the key file at name, generating length
// cryptographically random bytes and persisting them on first use. An
// existing file is returned verbatim.
//
// The create path uses O_CREATE|O_EXCL so two processes racing on an absent
// file cannot silently produce divergent keys: the loser re-reads the
// winner's file.
func (s *Store) LoadOrCreate(name string, length int) ([]byte, error) {
	path := filepath.Join(s.root, name)

	b, err := os.ReadFile(path)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read %s: %v", xerrors.ErrKeyStore, path, err)
	}

	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("%w: generate key: %v", xerrors.ErrKeyStore, err)
	}

	if err := s.writeExclusive(path, key); err != nil {
		if errors.Is(err, os.ErrExist) {
			return s.readExisting(path)
		}
		return nil, err
	}
	return key, nil
}

// LoadOrCreateRSA returns the RSA keypair stored as PEM files under privName
// and pubName, generating a fresh bits-sized pair on first use.
func (s *Store) LoadOrCreateRSA(privName, pubName string, bits int) (*rsa.PrivateKey, error) {
	privPath := filepath.Join(s.root, privName)
	pubPath := filepath.Join(s.root, pubName)

	b, err := os.ReadFile(privPath)
	if err == nil {
		return parseRSAPrivatePEM(b)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read %s: %v", xerrors.ErrKeyStore, privPath, err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: generate rsa keypair: %v", xerrors.ErrKeyStore, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal private key: %v", xerrors.ErrKeyStore, err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal public key: %v", xerrors.ErrKeyStore, err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	if err := s.writeExclusive(privPath, privPEM); err != nil {
		if errors.Is(err, os.ErrExist) {
			// Lost the generation race; the winner's pair is authoritative.
			b, rerr := s.readExisting(privPath)
			if rerr != nil {
				return nil, rerr
			}
			return parseRSAPrivatePEM(b)
		}
		return nil, err
	}
	if err := s.writeExclusive(pubPath, pubPEM); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	return priv, nil
}

func (s *Store) writeExclusive(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", xerrors.ErrKeyStore, filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("%w: create %s: %v", xerrors.ErrKeyStore, path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %v", xerrors.ErrKeyStore, path, err)
	}
	return nil
}

func (s *Store) readExisting(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", xerrors.ErrKeyStore, path, err)
	}
	return b, nil
}

func parseRSAPrivatePEM(b []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(b)
	if block == nil || (block.Type != "RSA PRIVATE KEY" && block.Type != "PRIVATE KEY") {
		return nil, fmt.Errorf("%w: invalid PEM private key", xerrors.ErrKeyStore)
	}

	if block.Type == "PRIVATE KEY" {
		// PKCS8 format
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS8 private key: %v", xerrors.ErrKeyStore, err)
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", xerrors.ErrKeyStore)
		}
		return rsaKey, nil
	}

	// PKCS1 format
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse PKCS1 private key: %v", xerrors.ErrKeyStore, err)
	}
	return key, nil
}
