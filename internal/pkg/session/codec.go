// internal/pkg/session/codec.go
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	xerrors "sentra-auth/internal/pkg/errors"
)

const (
	nonceSize = 12
	tagSize   = 16

	cipherKeySize = 32
	macKeySize    = 64
)

// Codec converts a session State to and from an opaque cookie value.
//
// Wire format: base64(nonce || tag || ciphertext) + "." + base64(hmac).
// AES-256-GCM provides confidentiality and integrity for the payload; the
// HMAC-SHA256 over the envelope is a second, independently keyed integrity
// layer, so a cipher-key leak alone cannot forge sessions.
//
// A Codec is stateless given its two keys and safe for concurrent use.
type Codec struct {
	aead   cipher.AEAD
	macKey []byte
}

func NewCodec(cipherKey, macKey []byte) (*Codec, error) {
	if len(cipherKey) != cipherKeySize {
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d", cipherKeySize, len(cipherKey))
	}
	if len(macKey) != macKeySize {
		return nil, fmt.Errorf("mac key must be %d bytes, got %d", macKeySize, len(macKey))
	}

	block, err := aes.NewCipher(cipherKey)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Codec{aead: aead, macKey: macKey}, nil
}

// Encrypt serializes, encrypts and signs a session state.
func (c *Codec) Encrypt(s *State) (string, error) {
	plain, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, plain, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	buf := make([]byte, 0, nonceSize+tagSize+len(ciphertext))
	buf = append(buf, nonce...)
	buf = append(buf, tag...)
	buf = append(buf, ciphertext...)

	envelope := base64.StdEncoding.EncodeToString(buf)
	return envelope + "." + c.sign(envelope), nil
}

// Decrypt verifies and decodes a cookie value produced by Encrypt.
// Structural problems yield ErrMalformedSession, integrity failures
// ErrTamperedSession. The HMAC is checked before any decoding so forged
// input never reaches the cipher.
func (c *Codec) Decrypt(value string) (*State, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return nil, xerrors.ErrMalformedSession
	}
	envelope, signature := parts[0], parts[1]

	if !hmac.Equal([]byte(signature), []byte(c.sign(envelope))) {
		return nil, xerrors.ErrTamperedSession
	}

	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, xerrors.ErrMalformedSession
	}
	if len(raw) < nonceSize+tagSize {
		return nil, xerrors.ErrMalformedSession
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, xerrors.ErrTamperedSession
	}

	var s State
	if err := json.Unmarshal(plain, &s); err != nil {
		return nil, xerrors.ErrMalformedSession
	}
	return &s, nil
}

func (c *Codec) sign(envelope string) string {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write([]byte(envelope))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
