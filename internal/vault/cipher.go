// Package vault provides authenticated symmetric encryption for broker API credentials.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/shubhams167/aura/internal/domain"
)

const (
	// KeySize is the AES-256 key length in bytes
	KeySize = 32
	// NonceSize is the per-encryption nonce length in bytes (128 bits)
	NonceSize = 16
	// TagSize is the GCM authentication tag length in bytes
	TagSize = 16

	packedSeparator = ":"
)

// ScryptParams are the scrypt cost parameters used by DeriveKey
type ScryptParams struct {
	N int
	R int
	P int
}

// DefaultScryptParams match the widely deployed scrypt defaults (N=2^14, r=8, p=1)
var DefaultScryptParams = ScryptParams{N: 16384, R: 8, P: 1}

// Sealed is the output of one encryption: hex ciphertext, hex nonce and hex tag
type Sealed struct {
	Ciphertext string
	Nonce      string
	Tag        string
}

// Cipher encrypts and decrypts credential strings with a key derived from a
// passphrase and salt. The derived key is recomputed for every operation and
// is never held on the struct.
type Cipher struct {
	passphrase string
	salt       string
	params     ScryptParams
	random     io.Reader
}

// Option configures a Cipher
type Option func(*Cipher)

// WithScryptParams overrides the key derivation cost
func WithScryptParams(p ScryptParams) Option {
	return func(c *Cipher) { c.params = p }
}

// WithRandom overrides the nonce source
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) { c.random = r }
}

// New creates a Cipher and checks that a key can be derived from the inputs.
// Missing passphrase or salt fails with domain.ErrConfiguration.
func New(passphrase, salt string, opts ...Option) (*Cipher, error) {
	c := &Cipher{
		passphrase: passphrase,
		salt:       salt,
		params:     DefaultScryptParams,
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := c.deriveKey(); err != nil {
		return nil, err
	}
	return c, nil
}

// DeriveKey stretches passphrase and salt into a 32-byte key with the default scrypt parameters
func DeriveKey(passphrase, salt string) ([]byte, error) {
	return deriveKey(passphrase, salt, DefaultScryptParams)
}

func deriveKey(passphrase, salt string, p ScryptParams) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: encryption key is not set", domain.ErrConfiguration)
	}
	if salt == "" {
		return nil, fmt.Errorf("%w: encryption salt is not set", domain.ErrConfiguration)
	}

	key, err := scrypt.Key([]byte(passphrase), []byte(salt), p.N, p.R, p.P, KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: key derivation failed: %v", domain.ErrConfiguration, err)
	}
	return key, nil
}

func (c *Cipher) deriveKey() ([]byte, error) {
	return deriveKey(c.passphrase, c.salt, c.params)
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	key, err := c.deriveKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext under a freshly generated random nonce
func (c *Cipher) Encrypt(plaintext string) (*Sealed, error) {
	gcm, err := c.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := out[:len(out)-TagSize], out[len(out)-TagSize:]

	return &Sealed{
		Ciphertext: hex.EncodeToString(ct),
		Nonce:      hex.EncodeToString(nonce),
		Tag:        hex.EncodeToString(tag),
	}, nil
}

// Decrypt opens a Sealed value. A tag that does not verify fails with
// domain.ErrIntegrity; fields that are not valid hex or have the wrong
// length fail with domain.ErrMalformedRecord. No partial plaintext is returned.
func (c *Cipher) Decrypt(s Sealed) (string, error) {
	ct, err := hex.DecodeString(s.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not hex", domain.ErrMalformedRecord)
	}
	nonce, err := hex.DecodeString(s.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return "", fmt.Errorf("%w: nonce must be %d hex-encoded bytes", domain.ErrMalformedRecord, NonceSize)
	}
	tag, err := hex.DecodeString(s.Tag)
	if err != nil || len(tag) != TagSize {
		return "", fmt.Errorf("%w: tag must be %d hex-encoded bytes", domain.ErrMalformedRecord, TagSize)
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", domain.ErrIntegrity
	}
	return string(plaintext), nil
}

// EncryptCredentialPair seals the API key and secret under two independent nonces
func (c *Cipher) EncryptCredentialPair(apiKey, apiSecret string) (*domain.EncryptedCredentials, error) {
	key, err := c.Encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api key: %w", err)
	}
	secret, err := c.Encrypt(apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api secret: %w", err)
	}

	return &domain.EncryptedCredentials{
		EncryptedAPIKey:    pack(key),
		EncryptedAPISecret: pack(secret),
		IV:                 key.Nonce,
		IVSecret:           secret.Nonce,
	}, nil
}

// DecryptCredentialPair opens both halves of a stored credential pair
func (c *Cipher) DecryptCredentialPair(creds domain.EncryptedCredentials) (string, string, error) {
	key, err := unpack(creds.EncryptedAPIKey, creds.IV)
	if err != nil {
		return "", "", fmt.Errorf("api key: %w", err)
	}
	secret, err := unpack(creds.EncryptedAPISecret, creds.IVSecret)
	if err != nil {
		return "", "", fmt.Errorf("api secret: %w", err)
	}

	apiKey, err := c.Decrypt(key)
	if err != nil {
		return "", "", fmt.Errorf("api key: %w", err)
	}
	apiSecret, err := c.Decrypt(secret)
	if err != nil {
		return "", "", fmt.Errorf("api secret: %w", err)
	}
	return apiKey, apiSecret, nil
}

// pack joins ciphertext and tag as "<ct>:<tag>"
func pack(s *Sealed) string {
	return s.Ciphertext + packedSeparator + s.Tag
}

func unpack(packed, nonce string) (Sealed, error) {
	parts := strings.Split(packed, packedSeparator)
	if len(parts) != 2 || parts[1] == "" {
		return Sealed{}, fmt.Errorf("%w: expected \"<ciphertext>:<tag>\"", domain.ErrMalformedRecord)
	}
	return Sealed{Ciphertext: parts[0], Nonce: nonce, Tag: parts[1]}, nil
}
