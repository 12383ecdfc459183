// Package credstore persists the session's token bundle in an encrypted
// file keyed by the account password. The format is fixed by the service's
// existing credential files: a JSON {iv, cipher} envelope, hex encoded,
// AES-256-CBC with the key taken from the base64 form of the password's
// SHA-256 digest.
package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Credentials is the persisted token bundle. The clientId outlives the
// tokens: it is generated once and kept for the lifetime of the account.
type Credentials struct {
	ClientID     string `json:"clientId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type envelope struct {
	IV     string `json:"iv"`
	Cipher string `json:"cipher"`
}

// Store reads and writes one encrypted credentials file. A Store with an
// empty path is a no-op (in-memory-only sessions).
type Store struct {
	path string
	key  []byte
	log  *zap.Logger
}

// New builds a store for path, deriving the cipher key from password.
func New(path, password string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, key: deriveKey(password), log: log}
}

func deriveKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:])[:32])
}

// Load reads and decrypts the credentials file. A missing or corrupt file
// is not an error condition: it is logged and reported as absent, and the
// session re-authenticates from credentials.
func (s *Store) Load() (Credentials, bool) {
	if s.path == "" {
		return Credentials{}, false
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Error("failed to read stored credentials", zap.String("path", s.path), zap.Error(err))
		}
		return Credentials{}, false
	}
	creds, err := s.decrypt(raw)
	if err != nil {
		s.log.Error("failed to decrypt stored credentials", zap.String("path", s.path), zap.Error(err))
		return Credentials{}, false
	}
	return creds, true
}

// Save encrypts and writes the bundle. Write failures are logged and
// swallowed; the session continues with in-memory state.
func (s *Store) Save(c Credentials) {
	if s.path == "" {
		return
	}
	raw, err := s.encrypt(c)
	if err != nil {
		s.log.Error("failed to encrypt credentials", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.log.Error("failed to write credentials to storage", zap.String("path", s.path), zap.Error(err))
	}
}

func (s *Store) encrypt(c Credentials) ([]byte, error) {
	plain, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	padded := pad(plain, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return json.Marshal(envelope{
		IV:     hex.EncodeToString(iv),
		Cipher: hex.EncodeToString(ct),
	})
}

func (s *Store) decrypt(raw []byte) (Credentials, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Credentials{}, err
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return Credentials{}, err
	}
	ct, err := hex.DecodeString(env.Cipher)
	if err != nil {
		return Credentials{}, err
	}
	if len(iv) != aes.BlockSize || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return Credentials{}, errors.New("malformed credential envelope")
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return Credentials{}, err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	plain, err = unpad(plain, aes.BlockSize)
	if err != nil {
		return Credentials{}, err
	}
	var c Credentials
	if err := json.Unmarshal(plain, &c); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// PKCS#7 padding.

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, errors.New("bad padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, fmt.Errorf("bad padding byte %d", n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("inconsistent padding")
		}
	}
	return b[:len(b)-n], nil
}
