package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"
)

var (
	// ErrNoCredentials means the store holds nothing usable to authenticate.
	ErrNoCredentials = errors.New("no stored credentials")
	// ErrUnauthorized is returned by provider calls rejected with HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRefreshFailed wraps failures from the token endpoint.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// expiryDelta treats tokens this close to expiry as already expired.
const expiryDelta = 30 * time.Second

// Credentials are the tokens needed to call the provider. The JSON layout
// matches oauth2.Token so existing token.json files load unchanged.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Expired reports whether the access token is missing or past its expiry.
// A zero expiry is treated as non-expiring.
func (c Credentials) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Before(c.Expiry.Add(-expiryDelta))
}

func FromOAuth2(tok *oauth2.Token) Credentials {
	return Credentials{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// Store holds the current credentials. The refresher is the only writer
// besides the initial login flow.
type Store interface {
	Load() (Credentials, error)
	Save(c Credentials) error
	// SetAccessToken replaces the access token and expiry, keeping the
	// refresh token.
	SetAccessToken(token string, expiresIn time.Duration) error
	Clear() error
}

var errNotStored = errors.New("not stored")

// backend moves serialized credentials in and out of some medium.
type backend interface {
	read() ([]byte, error)
	write(data []byte) error
	remove() error
}

type store struct {
	mu  sync.Mutex
	b   backend
	now func() time.Time
}

func newStore(b backend) *store {
	return &store{b: b, now: time.Now}
}

func (s *store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *store) load() (Credentials, error) {
	data, err := s.b.read()
	if errors.Is(err, errNotStored) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("reading credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("decoding credentials: %w", err)
	}
	if c.AccessToken == "" && c.RefreshToken == "" {
		return Credentials{}, ErrNoCredentials
	}
	return c, nil
}

func (s *store) Save(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(c)
}

func (s *store) save(c Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.b.write(data); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

func (s *store) SetAccessToken(token string, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil && !errors.Is(err, ErrNoCredentials) {
		return err
	}
	c.AccessToken = token
	c.Expiry = s.now().Add(expiresIn)
	return s.save(c)
}

func (s *store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.b.remove()
	if errors.Is(err, errNotStored) {
		return nil
	}
	return err
}

type memoryBackend struct {
	data []byte
}

func (m *memoryBackend) read() ([]byte, error) {
	if m.data == nil {
		return nil, errNotStored
	}
	return m.data, nil
}

func (m *memoryBackend) write(data []byte) error { m.data = data; return nil }
func (m *memoryBackend) remove() error           { m.data = nil; return nil }

// NewMemoryStore returns a process-local store seeded with c.
func NewMemoryStore(c Credentials) Store {
	s := newStore(&memoryBackend{})
	if c.AccessToken != "" || c.RefreshToken != "" {
		_ = s.save(c)
	}
	return s
}

type fileBackend struct {
	path string
}

func (f fileBackend) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, errNotStored
	}
	return data, err
}

func (f fileBackend) write(data []byte) error {
	return os.WriteFile(f.path, data, 0600)
}

func (f fileBackend) remove() error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return errNotStored
	}
	return err
}

// NewFileStore keeps credentials in a JSON file such as token.json.
func NewFileStore(path string) Store {
	return newStore(fileBackend{path: path})
}

type keyringBackend struct {
	ring keyring.Keyring
	key  string
}

func (k keyringBackend) read() ([]byte, error) {
	item, err := k.ring.Get(k.key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, errNotStored
	}
	if err != nil {
		return nil, err
	}
	return item.Data, nil
}

func (k keyringBackend) write(data []byte) error {
	return k.ring.Set(keyring.Item{
		Key:   k.key,
		Data:  data,
		Label: "lumimail gmail credentials",
	})
}

func (k keyringBackend) remove() error {
	err := k.ring.Remove(k.key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return errNotStored
	}
	return err
}

// NewKeyringStore keeps credentials under key in the given keyring.
func NewKeyringStore(ring keyring.Keyring, key string) Store {
	return newStore(keyringBackend{ring: ring, key: key})
}

// OpenKeyring opens the system keyring, falling back to an encrypted file
// under fileDir on systems without a secret service.
func OpenKeyring(serviceName, fileDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}
