package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "easymail"

const (
	keySession  = "session-cookies"
	keyUsername = "last-username"
)

// Vault stores the API session and the remembered username in the
// system keyring.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a vault backed by the platform keyring. The encrypted
// file backend under configDir is the fallback.
func Open(configDir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(configDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("easymail-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// get returns the value for key, or "" with a nil error when absent.
func (v *Vault) get(key string) ([]byte, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", key, err)
	}
	return item.Data, nil
}

func (v *Vault) set(key string, data []byte) error {
	if err := v.ring.Set(keyring.Item{Key: key, Data: data}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

func (v *Vault) remove(key string) error {
	err := v.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// storedSession is the JSON shape of a saved session.
type storedSession struct {
	BaseURL string         `json:"base_url"`
	Cookies []storedCookie `json:"cookies"`
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveSession stores the session cookies issued by baseURL.
func (v *Vault) SaveSession(baseURL string, cookies []*http.Cookie) error {
	s := storedSession{BaseURL: baseURL}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return v.set(keySession, data)
}

// LoadSession returns the saved cookies for baseURL. A session saved for
// another backend, or no session at all, yields nil.
func (v *Vault) LoadSession(baseURL string) ([]*http.Cookie, error) {
	data, err := v.get(keySession)
	if err != nil || data == nil {
		return nil, err
	}
	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if s.BaseURL != baseURL {
		return nil, nil
	}
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies, nil
}

// ClearSession forgets the saved session.
func (v *Vault) ClearSession() error {
	return v.remove(keySession)
}

// SaveUsername remembers the last username that logged in.
func (v *Vault) SaveUsername(username string) error {
	return v.set(keyUsername, []byte(username))
}

// LastUsername returns the remembered username, or "".
func (v *Vault) LastUsername() (string, error) {
	data, err := v.get(keyUsername)
	return string(data), err
}
