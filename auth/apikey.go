package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DefaultAPIKeyHeader is the header read by APIKeyAuthenticator.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKey is a stored key. Only the SHA-256 hash of the secret is kept.
type APIKey struct {
	Hash      string
	Principal string
	Roles     []string
	ExpiresAt time.Time
}

// APIKeyStore looks keys up by hash. Lookup returns nil when absent.
type APIKeyStore interface {
	Lookup(ctx context.Context, hash string) (*APIKey, error)
}

// APIKeyAuthenticator validates keys sent in a header.
type APIKeyAuthenticator struct {
	header string
	store  APIKeyStore
	now    func() time.Time
}

// NewAPIKeyAuthenticator reads keys from header, or DefaultAPIKeyHeader
// when header is empty.
func NewAPIKeyAuthenticator(header string, store APIKeyStore) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{header: header, store: store, now: time.Now}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

// Supports reports whether the key header is present.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *Request) bool {
	return req.Header(a.header) != ""
}

// Authenticate hashes the presented key and looks it up.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *Request) (*Result, error) {
	key := strings.TrimSpace(req.Header(a.header))
	if key == "" {
		return failure(ErrMissingCredentials, MethodAPIKey), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return failure(ErrInvalidCredentials, MethodAPIKey), nil
	}

	id := &Identity{
		Principal: info.Principal,
		Method:    MethodAPIKey,
		Roles:     info.Roles,
		ExpiresAt: info.ExpiresAt,
	}
	if id.Expired(a.now()) {
		return failure(ErrTokenExpired, MethodAPIKey), nil
	}
	return success(id), nil
}

// HashAPIKey returns the hex SHA-256 of key, the form stores index by.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// MemoryAPIKeyStore is an in-memory APIKeyStore.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKey
}

// NewMemoryAPIKeyStore creates an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]*APIKey)}
}

// Lookup implements APIKeyStore.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, hash string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[hash], nil
}

// Add stores the plaintext key for principal.
func (s *MemoryAPIKeyStore) Add(principal, key string, roles ...string) {
	s.Put(&APIKey{Hash: HashAPIKey(key), Principal: principal, Roles: roles})
}

// Put stores a pre-hashed key.
func (s *MemoryAPIKeyStore) Put(k *APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k.Hash] = k
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
