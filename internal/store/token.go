package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// TokenKey is the fixed key the bearer token is persisted under.
const TokenKey = "jwtToken"

// tempDirName holds in-flight writes so the token file is replaced atomically.
const tempDirName = ".tmp"

// TokenStore persists the single bearer token on disk.
type TokenStore struct {
	d        *diskv.Diskv
	basePath string
}

// OpenTokenStore creates a TokenStore rooted at basePath.
func OpenTokenStore(basePath string) (*TokenStore, error) {
	if basePath == "" {
		return nil, errors.New("store: token store base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &TokenStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			TempDir:      filepath.Join(basePath, tempDirName),
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 4096,
			FilePerm:     0o600,
			PathPerm:     0o700,
		}),
		basePath: basePath,
	}, nil
}

// Load returns the persisted token, or "" when none is stored.
func (s *TokenStore) Load() (string, error) {
	if !s.d.Has(TokenKey) {
		return "", nil
	}
	// Bypass the cache: another process may have rewritten the file.
	val, err := s.d.ReadStream(TokenKey, true)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("store: read token: %w", err)
	}
	defer val.Close()

	data, err := io.ReadAll(val)
	if err != nil {
		return "", fmt.Errorf("store: read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save replaces the persisted token.
func (s *TokenStore) Save(token string) error {
	if token == "" {
		return s.Clear()
	}
	if err := s.d.Write(TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("store: write token: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Clearing an empty store is not an error.
func (s *TokenStore) Clear() error {
	if !s.d.Has(TokenKey) {
		return nil
	}
	if err := s.d.Erase(TokenKey); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: erase token: %w", err)
	}
	return nil
}

// BasePath is the directory holding the token file.
func (s *TokenStore) BasePath() string {
	return s.basePath
}
