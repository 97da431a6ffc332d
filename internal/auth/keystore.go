// Package auth provides API key storage and validation.
//
// Keys come from the BISTROHUNTER_API_KEYS environment variable
// (comma-separated) or, failing that, from a text file with one key
// per line. Blank lines and lines starting with # are ignored.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// envKeys overrides the keys file when set.
const envKeys = "BISTROHUNTER_API_KEYS"

// ErrInvalidKey is returned when an API key is not recognized.
var ErrInvalidKey = errors.New("invalid api key")

// KeyStore validates API keys against a set of known keys.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewKeyStore creates a KeyStore. Keys from BISTROHUNTER_API_KEYS take
// precedence; otherwise they are read from the file at path.
func NewKeyStore(path string) (*KeyStore, error) {
	ks := &KeyStore{keys: make(map[string]struct{})}

	if env := os.Getenv(envKeys); env != "" {
		ks.loadEnv(env)
		if len(ks.keys) == 0 {
			return nil, fmt.Errorf("%s is set but contains no valid keys", envKeys)
		}
		return ks, nil
	}

	if path == "" {
		return nil, fmt.Errorf("no keys file path provided and %s is not set", envKeys)
	}
	if err := ks.loadFile(path); err != nil {
		return nil, fmt.Errorf("load keys file: %w", err)
	}
	if len(ks.keys) == 0 {
		return nil, fmt.Errorf("keys file %q contains no valid keys", path)
	}
	return ks, nil
}

// Validate checks whether the given key is authorized.
func (ks *KeyStore) Validate(key string) error {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if _, ok := ks.keys[key]; !ok {
		return ErrInvalidKey
	}
	return nil
}

// Count returns the number of loaded keys.
func (ks *KeyStore) Count() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys)
}

func (ks *KeyStore) loadEnv(env string) {
	for _, k := range strings.Split(env, ",") {
		if key := strings.TrimSpace(k); key != "" {
			ks.keys[key] = struct{}{}
		}
	}
}

func (ks *KeyStore) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ks.keys[line] = struct{}{}
	}
	return scanner.Err()
}
