package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/golang-jwt/jwt/v5"
)

// Keyer generates deterministic cache keys for computed views.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from the view's entity name and its
	// query parameters.
	Key(entity string, params any) (string, error)
}

// ViewKeyer generates SHA-256 based view keys.
type ViewKeyer struct{}

// NewViewKeyer creates a new view keyer.
func NewViewKeyer() *ViewKeyer {
	return &ViewKeyer{}
}

// Key generates a deterministic cache key.
// Format: view:<entity>:<hash>
// where hash is the first 16 characters of SHA-256(canonical JSON(params))
func (k *ViewKeyer) Key(entity string, params any) (string, error) {
	hash, err := paramsHash(params)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("view:%s:%s", entity, hash), nil
}

// SubjectKeyer scopes view keys per authenticated principal, for views
// whose content differs by viewer (a faculty dashboard, a student's own
// application list). The principal is taken from the portal gateway's
// bearer token; the token is parsed without verification because the
// gateway has already authenticated the request and the key only needs a
// stable principal identifier.
type SubjectKeyer struct {
	// Claim is the claim holding the principal. Default: "sub"
	Claim string
}

// Key generates a per-principal cache key from a bearer token.
// Format: view:<entity>:<subject>:<hash>
func (k *SubjectKeyer) Key(token, entity string, params any) (string, error) {
	claim := k.Claim
	if claim == "" {
		claim = "sub"
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("cache: parse token: %w", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	subject, _ := claims[claim].(string)
	if subject == "" {
		return "", ErrNoSubject
	}

	hash, err := paramsHash(params)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("view:%s:%s:%s", entity, subject, hash), nil
}

// paramsHash returns the first 16 hex characters of the SHA-256 of the
// canonical JSON form of params.
func paramsHash(params any) (string, error) {
	canonical, err := canonicalize(params)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize params: %w", err)
	}
	hash := sha256.Sum256(canonical)
	return hex.EncodeToString(hash[:8]), nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	// For maps, sort keys for determinism
	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// For other types, use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	// Sort keys
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build ordered JSON object
	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		// Key
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		// Value (recursively canonicalize)
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure ViewKeyer implements Keyer
var _ Keyer = (*ViewKeyer)(nil)
