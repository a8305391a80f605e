package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Clear removes every key matching a glob pattern
	Clear(ctx context.Context, pattern string) error
}

// TenantKey caches the active tenant behind a subdomain
func TenantKey(subdomain string) string {
	return "tenant:subdomain:" + subdomain
}

// RolePermissionsKey caches the permission codes of a role
func RolePermissionsKey(tenantID, roleID uuid.UUID) string {
	return fmt.Sprintf("perms:%s:%s", tenantID, roleID)
}

// TenantPermissionsPattern matches every cached role permission set of a tenant
func TenantPermissionsPattern(tenantID uuid.UUID) string {
	return fmt.Sprintf("perms:%s:*", tenantID)
}

// AllPermissionsPattern matches every cached role permission set
const AllPermissionsPattern = "perms:*"

// GetJSON decodes the cached value of key into v. It reports false on a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, err := c.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		// a corrupt entry is treated as absent
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}
