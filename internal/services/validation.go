package services

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	subdomainPattern      = regexp.MustCompile(`^[a-z0-9-]+$`)
	permissionCodePattern = regexp.MustCompile(`^[a-z-]+:[a-z-]+$`)
	modulePattern         = regexp.MustCompile(`^[a-z-]+$`)
)

const (
	minPasswordLength = 8
	// bcrypt refuses longer input
	maxPasswordBytes = 72
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email %q is not a valid address", email)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func validateSubdomain(subdomain string) error {
	if subdomain == "" || len(subdomain) > 63 || !subdomainPattern.MatchString(subdomain) {
		return invalid("subdomain must be 1-63 characters of lowercase letters, digits or hyphens")
	}
	return nil
}

func validatePermissionCode(code string) error {
	if !permissionCodePattern.MatchString(code) {
		return invalid("permission code %q must look like module:action", code)
	}
	return nil
}

func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("%s is required", field)
	}
	if len(value) > max {
		return "", invalid("%s must be at most %d characters", field, max)
	}
	return value, nil
}

// dedupeIDs drops repeated ids, keeping first occurrences in order
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
