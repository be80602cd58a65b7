// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/techyspine/server/internal/repository"
)

// deriveUsername builds a unique username for a new OAuth account: the
// display name stripped to alphanumerics, falling back to the email's
// local part, with an ascending integer suffix on collision.
func deriveUsername(ctx context.Context, r *repository.Repository, name, email string) (string, error) {
	base := stripNonAlphanumeric(name)
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
	}

	username := base
	for counter := 1; ; counter++ {
		exists, err := r.UsernameExists(ctx, username)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return username, nil
		}
		username = base + strconv.Itoa(counter)
	}
}

func stripNonAlphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
