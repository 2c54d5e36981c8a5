package db

import (
	"context"
	"time"
)

// TokenProvider abstracts short-lived database password acquisition.
// It replaces the password secret when IAM database authentication is used.
type TokenProvider interface {
	// GetToken returns a password for username and the time it stops being accepted.
	GetToken(ctx context.Context, username string) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets.
	String() string
}
