package db

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// PostgreSQL error codes that get a dedicated message.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeInvalidAuthorization = "28000"
	pgCodeInvalidPassword      = "28P01"
	pgCodeInvalidCatalogName   = "3D000"
	pgCodeInvalidSchemaName    = "3F000"
	pgCodeUndefinedTable       = "42P01"
)

// Classify maps a connect or query error onto a DatabaseFailure.
//
// Structured information is checked first (SQLSTATE codes, DNS and socket
// errors). Message text is the fallback, matching the substrings other
// PostgreSQL clients report (ECONNREFUSED, ENOTFOUND). Anything else,
// including timeouts, is DatabaseOther.
func Classify(err error) *hellodb.DatabaseFailure {
	if err == nil {
		return nil
	}

	var failure *hellodb.DatabaseFailure
	if errors.As(err, &failure) {
		return failure
	}

	if kind, ok := classifyPgError(err); ok {
		return &hellodb.DatabaseFailure{Kind: kind, Err: err}
	}
	if isUnreachable(err) {
		return &hellodb.DatabaseFailure{Kind: hellodb.DatabaseUnreachable, Err: err}
	}
	return &hellodb.DatabaseFailure{Kind: classifyMessage(err.Error()), Err: err}
}

func classifyPgError(err error) (hellodb.DatabaseFailureKind, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, false
	}

	switch pgErr.Code {
	case pgCodeInvalidPassword, pgCodeInvalidAuthorization:
		return hellodb.DatabaseAuthFailed, true
	case pgCodeInvalidCatalogName, pgCodeInvalidSchemaName, pgCodeUndefinedTable:
		return hellodb.DatabaseMissingObject, true
	}
	return 0, false
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

func classifyMessage(msg string) hellodb.DatabaseFailureKind {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "ENOTFOUND") ||
		strings.Contains(msg, "ECONNREFUSED") ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "actively refused") ||
		strings.Contains(lower, "no such host"):
		return hellodb.DatabaseUnreachable

	case strings.Contains(lower, "authentication failed"):
		return hellodb.DatabaseAuthFailed

	case strings.Contains(lower, "does not exist"):
		return hellodb.DatabaseMissingObject

	default:
		return hellodb.DatabaseOther
	}
}
