package hellodb

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// SecretReference identifies a single value in the parameter store.
type SecretReference struct {
	// Name is the parameter name or path, e.g. "/app/db/username".
	Name string

	// WithDecryption asks the store to decrypt a SecureString value server-side.
	WithDecryption bool
}

// DatabaseCredentials holds resolved login material for one connection attempt.
// It is never cached between requests.
type DatabaseCredentials struct {
	Username string
	Password string
}

// String hides the password so credentials can be passed to loggers safely.
func (c DatabaseCredentials) String() string {
	return fmt.Sprintf("DatabaseCredentials(user=%s, password=****)", c.Username)
}

// GoString keeps %#v from leaking the password.
func (c DatabaseCredentials) GoString() string {
	return c.String()
}

// TLSPolicy controls how the server certificate is checked.
type TLSPolicy int

const (
	TLSPermissive TLSPolicy = iota // encrypt, but accept any certificate
	TLSStrict                      // verify the certificate chain and host name
)

// String returns a human-readable representation of the TLSPolicy.
func (p TLSPolicy) String() string {
	switch p {
	case TLSPermissive:
		return "permissive"
	case TLSStrict:
		return "strict"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ConnectionConfig describes one short-lived database connection.
// It is built fresh per request and discarded afterwards.
type ConnectionConfig struct {
	Host        string
	Port        int
	Database    string
	Credentials DatabaseCredentials
	TLS         TLSPolicy

	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	QueryTimeout   time.Duration

	AppName string
}

// Endpoint returns host:port for logging, bracketing IPv6 literals.
func (c ConnectionConfig) Endpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// FlowConfig is the static configuration of the greeting retrieval flow.
// Credentials are not part of it; they are resolved on every call.
type FlowConfig struct {
	DatabaseHost string
	DatabasePort int
	DatabaseName string

	UsernameSecret string
	PasswordSecret string

	TLS TLSPolicy

	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	QueryTimeout   time.Duration
}

// ConnectionConfig combines the static settings with freshly resolved credentials.
func (c FlowConfig) ConnectionConfig(creds DatabaseCredentials) ConnectionConfig {
	return ConnectionConfig{
		Host:           c.DatabaseHost,
		Port:           c.DatabasePort,
		Database:       c.DatabaseName,
		Credentials:    creds,
		TLS:            c.TLS,
		ConnectTimeout: c.ConnectTimeout,
		IdleTimeout:    c.IdleTimeout,
		QueryTimeout:   c.QueryTimeout,
		AppName:        DefaultAppName,
	}
}

// ResultKind tags a GreetingResult.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultFailure
)

// String returns a human-readable representation of the ResultKind.
func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "Success"
	case ResultFailure:
		return "Failure"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// GreetingResult is the outcome of one greeting retrieval.
// Failures are values, never errors: callers render Text either way.
type GreetingResult struct {
	Kind ResultKind
	Text string
}

// Success builds a successful result carrying the greeting message.
func Success(message string) GreetingResult {
	return GreetingResult{Kind: ResultSuccess, Text: message}
}

// Failure builds a failed result carrying a human-readable description.
func Failure(description string) GreetingResult {
	return GreetingResult{Kind: ResultFailure, Text: description}
}

// OK reports whether the result is a Success.
func (r GreetingResult) OK() bool {
	return r.Kind == ResultSuccess
}

func (r GreetingResult) String() string {
	return fmt.Sprintf("%s(%q)", r.Kind, r.Text)
}
